package politician

import (
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Attribute enumerates the identity attributes compared between two
// politician records. The enumeration is closed; its order is also the
// storage column order.
type Attribute int

// Identity attributes.
const (
	AttrBallotpediaID Attribute = iota
	AttrBallotpediaPoliticianName
	AttrBallotpediaPoliticianURL
	AttrBioguideID
	AttrBirthDate
	AttrCSpanID
	AttrCTCLUUID
	AttrFECID
	AttrFirstName
	AttrGender
	AttrGovtrackID
	AttrHouseHistoryID
	AttrICPSRID
	AttrInstagramFollowersCount
	AttrInstagramHandle
	AttrBattleground2019
	AttrBattleground2020
	AttrBattleground2021
	AttrBattleground2022
	AttrBattleground2023
	AttrBattleground2024
	AttrBattleground2025
	AttrBattleground2026
	AttrLastName
	AttrLinkedCampaignXWeVoteID
	AttrLisID
	AttrMaplightID
	AttrMiddleName
	AttrOCDIDStateMismatchFound
	AttrOpenSecretsID
	AttrPoliticalParty
	AttrPoliticianContactFormURL
	AttrPoliticianFacebookID
	AttrPoliticianName
	AttrPoliticianYoutubeID
	AttrSEOFriendlyPath
	AttrStateCode
	AttrThomasID
	AttrVoteSmartID
	AttrVoteUSAPoliticianID
	AttrWashingtonPostID
	AttrProfileImageURLLarge
	AttrProfileImageURLMedium
	AttrProfileImageURLTiny
	AttrWikipediaID
	numAttributes
)

// ErrUnknownAttribute is returned when an Attribute outside the
// enumeration is read or written.
var ErrUnknownAttribute = eris.New("politician: unknown attribute")

type attributeDef struct {
	name string
	kind Kind
	// unique attributes carry a storage uniqueness constraint and must be
	// cleared on a merge loser before the survivor takes the value.
	unique bool
	field  func(r *Record) any
}

func str(name string, unique bool, field func(r *Record) *string) attributeDef {
	return attributeDef{name: name, kind: KindString, unique: unique, field: func(r *Record) any { return field(r) }}
}

func battleground(year int) attributeDef {
	return attributeDef{
		name: "is_battleground_race_" + strconv.Itoa(year),
		kind: KindBool,
		field: func(r *Record) any {
			return &r.BattlegroundRaces[year-FirstBattlegroundYear]
		},
	}
}

var attributeDefs = [numAttributes]attributeDef{
	AttrBallotpediaID:             str("ballotpedia_id", false, func(r *Record) *string { return &r.BallotpediaID }),
	AttrBallotpediaPoliticianName: str("ballotpedia_politician_name", false, func(r *Record) *string { return &r.BallotpediaPoliticianName }),
	AttrBallotpediaPoliticianURL:  str("ballotpedia_politician_url", false, func(r *Record) *string { return &r.BallotpediaPoliticianURL }),
	AttrBioguideID:                str("bioguide_id", true, func(r *Record) *string { return &r.BioguideID }),
	AttrBirthDate: {name: "birth_date", kind: KindDate, field: func(r *Record) any {
		return &r.BirthDate
	}},
	AttrCSpanID:  str("cspan_id", false, func(r *Record) *string { return &r.CSpanID }),
	AttrCTCLUUID: str("ctcl_uuid", false, func(r *Record) *string { return &r.CTCLUUID }),
	AttrFECID:    str("fec_id", true, func(r *Record) *string { return &r.FECID }),
	AttrFirstName: str("first_name", false, func(r *Record) *string {
		return &r.FirstName
	}),
	AttrGender:         str("gender", false, func(r *Record) *string { return &r.Gender }),
	AttrGovtrackID:     str("govtrack_id", true, func(r *Record) *string { return &r.GovtrackID }),
	AttrHouseHistoryID: str("house_history_id", false, func(r *Record) *string { return &r.HouseHistoryID }),
	AttrICPSRID:        str("icpsr_id", false, func(r *Record) *string { return &r.ICPSRID }),
	AttrInstagramFollowersCount: {name: "instagram_followers_count", kind: KindInt, field: func(r *Record) any {
		return &r.InstagramFollowersCount
	}},
	AttrInstagramHandle:          str("instagram_handle", false, func(r *Record) *string { return &r.InstagramHandle }),
	AttrBattleground2019:         battleground(2019),
	AttrBattleground2020:         battleground(2020),
	AttrBattleground2021:         battleground(2021),
	AttrBattleground2022:         battleground(2022),
	AttrBattleground2023:         battleground(2023),
	AttrBattleground2024:         battleground(2024),
	AttrBattleground2025:         battleground(2025),
	AttrBattleground2026:         battleground(2026),
	AttrLastName:                 str("last_name", false, func(r *Record) *string { return &r.LastName }),
	AttrLinkedCampaignXWeVoteID:  str("linked_campaignx_we_vote_id", false, func(r *Record) *string { return &r.LinkedCampaignXWeVoteID }),
	AttrLisID:                    str("lis_id", false, func(r *Record) *string { return &r.LisID }),
	AttrMaplightID:               str("maplight_id", true, func(r *Record) *string { return &r.MaplightID }),
	AttrMiddleName:               str("middle_name", false, func(r *Record) *string { return &r.MiddleName }),
	AttrOCDIDStateMismatchFound:  {name: "ocd_id_state_mismatch_found", kind: KindBool, field: func(r *Record) any { return &r.OCDIDStateMismatchFound }},
	AttrOpenSecretsID:            str("opensecrets_id", false, func(r *Record) *string { return &r.OpenSecretsID }),
	AttrPoliticalParty:           str("political_party", false, func(r *Record) *string { return &r.PoliticalParty }),
	AttrPoliticianContactFormURL: str("politician_contact_form_url", false, func(r *Record) *string { return &r.PoliticianContactFormURL }),
	AttrPoliticianFacebookID:     str("politician_facebook_id", false, func(r *Record) *string { return &r.PoliticianFacebookID }),
	AttrPoliticianName:           str("politician_name", false, func(r *Record) *string { return &r.PoliticianName }),
	AttrPoliticianYoutubeID:      str("politician_youtube_id", false, func(r *Record) *string { return &r.PoliticianYoutubeID }),
	AttrSEOFriendlyPath:          str("seo_friendly_path", true, func(r *Record) *string { return &r.SEOFriendlyPath }),
	AttrStateCode:                str("state_code", false, func(r *Record) *string { return &r.StateCode }),
	AttrThomasID:                 str("thomas_id", true, func(r *Record) *string { return &r.ThomasID }),
	AttrVoteSmartID:              str("vote_smart_id", false, func(r *Record) *string { return &r.VoteSmartID }),
	AttrVoteUSAPoliticianID:      str("vote_usa_politician_id", false, func(r *Record) *string { return &r.VoteUSAPoliticianID }),
	AttrWashingtonPostID:         str("washington_post_id", false, func(r *Record) *string { return &r.WashingtonPostID }),
	AttrProfileImageURLLarge:     str("we_vote_hosted_profile_image_url_large", false, func(r *Record) *string { return &r.ProfileImageURLLarge }),
	AttrProfileImageURLMedium:    str("we_vote_hosted_profile_image_url_medium", false, func(r *Record) *string { return &r.ProfileImageURLMedium }),
	AttrProfileImageURLTiny:      str("we_vote_hosted_profile_image_url_tiny", false, func(r *Record) *string { return &r.ProfileImageURLTiny }),
	AttrWikipediaID:              str("wikipedia_id", false, func(r *Record) *string { return &r.WikipediaID }),
}

var attributesByName = func() map[string]Attribute {
	m := make(map[string]Attribute, numAttributes)
	for a := range numAttributes {
		m[attributeDefs[a].name] = a
	}
	return m
}()

// Attributes lists every identity attribute in storage order.
func Attributes() []Attribute {
	out := make([]Attribute, 0, numAttributes)
	for a := range numAttributes {
		out = append(out, a)
	}
	return out
}

// ParseAttribute resolves a column name to its Attribute.
func ParseAttribute(name string) (Attribute, error) {
	a, ok := attributesByName[name]
	if !ok {
		return 0, eris.Wrapf(ErrUnknownAttribute, "parse %q", name)
	}
	return a, nil
}

// Valid reports whether a is part of the enumeration.
func (a Attribute) Valid() bool { return a >= 0 && a < numAttributes }

// String returns the attribute's column name.
func (a Attribute) String() string {
	if !a.Valid() {
		return "attribute(" + strconv.Itoa(int(a)) + ")"
	}
	return attributeDefs[a].name
}

// Kind returns the attribute's value kind.
func (a Attribute) Kind() Kind {
	if !a.Valid() {
		return KindString
	}
	return attributeDefs[a].kind
}

// Unique reports whether the attribute carries a uniqueness constraint.
func (a Attribute) Unique() bool {
	return a.Valid() && attributeDefs[a].unique
}

// IsBattleground reports whether a is one of the battleground race flags.
func (a Attribute) IsBattleground() bool {
	return a >= AttrBattleground2019 && a <= AttrBattleground2026
}

// IsNameFamily reports whether a is one of the person-name attributes.
func (a Attribute) IsNameFamily() bool {
	switch a {
	case AttrPoliticianName, AttrFirstName, AttrMiddleName, AttrLastName:
		return true
	}
	return false
}

// Get reads attribute a from the record.
func (r *Record) Get(a Attribute) (Value, error) {
	if !a.Valid() {
		return Value{}, eris.Wrapf(ErrUnknownAttribute, "get %s", a)
	}
	switch p := attributeDefs[a].field(r).(type) {
	case *string:
		return StringValue(*p), nil
	case *bool:
		return BoolValue(*p), nil
	case *int64:
		return IntValue(*p), nil
	case **time.Time:
		return DateValue(*p), nil
	default:
		return Value{}, eris.Errorf("politician: get %s: unsupported field type %T", a, p)
	}
}

// Set writes v into attribute a. The value kind must match the attribute.
func (r *Record) Set(a Attribute, v Value) error {
	if !a.Valid() {
		return eris.Wrapf(ErrUnknownAttribute, "set %s", a)
	}
	if v.Kind() != a.Kind() {
		return eris.Errorf("politician: set %s: want %s value, got %s", a, a.Kind(), v.Kind())
	}
	switch p := attributeDefs[a].field(r).(type) {
	case *string:
		*p = v.Str()
	case *bool:
		*p = v.Bool()
	case *int64:
		*p = v.Int()
	case **time.Time:
		*p = v.Date()
	default:
		return eris.Errorf("politician: set %s: unsupported field type %T", a, p)
	}
	return nil
}
