// Package politician defines the politician record, its identity
// attributes and the persistence contracts used by deduplication.
package politician

import (
	"time"
)

// Gender codes.
const (
	GenderFemale    = "F"
	GenderMale      = "M"
	GenderNonBinary = "N"
	GenderUnknown   = "U"
)

// Battleground race flags cover these election years.
const (
	FirstBattlegroundYear = 2019
	LastBattlegroundYear  = 2026
	numBattlegroundYears  = LastBattlegroundYear - FirstBattlegroundYear + 1
)

// Record is one politician: a real-world person with a permanent we_vote_id.
type Record struct {
	ID       int64  `json:"id" db:"id"`
	WeVoteID string `json:"we_vote_id" db:"we_vote_id"`

	// Names
	PoliticianName string `json:"politician_name" db:"politician_name"`
	FirstName      string `json:"first_name,omitempty" db:"first_name"`
	MiddleName     string `json:"middle_name,omitempty" db:"middle_name"`
	LastName       string `json:"last_name,omitempty" db:"last_name"`

	// Demographics
	Gender         string     `json:"gender,omitempty" db:"gender"`
	BirthDate      *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	PoliticalParty string     `json:"political_party,omitempty" db:"political_party"`
	StateCode      string     `json:"state_code,omitempty" db:"state_code"`

	// External identifiers
	BallotpediaID             string `json:"ballotpedia_id,omitempty" db:"ballotpedia_id"`
	BallotpediaPoliticianName string `json:"ballotpedia_politician_name,omitempty" db:"ballotpedia_politician_name"`
	BallotpediaPoliticianURL  string `json:"ballotpedia_politician_url,omitempty" db:"ballotpedia_politician_url"`
	BioguideID                string `json:"bioguide_id,omitempty" db:"bioguide_id"`
	CSpanID                   string `json:"cspan_id,omitempty" db:"cspan_id"`
	CTCLUUID                  string `json:"ctcl_uuid,omitempty" db:"ctcl_uuid"`
	FECID                     string `json:"fec_id,omitempty" db:"fec_id"`
	GovtrackID                string `json:"govtrack_id,omitempty" db:"govtrack_id"`
	HouseHistoryID            string `json:"house_history_id,omitempty" db:"house_history_id"`
	ICPSRID                   string `json:"icpsr_id,omitempty" db:"icpsr_id"`
	LisID                     string `json:"lis_id,omitempty" db:"lis_id"`
	MaplightID                string `json:"maplight_id,omitempty" db:"maplight_id"`
	OpenSecretsID             string `json:"opensecrets_id,omitempty" db:"opensecrets_id"`
	ThomasID                  string `json:"thomas_id,omitempty" db:"thomas_id"`
	VoteSmartID               string `json:"vote_smart_id,omitempty" db:"vote_smart_id"`
	VoteUSAPoliticianID       string `json:"vote_usa_politician_id,omitempty" db:"vote_usa_politician_id"`
	WashingtonPostID          string `json:"washington_post_id,omitempty" db:"washington_post_id"`
	WikipediaID               string `json:"wikipedia_id,omitempty" db:"wikipedia_id"`

	// Social
	InstagramHandle          string `json:"instagram_handle,omitempty" db:"instagram_handle"`
	InstagramFollowersCount  int64  `json:"instagram_followers_count,omitempty" db:"instagram_followers_count"`
	PoliticianContactFormURL string `json:"politician_contact_form_url,omitempty" db:"politician_contact_form_url"`
	PoliticianFacebookID     string `json:"politician_facebook_id,omitempty" db:"politician_facebook_id"`
	PoliticianYoutubeID      string `json:"politician_youtube_id,omitempty" db:"politician_youtube_id"`

	// Cached profile images
	ProfileImageURLLarge  string `json:"we_vote_hosted_profile_image_url_large,omitempty" db:"we_vote_hosted_profile_image_url_large"`
	ProfileImageURLMedium string `json:"we_vote_hosted_profile_image_url_medium,omitempty" db:"we_vote_hosted_profile_image_url_medium"`
	ProfileImageURLTiny   string `json:"we_vote_hosted_profile_image_url_tiny,omitempty" db:"we_vote_hosted_profile_image_url_tiny"`

	SEOFriendlyPath         string `json:"seo_friendly_path,omitempty" db:"seo_friendly_path"`
	LinkedCampaignXWeVoteID string `json:"linked_campaignx_we_vote_id,omitempty" db:"linked_campaignx_we_vote_id"`
	OCDIDStateMismatchFound bool   `json:"ocd_id_state_mismatch_found" db:"ocd_id_state_mismatch_found"`

	// BattlegroundRaces is indexed by year - FirstBattlegroundYear.
	BattlegroundRaces [numBattlegroundYears]bool `json:"battleground_races"`

	slots [numSlotFamilies]Slots
}

// Slots returns the overflow slots of family f for in-place reads and
// updates. It panics on an unknown family.
func (r *Record) Slots(f SlotFamily) *Slots {
	if !f.valid() {
		panic("politician: unknown slot family " + f.String())
	}
	s := &r.slots[f]
	s.family = f
	return s
}

// IsBattleground reports the battleground flag for an election year.
func (r *Record) IsBattleground(year int) bool {
	i := year - FirstBattlegroundYear
	if i < 0 || i >= numBattlegroundYears {
		return false
	}
	return r.BattlegroundRaces[i]
}

// HasName reports whether the record carries any name the finder can match on.
func (r *Record) HasName() bool {
	if r.PoliticianName != "" {
		return true
	}
	return r.Slots(FamilyAlternateName).Len() > 0
}

// Names returns the primary name followed by the alternate names.
func (r *Record) Names() []string {
	var out []string
	if r.PoliticianName != "" {
		out = append(out, r.PoliticianName)
	}
	return append(out, r.Slots(FamilyAlternateName).Values()...)
}

// DuplicatePair flags two politicians as possibly the same person. An
// empty PoliticianWeVoteID2 records that the first was examined and no
// duplicate was found.
type DuplicatePair struct {
	ID                  int64  `json:"id" db:"id"`
	PoliticianWeVoteID  string `json:"politician1_we_vote_id" db:"politician1_we_vote_id"`
	PoliticianWeVoteID2 string `json:"politician2_we_vote_id" db:"politician2_we_vote_id"`
	StateCode           string `json:"state_code" db:"state_code"`
}

// NotDuplicates permanently excludes a pair from duplicate detection.
// The ordering of the two identifiers carries no meaning.
type NotDuplicates struct {
	PoliticianWeVoteID  string `json:"politician1_we_vote_id" db:"politician1_we_vote_id"`
	PoliticianWeVoteID2 string `json:"politician2_we_vote_id" db:"politician2_we_vote_id"`
}
