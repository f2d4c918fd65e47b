package politician

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlots_PushIfRoom(t *testing.T) {
	s := NewSlots(FamilyTwitterHandle, "@Jane", "jane", "JANE2", "")
	assert.Equal(t, []string{"Jane", "JANE2"}, s.Values())
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("@JANE"))
	assert.Equal(t, "", s.At(4))
}

func TestSlots_Full(t *testing.T) {
	s := NewSlots(FamilyEmail)
	assert.True(t, s.PushIfRoom("a@example.com"))
	assert.True(t, s.PushIfRoom("b@example.com"))
	assert.True(t, s.PushIfRoom("c@example.com"))
	assert.True(t, s.Full())
	assert.False(t, s.PushIfRoom("d@example.com"))
	assert.Equal(t, 3, s.Len())
}

func TestSlots_FamilyKeys(t *testing.T) {
	urls := NewSlots(FamilyURL, "https://www.Example.com/")
	assert.True(t, urls.Contains("example.com"))

	phones := NewSlots(FamilyPhone, "(555) 123-4567")
	assert.False(t, phones.PushIfRoom("555.123.4567"))

	emails := NewSlots(FamilyEmail, "Jane@Example.com")
	assert.True(t, emails.Contains("jane@example.com"))
}

func TestSlots_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(NewSlots(FamilyURL))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	b, err = json.Marshal(NewSlots(FamilyURL, "a.com", "b.com"))
	require.NoError(t, err)
	assert.JSONEq(t, `["a.com","b.com"]`, string(b))
}

func TestSlotFamily_Limits(t *testing.T) {
	assert.Equal(t, 3, FamilyFacebookURL.Limit())
	assert.Equal(t, 3, FamilyAlternateName.Limit())
	assert.Equal(t, 5, FamilyTwitterHandle.Limit())
	assert.Equal(t, 5, FamilyURL.Limit())
	assert.Len(t, slotColumns(), 22)

	f, ok := ParseSlotFamily("twitter_handle")
	assert.True(t, ok)
	assert.Equal(t, FamilyTwitterHandle, f)
	_, ok = ParseSlotFamily("fax")
	assert.False(t, ok)
}

func TestRecord_SlotsAccessor(t *testing.T) {
	var r Record
	r.Slots(FamilyAlternateName).PushIfRoom("Jimmy Smith")
	assert.Equal(t, FamilyAlternateName, r.Slots(FamilyAlternateName).Family())
	assert.True(t, r.HasName())
	assert.Equal(t, []string{"Jimmy Smith"}, r.Names())

	r.PoliticianName = "James Smith"
	assert.Equal(t, []string{"James Smith", "Jimmy Smith"}, r.Names())

	assert.Panics(t, func() { r.Slots(SlotFamily(99)) })
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in          string
		first, last string
		ok          bool
	}{
		{"John Smith", "John", "Smith", true},
		{"John Smith, Jr.", "John", "Smith", true},
		{"Smith, John", "John", "Smith", true},
		{"Dr. Jane Q. Public", "Jane", "Public", true},
		{"Cher", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			first, last, ok := SplitName(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.last, last)
		})
	}
}

func TestStripMiddleInitials(t *testing.T) {
	tests := []struct {
		in, want string
		ok       bool
	}{
		{"John Q. Public", "John Public", true},
		{"Mary A B Jones", "Mary Jones", true},
		{"J. Smith", "J. Smith", true},
		{"John   Public", "John Public", true},
		{"   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := StripMiddleInitials(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMiddleInitials(t *testing.T) {
	assert.Equal(t, []string{"Q"}, MiddleInitials("John q. Public"))
	assert.Equal(t, []string{"A", "B"}, MiddleInitials("Mary A B. Jones"))
	assert.Nil(t, MiddleInitials("J. Smith"))
	assert.Nil(t, MiddleInitials("John Smith"))
	assert.Nil(t, MiddleInitials(""))
}

func TestCaseHelpers(t *testing.T) {
	assert.True(t, IsAllUpper("JOHN SMITH"))
	assert.False(t, IsAllUpper("John Smith"))
	assert.False(t, IsAllUpper("123"))
	assert.True(t, IsMixedCase("John"))
	assert.False(t, IsMixedCase("JOHN"))
	assert.False(t, IsMixedCase("john"))
	assert.True(t, FoldEqual("John  Smith", "JOHN SMITH"))
	assert.True(t, FoldEqual("José", "JOSÉ"))
	assert.False(t, FoldEqual("John Smith", "John Q. Smith"))
}

func TestNormalizeParty(t *testing.T) {
	tests := map[string]string{
		"Democratic Party":           PartyDemocrat,
		"Dem":                        PartyDemocrat,
		"democrat":                   PartyDemocrat,
		"GOP":                        PartyRepublican,
		"Republican":                 PartyRepublican,
		"American Independent Party": PartyAmericanIndependent,
		"Independent":                PartyIndependent,
		"Peace & Freedom":            PartyPeaceAndFreedom,
		"No Party Preference":        PartyNoPartyPreference,
		"Whig":                       "",
		"":                           "",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, NormalizeParty(in))
		})
	}
}

func TestAttributes_Enumeration(t *testing.T) {
	attrs := Attributes()
	assert.Len(t, attrs, 45)

	var unique []string
	for _, a := range attrs {
		assert.True(t, a.Valid())
		parsed, err := ParseAttribute(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, parsed)
		if a.Unique() {
			unique = append(unique, a.String())
		}
	}
	assert.ElementsMatch(t, []string{
		"bioguide_id", "fec_id", "govtrack_id", "maplight_id", "thomas_id", "seo_friendly_path",
	}, unique)

	assert.Equal(t, "is_battleground_race_2020", AttrBattleground2020.String())
	assert.True(t, AttrBattleground2026.IsBattleground())
	assert.False(t, AttrLastName.IsBattleground())
	assert.True(t, AttrMiddleName.IsNameFamily())
	assert.False(t, AttrGender.IsNameFamily())
	assert.False(t, Attribute(-1).Valid())
	assert.Equal(t, "attribute(99)", Attribute(99).String())
}

func TestParseAttribute_Unknown(t *testing.T) {
	_, err := ParseAttribute("shoe_size")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownAttribute))
}

func TestRecord_GetSet(t *testing.T) {
	var r Record
	require.NoError(t, r.Set(AttrFECID, StringValue("H0CA01234")))
	require.NoError(t, r.Set(AttrBattleground2024, BoolValue(true)))
	require.NoError(t, r.Set(AttrInstagramFollowersCount, IntValue(1200)))
	bd := time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, r.Set(AttrBirthDate, DateValue(&bd)))

	assert.Equal(t, "H0CA01234", r.FECID)
	assert.True(t, r.IsBattleground(2024))
	assert.False(t, r.IsBattleground(2018))
	assert.Equal(t, int64(1200), r.InstagramFollowersCount)
	require.NotNil(t, r.BirthDate)
	assert.True(t, bd.Equal(*r.BirthDate))

	v, err := r.Get(AttrBirthDate)
	require.NoError(t, err)
	assert.Equal(t, "1970-01-02", v.String())

	err = r.Set(AttrFECID, BoolValue(true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want string value")

	_, err = r.Get(Attribute(500))
	assert.True(t, eris.Is(err, ErrUnknownAttribute))
}

func TestValue(t *testing.T) {
	assert.True(t, StringValue("  ").IsEmpty())
	assert.True(t, BoolValue(false).IsEmpty())
	assert.True(t, IntValue(0).IsEmpty())
	assert.True(t, DateValue(nil).IsEmpty())
	assert.Nil(t, DateValue(nil).Date())
	assert.False(t, StringValue("x").IsEmpty())

	assert.True(t, StringValue("a").Equal(StringValue("a")))
	assert.False(t, StringValue("a").Equal(StringValue("A")))
	assert.False(t, StringValue("true").Equal(BoolValue(true)))
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "42", IntValue(42).String())
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue(KindBool, "true")
	require.NoError(t, err)
	assert.True(t, v.Bool())

	v, err = ParseValue(KindInt, " 17 ")
	require.NoError(t, err)
	assert.Equal(t, int64(17), v.Int())

	v, err = ParseValue(KindDate, "1980-05-06T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "1980-05-06", v.String())

	v, err = ParseValue(KindDate, "")
	require.NoError(t, err)
	assert.True(t, v.IsEmpty())

	_, err = ParseValue(KindInt, "many")
	assert.Error(t, err)
}
