package politician

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureYAML = `
politicians:
  - we_vote_id: wv01pol1
    attributes:
      politician_name: Jane Public
      state_code: CA
      birth_date: 1961-08-04
      is_battleground_race_2024: true
      instagram_followers_count: 99
    slots:
      twitter_handle: ["@janepublic", "JanePublic", "janeforca"]
  - we_vote_id: wv01pol2
    attributes:
      politician_name: JANE PUBLIC
references:
  - kind: candidate
    we_vote_id: wv01cand1
    politician_we_vote_id: wv01pol2
not_duplicates:
  - [wv01pol1, wv01pol3]
`

func TestLoadFixture(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	f, err := ParseFixture(strings.NewReader(fixtureYAML))
	require.NoError(t, err)
	stats, err := LoadFixture(ctx, st, f)
	require.NoError(t, err)
	assert.Equal(t, FixtureStats{Politicians: 2, References: 1, NotDuplicates: 1}, stats)

	got, err := st.GetByWeVoteID(ctx, "wv01pol1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Jane Public", got.PoliticianName)
	assert.True(t, got.IsBattleground(2024))
	assert.Equal(t, int64(99), got.InstagramFollowersCount)
	require.NotNil(t, got.BirthDate)
	assert.Equal(t, 1961, got.BirthDate.Year())
	assert.Equal(t, []string{"janepublic", "janeforca"}, got.Slots(FamilyTwitterHandle).Values())

	n, err := st.CountReferences(ctx, RefCandidate, "wv01pol2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	partners, err := st.NotDuplicatePartners(ctx, "wv01pol3")
	require.NoError(t, err)
	assert.Equal(t, []string{"wv01pol1"}, partners)
}

func TestFixtureRecord_Errors(t *testing.T) {
	_, err := FixtureRecord{}.Record()
	assert.Error(t, err)

	_, err = FixtureRecord{WeVoteID: "x", Attributes: map[string]string{"shoe_size": "9"}}.Record()
	assert.Error(t, err)

	_, err = FixtureRecord{WeVoteID: "x", Slots: map[string][]string{"fax": {"1"}}}.Record()
	assert.Error(t, err)

	_, err = FixtureRecord{WeVoteID: "x", Attributes: map[string]string{"instagram_followers_count": "lots"}}.Record()
	assert.Error(t, err)
}

func TestParseFixture_Empty(t *testing.T) {
	f, err := ParseFixture(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Politicians)
}
