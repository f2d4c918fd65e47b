package dedupe

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wevote/dedupe-cli/internal/politician"
	"github.com/wevote/dedupe-cli/internal/seo"
)

const mergeFixture = `
politicians:
  - we_vote_id: wv01polA
    attributes:
      politician_name: JOHN A SMITH
      state_code: CA
      seo_friendly_path: john-a-smith
      vote_smart_id: "901"
    slots:
      facebook_url: [fb.com/a]
      twitter_handle: [jsmith]
      email: [john@example.com]
  - we_vote_id: wv01polB
    attributes:
      politician_name: John Smith
      state_code: CA
      fec_id: H0CA99
      is_battleground_race_2024: "true"
    slots:
      facebook_url: [fb.com/b]
      twitter_handle: [JSmith, smithforca]
      email: [JOHN@example.com, js@example.org]
references:
  - {kind: candidate, we_vote_id: wv01cand1, politician_we_vote_id: wv01polB}
  - {kind: candidate, we_vote_id: wv01cand2, politician_we_vote_id: wv01polB}
  - {kind: position, we_vote_id: wv01pos1, politician_we_vote_id: wv01polB}
  - {kind: campaign, we_vote_id: wv01camp1, politician_we_vote_id: wv01polA}
`

func decidePair(t *testing.T, st politician.Reader, a, b string) Decision {
	t.Helper()
	r1, r2 := mustGet(t, st, a), mustGet(t, st, b)
	return Decide(r1, r2, Compare(r1, r2, nil), nil)
}

func TestMerge_FoldsLoserIntoSurvivor(t *testing.T) {
	st := newTestStore(t)
	loadYAML(t, st, mergeFixture)
	ctx := context.Background()

	require.NoError(t, st.WithTx(ctx, func(tx politician.Tx) error {
		return tx.CreateDuplicatePair(ctx, &politician.DuplicatePair{
			PoliticianWeVoteID: "wv01polA", PoliticianWeVoteID2: "wv01polB", StateCode: "CA",
		})
	}))

	d := decidePair(t, st, "wv01polA", "wv01polB")
	require.True(t, d.CanAutoMerge, d.Unresolved)

	diag := NewDiagnostics()
	res, err := NewMerger(st, seo.NewGenerator(0)).Merge(ctx, "wv01polA", "wv01polB", nil, diag)
	require.NoError(t, err)
	assert.True(t, res.Merged)
	assert.Equal(t, int64(2), res.Moved[politician.RefCandidate])
	assert.Equal(t, int64(1), res.Moved[politician.RefPosition])
	assert.Equal(t, int64(1), res.PairsClosed)

	gone, err := st.GetByWeVoteID(ctx, "wv01polB")
	require.NoError(t, err)
	assert.Nil(t, gone)

	s := mustGet(t, st, "wv01polA")
	assert.Equal(t, "John Smith", s.PoliticianName)
	assert.Equal(t, "H0CA99", s.FECID)
	assert.Equal(t, "901", s.VoteSmartID)
	assert.True(t, s.IsBattleground(2024))
	assert.Equal(t, []string{"fb.com/a", "fb.com/b"}, s.Slots(politician.FamilyFacebookURL).Values())
	assert.Equal(t, []string{"jsmith", "smithforca"}, s.Slots(politician.FamilyTwitterHandle).Values())
	assert.Equal(t, []string{"john@example.com", "js@example.org"}, s.Slots(politician.FamilyEmail).Values())

	assert.Equal(t, "john-smith", s.SEOFriendlyPath)
	assert.Equal(t, "john-smith", res.SEOPath)
	taken, err := st.SEOPathTaken(ctx, "john-a-smith")
	require.NoError(t, err)
	assert.True(t, taken, "old survivor path is archived")

	counts, err := ReferenceCounts(ctx, st, "wv01polA")
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[politician.RefCandidate])
	assert.Equal(t, int64(1), counts[politician.RefPosition])
	assert.Equal(t, int64(1), counts[politician.RefCampaign])
	assert.Equal(t, int64(1), counts[politician.RefSEOPath])

	pairs, err := st.ListDuplicatePairs(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestMerge_SurvivorMatchesItselfAfterwards(t *testing.T) {
	st := newTestStore(t)
	loadYAML(t, st, mergeFixture)
	ctx := context.Background()

	d := decidePair(t, st, "wv01polA", "wv01polB")
	require.True(t, d.CanAutoMerge)
	_, err := NewMerger(st, nil).Merge(ctx, "wv01polA", "wv01polB", nil, nil)
	require.NoError(t, err)

	s := mustGet(t, st, "wv01polA")
	m := Compare(s, s, nil)
	for a := range d.Choices {
		assert.Equal(t, Matching, m[a], a.String())
	}
	for _, f := range politician.SlotFamilies() {
		seen := make(map[string]bool)
		for _, v := range s.Slots(f).Values() {
			key := f.Key(v)
			assert.False(t, seen[key], "duplicate %s value %q", f, v)
			seen[key] = true
		}
	}
}

func TestMerge_FacebookURLMovesToNextSlot(t *testing.T) {
	st := newTestStore(t)
	loadYAML(t, st, `
politicians:
  - we_vote_id: wv01polA
    attributes: {politician_name: Kim Tran, state_code: CA}
    slots: {facebook_url: [fb.com/a]}
  - we_vote_id: wv01polB
    attributes: {politician_name: Kim Tran, state_code: CA}
    slots: {facebook_url: [fb.com/b]}
`)
	res, err := NewMerger(st, nil).Merge(context.Background(), "wv01polA", "wv01polB", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SlotsAdded[politician.FamilyFacebookURL])

	s := mustGet(t, st, "wv01polA")
	assert.Equal(t, "fb.com/a", s.Slots(politician.FamilyFacebookURL).At(0))
	assert.Equal(t, "fb.com/b", s.Slots(politician.FamilyFacebookURL).At(1))
}

func TestMerge_FullSlotsDropOverflow(t *testing.T) {
	st := newTestStore(t)
	loadYAML(t, st, `
politicians:
  - we_vote_id: wv01polA
    attributes: {politician_name: Kim Tran, state_code: CA}
    slots: {email: [a@x.org, b@x.org, c@x.org]}
  - we_vote_id: wv01polB
    attributes: {politician_name: Kim Tran, state_code: CA}
    slots: {email: [B@x.org, d@x.org]}
`)
	diag := NewDiagnostics()
	res, err := NewMerger(st, nil).Merge(context.Background(), "wv01polA", "wv01polB", nil, diag)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SlotsDropped[politician.FamilyEmail])
	assert.Contains(t, diag.String(), `dropped "d@x.org"`)
	assert.Equal(t, []string{"a@x.org", "b@x.org", "c@x.org"}, mustGet(t, st, "wv01polA").Slots(politician.FamilyEmail).Values())
}

func TestMerge_RegeneratesPathOnRename(t *testing.T) {
	st := newTestStore(t)
	loadYAML(t, st, `
politicians:
  - we_vote_id: wv01polA
    attributes: {politician_name: ROB KING, state_code: CA, seo_friendly_path: rob-king-1}
  - we_vote_id: wv01polB
    attributes: {politician_name: Robert King, state_code: CA}
  - we_vote_id: wv01polC
    attributes: {politician_name: Robert King, state_code: NY, seo_friendly_path: robert-king}
`)
	require.False(t, decidePair(t, st, "wv01polA", "wv01polB").CanAutoMerge)

	human := map[politician.Attribute]Side{politician.AttrPoliticianName: Side2}
	res, err := NewMerger(st, seo.NewGenerator(0)).Merge(context.Background(), "wv01polA", "wv01polB", human, nil)
	require.NoError(t, err)
	assert.NotEqual(t, "robert-king", res.SEOPath, "taken by another politician")
	assert.Regexp(t, `^robert-king-[a-z0-9]{3}$`, res.SEOPath)
	assert.Equal(t, res.SEOPath, mustGet(t, st, "wv01polA").SEOFriendlyPath)

	taken, err := st.SEOPathTaken(context.Background(), "rob-king-1")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestMerge_MissingRecord(t *testing.T) {
	st := newTestStore(t)
	loadYAML(t, st, `
politicians:
  - we_vote_id: wv01polA
    attributes: {politician_name: Kim Tran}
`)
	res, err := NewMerger(st, nil).Merge(context.Background(), "wv01polA", "wv01polZ", nil, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrRecordNotFound))
	assert.False(t, res.Merged)
	mustGet(t, st, "wv01polA")
}

func TestMerge_IntoItself(t *testing.T) {
	_, err := NewMerger(newTestStore(t), nil).Merge(context.Background(), "wv01polA", "wv01polA", nil, nil)
	require.Error(t, err)
}

type failingPaths struct{}

func (failingPaths) Generate(context.Context, seo.Checker, string) (string, error) {
	return "", seo.ErrExhausted
}

func TestMerge_RollsBackOnFailure(t *testing.T) {
	st := newTestStore(t)
	loadYAML(t, st, mergeFixture)
	ctx := context.Background()

	// The rename needs a new path, which fails after references and the
	// loser's unique fields were already written.
	diag := NewDiagnostics()
	_, err := NewMerger(st, failingPaths{}).Merge(ctx, "wv01polA", "wv01polB", nil, diag)
	require.Error(t, err)
	assert.True(t, eris.Is(err, seo.ErrExhausted))
	assert.Contains(t, diag.String(), "generate seo path")

	b := mustGet(t, st, "wv01polB")
	assert.Equal(t, "H0CA99", b.FECID)
	n, err := st.CountReferences(ctx, politician.RefCandidate, "wv01polB")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, "JOHN A SMITH", mustGet(t, st, "wv01polA").PoliticianName)
}

func TestMerge_DecidesOnLockedRecords(t *testing.T) {
	st := newTestStore(t)
	loadYAML(t, st, `
politicians:
  - we_vote_id: wv01polA
    attributes: {politician_name: Kim Tran, state_code: CA}
  - we_vote_id: wv01polB
    attributes: {politician_name: Kim Tran, state_code: CA, vote_smart_id: "111"}
  - we_vote_id: wv01polC
    attributes: {politician_name: Kim Tran, state_code: CA, vote_smart_id: "222"}
`)
	ctx := context.Background()
	m := NewMerger(st, nil)

	// Both pairs look mergeable before either merge runs.
	require.True(t, decidePair(t, st, "wv01polA", "wv01polB").CanAutoMerge)
	require.True(t, decidePair(t, st, "wv01polA", "wv01polC").CanAutoMerge)

	_, err := m.Merge(ctx, "wv01polA", "wv01polB", nil, nil)
	require.NoError(t, err)

	diag := NewDiagnostics()
	res, err := m.Merge(ctx, "wv01polA", "wv01polC", nil, diag)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNeedsHumanDecision))
	assert.False(t, res.Merged)
	assert.Equal(t, []politician.Attribute{politician.AttrVoteSmartID}, res.Decision.Unresolved)
	assert.Contains(t, diag.String(), `vote_smart_id: "111" vs "222"`)
	assert.Equal(t, "111", mustGet(t, st, "wv01polA").VoteSmartID)
	mustGet(t, st, "wv01polC")

	human := map[politician.Attribute]Side{politician.AttrVoteSmartID: Side2}
	res, err = m.Merge(ctx, "wv01polA", "wv01polC", human, nil)
	require.NoError(t, err)
	assert.True(t, res.Merged)
	assert.Equal(t, "222", mustGet(t, st, "wv01polA").VoteSmartID)
}
