package dedupe

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/wevote/dedupe-cli/internal/politician"
)

// Pass names the finder pass that produced a match.
type Pass string

// Finder passes, in the order they run.
const (
	PassNone          Pass = ""
	PassTwitterHandle Pass = "twitter_handle"
	PassExactName     Pass = "exact_name"
	PassNameParts     Pass = "name_parts"
)

// Match is the result of a duplicate search for one seed.
type Match struct {
	// Found is set when exactly one candidate turned up.
	Found     bool
	Candidate *politician.Record
	// Candidates holds every hit when more than one turned up. The finder
	// does not guess between them.
	Candidates []politician.Record
	Conflicts  ConflictMap
	Pass       Pass
}

// Finder searches the store for records that may describe the same person
// as a seed.
type Finder struct {
	store politician.Reader
}

// NewFinder creates a finder reading from store.
func NewFinder(store politician.Reader) *Finder {
	return &Finder{store: store}
}

// Find runs the search passes in order and stops at the first that returns
// anything:
//  1. Twitter handle overlap across all handle slots
//  2. Exact case-insensitive name against the primary and alternate names
//  3. First and last name both contained in one of those names
//
// The seed, everything in exclude and every not-duplicate partner of the
// seed are never returned.
func (f *Finder) Find(ctx context.Context, seed *politician.Record, exclude *Exclusion, diag *Diagnostics) (Match, error) {
	if seed == nil || !seed.HasName() {
		return Match{}, ErrMissingSeed
	}

	partners, err := f.store.NotDuplicatePartners(ctx, seed.WeVoteID)
	if err != nil {
		return Match{}, eris.Wrapf(err, "dedupe: find for %s", seed.WeVoteID)
	}
	skip := NewExclusion(seed.WeVoteID)
	skip.Add(exclude.IDs()...)
	skip.Add(partners...)

	passes := []struct {
		pass Pass
		run  func() ([]politician.Record, error)
	}{
		{PassTwitterHandle, func() ([]politician.Record, error) {
			return f.store.FindByTwitterHandles(ctx, seed.Slots(politician.FamilyTwitterHandle).Values())
		}},
		{PassExactName, func() ([]politician.Record, error) {
			return f.store.FindByExactName(ctx, seed.Names(), seed.StateCode)
		}},
		{PassNameParts, func() ([]politician.Record, error) {
			first, last := seedNameParts(seed)
			return f.store.FindByNameParts(ctx, first, last, seed.StateCode)
		}},
	}

	for _, p := range passes {
		found, err := p.run()
		if err != nil {
			return Match{}, eris.Wrapf(err, "dedupe: find %s for %s", p.pass, seed.WeVoteID)
		}
		found = withoutExcluded(found, skip)
		if len(found) == 0 {
			continue
		}

		zap.L().Debug("dedupe: candidates found",
			zap.String("seed", seed.WeVoteID),
			zap.String("pass", string(p.pass)),
			zap.Int("count", len(found)),
		)
		if len(found) > 1 {
			return Match{Candidates: found, Pass: p.pass}, nil
		}
		cand := found[0]
		return Match{
			Found:     true,
			Candidate: &cand,
			Conflicts: Compare(seed, &cand, diag),
			Pass:      p.pass,
		}, nil
	}
	return Match{}, nil
}

// seedNameParts takes first and last name from the full name, falling back
// to the dedicated fields.
func seedNameParts(seed *politician.Record) (string, string) {
	if first, last, ok := politician.SplitName(seed.PoliticianName); ok {
		return first, last
	}
	return seed.FirstName, seed.LastName
}

func withoutExcluded(records []politician.Record, skip *Exclusion) []politician.Record {
	out := records[:0]
	for _, r := range records {
		if !skip.Contains(r.WeVoteID) {
			out = append(out, r)
		}
	}
	return out
}
