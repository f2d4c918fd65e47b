package dedupe

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/wevote/dedupe-cli/internal/politician"
	"github.com/wevote/dedupe-cli/internal/seo"
)

// PathGenerator produces a free SEO path for a base name.
type PathGenerator interface {
	Generate(ctx context.Context, c seo.Checker, base string) (string, error)
}

// MergeResult reports what a merge changed.
type MergeResult struct {
	Merged       bool
	SurvivorID   string
	LoserID      string
	Survivor     *politician.Record
	Moved        map[politician.RefKind]int64
	SlotsAdded   map[politician.SlotFamily]int
	SlotsDropped map[politician.SlotFamily]int
	SEOPath      string
	PairsClosed  int64
	// Decision is what the merge decided on the locked records.
	Decision Decision
}

// Merger folds a loser record into a survivor.
type Merger struct {
	store politician.Store
	paths PathGenerator
}

// NewMerger creates a merger. paths may be nil, in which case the survivor
// keeps its SEO path when its name changes.
func NewMerger(store politician.Store, paths PathGenerator) *Merger {
	return &Merger{store: store, paths: paths}
}

// Merge locks both records, decides the merge against their current values
// (human settles conflicts), applies the decision to the survivor, moves
// the loser's overflow values and dependent references over, and deletes
// the loser. Every step runs in one transaction; any failure, including a
// conflict that appeared since the caller last looked, leaves the store
// unchanged.
func (m *Merger) Merge(ctx context.Context, survivorID, loserID string, human map[politician.Attribute]Side, diag *Diagnostics) (*MergeResult, error) {
	if survivorID == loserID {
		return nil, eris.Errorf("dedupe: merge %s into itself", survivorID)
	}
	res := &MergeResult{
		SurvivorID:   survivorID,
		LoserID:      loserID,
		Moved:        make(map[politician.RefKind]int64),
		SlotsAdded:   make(map[politician.SlotFamily]int),
		SlotsDropped: make(map[politician.SlotFamily]int),
	}

	err := m.store.WithTx(ctx, func(tx politician.Tx) error {
		survivor, loser, err := lockPair(ctx, tx, survivorID, loserID)
		if err != nil {
			return err
		}
		d := Decide(survivor, loser, Compare(survivor, loser, diag), human)
		res.Decision = d
		if !d.CanAutoMerge {
			for _, a := range d.Unresolved {
				diag.Addf("unresolved %s: %q vs %q", a, valueString(survivor, a), valueString(loser, a))
			}
			return eris.Wrapf(ErrNeedsHumanDecision, "dedupe: merge %s into %s: %d unresolved", loserID, survivorID, len(d.Unresolved))
		}
		oldName := survivor.PoliticianName
		oldPath := survivor.SEOFriendlyPath
		loserPath := loser.SEOFriendlyPath

		for _, a := range sortedChoices(d.Choices) {
			if err := survivor.Set(a, d.Choices[a]); err != nil {
				diag.AddError("apply "+a.String(), err)
				return eris.Wrapf(err, "dedupe: merge %s into %s", loserID, survivorID)
			}
		}

		relocateSlots(survivor, loser, res, diag)

		for _, k := range politician.RefKinds() {
			n, err := tx.MoveReferences(ctx, k, loserID, survivorID)
			if err != nil {
				diag.AddError("move "+string(k)+" references", err)
				return eris.Wrapf(err, "dedupe: merge %s into %s", loserID, survivorID)
			}
			res.Moved[k] = n
		}

		for _, a := range d.FieldsToClear {
			if err := loser.Set(a, zeroValue(a)); err != nil {
				diag.AddError("clear "+a.String(), err)
				return eris.Wrapf(err, "dedupe: merge %s into %s", loserID, survivorID)
			}
		}
		if err := tx.Update(ctx, loser); err != nil {
			diag.AddError("save loser "+loserID, err)
			return eris.Wrapf(err, "dedupe: merge %s into %s", loserID, survivorID)
		}

		if err := m.refreshPath(ctx, tx, survivor, oldName, d, diag); err != nil {
			return eris.Wrapf(err, "dedupe: merge %s into %s", loserID, survivorID)
		}
		if err := tx.Update(ctx, survivor); err != nil {
			diag.AddError("save survivor "+survivorID, err)
			return eris.Wrapf(err, "dedupe: merge %s into %s", loserID, survivorID)
		}
		if err := tx.Delete(ctx, loserID); err != nil {
			diag.AddError("delete loser "+loserID, err)
			return eris.Wrapf(err, "dedupe: merge %s into %s", loserID, survivorID)
		}

		for _, p := range []string{oldPath, loserPath} {
			if p == "" || p == survivor.SEOFriendlyPath {
				continue
			}
			if err := tx.ArchiveSEOPath(ctx, survivorID, p); err != nil {
				diag.AddError("archive seo path", err)
				return eris.Wrapf(err, "dedupe: merge %s into %s", loserID, survivorID)
			}
		}

		n, err := tx.DeleteDuplicatePairsFor(ctx, loserID)
		if err != nil {
			diag.AddError("close duplicate pairs", err)
			return eris.Wrapf(err, "dedupe: merge %s into %s", loserID, survivorID)
		}
		res.PairsClosed = n
		res.Survivor = survivor
		res.SEOPath = survivor.SEOFriendlyPath
		return nil
	})
	if err != nil {
		return res, err
	}

	res.Merged = true
	zap.L().Info("dedupe: merged politicians",
		zap.String("survivor", survivorID),
		zap.String("loser", loserID),
		zap.Any("moved", res.Moved),
		zap.Int64("pairs_closed", res.PairsClosed),
	)
	return res, nil
}

// lockPair reads and locks both records in identifier order.
func lockPair(ctx context.Context, tx politician.Tx, survivorID, loserID string) (*politician.Record, *politician.Record, error) {
	ids := []string{survivorID, loserID}
	sort.Strings(ids)
	got := make(map[string]*politician.Record, 2)
	for _, id := range ids {
		r, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if r == nil {
			return nil, nil, eris.Wrapf(ErrRecordNotFound, "dedupe: merge: %s", id)
		}
		got[id] = r
	}
	return got[survivorID], got[loserID], nil
}

// relocateSlots appends each loser slot value the survivor lacks into the
// survivor's next free slot. Values beyond a family's capacity are dropped.
func relocateSlots(survivor, loser *politician.Record, res *MergeResult, diag *Diagnostics) {
	for _, f := range politician.SlotFamilies() {
		dst := survivor.Slots(f)
		for _, v := range loser.Slots(f).Values() {
			if dst.Contains(v) {
				continue
			}
			if dst.PushIfRoom(v) {
				res.SlotsAdded[f]++
				continue
			}
			res.SlotsDropped[f]++
			diag.Addf("%s full on %s, dropped %q", f, survivor.WeVoteID, v)
		}
	}
}

// refreshPath gives the survivor a new SEO path when its name changed and
// no path was chosen explicitly.
func (m *Merger) refreshPath(ctx context.Context, tx politician.Tx, survivor *politician.Record, oldName string, d Decision, diag *Diagnostics) error {
	if m.paths == nil || survivor.PoliticianName == oldName || survivor.PoliticianName == "" {
		return nil
	}
	if _, chosen := d.Choices[politician.AttrSEOFriendlyPath]; chosen {
		return nil
	}
	if survivor.SEOFriendlyPath != "" && seo.Slugify(survivor.PoliticianName) == seo.Slugify(oldName) {
		return nil
	}
	path, err := m.paths.Generate(ctx, tx, survivor.PoliticianName)
	if err != nil {
		diag.AddError("generate seo path", err)
		return err
	}
	survivor.SEOFriendlyPath = path
	return nil
}

func zeroValue(a politician.Attribute) politician.Value {
	switch a.Kind() {
	case politician.KindBool:
		return politician.BoolValue(false)
	case politician.KindInt:
		return politician.IntValue(0)
	case politician.KindDate:
		return politician.DateValue(nil)
	default:
		return politician.StringValue("")
	}
}

func sortedChoices(choices map[politician.Attribute]politician.Value) []politician.Attribute {
	out := make([]politician.Attribute, 0, len(choices))
	for a := range choices {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
