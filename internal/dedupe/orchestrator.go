package dedupe

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/wevote/dedupe-cli/internal/politician"
	"github.com/wevote/dedupe-cli/internal/resilience"
)

// PairState is the lifecycle state of a seed within a batch run.
type PairState int

// Pair states.
const (
	StateUnseen PairState = iota
	StateNoMatch
	StateFoundCandidate
	StateAutoMerged
	StateNeedsReview
	StateMarkedNotDuplicate
)

func (s PairState) String() string {
	switch s {
	case StateUnseen:
		return "UNSEEN"
	case StateNoMatch:
		return "NO_MATCH"
	case StateFoundCandidate:
		return "FOUND_CANDIDATE"
	case StateAutoMerged:
		return "AUTO_MERGED"
	case StateNeedsReview:
		return "NEEDS_REVIEW"
	case StateMarkedNotDuplicate:
		return "MARKED_NOT_DUPLICATE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the state name.
func (s PairState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// PairOutcome records what happened to one seed.
type PairOutcome struct {
	Seed       string                 `json:"seed"`
	Candidates []string               `json:"candidates,omitempty"`
	State      PairState              `json:"state"`
	Pass       Pass                   `json:"pass,omitempty"`
	Unresolved []politician.Attribute `json:"-"`
	Error      string                 `json:"error,omitempty"`
}

// BatchReport summarizes a run over one state.
type BatchReport struct {
	RunID       uuid.UUID     `json:"run_id"`
	StateCode   string        `json:"state_code"`
	DryRun      bool          `json:"dry_run"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	Examined    int           `json:"examined"`
	Skipped     int           `json:"skipped"`
	NoMatch     int           `json:"no_match"`
	AutoMerged  int           `json:"auto_merged"`
	NeedsReview int           `json:"needs_review"`
	Failed      int           `json:"failed"`
	Outcomes    []PairOutcome `json:"outcomes"`
	Diagnostics []string      `json:"diagnostics,omitempty"`
}

// Options tune a batch run.
type Options struct {
	// Limit caps the number of records loaded for the state; 0 loads all.
	Limit int
	// RatePerSecond throttles seeds; 0 disables throttling.
	RatePerSecond float64
	// DryRun finds and decides without writing anything.
	DryRun bool
	// Retry replays write transactions that lose a lock race. The zero
	// value uses resilience defaults.
	Retry resilience.RetryConfig
}

// Orchestrator drives the finder, analyzer, decision and merge steps over
// every record of a state.
type Orchestrator struct {
	store   politician.Store
	finder  *Finder
	merger  *Merger
	opts    Options
	limiter *rate.Limiter
}

// NewOrchestrator wires the pipeline on top of store.
func NewOrchestrator(store politician.Store, merger *Merger, opts Options) *Orchestrator {
	o := &Orchestrator{
		store:  store,
		finder: NewFinder(store),
		merger: merger,
		opts:   opts,
	}
	if opts.RatePerSecond > 0 {
		o.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}
	return o
}

// Run examines every record in stateCode that is not already in a pairing
// table. Each seed's writes commit on their own, so an interrupted run
// keeps what it finished.
func (o *Orchestrator) Run(ctx context.Context, stateCode string) (*BatchReport, error) {
	report := &BatchReport{
		RunID:     uuid.New(),
		StateCode: stateCode,
		DryRun:    o.opts.DryRun,
		StartedAt: time.Now().UTC(),
	}
	diag := NewDiagnostics()
	log := zap.L().With(zap.String("run_id", report.RunID.String()), zap.String("state", stateCode))

	paired, err := o.store.PairedWeVoteIDs(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "dedupe: run")
	}
	records, err := o.store.ListByState(ctx, stateCode, o.opts.Limit)
	if err != nil {
		return nil, eris.Wrap(err, "dedupe: run")
	}
	log.Info("dedupe: batch started", zap.Int("records", len(records)), zap.Int("already_paired", len(paired)))

	done := NewExclusion(paired...)
	handled := NewExclusion()
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return o.finish(report, diag), eris.Wrap(err, "dedupe: run interrupted")
		}
		if done.Contains(rec.WeVoteID) || handled.Contains(rec.WeVoteID) {
			report.Skipped++
			continue
		}
		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return o.finish(report, diag), eris.Wrap(err, "dedupe: run throttled")
			}
		}

		outcome := o.processSeed(ctx, rec.WeVoteID, stateCode, handled, diag)
		report.Examined++
		switch outcome.State {
		case StateNoMatch:
			report.NoMatch++
		case StateAutoMerged:
			report.AutoMerged++
		case StateNeedsReview:
			report.NeedsReview++
		default:
			report.Failed++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	o.finish(report, diag)
	log.Info("dedupe: batch finished",
		zap.Int("examined", report.Examined),
		zap.Int("skipped", report.Skipped),
		zap.Int("no_match", report.NoMatch),
		zap.Int("auto_merged", report.AutoMerged),
		zap.Int("needs_review", report.NeedsReview),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (o *Orchestrator) finish(report *BatchReport, diag *Diagnostics) *BatchReport {
	report.FinishedAt = time.Now().UTC()
	report.Diagnostics = diag.Messages()
	return report
}

// processSeed moves one seed from UNSEEN to a terminal state. The seed is
// re-read so merges earlier in the run are visible.
func (o *Orchestrator) processSeed(ctx context.Context, seedID, stateCode string, handled *Exclusion, diag *Diagnostics) PairOutcome {
	out := PairOutcome{Seed: seedID, State: StateUnseen}
	fail := func(op string, err error) PairOutcome {
		diag.AddError(op+" "+seedID, err)
		out.Error = err.Error()
		zap.L().Warn("dedupe: seed failed", zap.String("seed", seedID), zap.Error(err))
		return out
	}

	seed, err := o.store.GetByWeVoteID(ctx, seedID)
	if err != nil {
		return fail("load", err)
	}
	if seed == nil {
		return fail("load", ErrRecordNotFound)
	}
	handled.Add(seedID)
	if seed.StateCode != "" {
		stateCode = seed.StateCode
	}

	match, err := o.finder.Find(ctx, seed, handled, diag)
	if err != nil {
		return fail("find", err)
	}
	out.Pass = match.Pass

	switch {
	case len(match.Candidates) > 1:
		for _, c := range match.Candidates {
			out.Candidates = append(out.Candidates, c.WeVoteID)
		}
		out.State = StateNeedsReview
		if err := o.persistPairs(ctx, seedID, out.Candidates, stateCode); err != nil {
			return fail("persist review pairs", err)
		}
		handled.Add(out.Candidates...)
		return out

	case !match.Found:
		out.State = StateNoMatch
		if err := o.persistPairs(ctx, seedID, []string{""}, stateCode); err != nil {
			return fail("persist no-match", err)
		}
		return out
	}

	cand := match.Candidate
	out.Candidates = []string{cand.WeVoteID}
	out.State = StateFoundCandidate
	handled.Add(cand.WeVoteID)

	decision := Decide(seed, cand, match.Conflicts, nil)
	if decision.CanAutoMerge {
		if o.opts.DryRun {
			out.State = StateAutoMerged
			return out
		}
		_, err := o.merge(ctx, seedID, cand.WeVoteID, nil, diag)
		if err == nil {
			out.State = StateAutoMerged
			return out
		}
		diag.AddError("auto-merge "+seedID+" <- "+cand.WeVoteID, err)
	}

	out.State = StateNeedsReview
	out.Unresolved = decision.Unresolved
	if err := o.persistPairs(ctx, seedID, out.Candidates, stateCode); err != nil {
		return fail("persist review pair", err)
	}
	return out
}

func (o *Orchestrator) persistPairs(ctx context.Context, seedID string, others []string, stateCode string) error {
	if o.opts.DryRun {
		return nil
	}
	return o.withTx(ctx, "persist_pairs", func(tx politician.Tx) error {
		for _, other := range others {
			p := &politician.DuplicatePair{
				PoliticianWeVoteID:  seedID,
				PoliticianWeVoteID2: other,
				StateCode:           stateCode,
			}
			if err := tx.CreateDuplicatePair(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// MergePair merges b into a on an operator's request. human settles any
// conflicts the analyzer cannot; the pair is analysed against the records
// as they are once locked.
func (o *Orchestrator) MergePair(ctx context.Context, a, b string, human map[politician.Attribute]Side, diag *Diagnostics) (*MergeResult, error) {
	if a == b {
		return nil, eris.Errorf("dedupe: %s paired with itself", a)
	}
	return o.merge(ctx, a, b, human, diag)
}

// merge runs the merger, replaying it when the transaction loses a lock
// race with another writer.
func (o *Orchestrator) merge(ctx context.Context, survivorID, loserID string, human map[politician.Attribute]Side, diag *Diagnostics) (*MergeResult, error) {
	cfg := o.opts.Retry
	cfg.OnRetry = resilience.RetryLogger("merge", zap.String("survivor", survivorID), zap.String("loser", loserID))
	return resilience.DoVal(ctx, cfg, func(ctx context.Context) (*MergeResult, error) {
		return o.merger.Merge(ctx, survivorID, loserID, human, diag)
	})
}

func (o *Orchestrator) withTx(ctx context.Context, op string, fn func(tx politician.Tx) error) error {
	cfg := o.opts.Retry
	cfg.OnRetry = resilience.RetryLogger(op)
	return resilience.Do(ctx, cfg, func(ctx context.Context) error {
		return o.store.WithTx(ctx, fn)
	})
}

// MarkNotDuplicates records that a and b are different people and drops
// any pending review pair between them.
func (o *Orchestrator) MarkNotDuplicates(ctx context.Context, a, b string) error {
	if a == "" || b == "" || a == b {
		return eris.Errorf("dedupe: not-duplicates needs two distinct ids, got %q and %q", a, b)
	}
	err := o.withTx(ctx, "not_duplicates", func(tx politician.Tx) error {
		if err := tx.CreateNotDuplicates(ctx, a, b); err != nil {
			return err
		}
		_, err := tx.DeleteDuplicatePair(ctx, a, b)
		return err
	})
	if err != nil {
		return eris.Wrapf(err, "dedupe: mark %s/%s not duplicates", a, b)
	}
	zap.L().Info("dedupe: marked not duplicates", zap.String("a", a), zap.String("b", b))
	return nil
}

// Comparison is the side-by-side view an operator reviews before merging.
type Comparison struct {
	Politician1 *politician.Record
	Politician2 *politician.Record
	Conflicts   ConflictMap
	Decision    Decision
	References1 map[politician.RefKind]int64
	References2 map[politician.RefKind]int64
}

// Compare loads a and b and analyses them without changing anything.
func (o *Orchestrator) Compare(ctx context.Context, a, b string, diag *Diagnostics) (*Comparison, error) {
	r1, r2, err := o.loadPair(ctx, a, b)
	if err != nil {
		return nil, err
	}
	c := &Comparison{Politician1: r1, Politician2: r2, Conflicts: Compare(r1, r2, diag)}
	c.Decision = Decide(r1, r2, c.Conflicts, nil)
	if c.References1, err = ReferenceCounts(ctx, o.store, a); err != nil {
		return nil, err
	}
	if c.References2, err = ReferenceCounts(ctx, o.store, b); err != nil {
		return nil, err
	}
	return c, nil
}

func (o *Orchestrator) loadPair(ctx context.Context, a, b string) (*politician.Record, *politician.Record, error) {
	if a == b {
		return nil, nil, eris.Errorf("dedupe: %s paired with itself", a)
	}
	var recs [2]*politician.Record
	for i, id := range []string{a, b} {
		r, err := o.store.GetByWeVoteID(ctx, id)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "dedupe: load %s", id)
		}
		if r == nil {
			return nil, nil, eris.Wrapf(ErrRecordNotFound, "dedupe: load %s", id)
		}
		recs[i] = r
	}
	return recs[0], recs[1], nil
}

func valueString(r *politician.Record, a politician.Attribute) string {
	v, err := r.Get(a)
	if err != nil {
		return ""
	}
	return v.String()
}
