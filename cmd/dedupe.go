package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/wevote/dedupe-cli/internal/dedupe"
	"github.com/wevote/dedupe-cli/internal/politician"
	"github.com/wevote/dedupe-cli/internal/resilience"
	"github.com/wevote/dedupe-cli/internal/review"
	"github.com/wevote/dedupe-cli/internal/seo"
)

var (
	runState  string
	runDryRun bool
	runLimit  int

	mergeChoices []string

	queueState  string
	queueExport string
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Find, compare and merge duplicate politicians",
}

var dedupeRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Examine every politician in a state and merge or queue duplicates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("dedupe"); err != nil {
			return err
		}
		return withStore(ctx, func(st politician.Store) error {
			opts := dedupe.Options{
				Limit:         cfg.Dedupe.BatchLimit,
				RatePerSecond: cfg.Dedupe.RatePerSecond,
				DryRun:        runDryRun,
			}
			if runLimit > 0 {
				opts.Limit = runLimit
			}
			report, err := newOrchestrator(st, opts).Run(ctx, runState)
			if report != nil {
				printReport(cmd.OutOrStdout(), report)
			}
			return err
		})
	},
}

var dedupeCompareCmd = &cobra.Command{
	Use:   "compare <we_vote_id> <we_vote_id>",
	Short: "Show how two politicians differ and whether they would auto-merge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withStore(ctx, func(st politician.Store) error {
			diag := dedupe.NewDiagnostics()
			c, err := newOrchestrator(st, dedupe.Options{}).Compare(ctx, args[0], args[1], diag)
			if err != nil {
				return err
			}
			printComparison(cmd.OutOrStdout(), c)
			printDiagnostics(cmd.OutOrStdout(), diag)
			return nil
		})
	},
}

var dedupeMergeCmd = &cobra.Command{
	Use:   "merge <survivor_we_vote_id> <loser_we_vote_id>",
	Short: "Merge the second politician into the first",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		human, err := parseChoices(mergeChoices)
		if err != nil {
			return err
		}
		return withStore(ctx, func(st politician.Store) error {
			diag := dedupe.NewDiagnostics()
			res, err := newOrchestrator(st, dedupe.Options{}).MergePair(ctx, args[0], args[1], human, diag)
			printDiagnostics(cmd.OutOrStdout(), diag)
			if err != nil {
				if eris.Is(err, dedupe.ErrNeedsHumanDecision) {
					return eris.Wrap(err, "pass --choose attribute=1|2 for each unresolved attribute")
				}
				return err
			}
			printMerge(cmd.OutOrStdout(), res)
			return nil
		})
	},
}

var dedupeNotDuplicatesCmd = &cobra.Command{
	Use:   "not-duplicates <we_vote_id> <we_vote_id>",
	Short: "Record that two politicians are different people",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withStore(ctx, func(st politician.Store) error {
			if err := newOrchestrator(st, dedupe.Options{}).MarkNotDuplicates(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s and %s are not duplicates\n",
				color.New(color.FgGreen).Sprint("✓"), args[0], args[1])
			return nil
		})
	},
}

var dedupeQueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List the possible-duplicate pairs awaiting review",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		return withStore(ctx, func(st politician.Store) error {
			diag := dedupe.NewDiagnostics()
			q, err := review.BuildQueue(ctx, st, queueState, diag)
			if err != nil {
				return err
			}
			if queueExport != "" {
				if err := review.Export(queueExport, q); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d pairs to %s\n", len(q.Entries), queueExport)
				return nil
			}
			printQueue(cmd.OutOrStdout(), q)
			printDiagnostics(cmd.OutOrStdout(), diag)
			return nil
		})
	},
}

func init() {
	dedupeRunCmd.Flags().StringVar(&runState, "state", "", "two-letter state code (required)")
	dedupeRunCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "find and decide without writing")
	dedupeRunCmd.Flags().IntVar(&runLimit, "limit", 0, "max politicians to load (overrides dedupe.batch_limit)")
	_ = dedupeRunCmd.MarkFlagRequired("state")

	dedupeMergeCmd.Flags().StringArrayVar(&mergeChoices, "choose", nil, "attribute=1|2 picks the side for a conflicting attribute (repeatable)")

	dedupeQueueCmd.Flags().StringVar(&queueState, "state", "", "two-letter state code; empty lists every state")
	dedupeQueueCmd.Flags().StringVar(&queueExport, "export", "", "write the queue to a .yaml or .xlsx file")

	dedupeCmd.AddCommand(dedupeRunCmd, dedupeCompareCmd, dedupeMergeCmd, dedupeNotDuplicatesCmd, dedupeQueueCmd)
	rootCmd.AddCommand(dedupeCmd)
}

func newOrchestrator(st politician.Store, opts dedupe.Options) *dedupe.Orchestrator {
	opts.Retry = resilience.FromSettings(cfg.Dedupe.TxAttempts, cfg.Dedupe.TxBackoffMs)
	merger := dedupe.NewMerger(st, seo.NewGenerator(cfg.Dedupe.SEORetries))
	return dedupe.NewOrchestrator(st, merger, opts)
}

// parseChoices turns "attribute=1|2" flags into side choices.
func parseChoices(raw []string) (map[politician.Attribute]dedupe.Side, error) {
	out := make(map[politician.Attribute]dedupe.Side, len(raw))
	for _, r := range raw {
		name, side, ok := strings.Cut(r, "=")
		if !ok {
			return nil, eris.Errorf("invalid --choose %q: want attribute=1|2", r)
		}
		a, err := politician.ParseAttribute(strings.TrimSpace(name))
		if err != nil {
			return nil, eris.Wrapf(err, "invalid --choose %q", r)
		}
		switch strings.TrimSpace(side) {
		case "1":
			out[a] = dedupe.Side1
		case "2":
			out[a] = dedupe.Side2
		default:
			return nil, eris.Errorf("invalid --choose %q: side must be 1 or 2", r)
		}
	}
	return out, nil
}

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

func stateColor(s dedupe.PairState) func(a ...any) string {
	switch s {
	case dedupe.StateAutoMerged:
		return green
	case dedupe.StateNeedsReview:
		return yellow
	case dedupe.StateNoMatch:
		return gray
	default:
		return red
	}
}

func printReport(w io.Writer, r *dedupe.BatchReport) {
	title := fmt.Sprintf("Run %s (%s)", r.RunID, r.StateCode)
	if r.DryRun {
		title += " [dry run]"
	}
	fmt.Fprintln(w, bold(title))
	for _, o := range r.Outcomes {
		line := fmt.Sprintf("  %-20s %s", stateColor(o.State)(o.State.String()), o.Seed)
		if len(o.Candidates) > 0 && o.Candidates[0] != "" {
			line += " ~ " + strings.Join(o.Candidates, ", ")
		}
		if o.Pass != dedupe.PassNone {
			line += gray(" via " + string(o.Pass))
		}
		if o.Error != "" {
			line += " " + red(o.Error)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "examined %d, skipped %d: %s, %s, %s, %s\n",
		r.Examined, r.Skipped,
		green(fmt.Sprintf("%d merged", r.AutoMerged)),
		yellow(fmt.Sprintf("%d for review", r.NeedsReview)),
		gray(fmt.Sprintf("%d no match", r.NoMatch)),
		red(fmt.Sprintf("%d failed", r.Failed)),
	)
	for _, d := range r.Diagnostics {
		fmt.Fprintln(w, "  "+yellow("! ")+d)
	}
}

func printComparison(w io.Writer, c *dedupe.Comparison) {
	fmt.Fprintf(w, "%s  %s (%s)  vs  %s (%s)\n", bold("Compare"),
		c.Politician1.WeVoteID, c.Politician1.PoliticianName,
		c.Politician2.WeVoteID, c.Politician2.PoliticianName)
	for _, a := range politician.Attributes() {
		o := c.Conflicts[a]
		if o == dedupe.Matching {
			continue
		}
		v1, _ := c.Politician1.Get(a)
		v2, _ := c.Politician2.Get(a)
		label := o.String()
		switch o {
		case dedupe.Conflict:
			label = red(label)
		default:
			label = yellow(label)
		}
		fmt.Fprintf(w, "  %-32s %-12s %q | %q\n", a, label, v1, v2)
	}
	printRefs(w, c.Politician1.WeVoteID, c.References1)
	printRefs(w, c.Politician2.WeVoteID, c.References2)
	if c.Decision.CanAutoMerge {
		fmt.Fprintln(w, green("can auto-merge"))
		return
	}
	names := make([]string, 0, len(c.Decision.Unresolved))
	for _, a := range c.Decision.Unresolved {
		names = append(names, a.String())
	}
	fmt.Fprintln(w, red("needs a human decision: ")+strings.Join(names, ", "))
}

func printRefs(w io.Writer, id string, refs map[politician.RefKind]int64) {
	kinds := make([]string, 0, len(refs))
	for k, n := range refs {
		if n > 0 {
			kinds = append(kinds, fmt.Sprintf("%s=%d", k, n))
		}
	}
	sort.Strings(kinds)
	if len(kinds) == 0 {
		kinds = append(kinds, "none")
	}
	fmt.Fprintf(w, "  references of %s: %s\n", id, strings.Join(kinds, " "))
}

func printMerge(w io.Writer, r *dedupe.MergeResult) {
	fmt.Fprintf(w, "%s merged %s into %s\n", green("✓"), r.LoserID, r.SurvivorID)
	moved := make([]string, 0, len(r.Moved))
	for k, n := range r.Moved {
		if n > 0 {
			moved = append(moved, fmt.Sprintf("%s=%d", k, n))
		}
	}
	sort.Strings(moved)
	if len(moved) > 0 {
		fmt.Fprintf(w, "  moved %s\n", strings.Join(moved, " "))
	}
	if r.SEOPath != "" {
		fmt.Fprintf(w, "  seo path %s\n", r.SEOPath)
	}
}

func printQueue(w io.Writer, q *review.Queue) {
	if len(q.Entries) == 0 {
		fmt.Fprintln(w, gray("review queue is empty"))
		return
	}
	for _, e := range q.Entries {
		status := yellow("review")
		switch {
		case e.Stale:
			status = gray("stale")
		case e.CanAutoMerge:
			status = green("auto")
		}
		fmt.Fprintf(w, "%5d %-6s %s %s (%s) ~ %s (%s)",
			e.PairID, status, e.StateCode,
			e.Politician1.WeVoteID, e.Politician1.Name,
			e.Politician2.WeVoteID, e.Politician2.Name)
		if len(e.Conflicts) > 0 {
			fmt.Fprint(w, red(" conflicts: "+strings.Join(e.Conflicts, ",")))
		}
		fmt.Fprintln(w)
	}
}

func printDiagnostics(w io.Writer, d *dedupe.Diagnostics) {
	for _, m := range d.Messages() {
		fmt.Fprintln(w, yellow("! ")+m)
	}
}
