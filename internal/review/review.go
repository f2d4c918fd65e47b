// Package review builds the possible-duplicates queue for offline triage
// and exports it as YAML or XLSX.
package review

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/wevote/dedupe-cli/internal/dedupe"
	"github.com/wevote/dedupe-cli/internal/politician"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "review_queue"

// Side is one politician of a queued pair.
type Side struct {
	WeVoteID  string `yaml:"we_vote_id"`
	Name      string `yaml:"name,omitempty"`
	StateCode string `yaml:"state_code,omitempty"`
}

// Entry is one possible-duplicate pair awaiting a decision.
type Entry struct {
	PairID       int64    `yaml:"pair_id"`
	StateCode    string   `yaml:"state_code"`
	Politician1  Side     `yaml:"politician1"`
	Politician2  Side     `yaml:"politician2"`
	Conflicts    []string `yaml:"conflicts,omitempty"`
	CanAutoMerge bool     `yaml:"can_auto_merge"`
	// Stale is set when either politician no longer exists.
	Stale bool `yaml:"stale,omitempty"`
}

// Queue is the exported document.
type Queue struct {
	StateCode string  `yaml:"state_code,omitempty"`
	Entries   []Entry `yaml:"entries"`
}

// BuildQueue loads every open pair for stateCode and analyses it against
// the current records. No-match markers are left out.
func BuildQueue(ctx context.Context, r politician.Reader, stateCode string, diag *dedupe.Diagnostics) (*Queue, error) {
	pairs, err := r.ListDuplicatePairs(ctx, stateCode)
	if err != nil {
		return nil, eris.Wrap(err, "review: build queue")
	}

	q := &Queue{StateCode: stateCode}
	for _, p := range pairs {
		if p.PoliticianWeVoteID2 == "" {
			continue
		}
		e := Entry{
			PairID:      p.ID,
			StateCode:   p.StateCode,
			Politician1: Side{WeVoteID: p.PoliticianWeVoteID},
			Politician2: Side{WeVoteID: p.PoliticianWeVoteID2},
		}

		r1, err := r.GetByWeVoteID(ctx, p.PoliticianWeVoteID)
		if err != nil {
			return nil, eris.Wrapf(err, "review: pair %d", p.ID)
		}
		r2, err := r.GetByWeVoteID(ctx, p.PoliticianWeVoteID2)
		if err != nil {
			return nil, eris.Wrapf(err, "review: pair %d", p.ID)
		}
		if r1 == nil || r2 == nil {
			e.Stale = true
			diag.Addf("pair %d references a missing politician", p.ID)
			q.Entries = append(q.Entries, e)
			continue
		}

		e.Politician1 = sideOf(r1)
		e.Politician2 = sideOf(r2)
		m := dedupe.Compare(r1, r2, diag)
		for _, a := range m.Conflicts() {
			e.Conflicts = append(e.Conflicts, a.String())
		}
		e.CanAutoMerge = dedupe.Decide(r1, r2, m, nil).CanAutoMerge
		q.Entries = append(q.Entries, e)
	}
	return q, nil
}

func sideOf(r *politician.Record) Side {
	return Side{WeVoteID: r.WeVoteID, Name: r.PoliticianName, StateCode: r.StateCode}
}

// WriteYAML encodes q as a YAML document.
func WriteYAML(w io.Writer, q *Queue) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(q); err != nil {
		return eris.Wrap(err, "review: encode yaml")
	}
	return eris.Wrap(enc.Close(), "review: encode yaml")
}

var xlsxHeader = []string{
	"pair_id", "state_code",
	"politician1_we_vote_id", "politician1_name",
	"politician2_we_vote_id", "politician2_name",
	"conflicts", "can_auto_merge", "stale",
}

// WriteXLSX writes q to a single-sheet workbook at path, one row per pair.
func WriteXLSX(path string, q *Queue) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "review: add sheet")
	}
	addRow(sheet, xlsxHeader)
	for _, e := range q.Entries {
		addRow(sheet, []string{
			strconv.FormatInt(e.PairID, 10), e.StateCode,
			e.Politician1.WeVoteID, e.Politician1.Name,
			e.Politician2.WeVoteID, e.Politician2.Name,
			strings.Join(e.Conflicts, ","),
			strconv.FormatBool(e.CanAutoMerge),
			strconv.FormatBool(e.Stale),
		})
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "review: save %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

// Export writes q to path, picking the format from the extension.
func Export(path string, q *Queue) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return WriteXLSX(path, q)
	case ".yaml", ".yml":
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "review: create %s", path)
		}
		if err := WriteYAML(f, q); err != nil {
			f.Close() //nolint:errcheck
			return err
		}
		return eris.Wrapf(f.Close(), "review: close %s", path)
	default:
		return eris.Errorf("review: unsupported export format %q", filepath.Ext(path))
	}
}
