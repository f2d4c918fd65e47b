package dedupe

import (
	"slices"

	"github.com/wevote/dedupe-cli/internal/politician"
)

// Side selects one of the two compared records.
type Side int

// Sides of a comparison. Side1 is the merge survivor.
const (
	Side1 Side = iota + 1
	Side2
)

// Decision is the outcome of the auto-merge decision for a pair.
type Decision struct {
	CanAutoMerge bool
	// Choices are the values the survivor must take over.
	Choices map[politician.Attribute]politician.Value
	// FieldsToClear are unique attributes whose value moves from the loser
	// to the survivor and must be blanked on the loser first.
	FieldsToClear      []politician.Attribute
	NeedsHumanDecision bool
	// Unresolved lists the attributes that blocked the auto-merge.
	Unresolved []politician.Attribute
}

// Decide walks every attribute of the conflict map and works out what a
// merge of r2 into r1 would copy. human optionally picks a side per
// attribute and overrides the analyzer; any CONFLICT it does not cover
// blocks the merge, except name-family conflicts that only differ by middle
// initials and case.
func Decide(r1, r2 *politician.Record, m ConflictMap, human map[politician.Attribute]Side) Decision {
	d := Decision{Choices: make(map[politician.Attribute]politician.Value)}

	for _, a := range politician.Attributes() {
		if side, ok := human[a]; ok {
			if side == Side2 {
				d.take(a, r2)
			}
			continue
		}

		outcome, ok := m[a]
		if !ok {
			d.Unresolved = append(d.Unresolved, a)
			continue
		}
		switch outcome {
		case Politician2:
			d.take(a, r2)
		case Conflict:
			side, resolved := resolveNameConflict(a, r1, r2)
			if !resolved {
				d.Unresolved = append(d.Unresolved, a)
				continue
			}
			if side == Side2 {
				d.take(a, r2)
			}
		}
	}

	d.CanAutoMerge = len(d.Unresolved) == 0
	d.NeedsHumanDecision = !d.CanAutoMerge
	return d
}

func (d *Decision) take(a politician.Attribute, from *politician.Record) {
	v, err := from.Get(a)
	if err != nil {
		return
	}
	d.Choices[a] = v
	if a.Unique() && !v.IsEmpty() {
		d.FieldsToClear = append(d.FieldsToClear, a)
	}
}

// resolveNameConflict settles a name-family conflict when both values are
// the same name once middle initials are dropped and case is ignored, and
// the initials do not disagree: when both sides carry initials they must be
// the same ones. The mixed-case spelling wins; when neither is preferred
// the survivor keeps its own.
func resolveNameConflict(a politician.Attribute, r1, r2 *politician.Record) (Side, bool) {
	if !a.IsNameFamily() {
		return 0, false
	}
	v1, err1 := r1.Get(a)
	v2, err2 := r2.Get(a)
	if err1 != nil || err2 != nil {
		return 0, false
	}
	s1, ok1 := politician.StripMiddleInitials(v1.Str())
	s2, ok2 := politician.StripMiddleInitials(v2.Str())
	if !ok1 || !ok2 || !politician.FoldEqual(s1, s2) {
		return 0, false
	}
	i1, i2 := politician.MiddleInitials(v1.Str()), politician.MiddleInitials(v2.Str())
	if len(i1) > 0 && len(i2) > 0 && !slices.Equal(i1, i2) {
		return 0, false
	}
	if !politician.IsMixedCase(v1.Str()) && politician.IsMixedCase(v2.Str()) {
		return Side2, true
	}
	return Side1, true
}
