package dedupe

import (
	"sort"
	"strings"

	"github.com/wevote/dedupe-cli/internal/politician"
)

// Outcome is the result of comparing one attribute of two records.
type Outcome int

// Comparison outcomes.
const (
	Matching Outcome = iota
	Politician1
	Politician2
	Conflict
)

func (o Outcome) String() string {
	switch o {
	case Matching:
		return "MATCHING"
	case Politician1:
		return "POLITICIAN1"
	case Politician2:
		return "POLITICIAN2"
	case Conflict:
		return "CONFLICT"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the outcome name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// ConflictMap holds the outcome per attribute. An attribute that could not
// be read is absent.
type ConflictMap map[politician.Attribute]Outcome

// Conflicts lists the attributes marked CONFLICT, in attribute order.
func (m ConflictMap) Conflicts() []politician.Attribute {
	return m.with(Conflict)
}

func (m ConflictMap) with(o Outcome) []politician.Attribute {
	var out []politician.Attribute
	for a, got := range m {
		if got == o {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Compare runs the conflict analyzer over every identity attribute of r1
// and r2. Read failures are reported to diag and leave the attribute out
// of the map.
func Compare(r1, r2 *politician.Record, diag *Diagnostics) ConflictMap {
	return compareAttributes(r1, r2, politician.Attributes(), diag)
}

func compareAttributes(r1, r2 *politician.Record, attrs []politician.Attribute, diag *Diagnostics) ConflictMap {
	m := make(ConflictMap, len(attrs))
	for _, a := range attrs {
		v1, err := r1.Get(a)
		if err != nil {
			diag.AddError("compare "+a.String()+" on "+r1.WeVoteID, err)
			continue
		}
		v2, err := r2.Get(a)
		if err != nil {
			diag.AddError("compare "+a.String()+" on "+r2.WeVoteID, err)
			continue
		}
		m[a] = compareValues(ruleFor(a), v1, v2)
	}
	return m
}

func compareValues(r rule, v1, v2 politician.Value) Outcome {
	e1, e2 := r.empty(v1), r.empty(v2)
	switch {
	case e1 && e2:
		return Matching
	case e2:
		return Politician1
	case e1:
		return Politician2
	}
	if identical(v1, v2) {
		return Matching
	}
	return r.compare(v1, v2)
}

func identical(v1, v2 politician.Value) bool {
	if v1.Kind() == politician.KindString && v2.Kind() == politician.KindString {
		return strings.TrimSpace(v1.Str()) == strings.TrimSpace(v2.Str())
	}
	return v1.Equal(v2)
}
