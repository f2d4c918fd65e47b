package dedupe

import (
	"strconv"
	"strings"

	"github.com/wevote/dedupe-cli/internal/politician"
)

// rule is the comparison strategy for one attribute. empty decides which
// values count as absent; compare is only called with two present values
// that are not identical.
type rule struct {
	empty   func(v politician.Value) bool
	compare func(a, b politician.Value) Outcome
}

func defaultEmpty(v politician.Value) bool { return v.IsEmpty() }

func conflict(_, _ politician.Value) Outcome { return Conflict }

var defaultRule = rule{empty: defaultEmpty, compare: conflict}

// ruleFor returns the strategy for a. Every attribute not listed falls back
// to the default: present beats absent, identical matches, anything else
// conflicts.
func ruleFor(a politician.Attribute) rule {
	switch {
	case a.IsBattleground(), a == politician.AttrOCDIDStateMismatchFound:
		return rule{empty: defaultEmpty, compare: preferTrue}
	case a.IsNameFamily():
		return rule{empty: defaultEmpty, compare: compareNames}
	}
	switch a {
	case politician.AttrGender:
		return rule{empty: genderEmpty, compare: compareFold}
	case politician.AttrLinkedCampaignXWeVoteID:
		return rule{empty: defaultEmpty, compare: lowerSuffixWins}
	case politician.AttrPoliticalParty:
		return rule{empty: defaultEmpty, compare: compareParty}
	case politician.AttrSEOFriendlyPath:
		return rule{empty: defaultEmpty, compare: unsuffixedPathWins}
	case politician.AttrStateCode, politician.AttrInstagramHandle:
		return rule{empty: defaultEmpty, compare: compareFold}
	}
	return defaultRule
}

func genderEmpty(v politician.Value) bool {
	return v.IsEmpty() || strings.EqualFold(strings.TrimSpace(v.Str()), politician.GenderUnknown)
}

func compareFold(a, b politician.Value) Outcome {
	if politician.FoldEqual(strings.TrimPrefix(a.Str(), "@"), strings.TrimPrefix(b.Str(), "@")) {
		return Matching
	}
	return Conflict
}

func preferTrue(a, b politician.Value) Outcome {
	switch {
	case a.Bool() == b.Bool():
		return Matching
	case a.Bool():
		return Politician1
	default:
		return Politician2
	}
}

// lowerSuffixWins picks the campaign id with the lower trailing number.
// Ties and unparsable ids fall back to lexical order.
func lowerSuffixWins(a, b politician.Value) Outcome {
	na, okA := trailingNumber(a.Str())
	nb, okB := trailingNumber(b.Str())
	if okA && okB && na != nb {
		if na < nb {
			return Politician1
		}
		return Politician2
	}
	switch strings.Compare(a.Str(), b.Str()) {
	case -1:
		return Politician1
	case 1:
		return Politician2
	}
	return Matching
}

func trailingNumber(s string) (uint64, bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return 0, false
	}
	n, err := strconv.ParseUint(s[i:], 10, 64)
	return n, err == nil
}

func compareParty(a, b politician.Value) Outcome {
	pa, pb := politician.NormalizeParty(a.Str()), politician.NormalizeParty(b.Str())
	switch {
	case pa != "" && pa == pb:
		return Matching
	case pa == "" && pb == "" && politician.FoldEqual(a.Str(), b.Str()):
		return Matching
	}
	return Conflict
}

// compareNames treats case-only differences as the same name and prefers
// the mixed-case spelling. Any other difference, middle initials included,
// is a conflict.
func compareNames(a, b politician.Value) Outcome {
	if !politician.FoldEqual(a.Str(), b.Str()) {
		return Conflict
	}
	return preferMixedCase(a.Str(), b.Str())
}

func preferMixedCase(a, b string) Outcome {
	mixedA, mixedB := politician.IsMixedCase(a), politician.IsMixedCase(b)
	switch {
	case mixedA && !mixedB && politician.IsAllUpper(b):
		return Politician1
	case mixedB && !mixedA && politician.IsAllUpper(a):
		return Politician2
	}
	return Matching
}

const seoSuffixLen = 4

// unsuffixedPathWins prefers a path over the same path with a collision
// suffix ("-xyz") appended.
func unsuffixedPathWins(a, b politician.Value) Outcome {
	pa, pb := a.Str(), b.Str()
	switch {
	case len(pb) == len(pa)+seoSuffixLen && strings.HasPrefix(pb, pa):
		return Politician1
	case len(pa) == len(pb)+seoSuffixLen && strings.HasPrefix(pa, pb):
		return Politician2
	}
	return Conflict
}
