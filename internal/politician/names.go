package politician

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var namePrefixes = map[string]bool{
	"MR": true, "MRS": true, "MS": true, "MISS": true, "DR": true,
	"HON": true, "HONORABLE": true, "SEN": true, "SENATOR": true,
	"REP": true, "REPRESENTATIVE": true, "GOV": true, "GOVERNOR": true,
	"JUDGE": true, "MAYOR": true,
}

var nameSuffixes = map[string]bool{
	"JR": true, "SR": true, "II": true, "III": true, "IV": true, "V": true,
	"MD": true, "PHD": true, "ESQ": true, "DDS": true,
}

// Fold returns the Unicode case-folded form of s for case-insensitive
// comparison.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// FoldEqual reports whether a and b are equal ignoring case and
// surrounding or repeated whitespace.
func FoldEqual(a, b string) bool {
	return Fold(collapseSpaces(a)) == Fold(collapseSpaces(b))
}

// IsAllUpper reports whether s has at least one letter and no lower-case letters.
func IsAllUpper(s string) bool {
	if !hasLetter(s) {
		return false
	}
	return s == cases.Upper(language.Und).String(s)
}

// IsMixedCase reports whether s contains both upper- and lower-case letters.
func IsMixedCase(s string) bool {
	var upper, lower bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
		if upper && lower {
			return true
		}
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// SplitName extracts first and last name from a full name. Honorific
// prefixes and generational suffixes are ignored, and "Last, First" is
// accepted. ok is false when fewer than two name tokens remain.
func SplitName(full string) (first, last string, ok bool) {
	full = strings.TrimSpace(full)
	if before, after, found := strings.Cut(full, ","); found {
		rest := strings.TrimSpace(after)
		if rest != "" && !nameSuffixes[tokenKey(rest)] {
			full = rest + " " + before
		}
	}

	tokens := strings.Fields(full)
	for len(tokens) > 0 && namePrefixes[tokenKey(tokens[0])] {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && nameSuffixes[tokenKey(tokens[len(tokens)-1])] {
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) < 2 {
		return "", "", false
	}
	return strings.Trim(tokens[0], ","), strings.Trim(tokens[len(tokens)-1], ","), true
}

// StripMiddleInitials removes single-letter tokens (optionally followed by
// a period) that sit between the first and last token. Names with fewer
// than three tokens are returned unchanged. ok is false for blank input.
func StripMiddleInitials(name string) (string, bool) {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return "", false
	}
	if len(tokens) < 3 {
		return strings.Join(tokens, " "), true
	}
	kept := []string{tokens[0]}
	for _, tok := range tokens[1 : len(tokens)-1] {
		if !isInitial(tok) {
			kept = append(kept, tok)
		}
	}
	kept = append(kept, tokens[len(tokens)-1])
	return strings.Join(kept, " "), true
}

// MiddleInitials returns the upper-cased initials StripMiddleInitials
// would remove, in order.
func MiddleInitials(name string) []string {
	tokens := strings.Fields(name)
	if len(tokens) < 3 {
		return nil
	}
	var out []string
	for _, tok := range tokens[1 : len(tokens)-1] {
		if isInitial(tok) {
			out = append(out, tokenKey(tok))
		}
	}
	return out
}

func isInitial(tok string) bool {
	runes := []rune(strings.TrimSuffix(tok, "."))
	return len(runes) == 1 && unicode.IsLetter(runes[0])
}

func tokenKey(tok string) string {
	return strings.ToUpper(strings.Trim(tok, ".,"))
}
