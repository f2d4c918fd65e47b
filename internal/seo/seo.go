// Package seo builds unique URL-safe paths for politician pages.
package seo

import (
	"context"
	"math/rand/v2"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrExhausted is returned when no free path was found within the retry budget.
var ErrExhausted = eris.New("seo: no free path")

// DefaultRetries bounds the suffixed attempts made after the bare slug collides.
const DefaultRetries = 10

const (
	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffixLen      = 3
	fallbackSlug   = "politician"
)

// Checker reports whether a path is already in use, either as a current
// path or in the path history.
type Checker interface {
	SEOPathTaken(ctx context.Context, path string) (bool, error)
}

// Generator produces unique paths.
type Generator struct {
	retries int
	intn    func(n int) int
}

// NewGenerator returns a generator that tries the bare slug and then up to
// retries suffixed variants. retries <= 0 uses DefaultRetries.
func NewGenerator(retries int) *Generator {
	if retries <= 0 {
		retries = DefaultRetries
	}
	return &Generator{retries: retries, intn: rand.IntN}
}

// Generate returns a path derived from base that c does not report as
// taken. A collision appends "-" plus three random lower-case letters or
// digits.
func (g *Generator) Generate(ctx context.Context, c Checker, base string) (string, error) {
	slug := Slugify(base)
	if slug == "" {
		slug = fallbackSlug
	}

	candidate := slug
	for attempt := 0; attempt <= g.retries; attempt++ {
		if attempt > 0 {
			candidate = slug + "-" + g.suffix()
		}
		taken, err := c.SEOPathTaken(ctx, candidate)
		if err != nil {
			return "", eris.Wrapf(err, "seo: check %q", candidate)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", eris.Wrapf(ErrExhausted, "seo: %q after %d attempts", slug, g.retries+1)
}

func (g *Generator) suffix() string {
	b := make([]byte, suffixLen)
	for i := range b {
		b[i] = suffixAlphabet[g.intn(len(suffixAlphabet))]
	}
	return string(b)
}

// Slugify lower-cases s, removes diacritics and joins the remaining ASCII
// letters and digits with single hyphens.
func Slugify(s string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
		case r == '\'' || r == '’':
		default:
			hyphen = true
		}
	}
	return b.String()
}
