package textmatch

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold is the minimum Jaro-Winkler score for a fuzzy name match.
const DefaultThreshold = 0.85

// Fold returns the caseless form of s. Accents are kept, so "Ángel" folds
// to "ángel" and not to "angel".
func Fold(s string) string {
	// A Caser is stateful, so each call gets its own.
	return cases.Fold().String(s)
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

// ContainsAny reports whether any of the substrings is within s, ignoring case.
// An empty list matches nothing.
func ContainsAny(s string, substrs []string) bool {
	folded := Fold(s)
	for _, sub := range substrs {
		if strings.Contains(folded, Fold(sub)) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every substring is within s, ignoring case.
// An empty list matches nothing.
func ContainsAll(s string, substrs []string) bool {
	if len(substrs) == 0 {
		return false
	}
	folded := Fold(s)
	for _, sub := range substrs {
		if !strings.Contains(folded, Fold(sub)) {
			return false
		}
	}
	return true
}

// Simplify folds case and strips combining marks, so "ÁNGEL" and "angel"
// compare equal. Used for matching player input, never for clue text.
func Simplify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return Fold(strings.TrimSpace(out))
}

// Title returns s in title case, e.g. "MAMÁ" becomes "Mamá".
func Title(s string) string {
	return cases.Title(language.Und).String(s)
}

// Resolver maps loosely typed names onto a fixed set of canonical names.
type Resolver struct {
	names     []string
	simple    []string
	threshold float64
}

// NewResolver builds a resolver over names. A threshold <= 0 uses DefaultThreshold.
func NewResolver(names []string, threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	r := &Resolver{
		names:     append([]string(nil), names...),
		simple:    make([]string, len(names)),
		threshold: threshold,
	}
	for i, n := range names {
		r.simple[i] = Simplify(n)
	}
	return r
}

// Resolve returns the canonical name closest to input. Exact matches after
// simplification win outright; otherwise the best Jaro-Winkler score above
// the threshold is used. Ties keep the earlier name.
func (r *Resolver) Resolve(input string) (string, bool) {
	in := Simplify(input)
	if in == "" {
		return "", false
	}
	for i, s := range r.simple {
		if s == in {
			return r.names[i], true
		}
	}

	best, bestScore := -1, 0.0
	for i, s := range r.simple {
		score := matchr.JaroWinkler(in, s, false)
		if score >= r.threshold && score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return "", false
	}
	return r.names[best], true
}
