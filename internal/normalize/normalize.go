// Package normalize canonicalizes question text and record values so that
// every comparison in the resolvers happens on the same representation.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// folds maps letters and typographic marks that have no canonical
// decomposition onto their plain Latin spelling.
var folds = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"ø", "o",
	"ł", "l",
	"đ", "d",
	"ð", "d",
	"þ", "th",
	"ı", "i",
	"‘", "'",
	"’", "'",
	"‚", "'",
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"«", `"`,
	"»", `"`,
	"–", "-",
	"—", "-",
	"…", "...",
)

// Text lower-cases s, strips diacritics and trims surrounding whitespace.
// Text(Text(s)) == Text(s) for every s.
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	// Transformers carry state, so each call gets its own chain.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}
	// Compatibility decomposition can surface upper-case letters (ℌ → H).
	s = strings.ToLower(folds.Replace(s))
	return strings.TrimSpace(s)
}

// Tokenize normalizes s, turns every punctuation character into a space and
// splits on whitespace. Token order follows the input; duplicates are kept.
func Tokenize(s string) []string {
	s = Text(s)
	if s == "" {
		return []string{}
	}
	s = strings.Map(func(r rune) rune {
		if isPunct(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Fields(s)
}

const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func isPunct(r rune) bool {
	if r < unicode.MaxASCII {
		return strings.ContainsRune(asciiPunct, r)
	}
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
