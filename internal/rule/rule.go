// Package rule evaluates ordered tables of question patterns.
//
// A rule pairs an extractor, which recognizes a question shape and pulls
// parameters out of it, with a handler that computes a result from the
// collection. Tables are evaluated top to bottom and the first rule that
// produces a result wins.
package rule

import (
	"regexp"
	"strings"

	"github.com/TobiSchelling/postqa/internal/normalize"
	"github.com/TobiSchelling/postqa/internal/record"
)

// Words matches a run of letters, digits, underscores and spaces.
const Words = `[\p{L}\p{N}_\s]+`

// Query is a question in both its typed and normalized forms.
type Query struct {
	Raw  string
	Norm string
}

// NewQuery normalizes question.
func NewQuery(question string) Query {
	return Query{Raw: question, Norm: normalize.Text(question)}
}

// Extractor recognizes a question shape and returns its parameters.
type Extractor func(q Query) ([]string, bool)

// Pattern matches expr against the normalized question and returns its
// submatches.
func Pattern(expr string) Extractor {
	re := regexp.MustCompile(expr)
	return func(q Query) ([]string, bool) {
		m := re.FindStringSubmatch(q.Norm)
		if m == nil {
			return nil, false
		}
		return m[1:], true
	}
}

// RawPattern is Pattern applied to the question as typed.
func RawPattern(expr string) Extractor {
	re := regexp.MustCompile(expr)
	return func(q Query) ([]string, bool) {
		m := re.FindStringSubmatch(q.Raw)
		if m == nil {
			return nil, false
		}
		return m[1:], true
	}
}

// AnyPhrase matches when the normalized question contains one of phrases.
func AnyPhrase(phrases ...string) Extractor {
	return func(q Query) ([]string, bool) {
		for _, p := range phrases {
			if strings.Contains(q.Norm, p) {
				return nil, true
			}
		}
		return nil, false
	}
}

// AllPhrases matches when the normalized question contains every phrase.
func AllPhrases(phrases ...string) Extractor {
	return func(q Query) ([]string, bool) {
		for _, p := range phrases {
			if !strings.Contains(q.Norm, p) {
				return nil, false
			}
		}
		return nil, true
	}
}

// Tokens passes the tokens of the normalized question as parameters.
func Tokens(q Query) ([]string, bool) {
	toks := normalize.Tokenize(q.Norm)
	return toks, len(toks) > 0
}

// Rule is one entry of a Table. Handle reports whether it found a
// qualifying result; a Terminal rule ends evaluation once its pattern
// matches, whatever Handle reports.
type Rule[T any] struct {
	Name     string
	Extract  Extractor
	Handle   func(c record.Collection, params []string) (T, bool)
	Terminal bool
}

// Table is an ordered rule set. It is built once and only read afterwards.
type Table[T any] []Rule[T]

// Resolve evaluates the table against question. It returns the result, the
// name of the rule that produced it, and false when no rule applied.
func (t Table[T]) Resolve(c record.Collection, question string) (T, string, bool) {
	q := NewQuery(question)
	for _, r := range t {
		params, ok := r.Extract(q)
		if !ok {
			continue
		}
		if v, found := r.Handle(c, params); found || r.Terminal {
			return v, r.Name, true
		}
	}
	var zero T
	return zero, "", false
}

// Names lists the rule names in evaluation order.
func (t Table[T]) Names() []string {
	names := make([]string, len(t))
	for i, r := range t {
		names[i] = r.Name
	}
	return names
}

// TrimURL drops sentence punctuation and closing quotes captured after a URL.
func TrimURL(u string) string {
	return strings.TrimRight(u, `.,;:!?)]}'"`)
}
