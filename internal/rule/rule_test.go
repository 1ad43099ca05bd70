package rule

import (
	"testing"

	"github.com/TobiSchelling/postqa/internal/record"
)

func TestPattern(t *testing.T) {
	ext := Pattern(`followers does (` + Words + `) have`)
	params, ok := ext(NewQuery("How many followers does José Álvarez have?"))
	if !ok {
		t.Fatal("expected a match")
	}
	if params[0] != "jose alvarez" {
		t.Errorf("expected normalized capture, got %q", params[0])
	}
	if _, ok := ext(NewQuery("nothing here")); ok {
		t.Error("expected no match")
	}
}

func TestRawPatternKeepsCase(t *testing.T) {
	params, ok := RawPattern(`"(` + Words + `)"`)(NewQuery(`Find "Rust Lang" posts`))
	if !ok || params[0] != "Rust Lang" {
		t.Errorf("expected raw capture, got %v %v", params, ok)
	}
}

func TestPhrases(t *testing.T) {
	q := NewQuery("How many DISTINCT authors wrote text posts?")
	if _, ok := AnyPhrase("nope", "distinct authors")(q); !ok {
		t.Error("AnyPhrase should match")
	}
	if _, ok := AllPhrases("how many", "distinct authors", "text")(q); !ok {
		t.Error("AllPhrases should match")
	}
	if _, ok := AllPhrases("how many", "articles")(q); ok {
		t.Error("AllPhrases should require every phrase")
	}
}

func TestTableResolve(t *testing.T) {
	always := func(Query) ([]string, bool) { return nil, true }
	never := func(Query) ([]string, bool) { return nil, false }
	empty := func(record.Collection, []string) (string, bool) { return "", false }
	found := func(v string) func(record.Collection, []string) (string, bool) {
		return func(record.Collection, []string) (string, bool) { return v, true }
	}

	tests := []struct {
		name     string
		table    Table[string]
		wantRule string
		wantOK   bool
	}{
		{
			name: "first match wins",
			table: Table[string]{
				{Name: "a", Extract: always, Handle: found("A")},
				{Name: "b", Extract: always, Handle: found("B")},
			},
			wantRule: "a", wantOK: true,
		},
		{
			name: "unmatched pattern is skipped",
			table: Table[string]{
				{Name: "a", Extract: never, Handle: found("A")},
				{Name: "b", Extract: always, Handle: found("B")},
			},
			wantRule: "b", wantOK: true,
		},
		{
			name: "empty handler falls through",
			table: Table[string]{
				{Name: "a", Extract: always, Handle: empty},
				{Name: "b", Extract: always, Handle: found("B")},
			},
			wantRule: "b", wantOK: true,
		},
		{
			name: "terminal rule stops on empty",
			table: Table[string]{
				{Name: "a", Extract: always, Handle: empty, Terminal: true},
				{Name: "b", Extract: always, Handle: found("B")},
			},
			wantRule: "a", wantOK: true,
		},
		{
			name: "nothing applies",
			table: Table[string]{
				{Name: "a", Extract: always, Handle: empty},
			},
			wantRule: "", wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, name, ok := tt.table.Resolve(nil, "q")
			if name != tt.wantRule || ok != tt.wantOK {
				t.Errorf("Resolve = %q, %v; want %q, %v", name, ok, tt.wantRule, tt.wantOK)
			}
		})
	}
}
