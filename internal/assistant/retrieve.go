package assistant

import (
	"context"
	"sort"

	"github.com/TobiSchelling/postqa/internal/filter"
	"github.com/TobiSchelling/postqa/internal/normalize"
	"github.com/TobiSchelling/postqa/internal/record"
)

// Retriever narrows a collection to the records relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, c record.Collection, question string) (record.Collection, error)
}

// searchFields are the record fields a keyword retriever looks at.
var searchFields = []string{
	record.Name, record.Author, record.Description,
	record.PostContent, record.Type,
}

// TopK keeps the K records sharing the most keywords with the question,
// in collection order. When the question has no keywords or no record
// matches any of them, the collection is returned unchanged.
type TopK struct {
	K int
}

// Retrieve implements Retriever.
func (t TopK) Retrieve(_ context.Context, c record.Collection, question string) (record.Collection, error) {
	if t.K <= 0 || len(c) <= t.K {
		return c, nil
	}
	kw := filter.Keywords(question)
	if len(kw) == 0 {
		return c, nil
	}

	type scored struct {
		idx   int
		score int
	}
	ranked := make([]scored, 0, len(c))
	for i, r := range c {
		if s := score(r, kw); s > 0 {
			ranked = append(ranked, scored{i, s})
		}
	}
	if len(ranked) == 0 {
		return c, nil
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > t.K {
		ranked = ranked[:t.K]
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].idx < ranked[j].idx })

	out := make(record.Collection, len(ranked))
	for i, s := range ranked {
		out[i] = c[s.idx]
	}
	return out, nil
}

// score counts the distinct keywords found in the searchable fields of r.
func score(r record.Record, kw []string) int {
	toks := make(map[string]struct{})
	for _, f := range searchFields {
		for _, tok := range normalize.Tokenize(r.Get(f)) {
			toks[tok] = struct{}{}
		}
	}
	n := 0
	seen := make(map[string]bool, len(kw))
	for _, k := range kw {
		if seen[k] {
			continue
		}
		seen[k] = true
		if _, ok := toks[k]; ok {
			n++
		}
	}
	return n
}
