// Package eval scores answers against expected ones with exact match and
// token F1 over normalized text.
package eval

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TobiSchelling/postqa/internal/assistant"
	"github.com/TobiSchelling/postqa/internal/record"
)

// Case is one question with its expected answer.
type Case struct {
	Question string `yaml:"question"`
	Expected string `yaml:"expected"`
}

// Suite is a case file. Posts, when present, replace the stored collection.
type Suite struct {
	Posts record.Collection `yaml:"posts"`
	Cases []Case            `yaml:"cases"`
}

// LoadSuite reads a YAML case file.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cases: %w", err)
	}
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing cases %s: %w", path, err)
	}
	if len(s.Cases) == 0 {
		return nil, fmt.Errorf("no cases in %s", path)
	}
	for i, c := range s.Cases {
		if strings.TrimSpace(c.Question) == "" {
			return nil, fmt.Errorf("case %d: empty question", i+1)
		}
	}
	return &s, nil
}

// Asker answers a question. *assistant.Assistant satisfies it.
type Asker interface {
	Ask(ctx context.Context, question string, generate bool) assistant.Reply
}

// Score is the result of one case.
type Score struct {
	Question   string          `json:"question"`
	Expected   string          `json:"expected"`
	Answer     string          `json:"answer"`
	Stage      assistant.Stage `json:"stage"`
	Rule       string          `json:"rule,omitempty"`
	ExactMatch bool            `json:"exact_match"`
	F1         float64         `json:"f1"`
}

// Report holds per-case scores and their averages.
type Report struct {
	Scores     []Score `json:"scores"`
	ExactMatch float64 `json:"exact_match"`
	F1         float64 `json:"f1"`
}

// Run asks every case in order and scores the replies.
func Run(ctx context.Context, a Asker, cases []Case, generate bool) *Report {
	rep := &Report{Scores: make([]Score, 0, len(cases))}
	if len(cases) == 0 {
		return rep
	}
	var em, f1 float64
	for _, c := range cases {
		reply := a.Ask(ctx, c.Question, generate)
		s := Score{
			Question:   c.Question,
			Expected:   c.Expected,
			Answer:     reply.Text,
			Stage:      reply.Stage,
			Rule:       reply.Rule,
			ExactMatch: ExactMatch(reply.Text, c.Expected),
			F1:         F1(reply.Text, c.Expected),
		}
		if s.ExactMatch {
			em++
		}
		f1 += s.F1
		rep.Scores = append(rep.Scores, s)
	}
	n := float64(len(cases))
	rep.ExactMatch = em / n
	rep.F1 = f1 / n
	return rep
}

var (
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	articles    = regexp.MustCompile(`\b(a|an|the)\b`)
)

// Normalize lower-cases s and drops punctuation and the articles a, an
// and the, then collapses whitespace.
func Normalize(s string) string {
	s = punctuation.ReplaceAllString(strings.ToLower(s), "")
	s = articles.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// ExactMatch reports whether pred and truth normalize to the same text.
func ExactMatch(pred, truth string) bool {
	return Normalize(pred) == Normalize(truth)
}

// F1 is the harmonic mean of token precision and recall, counting repeated
// tokens at most as often as they occur on both sides.
func F1(pred, truth string) float64 {
	predTokens := strings.Fields(Normalize(pred))
	truthTokens := strings.Fields(Normalize(truth))

	counts := make(map[string]int, len(truthTokens))
	for _, t := range truthTokens {
		counts[t]++
	}
	same := 0
	for _, t := range predTokens {
		if counts[t] > 0 {
			counts[t]--
			same++
		}
	}
	if same == 0 {
		return 0
	}
	precision := float64(same) / float64(len(predTokens))
	recall := float64(same) / float64(len(truthTokens))
	return 2 * precision * recall / (precision + recall)
}
