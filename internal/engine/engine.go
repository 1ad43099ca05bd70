// Package engine answers questions about a collection of posts.
//
// A question first goes to the direct-answer rules. When none of them
// produces a sentence, the filter rules select matching records and the
// result is rendered as Markdown blocks. The engine does no I/O and keeps
// no state between calls.
package engine

import (
	"github.com/TobiSchelling/postqa/internal/answer"
	"github.com/TobiSchelling/postqa/internal/filter"
	"github.com/TobiSchelling/postqa/internal/format"
	"github.com/TobiSchelling/postqa/internal/record"
)

// Stage names the resolver that produced a result.
type Stage string

const (
	StageDirect Stage = "direct"
	StageFilter Stage = "filter"
)

// Result is a resolved question.
type Result struct {
	Stage Stage
	// Rule is the name of the deciding rule, empty when none applied.
	Rule    string
	Text    string
	Records record.Collection
}

// Answered reports whether any rule recognized the question and produced
// something other than an empty result.
func (r Result) Answered() bool {
	if r.Stage == StageDirect {
		return true
	}
	return len(r.Records) > 0
}

// Answer returns the text answer to question. It is never empty.
func Answer(c record.Collection, question string) string {
	return Resolve(c, question).Text
}

// Resolve runs both stages and reports which one answered.
func Resolve(c record.Collection, question string) Result {
	if a, ok := answer.Match(c, question); ok && a.Text != answer.Sentinel {
		return Result{Stage: StageDirect, Rule: a.Rule, Text: a.Text}
	}
	rs, rule := filter.Match(c, question)
	return Result{
		Stage:   StageFilter,
		Rule:    rule,
		Text:    format.Records(rs),
		Records: rs,
	}
}
