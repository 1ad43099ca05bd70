// Package assistant answers questions against the loaded post collection,
// falling back to free-text generation when no rule applies.
package assistant

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/TobiSchelling/postqa/internal/engine"
	"github.com/TobiSchelling/postqa/internal/llm"
	"github.com/TobiSchelling/postqa/internal/record"
)

// Stage names how a reply was produced.
type Stage string

const (
	StageDirect    Stage = "direct"
	StageFilter    Stage = "filter"
	StageGenerated Stage = "generated"
	StageNone      Stage = "none"
)

// Reply is the answer to one question.
type Reply struct {
	Question string            `json:"question"`
	Stage    Stage             `json:"stage"`
	Rule     string            `json:"rule,omitempty"`
	Text     string            `json:"text"`
	Records  record.Collection `json:"records,omitempty"`
	// Candidates is the size of the collection the rules ran against.
	Candidates int `json:"candidates"`
}

// Generator produces free text. llm.Provider satisfies it.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// QuestionLog records asked questions. *database.DB satisfies it.
type QuestionLog interface {
	LogQuestion(text, stage, rule string) error
}

// Assistant holds the current collection and its collaborators. It is safe
// for concurrent use; Swap replaces the collection without locking readers.
type Assistant struct {
	posts     atomic.Pointer[record.Collection]
	retriever Retriever
	generator Generator
	log       QuestionLog
	logger    *zap.SugaredLogger

	maxTokens   int
	temperature float64
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithRetriever narrows the collection before the rules run.
func WithRetriever(r Retriever) Option {
	return func(a *Assistant) { a.retriever = r }
}

// WithGenerator sets the fallback generator. A nil generator disables the
// fallback.
func WithGenerator(g Generator) Option {
	return func(a *Assistant) { a.generator = g }
}

// WithGeneration sets the completion budget of the fallback.
func WithGeneration(maxTokens int, temperature float64) Option {
	return func(a *Assistant) {
		a.maxTokens = maxTokens
		a.temperature = temperature
	}
}

// WithQuestionLog records every question asked.
func WithQuestionLog(l QuestionLog) Option {
	return func(a *Assistant) { a.log = l }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(a *Assistant) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an assistant over c.
func New(c record.Collection, opts ...Option) *Assistant {
	a := &Assistant{
		logger:      zap.NewNop().Sugar(),
		maxTokens:   400,
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.Swap(c)
	return a
}

// Swap replaces the collection. Questions in flight keep the old one.
func (a *Assistant) Swap(c record.Collection) {
	if c == nil {
		c = record.Collection{}
	}
	a.posts.Store(&c)
}

// Collection returns the current collection. Callers must not modify it.
func (a *Assistant) Collection() record.Collection {
	return *a.posts.Load()
}

// CanGenerate reports whether a generation fallback is configured.
func (a *Assistant) CanGenerate() bool {
	return a.generator != nil
}

// Ask answers question. Generation is attempted only when generate is
// true, a generator is configured and neither rule stage matched. A failed
// generation is logged and reported as StageNone.
func (a *Assistant) Ask(ctx context.Context, question string, generate bool) Reply {
	all := a.Collection()
	candidates := all
	if a.retriever != nil {
		narrowed, err := a.retriever.Retrieve(ctx, all, question)
		if err != nil {
			a.logger.Warnf("retrieval failed, using full collection: %v", err)
		} else {
			candidates = narrowed
		}
	}

	res := engine.Resolve(candidates, question)
	reply := Reply{
		Question:   question,
		Rule:       res.Rule,
		Text:       res.Text,
		Records:    res.Records,
		Candidates: len(candidates),
	}
	switch {
	case res.Stage == engine.StageDirect:
		reply.Stage = StageDirect
	case res.Answered():
		reply.Stage = StageFilter
	default:
		reply.Stage = StageNone
		if generate && a.generator != nil {
			a.generate(ctx, &reply, candidates)
		}
	}

	a.logger.Debugf("question %q answered by %s/%s over %d records", question, reply.Stage, reply.Rule, reply.Candidates)
	if a.log != nil {
		if err := a.log.LogQuestion(question, string(reply.Stage), reply.Rule); err != nil {
			a.logger.Warnf("logging question: %v", err)
		}
	}
	return reply
}

func (a *Assistant) generate(ctx context.Context, reply *Reply, candidates record.Collection) {
	text, err := a.generator.Generate(ctx, llm.Request{
		System:      answerSystemPrompt,
		Prompt:      buildAnswerPrompt(reply.Question, candidates),
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		a.logger.Warnf("generation failed: %v", err)
		return
	}
	if text == "" {
		return
	}
	reply.Stage = StageGenerated
	reply.Rule = ""
	reply.Text = text
	reply.Records = nil
}
