// Package compose drafts new posts, either from a free-text prompt or
// modelled on the best-performing stored posts.
package compose

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/TobiSchelling/postqa/internal/aggregate"
	"github.com/TobiSchelling/postqa/internal/database"
	"github.com/TobiSchelling/postqa/internal/llm"
	"github.com/TobiSchelling/postqa/internal/record"
)

var (
	ErrEmptyPrompt = errors.New("prompt is empty")
	ErrNoProvider  = errors.New("no LLM provider available")
	ErrNoSamples   = errors.New("no posts with content to learn from")
)

const writerSystemPrompt = "You are a professional LinkedIn post writer. " +
	"Write a friendly, engaging, and clear LinkedIn post based on the user's input. " +
	"Avoid repetition and use varied sentence structures."

const strategistSystemPrompt = "You are an expert LinkedIn content strategist."

const samplesPrompt = `Here are %d of my top-performing LinkedIn posts:

%s

Based on the tone, structure and topics of these posts, write %d brand-new engaging LinkedIn posts I can share. Vary the style: one inspirational, one about a professional achievement, one opinion piece. Keep each post under %d words.

Respond with ONLY this JSON:
{
    "posts": [
        "First post",
        "Second post"
    ]
}`

// Provider generates text. llm.Provider satisfies it.
type Provider interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
	Model() string
}

// Composer drafts posts and stores them.
type Composer struct {
	db       *database.DB
	provider Provider
	logger   *zap.SugaredLogger

	csvPath     string
	samples     int
	maxWords    int
	maxTokens   int
	temperature float64
}

// Option configures a Composer.
type Option func(*Composer)

// WithCSV appends every draft as a prompt,post row to path.
func WithCSV(path string) Option {
	return func(c *Composer) { c.csvPath = path }
}

// WithSamples sets how many top posts are quoted and how many drafts are
// requested, and the word limit per draft.
func WithSamples(samples, maxWords int) Option {
	return func(c *Composer) {
		if samples > 0 {
			c.samples = samples
		}
		if maxWords > 0 {
			c.maxWords = maxWords
		}
	}
}

// WithGeneration sets the completion budget.
func WithGeneration(maxTokens int, temperature float64) Option {
	return func(c *Composer) {
		if maxTokens > 0 {
			c.maxTokens = maxTokens
		}
		c.temperature = temperature
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewComposer creates a new post composer. provider may be nil, in which
// case every draft request fails with ErrNoProvider.
func NewComposer(db *database.DB, provider Provider, opts ...Option) *Composer {
	c := &Composer{
		db:          db,
		provider:    provider,
		logger:      zap.NewNop().Sugar(),
		samples:     3,
		maxWords:    150,
		maxTokens:   400,
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromPrompt drafts one post from a free-text prompt.
func (c *Composer) FromPrompt(ctx context.Context, prompt string) (*database.Draft, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if c.provider == nil {
		return nil, ErrNoProvider
	}

	body, err := c.provider.Generate(ctx, llm.Request{
		System:      writerSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generating post: %w", err)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.New("model returned an empty post")
	}

	drafts, err := c.store(prompt, []string{body})
	if err != nil {
		return nil, err
	}
	return &drafts[0], nil
}

// FromTopPosts drafts new posts modelled on the highest-engagement posts
// of coll.
func (c *Composer) FromTopPosts(ctx context.Context, coll record.Collection) ([]database.Draft, error) {
	top := TopPosts(coll, c.samples)
	if len(top) == 0 {
		return nil, ErrNoSamples
	}
	if c.provider == nil {
		return nil, ErrNoProvider
	}

	prompt := buildSamplesPrompt(top, c.samples, c.maxWords)
	text, err := c.provider.Generate(ctx, llm.Request{
		System:      strategistSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   c.maxTokens * c.samples,
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generating posts: %w", err)
	}

	bodies := parsePosts(text)
	if len(bodies) == 0 {
		return nil, errors.New("model returned no posts")
	}
	c.logger.Infof("drafted %d posts from %d samples", len(bodies), len(top))
	return c.store(fmt.Sprintf("top %d posts", len(top)), bodies)
}

// TopPosts returns up to n records with content, ordered by likes plus
// comments, highest first. Ties keep collection order.
func TopPosts(coll record.Collection, n int) record.Collection {
	var withContent record.Collection
	for _, r := range coll {
		if strings.TrimSpace(r.Get(record.PostContent)) != "" {
			withContent = append(withContent, r)
		}
	}
	sort.SliceStable(withContent, func(i, j int) bool {
		return engagement(withContent[i]) > engagement(withContent[j])
	})
	if len(withContent) > n {
		withContent = withContent[:n]
	}
	return withContent
}

func engagement(r record.Record) float64 {
	return aggregate.Value(r, record.LikeCount) + aggregate.Value(r, record.CommentCount)
}

func buildSamplesPrompt(top record.Collection, want, maxWords int) string {
	parts := make([]string, len(top))
	for i, r := range top {
		parts[i] = fmt.Sprintf("%d. %s", i+1, strings.TrimSpace(r.Get(record.PostContent)))
	}
	return fmt.Sprintf(samplesPrompt, len(top), strings.Join(parts, "\n\n"), want, maxWords)
}

var numbered = regexp.MustCompile(`(?m)^\s*(?:\d+[.)]|#+\s*Post \d+:?)\s*`)

// parsePosts reads the posts out of a model reply: the JSON shape when
// the model followed instructions, a numbered list otherwise.
func parsePosts(text string) []string {
	var payload struct {
		Posts []string `json:"posts"`
	}
	if err := llm.DecodeJSON(text, &payload); err == nil {
		var out []string
		for _, p := range payload.Posts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var out []string
	for _, p := range numbered.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Composer) store(prompt string, bodies []string) ([]database.Draft, error) {
	model := c.provider.Model()
	drafts := make([]database.Draft, 0, len(bodies))
	for _, body := range bodies {
		id, err := c.db.InsertDraft(prompt, body, model)
		if err != nil {
			return nil, fmt.Errorf("storing draft: %w", err)
		}
		m := model
		drafts = append(drafts, database.Draft{ID: id, Prompt: prompt, Body: body, Model: &m})
	}

	if c.csvPath != "" {
		if err := appendCSV(c.csvPath, prompt, bodies); err != nil {
			c.logger.Warnf("saving drafts to %s: %v", c.csvPath, err)
		}
	}
	return drafts, nil
}

func appendCSV(path, prompt string, bodies []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	for _, body := range bodies {
		if err := w.Write([]string{prompt, body}); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
