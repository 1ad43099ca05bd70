// Package pipeline runs the ingest steps that fill the post store.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/TobiSchelling/postqa/internal/collect"
	"github.com/TobiSchelling/postqa/internal/config"
	"github.com/TobiSchelling/postqa/internal/database"
	"github.com/TobiSchelling/postqa/internal/fetch"
	"github.com/TobiSchelling/postqa/internal/ingest"
	"github.com/TobiSchelling/postqa/internal/logging"
)

// SourceCSV is stored as the source of posts loaded from CSV or JSON files.
const SourceCSV = "csv"

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	Steps []StepResult
	Run   database.IngestRun
}

// Failed reports whether any step returned an error.
func (r *Result) Failed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Options tune a single run.
type Options struct {
	// DaysBack limits collected feed items by age; 0 keeps all.
	DaysBack int
	// Replace clears stored posts before loading.
	Replace bool
	// SkipFetch turns off content backfill for this run.
	SkipFetch bool
}

// Pipeline orchestrates the 3-step ingest: load, collect, fetch.
type Pipeline struct {
	cfg    *config.Config
	db     *database.DB
	logger *zap.SugaredLogger
}

// New creates a new pipeline.
func New(cfg *config.Config, db *database.DB, logger *zap.SugaredLogger) *Pipeline {
	logger = logging.Nop(logger)
	return &Pipeline{cfg: cfg, db: db, logger: logger}
}

// Run executes every step and records the run.
func (p *Pipeline) Run(ctx context.Context, opts Options) *Result {
	r := &Result{}

	if opts.Replace {
		if err := p.db.ClearPosts(); err != nil {
			r.Steps = append(r.Steps, StepResult{Name: "Load", Err: fmt.Errorf("clearing posts: %w", err)})
			return r
		}
	}

	// Step 1: Load files
	step := p.runLoad(r, p.cfg.Sources.CSV)
	r.Steps = append(r.Steps, step)

	// Step 2: Collect feeds
	r.Steps = append(r.Steps, p.runCollect(ctx, r, opts.DaysBack))

	// Step 3: Fetch content
	if p.cfg.Fetch.Enabled && !opts.SkipFetch {
		r.Steps = append(r.Steps, p.runFetch(ctx, r))
	} else {
		r.Steps = append(r.Steps, StepResult{Name: "Fetch", Summary: "Content fetching disabled"})
	}

	if _, err := p.db.InsertIngestRun(r.Run); err != nil {
		p.logger.Warnf("recording ingest run: %v", err)
	}
	return r
}

// Load stores the records of the given files and records the run.
func (p *Pipeline) Load(paths []string, replace bool) *Result {
	r := &Result{}
	if replace {
		if err := p.db.ClearPosts(); err != nil {
			r.Steps = append(r.Steps, StepResult{Name: "Load", Err: fmt.Errorf("clearing posts: %w", err)})
			return r
		}
	}
	r.Steps = append(r.Steps, p.runLoad(r, paths))
	if _, err := p.db.InsertIngestRun(r.Run); err != nil {
		p.logger.Warnf("recording ingest run: %v", err)
	}
	return r
}

// DryRun shows what would be done without executing.
func (p *Pipeline) DryRun() *Result {
	r := &Result{}

	stored, _ := p.db.CountPosts()
	r.Steps = append(r.Steps, StepResult{
		Name:    "Load",
		Summary: fmt.Sprintf("[dry-run] %d files configured, %d posts already stored", len(p.cfg.Sources.CSV), stored),
	})

	r.Steps = append(r.Steps, StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("[dry-run] %d feeds configured", len(p.cfg.Sources.Feeds)),
	})

	if p.cfg.Fetch.Enabled {
		needing, _ := p.db.GetPostsNeedingFetch(p.cfg.Fetch.Limit)
		r.Steps = append(r.Steps, StepResult{
			Name:    "Fetch",
			Summary: fmt.Sprintf("[dry-run] %d posts need content fetching", len(needing)),
		})
	} else {
		r.Steps = append(r.Steps, StepResult{Name: "Fetch", Summary: "[dry-run] Content fetching disabled"})
	}

	return r
}

func (p *Pipeline) runLoad(r *Result, paths []string) StepResult {
	p.logger.Infof("step 1/3: loading %d files", len(paths))
	var loaded, read int
	for _, path := range paths {
		c, err := ingest.Load(config.ExpandHome(path))
		if err != nil {
			return StepResult{Name: "Load", Err: err}
		}
		n, err := p.db.InsertPosts(c, SourceCSV)
		if err != nil {
			return StepResult{Name: "Load", Err: fmt.Errorf("storing %s: %w", path, err)}
		}
		read += len(c)
		loaded += n
		p.logger.Infof("loaded %d of %d records from %s", n, len(c), path)
	}
	r.Run.Loaded = loaded
	return StepResult{
		Name:    "Load",
		Summary: fmt.Sprintf("Stored %d new posts (%d read, %d duplicates)", loaded, read, read-loaded),
	}
}

func (p *Pipeline) runCollect(ctx context.Context, r *Result, daysBack int) StepResult {
	p.logger.Infof("step 2/3: collecting feeds")
	if len(p.cfg.Sources.Feeds) == 0 {
		return StepResult{Name: "Collect", Summary: "No feeds configured"}
	}
	collector := collect.NewCollector(p.cfg.Sources.Feeds, p.db, daysBack, p.logger)
	result := collector.Collect(ctx)
	r.Run.Collected = result.NewPosts
	r.Run.Failed += result.Failed
	return StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("Found %d new posts (%d total, %d duplicates)", result.NewPosts, result.TotalFound, result.Duplicates),
	}
}

func (p *Pipeline) runFetch(ctx context.Context, r *Result) StepResult {
	p.logger.Infof("step 3/3: fetching post content")
	fetcher := fetch.NewContentFetcher(p.db, p.cfg.Fetch.Timeout(), p.logger)
	result, err := fetcher.FetchMissingContent(ctx, p.cfg.Fetch.Limit)
	if result != nil {
		r.Run.Fetched = result.Fetched
		r.Run.Failed += result.Failed
	}
	if err != nil {
		return StepResult{Name: "Fetch", Err: err}
	}
	return StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("Fetched %d posts, %d failed, %d skipped", result.Fetched, result.Failed, result.Skipped),
	}
}
