// Package collect turns RSS and Atom feeds into post records.
package collect

import (
	"context"

	"go.uber.org/zap"

	"github.com/TobiSchelling/postqa/internal/config"
	"github.com/TobiSchelling/postqa/internal/database"
	"github.com/TobiSchelling/postqa/internal/logging"
	"github.com/TobiSchelling/postqa/internal/record"
)

// SourceName is stored as the source of every collected post.
const SourceName = "feed"

// Result holds the results of a collection run.
type Result struct {
	TotalFound int
	NewPosts   int
	Duplicates int
	Failed     int
	Sources    map[string]int
}

// Collector stores feed items as posts.
type Collector struct {
	db       *database.DB
	parser   *FeedParser
	daysBack int
	logger   *zap.SugaredLogger
}

// NewCollector creates a collector for the given feeds. daysBack 0 keeps
// every item regardless of date.
func NewCollector(feeds []config.Feed, db *database.DB, daysBack int, logger *zap.SugaredLogger) *Collector {
	logger = logging.Nop(logger)
	return &Collector{
		db:       db,
		parser:   NewFeedParser(feeds, logger),
		daysBack: daysBack,
		logger:   logger,
	}
}

// Collect parses every feed and stores the new items.
func (c *Collector) Collect(ctx context.Context) *Result {
	r := &Result{Sources: make(map[string]int)}

	entries := c.parser.ParseAll(ctx, c.daysBack)
	r.TotalFound = len(entries)

	for _, entry := range entries {
		id, err := c.db.InsertPost(entry.Record, SourceName)
		switch {
		case err != nil:
			c.logger.Warnf("storing %s: %v", entry.Record.Get(record.PostURL), err)
			r.Failed++
		case id > 0:
			r.NewPosts++
			r.Sources[entry.Source]++
		default:
			r.Duplicates++
		}
	}

	c.logger.Infof("collection complete: %d found, %d new, %d duplicates", r.TotalFound, r.NewPosts, r.Duplicates)
	return r
}
