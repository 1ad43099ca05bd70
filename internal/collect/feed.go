package collect

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/TobiSchelling/postqa/internal/config"
	"github.com/TobiSchelling/postqa/internal/logging"
	"github.com/TobiSchelling/postqa/internal/record"
)

const maxPerFeed = 20

// FeedEntry is a parsed feed item.
type FeedEntry struct {
	Record record.Record
	Source string
}

// FeedParser parses RSS/Atom feeds.
type FeedParser struct {
	feeds  []config.Feed
	logger *zap.SugaredLogger
}

// NewFeedParser creates a new FeedParser.
func NewFeedParser(feeds []config.Feed, logger *zap.SugaredLogger) *FeedParser {
	logger = logging.Nop(logger)
	return &FeedParser{feeds: feeds, logger: logger}
}

// ParseAll parses all configured feeds. Items older than daysBack days are
// skipped when daysBack is positive.
func (fp *FeedParser) ParseAll(ctx context.Context, daysBack int) []FeedEntry {
	var cutoff time.Time
	if daysBack > 0 {
		cutoff = time.Now().AddDate(0, 0, -daysBack)
	}
	var all []FeedEntry

	parser := gofeed.NewParser()
	for _, fc := range fp.feeds {
		if fc.Name == "" {
			fc.Name = extractSourceName(fc.URL)
		}

		entries, err := parseFeed(ctx, parser, fc, cutoff)
		if err != nil {
			fp.logger.Warnf("failed to parse feed %s: %v", fc.URL, err)
			continue
		}
		all = append(all, entries...)
		fp.logger.Infof("parsed %d entries from %s", len(entries), fc.Name)
	}

	return all
}

func parseFeed(ctx context.Context, parser *gofeed.Parser, fc config.Feed, cutoff time.Time) ([]FeedEntry, error) {
	feed, err := parser.ParseURLWithContext(fc.URL, ctx)
	if err != nil {
		return nil, err
	}

	var entries []FeedEntry
	for _, item := range feed.Items {
		if len(entries) >= maxPerFeed {
			break
		}

		rec := itemRecord(feed, item, fc)
		if rec == nil {
			continue
		}
		if isWithinWindow(rec.Get(record.PostDate), cutoff) {
			entries = append(entries, FeedEntry{Record: rec, Source: fc.Name})
		}
	}

	return entries, nil
}

// itemRecord maps a feed item onto the record vocabulary. Items without a
// link or GUID are skipped.
func itemRecord(feed *gofeed.Feed, item *gofeed.Item, fc config.Feed) record.Record {
	itemURL := item.Link
	if itemURL == "" {
		itemURL = item.GUID
	}
	if itemURL == "" {
		return nil
	}

	owner := fc.Author
	if owner == "" {
		owner = fc.Name
	}
	author := owner
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		author = strings.TrimSpace(item.Author.Name)
	} else if len(item.Authors) > 0 && item.Authors[0] != nil && item.Authors[0].Name != "" {
		author = strings.TrimSpace(item.Authors[0].Name)
	}

	var publishedDate string
	if item.PublishedParsed != nil {
		publishedDate = item.PublishedParsed.Format("2006-01-02")
	} else if item.UpdatedParsed != nil {
		publishedDate = item.UpdatedParsed.Format("2006-01-02")
	}

	var content string
	if item.Content != "" {
		content = stripHTML(item.Content)
	} else if item.Description != "" {
		content = stripHTML(item.Description)
	}
	if title := strings.TrimSpace(item.Title); title != "" && !strings.HasPrefix(content, title) {
		if content == "" {
			content = title
		} else {
			content = title + "\n\n" + content
		}
	}

	return record.Record{
		record.Name:        owner,
		record.ProfileURL:  feed.Link,
		record.Author:      author,
		record.AuthorURL:   feed.Link,
		record.Description: strings.TrimSpace(feed.Description),
		record.PostContent: content,
		record.PostURL:     itemURL,
		record.PostDate:    publishedDate,
		record.Type:        "Article",
	}
}

func isWithinWindow(publishedDate string, cutoff time.Time) bool {
	if cutoff.IsZero() || publishedDate == "" {
		return true
	}
	pub, err := time.Parse("2006-01-02", publishedDate)
	if err != nil {
		return true
	}
	return !pub.Before(cutoff)
}

// stripHTML returns the text of an HTML fragment with whitespace collapsed.
// Every tag counts as a word break.
func stripHTML(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(strings.ReplaceAll(text, "<", " <")))
	if err != nil {
		return strings.Join(strings.Fields(text), " ")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func extractSourceName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Hostname() == "" {
		return feedURL
	}
	host := strings.ToLower(u.Hostname())

	for _, prefix := range []string{"www.", "blog.", "blogs.", "rss.", "feeds."} {
		host = strings.TrimPrefix(host, prefix)
	}

	parts := strings.Split(host, ".")
	name := host
	if len(parts) >= 2 {
		name = parts[len(parts)-2]
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
