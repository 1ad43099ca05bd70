// Package fetch backfills empty post content from the post URL.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/TobiSchelling/postqa/internal/database"
	"github.com/TobiSchelling/postqa/internal/logging"
	"github.com/TobiSchelling/postqa/internal/record"
)

// minContentLength is the shortest extracted text worth storing.
const minContentLength = 100

const maxBodySize = 5 << 20

// Result holds the results of a content fetch run.
type Result struct {
	Fetched int
	Skipped int
	Failed  int
}

// ContentFetcher fetches readable page text via HTTP + readability extraction.
type ContentFetcher struct {
	db     *database.DB
	client *http.Client
	logger *zap.SugaredLogger
}

// NewContentFetcher creates a new content fetcher.
func NewContentFetcher(db *database.DB, timeout time.Duration, logger *zap.SugaredLogger) *ContentFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	logger = logging.Nop(logger)
	return &ContentFetcher{
		db:     db,
		logger: logger,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// FetchMissingContent fetches content for up to limit posts that have a
// URL but no content. Once a domain answers with an HTTP error, its
// remaining posts are skipped for the rest of the run.
func (f *ContentFetcher) FetchMissingContent(ctx context.Context, limit int) (*Result, error) {
	posts, err := f.db.GetPostsNeedingFetch(limit)
	if err != nil {
		return nil, fmt.Errorf("listing posts needing fetch: %w", err)
	}

	result := &Result{}
	if len(posts) == 0 {
		f.logger.Debugf("no posts need content fetching")
		return result, nil
	}

	failedDomains := make(map[string]struct{})

	for _, post := range posts {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		postURL := post.Record.Get(record.PostURL)
		domain := ""
		if u, err := url.Parse(postURL); err == nil {
			domain = strings.ToLower(u.Host)
		}

		if _, failed := failedDomains[domain]; failed {
			f.db.MarkPostFetchAttempted(post.ID)
			result.Skipped++
			continue
		}

		content, err := f.fetchContent(ctx, postURL)
		if err != nil {
			f.db.MarkPostFetchAttempted(post.ID)
			result.Failed++
			if domain != "" {
				failedDomains[domain] = struct{}{}
			}
			f.logger.Warnf("%v; skipping remaining posts from %s", err, domain)
			continue
		}

		if content == "" {
			f.db.MarkPostFetchAttempted(post.ID)
			result.Failed++
			f.logger.Debugf("no extractable content from %s", postURL)
			continue
		}

		if err := f.db.UpdatePostContent(post.ID, content); err != nil {
			return result, fmt.Errorf("storing content for post %d: %w", post.ID, err)
		}
		result.Fetched++
		f.logger.Debugf("fetched content for %s", postURL)
	}

	f.logger.Infof("content fetch complete: %d fetched, %d failed, %d skipped", result.Fetched, result.Failed, result.Skipped)
	return result, nil
}

// fetchContent returns the readable text of pageURL. Only HTTP error
// statuses are reported as errors; anything else yields "".
func (f *ContentFetcher) fetchContent(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", nil
	}
	req.Header.Set("User-Agent", "postqa/1.0 (content backfill)")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{url: pageURL, code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) > minContentLength {
		return text, nil
	}
	return "", nil
}

type httpError struct {
	url  string
	code int
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d (%s) for %s", e.code, http.StatusText(e.code), e.url)
}
