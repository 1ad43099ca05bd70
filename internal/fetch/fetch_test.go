package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/TobiSchelling/postqa/internal/database"
	"github.com/TobiSchelling/postqa/internal/record"
)

var articleHTML = `<!DOCTYPE html><html><head><title>Hiring</title></head><body>
<article><h1>We are hiring</h1>
<p>` + strings.Repeat("Our team is looking for backend engineers who enjoy distributed systems. ", 8) + `</p>
<p>` + strings.Repeat("Apply through the careers page and mention this post. ", 6) + `</p>
</article></body></html>`

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insert(t *testing.T, db *database.DB, url string) int64 {
	t.Helper()
	id, err := db.InsertPost(record.Record{record.PostURL: url}, "feed")
	if err != nil || id == 0 {
		t.Fatalf("insert %s: id=%d err=%v", url, id, err)
	}
	return id
}

func TestFetchMissingContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	db := openTestDB(t)
	id := insert(t, db, srv.URL+"/jobs")

	f := NewContentFetcher(db, 0, nil)
	result, err := f.FetchMissingContent(context.Background(), 0)
	if err != nil {
		t.Fatalf("FetchMissingContent: %v", err)
	}
	if result.Fetched != 1 {
		t.Fatalf("expected 1 fetched, got %+v", result)
	}

	p, _ := db.GetPostByID(id)
	if !strings.Contains(p.Record.Get(record.PostContent), "backend engineers") {
		t.Errorf("content not stored: %q", p.Record.Get(record.PostContent))
	}
}

func TestFetchSkipsFailedDomain(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	db := openTestDB(t)
	insert(t, db, srv.URL+"/a")
	insert(t, db, srv.URL+"/b")

	f := NewContentFetcher(db, 0, nil)
	result, err := f.FetchMissingContent(context.Background(), 0)
	if err != nil {
		t.Fatalf("FetchMissingContent: %v", err)
	}
	if result.Failed != 1 || result.Skipped != 1 {
		t.Errorf("expected 1 failed and 1 skipped, got %+v", result)
	}
	if hits.Load() != 1 {
		t.Errorf("expected the failed domain to be hit once, got %d", hits.Load())
	}

	// Both posts are marked, so a second run has nothing to do.
	needing, _ := db.GetPostsNeedingFetch(0)
	if len(needing) != 0 {
		t.Errorf("expected no posts left to fetch, got %d", len(needing))
	}
}

func TestFetchShortPageCountsAsFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>Too short.</p></body></html>"))
	}))
	defer srv.Close()

	db := openTestDB(t)
	insert(t, db, srv.URL+"/short")

	result, err := NewContentFetcher(db, 0, nil).FetchMissingContent(context.Background(), 0)
	if err != nil {
		t.Fatalf("FetchMissingContent: %v", err)
	}
	if result.Failed != 1 || result.Fetched != 0 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestFetchNothingToDo(t *testing.T) {
	db := openTestDB(t)
	result, err := NewContentFetcher(db, 0, nil).FetchMissingContent(context.Background(), 0)
	if err != nil {
		t.Fatalf("FetchMissingContent: %v", err)
	}
	if *result != (Result{}) {
		t.Errorf("expected empty result, got %+v", result)
	}
}
