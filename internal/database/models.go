package database

import "github.com/TobiSchelling/postqa/internal/record"

// Post is a stored record.
type Post struct {
	ID             int64
	Record         record.Record
	Source         *string
	ContentFetched bool
	CollectedAt    *string
}

// IngestRun holds the counts of one ingest pipeline run.
type IngestRun struct {
	ID        int64
	Loaded    int
	Collected int
	Fetched   int
	Failed    int
	RunAt     *string
}

// Question is one entry of the question log.
type Question struct {
	ID      int64
	Text    string
	Stage   string
	Rule    *string
	AskedAt *string
}

// Draft is a generated post.
type Draft struct {
	ID        int64
	Prompt    string
	Body      string
	Model     *string
	CreatedAt *string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalPosts   int
	Authors      int
	FetchedPosts int
	Questions    int
	Drafts       int
	IngestRuns   int
}
