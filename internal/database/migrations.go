package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "posts and ingest runs",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL DEFAULT '',
    profile_url TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL DEFAULT '',
    author_url TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    post_content TEXT NOT NULL DEFAULT '',
    post_url TEXT NOT NULL DEFAULT '',
    post_date TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL DEFAULT '',
    like_count TEXT NOT NULL DEFAULT '',
    comment_count TEXT NOT NULL DEFAULT '',
    repost_count TEXT NOT NULL DEFAULT '',
    followers TEXT NOT NULL DEFAULT '',
    extra TEXT,
    source TEXT,
    content_fetched INTEGER DEFAULT 0,
    collected_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS ingest_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    loaded INTEGER DEFAULT 0,
    collected INTEGER DEFAULT 0,
    fetched INTEGER DEFAULT 0,
    failed INTEGER DEFAULT 0,
    run_at TEXT DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_posts_post_url ON posts(post_url) WHERE post_url <> '';
CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "question log and drafts",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS questions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    question TEXT NOT NULL,
    stage TEXT NOT NULL,
    rule TEXT,
    asked_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS drafts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    prompt TEXT NOT NULL,
    body TEXT NOT NULL,
    model TEXT,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_questions_asked ON questions(asked_at);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
