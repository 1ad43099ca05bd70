package database

import "database/sql"

// InsertIngestRun records the counts of a pipeline run.
func (db *DB) InsertIngestRun(run IngestRun) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO ingest_runs (loaded, collected, fetched, failed)
		VALUES (?, ?, ?, ?)`,
		run.Loaded, run.Collected, run.Fetched, run.Failed,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// LastIngestRun returns the most recent run, or nil if none exist.
func (db *DB) LastIngestRun() (*IngestRun, error) {
	row := db.conn.QueryRow(
		"SELECT id, loaded, collected, fetched, failed, run_at FROM ingest_runs ORDER BY id DESC LIMIT 1",
	)

	var r IngestRun
	if err := row.Scan(&r.ID, &r.Loaded, &r.Collected, &r.Fetched, &r.Failed, &r.RunAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// GetStats returns aggregate database statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM posts", &s.TotalPosts},
		{"SELECT COUNT(DISTINCT author) FROM posts WHERE author <> ''", &s.Authors},
		{"SELECT COUNT(*) FROM posts WHERE content_fetched = 1", &s.FetchedPosts},
		{"SELECT COUNT(*) FROM questions", &s.Questions},
		{"SELECT COUNT(*) FROM drafts", &s.Drafts},
		{"SELECT COUNT(*) FROM ingest_runs", &s.IngestRuns},
	}

	for _, q := range queries {
		if err := db.conn.QueryRow(q.sql).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	return s, nil
}
