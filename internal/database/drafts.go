package database

// InsertDraft stores a generated post.
func (db *DB) InsertDraft(prompt, body, model string) (int64, error) {
	result, err := db.conn.Exec(
		"INSERT INTO drafts (prompt, body, model) VALUES (?, ?, ?)",
		prompt, body, nullable(model),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// RecentDrafts returns the latest drafts, newest first.
func (db *DB) RecentDrafts(limit int) ([]Draft, error) {
	rows, err := db.conn.Query(
		"SELECT id, prompt, body, model, created_at FROM drafts ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		var d Draft
		if err := rows.Scan(&d.ID, &d.Prompt, &d.Body, &d.Model, &d.CreatedAt); err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}
