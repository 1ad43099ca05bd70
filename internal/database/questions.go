package database

// LogQuestion appends a question to the question log. The log is history
// for display; nothing reads it back to answer questions.
func (db *DB) LogQuestion(text, stage, rule string) error {
	_, err := db.conn.Exec(
		"INSERT INTO questions (question, stage, rule) VALUES (?, ?, ?)",
		text, stage, nullable(rule),
	)
	return err
}

// RecentQuestions returns the latest questions, newest first.
func (db *DB) RecentQuestions(limit int) ([]Question, error) {
	rows, err := db.conn.Query(
		"SELECT id, question, stage, rule, asked_at FROM questions ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Stage, &q.Rule, &q.AskedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
