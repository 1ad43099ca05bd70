package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/TobiSchelling/postqa/internal/record"
)

// postColumns maps record fields to their posts columns, in table order.
var postColumns = []struct {
	field  string
	column string
}{
	{record.Name, "name"},
	{record.ProfileURL, "profile_url"},
	{record.Author, "author"},
	{record.AuthorURL, "author_url"},
	{record.Description, "description"},
	{record.PostContent, "post_content"},
	{record.PostURL, "post_url"},
	{record.PostDate, "post_date"},
	{record.Type, "type"},
	{record.LikeCount, "like_count"},
	{record.CommentCount, "comment_count"},
	{record.RepostCount, "repost_count"},
	{record.Followers, "followers"},
}

var (
	insertPostSQL string
	selectPostSQL string
	standardField = make(map[string]bool, len(postColumns))
)

func init() {
	cols := make([]string, 0, len(postColumns)+2)
	for _, pc := range postColumns {
		cols = append(cols, pc.column)
		standardField[pc.field] = true
	}
	selectPostSQL = "SELECT id, " + strings.Join(cols, ", ") +
		", extra, source, content_fetched, collected_at FROM posts"

	cols = append(cols, "extra", "source")
	insertPostSQL = "INSERT OR IGNORE INTO posts (" + strings.Join(cols, ", ") +
		") VALUES (" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// InsertPost stores a record. Returns the ID on success, 0 if a post with
// the same non-empty postUrl already exists.
func (db *DB) InsertPost(r record.Record, source string) (int64, error) {
	return insertPost(db.conn, r, source)
}

// InsertPosts stores records in one transaction and returns how many were new.
func (db *DB) InsertPosts(c record.Collection, source string) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	inserted := 0
	for _, r := range c {
		id, err := insertPost(tx, r, source)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		if id != 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return inserted, nil
}

func insertPost(ex execer, r record.Record, source string) (int64, error) {
	args := make([]any, 0, len(postColumns)+2)
	for _, pc := range postColumns {
		args = append(args, strings.TrimSpace(r.Get(pc.field)))
	}
	extra, err := extraJSON(r)
	if err != nil {
		return 0, err
	}
	args = append(args, extra, nullable(source))

	result, err := ex.Exec(insertPostSQL, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting post: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil || n == 0 {
		return 0, err
	}
	return result.LastInsertId()
}

// LoadCollection returns every stored post as a record, in insertion order.
func (db *DB) LoadCollection() (record.Collection, error) {
	posts, err := db.queryPosts(selectPostSQL + " ORDER BY id")
	if err != nil {
		return nil, err
	}
	c := make(record.Collection, len(posts))
	for i, p := range posts {
		c[i] = p.Record
	}
	return c, nil
}

// GetPostByID returns a single post by ID.
func (db *DB) GetPostByID(id int64) (*Post, error) {
	posts, err := db.queryPosts(selectPostSQL+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}

// GetPostsNeedingFetch returns posts with a URL but no content that haven't
// been fetched yet. A limit of 0 returns them all.
func (db *DB) GetPostsNeedingFetch(limit int) ([]Post, error) {
	query := selectPostSQL + ` WHERE post_content = '' AND post_url <> '' AND content_fetched = 0 ORDER BY id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return db.queryPosts(query, args...)
}

// UpdatePostContent stores fetched content for a post.
func (db *DB) UpdatePostContent(id int64, content string) error {
	_, err := db.conn.Exec(
		"UPDATE posts SET post_content = ?, content_fetched = 1 WHERE id = ?",
		content, id,
	)
	return err
}

// MarkPostFetchAttempted marks that we tried to fetch content.
func (db *DB) MarkPostFetchAttempted(id int64) error {
	_, err := db.conn.Exec("UPDATE posts SET content_fetched = 1 WHERE id = ?", id)
	return err
}

// ClearPosts deletes every stored post.
func (db *DB) ClearPosts() error {
	_, err := db.conn.Exec("DELETE FROM posts")
	return err
}

// CountPosts returns the number of stored posts.
func (db *DB) CountPosts() (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM posts").Scan(&n)
	return n, err
}

func (db *DB) queryPosts(query string, args ...any) ([]Post, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func scanPosts(rows *sql.Rows) ([]Post, error) {
	var posts []Post
	for rows.Next() {
		var (
			p       Post
			values  = make([]string, len(postColumns))
			extra   *string
			fetched int
		)
		dest := make([]any, 0, len(postColumns)+5)
		dest = append(dest, &p.ID)
		for i := range values {
			dest = append(dest, &values[i])
		}
		dest = append(dest, &extra, &p.Source, &fetched, &p.CollectedAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		p.Record = make(record.Record, len(postColumns))
		if extra != nil && *extra != "" {
			if err := json.Unmarshal([]byte(*extra), &p.Record); err != nil {
				return nil, fmt.Errorf("decoding extra fields of post %d: %w", p.ID, err)
			}
		}
		for i, pc := range postColumns {
			p.Record[pc.field] = values[i]
		}
		p.ContentFetched = fetched != 0
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// extraJSON encodes the non-standard keys of r, or nil when there are none.
func extraJSON(r record.Record) (*string, error) {
	extra := make(map[string]string)
	for k, v := range r {
		if !standardField[k] {
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return nil, fmt.Errorf("encoding extra fields: %w", err)
	}
	s := string(data)
	return &s, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
