package record

import (
	"strconv"
	"strings"
)

// Standard field names. Records may carry other keys; they are preserved
// but never interpreted.
const (
	Name         = "name"
	ProfileURL   = "profile_url"
	Author       = "author"
	AuthorURL    = "authorUrl"
	Description  = "description"
	PostContent  = "postContent"
	PostURL      = "postUrl"
	PostDate     = "postDate"
	Type         = "type"
	LikeCount    = "likeCount"
	CommentCount = "commentCount"
	RepostCount  = "repostCount"
	Followers    = "followers"
)

// Fields lists the standard vocabulary in display order.
var Fields = []string{
	Name, ProfileURL, Author, AuthorURL, Description,
	PostContent, PostURL, PostDate, Type, LikeCount,
	CommentCount, RepostCount, Followers,
}

// Record is one post/profile entry. All values are kept as text; numeric
// and date fields are parsed on demand.
type Record map[string]string

// Collection is the ordered set of records a question is resolved against.
// Resolvers treat it as read-only.
type Collection []Record

// Get returns the value of field, or "" when absent.
func (r Record) Get(field string) string {
	if r == nil {
		return ""
	}
	return r[field]
}

// GetOr returns the value of field, or fallback when absent or blank.
func (r Record) GetOr(field, fallback string) string {
	v := r.Get(field)
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// syntheticCountMarker identifies a record that carries a scalar count
// through the record-list channel.
const syntheticCountMarker = "Count of distinct authors"

// NewDistinctAuthorCount builds the synthetic record used to report the
// number of distinct authors with text posts.
func NewDistinctAuthorCount(n int) Record {
	return Record{Name: syntheticCountMarker + " with Text posts: " + strconv.Itoa(n)}
}

// IsSynthetic reports whether r is a synthetic count record.
func IsSynthetic(r Record) bool {
	return strings.Contains(r.Get(Name), syntheticCountMarker)
}
