// Package format renders filter results as Markdown blocks.
package format

import (
	"fmt"
	"strings"

	"github.com/TobiSchelling/postqa/internal/record"
)

// NoResults is rendered for an empty result set.
const NoResults = "No matching results found."

// Separator sits between record blocks.
const Separator = "\n\n---\n\n"

const placeholder = "N/A"

// Records renders rs. A leading synthetic count record is rendered as its
// count sentence alone.
func Records(rs record.Collection) string {
	if len(rs) == 0 {
		return NoResults
	}
	if record.IsSynthetic(rs[0]) {
		return rs[0].Get(record.Name)
	}
	blocks := make([]string, len(rs))
	for i, r := range rs {
		blocks[i] = Block(r)
	}
	return strings.Join(blocks, Separator)
}

// Block renders a single record.
func Block(r record.Record) string {
	v := func(field string) string { return r.GetOr(field, placeholder) }
	var b strings.Builder
	fmt.Fprintf(&b, "**Name**: %s\n", v(record.Name))
	fmt.Fprintf(&b, "**Profile URL**: %s\n", v(record.ProfileURL))
	fmt.Fprintf(&b, "**Followers**: %s\n\n", v(record.Followers))
	fmt.Fprintf(&b, "**Post Content**:\n%s\n\n", v(record.PostContent))
	fmt.Fprintf(&b, "**Post URL**: %s\n", v(record.PostURL))
	fmt.Fprintf(&b, "**Post Date**: %s\n", v(record.PostDate))
	fmt.Fprintf(&b, "**Type**: %s\n", v(record.Type))
	fmt.Fprintf(&b, "**Likes**: %s | **Comments**: %s | **Reposts**: %s\n\n",
		v(record.LikeCount), v(record.CommentCount), v(record.RepostCount))
	fmt.Fprintf(&b, "**Author**: %s ([LinkedIn](%s))", v(record.Author), r.GetOr(record.AuthorURL, "#"))
	return b.String()
}
