package format

import (
	"strings"
	"testing"

	"github.com/TobiSchelling/postqa/internal/record"
)

func TestRecordsEmpty(t *testing.T) {
	if got := Records(nil); got != NoResults {
		t.Errorf("got %q", got)
	}
	if got := Records(record.Collection{}); got != NoResults {
		t.Errorf("got %q", got)
	}
}

func TestRecordsSynthetic(t *testing.T) {
	rs := record.Collection{record.NewDistinctAuthorCount(4), {record.Name: "ignored"}}
	if got := Records(rs); got != "Count of distinct authors with Text posts: 4" {
		t.Errorf("got %q", got)
	}
}

func TestBlock(t *testing.T) {
	r := record.Record{
		record.Name:         "Madhuri Jain",
		record.ProfileURL:   "https://x/1",
		record.Followers:    "940",
		record.PostContent:  "Looking for a lawyer in Bangalore.",
		record.PostURL:      "https://y/2",
		record.PostDate:     "2024-03-14",
		record.Type:         "Text",
		record.LikeCount:    "12",
		record.CommentCount: "3",
		record.RepostCount:  "1",
		record.Author:       "Madhuri Jain",
		record.AuthorURL:    "https://x/1",
	}
	want := "**Name**: Madhuri Jain\n" +
		"**Profile URL**: https://x/1\n" +
		"**Followers**: 940\n\n" +
		"**Post Content**:\nLooking for a lawyer in Bangalore.\n\n" +
		"**Post URL**: https://y/2\n" +
		"**Post Date**: 2024-03-14\n" +
		"**Type**: Text\n" +
		"**Likes**: 12 | **Comments**: 3 | **Reposts**: 1\n\n" +
		"**Author**: Madhuri Jain ([LinkedIn](https://x/1))"
	if got := Block(r); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBlockPlaceholders(t *testing.T) {
	got := Block(record.Record{record.Name: "  "})
	if !strings.Contains(got, "**Name**: N/A") {
		t.Errorf("blank name should render as N/A:\n%s", got)
	}
	if !strings.Contains(got, "**Likes**: N/A | **Comments**: N/A | **Reposts**: N/A") {
		t.Errorf("missing counts should render as N/A:\n%s", got)
	}
	if !strings.HasSuffix(got, "**Author**: N/A ([LinkedIn](#))") {
		t.Errorf("missing author URL should render as #:\n%s", got)
	}
}

func TestRecordsSeparator(t *testing.T) {
	rs := record.Collection{{record.Name: "A"}, {record.Name: "B"}}
	got := Records(rs)
	if strings.Count(got, Separator) != 1 {
		t.Errorf("expected one separator:\n%s", got)
	}
	parts := strings.Split(got, Separator)
	if !strings.HasPrefix(parts[0], "**Name**: A") || !strings.HasPrefix(parts[1], "**Name**: B") {
		t.Errorf("blocks out of order:\n%s", got)
	}
}
