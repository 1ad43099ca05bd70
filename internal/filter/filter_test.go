package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/TobiSchelling/postqa/internal/record"
)

func testCollection() record.Collection {
	return record.Collection{
		{
			record.Name:         "Madhuri Jain",
			record.Author:       "Madhuri Jain",
			record.Description:  "Corporate Lawyer at Microsoft",
			record.Followers:    "940",
			record.PostContent:  "Looking for a lawyer in Bangalore.",
			record.PostURL:      "https://y/2",
			record.PostDate:     "2024-03-14",
			record.Type:         "Text",
			record.LikeCount:    "940",
			record.CommentCount: "12",
			record.RepostCount:  "0",
		},
		{
			record.Name:         "Ashish Shah",
			record.Author:       "Ashish Shah",
			record.Description:  "Full Stack Developer at Microsoft",
			record.Followers:    "5,200+",
			record.PostContent:  "New blog post on Microsoft Playwright testing.",
			record.PostURL:      "https://x/ashish-1",
			record.PostDate:     "Oct 5, 2023",
			record.Type:         "Article",
			record.LikeCount:    "177",
			record.CommentCount: "40",
			record.RepostCount:  "3",
		},
		{
			record.Name:         "Charanjeet Kaur",
			record.Author:       "Charanjeet Kaur",
			record.Description:  "Recruiter",
			record.Followers:    "300",
			record.PostContent:  "We are hiring backend engineers.",
			record.PostURL:      "https://z/3",
			record.PostDate:     "March 2, 2023",
			record.Type:         "Text",
			record.LikeCount:    "32",
			record.CommentCount: "3",
			record.RepostCount:  "1",
		},
		{
			record.Name:         "Ashish Shah",
			record.Author:       "Ashish Shah",
			record.Description:  "Full Stack Developer at Microsoft",
			record.Followers:    "5,200+",
			record.PostContent:  "Sharing my notes on test automation.",
			record.PostURL:      "https://x/ashish-2",
			record.PostDate:     "2024-03-20",
			record.Type:         "Article",
			record.LikeCount:    "250",
			record.CommentCount: "0",
		},
	}
}

func urls(c record.Collection) []string {
	out := make([]string, 0, len(c))
	for _, r := range c {
		out = append(out, r.Get(record.PostURL))
	}
	return out
}

func TestMatch(t *testing.T) {
	c := testCollection()
	tests := []struct {
		name     string
		question string
		rule     string
		want     []string
	}{
		{"person", "Show me posts by Ashish Shah", "person", []string{"https://x/ashish-1", "https://x/ashish-2"}},
		{"person falls through to month", "Show posts from March 2024", "month-year", []string{"https://y/2", "https://x/ashish-2"}},
		{"followers over", "List people with followers greater than 1000", "followers-over", []string{"https://x/ashish-1", "https://x/ashish-2"}},
		{"role and followers", `Who has title "developer" and followers more than 1000?`, "role-and-followers", []string{"https://x/ashish-1", "https://x/ashish-2"}},
		{"role and followers empty is terminal", `Who has title "developer" and followers more than 6000?`, "role-and-followers", []string{}},
		{"description attribute", "Which profiles have a title with recruiter?", "description-attribute", []string{"https://z/3"}},
		{"content keyword", `Find posts mentioning "playwright"`, "content-keyword", []string{"https://x/ashish-1"}},
		{"unknown month", "posts in Smarch", "month-year", []string{}},
		{"most likes", "Which post got the most likes?", "most-likes", []string{"https://y/2"}},
		{"most liked article", "Which article has the highest likes?", "most-likes", []string{"https://x/ashish-2"}},
		{"most comments", "Which post has the most comments?", "most-comments", []string{"https://x/ashish-1"}},
		{"exact post url", `Show the post with postUrl "https://z/3"`, "post-url", []string{"https://z/3"}},
		{"description pair", `Is there anyone with "microsoft" and "full stack" in their profile?`, "description-pair", []string{"https://x/ashish-1", "https://x/ashish-2"}},
		{"reposted by", "Which posts were reposted by Charanjeet Kaur?", "reposted-by", []string{"https://z/3"}},
		{"reposted by falls through", "Which posts were reposted by Madhuri Jain?", "keyword", []string{}},
		{"keyword fallback", "Anything about bangalore lawyers?", "keyword", []string{"https://y/2"}},
		{"no keyword overlap", "zzz qqq", "keyword", []string{}},
		{"empty question", "", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule := Match(c, tt.question)
			if rule != tt.rule {
				t.Errorf("rule = %q, want %q", rule, tt.rule)
			}
			if diff := cmp.Diff(tt.want, urls(got)); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMonthYearDayFirstDates(t *testing.T) {
	c := record.Collection{
		{record.PostURL: "https://p/1", record.PostDate: "13/05/2023"},
		{record.PostURL: "https://p/2", record.PostDate: "25.05.2023"},
		{record.PostURL: "https://p/3", record.PostDate: "05/10/2023"},
		{record.PostURL: "https://p/4", record.PostDate: "14/06/2023"},
	}
	got, rule := Match(c, "Show posts in May 2023")
	if rule != "month-year" {
		t.Fatalf("expected month-year rule, got %q", rule)
	}
	want := []string{"https://p/1", "https://p/2", "https://p/3"}
	if diff := cmp.Diff(want, urls(got)); diff != "" {
		t.Errorf("posts mismatch (-want +got):\n%s", diff)
	}
}

func TestDistinctTextAuthors(t *testing.T) {
	got, rule := Match(testCollection(), "How many distinct authors have Text posts?")
	if rule != "distinct-text-authors" {
		t.Fatalf("rule = %q", rule)
	}
	want := record.Collection{{record.Name: "Count of distinct authors with Text posts: 2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if !record.IsSynthetic(got[0]) {
		t.Error("expected a synthetic record")
	}
}

func TestMostLikesIgnoresNonPositive(t *testing.T) {
	c := record.Collection{
		{record.LikeCount: "0", record.PostURL: "a"},
		{record.LikeCount: "n/a", record.PostURL: "b"},
	}
	got, rule := Match(c, "Which post has the most likes?")
	if rule != "most-likes" || len(got) != 0 {
		t.Errorf("expected empty most-likes result, got %q %v", rule, got)
	}
}

func TestResolveNeverReturnsLeadingRecords(t *testing.T) {
	c := testCollection()
	got := Resolve(c, "xyzzy plugh")
	if got == nil {
		t.Fatal("Resolve must return an empty collection, not nil")
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}

func TestKeywords(t *testing.T) {
	got := Keywords("Give me the details of posts about Go in Bangalore")
	want := []string{"bangalore"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveDoesNotMutate(t *testing.T) {
	c := testCollection()
	Resolve(c, "Which post got the most likes?")
	Resolve(c, "How many distinct authors have Text posts?")
	if diff := cmp.Diff(testCollection(), c); diff != "" {
		t.Errorf("collection changed (-want +got):\n%s", diff)
	}
}
