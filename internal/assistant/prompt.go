package assistant

import (
	"fmt"
	"strings"

	"github.com/TobiSchelling/postqa/internal/record"
)

// maxContextPosts bounds how many records are quoted to the model.
const maxContextPosts = 5

const answerSystemPrompt = "You answer questions about LinkedIn profiles and posts. " +
	"Use only the posts provided. If they do not contain the answer, say so in one sentence."

// Document renders r as the plain-text block quoted to the model.
func Document(r record.Record) string {
	var b strings.Builder
	for _, f := range []struct{ label, field string }{
		{"Name", record.Name},
		{"Profile URL", record.ProfileURL},
		{"Author", record.Author},
		{"Author URL", record.AuthorURL},
		{"Description", record.Description},
		{"Post Content", record.PostContent},
		{"Post URL", record.PostURL},
		{"Post Date", record.PostDate},
		{"Type", record.Type},
		{"Likes", record.LikeCount},
		{"Comments", record.CommentCount},
		{"Reposts", record.RepostCount},
		{"Followers", record.Followers},
	} {
		if v := strings.TrimSpace(r.Get(f.field)); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.label, v)
		}
	}
	return b.String()
}

func buildAnswerPrompt(question string, c record.Collection) string {
	var b strings.Builder
	b.WriteString("Posts:\n")
	for i, r := range c {
		if i == maxContextPosts {
			break
		}
		fmt.Fprintf(&b, "\nPost %d:\n%s", i+1, Document(r))
	}
	fmt.Fprintf(&b, "\nQ: %s\nA:", strings.TrimSpace(question))
	return b.String()
}
