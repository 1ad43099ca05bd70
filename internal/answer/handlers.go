package answer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/TobiSchelling/postqa/internal/aggregate"
	"github.com/TobiSchelling/postqa/internal/normalize"
	"github.com/TobiSchelling/postqa/internal/predicate"
	"github.com/TobiSchelling/postqa/internal/record"
	"github.com/TobiSchelling/postqa/internal/rule"
)

func profileDetails(c record.Collection, p []string) (string, bool) {
	person := strings.TrimSpace(p[0])
	var matched record.Collection
	if person != "" {
		matched = predicate.ByField(c, record.Name, person, false)
	}
	if len(matched) == 0 {
		return fmt.Sprintf("No profile details found for '%s'.", person), true
	}
	r := matched[0]
	return fmt.Sprintf("Profile details for %s:\n- Name: %s\n- Title: %s\n- Followers: %s\n- Profile URL: %s",
		titleCase(person),
		r.GetOr(record.Name, na),
		r.GetOr(record.Description, na),
		r.GetOr(record.Followers, na),
		r.GetOr(record.ProfileURL, na),
	), true
}

func nameAndTitle(c record.Collection, p []string) (string, bool) {
	matched := predicate.ByAnyURL(c, rule.TrimURL(p[0]))
	if len(matched) == 0 {
		return "", false
	}
	r := matched[0]
	return fmt.Sprintf("The person's name and title is '%s - %s'.",
		r.GetOr(record.Name, na), r.GetOr(record.Description, na)), true
}

func followerCount(c record.Collection, p []string) (string, bool) {
	person := strings.TrimSpace(p[0])
	if person == "" {
		return "", false
	}
	matched := predicate.ByField(c, record.Name, person, false)
	if len(matched) == 0 {
		return "", false
	}
	return fmt.Sprintf("%s has '%s' followers.", titleCase(person), matched[0].GetOr(record.Followers, na)), true
}

func postContent(c record.Collection, p []string) (string, bool) {
	r, ok := firstByPostURL(c, p[0])
	if !ok {
		return "", false
	}
	return fmt.Sprintf("The `postContent` is '%s'\nPost URL: %s",
		r.GetOr(record.PostContent, na), r.GetOr(record.PostURL, na)), true
}

func postType(c record.Collection, p []string) (string, bool) {
	r, ok := firstByPostURL(c, p[0])
	if !ok {
		return "", false
	}
	return fmt.Sprintf("The post is of type '%s'.", r.GetOr(record.Type, na)), true
}

func likeCount(c record.Collection, p []string) (string, bool) {
	author := normalize.Text(trimConnectors(p[0]))
	if author == "" {
		return "", false
	}
	for _, r := range predicate.ByPostURL(c, rule.TrimURL(p[1])) {
		if normalize.Text(r.Get(record.Author)) == author {
			return fmt.Sprintf("The `likeCount` is '%s'.", r.GetOr(record.LikeCount, na)), true
		}
	}
	return "", false
}

func authorOfMention(c record.Collection, p []string) (string, bool) {
	r, ok := firstMention(c, p[0])
	if !ok {
		return "", false
	}
	return fmt.Sprintf("The author of the post is '%s'.", r.GetOr(record.Author, na)), true
}

func mostCommonType(c record.Collection, _ []string) (string, bool) {
	t, ok := aggregate.Mode(c, record.Type)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("The most common type of post is '%s'.", capitalize(t)), true
}

func postsByAuthor(c record.Collection, p []string) (string, bool) {
	author := strings.TrimSpace(p[0])
	if author == "" {
		return "", false
	}
	n := aggregate.CountWhere(c, record.Author, author)
	if n == 0 {
		return "", false
	}
	return fmt.Sprintf("'%d' posts were made by %s as the author.", n, titleCase(author)), true
}

func averageLikes(c record.Collection, _ []string) (string, bool) {
	avg, ok := aggregate.Average(c, record.LikeCount)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("The average `likeCount` for all posts is approximately '%s'.", round2(avg)), true
}

func mentionDetails(c record.Collection, p []string) (string, bool) {
	keyword := strings.TrimSpace(p[0])
	r, ok := firstMention(c, keyword)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("A post mentioning '%s' has the following details: "+
		"Post Content: '%s', Author: '%s', Post Date: '%s', Like Count: '%s'.\nPost URL: %s",
		keyword,
		r.GetOr(record.PostContent, na),
		r.GetOr(record.Author, na),
		r.GetOr(record.PostDate, na),
		r.GetOr(record.LikeCount, na),
		r.GetOr(record.PostURL, na),
	), true
}

func mostFollowers(c record.Collection, _ []string) (string, bool) {
	r, ok := aggregate.MaxBy(c, record.Followers)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("The person with the most followers is '%s - %s' with '%s' followers.\n\nProfile URL: %s",
		r.GetOr(record.Name, na),
		r.GetOr(record.Description, na),
		r.GetOr(record.Followers, na),
		r.GetOr(record.ProfileURL, na),
	), true
}

func mostLikes(c record.Collection, _ []string) (string, bool) {
	return topPost(c, record.LikeCount, "likes")
}

func mostComments(c record.Collection, _ []string) (string, bool) {
	return topPost(c, record.CommentCount, "comments")
}

func topPost(c record.Collection, field, noun string) (string, bool) {
	r, ok := aggregate.MaxBy(c, field)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("The post with the most %s has '%s' %s.\n\nPost Content: '%s'\nAuthor: %s\nPost URL: %s",
		noun, r.GetOr(field, na), noun,
		r.GetOr(record.PostContent, na),
		r.GetOr(record.Author, na),
		r.GetOr(record.PostURL, na),
	), true
}

func quotedPhrase(c record.Collection, p []string) (string, bool) {
	r, ok := firstMention(c, p[0])
	if !ok {
		return "", false
	}
	return fmt.Sprintf("Here's a post mentioning '%s': %s\nPost URL: %s",
		p[0], r.GetOr(record.PostContent, na), r.GetOr(record.PostURL, na)), true
}

func anyKeyword(c record.Collection, toks []string) (string, bool) {
	for _, tok := range toks {
		if r, ok := firstMention(c, tok); ok {
			return fmt.Sprintf("Here's a post related to '%s': %s\nPost URL: %s",
				tok, r.GetOr(record.PostContent, na), r.GetOr(record.PostURL, na)), true
		}
	}
	return "", false
}

// firstMention returns the first record whose content contains keyword.
// A blank keyword mentions nothing.
func firstMention(c record.Collection, keyword string) (record.Record, bool) {
	if normalize.Text(keyword) == "" {
		return nil, false
	}
	matched := predicate.ByKeywordInContent(c, keyword)
	if len(matched) == 0 {
		return nil, false
	}
	return matched[0], true
}

func firstByPostURL(c record.Collection, url string) (record.Record, bool) {
	matched := predicate.ByPostURL(c, rule.TrimURL(url))
	if len(matched) == 0 {
		return nil, false
	}
	return matched[0], true
}

// connectors are words that join the author to the URL clause, as in
// "authored by ashish shah with posturl ...".
var connectors = map[string]bool{
	"and": true, "with": true, "having": true, "whose": true, "where": true,
	"that": true, "has": true, "the": true, "a": true, "its": true, "of": true,
}

func trimConnectors(s string) string {
	fields := strings.Fields(s)
	for len(fields) > 0 && connectors[fields[len(fields)-1]] {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// round2 renders v rounded to two decimals, keeping at least one.
func round2(v float64) string {
	s := strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
