// Package filter selects the records a question is asking about when no
// single-sentence answer applies.
package filter

import (
	"github.com/TobiSchelling/postqa/internal/record"
	"github.com/TobiSchelling/postqa/internal/rule"
)

// Resolve returns the records matching question, in collection order. The
// result is empty, never nil, when nothing matches.
func Resolve(c record.Collection, question string) record.Collection {
	out, _ := Match(c, question)
	return out
}

// Match is Resolve with the name of the rule that decided the result. The
// name is empty when no rule applied.
func Match(c record.Collection, question string) (record.Collection, string) {
	out, name, ok := rules.Resolve(c, question)
	if !ok || out == nil {
		return record.Collection{}, name
	}
	return out, name
}

// RuleNames lists the rules in evaluation order.
func RuleNames() []string {
	return rules.Names()
}

const words = rule.Words

// threshold matches a comparison word followed by a number, as in
// "greater than 1,000" or "> 500".
const threshold = `.*?(?:greater|more|above|over|>=|>)(?:\s+than)?\s*(\d[\d,]*)`

var rules = rule.Table[record.Collection]{
	{
		Name:    "person",
		Extract: rule.Pattern(`(?:post details of|posts shared by|posts by|post by|posts of|post of|posts from|post from|details about posts of|details about|information on)\s+(` + words + `)`),
		Handle:  byPerson,
	},
	{
		Name:     "role-and-followers",
		Extract:  rule.Pattern(`(?:role|position|title).*?["']([^"']+)["'].*followers` + threshold),
		Handle:   byRoleAndFollowers,
		Terminal: true,
	},
	{
		Name:     "followers-over",
		Extract:  rule.Pattern(`followers` + threshold),
		Handle:   byFollowersOver,
		Terminal: true,
	},
	{
		Name:     "description-attribute",
		Extract:  rule.Pattern(`(?:role|position|title|description).*?\b(?:is|mentions|contains|with)\b\s*["']?(` + words + `)`),
		Handle:   byDescription,
		Terminal: true,
	},
	{
		Name:     "content-keyword",
		Extract:  rule.Pattern(`posts? (?:content )?(?:that has|that mentions?|mention\w*|contain\w*|with|about)?\s*['"]([^'"]+)['"]`),
		Handle:   byContentKeyword,
		Terminal: true,
	},
	{
		Name:     "month-year",
		Extract:  rule.Pattern(`posts? (?:from|in) (\p{L}+)(?: (\d{4}))?`),
		Handle:   byMonthYear,
		Terminal: true,
	},
	{
		Name:     "most-likes",
		Extract:  greatest("like"),
		Handle:   mostLiked,
		Terminal: true,
	},
	{
		Name:     "most-comments",
		Extract:  greatest("comment"),
		Handle:   mostCommented,
		Terminal: true,
	},
	{
		Name:     "post-url",
		Extract:  rule.Pattern(`posturl\W*?["']?(https?://[^\s"']+)`),
		Handle:   byExactPostURL,
		Terminal: true,
	},
	{
		Name:     "distinct-text-authors",
		Extract:  rule.AllPhrases("how many", "distinct authors", "text"),
		Handle:   distinctTextAuthors,
		Terminal: true,
	},
	{
		Name:     "description-pair",
		Extract:  quotedPair,
		Handle:   byDescriptionPair,
		Terminal: true,
	},
	{
		Name:    "reposted-by",
		Extract: rule.Pattern(`reposted.*by\s*(` + words + `)`),
		Handle:  repostedBy,
	},
	{
		Name:     "keyword",
		Extract:  rule.Tokens,
		Handle:   byKeywords,
		Terminal: true,
	},
}
