// Package answer composes single-sentence answers to questions about a
// collection of posts.
//
// Questions are matched against an ordered rule table. The first rule whose
// pattern matches and whose handler finds a qualifying record produces the
// answer; a rule that matches but finds nothing hands over to the next one.
package answer

import (
	"github.com/TobiSchelling/postqa/internal/record"
	"github.com/TobiSchelling/postqa/internal/rule"
)

// Sentinel is returned when no rule produced an answer.
const Sentinel = "Sorry, I couldn't find an answer to that question."

const na = "N/A"

// Answer is a resolved sentence together with the rule that produced it.
type Answer struct {
	Rule string
	Text string
}

// Resolve answers question from c. It reports false, with Sentinel as the
// text, when no rule applies.
func Resolve(c record.Collection, question string) (string, bool) {
	a, ok := Match(c, question)
	return a.Text, ok
}

// Match is Resolve with the name of the winning rule attached.
func Match(c record.Collection, question string) (Answer, bool) {
	text, name, ok := rules.Resolve(c, question)
	if !ok {
		return Answer{Text: Sentinel}, false
	}
	return Answer{Rule: name, Text: text}, true
}

// RuleNames lists the rules in evaluation order.
func RuleNames() []string {
	return rules.Names()
}

const words = rule.Words

var rules = rule.Table[string]{
	// Terminal: a named person missing from the data is still an answer.
	{Name: "profile-details", Extract: rule.Pattern(`profile details of (` + words + `)`), Handle: profileDetails, Terminal: true},
	{Name: "name-and-title", Extract: rule.Pattern(`name and title.*profile url\W*(https?://\S+)`), Handle: nameAndTitle},
	{Name: "follower-count", Extract: rule.Pattern(`how many followers does (` + words + `) have`), Handle: followerCount},
	{Name: "post-content", Extract: rule.Pattern(`postcontent.*posturl\W*(https?://\S+)`), Handle: postContent},
	{Name: "post-type", Extract: rule.Pattern(`type of post.*(https?://\S+)`), Handle: postType},
	{Name: "like-count", Extract: rule.Pattern(`likecount.*post authored by (` + words + `).*posturl\W*(https?://\S+)`), Handle: likeCount},
	{Name: "author-of-mention", Extract: rule.Pattern(`author.*post.*mentioning ['"]?(` + words + `)['"]?`), Handle: authorOfMention},
	{Name: "most-common-type", Extract: rule.AnyPhrase("most common type of post", "most frequent type of post"), Handle: mostCommonType},
	{Name: "posts-by-author", Extract: rule.Pattern(`how many posts were made by\s*['"]?(` + words + `)['"]?`), Handle: postsByAuthor},
	{Name: "average-likes", Extract: rule.AnyPhrase("average likecount", "average number of likes"), Handle: averageLikes},
	{Name: "mention-details", Extract: rule.Pattern(`details.*mentions\s*['"]?(` + words + `)['"]?`), Handle: mentionDetails},
	{Name: "most-followers", Extract: rule.AnyPhrase("maximum followers", "most followers", "highest followers"), Handle: mostFollowers},
	{Name: "most-likes", Extract: rule.AnyPhrase("maximum likes", "most likes", "highest likes"), Handle: mostLikes},
	{Name: "most-comments", Extract: rule.AnyPhrase("maximum comments", "most comments", "highest comments"), Handle: mostComments},
	{Name: "quoted-phrase", Extract: rule.RawPattern(`["'](` + words + `)["']`), Handle: quotedPhrase},
	{Name: "any-keyword", Extract: rule.Tokens, Handle: anyKeyword},
}
