package filter

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/TobiSchelling/postqa/internal/aggregate"
	"github.com/TobiSchelling/postqa/internal/normalize"
	"github.com/TobiSchelling/postqa/internal/predicate"
	"github.com/TobiSchelling/postqa/internal/record"
	"github.com/TobiSchelling/postqa/internal/rule"
)

// stopwords never count as keywords in the fallback search.
var stopwords = map[string]bool{
	"give": true, "me": true, "details": true, "of": true, "the": true,
	"which": true, "that": true, "has": true, "have": true, "mention": true,
	"mentions": true, "post": true, "posts": true, "content": true, "show": true,
	"display": true, "with": true, "who": true, "whose": true, "what": true,
	"is": true, "in": true, "and": true, "or": true, "a": true,
	"an": true, "by": true, "for": true, "from": true, "about": true,
}

func found(c record.Collection) (record.Collection, bool) {
	return c, len(c) > 0
}

func byPerson(c record.Collection, p []string) (record.Collection, bool) {
	return found(predicate.ByAuthorOrName(c, strings.TrimSpace(p[0])))
}

func byRoleAndFollowers(c record.Collection, p []string) (record.Collection, bool) {
	role := strings.TrimSpace(p[0])
	n, ok := predicate.ParseNumber(p[1])
	if role == "" || !ok {
		return nil, false
	}
	withRole := predicate.ByAttributeInDescription(c, role)
	return found(predicate.ByNumericThreshold(withRole, record.Followers, n, predicate.GT))
}

func byFollowersOver(c record.Collection, p []string) (record.Collection, bool) {
	n, ok := predicate.ParseNumber(p[0])
	if !ok {
		return nil, false
	}
	return found(predicate.ByNumericThreshold(c, record.Followers, n, predicate.GT))
}

func byDescription(c record.Collection, p []string) (record.Collection, bool) {
	attr := strings.TrimSpace(p[0])
	if attr == "" {
		return nil, false
	}
	return found(predicate.ByAttributeInDescription(c, attr))
}

func byContentKeyword(c record.Collection, p []string) (record.Collection, bool) {
	if normalize.Text(p[0]) == "" {
		return nil, false
	}
	return found(predicate.ByKeywordInContent(c, p[0]))
}

func byMonthYear(c record.Collection, p []string) (record.Collection, bool) {
	year := 0
	if p[1] != "" {
		year, _ = strconv.Atoi(p[1])
	}
	return found(predicate.ByMonthYear(c, p[0], year))
}

// greatest recognizes "most/highest/max ... <noun>" questions. The single
// parameter is "article" when the question restricts itself to articles.
func greatest(noun string) rule.Extractor {
	re := regexp.MustCompile(`(?:most|highest|max).*` + noun)
	return func(q rule.Query) ([]string, bool) {
		if !re.MatchString(q.Norm) {
			return nil, false
		}
		kind := ""
		if strings.Contains(q.Norm, "article") {
			kind = "article"
		}
		return []string{kind}, true
	}
}

func mostLiked(c record.Collection, p []string) (record.Collection, bool) {
	return topPositive(c, record.LikeCount, p[0])
}

func mostCommented(c record.Collection, p []string) (record.Collection, bool) {
	return topPositive(c, record.CommentCount, p[0])
}

// topPositive selects the record with the greatest positive value of field,
// optionally among records of the given type only.
func topPositive(c record.Collection, field, kind string) (record.Collection, bool) {
	candidates := predicate.Where(c, func(r record.Record) bool {
		if kind != "" && !predicate.FieldContains(r, record.Type, kind, true) {
			return false
		}
		return predicate.NumericThreshold(r, field, 0, predicate.GT)
	})
	top, ok := aggregate.MaxBy(candidates, field)
	if !ok {
		return nil, false
	}
	return record.Collection{top}, true
}

func byExactPostURL(c record.Collection, p []string) (record.Collection, bool) {
	url := rule.TrimURL(p[0])
	return found(predicate.ByField(c, record.PostURL, url, true))
}

func distinctTextAuthors(c record.Collection, _ []string) (record.Collection, bool) {
	n := aggregate.CountDistinct(c, record.Author, record.Type, "text")
	return record.Collection{record.NewDistinctAuthorCount(n)}, true
}

var quoted = regexp.MustCompile(`["']([^"']+)["']`)

// quotedPair extracts the first two quoted phrases of the question as typed.
func quotedPair(q rule.Query) ([]string, bool) {
	m := quoted.FindAllStringSubmatch(q.Raw, 2)
	if len(m) < 2 {
		return nil, false
	}
	return []string{m[0][1], m[1][1]}, true
}

func byDescriptionPair(c record.Collection, p []string) (record.Collection, bool) {
	return found(predicate.Where(c, func(r record.Record) bool {
		return predicate.FieldContains(r, record.Description, p[0], false) &&
			predicate.FieldContains(r, record.Description, p[1], false)
	}))
}

func repostedBy(c record.Collection, p []string) (record.Collection, bool) {
	person := strings.TrimSpace(p[0])
	if person == "" {
		return nil, false
	}
	return found(predicate.Where(c, func(r record.Record) bool {
		return predicate.FieldContains(r, record.Author, person, true) &&
			predicate.NumericThreshold(r, record.RepostCount, 0, predicate.GT)
	}))
}

// Keywords returns the tokens of question that the fallback search uses:
// stop words and tokens of two characters or fewer are dropped.
func Keywords(question string) []string {
	return keywords(normalize.Tokenize(question))
}

func keywords(toks []string) []string {
	var out []string
	for _, tok := range toks {
		if stopwords[tok] || utf8.RuneCountInString(tok) <= 2 {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func byKeywords(c record.Collection, toks []string) (record.Collection, bool) {
	kw := keywords(toks)
	if len(kw) == 0 {
		return nil, false
	}
	return found(predicate.Where(c, func(r record.Record) bool {
		return predicate.AnyTokenPresent(normalize.Tokenize(r.Get(record.PostContent)), kw)
	}))
}
