package predicate

import (
	"strings"

	"github.com/TobiSchelling/postqa/internal/normalize"
	"github.com/TobiSchelling/postqa/internal/record"
)

// Where returns the records satisfying keep, in collection order.
// The input collection is never modified.
func Where(c record.Collection, keep func(record.Record) bool) record.Collection {
	out := make(record.Collection, 0)
	for _, r := range c {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// ByField keeps records whose field contains (or, with exact, equals) value.
func ByField(c record.Collection, field, value string, exact bool) record.Collection {
	return Where(c, func(r record.Record) bool {
		return FieldContains(r, field, value, exact)
	})
}

// ByPostURL keeps records whose postUrl contains the URL fragment.
func ByPostURL(c record.Collection, fragment string) record.Collection {
	return ByField(c, record.PostURL, fragment, false)
}

// ByAnyURL keeps records whose profile or post URL contains the fragment.
func ByAnyURL(c record.Collection, fragment string) record.Collection {
	return Where(c, func(r record.Record) bool {
		return FieldContains(r, record.ProfileURL, fragment, false) ||
			FieldContains(r, record.PostURL, fragment, false)
	})
}

// ByKeywordInContent keeps records whose post content contains keyword.
func ByKeywordInContent(c record.Collection, keyword string) record.Collection {
	return ByField(c, record.PostContent, keyword, false)
}

// ByAuthorOrName keeps records where every token of person appears in the
// combined author and name fields.
func ByAuthorOrName(c record.Collection, person string) record.Collection {
	tokens := normalize.Tokenize(person)
	if len(tokens) == 0 {
		return record.Collection{}
	}
	return Where(c, func(r record.Record) bool {
		combined := normalize.Text(r.Get(record.Author)) + " " + normalize.Text(r.Get(record.Name))
		for _, tok := range tokens {
			if !strings.Contains(combined, tok) {
				return false
			}
		}
		return true
	})
}

// ByAttributeInDescription keeps records whose description contains attr.
func ByAttributeInDescription(c record.Collection, attr string) record.Collection {
	return ByField(c, record.Description, attr, false)
}

// ByNumericThreshold keeps records whose field compares true against threshold.
func ByNumericThreshold(c record.Collection, field string, threshold float64, op Op) record.Collection {
	return Where(c, func(r record.Record) bool {
		return NumericThreshold(r, field, threshold, op)
	})
}

// ByMonthYear keeps records posted in the named month (and year, if non-zero).
// An unknown month name yields no records.
func ByMonthYear(c record.Collection, monthName string, year int) record.Collection {
	if _, ok := MonthOrdinal(monthName); !ok {
		return record.Collection{}
	}
	return Where(c, func(r record.Record) bool {
		return MonthYearMatch(r, monthName, year)
	})
}
