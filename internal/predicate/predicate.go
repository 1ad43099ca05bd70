// Package predicate holds the matching primitives shared by both resolvers.
// A value that cannot be parsed never raises an error; the predicate is
// simply false for that record.
package predicate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/TobiSchelling/postqa/internal/normalize"
	"github.com/TobiSchelling/postqa/internal/record"
)

// Op is a numeric comparison operator.
type Op string

const (
	GT  Op = ">"
	GTE Op = ">="
	LT  Op = "<"
	LTE Op = "<="
)

var numberRun = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseNumber extracts the first numeric run from a loosely formatted count
// such as "1,234+" or "940 followers".
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.NewReplacer("+", "", ",", "").Replace(s))
	run := numberRun.FindString(s)
	if run == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(run, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FieldContains compares a record field with value after normalizing both.
// With exact set the values must be equal, otherwise value must occur as a
// substring of the field.
func FieldContains(r record.Record, field, value string, exact bool) bool {
	have := normalize.Text(r.Get(field))
	want := normalize.Text(value)
	if exact {
		return have == want
	}
	return strings.Contains(have, want)
}

// NumericThreshold compares the parsed value of field against threshold.
func NumericThreshold(r record.Record, field string, threshold float64, op Op) bool {
	v, ok := ParseNumber(r.Get(field))
	if !ok {
		return false
	}
	switch op {
	case GT:
		return v > threshold
	case GTE:
		return v >= threshold
	case LT:
		return v < threshold
	case LTE:
		return v <= threshold
	}
	return false
}

// MonthYearMatch reports whether the record's postDate falls in the named
// month and, when year is non-zero, in that year.
func MonthYearMatch(r record.Record, monthName string, year int) bool {
	month, ok := MonthOrdinal(monthName)
	if !ok {
		return false
	}
	t, ok := ParseDate(r.Get(record.PostDate))
	if !ok {
		return false
	}
	return t.Month() == month && (year == 0 || t.Year() == year)
}

// AllTokensPresent reports whether every needle token occurs in haystack.
// An empty needle is trivially present.
func AllTokensPresent(haystack, needle []string) bool {
	set := tokenSet(haystack)
	for _, tok := range needle {
		if _, ok := set[tok]; !ok {
			return false
		}
	}
	return true
}

// AnyTokenPresent reports whether at least one needle token occurs in haystack.
func AnyTokenPresent(haystack, needle []string) bool {
	set := tokenSet(haystack)
	for _, tok := range needle {
		if _, ok := set[tok]; ok {
			return true
		}
	}
	return false
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
