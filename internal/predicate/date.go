package predicate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// MonthOrdinal resolves a full English month name, ignoring case.
// Abbreviations are rejected.
func MonthOrdinal(name string) (time.Month, bool) {
	name = strings.TrimSpace(name)
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(name, m.String()) {
			return m, true
		}
	}
	return 0, false
}

// ParseDate parses free-form post dates. It tries the whole string first,
// then any embedded numeric date ("posted 2023-10-05 via web"), and finally
// scans the words for a month name, a day and a four-digit year. A missing
// year defaults to the current one and a missing day to the first.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := parseAny(s); err == nil {
		return t, true
	}

	words := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	var kept []string
	for _, w := range words {
		w = strings.Trim(w, ".()[]'\"")
		if !isDateWord(w) {
			continue
		}
		if len(w) >= 8 && strings.ContainsAny(w, "-/.") {
			if t, err := parseAny(w); err == nil {
				return t, true
			}
		}
		kept = append(kept, w)
	}
	return scanDate(kept)
}

var dottedDate = regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{2,4}$`)

// parseAny reads month-first when a date is ambiguous and swaps to
// day-first when the month would be out of range ("13/05/2023").
// dateparse never swaps dotted dates, so they are read as slashed ones.
func parseAny(s string) (time.Time, error) {
	if dottedDate.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "/")
	}
	return dateparse.ParseAny(s, dateparse.RetryAmbiguousDateWithSwap(true))
}

func scanDate(words []string) (time.Time, bool) {
	var (
		month time.Month
		day   int
		year  int
	)
	for _, w := range words {
		if m, ok := monthPrefix(w); ok && month == 0 {
			month = m
			continue
		}
		n, err := strconv.Atoi(trimOrdinal(w))
		if err != nil {
			continue
		}
		switch {
		case len(w) == 4 && n >= 1000 && year == 0:
			year = n
		case n >= 1 && n <= 31 && day == 0:
			day = n
		}
	}
	if month == 0 {
		return time.Time{}, false
	}
	if year == 0 {
		year = time.Now().Year()
	}
	if day == 0 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

func isDateWord(w string) bool {
	if w == "" {
		return false
	}
	if _, ok := monthPrefix(w); ok {
		return true
	}
	digits := 0
	for _, r := range trimOrdinal(w) {
		switch {
		case unicode.IsDigit(r):
			digits++
		case strings.ContainsRune("-/:.T Z+", r):
		default:
			return false
		}
	}
	return digits > 0
}

// monthPrefix accepts full month names and their three-letter forms inside
// stored dates ("Oct 5, 2023"). Questions go through MonthOrdinal instead.
func monthPrefix(w string) (time.Month, bool) {
	lw := strings.ToLower(w)
	if len(lw) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		if strings.HasPrefix(full, lw) {
			return m, true
		}
	}
	return 0, false
}

func trimOrdinal(w string) string {
	lw := strings.ToLower(w)
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		if strings.HasSuffix(lw, suffix) && len(lw) > len(suffix) && unicode.IsDigit(rune(lw[len(lw)-len(suffix)-1])) {
			return w[:len(w)-len(suffix)]
		}
	}
	return w
}
