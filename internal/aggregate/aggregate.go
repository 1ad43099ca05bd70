// Package aggregate reduces a collection to a single record or value.
// Numeric fields are parsed with the same tolerant rule as the threshold
// predicate.
package aggregate

import (
	"github.com/TobiSchelling/postqa/internal/normalize"
	"github.com/TobiSchelling/postqa/internal/predicate"
	"github.com/TobiSchelling/postqa/internal/record"
)

// Value returns the parsed numeric value of field, or 0 when it does not parse.
func Value(r record.Record, field string) float64 {
	v, ok := predicate.ParseNumber(r.Get(field))
	if !ok {
		return 0
	}
	return v
}

// MaxBy returns the record with the greatest value of field. Unparsable
// values count as 0 and ties go to the earliest record. It reports false
// only for an empty collection.
func MaxBy(c record.Collection, field string) (record.Record, bool) {
	if len(c) == 0 {
		return nil, false
	}
	best, bestVal := c[0], Value(c[0], field)
	for _, r := range c[1:] {
		if v := Value(r, field); v > bestVal {
			best, bestVal = r, v
		}
	}
	return best, true
}

// CountDistinct counts the distinct values of groupField among records whose
// requiredField equals requiredValue after normalization. Blank group values
// are counted together as one group.
func CountDistinct(c record.Collection, groupField, requiredField, requiredValue string) int {
	want := normalize.Text(requiredValue)
	seen := make(map[string]struct{})
	for _, r := range c {
		if normalize.Text(r.Get(requiredField)) != want {
			continue
		}
		seen[r.Get(groupField)] = struct{}{}
	}
	return len(seen)
}

// Average returns the mean of every value of field that parses. It reports
// false when nothing parses.
func Average(c record.Collection, field string) (float64, bool) {
	var sum float64
	n := 0
	for _, r := range c {
		if v, ok := predicate.ParseNumber(r.Get(field)); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Mode returns the most frequent normalized non-empty value of field.
// Ties go to the value seen first.
func Mode(c record.Collection, field string) (string, bool) {
	counts := make(map[string]int)
	var order []string
	for _, r := range c {
		v := normalize.Text(r.Get(field))
		if v == "" {
			continue
		}
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	if len(order) == 0 {
		return "", false
	}
	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best, true
}

// CountWhere counts records whose field equals value after normalization.
func CountWhere(c record.Collection, field, value string) int {
	n := 0
	for _, r := range c {
		if predicate.FieldContains(r, field, value, true) {
			n++
		}
	}
	return n
}
