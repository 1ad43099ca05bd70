package predicate

import (
	"testing"
	"time"

	"github.com/TobiSchelling/postqa/internal/record"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"940", 940, true},
		{"940+", 940, true},
		{"1,234+", 1234, true},
		{" 12.5k ", 12.5, true},
		{"500+ followers", 500, true},
		{"", 0, false},
		{"N/A", 0, false},
		{".", 0, false},
		{"1.2.3", 1.2, true},
		{"approx. 940", 940, true},
		{"v.2 release", 2, true},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNumericThreshold(t *testing.T) {
	r := record.Record{record.Followers: "1,234+"}
	if !NumericThreshold(r, record.Followers, 1000, GT) {
		t.Error(`expected "1,234+" > 1000`)
	}
	if NumericThreshold(r, record.Followers, 1234, GT) {
		t.Error(`expected "1,234+" > 1234 to be false`)
	}
	if !NumericThreshold(r, record.Followers, 1234, GTE) {
		t.Error(`expected "1,234+" >= 1234`)
	}

	bad := record.Record{record.Followers: "lots"}
	for _, op := range []Op{GT, GTE, LT, LTE} {
		if NumericThreshold(bad, record.Followers, 0, op) {
			t.Errorf("non-numeric value must fail for op %s", op)
		}
	}
	missing := record.Record{}
	if NumericThreshold(missing, record.Followers, -1, GT) {
		t.Error("missing field must fail")
	}
}

func TestFieldContains(t *testing.T) {
	r := record.Record{record.Name: "José Álvarez"}
	if !FieldContains(r, record.Name, "jose", false) {
		t.Error("expected substring match across diacritics")
	}
	if FieldContains(r, record.Name, "jose", true) {
		t.Error("exact match should require equality")
	}
	if !FieldContains(r, record.Name, "  JOSE ALVAREZ ", true) {
		t.Error("expected exact match after normalization")
	}
}

func TestMonthOrdinal(t *testing.T) {
	if m, ok := MonthOrdinal("march"); !ok || m != time.March {
		t.Errorf("expected March, got %v %v", m, ok)
	}
	if m, ok := MonthOrdinal("DECEMBER"); !ok || m != time.December {
		t.Errorf("expected December, got %v %v", m, ok)
	}
	if _, ok := MonthOrdinal("Mar"); ok {
		t.Error("abbreviations must not be recognized")
	}
	if _, ok := MonthOrdinal("john"); ok {
		t.Error("expected no month for 'john'")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in        string
		wantMonth time.Month
		wantYear  int
	}{
		{"2023-10-05", time.October, 2023},
		{"2024-03-14T09:30:00Z", time.March, 2024},
		{"Oct 5, 2023", time.October, 2023},
		{"Posted on 12 March 2024 (edited)", time.March, 2024},
		{"5th of June, 2022", time.June, 2022},
		{"Posted 2023-10-05 via web", time.October, 2023},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if !ok {
			t.Errorf("ParseDate(%q) failed", tt.in)
			continue
		}
		if got.Month() != tt.wantMonth || got.Year() != tt.wantYear {
			t.Errorf("ParseDate(%q) = %v, want %s %d", tt.in, got, tt.wantMonth, tt.wantYear)
		}
	}

	for _, in := range []string{"", "sometime soon", "edited recently"} {
		if _, ok := ParseDate(in); ok {
			t.Errorf("ParseDate(%q) should fail", in)
		}
	}
}

func TestParseDateDayFirst(t *testing.T) {
	tests := []struct {
		in   string
		want time.Month
		day  int
	}{
		{"13/05/2023", time.May, 13},
		{"25.05.2023", time.May, 25},
		{"Posted 25.05.2023 via web", time.May, 25},
		{"05/10/2023", time.May, 10},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if !ok {
			t.Errorf("ParseDate(%q) failed", tt.in)
			continue
		}
		if got.Month() != tt.want || got.Day() != tt.day || got.Year() != 2023 {
			t.Errorf("ParseDate(%q) = %v, want %s %d 2023", tt.in, got, tt.want, tt.day)
		}
	}
}

func TestMonthYearMatch(t *testing.T) {
	r := record.Record{record.PostDate: "2024-03-14"}
	if !MonthYearMatch(r, "March", 0) {
		t.Error("expected month match without year")
	}
	if !MonthYearMatch(r, "march", 2024) {
		t.Error("expected month+year match")
	}
	if MonthYearMatch(r, "March", 2023) {
		t.Error("expected year mismatch")
	}
	if MonthYearMatch(record.Record{record.PostDate: "garbled"}, "March", 0) {
		t.Error("unparsable dates must be excluded")
	}
}

func TestTokenContainment(t *testing.T) {
	hay := []string{"new", "blog", "post", "on", "microsoft", "playwright"}
	if !AllTokensPresent(hay, []string{"microsoft", "playwright"}) {
		t.Error("expected all tokens present")
	}
	if AllTokensPresent(hay, []string{"microsoft", "azure"}) {
		t.Error("expected missing token")
	}
	if !AnyTokenPresent(hay, []string{"azure", "blog"}) {
		t.Error("expected any-token match")
	}
	if AnyTokenPresent(hay, nil) {
		t.Error("empty needle has no token present")
	}
}

func TestByAuthorOrName(t *testing.T) {
	c := record.Collection{
		{record.Author: "Ashish Shah"},
		{record.Name: "Madhuri Jain"},
		{record.Author: "Charanjeet Kaur"},
	}
	got := ByAuthorOrName(c, "madhuri jain")
	if len(got) != 1 || got[0].Get(record.Name) != "Madhuri Jain" {
		t.Errorf("unexpected match %v", got)
	}
	if len(ByAuthorOrName(c, "")) != 0 {
		t.Error("empty person must match nothing")
	}
}

func TestByMonthYearUnknownMonth(t *testing.T) {
	c := record.Collection{{record.PostDate: "2024-03-14"}}
	if got := ByMonthYear(c, "Marchember", 0); len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
	if got := ByMonthYear(c, "March", 2024); len(got) != 1 {
		t.Errorf("expected 1 record, got %d", len(got))
	}
}

func TestFiltersDoNotMutate(t *testing.T) {
	c := record.Collection{
		{record.PostContent: "Looking for a lawyer in Bangalore."},
		{record.PostContent: "Hiring engineers"},
	}
	got := ByKeywordInContent(c, "lawyer")
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if c[0][record.PostContent] != "Looking for a lawyer in Bangalore." || len(c) != 2 {
		t.Error("collection was modified")
	}
}
