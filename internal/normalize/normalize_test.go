package normalize

import (
	"reflect"
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  Madhuri Jain  ", "madhuri jain"},
		{"Crème Brûlée", "creme brulee"},
		{"Łukasz Ørsted", "lukasz orsted"},
		{"Straße", "strasse"},
		{"“Microsoft”", `"microsoft"`},
		{"ﬁnance", "finance"},
		{"HTTPS://Y/2", "https://y/2"},
	}
	for _, tt := range tests {
		if got := Text(tt.in); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextIdempotent(t *testing.T) {
	inputs := []string{
		"", "Hello, World!", "Ärger über Öl", "ℌello", "  tabs\tand\nnewlines ",
		"Crème Brûlée", "Ǆemal", "½ price", "Looking for a lawyer in Bangalore.",
	}
	for _, in := range inputs {
		once := Text(in)
		if twice := Text(once); twice != once {
			t.Errorf("Text not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"   ", []string{}},
		{"Who wrote about Microsoft-Playwright?", []string{"who", "wrote", "about", "microsoft", "playwright"}},
		{"#hiring, #hiring!", []string{"hiring", "hiring"}},
		{"postUrl: 'https://y/2'", []string{"posturl", "https", "y", "2"}},
		{"Café_au_lait", []string{"cafe", "au", "lait"}},
	}
	for _, tt := range tests {
		got := Tokenize(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenizeNeverNil(t *testing.T) {
	if got := Tokenize(""); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}
