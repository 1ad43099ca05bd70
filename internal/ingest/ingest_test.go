package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/TobiSchelling/postqa/internal/record"
)

const sampleCSV = `Name,ProfileURL,PostContent,PostUrl,LikeCount,Hashtags
Madhuri Jain,https://x/1,"Looking for a lawyer, in Bangalore.",https://y/2,940,#law
Rahul,https://x/3,,https://y/4,12
`

func TestReadCSV(t *testing.T) {
	c, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(c) != 2 {
		t.Fatalf("expected 2 records, got %d", len(c))
	}

	first := c[0]
	if first.Get(record.ProfileURL) != "https://x/1" {
		t.Errorf("profile URL not renamed: %v", first)
	}
	if first.Get(record.PostContent) != "Looking for a lawyer, in Bangalore." {
		t.Errorf("quoted field mangled: %q", first.Get(record.PostContent))
	}
	if first["hashtags"] != "#law" {
		t.Errorf("unknown column dropped: %v", first)
	}
	for _, f := range record.Fields {
		if _, ok := first[f]; !ok {
			t.Errorf("standard field %q missing", f)
		}
	}

	// Short row: trailing cell absent.
	if v, ok := c[1]["hashtags"]; !ok || v != "" {
		t.Errorf("missing cell should be empty, got %q (present=%v)", v, ok)
	}
}

func TestReadCSVEmpty(t *testing.T) {
	c, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if c == nil || len(c) != 0 {
		t.Errorf("expected empty non-nil collection, got %v", c)
	}
}

func TestHeader(t *testing.T) {
	tests := map[string]string{
		" PostURL ":    record.PostURL,
		"\ufeffname":   record.Name,
		"commentCount": record.CommentCount,
		"Followers":    record.Followers,
		"Location":     "location",
	}
	for in, want := range tests {
		if got := Header(in); got != want {
			t.Errorf("Header(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	c, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out", "raw_metadata.json")
	if err := DumpJSON(path, c); err != nil {
		t.Fatalf("DumpJSON: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(c, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadJSONScalars(t *testing.T) {
	in := `[{"likeCount": 12, "followers": null, "postUrl": "https://y/2", "tags": ["a"]}]`
	c, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	want := record.Record{}
	for _, f := range record.Fields {
		want[f] = ""
	}
	want[record.LikeCount] = "12"
	want[record.PostURL] = "https://y/2"
	want["tags"] = `["a"]`
	if diff := cmp.Diff(want, c[0]); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c) != 2 {
		t.Errorf("expected 2 records, got %d", len(c))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteJSONNil(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("got %q", buf.String())
	}
}
