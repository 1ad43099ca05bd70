// Package ingest reads and writes record files.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/TobiSchelling/postqa/internal/record"
)

// renames maps lower-cased export headers to the standard field names.
var renames = map[string]string{
	"profileurl":   record.ProfileURL,
	"authorurl":    record.AuthorURL,
	"posturl":      record.PostURL,
	"postcontent":  record.PostContent,
	"likecount":    record.LikeCount,
	"commentcount": record.CommentCount,
	"repostcount":  record.RepostCount,
	"postdate":     record.PostDate,
}

// Header normalizes a column header: trimmed, lower-cased, then renamed to
// the standard field it stands for.
func Header(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	if f, ok := renames[h]; ok {
		return f
	}
	return h
}

// ReadCSV parses CSV rows into records. Every standard field is present on
// every record; unknown columns are kept under their normalized header.
func ReadCSV(r io.Reader) (record.Collection, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return record.Collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = Header(h)
	}

	c := record.Collection{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(c)+2, err)
		}
		rec := blank()
		for i, col := range cols {
			if col == "" {
				continue
			}
			if i < len(row) {
				rec[col] = strings.TrimSpace(row[i])
			} else if _, ok := rec[col]; !ok {
				rec[col] = ""
			}
		}
		c = append(c, rec)
	}
	return c, nil
}

// LoadCSV reads a CSV file.
func LoadCSV(path string) (record.Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	c, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return c, nil
}

// ReadJSON decodes an array of objects. Non-string values are kept as
// their JSON text; null becomes "".
func ReadJSON(r io.Reader) (record.Collection, error) {
	var raw []map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}
	c := make(record.Collection, 0, len(raw))
	for _, obj := range raw {
		rec := blank()
		for k, v := range obj {
			rec[Header(k)] = stringify(v)
		}
		c = append(c, rec)
	}
	return c, nil
}

// LoadJSON reads a JSON record file.
func LoadJSON(path string) (record.Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// Load reads path as JSON when it has a .json extension, CSV otherwise.
func Load(path string) (record.Collection, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(path)
	}
	return LoadCSV(path)
}

// WriteJSON encodes c as an indented array.
func WriteJSON(w io.Writer, c record.Collection) error {
	if c == nil {
		c = record.Collection{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// DumpJSON writes c to path, creating parent directories.
func DumpJSON(path string, c record.Collection) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteJSON(f, c); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func blank() record.Record {
	rec := make(record.Record, len(record.Fields))
	for _, f := range record.Fields {
		rec[f] = ""
	}
	return rec
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
