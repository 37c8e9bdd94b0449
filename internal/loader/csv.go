package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// header maps lower-cased column names to their positions in a CSV header row.
type header map[string]int

func readHeader(r *csv.Reader, required ...string) (header, error) {
	row, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	h := make(header, len(row))
	for i, name := range row {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, name := range required {
		if _, ok := h[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return h, nil
}

// field returns the named column's trimmed value, or "" if the row is
// too short or the column is unknown.
func (h header) field(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// forEachRow streams CSV rows to fn, skipping structurally malformed
// lines instead of aborting. fn returns false to skip-count the row.
func forEachRow(src io.Reader, stats *Stats, required []string, fn func(h header, row []string) bool) error {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1 // rows are validated per-field, not by width
	r.LazyQuotes = true

	h, err := readHeader(r, required...)
	if err != nil {
		return err
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			stats.Skipped++
			continue
		}
		if fn(h, row) {
			stats.Rows++
		} else {
			stats.Skipped++
		}
	}
}
