// Package loader parses the three raw data sources into typed record
// sequences. A missing or unreadable file is fatal; an individual row
// that fails to parse is skipped and counted.
package loader

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
)

// Stats summarizes one loader run.
type Stats struct {
	Rows    int `json:"rows"`
	Skipped int `json:"skipped"`
}

// openInput opens a data file, transparently decompressing gzip inputs
// (registry and exclusion distributions usually ship as .csv.gz).
func openInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}

	zr, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
	}
	return &gzipReadCloser{zr: zr, f: f}, nil
}

type gzipReadCloser struct {
	zr *pgzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipReadCloser) Close() error {
	zerr := g.zr.Close()
	ferr := g.f.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

// trimGz strips a trailing .gz so format dispatch sees the real extension.
func trimGz(path string) string {
	return strings.TrimSuffix(path, ".gz")
}
