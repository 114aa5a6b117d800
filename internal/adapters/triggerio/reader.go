// Package triggerio reads per-period trigger files: directory discovery
// by a substring filter, per-detector column-group decoding, and the
// live-time convention encoded in file names.
package triggerio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/bgfit/internal/domain/table"
)

// File is one decoded trigger file: a table of equal-length numeric
// columns per detector identifier, plus the live time parsed from the
// file name.
type File struct {
	Path string
	// LiveTime is the analyzed duration in seconds for this file, from
	// the trailing numeric field of the file name.
	LiveTime int64
	// Groups maps detector identifier to its trigger table. Columns
	// whose length disagrees with the detector's snr column are dropped
	// during decoding; missing required columns are left to schema
	// validation downstream.
	Groups map[string]*table.Table
}

// Reader lists and decodes trigger files. Implementations must not leak
// a file handle on read failure.
type Reader interface {
	// Scan returns the sorted paths under dir whose base name contains
	// filter. An empty filter matches every file.
	Scan(ctx context.Context, dir, filter string) ([]string, error)

	// Read opens, decodes, and closes one trigger file.
	Read(ctx context.Context, path string) (*File, error)
}

// JSONReader reads trigger files stored as one JSON object per file:
// detector identifier -> column name -> array of numbers.
type JSONReader struct{}

// NewJSONReader creates a reader for JSON trigger files.
func NewJSONReader() *JSONReader {
	return &JSONReader{}
}

// Scan implements Reader.
func (r *JSONReader) Scan(_ context.Context, dir, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDirUnreadable, dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filter != "" && !strings.Contains(e.Name(), filter) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Read implements Reader. Any failure to open or decode the file is a
// recoverable read error; the caller logs it and moves on.
func (r *JSONReader) Read(_ context.Context, path string) (*File, error) {
	liveTime, err := ParseLiveTime(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileUnreadable, path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileUnreadable, path, err)
	}

	var raw map[string]map[string][]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileUnreadable, path, err)
	}

	f := &File{Path: path, LiveTime: liveTime, Groups: make(map[string]*table.Table, len(raw))}
	for detector, cols := range raw {
		f.Groups[detector] = consistent(cols)
	}
	return f, nil
}

// consistent builds a table from the columns whose length matches the
// detector's snr column, dropping the rest. Without an snr column the
// group decodes to an empty table.
func consistent(cols map[string][]float64) *table.Table {
	rows := len(cols[table.ColSNR])
	kept := make(map[string][]float64)
	for name, vals := range cols {
		if len(vals) == rows {
			kept[name] = vals
		}
	}
	t, err := table.FromColumns(kept)
	if err != nil {
		// Unreachable: kept columns share one length.
		return table.New()
	}
	return t
}

// ParseLiveTime extracts the live-time integer from a trigger file name:
// the trailing dash-separated numeric field before the extension, e.g.
// "H1L1-TRIGGERS-1262304000-4096.json" -> 4096.
func ParseLiveTime(path string) (int64, error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	i := strings.LastIndex(base, "-")
	if i < 0 || i == len(base)-1 {
		return 0, fmt.Errorf("%w: %q", ErrLiveTimeField, filepath.Base(path))
	}
	seconds, err := strconv.ParseInt(base[i+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrLiveTimeField, filepath.Base(path), err)
	}
	return seconds, nil
}
