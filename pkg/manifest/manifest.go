// Package manifest reads combine manifests: CSV files listing the
// source documents for one combine, one document per row.
//
// A manifest has a header row naming at least the file column, plus
// optional pages and orientation columns, in any order:
//
//	file,pages,orientation
//	reports/q1.pdf,1-3,
//	reports/appendix.pdf,,landscape
//
// Column names are case-insensitive. A blank pages cell means every
// page; a blank orientation cell means auto. Lines starting with #
// are comments.
package manifest

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one manifest row. Pages and Orientation carry the raw cell
// text: orientation tokens are checked at load time, but page ranges
// are the caller's concern so their errors can name the document they
// belong to.
type Entry struct {
	File        string
	Pages       string
	Orientation string
}

// Load reads a manifest and returns its entries in row order.
func Load(r io.Reader) ([]Entry, error) {
	config := DefaultParserConfig()
	config.Comment = '#'
	config.HeaderValidators = []HeaderValidator{
		RequiredColumns("file"),
		KnownColumns("file", "pages", "orientation"),
	}
	parser := NewParser(config)

	var cols map[string]int
	var entries []Entry
	err := parser.Parse(r, func(rowNum int, headers []string, row []string) error {
		if cols == nil {
			cols = columnIndex(headers)
		}
		entry := Entry{
			File:        cellAt(row, cols, "file"),
			Pages:       cellAt(row, cols, "pages"),
			Orientation: cellAt(row, cols, "orientation"),
		}
		if entry.File == "" {
			return fmt.Errorf("file cell is empty")
		}
		if entry.Orientation != "" && !knownOrientation(entry.Orientation) {
			return fmt.Errorf("unknown orientation %q", entry.Orientation)
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// LoadFile reads a manifest from disk.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// knownOrientation reports whether a cell names an orientation the
// combiner accepts.
func knownOrientation(s string) bool {
	switch strings.ToLower(s) {
	case "p", "portrait", "l", "landscape":
		return true
	}
	return false
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(name)] = i
	}
	return idx
}

func cellAt(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
