// Package ingest turns uploaded statements into ratio line items.
//
// Columns are positional: label, prior value, current value. Header text is
// ignored and the first row is always treated as the header.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"balance_insight/pkg/core/ratio"
)

// ErrUnsupportedFormat is returned for file extensions no reader handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format identifies an input reader.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// DetectFormat maps a file name to its reader. Legacy ".xls" exports from
// banking portals are HTML tables, so they go through the HTML reader.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".html", ".htm", ".xls":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

// Parse reads the statement in r, choosing the reader from name.
func Parse(name string, r io.Reader) ([]ratio.LineItem, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	var cells [][]string
	convert := Coerce
	switch format {
	case FormatXLSX:
		cells, err = readXLSX(r)
		convert = coerceRaw
	case FormatCSV:
		cells, err = readCSV(r)
	case FormatHTML:
		cells, err = readHTML(r)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return rows(cells, convert), nil
}

// Rows maps raw cells to line items, skipping the header row and rows with
// no content. Missing cells become empty values.
func Rows(cells [][]string) []ratio.LineItem {
	return rows(cells, Coerce)
}

func rows(cells [][]string, convert func(string) float64) []ratio.LineItem {
	if len(cells) <= 1 {
		return nil
	}
	items := make([]ratio.LineItem, 0, len(cells)-1)
	for _, row := range cells[1:] {
		if blank(row) {
			continue
		}
		items = append(items, ratio.LineItem{
			Label:   strings.TrimSpace(cell(row, 0)),
			Prior:   convert(cell(row, 1)),
			Current: convert(cell(row, 2)),
		})
	}
	return items
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
