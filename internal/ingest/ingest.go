// Package ingest turns uploaded tabular files into canonical, gap-filled
// load series.
package ingest

import (
	"errors"
)

var (
	ErrEmptyFile          = errors.New("file is empty")
	ErrColumnsNotDetected = errors.New("could not detect required timestamp and load columns")
	ErrNoValidRows        = errors.New("no valid data points found after preprocessing")
	ErrNoValidLoad        = errors.New("no valid load values found")
	ErrUnsupportedFormat  = errors.New("unsupported file format")
)

// RawRow maps a header to a typed cell: float64, bool, string or nil.
type RawRow map[string]interface{}

// Table is the untyped result of parsing a file.
type Table struct {
	Columns []string
	Rows    []RawRow
}
