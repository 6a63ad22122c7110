package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/OldStager01/energy-forecaster/internal/logger"
	"github.com/OldStager01/energy-forecaster/pkg/models"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromFilename picks a parser from the file extension, defaulting to CSV.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", "":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
}

// Prepared is the output of ingestion: the canonical gap-filled series and
// its summary.
type Prepared struct {
	Columns Columns
	Points  []models.TimeSeriesPoint
	Info    models.DatasetInfo
}

// Read parses r according to format.
func Read(r io.Reader, format Format) (*Table, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(r)
	case FormatXLSX:
		return ParseXLSX(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// Prepare runs detection, standardization and gap filling over a parsed
// table. The summary's missing-value count reflects the gaps before filling.
func Prepare(table *Table, filename string, loc *time.Location) (*Prepared, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, ErrEmptyFile
	}

	cols := DetectColumns(table.Columns)
	if !cols.Valid() {
		return nil, ErrColumnsNotDetected
	}

	standardized := Standardize(table.Rows, cols, loc)
	if len(standardized) == 0 {
		return nil, ErrNoValidRows
	}

	info := Summarize(standardized, filename)
	filled := Fill(standardized)
	if CountMissing(filled) > 0 {
		return nil, ErrNoValidLoad
	}

	logger.WithFields(map[string]interface{}{
		"filename":  filename,
		"rows":      len(table.Rows),
		"points":    len(filled),
		"filled":    info.MissingValues,
		"load_col":  cols.Load,
		"time_col":  cols.Timestamp,
		"frequency": info.Frequency,
	}).Debug("Dataset prepared")

	return &Prepared{
		Columns: cols,
		Points:  filled,
		Info:    info,
	}, nil
}
