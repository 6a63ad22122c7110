package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	numericPattern = regexp.MustCompile(`^\s*-?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?\s*$`)
	utf8BOM        = []byte{0xEF, 0xBB, 0xBF}
)

// ParseCSV reads CSV with the first line as headers. Cells are typed: numbers
// become float64, true/false become bool, blanks become nil. Blank lines are
// skipped.
func ParseCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("malformed csv at line %d: %w", parseErr.Line, parseErr.Err)
		}
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	return buildTable(records), nil
}

func buildTable(records [][]string) *Table {
	table := &Table{}
	if len(records) == 0 {
		return table
	}

	table.Columns = records[0]
	for _, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}

		row := make(RawRow, len(table.Columns))
		for i, col := range table.Columns {
			if i >= len(record) {
				break
			}
			row[col] = typeCell(record[i])
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}

func isBlankRecord(record []string) bool {
	return len(record) == 0 || (len(record) == 1 && record[0] == "")
}

func typeCell(cell string) interface{} {
	switch {
	case cell == "":
		return nil
	case cell == "true" || cell == "TRUE" || cell == "True":
		return true
	case cell == "false" || cell == "FALSE" || cell == "False":
		return false
	case numericPattern.MatchString(cell):
		if v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			return v
		}
	}
	return cell
}
