package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
)

// Dataset is a grid ready for rendering. Rows are keyed by header; missing
// keys render as empty cells. Notes are printed after the grid.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
	Notes   []string
}

var errNoHeaders = errors.New("dataset has no headers")

// CSVExporter renders a Dataset as CSV. Note lines become trailing rows padded
// to the header width so spreadsheet tools keep a rectangular sheet.
type CSVExporter struct {
	comma rune
}

// NewCSVExporter builds a comma separated exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{comma: ','}
}

// Render encodes data.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, errNoHeaders
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = e.comma

	if err := w.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	width := len(data.Headers)
	for i, row := range data.Rows {
		record := make([]string, width)
		for col, header := range data.Headers {
			record[col] = row[header]
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	for _, note := range data.Notes {
		record := make([]string, width)
		record[0] = note
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv note: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
