package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Options controls how the dataset file is read.
type Options struct {
	// Delimiter for CSV. If 0, auto-detects from the file extension.
	Delimiter rune
	// SheetName selects an XLSX sheet by name.
	SheetName string
	// SheetIndex selects an XLSX sheet by 1-based index when SheetName is empty.
	SheetIndex int
}

// DefaultOptions returns the defaults for reading the study extract.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

// Read loads the dataset from path, choosing the reader by extension.
func Read(path string, opt Options) (*Table, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return ReadXLSX(path, opt)
	}
	return ReadCSV(path, opt)
}

// ReadCSV loads and validates the dataset from a CSV or TSV file.
func ReadCSV(path string, opt Options) (*Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	// Strip a UTF-8 BOM so the first header cell matches the schema.
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = delim
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	t, err := fromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
