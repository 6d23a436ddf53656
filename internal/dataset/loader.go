package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrEmptyDataset is returned when no usable review survives preparation
var ErrEmptyDataset = errors.New("dataset has no usable reviews")

// LoadOptions controls CSV parsing
type LoadOptions struct {
	TextColumn   string
	RatingColumn string
	Delimiter    rune
}

// Table is a parsed CSV with the text and rating columns located
type Table struct {
	Header    []string
	Rows      [][]string
	TextIdx   int
	RatingIdx int
}

// LoadFile opens path and parses it with Load
func LoadFile(path string, opts LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Load(f, opts)
}

// Load parses a headed CSV and locates the configured columns
func Load(r io.Reader, opts LoadOptions) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	textIdx := columnIndex(header, opts.TextColumn)
	if textIdx < 0 {
		return nil, fmt.Errorf("text column %q not found in header %v", opts.TextColumn, header)
	}
	ratingIdx := columnIndex(header, opts.RatingColumn)
	if ratingIdx < 0 {
		return nil, fmt.Errorf("rating column %q not found in header %v", opts.RatingColumn, header)
	}

	table := &Table{
		Header:    header,
		TextIdx:   textIdx,
		RatingIdx: ratingIdx,
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read dataset line %d: %w", line, err)
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// columnIndex finds a header by exact name, then case-insensitively
func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}
