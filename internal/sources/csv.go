// Package sources loads pre-aggregated external tables into memory.
package sources

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmrzaf/tsgen/internal/domain"
)

// CSVOptions describes how the columns of a CSV map onto an AggregatedSource.
type CSVOptions struct {
	// DateField names the date column.
	DateField string
	// Index lists the columns forming the index. When it contains DateField the
	// source is date-indexed; the remaining index columns become label levels.
	Index []string
	// Freq is the period frequency of the date column; empty for instants.
	Freq domain.Frequency
	// Columns restricts the value columns; empty takes every non-index column.
	Columns []string
}

// LoadCSVFile opens path and loads it with LoadCSV.
func LoadCSVFile(path string, opts CSVOptions) (*domain.AggregatedSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, err := LoadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// LoadCSV reads a CSV with a header row.
func LoadCSV(r io.Reader, opts CSVOptions) (*domain.AggregatedSource, error) {
	if opts.DateField == "" {
		opts.DateField = domain.DefaultDateColumn
	}
	if opts.Freq != "" && !opts.Freq.Valid() {
		return nil, fmt.Errorf("unknown frequency: %q", opts.Freq)
	}

	reader := csv.NewReader(r)
	colIndex, err := readHeader(reader, opts)
	if err != nil {
		return nil, err
	}

	src := &domain.AggregatedSource{DateField: opts.DateField, Freq: opts.Freq}
	isIndex := make(map[string]bool, len(opts.Index))
	for _, name := range opts.Index {
		isIndex[name] = true
		if name == opts.DateField {
			src.DateIndexed = true
			continue
		}
		src.Levels = append(src.Levels, name)
	}

	if len(opts.Columns) > 0 {
		src.Columns = append(src.Columns, opts.Columns...)
	} else {
		for _, name := range headerOrder(colIndex) {
			if name != opts.DateField && !isIndex[name] {
				src.Columns = append(src.Columns, name)
			}
		}
	}
	for _, name := range src.Columns {
		if _, ok := colIndex[name]; !ok {
			return nil, fmt.Errorf("missing value column: %s", name)
		}
	}

	lineNum := 1
	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		row, err := parseRecord(record, colIndex, src, lineNum)
		if err != nil {
			return nil, err
		}
		src.Rows = append(src.Rows, row)
	}
	return src, nil
}

func readHeader(reader *csv.Reader, opts CSVOptions) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.TrimSpace(col)] = i
	}
	required := append([]string{opts.DateField}, opts.Index...)
	for _, col := range required {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}
	return colIndex, nil
}

func headerOrder(colIndex map[string]int) []string {
	names := make([]string, len(colIndex))
	for name, i := range colIndex {
		names[i] = name
	}
	return names
}

func parseRecord(record []string, colIndex map[string]int, src *domain.AggregatedSource, lineNum int) (domain.AggregatedRow, error) {
	var row domain.AggregatedRow
	rawDate := strings.TrimSpace(record[colIndex[src.DateField]])
	if src.PeriodIndexed() {
		p, err := domain.ParsePeriod(src.Freq, rawDate)
		if err != nil {
			return row, fmt.Errorf("line %d: %w", lineNum, err)
		}
		row.Period = &p
		row.Date = p.StartTime()
	} else {
		t, err := time.Parse(time.DateOnly, rawDate)
		if err != nil {
			return row, fmt.Errorf("line %d: invalid date %q: %w", lineNum, rawDate, err)
		}
		row.Date = t
	}

	row.Labels = make([]string, len(src.Levels))
	for i, level := range src.Levels {
		row.Labels[i] = strings.TrimSpace(record[colIndex[level]])
	}

	row.Values = make([]float64, len(src.Columns))
	for i, col := range src.Columns {
		raw := strings.TrimSpace(record[colIndex[col]])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return row, fmt.Errorf("line %d: column %s: invalid number %q", lineNum, col, raw)
		}
		row.Values[i] = v
	}
	return row, nil
}
