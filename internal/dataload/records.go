// Package dataload reads per-visitor experiment records from flat tabular
// files (CSV or XLSX) and turns them into outcome and amount sequences.
package dataload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoRows        = errors.New("no data rows")
	ErrUnknownFormat = errors.New("unsupported file type")
)

// Record is one visitor: when they arrived and what they spent (or a 0/1
// outcome flag).
type Record struct {
	Time  time.Time
	Value float64
}

var (
	timeColumns  = []string{"date", "timestamp", "time", "created_at"}
	valueColumns = []string{"amount", "revenue", "value", "outcome", "converted", "purchase"}

	timeLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
		"01/02/2006",
	}
)

// Load reads a .csv or .xlsx file based on its extension.
func Load(path string) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open Excel file: %w", err)
		}
		defer f.Close()
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
	}
}

// parseRows maps a header row plus data rows into records.
func parseRows(rows [][]string) ([]Record, error) {
	if len(rows) < 2 {
		return nil, ErrNoRows
	}

	header := rows[0]
	timeIdx := findColumn(header, timeColumns, 0)
	valueIdx := findColumn(header, valueColumns, 1)
	if timeIdx == valueIdx {
		return nil, fmt.Errorf("need a timestamp column and a value column, got header %v", header)
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}
		if timeIdx >= len(row) || valueIdx >= len(row) {
			return nil, fmt.Errorf("row %d: expected at least %d columns, got %d", line, max(timeIdx, valueIdx)+1, len(row))
		}

		ts, err := ParseTime(row[timeIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		v, err := parseValue(row[valueIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		records = append(records, Record{Time: ts, Value: v})
	}

	if len(records) == 0 {
		return nil, ErrNoRows
	}
	return records, nil
}

func findColumn(header []string, names []string, fallback int) int {
	for _, name := range names {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
	}
	return fallback
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ParseTime accepts RFC3339, a handful of date layouts, or unix seconds.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	switch strings.ToLower(s) {
	case "", "false", "no":
		return 0, nil
	case "true", "yes":
		return 1, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return v, nil
}

// Filter keeps records whose calendar day falls within [from, to]. A zero
// bound is open.
func Filter(records []Record, from, to time.Time) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		day := truncateDay(r.Time)
		if !from.IsZero() && day.Before(truncateDay(from)) {
			continue
		}
		if !to.IsZero() && day.After(truncateDay(to)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Outcomes maps each record to 1 if it converted (positive value), else 0.
func Outcomes(records []Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		if r.Value > 0 {
			out[i] = 1
		}
	}
	return out
}

// Amounts returns the raw values, for average order value estimation.
func Amounts(records []Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Value
	}
	return out
}

