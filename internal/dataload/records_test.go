package dataload_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/headline-goat/lift-goat/internal/dataload"
)

const sampleCSV = `date,amount
2024-01-01,0
2024-01-01,"$1,250.00"
2024-01-02,0
2024-01-03,89.5

2024-01-04,-20
`

func TestReadCSV(t *testing.T) {
	records, err := dataload.ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.True(t, records[0].Time.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), records[0].Time)
	assert.Equal(t, 1250.0, records[1].Value)
	assert.Equal(t, 89.5, records[3].Value)
	assert.Equal(t, -20.0, records[4].Value)

	assert.Equal(t, []float64{0, 1, 0, 1, 0}, dataload.Outcomes(records))
	assert.Equal(t, []float64{0, 1250, 0, 89.5, -20}, dataload.Amounts(records))
}

func TestReadCSV_HeaderMatching(t *testing.T) {
	in := "visitor,converted,timestamp\nv1,yes,2024-02-01T10:00:00Z\nv2,no,2024-02-01T11:00:00Z\n"
	records, err := dataload.ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1.0, records[0].Value)
	assert.Equal(t, 0.0, records[1].Value)
	assert.Equal(t, 10, records[0].Time.Hour())
}

func TestReadCSV_PositionalFallback(t *testing.T) {
	in := "when,what\n1704067200,1\n1704153600,0\n"
	records, err := dataload.ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Time.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), records[0].Time)
	assert.Equal(t, 1.0, records[0].Value)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"header only", "date,amount\n"},
		{"bad timestamp", "date,amount\nyesterday,10\n"},
		{"bad amount", "date,amount\n2024-01-01,lots\n"},
		{"short row", "date,amount\n2024-01-01\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dataload.ReadCSV(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}

	_, err := dataload.ReadCSV(strings.NewReader("date,amount\n\n"))
	assert.True(t, errors.Is(err, dataload.ErrNoRows))
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2024-01-05", "2024-01-05 13:04:05", "2024-01-05T13:04:05Z", "01/05/2024"} {
		ts, err := dataload.ParseTime(s)
		require.NoError(t, err, s)
		assert.Equal(t, 2024, ts.Year(), s)
		assert.Equal(t, time.January, ts.Month(), s)
		assert.Equal(t, 5, ts.Day(), s)
	}
}

func TestFilter(t *testing.T) {
	records, err := dataload.ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	jan2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	jan3 := time.Date(2024, 1, 3, 15, 0, 0, 0, time.UTC)

	assert.Len(t, dataload.Filter(records, time.Time{}, time.Time{}), 5)
	assert.Len(t, dataload.Filter(records, jan2, time.Time{}), 3)
	assert.Len(t, dataload.Filter(records, time.Time{}, jan2), 3)
	assert.Len(t, dataload.Filter(records, jan2, jan3), 2)
	assert.Empty(t, dataload.Filter(records, jan3, jan2))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "control.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o644))
	records, err := dataload.Load(csvPath)
	require.NoError(t, err)
	assert.Len(t, records, 5)

	_, err = dataload.Load(filepath.Join(dir, "control.json"))
	assert.ErrorIs(t, err, dataload.ErrUnknownFormat)

	_, err = dataload.Load(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Date", "Amount"},
		{"2024-01-01", 0},
		{"2024-01-01", 120.5},
		{"2024-01-02", 0},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "treatment.xlsx")
	require.NoError(t, f.SaveAs(path))

	records, err := dataload.Load(path)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 120.5, records[1].Value)
	assert.Equal(t, []float64{0, 1, 0}, dataload.Outcomes(records))
}
