package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/headline-goat/lift-goat/internal/dataload"
	"github.com/headline-goat/lift-goat/internal/stats"
	"github.com/headline-goat/lift-goat/internal/store"
)

// withStore opens the database, executes the function, and handles cleanup.
func withStore(dbPath string, fn func(*store.SQLiteStore) error) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer s.Close()

	return fn(s)
}

// explain turns a statistics error into a message naming the parameter.
func explain(err error) error {
	var se *stats.Error
	if !errors.As(err, &se) {
		return err
	}
	switch {
	case errors.Is(err, stats.ErrOverflow):
		return fmt.Errorf("%w (sample size is effectively infinite; raise the effect or loosen alpha/power)", err)
	case errors.Is(err, stats.ErrUndefined):
		return fmt.Errorf("%w (result is undefined for %s=%g)", err, se.Param, se.Value)
	default:
		return err
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return dataload.ParseTime(s)
}

func checkFormat(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: must be 'text' or 'json'")
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func formatPercent(rate float64) string {
	if rate == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", rate*100)
}

func formatSignedPercent(rate float64) string {
	return fmt.Sprintf("%+.2f%%", rate*100)
}

func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%s,%03d", formatNumber(n/1000), n%1000)
}

func formatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(math.Round(v * 100))
	return fmt.Sprintf("%s$%s.%02d", sign, formatNumber(cents/100), cents%100)
}

func formatP(p float64) string {
	if p < 0.0001 {
		return "< 0.0001"
	}
	return fmt.Sprintf("%.4f", p)
}

func rule(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("─", 60))
}
