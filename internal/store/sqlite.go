package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

// SQLiteStore reads a headline-goat style event log (tests + events tables).
// The database is opened read-only.
type SQLiteStore struct {
	db *sql.DB
}

var _ Reader = (*SQLiteStore)(nil)

func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const testColumns = `id, name, variants, conversion_goal, state, winner_variant, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTest(row scanner) (*Test, error) {
	var test Test
	var variantsJSON string
	var goal sql.NullString
	var winnerVariant sql.NullInt64
	var createdAt, updatedAt int64

	if err := row.Scan(&test.ID, &test.Name, &variantsJSON, &goal, &test.State, &winnerVariant, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(variantsJSON), &test.Variants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal variants: %w", err)
	}

	test.ConversionGoal = goal.String
	if winnerVariant.Valid {
		w := int(winnerVariant.Int64)
		test.WinnerVariant = &w
	}

	test.CreatedAt = time.Unix(createdAt, 0)
	test.UpdatedAt = time.Unix(updatedAt, 0)

	return &test, nil
}

func (s *SQLiteStore) GetTest(ctx context.Context, name string) (*Test, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+testColumns+` FROM tests WHERE name = ?`, name,
	)

	test, err := scanTest(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	return test, nil
}

func (s *SQLiteStore) ListTests(ctx context.Context) ([]*Test, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+testColumns+` FROM tests ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	defer rows.Close()

	var tests []*Test
	for rows.Next() {
		test, err := scanTest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test: %w", err)
		}
		tests = append(tests, test)
	}

	return tests, rows.Err()
}

// GetVariantStats counts, per variant, the distinct visitors who viewed it
// within r and how many of them converted on it within r. The counts agree
// with GetOutcomes for the same range.
func (s *SQLiteStore) GetVariantStats(ctx context.Context, testName string, r Range) ([]VariantStats, error) {
	viewWhere, viewArgs := rangeClause("v.created_at", r)
	convWhere, convArgs := rangeClause("c.created_at", r)

	args := append(append([]any{}, convArgs...), testName)
	args = append(args, viewArgs...)

	rows, err := s.db.QueryContext(ctx, `
		SELECT variant, COUNT(*) as views, SUM(converted) as conversions
		FROM (
			SELECT
				v.variant,
				v.visitor_id,
				EXISTS (
					SELECT 1 FROM events c
					WHERE c.test_name = v.test_name
					  AND c.variant = v.variant
					  AND c.visitor_id = v.visitor_id
					  AND c.event_type = 'convert'`+convWhere+`
				) as converted
			FROM events v
			WHERE v.test_name = ? AND v.event_type = 'view'`+viewWhere+`
			GROUP BY v.variant, v.visitor_id
		)
		GROUP BY variant
		ORDER BY variant
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get variant stats: %w", err)
	}
	defer rows.Close()

	var stats []VariantStats
	for rows.Next() {
		var vs VariantStats
		if err := rows.Scan(&vs.Variant, &vs.Views, &vs.Conversions); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats = append(stats, vs)
	}

	return stats, rows.Err()
}

// GetOutcomes returns one binary outcome per visitor who viewed the variant
// within r: 1 if that visitor also converted on it within r, else 0.
func (s *SQLiteStore) GetOutcomes(ctx context.Context, testName string, variant int, r Range) ([]float64, error) {
	viewWhere, viewArgs := rangeClause("v.created_at", r)
	convWhere, convArgs := rangeClause("c.created_at", r)

	args := append(append([]any{}, convArgs...), testName, variant)
	args = append(args, viewArgs...)

	rows, err := s.db.QueryContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM events c
			WHERE c.test_name = v.test_name
			  AND c.variant = v.variant
			  AND c.visitor_id = v.visitor_id
			  AND c.event_type = 'convert'`+convWhere+`
		)
		FROM events v
		WHERE v.test_name = ? AND v.variant = ? AND v.event_type = 'view'`+viewWhere+`
		GROUP BY v.visitor_id
		ORDER BY MIN(v.created_at), v.visitor_id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []float64
	for rows.Next() {
		var converted int
		if err := rows.Scan(&converted); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, float64(converted))
	}

	return outcomes, rows.Err()
}

// rangeClause renders r as extra AND conditions on a unix-seconds column.
// The upper bound is inclusive of the whole To day.
func rangeClause(column string, r Range) (string, []any) {
	var conds []string
	var args []any

	if !r.From.IsZero() {
		conds = append(conds, column+" >= ?")
		args = append(args, startOfDay(r.From).Unix())
	}
	if !r.To.IsZero() {
		conds = append(conds, column+" < ?")
		args = append(args, startOfDay(r.To).AddDate(0, 0, 1).Unix())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(conds, " AND "), args
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
