/*
Package postgres provides a PostgreSQL-backed implementation of the day ledger.

PURPOSE:
  Same contract as store/sqlite for deployments that already run
  PostgreSQL. Uses github.com/lib/pq through database/sql.

UPSERT:
  A single INSERT ... ON CONFLICT statement merges the patch: every column is
  COALESCE(new, current), so a nil patch field keeps the stored value. The
  statement is atomic in the database; no process lock is needed.

ORDER:
  seq BIGSERIAL is assigned on first insert and untouched by the conflict
  path, so List keeps first-write order.
*/
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/laprofumo/shopify-klara-sync-backend/daybook"
)

// Store implements daybook.Store and daybook.RunLog using PostgreSQL.
type Store struct {
	db *sql.DB
}

// New connects to dsn (a lib/pq connection string or URL) and migrates.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS day_summaries (
		seq BIGSERIAL PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		gross_revenue NUMERIC NOT NULL DEFAULT 0,
		vat NUMERIC NOT NULL DEFAULT 0,
		gift_card_revenue NUMERIC NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS import_runs (
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		attempted INTEGER NOT NULL,
		collected INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		failed_days_json TEXT,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_import_runs_year
		ON import_runs(year, started_at DESC);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// =============================================================================
// DAY STORE (daybook.Store interface)
// =============================================================================

const upsertDay = `
	INSERT INTO day_summaries AS d (date, gross_revenue, vat, gift_card_revenue, status, updated_at)
	VALUES ($1, COALESCE($2::numeric, 0), COALESCE($3::numeric, 0), COALESCE($4::numeric, 0),
		COALESCE($5::text, ''), now())
	ON CONFLICT (date) DO UPDATE SET
		gross_revenue = COALESCE($2::numeric, d.gross_revenue),
		vat = COALESCE($3::numeric, d.vat),
		gift_card_revenue = COALESCE($4::numeric, d.gift_card_revenue),
		status = COALESCE($5::text, d.status),
		updated_at = now()
	RETURNING date, gross_revenue::text, vat::text, gift_card_revenue::text, status, updated_at
`

const selectDay = `
	SELECT date, gross_revenue::text, vat::text, gift_card_revenue::text, status, updated_at
	FROM day_summaries
`

// Upsert merges patch into the row for date.
func (s *Store) Upsert(ctx context.Context, date string, patch daybook.DayPatch) (daybook.DaySummary, error) {
	var status sql.NullString
	if patch.Status != nil {
		status = sql.NullString{String: string(*patch.Status), Valid: true}
	}

	d, err := scanDay(s.db.QueryRowContext(ctx, upsertDay,
		date,
		nullDecimal(patch.GrossRevenue),
		nullDecimal(patch.VAT),
		nullDecimal(patch.GiftCardRevenue),
		status,
	))
	if err != nil {
		return daybook.DaySummary{}, fmt.Errorf("failed to upsert day %s: %w", date, err)
	}
	return d, nil
}

// Get returns the row for date, or nil.
func (s *Store) Get(ctx context.Context, date string) (*daybook.DaySummary, error) {
	d, err := scanDay(s.db.QueryRowContext(ctx, selectDay+" WHERE date = $1", date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get day %s: %w", date, err)
	}
	return &d, nil
}

// List returns every row in first-write order.
func (s *Store) List(ctx context.Context) ([]daybook.DaySummary, error) {
	rows, err := s.db.QueryContext(ctx, selectDay+" ORDER BY seq ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query days: %w", err)
	}
	defer rows.Close()

	days := make([]daybook.DaySummary, 0)
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDay(row scanner) (daybook.DaySummary, error) {
	var (
		d                daybook.DaySummary
		gross, vat, gift string
		status           string
	)
	if err := row.Scan(&d.Date, &gross, &vat, &gift, &status, &d.UpdatedAt); err != nil {
		return d, err
	}
	d.GrossRevenue = parseDecimal(gross)
	d.VAT = parseDecimal(vat)
	d.GiftCardRevenue = parseDecimal(gift)
	d.Status = daybook.Status(status)
	d.UpdatedAt = d.UpdatedAt.UTC()
	return d, nil
}

// =============================================================================
// IMPORT RUNS (daybook.RunLog interface)
// =============================================================================

// SaveRun records a finished import run.
func (s *Store) SaveRun(ctx context.Context, r daybook.ImportReport) error {
	failedDays, _ := json.Marshal(r.FailedDays)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_runs (id, year, attempted, collected, skipped, failed,
			failed_days_json, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.RunID, r.Year, r.Attempted, r.Collected, r.Skipped, r.Failed,
		string(failedDays), r.StartedAt, r.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to save import run: %w", err)
	}
	return nil
}

// ListRuns returns the runs of year, most recent first.
func (s *Store) ListRuns(ctx context.Context, year int) ([]daybook.ImportReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, year, attempted, collected, skipped, failed, failed_days_json,
			started_at, finished_at
		FROM import_runs
		WHERE year = $1
		ORDER BY started_at DESC
	`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query import runs: %w", err)
	}
	defer rows.Close()

	var runs []daybook.ImportReport
	for rows.Next() {
		var (
			r          daybook.ImportReport
			failedDays sql.NullString
			started    time.Time
			finished   time.Time
		)
		if err := rows.Scan(&r.RunID, &r.Year, &r.Attempted, &r.Collected, &r.Skipped,
			&r.Failed, &failedDays, &started, &finished); err != nil {
			return nil, err
		}
		if failedDays.Valid && failedDays.String != "" {
			json.Unmarshal([]byte(failedDays.String), &r.FailedDays)
		}
		r.StartedAt, r.FinishedAt = started.UTC(), finished.UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
