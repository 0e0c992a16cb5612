/*
Package sqlite provides a SQLite-backed implementation of the day ledger.

PURPOSE:
  Implements daybook.Store and daybook.RunLog using SQLite so that day
  summaries survive a restart. The same statements run on PostgreSQL with
  placeholder changes only (see store/postgres).

KEY TABLES:
  day_summaries: one row per date; seq keeps first-write order
  import_runs:   one row per finished year import

MONEY:
  Amounts are stored as TEXT decimal strings, never REAL, so a value read
  back is exactly the value written.

UPSERT:
  Upsert reads the current row, merges the patch in Go and writes the full
  row back with INSERT ... ON CONFLICT(date) DO UPDATE inside one database
  transaction. The conflict path updates in place, so seq (and therefore
  list order) never changes after the first write.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

USAGE:
  store, err := sqlite.New("./data/daybook.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := daybook.NewLedger(store)
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/laprofumo/shopify-klara-sync-backend/daybook"
)

// Store implements daybook.Store and daybook.RunLog using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// ":memory:" gives every connection its own database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS day_summaries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL UNIQUE,
		gross_revenue TEXT NOT NULL DEFAULT '0',
		vat TEXT NOT NULL DEFAULT '0',
		gift_card_revenue TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_day_summaries_status
		ON day_summaries(status);

	CREATE TABLE IF NOT EXISTS import_runs (
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		attempted INTEGER NOT NULL,
		collected INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		failed_days_json TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_import_runs_year
		ON import_runs(year, started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DAY STORE (daybook.Store interface)
// =============================================================================

const upsertDay = `
	INSERT INTO day_summaries (date, gross_revenue, vat, gift_card_revenue, status, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(date) DO UPDATE SET
		gross_revenue = excluded.gross_revenue,
		vat = excluded.vat,
		gift_card_revenue = excluded.gift_card_revenue,
		status = excluded.status,
		updated_at = excluded.updated_at
`

const selectDay = `
	SELECT date, gross_revenue, vat, gift_card_revenue, status, updated_at
	FROM day_summaries
`

// Upsert merges patch into the row for date.
func (s *Store) Upsert(ctx context.Context, date string, patch daybook.DayPatch) (daybook.DaySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return daybook.DaySummary{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	existing, err := scanDay(sqlTx.QueryRowContext(ctx, selectDay+" WHERE date = ?", date))
	if err == sql.ErrNoRows {
		existing = daybook.DaySummary{Date: date}
	} else if err != nil {
		return daybook.DaySummary{}, err
	}

	merged := patch.Apply(existing)
	merged.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	_, err = sqlTx.ExecContext(ctx, upsertDay,
		merged.Date,
		merged.GrossRevenue.String(),
		merged.VAT.String(),
		merged.GiftCardRevenue.String(),
		string(merged.Status),
		merged.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return daybook.DaySummary{}, fmt.Errorf("failed to upsert day %s: %w", date, err)
	}

	if err := sqlTx.Commit(); err != nil {
		return daybook.DaySummary{}, fmt.Errorf("failed to commit day %s: %w", date, err)
	}
	return merged, nil
}

// Get returns the row for date, or nil.
func (s *Store) Get(ctx context.Context, date string) (*daybook.DaySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := scanDay(s.db.QueryRowContext(ctx, selectDay+" WHERE date = ?", date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns every row in first-write order.
func (s *Store) List(ctx context.Context) ([]daybook.DaySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

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
		d         daybook.DaySummary
		gross     string
		vat       string
		gift      string
		status    string
		updatedAt string
	)
	if err := row.Scan(&d.Date, &gross, &vat, &gift, &status, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return d, err
		}
		return d, fmt.Errorf("failed to scan day: %w", err)
	}

	d.GrossRevenue = parseDecimal(gross)
	d.VAT = parseDecimal(vat)
	d.GiftCardRevenue = parseDecimal(gift)
	d.Status = daybook.Status(status)
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return d, nil
}

// =============================================================================
// IMPORT RUNS (daybook.RunLog interface)
// =============================================================================

// SaveRun records a finished import run.
func (s *Store) SaveRun(ctx context.Context, r daybook.ImportReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	failedDays, _ := json.Marshal(r.FailedDays)
	query := `
		INSERT INTO import_runs (id, year, attempted, collected, skipped, failed,
			failed_days_json, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.RunID, r.Year, r.Attempted, r.Collected, r.Skipped, r.Failed,
		string(failedDays),
		r.StartedAt.UTC().Format(runTimeLayout),
		r.FinishedAt.UTC().Format(runTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save import run: %w", err)
	}
	return nil
}

// ListRuns returns the runs of year, most recent first.
func (s *Store) ListRuns(ctx context.Context, year int) ([]daybook.ImportReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, year, attempted, collected, skipped, failed, failed_days_json,
			started_at, finished_at
		FROM import_runs
		WHERE year = ?
		ORDER BY started_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query import runs: %w", err)
	}
	defer rows.Close()

	var runs []daybook.ImportReport
	for rows.Next() {
		var (
			r                     daybook.ImportReport
			failedDays            sql.NullString
			startedAt, finishedAt string
		)
		if err := rows.Scan(&r.RunID, &r.Year, &r.Attempted, &r.Collected, &r.Skipped,
			&r.Failed, &failedDays, &startedAt, &finishedAt); err != nil {
			return nil, err
		}
		if failedDays.Valid && failedDays.String != "" {
			json.Unmarshal([]byte(failedDays.String), &r.FailedDays)
		}
		r.StartedAt, _ = time.Parse(runTimeLayout, startedAt)
		r.FinishedAt, _ = time.Parse(runTimeLayout, finishedAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

// runTimeLayout has a fixed width so started_at sorts as text.
const runTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
