/*
store.go - Persistence interface for day summaries

PURPOSE:
  Defines the boundary between the Ledger and its backing storage. The
  same contract is served by an in-memory map (tests, single process),
  SQLite (file on disk) and PostgreSQL.

CONTRACT:
  - Upsert merges a DayPatch into the record for date, creating it if
    absent, and returns the stored result. Fields not in the patch are
    preserved.
  - Get returns nil (and no error) when the date has no record.
  - List returns every record in insertion order: the order in which each
    date was first written. Later upserts do not move a record.
  - Implementations serialize writes so concurrent merges on the same date
    cannot lose fields.

IMPLEMENTATIONS:
  - daybook/store/memory.go: in-memory
  - store/sqlite/sqlite.go:  SQLite
  - store/postgres/postgres.go: PostgreSQL
*/
package daybook

import "context"

// Store persists day summaries keyed by date.
type Store interface {
	Upsert(ctx context.Context, date string, patch DayPatch) (DaySummary, error)
	Get(ctx context.Context, date string) (*DaySummary, error)
	List(ctx context.Context) ([]DaySummary, error)
}

// RunLog records finished import runs.
type RunLog interface {
	SaveRun(ctx context.Context, report ImportReport) error
	ListRuns(ctx context.Context, year int) ([]ImportReport, error)
}
