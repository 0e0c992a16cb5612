/*
ledger.go - The Day Ledger

PURPOSE:
  The Ledger is the only owner of day summaries. Every other component
  reads and writes through it, never through a Store directly, and never
  keeps a copy longer than one operation.

OPERATIONS:
  Upsert        create-or-merge by date (last write wins per field)
  Get           point lookup, nil when absent
  SetStatus     upsert of the status field only
  ListOpenDays  stored days with a status other than "sent"
  YearStats     days of a year with / without merchandise revenue

ORDERING:
  ListOpenDays and ListYear follow the Store's insertion order. Callers
  must not assume date order.
*/
package daybook

import (
	"context"
	"fmt"
	"strings"
)

// Ledger is the read/write contract for day summaries.
type Ledger struct {
	store    Store
	recorder Recorder
}

// NewLedger creates a ledger over store.
func NewLedger(store Store, opts ...LedgerOption) *Ledger {
	l := &Ledger{store: store, recorder: NopRecorder{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithLedgerRecorder reports the open-day count to r.
func WithLedgerRecorder(r Recorder) LedgerOption {
	return func(l *Ledger) { l.recorder = r }
}

// Upsert merges patch into the record for date.
func (l *Ledger) Upsert(ctx context.Context, date string, patch DayPatch) (DaySummary, error) {
	if patch.Status != nil && *patch.Status != "" && !patch.Status.Valid() {
		return DaySummary{}, fmt.Errorf("unknown status %q", *patch.Status)
	}
	return l.store.Upsert(ctx, date, patch)
}

// Get returns the summary for date, or nil if none is stored.
func (l *Ledger) Get(ctx context.Context, date string) (*DaySummary, error) {
	return l.store.Get(ctx, date)
}

// SetStatus writes only the status of date, creating the record if needed.
func (l *Ledger) SetStatus(ctx context.Context, date string, status Status) error {
	_, err := l.Upsert(ctx, date, StatusPatch(status))
	return err
}

// ListOpenDays returns every stored day whose status is set and not "sent".
func (l *Ledger) ListOpenDays(ctx context.Context) ([]OpenDay, error) {
	days, err := l.store.List(ctx)
	if err != nil {
		return nil, err
	}

	open := make([]OpenDay, 0)
	for _, d := range days {
		if d.Status != "" && d.Status != StatusSent {
			open = append(open, OpenDay{Date: d.Date, Status: d.Status})
		}
	}
	l.recorder.OpenDays(len(open))
	return open, nil
}

// ListYear returns every stored day whose key starts with "<year>-".
func (l *Ledger) ListYear(ctx context.Context, year int) ([]DaySummary, error) {
	days, err := l.store.List(ctx)
	if err != nil {
		return nil, err
	}

	prefix := yearPrefix(year)
	var result []DaySummary
	for _, d := range days {
		if strings.HasPrefix(d.Date, prefix) {
			result = append(result, d)
		}
	}
	return result, nil
}

// YearStats counts the stored days of year, split by merchandise revenue.
func (l *Ledger) YearStats(ctx context.Context, year int) (YearStats, error) {
	days, err := l.ListYear(ctx, year)
	if err != nil {
		return YearStats{}, err
	}

	stats := YearStats{Year: year}
	for _, d := range days {
		stats.DaysTotal++
		if d.HasRevenue() {
			stats.DaysWithRevenue++
		} else {
			stats.DaysWithoutRevenue++
		}
	}
	return stats, nil
}

func yearPrefix(year int) string {
	return fmt.Sprintf("%04d-", year)
}
