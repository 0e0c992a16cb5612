/*
Package daybook turns a storefront's paid orders into per-day bookkeeping
summaries and tracks each day until it has been posted to the books.

PURPOSE:
  One DaySummary per calendar date holds the day's merchandise revenue
  (gross, VAT included), the VAT share of it and the gift-card sales. The
  summary is computed from live orders, stored in the Ledger, and later
  posted to the bookkeeping system as a four-account entry.

KEY CONCEPTS IN THIS FILE (types.go):
  - DaySummary: the stored record, keyed by "YYYY-MM-DD"
  - DayPatch:   a partial write merged into a DaySummary
  - Status:     prepared -> sent (error is reserved for a failed posting)
  - OpenDay / YearStats: derived ledger views

PIPELINE:
  Importer.ImportYear
    -> Collector.CollectDay      (fetch one UTC day from the storefront)
       -> Aggregate              (classify + sum line items)
          -> ComputeVAT          (8.1% included in gross)
       -> Ledger.Upsert
  Dispatcher.SendDay -> Bookkeeper.Book -> Ledger.SetStatus(sent)

SEE ALSO:
  - ledger.go:     read/write contract over a Store
  - aggregate.go:  order classification rules
  - store/sqlite:  durable Store implementation
*/
package daybook

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the key format of every ledger record.
const DateLayout = "2006-01-02"

// =============================================================================
// STATUS
// =============================================================================

// Status is the lifecycle state of a stored day.
type Status string

const (
	StatusPrepared Status = "prepared"
	StatusSent     Status = "sent"
	StatusError    Status = "error"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPrepared, StatusSent, StatusError:
		return true
	}
	return false
}

// =============================================================================
// DAY SUMMARY
// =============================================================================

// DaySummary is the financial summary of one calendar day.
// A field that was never written reads as zero.
type DaySummary struct {
	Date            string
	GrossRevenue    decimal.Decimal // merchandise only, VAT included
	VAT             decimal.Decimal
	GiftCardRevenue decimal.Decimal
	Status          Status // empty when only revenue fields were ever written
	UpdatedAt       time.Time
}

// HasRevenue reports whether the day sold any merchandise.
func (d DaySummary) HasRevenue() bool {
	return d.GrossRevenue.IsPositive()
}

// Patch returns a DayPatch carrying every field of d.
func (d DaySummary) Patch() DayPatch {
	gross, vat, gift, status := d.GrossRevenue, d.VAT, d.GiftCardRevenue, d.Status
	return DayPatch{
		GrossRevenue:    &gross,
		VAT:             &vat,
		GiftCardRevenue: &gift,
		Status:          &status,
	}
}

// DayPatch is a partial DaySummary. Nil fields are left untouched by Upsert.
type DayPatch struct {
	GrossRevenue    *decimal.Decimal
	VAT             *decimal.Decimal
	GiftCardRevenue *decimal.Decimal
	Status          *Status
}

// Apply merges p into d field by field and returns the result.
func (p DayPatch) Apply(d DaySummary) DaySummary {
	if p.GrossRevenue != nil {
		d.GrossRevenue = *p.GrossRevenue
	}
	if p.VAT != nil {
		d.VAT = *p.VAT
	}
	if p.GiftCardRevenue != nil {
		d.GiftCardRevenue = *p.GiftCardRevenue
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	return d
}

// StatusPatch is a patch that only sets the status.
func StatusPatch(s Status) DayPatch {
	return DayPatch{Status: &s}
}

// =============================================================================
// DERIVED VIEWS
// =============================================================================

// OpenDay is a stored day that has not been posted yet.
type OpenDay struct {
	Date   string
	Status Status
}

// YearStats counts the stored days of one year.
// DaysTotal == DaysWithRevenue + DaysWithoutRevenue always holds.
type YearStats struct {
	Year               int
	DaysTotal          int
	DaysWithRevenue    int
	DaysWithoutRevenue int
}

// ParseDate parses a ledger key and rejects dates that do not exist in the
// calendar (2025-02-30).
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, &InvalidDateError{Date: date, Err: err}
	}
	return t, nil
}

// FormatDate formats t as a ledger key in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
