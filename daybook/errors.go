/*
errors.go - Error types for the day-summary pipeline

ERROR CATEGORIES:
  1. Configuration - a credential is missing; surfaced when a call is made
  2. Upstream      - the storefront fetch failed
  3. Ledger        - no summary stored for a date
  4. Input         - a date string that is not a calendar date
  5. Import        - a run for the same year is already in flight

  Malformed line items are not errors. The aggregator skips them.

USAGE:
  if errors.Is(err, daybook.ErrDayNotFound) { ... }

  var up *daybook.UpstreamFetchError
  if errors.As(err, &up) { log cause up.Err }
*/
package daybook

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConfigurationMissing is returned when a storefront or bookkeeping
	// credential is not configured.
	ErrConfigurationMissing = errors.New("configuration missing")

	// ErrUpstreamFetch is returned when the storefront call failed.
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrDayNotFound is returned when no summary is stored for a date.
	ErrDayNotFound = errors.New("day summary not found")

	// ErrInvalidCalendarDate is returned for keys like "2025-02-30".
	ErrInvalidCalendarDate = errors.New("invalid calendar date")

	// ErrImportInProgress is returned when a run for the same year holds the lock.
	ErrImportInProgress = errors.New("import already in progress")

	// ErrBookingFailed is returned when the bookkeeping system rejected a posting.
	ErrBookingFailed = errors.New("booking failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UpstreamFetchError wraps the cause of a failed storefront fetch.
type UpstreamFetchError struct {
	Date string
	Err  error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("fetch orders for %s: %v", e.Date, e.Err)
}

// Unwrap exposes both the category and the cause.
func (e *UpstreamFetchError) Unwrap() []error {
	return []error{ErrUpstreamFetch, e.Err}
}

// NotFoundError reports a missing day summary.
type NotFoundError struct {
	Date string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no day summary for %s", e.Date)
}

func (e *NotFoundError) Unwrap() error {
	return ErrDayNotFound
}

// InvalidDateError reports a key that does not parse as a calendar date.
type InvalidDateError struct {
	Date string
	Err  error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %v", e.Date, e.Err)
}

func (e *InvalidDateError) Unwrap() error {
	return ErrInvalidCalendarDate
}

// BookingError wraps a bookkeeping rejection with the HTTP status, if any.
type BookingError struct {
	Date       string
	StatusCode int
	Body       string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("booking for %s rejected (%d): %s", e.Date, e.StatusCode, e.Body)
}

func (e *BookingError) Unwrap() error {
	return ErrBookingFailed
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing day.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDayNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidCalendarDate)
}
