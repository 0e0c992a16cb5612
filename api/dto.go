/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  Defines the JSON structures returned to the operator UI. Field names
  follow the UI contract (umsatz_brutto, mwst, gutscheine) rather than the
  Go names. Money is rendered as JSON numbers with two decimals.

TYPES:
  DaySummaryDTO   one day
  OpenDayDTO      entry of /api/open-days
  ImportRunDTO    result of /api/import/{year}/run
  SendResultDTO   result of /api/day/{date}/send
  ErrorResponse   every non-2xx response
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laprofumo/shopify-klara-sync-backend/daybook"
)

// Money renders a decimal as a JSON number with two decimals.
type Money decimal.Decimal

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}

// Decimal returns m as a decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.Decimal(m)
}

// DaySummaryDTO represents a day in API responses.
type DaySummaryDTO struct {
	Date         string `json:"date"`
	UmsatzBrutto Money  `json:"umsatz_brutto"`
	MWST         Money  `json:"mwst"`
	Gutscheine   Money  `json:"gutscheine"`
	Status       string `json:"status"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

func toDaySummaryDTO(d daybook.DaySummary) DaySummaryDTO {
	dto := DaySummaryDTO{
		Date:         d.Date,
		UmsatzBrutto: Money(d.GrossRevenue),
		MWST:         Money(d.VAT),
		Gutscheine:   Money(d.GiftCardRevenue),
		Status:       string(d.Status),
	}
	if !d.UpdatedAt.IsZero() {
		dto.UpdatedAt = d.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

// OpenDayDTO is one entry of the open-days list.
type OpenDayDTO struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// ImportRunDTO is returned after a year import.
type ImportRunDTO struct {
	DaysTotal          int      `json:"daysTotal"`
	DaysWithRevenue    int      `json:"daysWithRevenue"`
	DaysWithoutRevenue int      `json:"daysWithoutRevenue"`
	LastRun            string   `json:"last_run"`
	RunID              string   `json:"run_id,omitempty"`
	Attempted          int      `json:"attempted"`
	Collected          int      `json:"collected"`
	Skipped            int      `json:"skipped"`
	Failed             int      `json:"failed"`
	FailedDays         []string `json:"failed_days,omitempty"`
}

// ImportRunRecordDTO is a past run from the run log.
type ImportRunRecordDTO struct {
	RunID      string   `json:"run_id"`
	Year       int      `json:"year"`
	Attempted  int      `json:"attempted"`
	Collected  int      `json:"collected"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	FailedDays []string `json:"failed_days,omitempty"`
	StartedAt  string   `json:"started_at"`
	FinishedAt string   `json:"finished_at"`
}

func toImportRunRecordDTO(r daybook.ImportReport) ImportRunRecordDTO {
	return ImportRunRecordDTO{
		RunID:      r.RunID,
		Year:       r.Year,
		Attempted:  r.Attempted,
		Collected:  r.Collected,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		FailedDays: r.FailedDays,
		StartedAt:  r.StartedAt.Format(time.RFC3339),
		FinishedAt: r.FinishedAt.Format(time.RFC3339),
	}
}

// SendResultDTO is returned by the send endpoints.
type SendResultDTO struct {
	OK   bool   `json:"ok"`
	Info string `json:"info,omitempty"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
