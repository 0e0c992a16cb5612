/*
handlers.go - HTTP API handlers for the day-summary pipeline

PURPOSE:
  Exposes the day ledger, the collector, the year importer and the
  bookkeeping dispatcher to the operator UI. Handles HTTP request/response
  and JSON serialization, and delegates everything else to package daybook.

ENDPOINTS:
  Days:
    GET    /api/today                   Today's summary (collected on demand)
    GET    /api/open-days               Stored days not yet sent
    GET    /api/day/{date}              Stored summary of one day
    POST   /api/day/{date}/collect      Re-collect one day from the storefront
    POST   /api/day/{date}/send         Post one day to bookkeeping

  Year import:
    POST   /api/import/{year}/run         Collect every day of the year
    GET    /api/import/{year}/runs        Past runs of the year
    POST   /api/import/{year}/send        Placeholder, always ok
    GET    /api/import/{year}/export.xlsx Spreadsheet of the stored days

  Health:
    GET    /api/health

ERROR HANDLING:
  Errors are returned as JSON {error, details} with:
  - 400: malformed date or year
  - 404: day not stored
  - 409: an import of the same year is already running
  - 500: everything else (storefront, bookkeeping, storage)

SECURITY NOTE:
  No authentication. The server is meant to run next to the operator UI.

SEE ALSO:
  - dto.go: Response structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/laprofumo/shopify-klara-sync-backend/daybook"
	"github.com/laprofumo/shopify-klara-sync-backend/export"
)

// ImportSendInfo is returned by the year send placeholder.
const ImportSendInfo = "Year sending is not implemented yet; send days one by one via /api/day/{date}/send."

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger     *daybook.Ledger
	Collector  *daybook.Collector
	Importer   *daybook.Importer
	Dispatcher *daybook.Dispatcher

	// RunLog is optional; without it /runs returns an empty list.
	RunLog daybook.RunLog

	logger zerolog.Logger
	now    func() time.Time
}

// NewHandler creates a handler over the pipeline components.
func NewHandler(
	ledger *daybook.Ledger,
	collector *daybook.Collector,
	importer *daybook.Importer,
	dispatcher *daybook.Dispatcher,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		Ledger:     ledger,
		Collector:  collector,
		Importer:   importer,
		Dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// =============================================================================
// DAY HANDLERS
// =============================================================================

// Today returns the summary of the current UTC date.
// GET /api/today
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Collector.Today(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to load today", err)
		return
	}
	writeJSON(w, http.StatusOK, toDaySummaryDTO(summary))
}

// ListOpenDays returns every stored day not yet sent.
// GET /api/open-days
func (h *Handler) ListOpenDays(w http.ResponseWriter, r *http.Request) {
	open, err := h.Ledger.ListOpenDays(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list open days", err)
		return
	}

	dtos := make([]OpenDayDTO, len(open))
	for i, d := range open {
		dtos[i] = OpenDayDTO{Date: d.Date, Status: string(d.Status)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetDay returns the stored summary of one date.
// GET /api/day/{date}
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := daybook.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	summary, err := h.Ledger.Get(r.Context(), date)
	if err != nil {
		h.writeDomainError(w, r, "Failed to load day", err)
		return
	}
	if summary == nil {
		writeError(w, http.StatusNotFound, "Day not found", &daybook.NotFoundError{Date: date})
		return
	}
	writeJSON(w, http.StatusOK, toDaySummaryDTO(*summary))
}

// CollectDay fetches one date from the storefront again and stores it.
// POST /api/day/{date}/collect
func (h *Handler) CollectDay(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	summary, err := h.Collector.CollectDay(r.Context(), date)
	if err != nil {
		h.writeDomainError(w, r, fmt.Sprintf("Failed to collect %s", date), err)
		return
	}
	writeJSON(w, http.StatusOK, toDaySummaryDTO(summary))
}

// SendDay posts one stored day to bookkeeping.
// POST /api/day/{date}/send
func (h *Handler) SendDay(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	result, err := h.Dispatcher.SendDay(r.Context(), date)
	if err != nil {
		h.writeDomainError(w, r, fmt.Sprintf("Failed to send %s", date), err)
		return
	}
	writeJSON(w, http.StatusOK, SendResultDTO{OK: result.OK})
}

// =============================================================================
// IMPORT HANDLERS
// =============================================================================

// RunImport collects every day of a year and returns the year statistics.
// The request blocks until the run is finished.
// POST /api/import/{year}/run
func (h *Handler) RunImport(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	report, err := h.Importer.ImportYear(ctx, year)
	if err != nil {
		h.writeDomainError(w, r, fmt.Sprintf("Failed to import %d", year), err)
		return
	}

	stats, err := h.Ledger.YearStats(ctx, year)
	if err != nil {
		h.writeDomainError(w, r, "Failed to compute year stats", err)
		return
	}

	writeJSON(w, http.StatusOK, ImportRunDTO{
		DaysTotal:          stats.DaysTotal,
		DaysWithRevenue:    stats.DaysWithRevenue,
		DaysWithoutRevenue: stats.DaysWithoutRevenue,
		LastRun:            h.now().UTC().Format(time.RFC3339),
		RunID:              report.RunID,
		Attempted:          report.Attempted,
		Collected:          report.Collected,
		Skipped:            report.Skipped,
		Failed:             report.Failed,
		FailedDays:         report.FailedDays,
	})
}

// ListImportRuns returns past runs of a year, most recent first.
// GET /api/import/{year}/runs
func (h *Handler) ListImportRuns(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	dtos := make([]ImportRunRecordDTO, 0)
	if h.RunLog != nil {
		runs, err := h.RunLog.ListRuns(r.Context(), year)
		if err != nil {
			h.writeDomainError(w, r, "Failed to list import runs", err)
			return
		}
		for _, run := range runs {
			dtos = append(dtos, toImportRunRecordDTO(run))
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SendImport is a placeholder for sending a whole year.
// POST /api/import/{year}/send
func (h *Handler) SendImport(w http.ResponseWriter, r *http.Request) {
	if _, ok := yearParam(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, SendResultDTO{OK: true, Info: ImportSendInfo})
}

// ExportYear returns the stored days of a year as an xlsx workbook.
// GET /api/import/{year}/export.xlsx
func (h *Handler) ExportYear(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	days, err := h.Ledger.ListYear(r.Context(), year)
	if err != nil {
		h.writeDomainError(w, r, "Failed to list year", err)
		return
	}

	// Render fully before writing headers so a failure can still be a JSON error.
	var buf bytes.Buffer
	if err := export.WriteYear(&buf, year, days); err != nil {
		h.writeDomainError(w, r, "Failed to render workbook", err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tagesumsaetze-%d.xlsx"`, year))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports that the server is up.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "year")
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 || year > 9999 {
		writeError(w, http.StatusBadRequest, "Invalid year", fmt.Errorf("year %q", raw))
		return 0, false
	}
	return year, true
}

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	switch {
	case daybook.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, daybook.ErrImportInProgress):
		return http.StatusConflict
	case daybook.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg(message)
	}
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
