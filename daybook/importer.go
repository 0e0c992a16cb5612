/*
importer.go - Collect every day of a year

DESIGN:
  - Walks month 1..12 x day 1..31 and builds every candidate key, including
    keys like "2025-02-30". The Collector rejects those before any upstream
    call; they are counted as Skipped and nothing is stored.
  - Strictly sequential: one day is fetched, aggregated and stored before
    the next begins. Upstream concurrency is 1.
  - A failing day is logged and counted; the run continues. Every candidate
    is attempted exactly once per run.
  - Not transactional. An interrupted run leaves the days it finished;
    running again is safe because each write is an idempotent upsert.
  - One run per year at a time, guarded by a runlock.Locker.

OBSERVING A RUN:
  ImportYear returns an ImportReport. Ledger.YearStats reflects progress
  while a run is in flight.
*/
package daybook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/laprofumo/shopify-klara-sync-backend/runlock"
)

// DefaultImportLockTTL bounds how long a crashed run can block the next one.
const DefaultImportLockTTL = time.Hour

// DayCollector is the part of Collector the importer needs.
type DayCollector interface {
	CollectDay(ctx context.Context, date string) (DaySummary, error)
}

// ImportReport summarizes one run.
type ImportReport struct {
	RunID      string
	Year       int
	Attempted  int
	Collected  int
	Skipped    int // candidate keys that are not calendar dates
	Failed     int
	FailedDays []string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Importer runs year imports.
type Importer struct {
	collector DayCollector
	locker    runlock.Locker
	lockTTL   time.Duration
	runLog    RunLog
	logger    zerolog.Logger
	recorder  Recorder
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithImporterLogger sets the logger.
func WithImporterLogger(logger zerolog.Logger) ImporterOption {
	return func(i *Importer) { i.logger = logger }
}

// WithImporterRecorder sets the metrics recorder.
func WithImporterRecorder(r Recorder) ImporterOption {
	return func(i *Importer) { i.recorder = r }
}

// WithRunLog records every finished or interrupted run in log.
func WithRunLog(log RunLog) ImporterOption {
	return func(i *Importer) { i.runLog = log }
}

// WithLocker replaces the process-local run lock.
func WithLocker(l runlock.Locker, ttl time.Duration) ImporterOption {
	return func(i *Importer) {
		i.locker = l
		i.lockTTL = ttl
	}
}

// NewImporter creates an importer driving collector.
func NewImporter(collector DayCollector, opts ...ImporterOption) *Importer {
	i := &Importer{
		collector: collector,
		locker:    runlock.NewLocal(),
		lockTTL:   DefaultImportLockTTL,
		logger:    zerolog.Nop(),
		recorder:  NopRecorder{},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// CandidateDates returns the 372 keys month 1..12 x day 1..31 of year, in order.
func CandidateDates(year int) []string {
	dates := make([]string, 0, 12*31)
	for month := 1; month <= 12; month++ {
		for day := 1; day <= 31; day++ {
			dates = append(dates, fmt.Sprintf("%04d-%02d-%02d", year, month, day))
		}
	}
	return dates
}

// ImportYear collects every candidate date of year.
// Only lock contention, lock errors and context cancellation return an error;
// per-day failures are in the report.
func (i *Importer) ImportYear(ctx context.Context, year int) (ImportReport, error) {
	report := ImportReport{RunID: uuid.NewString(), Year: year, StartedAt: time.Now().UTC()}
	logger := i.logger.With().Str("run_id", report.RunID).Int("year", year).Logger()

	lock, err := i.locker.Obtain(ctx, fmt.Sprintf("import:%d", year), i.lockTTL)
	if errors.Is(err, runlock.ErrNotObtained) {
		i.recorder.ImportRun(ResultSkipped)
		return report, ErrImportInProgress
	}
	if err != nil {
		i.recorder.ImportRun(ResultFailed)
		return report, err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("release import lock")
		}
	}()

	logger.Info().Msg("import started")

	for _, date := range CandidateDates(year) {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now().UTC()
			logger.Warn().Err(err).Int("attempted", report.Attempted).Msg("import interrupted")
			i.recorder.ImportRun(ResultFailed)
			i.saveRun(context.WithoutCancel(ctx), logger, report)
			return report, err
		}

		report.Attempted++
		_, err := i.collector.CollectDay(ctx, date)
		switch {
		case err == nil:
			report.Collected++
		case errors.Is(err, ErrInvalidCalendarDate):
			report.Skipped++
			logger.Debug().Str("date", date).Msg("not a calendar date")
		default:
			report.Failed++
			report.FailedDays = append(report.FailedDays, date)
			logger.Error().Err(err).Str("date", date).Msg("collect day failed")
		}
	}

	report.FinishedAt = time.Now().UTC()
	logger.Info().
		Int("attempted", report.Attempted).
		Int("collected", report.Collected).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Dur("took", report.FinishedAt.Sub(report.StartedAt)).
		Msg("import finished")
	i.recorder.ImportRun(ResultOK)
	i.saveRun(ctx, logger, report)
	return report, nil
}

func (i *Importer) saveRun(ctx context.Context, logger zerolog.Logger, report ImportReport) {
	if i.runLog == nil {
		return
	}
	if err := i.runLog.SaveRun(ctx, report); err != nil {
		logger.Warn().Err(err).Msg("save import run")
	}
}
