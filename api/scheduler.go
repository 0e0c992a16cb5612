/*
scheduler.go - Periodic re-collection of recent days

PURPOSE:
  Orders keep arriving, and get cancelled, after a day was first collected.
  The scheduler re-collects today and yesterday on a fixed interval so the
  dashboard stays current without the operator pressing a button.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Collects yesterday first, then today (UTC)
  - A failing day is logged; the next tick tries again
  - Days already sent are skipped: collecting writes status "prepared",
    which would reopen them

CONFIGURATION:
  - Interval: COLLECT_INTERVAL; zero disables the scheduler

USAGE:
  scheduler := NewCollectScheduler(collector, ledger, interval, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/laprofumo/shopify-klara-sync-backend/daybook"
)

// DayCollector is the part of daybook.Collector the scheduler needs.
type DayCollector interface {
	CollectDay(ctx context.Context, date string) (daybook.DaySummary, error)
}

// DayReader is the part of daybook.Ledger the scheduler needs.
type DayReader interface {
	Get(ctx context.Context, date string) (*daybook.DaySummary, error)
}

// CollectScheduler re-collects recent days on an interval.
type CollectScheduler struct {
	Collector DayCollector
	Ledger    DayReader
	Interval  time.Duration

	logger zerolog.Logger
	now    func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewCollectScheduler creates a scheduler. A zero interval disables it.
func NewCollectScheduler(collector DayCollector, ledger DayReader, interval time.Duration, logger zerolog.Logger) *CollectScheduler {
	return &CollectScheduler{
		Collector: collector,
		Ledger:    ledger,
		Interval:  interval,
		logger:    logger.With().Str("component", "scheduler").Logger(),
		now:       time.Now,
		stop:      make(chan struct{}),
	}
}

// Enabled reports whether Start will run anything.
func (cs *CollectScheduler) Enabled() bool {
	return cs.Interval > 0
}

// Start begins the scheduler.
func (cs *CollectScheduler) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.Enabled() {
		cs.logger.Info().Msg("disabled, not starting")
		return
	}
	if cs.ticker != nil {
		return
	}

	cs.ticker = time.NewTicker(cs.Interval)
	cs.stop = make(chan struct{})
	cs.wg.Add(1)

	go cs.run(cs.ticker, cs.stop)

	cs.logger.Info().Dur("interval", cs.Interval).Msg("started")
}

// Stop stops the scheduler and waits for a running pass to finish.
func (cs *CollectScheduler) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.ticker != nil {
		cs.ticker.Stop()
		close(cs.stop)
		cs.wg.Wait()
		cs.ticker = nil
		cs.logger.Info().Msg("stopped")
	}
}

func (cs *CollectScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer cs.wg.Done()

	// Run immediately on start
	cs.CollectRecent(context.Background())

	for {
		select {
		case <-ticker.C:
			cs.CollectRecent(context.Background())
		case <-stop:
			return
		}
	}
}

// CollectRecent collects yesterday and today once and returns how many
// days were collected.
func (cs *CollectScheduler) CollectRecent(ctx context.Context) int {
	today := cs.now().UTC()
	dates := []string{
		daybook.FormatDate(today.AddDate(0, 0, -1)),
		daybook.FormatDate(today),
	}

	ok := 0
	for _, date := range dates {
		stored, err := cs.Ledger.Get(ctx, date)
		if err != nil {
			cs.logger.Error().Err(err).Str("date", date).Msg("read stored day")
			continue
		}
		if stored != nil && stored.Status == daybook.StatusSent {
			continue
		}
		if _, err := cs.Collector.CollectDay(ctx, date); err != nil {
			cs.logger.Error().Err(err).Str("date", date).Msg("collect failed")
			continue
		}
		ok++
	}
	cs.logger.Debug().Int("collected", ok).Msg("pass completed")
	return ok
}
