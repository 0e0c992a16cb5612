package daybook

import (
	"context"

	"github.com/rs/zerolog"
)

// Bookkeeper posts a day's entry to the bookkeeping system.
type Bookkeeper interface {
	Book(ctx context.Context, posting Posting) error
}

// SendResult is returned by a successful SendDay.
type SendResult struct {
	OK bool
}

// Dispatcher sends stored days to the bookkeeping system.
type Dispatcher struct {
	ledger     *Ledger
	bookkeeper Bookkeeper
	logger     zerolog.Logger
	recorder   Recorder
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger.
func WithDispatcherLogger(logger zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithDispatcherRecorder sets the metrics recorder.
func WithDispatcherRecorder(r Recorder) DispatcherOption {
	return func(d *Dispatcher) { d.recorder = r }
}

// NewDispatcher creates a dispatcher reading from ledger.
func NewDispatcher(ledger *Ledger, bookkeeper Bookkeeper, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		ledger:     ledger,
		bookkeeper: bookkeeper,
		logger:     zerolog.Nop(),
		recorder:   NopRecorder{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SendDay posts the stored summary of date and marks it sent.
// A failed posting leaves the status unchanged.
func (d *Dispatcher) SendDay(ctx context.Context, date string) (SendResult, error) {
	summary, err := d.ledger.Get(ctx, date)
	if err != nil {
		return SendResult{}, err
	}
	if summary == nil {
		return SendResult{}, &NotFoundError{Date: date}
	}

	posting := NewPosting(*summary)
	if err := d.bookkeeper.Book(ctx, posting); err != nil {
		d.recorder.Booking(ResultFailed)
		d.logger.Error().Err(err).Str("date", date).Msg("booking failed")
		return SendResult{}, err
	}

	if err := d.ledger.SetStatus(ctx, date, StatusSent); err != nil {
		return SendResult{}, err
	}
	d.recorder.Booking(ResultOK)
	d.logger.Info().Str("date", date).Msg("day sent")
	return SendResult{OK: true}, nil
}
