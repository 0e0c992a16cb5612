/*
Package klara posts day entries to the Klara bookkeeping API.

PAYLOAD:
  Klara's booking schema is not pinned down yet. Client sends the
  four-account posting as JSON; DryRun only logs it. main selects DryRun
  while no KLARA_API_BASE_URL is configured, which matches how the sync ran
  before the API integration existed: the day is logged and marked sent.

  POST {base}/bookings
  Authorization: Bearer {token}
  Idempotency-Key: {uuid v5 of the date}
  {
    "date": "2025-06-01",
    "lines": [
      {"account": "3000", "label": "Umsatz 8.1%", "amount": "20.00"},
      ...
    ]
  }
*/
package klara

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/laprofumo/shopify-klara-sync-backend/daybook"
)

// idempotencyNamespace scopes the per-date idempotency keys.
var idempotencyNamespace = uuid.MustParse("3f0c1a4e-8a43-4c8e-9d3b-6d1f2b9a7c55")

// IdempotencyKey is stable per date so a retried send cannot double-book.
func IdempotencyKey(date string) string {
	return uuid.NewSHA1(idempotencyNamespace, []byte("booking:"+date)).String()
}

type bookingLine struct {
	Account string `json:"account"`
	Label   string `json:"label"`
	Amount  string `json:"amount"`
}

type bookingRequest struct {
	Date  string        `json:"date"`
	Lines []bookingLine `json:"lines"`
}

func newBookingRequest(p daybook.Posting) bookingRequest {
	req := bookingRequest{Date: p.Date, Lines: make([]bookingLine, len(p.Lines))}
	for i, l := range p.Lines {
		req.Lines[i] = bookingLine{Account: string(l.Account), Label: l.Label, Amount: l.Amount.StringFixed(2)}
	}
	return req
}

// =============================================================================
// HTTP CLIENT
// =============================================================================

// Client implements daybook.Bookkeeper over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client. A missing token surfaces on Book.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Book posts p and returns nil on any 2xx response.
func (c *Client) Book(ctx context.Context, p daybook.Posting) error {
	if c.token == "" || c.baseURL == "" {
		return fmt.Errorf("klara api token or base url: %w", daybook.ErrConfigurationMissing)
	}

	body, err := json.Marshal(newBookingRequest(p))
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bookings", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", IdempotencyKey(p.Date))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("klara request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &daybook.BookingError{
			Date:       p.Date,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}
	return nil
}

// =============================================================================
// DRY RUN
// =============================================================================

// DryRun logs the posting it would send and always succeeds.
type DryRun struct {
	logger zerolog.Logger
}

// NewDryRun creates a logging-only bookkeeper.
func NewDryRun(logger zerolog.Logger) *DryRun {
	return &DryRun{logger: logger}
}

// Book logs p.
func (d *DryRun) Book(_ context.Context, p daybook.Posting) error {
	event := d.logger.Info().Str("date", p.Date).Bool("dry_run", true)
	for _, l := range p.Lines {
		event = event.Str("konto"+string(l.Account), l.Amount.StringFixed(2))
	}
	event.Msg("klara booking")
	return nil
}
