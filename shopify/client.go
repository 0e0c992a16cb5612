/*
Package shopify reads paid orders from the Shopify Admin REST API.

REQUEST:
  GET https://{domain}/admin/api/{version}/orders.json
      ?status=any&financial_status=paid
      &created_at_min={day}T00:00:00Z&created_at_max={day}T23:59:59Z
      &limit=250
  Header X-Shopify-Access-Token: {token}

PAGINATION:
  Only the first page is read. See daybook.PageLimit.

DECODING:
  Shopify sends money as strings ("10.00"); numbers are accepted too. A
  value that is present but not numeric is kept as invalid rather than
  failing the whole response, so one bad line cannot abort a day. A
  line_items field that is not an array decodes as no lines.
*/
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/laprofumo/shopify-klara-sync-backend/daybook"
)

// DefaultAPIVersion is the Admin API version used when none is configured.
const DefaultAPIVersion = "2024-01"

// maxOrdersBody caps one orders.json page.
const maxOrdersBody = 32 << 20

// Client implements daybook.OrderSource.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBaseURL points the client at a full base URL instead of
// https://{domain}/admin/api/{version}. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// NewClient creates a client for the given shop domain and access token.
// Missing credentials are not an error here; FetchPaidOrders reports them.
func NewClient(domain, token, apiVersion string, opts ...Option) *Client {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	c := &Client{
		token: strings.TrimSpace(token),
		http:  &http.Client{Timeout: 30 * time.Second},
	}
	if domain = strings.TrimSpace(domain); domain != "" {
		c.baseURL = fmt.Sprintf("https://%s/admin/api/%s", domain, apiVersion)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether domain and token are set.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.token != ""
}

type ordersResponse struct {
	Orders []order `json:"orders"`
}

// FetchPaidOrders returns the paid orders created on the UTC day of day.
func (c *Client) FetchPaidOrders(ctx context.Context, day time.Time) ([]daybook.Order, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("shopify store domain or access token: %w", daybook.ErrConfigurationMissing)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Second)

	params := url.Values{}
	params.Set("status", "any")
	params.Set("financial_status", "paid")
	params.Set("created_at_min", start.Format(time.RFC3339))
	params.Set("created_at_max", end.Format(time.RFC3339))
	params.Set("limit", fmt.Sprint(daybook.PageLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders.json?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("shopify api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxOrdersBody))
	if err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}

	var parsed ordersResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	orders := make([]daybook.Order, len(parsed.Orders))
	for i, o := range parsed.Orders {
		orders[i] = o.toDomain()
	}
	return orders, nil
}
