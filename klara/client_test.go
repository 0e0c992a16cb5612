package klara_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laprofumo/shopify-klara-sync-backend/daybook"
	"github.com/laprofumo/shopify-klara-sync-backend/klara"
)

func testPosting() daybook.Posting {
	return daybook.NewPosting(daybook.DaySummary{
		Date:            "2025-06-01",
		GrossRevenue:    decimal.RequireFromString("20"),
		VAT:             decimal.RequireFromString("1.5"),
		GiftCardRevenue: decimal.RequireFromString("50"),
	})
}

func TestClient_Book_Request(t *testing.T) {
	// GIVEN: a bookkeeping API that accepts everything
	// WHEN: booking a posting
	// THEN: the request carries auth, idempotency key and four lines
	var (
		gotReq  *http.Request
		gotBody map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := klara.NewClient(srv.URL+"/", "klara-token")

	require.NoError(t, client.Book(context.Background(), testPosting()))

	assert.Equal(t, http.MethodPost, gotReq.Method)
	assert.Equal(t, "/bookings", gotReq.URL.Path)
	assert.Equal(t, "Bearer klara-token", gotReq.Header.Get("Authorization"))
	assert.Equal(t, klara.IdempotencyKey("2025-06-01"), gotReq.Header.Get("Idempotency-Key"))

	assert.Equal(t, "2025-06-01", gotBody["date"])
	lines, ok := gotBody["lines"].([]any)
	require.True(t, ok)
	require.Len(t, lines, 4)
	first := lines[0].(map[string]any)
	assert.Equal(t, "3000", first["account"])
	assert.Equal(t, "20.00", first["amount"])
	last := lines[3].(map[string]any)
	assert.Equal(t, "1101", last["account"])
	assert.Equal(t, "20.00", last["amount"])
}

func TestClient_Book_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"period closed"}`))
	}))
	defer srv.Close()

	err := klara.NewClient(srv.URL, "token").Book(context.Background(), testPosting())

	assert.ErrorIs(t, err, daybook.ErrBookingFailed)
	var be *daybook.BookingError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusUnprocessableEntity, be.StatusCode)
	assert.Equal(t, "2025-06-01", be.Date)
	assert.Contains(t, be.Body, "period closed")
}

func TestClient_Book_NotConfigured(t *testing.T) {
	assert.ErrorIs(t, klara.NewClient("https://klara.example", "").Book(context.Background(), testPosting()),
		daybook.ErrConfigurationMissing)
	assert.ErrorIs(t, klara.NewClient("", "token").Book(context.Background(), testPosting()),
		daybook.ErrConfigurationMissing)
}

func TestIdempotencyKey(t *testing.T) {
	a := klara.IdempotencyKey("2025-06-01")

	assert.Equal(t, a, klara.IdempotencyKey("2025-06-01"), "stable per date")
	assert.NotEqual(t, a, klara.IdempotencyKey("2025-06-02"))

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}

func TestDryRun_LogsAccounts(t *testing.T) {
	var buf bytes.Buffer
	dry := klara.NewDryRun(zerolog.New(&buf))

	require.NoError(t, dry.Book(context.Background(), testPosting()))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "2025-06-01", entry["date"])
	assert.Equal(t, true, entry["dry_run"])
	assert.Equal(t, "20.00", entry["konto3000"])
	assert.Equal(t, "1.50", entry["konto2200"])
	assert.Equal(t, "50.00", entry["konto2030"])
	assert.Equal(t, "20.00", entry["konto1101"])
}
