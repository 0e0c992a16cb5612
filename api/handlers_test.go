/*
handlers_test.go - HTTP tests for the day and import endpoints

Tests run the full router against a SQLite in-memory store with a fake
storefront and a fake bookkeeper, so every request goes through the same
middleware and error mapping as in production.
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/laprofumo/shopify-klara-sync-backend/daybook"
	"github.com/laprofumo/shopify-klara-sync-backend/metrics"
	"github.com/laprofumo/shopify-klara-sync-backend/runlock"
	"github.com/laprofumo/shopify-klara-sync-backend/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// fakeStorefront returns canned orders per UTC day.
type fakeStorefront struct {
	mu     sync.Mutex
	orders map[string][]daybook.Order
	err    error
	calls  int
}

func (f *fakeStorefront) FetchPaidOrders(_ context.Context, day time.Time) ([]daybook.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.orders[daybook.FormatDate(day)], nil
}

// fakeBookkeeper records postings and fails when err is set.
type fakeBookkeeper struct {
	posted []daybook.Posting
	err    error
}

func (f *fakeBookkeeper) Book(_ context.Context, p daybook.Posting) error {
	if f.err != nil {
		return f.err
	}
	f.posted = append(f.posted, p)
	return nil
}

type testEnv struct {
	router     http.Handler
	handler    *Handler
	ledger     *daybook.Ledger
	storefront *fakeStorefront
	bookkeeper *fakeBookkeeper
	locker     *runlock.Local
}

var testNow = time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		storefront: &fakeStorefront{orders: map[string][]daybook.Order{}},
		bookkeeper: &fakeBookkeeper{},
		locker:     runlock.NewLocal(),
	}

	logger := zerolog.Nop()
	prom := metrics.New()
	env.ledger = daybook.NewLedger(store, daybook.WithLedgerRecorder(prom))
	collector := daybook.NewCollector(env.storefront, env.ledger,
		daybook.WithClock(func() time.Time { return testNow }),
		daybook.WithCollectorRecorder(prom),
	)
	importer := daybook.NewImporter(collector,
		daybook.WithRunLog(store),
		daybook.WithLocker(env.locker, time.Minute),
	)
	dispatcher := daybook.NewDispatcher(env.ledger, env.bookkeeper)

	env.handler = NewHandler(env.ledger, collector, importer, dispatcher, logger)
	env.handler.RunLog = store
	env.handler.now = func() time.Time { return testNow }
	env.router = NewRouter(env.handler, RouterOptions{
		AllowedOrigins: []string{"http://localhost:5173"},
		Logger:         logger,
		Metrics:        prom.Handler(),
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func mixedOrder() daybook.Order {
	return daybook.Order{ID: "1", LineItems: []daybook.LineItem{
		{Price: daybook.ParseValue("10.00"), Quantity: daybook.ParseValue("2")},
		{LinePrice: daybook.ParseValue("50.00"), GiftCard: true},
	}}
}

// =============================================================================
// DAY ENDPOINTS
// =============================================================================

func TestToday_CollectsOnDemand(t *testing.T) {
	// GIVEN: no stored summary for today, one order upstream
	// WHEN: GET /api/today twice
	// THEN: the day is collected once and returned in the UI format
	env := newTestEnv(t)
	env.storefront.orders["2025-06-01"] = []daybook.Order{mixedOrder()}

	rec := env.do(t, http.MethodGet, "/api/today")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "2025-06-01", body["date"])
	assert.Equal(t, 20.0, body["umsatz_brutto"])
	assert.Equal(t, 1.5, body["mwst"])
	assert.Equal(t, 50.0, body["gutscheine"])
	assert.Equal(t, "prepared", body["status"])
	assert.Contains(t, rec.Body.String(), `"mwst":1.50`)

	rec = env.do(t, http.MethodGet, "/api/today")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.storefront.calls)
}

func TestToday_UpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.storefront.err = errors.New("shopify api error 503")

	rec := env.do(t, http.MethodGet, "/api/today")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.NotEmpty(t, body.Error)
	assert.Contains(t, body.Details, "503")
}

func TestGetDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.ledger.SetStatus(ctx, "2025-05-20", daybook.StatusPrepared))

	rec := env.do(t, http.MethodGet, "/api/day/2025-05-20")
	require.Equal(t, http.StatusOK, rec.Code)
	dto := decode[DaySummaryDTO](t, rec)
	assert.Equal(t, "2025-05-20", dto.Date)
	assert.True(t, dto.UmsatzBrutto.Decimal().IsZero())

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/day/2025-05-21").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/day/2025-02-30").Code)
}

func TestCollectDay(t *testing.T) {
	env := newTestEnv(t)
	env.storefront.orders["2025-04-01"] = []daybook.Order{mixedOrder()}

	rec := env.do(t, http.MethodPost, "/api/day/2025-04-01/collect")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "20.00", decode[DaySummaryDTO](t, rec).UmsatzBrutto.Decimal().StringFixed(2))

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/day/2025-13-01/collect").Code)
}

func TestOpenDaysAndSend(t *testing.T) {
	// GIVEN: two collected days
	// WHEN: one is sent
	// THEN: open-days lists only the other one
	env := newTestEnv(t)
	env.storefront.orders["2025-06-01"] = []daybook.Order{mixedOrder()}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/day/2025-06-01/collect").Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/day/2025-05-31/collect").Code)

	rec := env.do(t, http.MethodPost, "/api/day/2025-06-01/send")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	require.Len(t, env.bookkeeper.posted, 1)
	assert.Equal(t, "20.00", env.bookkeeper.posted[0].Amount(daybook.AccountReceivables).StringFixed(2))

	rec = env.do(t, http.MethodGet, "/api/open-days")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"date":"2025-05-31","status":"prepared"}]`, rec.Body.String())
}

func TestOpenDays_EmptyIsArray(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/open-days")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSendDay_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/day/2025-06-09/send")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, env.bookkeeper.posted)
}

func TestSendDay_BookkeepingFailureKeepsDayOpen(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/day/2025-06-01/collect").Code)
	env.bookkeeper.err = &daybook.BookingError{Date: "2025-06-01", StatusCode: 500, Body: "down"}

	rec := env.do(t, http.MethodPost, "/api/day/2025-06-01/send")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/open-days")
	assert.JSONEq(t, `[{"date":"2025-06-01","status":"prepared"}]`, rec.Body.String())
}

// =============================================================================
// IMPORT ENDPOINTS
// =============================================================================

func TestRunImport(t *testing.T) {
	// GIVEN: revenue on two days of 2025
	// WHEN: POST /api/import/2025/run
	// THEN: 365 days stored, 2 with revenue, and the run is listed
	env := newTestEnv(t)
	env.storefront.orders["2025-01-15"] = []daybook.Order{mixedOrder()}
	env.storefront.orders["2025-12-24"] = []daybook.Order{mixedOrder()}

	rec := env.do(t, http.MethodPost, "/api/import/2025/run")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	dto := decode[ImportRunDTO](t, rec)
	assert.Equal(t, 365, dto.DaysTotal)
	assert.Equal(t, 2, dto.DaysWithRevenue)
	assert.Equal(t, 363, dto.DaysWithoutRevenue)
	assert.Equal(t, 7, dto.Skipped)
	assert.Zero(t, dto.Failed)
	assert.Equal(t, "2025-06-01T14:00:00Z", dto.LastRun)
	assert.Equal(t, 365, env.storefront.calls)

	rec = env.do(t, http.MethodGet, "/api/import/2025/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	runs := decode[[]ImportRunRecordDTO](t, rec)
	require.Len(t, runs, 1)
	assert.Equal(t, dto.RunID, runs[0].RunID)
	assert.Equal(t, 372, runs[0].Attempted)
}

func TestRunImport_AlreadyRunning(t *testing.T) {
	env := newTestEnv(t)
	lock, err := env.locker.Obtain(context.Background(), "import:2025", time.Minute)
	require.NoError(t, err)
	defer lock.Release(context.Background())

	rec := env.do(t, http.MethodPost, "/api/import/2025/run")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, env.storefront.calls)
}

func TestImportEndpoints_InvalidYear(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{
		"/api/import/abc/run",
		"/api/import/0/run",
		"/api/import/20250/send",
		"/api/import/x/export.xlsx",
		"/api/import/-1/runs",
	} {
		method := http.MethodGet
		if strings.HasSuffix(path, "/run") || strings.HasSuffix(path, "/send") {
			method = http.MethodPost
		}
		assert.Equal(t, http.StatusBadRequest, env.do(t, method, path).Code, path)
	}
}

func TestSendImport_Placeholder(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/import/2025/send")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[SendResultDTO](t, rec)
	assert.True(t, body.OK)
	assert.NotEmpty(t, body.Info)
	assert.Empty(t, env.bookkeeper.posted)
}

func TestExportYear(t *testing.T) {
	env := newTestEnv(t)
	env.storefront.orders["2025-03-01"] = []daybook.Order{mixedOrder()}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/day/2025-03-01/collect").Code)

	rec := env.do(t, http.MethodGet, "/api/import/2025/export.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "2025")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("2025")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-03-01", rows[1][0])
}

// =============================================================================
// MISC
// =============================================================================

func TestHealthAndBanner(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Banner, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/day/2025-03-01/collect").Code)

	rec := env.do(t, http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `daybook_days_collected_total{result="ok"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/day/2025-06-01/send", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(&daybook.NotFoundError{Date: "2025-01-01"}))
	assert.Equal(t, http.StatusConflict, statusFor(daybook.ErrImportInProgress))
	assert.Equal(t, http.StatusBadRequest, statusFor(&daybook.InvalidDateError{Date: "x"}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(&daybook.UpstreamFetchError{Date: "2025-01-01", Err: errors.New("boom")}))
}
