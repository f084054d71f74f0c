package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/ride-profit/internal/config"
	"github.com/nurpe/ride-profit/internal/excel"
	httphandler "github.com/nurpe/ride-profit/internal/http"
	"github.com/nurpe/ride-profit/internal/http/middleware"
	"github.com/nurpe/ride-profit/internal/model"
	"github.com/nurpe/ride-profit/internal/pdf"
	"github.com/nurpe/ride-profit/internal/repository"
	"github.com/nurpe/ride-profit/internal/service"
)

const userHeader = "X-Test-User"

// testAuth trusts the user named in a test header.
func testAuth(c *gin.Context) {
	if user := c.GetHeader(userHeader); user != "" {
		middleware.SetPrincipal(c, model.Principal{UserID: user})
	}
	c.Next()
}

type testServer struct {
	router *gin.Engine
	store  *repository.FileStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := repository.NewFileStore(t.TempDir())
	now := time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC)
	calendar := service.Calendar{Location: time.UTC, Now: func() time.Time { return now }}
	locks := service.NewUserLocks()
	log := zerolog.Nop()

	handler := httphandler.NewHandler(
		service.NewTripService(store, store, locks, calendar),
		service.NewGoalService(store, calendar),
		service.NewStatsService(store, calendar),
		service.NewReportService(store, excel.NewGenerator(), pdf.NewGenerator(), calendar),
		service.NewImportService(nil, store, locks, calendar, "Uber", time.Second, log),
		log,
	)
	cfg := &config.Config{
		Environment: "test",
		RateLimit:   config.RateLimitConfig{PerMinute: 60, Burst: 10},
	}
	return &testServer{router: httphandler.NewRouter(handler, testAuth, cfg), store: store}
}

func (s *testServer) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(userHeader, user)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func referenceTrip() map[string]any {
	return map[string]any{
		"approach_distance": 2,
		"approach_time":     10,
		"trip_distance":     10,
		"trip_time":         20,
		"fare":              100,
		"driver_percentage": 70,
		"fuel_consumption":  6,
		"fuel_price":        6.5,
		"platform":          "Bolt",
	}
}

// ---- health and auth ----

func TestHealthz_NoAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestMissingPrincipal(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/trips", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInvalidUserID_Forbidden(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/trips", "../etc", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// ---- trips ----

func TestCreateTrip(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/trips", "driver-1", referenceTrip())

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	calc := body["calculation"].(map[string]any)
	assert.InDelta(t, 130.64, calc["hourly_rate"], 0.001)
	summary := body["daily_summary"].(map[string]any)
	assert.Equal(t, "2026-10-19", summary["day"])
	assert.InDelta(t, 130.64, summary["mean_rate"], 0.005)

	lines, err := s.store.ReadLog(context.Background(), "driver-1")
	require.NoError(t, err)
	assert.Contains(t, lines, "[2026-10-19 14:30:00]")

	rec = s.do(t, http.MethodGet, "/trips", "driver-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	trips := decode(t, rec)["trips"].([]any)
	require.Len(t, trips, 1)
	assert.Equal(t, "Bolt", trips[0].(map[string]any)["platform"])
}

func TestCreateTrip_BadInput(t *testing.T) {
	s := newTestServer(t)

	nonNumeric := referenceTrip()
	nonNumeric["fare"] = "abc"
	missing := referenceTrip()
	delete(missing, "trip_time")
	negative := referenceTrip()
	negative["fuel_price"] = -1
	overShare := referenceTrip()
	overShare["driver_percentage"] = 150

	for name, body := range map[string]any{
		"non-numeric": nonNumeric,
		"missing":     missing,
		"negative":    negative,
		"over share":  overShare,
		"malformed":   "{",
	} {
		t.Run(name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/trips", "driver-1", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	lines, err := s.store.ReadLog(context.Background(), "driver-1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestPreviewTrip_DoesNotPersist(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/trips/preview", "driver-1", referenceTrip())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 65.32, decode(t, rec)["net_profit"], 0.001)
	lines, err := s.store.ReadLog(context.Background(), "driver-1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

// ---- goals ----

func TestGoals(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/account", "driver-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/goals", "driver-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"daily_target":300,"min_hourly_rate":30}`, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/goals", "driver-1", map[string]any{"daily_target": 65.32, "min_hourly_rate": 40})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/goals", "driver-1", map[string]any{"daily_target": -1, "min_hourly_rate": 40})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.do(t, http.MethodPost, "/trips", "driver-1", referenceTrip())

	rec = s.do(t, http.MethodGet, "/goals/progress", "driver-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	progress := decode(t, rec)["progress"].(map[string]any)
	assert.InDelta(t, 100, progress["percentage"], 0.001)
	assert.InDelta(t, 0, progress["remaining"], 0.001)
}

// ---- stats and reports ----

func TestStats_NoData(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/stats/dashboard", "/stats/platforms", "/stats/heatmap", "/stats/forecast", "/stats/distance", "/reports/period"} {
		rec := s.do(t, http.MethodGet, path, "driver-1", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"error":"no data"}`, rec.Body.String(), path)
	}
}

func TestStats_WithTrips(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/trips", "driver-1", referenceTrip())

	rec := s.do(t, http.MethodGet, "/stats/platforms", "driver-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bolt", decode(t, rec)["best"])

	rec = s.do(t, http.MethodGet, "/stats/dashboard", "driver-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	overview := decode(t, rec)["overview"].(map[string]any)
	assert.Equal(t, "14:00", overview["best_hour"])
}

func TestReports(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/trips", "driver-1", referenceTrip())

	rec := s.do(t, http.MethodGet, "/reports/period?month=2026-13", "driver-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/reports/period?month=2026-10", "driver-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["trip_count"])

	rec = s.do(t, http.MethodGet, "/reports/period/xlsx?month=2026-10", "driver-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/vnd.openxmlformats"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	rec = s.do(t, http.MethodGet, "/reports/period/pdf", "driver-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = s.do(t, http.MethodGet, "/reports/period/pdf?month=2026-09", "driver-1", nil)
	assert.JSONEq(t, `{"error":"no data"}`, rec.Body.String())
}

// ---- ride-hailing ----

func TestRideHail_NotConfigured(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/integrations/ridehail/import", "driver-1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])

	rec = s.do(t, http.MethodGet, "/integrations/ridehail/status", "driver-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])
}

func TestRideHail_BadWindow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/integrations/ridehail/import", "driver-1", map[string]any{"from": "yesterday"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
