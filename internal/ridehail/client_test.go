package ridehail_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/ride-profit/internal/config"
	"github.com/nurpe/ride-profit/internal/ridehail"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_NotConfigured(t *testing.T) {
	_, err := ridehail.NewClient(config.RideHailConfig{ClientID: "only-id", Timeout: time.Second})

	assert.ErrorIs(t, err, ridehail.ErrNotConfigured)
}

func TestClient_Trips_ServerToken(t *testing.T) {
	from := time.Unix(1_760_000_000, 0)
	to := from.Add(24 * time.Hour)

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1.2/partners/trips", r.URL.Path)
		assert.Equal(t, "Bearer server-token", r.Header.Get("Authorization"))
		assert.Equal(t, "pl-PL", r.Header.Get("Accept-Language"))
		assert.Equal(t, "1760000000", r.URL.Query().Get("from_time"))
		assert.Equal(t, "1760086400", r.URL.Query().Get("to_time"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		writeJSON(w, map[string]any{"trips": []map[string]any{{
			"trip_id":    "t-1",
			"start_time": 1_760_000_000,
			"end_time":   1_760_001_200,
			"distance":   5,
			"fare":       map[string]any{"amount": 4550, "currency_code": "PLN"},
		}}})
	})

	c, err := ridehail.NewClient(config.RideHailConfig{
		BaseURL:     srv.URL + "/v1.2/",
		ServerToken: "server-token",
		Timeout:     5 * time.Second,
	})
	require.NoError(t, err)

	trips, err := c.Trips(context.Background(), from, to, 500)

	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "t-1", trips[0].TripID)
	assert.Equal(t, 4550.0, trips[0].Fare.Amount)
	assert.Equal(t, "PLN", trips[0].Fare.CurrencyCode)
}

func TestClient_Profile_ClientCredentials(t *testing.T) {
	tokenCalls := 0
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v2/token":
			tokenCalls++
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
			assert.Equal(t, "partner.trips partner.payments profile", r.PostForm.Get("scope"))
			writeJSON(w, map[string]any{"access_token": "cc-token", "token_type": "bearer", "expires_in": 3600})
		case "/partners/me":
			assert.Equal(t, "Bearer cc-token", r.Header.Get("Authorization"))
			writeJSON(w, map[string]any{"driver_id": "d-1", "first_name": "Jan"})
		default:
			http.NotFound(w, r)
		}
	})

	c, err := ridehail.NewClient(config.RideHailConfig{
		BaseURL:      srv.URL,
		TokenURL:     srv.URL + "/oauth/v2/token",
		ClientID:     "id",
		ClientSecret: "secret",
		Timeout:      5 * time.Second,
	})
	require.NoError(t, err)

	p, err := c.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Jan", p.FirstName)

	_, err = c.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, tokenCalls, "token is cached until it expires")
}

func TestClient_APIError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized"}`))
	})
	c, err := ridehail.NewClient(config.RideHailConfig{BaseURL: srv.URL, ServerToken: "x", Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.Trips(context.Background(), time.Now().Add(-time.Hour), time.Now(), 10)

	var apiErr *ridehail.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "unauthorized")
}

func TestClient_Timeout(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})
	c, err := ridehail.NewClient(config.RideHailConfig{BaseURL: srv.URL, ServerToken: "x", Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Profile(context.Background())

	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	got := ridehail.Convert(ridehail.Trip{
		TripID:    "t-9",
		StartTime: 1_760_000_000,
		EndTime:   1_760_001_800,
		Distance:  10,
		Fare:      ridehail.Fare{Amount: 3299},
	}, loc, "Uber")

	assert.Equal(t, "t-9", got.ExternalID)
	assert.Equal(t, loc, got.StartedAt.Location())
	assert.Equal(t, int64(1_760_000_000), got.StartedAt.Unix())
	assert.InDelta(t, 16.0934, got.Input.TripDistanceKm, 1e-9)
	assert.InDelta(t, 30.0, got.Input.TripTimeMin, 1e-9)
	assert.InDelta(t, 32.99, got.Input.Fare, 1e-9)
	assert.Zero(t, got.Input.ApproachDistanceKm)
	assert.Zero(t, got.Input.ApproachTimeMin)
	assert.Equal(t, "Uber", got.Input.Platform)
}

func TestConvert_NegativeDurationClamped(t *testing.T) {
	got := ridehail.Convert(ridehail.Trip{StartTime: 100, EndTime: 40}, time.UTC, "Uber")

	assert.Zero(t, got.Input.TripTimeMin)
}
