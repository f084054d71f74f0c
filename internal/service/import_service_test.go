package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/ride-profit/internal/codec"
	"github.com/nurpe/ride-profit/internal/ridehail"
	"github.com/nurpe/ride-profit/internal/service"
	"github.com/nurpe/ride-profit/internal/summary"
)

// mockTripSource is a hand-written double for service.TripSource.
type mockTripSource struct {
	trips   func(ctx context.Context, from, to time.Time, limit int) ([]ridehail.Trip, error)
	profile func(ctx context.Context) (*ridehail.Profile, error)
}

func (m *mockTripSource) Trips(ctx context.Context, from, to time.Time, limit int) ([]ridehail.Trip, error) {
	return m.trips(ctx, from, to, limit)
}

func (m *mockTripSource) Profile(ctx context.Context) (*ridehail.Profile, error) {
	return m.profile(ctx)
}

var _ service.TripSource = (*mockTripSource)(nil)

func newImportService(source service.TripSource, store *memStore) *service.ImportService {
	cal, _ := fixedCalendar()
	return service.NewImportService(source, store, service.NewUserLocks(), cal, "Uber", time.Second, zerolog.Nop())
}

func apiTrip(id string, start time.Time, minutes int, miles float64, minor float64) ridehail.Trip {
	return ridehail.Trip{
		TripID:    id,
		StartTime: start.Unix(),
		EndTime:   start.Add(time.Duration(minutes) * time.Minute).Unix(),
		Distance:  miles,
		Fare:      ridehail.Fare{Amount: minor},
	}
}

func staticTrips(trips ...ridehail.Trip) *mockTripSource {
	return &mockTripSource{trips: func(context.Context, time.Time, time.Time, int) ([]ridehail.Trip, error) {
		return trips, nil
	}}
}

func TestImportService_NotConfigured(t *testing.T) {
	store := newMemStore()
	svc := newImportService(nil, store)

	res, err := svc.Import(context.Background(), driver, service.ImportRequest{})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Brak kluczy API")
	assert.False(t, svc.Status(context.Background()).Success)
}

func TestImportService_UpstreamFailureIsAMessage(t *testing.T) {
	store := newMemStore()
	source := &mockTripSource{trips: func(context.Context, time.Time, time.Time, int) ([]ridehail.Trip, error) {
		return nil, errors.New("connection refused")
	}}

	res, err := newImportService(source, store).Import(context.Background(), driver, service.ImportRequest{})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Message)
	assert.Empty(t, store.lines(driver.UserID))
}

func TestImportService_DefaultWindowAndTimeout(t *testing.T) {
	var gotFrom, gotTo time.Time
	var hasDeadline bool
	source := &mockTripSource{trips: func(ctx context.Context, from, to time.Time, limit int) ([]ridehail.Trip, error) {
		gotFrom, gotTo = from, to
		_, hasDeadline = ctx.Deadline()
		return nil, nil
	}}

	res, err := newImportService(source, newMemStore()).Import(context.Background(), driver, service.ImportRequest{})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Zero(t, res.Imported)
	assert.Equal(t, time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC), gotTo)
	assert.Equal(t, 30*24*time.Hour, gotTo.Sub(gotFrom))
	assert.True(t, hasDeadline)
}

func TestImportService_ImportsConvertsAndSummarises(t *testing.T) {
	store := newMemStore()
	day1 := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)
	source := staticTrips(
		apiTrip("b", day2, 30, 10, 5000),
		apiTrip("a", day1, 60, 5, 4000),
	)
	percentage := 80.0

	res, err := newImportService(source, store).Import(context.Background(), driver, service.ImportRequest{
		DriverPercentage: &percentage,
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Fetched)
	assert.Equal(t, 2, res.Imported)
	assert.Len(t, res.Summaries, 2)

	lines := store.lines(driver.UserID)
	records := codec.Records(lines, time.UTC)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ExternalID, "trips are appended in start order")
	assert.Equal(t, "2026-10-17", records[0].Day)
	assert.Equal(t, "Uber", records[0].Platform)
	require.NotNil(t, records[0].TripDistanceKm)
	assert.InDelta(t, 8.05, *records[0].TripDistanceKm, 0.005)
	require.NotNil(t, records[1].NetProfit)
	assert.InDelta(t, 40.0, *records[1].NetProfit, 1e-9)
	require.NotNil(t, records[1].HourlyRate)
	assert.InDelta(t, 80.0, *records[1].HourlyRate, 1e-9)

	days := map[string]bool{}
	for _, s := range summary.Summaries(lines) {
		days[s.Day] = true
	}
	assert.Equal(t, map[string]bool{"2026-10-17": true, "2026-10-18": true}, days)
}

func TestImportService_SkipsKnownTrips(t *testing.T) {
	store := newMemStore()
	start := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	svc := newImportService(staticTrips(apiTrip("t-1", start, 20, 3, 2500)), store)
	ctx := context.Background()

	first, err := svc.Import(ctx, driver, service.ImportRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Imported)
	before := store.lines(driver.UserID)

	second, err := svc.Import(ctx, driver, service.ImportRequest{})
	require.NoError(t, err)
	assert.Zero(t, second.Imported)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, before, store.lines(driver.UserID))
}

func TestImportService_RejectsBadRequest(t *testing.T) {
	svc := newImportService(staticTrips(), newMemStore())
	ctx := context.Background()
	from := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	tooMuch := 150.0

	_, err := svc.Import(ctx, driver, service.ImportRequest{From: &from, To: &to})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.Import(ctx, driver, service.ImportRequest{DriverPercentage: &tooMuch})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.Import(ctx, driver, service.ImportRequest{Limit: 500})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.Import(ctx, driver, service.ImportRequest{FuelPrice: -1})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestImportService_Status(t *testing.T) {
	ok := &mockTripSource{profile: func(context.Context) (*ridehail.Profile, error) {
		return &ridehail.Profile{FirstName: "Anna"}, nil
	}}
	anon := &mockTripSource{profile: func(context.Context) (*ridehail.Profile, error) {
		return &ridehail.Profile{}, nil
	}}
	broken := &mockTripSource{profile: func(context.Context) (*ridehail.Profile, error) {
		return nil, errors.New("401")
	}}

	st := newImportService(ok, newMemStore()).Status(context.Background())
	assert.True(t, st.Success)
	assert.Equal(t, "Anna", st.DriverName)

	st = newImportService(anon, newMemStore()).Status(context.Background())
	assert.Equal(t, "Nieznany", st.DriverName)

	st = newImportService(broken, newMemStore()).Status(context.Background())
	assert.False(t, st.Success)
	assert.Empty(t, st.DriverName)
}
