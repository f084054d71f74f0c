package service_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/nurpe/ride-profit/internal/model"
	"github.com/nurpe/ride-profit/internal/repository"
	"github.com/nurpe/ride-profit/internal/service"
)

// memStore is an in-memory repository.Store. The *Err fields, when set, are
// returned by the matching method.
type memStore struct {
	mu    sync.Mutex
	logs  map[string][]string
	goals map[string][]model.Field

	readLogErr   error
	appendLogErr error
	writeGoalErr error
}

func newMemStore() *memStore {
	return &memStore{logs: map[string][]string{}, goals: map[string][]model.Field{}}
}

func (m *memStore) ReadLog(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readLogErr != nil {
		return nil, m.readLogErr
	}
	return slices.Clone(m.logs[userID]), nil
}

func (m *memStore) AppendLog(_ context.Context, userID string, lines []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendLogErr != nil {
		return m.appendLogErr
	}
	m.logs[userID] = append(m.logs[userID], lines...)
	return nil
}

func (m *memStore) RewriteLog(_ context.Context, userID string, lines []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[userID] = slices.Clone(lines)
	return nil
}

func (m *memStore) ReadGoal(_ context.Context, userID string) ([]model.Field, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	values, ok := m.goals[userID]
	return slices.Clone(values), ok, nil
}

func (m *memStore) WriteGoal(_ context.Context, userID string, values []model.Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeGoalErr != nil {
		return m.writeGoalErr
	}
	m.goals[userID] = slices.Clone(values)
	return nil
}

func (m *memStore) InitUser(ctx context.Context, userID string, defaults []model.Field) error {
	if _, found, _ := m.ReadGoal(ctx, userID); found {
		return nil
	}
	return m.WriteGoal(ctx, userID, defaults)
}

func (m *memStore) lines(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.logs[userID])
}

// compile-time check: memStore must satisfy repository.Store.
var _ repository.Store = (*memStore)(nil)

// ---- helpers ----

var driver = model.Principal{UserID: "driver-1"}

// fixedCalendar pins "now" to 2026-10-19 14:30:00 UTC unless moved.
func fixedCalendar() (service.Calendar, *time.Time) {
	now := time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC)
	return service.Calendar{Location: time.UTC, Now: func() time.Time { return now }}, &now
}

// referenceTrip yields 12 km, 0.5 h, 65.32 zł net and 130.64 zł/h.
func referenceTrip() model.TripInput {
	return model.TripInput{
		ApproachDistanceKm: 2,
		ApproachTimeMin:    10,
		TripDistanceKm:     10,
		TripTimeMin:        20,
		Fare:               100,
		DriverPercentage:   70,
		FuelConsumption:    6,
		FuelPrice:          6.5,
		Platform:           "Bolt",
	}
}

// slowTrip yields 15 zł/h: 7.50 zł net over 30 minutes.
func slowTrip() model.TripInput {
	return model.TripInput{
		TripTimeMin:      30,
		Fare:             7.5,
		DriverPercentage: 100,
	}
}
