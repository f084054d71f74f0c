// Package service orchestrates the calculator, the trip log and the derived
// views for one authenticated user at a time.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nurpe/ride-profit/internal/codec"
	"github.com/nurpe/ride-profit/internal/goal"
	"github.com/nurpe/ride-profit/internal/model"
	"github.com/nurpe/ride-profit/internal/repository"
	"github.com/nurpe/ride-profit/internal/summary"
)

// Calendar decides what "now" and "today" mean for the log.
type Calendar struct {
	Location *time.Location
	Now      func() time.Time
}

func NewCalendar(loc *time.Location) Calendar {
	return Calendar{Location: loc, Now: time.Now}
}

func (c Calendar) now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	clock := c.Now
	if clock == nil {
		clock = time.Now
	}
	return clock().In(loc).Truncate(time.Second)
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c Calendar) today() string {
	return c.now().Format(codec.DayLayout)
}

// UserLocks serialises log mutations per user within this process.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *UserLocks) Lock(userID string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func storeError(err error) error {
	if errors.Is(err, repository.ErrInvalidUserID) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return err
}

func loadRecords(ctx context.Context, logs repository.LogStore, userID string, loc *time.Location) ([]model.TripRecord, error) {
	lines, err := logs.ReadLog(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	return codec.Records(lines, loc), nil
}

func loadGoal(ctx context.Context, goals repository.GoalStore, userID string) (model.Goal, error) {
	values, found, err := goals.ReadGoal(ctx, userID)
	if err != nil {
		return model.Goal{}, storeError(err)
	}
	if !found {
		return model.DefaultGoal(), nil
	}
	return goal.FromValues(values), nil
}

// refreshSummaries recomputes the summary of every listed day and rewrites
// the log once if any of them changed. It returns the resulting lines.
func refreshSummaries(ctx context.Context, logs repository.LogStore, userID string, days []string) ([]string, []model.DailySummary, error) {
	lines, err := logs.ReadLog(ctx, userID)
	if err != nil {
		return nil, nil, storeError(err)
	}

	var (
		summaries []model.DailySummary
		changed   bool
	)
	for _, day := range days {
		out, s, ok := summary.Update(lines, day)
		if !ok {
			continue
		}
		lines = out
		summaries = append(summaries, s)
		changed = true
	}
	if changed {
		if err := logs.RewriteLog(ctx, userID, lines); err != nil {
			return nil, nil, storeError(err)
		}
	}
	return lines, summaries, nil
}
