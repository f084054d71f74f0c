package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nurpe/ride-profit/internal/calculator"
	"github.com/nurpe/ride-profit/internal/codec"
	"github.com/nurpe/ride-profit/internal/goal"
	"github.com/nurpe/ride-profit/internal/model"
	"github.com/nurpe/ride-profit/internal/repository"
)

type TripService struct {
	logs     repository.LogStore
	goals    repository.GoalStore
	locks    *UserLocks
	calendar Calendar
}

type TripResult struct {
	Timestamp     time.Time           `json:"timestamp"`
	Platform      string              `json:"platform"`
	Calculation   model.Calculation   `json:"calculation"`
	DailySummary  *model.DailySummary `json:"daily_summary"`
	Goal          model.Goal          `json:"goal"`
	Progress      model.GoalProgress  `json:"progress"`
	Notifications []model.Notice      `json:"notifications"`
}

func NewTripService(logs repository.LogStore, goals repository.GoalStore, locks *UserLocks, calendar Calendar) *TripService {
	return &TripService{
		logs:     logs,
		goals:    goals,
		locks:    locks,
		calendar: calendar,
	}
}

// Preview computes the metrics of a trip without touching the log.
func (s *TripService) Preview(input model.TripInput) (*model.Calculation, error) {
	input, err := prepareInput(input)
	if err != nil {
		return nil, err
	}
	calc := calculator.Calculate(input)
	return &calc, nil
}

// Calculate records a trip: the block is appended, today's summary is
// refreshed and the goal is evaluated against the updated log.
func (s *TripService) Calculate(ctx context.Context, principal model.Principal, input model.TripInput) (*TripResult, error) {
	input, err := prepareInput(input)
	if err != nil {
		return nil, err
	}
	calc := calculator.Calculate(input)

	unlock := s.locks.Lock(principal.UserID)
	defer unlock()

	now := s.calendar.now()
	day := now.Format(codec.DayLayout)
	block := codec.EncodeBlock(now, codec.TripFields(input, calc))
	if err := s.logs.AppendLog(ctx, principal.UserID, block); err != nil {
		return nil, storeError(err)
	}

	lines, summaries, err := refreshSummaries(ctx, s.logs, principal.UserID, []string{day})
	if err != nil {
		return nil, err
	}

	g, err := loadGoal(ctx, s.goals, principal.UserID)
	if err != nil {
		return nil, err
	}
	progress := goal.Progress(codec.Records(lines, s.calendar.location()), day, g)

	result := &TripResult{
		Timestamp:     now,
		Platform:      input.Platform,
		Calculation:   calc,
		Goal:          g,
		Progress:      progress,
		Notifications: goal.Notifications(calc.HourlyRate, progress, g.MinHourlyRate),
	}
	if len(summaries) > 0 {
		result.DailySummary = &summaries[0]
	}
	return result, nil
}

// History returns the decoded records in log order.
func (s *TripService) History(ctx context.Context, principal model.Principal) ([]model.TripRecord, error) {
	return loadRecords(ctx, s.logs, principal.UserID, s.calendar.location())
}

func prepareInput(input model.TripInput) (model.TripInput, error) {
	input.Platform = strings.TrimSpace(input.Platform)
	if input.Platform == "" {
		input.Platform = model.DefaultPlatform
	}
	if err := calculator.Validate(input); err != nil {
		if errors.Is(err, calculator.ErrInvalidInput) {
			return input, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return input, err
	}
	return input, nil
}
