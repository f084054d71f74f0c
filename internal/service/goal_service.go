package service

import (
	"context"
	"fmt"
	"math"

	"github.com/nurpe/ride-profit/internal/codec"
	"github.com/nurpe/ride-profit/internal/goal"
	"github.com/nurpe/ride-profit/internal/model"
	"github.com/nurpe/ride-profit/internal/repository"
)

type GoalService struct {
	logs        repository.LogStore
	goals       repository.GoalStore
	provisioner repository.Provisioner
	calendar    Calendar
}

type GoalStatus struct {
	Day      string             `json:"day"`
	Goal     model.Goal         `json:"goal"`
	Progress model.GoalProgress `json:"progress"`
}

func NewGoalService(store repository.Store, calendar Calendar) *GoalService {
	return &GoalService{
		logs:        store,
		goals:       store,
		provisioner: store,
		calendar:    calendar,
	}
}

// Provision creates the user's empty log and default goal. Existing data is
// left alone, so calling it twice is harmless.
func (s *GoalService) Provision(ctx context.Context, principal model.Principal) error {
	if err := s.provisioner.InitUser(ctx, principal.UserID, goal.ToValues(model.DefaultGoal())); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *GoalService) Get(ctx context.Context, principal model.Principal) (model.Goal, error) {
	return loadGoal(ctx, s.goals, principal.UserID)
}

// Update replaces the stored goal pairs.
func (s *GoalService) Update(ctx context.Context, principal model.Principal, g model.Goal) (model.Goal, error) {
	if err := validateGoalValue(goal.KeyDailyTarget, g.DailyTarget); err != nil {
		return model.Goal{}, err
	}
	if err := validateGoalValue(goal.KeyMinHourlyRate, g.MinHourlyRate); err != nil {
		return model.Goal{}, err
	}
	if err := s.goals.WriteGoal(ctx, principal.UserID, goal.ToValues(g)); err != nil {
		return model.Goal{}, storeError(err)
	}
	return goal.FromValues(goal.ToValues(g)), nil
}

// Progress evaluates today's earnings against the goal.
func (s *GoalService) Progress(ctx context.Context, principal model.Principal) (*GoalStatus, error) {
	g, err := loadGoal(ctx, s.goals, principal.UserID)
	if err != nil {
		return nil, err
	}
	records, err := loadRecords(ctx, s.logs, principal.UserID, s.calendar.location())
	if err != nil {
		return nil, err
	}
	day := s.calendar.now().Format(codec.DayLayout)
	return &GoalStatus{
		Day:      day,
		Goal:     g,
		Progress: goal.Progress(records, day, g),
	}, nil
}

func validateGoalValue(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidInput, name)
	}
	return nil
}
