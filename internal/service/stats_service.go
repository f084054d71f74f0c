package service

import (
	"context"

	"github.com/nurpe/ride-profit/internal/model"
	"github.com/nurpe/ride-profit/internal/repository"
	"github.com/nurpe/ride-profit/internal/stats"
)

type StatsService struct {
	logs     repository.LogStore
	calendar Calendar
}

type PlatformStats struct {
	model.PlatformView
	Chart model.Series `json:"chart"`
}

type HeatmapStats struct {
	model.Heatmap
	Chart model.Series `json:"chart"`
}

type ForecastStats struct {
	model.Forecast
	Chart model.Series `json:"chart"`
}

func NewStatsService(logs repository.LogStore, calendar Calendar) *StatsService {
	return &StatsService{logs: logs, calendar: calendar}
}

func (s *StatsService) Dashboard(ctx context.Context, principal model.Principal) (*model.Dashboard, error) {
	records, err := s.records(ctx, principal)
	if err != nil {
		return nil, err
	}
	d := stats.Dashboard(records)
	return &d, nil
}

func (s *StatsService) Platforms(ctx context.Context, principal model.Principal) (*PlatformStats, error) {
	records, err := s.records(ctx, principal)
	if err != nil {
		return nil, err
	}
	view := stats.PlatformView(records)
	return &PlatformStats{PlatformView: view, Chart: stats.PlatformChart(view)}, nil
}

func (s *StatsService) Heatmap(ctx context.Context, principal model.Principal) (*HeatmapStats, error) {
	records, err := s.records(ctx, principal)
	if err != nil {
		return nil, err
	}
	hm := stats.Heatmap(records)
	return &HeatmapStats{Heatmap: hm, Chart: stats.HeatmapChart(hm)}, nil
}

func (s *StatsService) Forecast(ctx context.Context, principal model.Principal) (*ForecastStats, error) {
	records, err := s.records(ctx, principal)
	if err != nil {
		return nil, err
	}
	f := stats.Forecast(records, s.calendar.now())
	return &ForecastStats{Forecast: f, Chart: stats.ForecastChart(f)}, nil
}

func (s *StatsService) Distance(ctx context.Context, principal model.Principal) (*model.DistanceReport, error) {
	records, err := s.records(ctx, principal)
	if err != nil {
		return nil, err
	}
	report := stats.Distance(records, s.calendar.now())
	return &report, nil
}

// records loads the log and reports ErrNoData while it holds no trips.
func (s *StatsService) records(ctx context.Context, principal model.Principal) ([]model.TripRecord, error) {
	records, err := loadRecords(ctx, s.logs, principal.UserID, s.calendar.location())
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}
	return records, nil
}
