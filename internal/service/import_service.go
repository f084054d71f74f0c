package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/ride-profit/internal/calculator"
	"github.com/nurpe/ride-profit/internal/codec"
	"github.com/nurpe/ride-profit/internal/model"
	"github.com/nurpe/ride-profit/internal/repository"
	"github.com/nurpe/ride-profit/internal/ridehail"
)

// TripSource is the external ride-hailing API.
type TripSource interface {
	Trips(ctx context.Context, from, to time.Time, limit int) ([]ridehail.Trip, error)
	Profile(ctx context.Context) (*ridehail.Profile, error)
}

type ImportService struct {
	source   TripSource
	logs     repository.LogStore
	locks    *UserLocks
	calendar Calendar
	platform string
	timeout  time.Duration
	log      zerolog.Logger
}

// ImportRequest carries the window to fetch and the cost parameters the API
// does not know. A nil DriverPercentage means the whole fare goes to the
// driver; zero fuel values defer the fuel cost.
type ImportRequest struct {
	From             *time.Time
	To               *time.Time
	Limit            int
	DriverPercentage *float64
	FuelConsumption  float64
	FuelPrice        float64
}

type ImportResult struct {
	Success   bool                 `json:"success"`
	Message   string               `json:"message"`
	Fetched   int                  `json:"fetched"`
	Imported  int                  `json:"imported"`
	Skipped   int                  `json:"skipped"`
	Summaries []model.DailySummary `json:"daily_summaries,omitempty"`
}

type ConnectionStatus struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	DriverName string `json:"driver_name,omitempty"`
}

const (
	msgNotConfigured = "Brak kluczy API. Ustaw RIDEHAIL_CLIENT_ID i RIDEHAIL_CLIENT_SECRET lub RIDEHAIL_SERVER_TOKEN."
	msgFetchFailed   = "Nie udało się pobrać kursów z API."
	msgConnected     = "Połączenie z API działa!"
	msgConnectFailed = "Nie udało się połączyć z API."
	unknownDriver    = "Nieznany"
)

// NewImportService accepts a nil source when no credentials are configured;
// every call then answers with an informational message.
func NewImportService(
	source TripSource,
	logs repository.LogStore,
	locks *UserLocks,
	calendar Calendar,
	platform string,
	timeout time.Duration,
	log zerolog.Logger,
) *ImportService {
	return &ImportService{
		source:   source,
		logs:     logs,
		locks:    locks,
		calendar: calendar,
		platform: platform,
		timeout:  timeout,
		log:      log,
	}
}

// Import fetches trips from the API and appends those not yet in the log.
// Failures of the API are reported in the result, never as an error.
func (s *ImportService) Import(ctx context.Context, principal model.Principal, req ImportRequest) (*ImportResult, error) {
	percentage := 100.0
	if req.DriverPercentage != nil {
		percentage = *req.DriverPercentage
	}
	to := s.calendar.now()
	if req.To != nil {
		to = *req.To
	}
	from := to.Add(-ridehail.DefaultWindow)
	if req.From != nil {
		from = *req.From
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}
	if req.Limit < 0 || req.Limit > ridehail.DefaultLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, ridehail.DefaultLimit)
	}
	params := model.TripInput{DriverPercentage: percentage, FuelConsumption: req.FuelConsumption, FuelPrice: req.FuelPrice}
	if err := calculator.Validate(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if s.source == nil {
		return &ImportResult{Message: msgNotConfigured}, nil
	}

	trips, err := s.fetch(ctx, from, to, req.Limit)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", principal.UserID).Msg("ride-hailing import failed")
		return &ImportResult{Message: msgFetchFailed}, nil
	}

	unlock := s.locks.Lock(principal.UserID)
	defer unlock()

	lines, err := s.logs.ReadLog(ctx, principal.UserID)
	if err != nil {
		return nil, storeError(err)
	}
	seen := make(map[string]struct{})
	for _, r := range codec.Records(lines, s.calendar.location()) {
		if r.ExternalID != "" {
			seen[r.ExternalID] = struct{}{}
		}
	}

	slices.SortStableFunc(trips, func(a, b ridehail.Trip) int { return cmp.Compare(a.StartTime, b.StartTime) })

	result := &ImportResult{Success: true, Fetched: len(trips)}
	var (
		batch []string
		days  []string
	)
	for _, trip := range trips {
		if _, dup := seen[trip.TripID]; dup && trip.TripID != "" {
			result.Skipped++
			continue
		}
		converted := ridehail.Convert(trip, s.calendar.location(), s.platform)
		input := converted.Input
		input.DriverPercentage = percentage
		input.FuelConsumption = req.FuelConsumption
		input.FuelPrice = req.FuelPrice
		if err := calculator.Validate(input); err != nil {
			result.Skipped++
			continue
		}

		calc := calculator.Calculate(input)
		fields := codec.TripFields(input, calc)
		if converted.ExternalID != "" {
			fields = codec.WithExternalID(fields, converted.ExternalID)
			seen[converted.ExternalID] = struct{}{}
		}
		batch = append(batch, codec.EncodeBlock(converted.StartedAt, fields)...)

		day := converted.StartedAt.Format(codec.DayLayout)
		if !slices.Contains(days, day) {
			days = append(days, day)
		}
		result.Imported++
	}

	if result.Imported > 0 {
		if err := s.logs.AppendLog(ctx, principal.UserID, batch); err != nil {
			return nil, storeError(err)
		}
		_, summaries, err := refreshSummaries(ctx, s.logs, principal.UserID, days)
		if err != nil {
			return nil, err
		}
		result.Summaries = summaries
	}

	result.Message = fmt.Sprintf("Zaimportowano %d kursów, pominięto %d.", result.Imported, result.Skipped)
	return result, nil
}

// Status checks the credentials by loading the driver profile.
func (s *ImportService) Status(ctx context.Context) *ConnectionStatus {
	if s.source == nil {
		return &ConnectionStatus{Message: msgNotConfigured}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	profile, err := s.source.Profile(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("ride-hailing connection test failed")
		return &ConnectionStatus{Message: msgConnectFailed}
	}

	name := profile.FirstName
	if name == "" {
		name = unknownDriver
	}
	return &ConnectionStatus{Success: true, Message: msgConnected, DriverName: name}
}

func (s *ImportService) fetch(ctx context.Context, from, to time.Time, limit int) ([]ridehail.Trip, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	trips, err := s.source.Trips(ctx, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return trips, nil
}

func (s *ImportService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
