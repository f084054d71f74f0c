package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/nurpe/ride-profit/internal/auth"
	"github.com/nurpe/ride-profit/internal/config"
	"github.com/nurpe/ride-profit/internal/db"
	"github.com/nurpe/ride-profit/internal/excel"
	httphandler "github.com/nurpe/ride-profit/internal/http"
	"github.com/nurpe/ride-profit/internal/http/middleware"
	"github.com/nurpe/ride-profit/internal/logger"
	"github.com/nurpe/ride-profit/internal/pdf"
	"github.com/nurpe/ride-profit/internal/repository"
	"github.com/nurpe/ride-profit/internal/ridehail"
	"github.com/nurpe/ride-profit/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	store, err := newStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init storage")
	}

	var source service.TripSource
	if cfg.RideHail.Enabled() {
		client, err := ridehail.NewClient(cfg.RideHail)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init ride-hailing client")
		}
		source = client
	} else {
		log.Warn().Msg("ride-hailing credentials not set, import disabled")
	}

	calendar := service.NewCalendar(cfg.Location)
	locks := service.NewUserLocks()

	tripService := service.NewTripService(store, store, locks, calendar)
	goalService := service.NewGoalService(store, calendar)
	statsService := service.NewStatsService(store, calendar)
	reportService := service.NewReportService(store, excel.NewGenerator(), pdf.NewGenerator(), calendar)
	importService := service.NewImportService(
		source,
		store,
		locks,
		calendar,
		cfg.RideHail.Platform,
		cfg.RideHail.Timeout,
		log,
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(tripService, goalService, statsService, reportService, importService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Str("storage", cfg.Storage.Driver).Msg("starting ride-profit service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func newStore(cfg *config.Config, log zerolog.Logger) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		database, err := db.New(cfg, log)
		if err != nil {
			return nil, err
		}
		return repository.NewPostgresStore(database), nil
	default:
		if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return repository.NewFileStore(cfg.Storage.DataDir), nil
	}
}
