package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/ride-profit/internal/http/middleware"
	"github.com/nurpe/ride-profit/internal/model"
	"github.com/nurpe/ride-profit/internal/service"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

type Handler struct {
	trips   *service.TripService
	goals   *service.GoalService
	stats   *service.StatsService
	reports *service.ReportService
	imports *service.ImportService
	log     zerolog.Logger
}

func NewHandler(
	trips *service.TripService,
	goals *service.GoalService,
	stats *service.StatsService,
	reports *service.ReportService,
	imports *service.ImportService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		trips:   trips,
		goals:   goals,
		stats:   stats,
		reports: reports,
		imports: imports,
		log:     log,
	}
}

// Register mounts the API behind authMiddleware, /healthz aside. importLimiter guards
// the calls that reach the ride-hailing API.
func (h *Handler) Register(router *gin.Engine, authMiddleware, importLimiter gin.HandlerFunc) {
	router.GET("/healthz", h.health)

	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/account", h.provision)

	protected.POST("/trips", h.createTrip)
	protected.POST("/trips/preview", h.previewTrip)
	protected.GET("/trips", h.listTrips)

	protected.GET("/goals", h.getGoal)
	protected.PUT("/goals", h.updateGoal)
	protected.GET("/goals/progress", h.goalProgress)

	protected.GET("/stats/dashboard", h.dashboard)
	protected.GET("/stats/platforms", h.platforms)
	protected.GET("/stats/heatmap", h.heatmap)
	protected.GET("/stats/forecast", h.forecast)
	protected.GET("/stats/distance", h.distance)

	protected.GET("/reports/period", h.periodReport)
	protected.GET("/reports/period/xlsx", h.exportPeriodExcel)
	protected.GET("/reports/period/pdf", h.exportPeriodPDF)

	ridehail := protected.Group("/integrations/ridehail")
	ridehail.Use(importLimiter)
	ridehail.POST("/import", h.importTrips)
	ridehail.GET("/status", h.ridehailStatus)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) provision(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	if err := h.goals.Provision(c.Request.Context(), principal); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": principal.UserID})
}

type tripRequest struct {
	ApproachDistance *float64 `json:"approach_distance" binding:"required"`
	ApproachTime     *float64 `json:"approach_time" binding:"required"`
	TripDistance     *float64 `json:"trip_distance" binding:"required"`
	TripTime         *float64 `json:"trip_time" binding:"required"`
	Fare             *float64 `json:"fare" binding:"required"`
	DriverPercentage *float64 `json:"driver_percentage" binding:"required"`
	FuelConsumption  *float64 `json:"fuel_consumption" binding:"required"`
	FuelPrice        *float64 `json:"fuel_price" binding:"required"`
	Platform         string   `json:"platform"`
}

func (r tripRequest) input() model.TripInput {
	return model.TripInput{
		ApproachDistanceKm: *r.ApproachDistance,
		ApproachTimeMin:    *r.ApproachTime,
		TripDistanceKm:     *r.TripDistance,
		TripTimeMin:        *r.TripTime,
		Fare:               *r.Fare,
		DriverPercentage:   *r.DriverPercentage,
		FuelConsumption:    *r.FuelConsumption,
		FuelPrice:          *r.FuelPrice,
		Platform:           r.Platform,
	}
}

func (h *Handler) createTrip(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req tripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.trips.Calculate(c.Request.Context(), principal, req.input())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) previewTrip(c *gin.Context) {
	if _, ok := principalOrAbort(c); !ok {
		return
	}
	var req tripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	calc, err := h.trips.Preview(req.input())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, calc)
}

func (h *Handler) listTrips(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	records, err := h.trips.History(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": records})
}

type goalRequest struct {
	DailyTarget   *float64 `json:"daily_target" binding:"required"`
	MinHourlyRate *float64 `json:"min_hourly_rate" binding:"required"`
}

func (h *Handler) getGoal(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	g, err := h.goals.Get(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) updateGoal(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := h.goals.Update(c.Request.Context(), principal, model.Goal{
		DailyTarget:   *req.DailyTarget,
		MinHourlyRate: *req.MinHourlyRate,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) goalProgress(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	status, err := h.goals.Progress(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) dashboard(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	respond(c, h, func() (any, error) { return h.stats.Dashboard(c.Request.Context(), principal) })
}

func (h *Handler) platforms(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	respond(c, h, func() (any, error) { return h.stats.Platforms(c.Request.Context(), principal) })
}

func (h *Handler) heatmap(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	respond(c, h, func() (any, error) { return h.stats.Heatmap(c.Request.Context(), principal) })
}

func (h *Handler) forecast(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	respond(c, h, func() (any, error) { return h.stats.Forecast(c.Request.Context(), principal) })
}

func (h *Handler) distance(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	respond(c, h, func() (any, error) { return h.stats.Distance(c.Request.Context(), principal) })
}

func (h *Handler) periodReport(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	month := strings.TrimSpace(c.Query("month"))
	respond(c, h, func() (any, error) { return h.reports.Period(c.Request.Context(), principal, month) })
}

func (h *Handler) exportPeriodExcel(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	result, err := h.reports.PeriodExcel(c.Request.Context(), principal, strings.TrimSpace(c.Query("month")))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentTypeXLSX, result.Content)
}

func (h *Handler) exportPeriodPDF(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	result, err := h.reports.PeriodPDF(c.Request.Context(), principal, strings.TrimSpace(c.Query("month")))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentTypePDF, result.Content)
}

type importRequest struct {
	From             string   `json:"from"`
	To               string   `json:"to"`
	Limit            int      `json:"limit"`
	DriverPercentage *float64 `json:"driver_percentage"`
	FuelConsumption  float64  `json:"fuel_consumption"`
	FuelPrice        float64  `json:"fuel_price"`
}

func (h *Handler) importTrips(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.ImportRequest{
		Limit:            req.Limit,
		DriverPercentage: req.DriverPercentage,
		FuelConsumption:  req.FuelConsumption,
		FuelPrice:        req.FuelPrice,
	}
	if req.From != "" {
		from, err := parseDate(req.From)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
			return
		}
		input.From = &from
	}
	if req.To != "" {
		to, err := parseDate(req.To)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
			return
		}
		input.To = &to
	}

	respond(c, h, func() (any, error) { return h.imports.Import(c.Request.Context(), principal, input) })
}

func (h *Handler) ridehailStatus(c *gin.Context) {
	if _, ok := principalOrAbort(c); !ok {
		return
	}
	c.JSON(http.StatusOK, h.imports.Status(c.Request.Context()))
}

func respond(c *gin.Context, h *Handler, fn func() (any, error)) {
	result, err := fn()
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func principalOrAbort(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
	}
	return principal, ok
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoData):
		c.JSON(http.StatusOK, gin.H{"error": service.ErrNoData.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
