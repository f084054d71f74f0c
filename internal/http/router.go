package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/ride-profit/internal/config"
	"github.com/nurpe/ride-profit/internal/http/middleware"
)

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, cfg *config.Config) *gin.Engine {
	if !strings.EqualFold(cfg.Environment, "development") {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(handler.log),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	handler.Register(router, authMiddleware, middleware.RateLimit(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst))
	return router
}
