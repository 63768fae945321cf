// Package server exposes the cached data over a small JSON API. It is the
// presentation boundary: every handler maps missing data to a degraded
// response, never a crash.
package server

import (
	"context"
	"time"

	"nisabd/internal/cache"
	"nisabd/pkg/storage/postgres"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	manager    *cache.Manager
	redis      *cache.RedisStore // nil when running without Redis
	archive    *postgres.Client  // nil when running without the archive
	cronSecret string
	logger     *zap.Logger
}

// New builds the gin engine with all routes attached.
func New(manager *cache.Manager, redis *cache.RedisStore, archive *postgres.Client, cronSecret string, logger *zap.Logger) *gin.Engine {
	h := &Handler{
		manager:    manager,
		redis:      redis,
		archive:    archive,
		cronSecret: cronSecret,
		logger:     logger,
	}

	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/nisab", h.GetNisab)
		api.GET("/exchange-rates", h.GetExchangeRates)
		api.GET("/historical", h.GetHistorical)

		// External schedulers hit this; it must present the shared secret.
		api.GET("/cron/daily-update", h.DailyUpdate)
	}

	r.GET("/health", h.Health)

	return r
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := gin.H{"status": "ok"}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			status["redis"] = "unreachable"
		} else {
			status["redis"] = "ok"
		}
	} else {
		status["redis"] = "disabled"
	}

	if h.archive != nil {
		if h.archive.IsHealthy(ctx) {
			status["postgres"] = "ok"
		} else {
			status["postgres"] = "unreachable"
		}
	} else {
		status["postgres"] = "disabled"
	}

	c.JSON(200, status)
}
