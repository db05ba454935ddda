package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-compare/internal/scheduler"
	"go.uber.org/zap"
)

// ReadinessSource reports provider reachability; *scheduler.Probe implements it.
type ReadinessSource interface {
	Ready() bool
	Statuses() map[string]scheduler.ProviderStatus
}

type HealthHandler struct {
	logger    *zap.Logger
	readiness ReadinessSource
	startTime time.Time
}

// NewHealthHandler builds the health endpoints. readiness may be nil, in which
// case the service is always ready.
func NewHealthHandler(logger *zap.Logger, readiness ReadinessSource) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		readiness: readiness,
		startTime: time.Now(),
	}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "alive",
		Uptime: time.Since(h.startTime).String(),
	})
}

func (h *HealthHandler) Readiness(c *gin.Context) {
	resp := HealthResponse{
		Status: "ready",
		Uptime: time.Since(h.startTime).String(),
	}
	if h.readiness == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.Providers = h.readiness.Statuses()
	if !h.readiness.Ready() {
		h.logger.Warn("Readiness check failed: no provider reachable")
		resp.Status = "unavailable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if h.readiness != nil && !h.readiness.Ready() {
		resp.Status = "degraded"
	}
	c.JSON(http.StatusOK, resp)
}
