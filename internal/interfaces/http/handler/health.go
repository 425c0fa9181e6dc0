package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Pinger checks that a backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and readiness
type HealthHandler struct {
	checks  map[string]Pinger
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. checks maps a component
// name such as "database" to its pinger.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// HealthResponse is the body of the health endpoints
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// Live godoc
//
//	@Summary	Liveness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/health [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready godoc
//
//	@Summary	Readiness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Failure	503	{object}	HealthResponse
//	@Router		/health/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Components: make(map[string]string, len(h.checks))}
	status := http.StatusOK
	for name, p := range h.checks {
		if err := p.PingContext(ctx); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.String("component", name), zap.Error(err))
			resp.Components[name] = "down"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = "up"
	}
	c.JSON(status, resp)
}
