package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/delang-zeta/ai-gateway/internal/application/aiservice"
	"github.com/delang-zeta/ai-gateway/internal/domain/service"
	"github.com/delang-zeta/ai-gateway/internal/infrastructure/results"
)

// HealthHandler reports gateway and per-service health. A degraded
// dependency maps to 503 so load balancers rotate the instance out.
type HealthHandler struct {
	ai      *aiservice.Service
	cache   *results.RedisCache
	breaker service.CircuitBreaker
	started time.Time
}

// NewHealthHandler creates the health endpoint handler.
func NewHealthHandler(ai *aiservice.Service, cache *results.RedisCache, breaker service.CircuitBreaker) *HealthHandler {
	return &HealthHandler{
		ai:      ai,
		cache:   cache,
		breaker: breaker,
		started: time.Now(),
	}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if h.cache != nil {
		if err := h.cache.Ping(c.Request.Context()); err != nil {
			checks["resultsCache"] = "unreachable"
			healthy = false
		} else {
			checks["resultsCache"] = "ok"
		}
	}

	if h.breaker.Open() {
		checks["chainIntegration"] = "circuit_open"
		healthy = false
	} else {
		checks["chainIntegration"] = "ok"
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":        status,
		"uptimeSeconds": int64(time.Since(h.started).Seconds()),
		"checks":        checks,
	})
}

// GeminiHealth handles GET /gemini/health.
func (h *HealthHandler) GeminiHealth(c *gin.Context) {
	if err := h.ai.Healthy(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  "verification credentials unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
