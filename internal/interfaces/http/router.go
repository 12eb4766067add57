// Package http assembles the gin engine and HTTP server of the gateway.
package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/delang-zeta/ai-gateway/internal/config"
	"github.com/delang-zeta/ai-gateway/internal/infrastructure/monitoring"
	"github.com/delang-zeta/ai-gateway/internal/interfaces/http/handlers"
	"github.com/delang-zeta/ai-gateway/internal/interfaces/http/middleware"
	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

// Handlers groups the endpoint handlers the router mounts.
type Handlers struct {
	Gateway *handlers.GatewayHandler
	Results *handlers.ResultsHandler
	Health  *handlers.HealthHandler
}

// NewRouter builds the fully wired gin engine.
func NewRouter(cfg config.ServerConfig, h Handlers, metrics *monitoring.Metrics, log logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogging(log, metrics))

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-ID")
	engine.Use(cors.New(corsCfg))

	engine.POST("/gemini/verify", h.Gateway.Verify)
	engine.POST("/translate", h.Gateway.Translate)
	engine.POST("/speech-to-text", h.Gateway.Transcribe)

	engine.POST("/ai-results", h.Results.Process)
	engine.GET("/ai-results/stats", h.Results.Stats)
	engine.GET("/ai-results/:submissionId", h.Results.Status)

	engine.GET("/health", h.Health.Health)
	engine.GET("/gemini/health", h.Health.GeminiHealth)

	if metrics != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
			metrics.Registry(),
			promhttp.HandlerOpts{},
		)))
	}
	pprof.Register(engine)

	return engine
}

// NewServer wraps the engine in an http.Server with the configured timeouts.
func NewServer(cfg config.ServerConfig, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}
}
