package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/delang-zeta/ai-gateway/internal/infrastructure/monitoring"
	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

// RequestLogging logs one line per completed request and feeds the
// request metrics. Client rejections log at debug to keep throttling
// storms out of the operational log.
func RequestLogging(log logger.Logger, metrics *monitoring.Metrics) gin.HandlerFunc {
	log = log.WithComponent("http")

	return func(c *gin.Context) {
		started := time.Now()
		if metrics != nil {
			metrics.RequestStarted()
		}

		c.Next()

		elapsed := time.Since(started)
		status := c.Writer.Status()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		if metrics != nil {
			metrics.RequestFinished()
			metrics.ObserveRequest(endpoint, status, elapsed)
		}

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("endpoint", endpoint),
			logger.Int("status", status),
			logger.Duration("elapsed", elapsed),
			logger.String("request_id", GetRequestID(c)),
		}

		switch {
		case status >= 500:
			log.Error(c.Request.Context(), "request failed", nil, fields...)
		case status >= 400:
			log.Debug(c.Request.Context(), "request rejected", fields...)
		default:
			log.Info(c.Request.Context(), "request completed", fields...)
		}
	}
}
