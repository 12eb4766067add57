package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/delang-zeta/ai-gateway/pkg/constants"
	"github.com/delang-zeta/ai-gateway/pkg/errors"
	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

// Recovery converts a handler panic into a generic 500 response. The
// panic value is logged with the correlation id; the response body never
// leaks internals.
func Recovery(log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")

	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error(c.Request.Context(), "handler panic", nil,
					logger.Any("panic", recovered),
					logger.String("request_id", GetRequestID(c)),
					logger.String("endpoint", c.FullPath()))

				c.AbortWithStatusJSON(http.StatusInternalServerError, &errors.ErrorResponse{
					Error: "Internal server error",
					Code:  string(constants.ErrCodeServerError),
				})
			}
		}()
		c.Next()
	}
}
