// Package middleware provides the gin middleware chain of the gateway.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/delang-zeta/ai-gateway/pkg/constants"
)

// RequestID assigns every request a correlation id. An inbound
// X-Request-ID is honored so ids survive hops through upstream proxies;
// otherwise a fresh UUID is minted. The id is echoed on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(string(constants.ContextKeyRequestID), requestID)
		c.Header(constants.HeaderRequestID, requestID)
		c.Next()
	}
}

// GetRequestID returns the correlation id assigned to this request.
func GetRequestID(c *gin.Context) string {
	if v, exists := c.Get(string(constants.ContextKeyRequestID)); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
