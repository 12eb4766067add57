// Package handlers implements the gateway's HTTP endpoints.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/delang-zeta/ai-gateway/pkg/errors"
)

// rejectWith writes a structured rejection. Throttling rejections carry
// the Retry-After header alongside the JSON hint.
func rejectWith(c *gin.Context, govErr errors.GovError) {
	if seconds, ok := errors.RetryAfterSeconds(govErr); ok {
		c.Header("Retry-After", strconv.FormatInt(seconds, 10))
	}
	c.AbortWithStatusJSON(govErr.HTTPStatus(), errors.ToErrorResponse(govErr))
}
