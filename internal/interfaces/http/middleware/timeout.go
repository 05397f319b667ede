package middleware

import (
	"context"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout bounds the request context. Long-lived streams listed in skip keep
// the client's context.
func Timeout(timeout time.Duration, skip ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 || slices.Contains(skip, c.FullPath()) {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
