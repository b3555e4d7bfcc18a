package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// StoreTimeoutMiddleware bounds every storage call made while serving a
// request. Repositories see the deadline through the request context.
func StoreTimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
