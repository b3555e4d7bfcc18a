package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shaygp/boxd/internal/logger"
	"go.uber.org/zap"
)

// RequestIDMiddleware adds a unique request ID to each request.
// An incoming X-Request-ID header is reused; otherwise a new UUID is generated.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		logger.Log.Debug("request started",
			logger.WithRequestID(requestID),
			logger.WithIP(c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)

		c.Next()
	}
}
