package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shaygp/boxd/internal/metrics"
)

// MetricsMiddleware collects HTTP metrics for Prometheus. Paths are labelled
// by route template so ids do not explode label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		// numeric status so queries like status=~"5.." work
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(startTime).Seconds())
		if size := c.Writer.Size(); size > 0 {
			m.HTTPResponseSize.WithLabelValues(method, path, status).Observe(float64(size))
		}
	}
}
