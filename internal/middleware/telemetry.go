package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware wraps otelgin and adds boxd attributes to the request span
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	base := otelgin.Middleware(serviceName)

	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if userID := c.GetString("user_id"); userID != "" {
			span.SetAttributes(attribute.String("user.id", userID))
		}
		if limit := c.Query("limit"); limit != "" {
			span.SetAttributes(attribute.String("query.limit", limit))
		}
		if c.Query("before") != "" {
			span.SetAttributes(attribute.Bool("query.paged", true))
		}
		for _, ginErr := range c.Errors {
			if ginErr.Err != nil {
				span.RecordError(ginErr.Err)
				span.SetStatus(codes.Error, ginErr.Error())
			}
		}
	}
}
