package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/logger"
	"github.com/shaygp/boxd/internal/metrics"
	"github.com/shaygp/boxd/internal/pipeline"
	"go.uber.org/zap"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// RespondWithAPIError sends a structured API error response
func RespondWithAPIError(c *gin.Context, apiErr *errors.APIError) {
	fields := []zap.Field{
		zap.String("code", string(apiErr.Code)),
		zap.String("message", apiErr.Message),
		zap.Int("status", apiErr.Status),
	}
	if apiErr.Field != "" {
		fields = append(fields, zap.String("field", apiErr.Field))
	}
	if requestID := c.GetString("request_id"); requestID != "" {
		fields = append(fields, logger.WithRequestID(requestID))
	}
	if apiErr.Err != nil {
		fields = append(fields, zap.Error(apiErr.Err))
	}

	if apiErr.Status >= http.StatusInternalServerError {
		logger.Log.Error("API error", fields...)
	} else if apiErr.Status >= http.StatusBadRequest {
		logger.Log.Warn("API error", fields...)
	}
	metrics.Get().ErrorsTotal.WithLabelValues(string(apiErr.Code)).Inc()

	c.AbortWithStatusJSON(apiErr.Status, ErrorResponse{
		Code:    string(apiErr.Code),
		Message: apiErr.Message,
		Field:   apiErr.Field,
		Details: apiErr.Details,
	})
}

// RespondWithError maps any error onto the API taxonomy and sends it
func RespondWithError(c *gin.Context, err error) {
	RespondWithAPIError(c, errors.AsAPIError(err))
}

// RespondAction sends the result of an action. A degraded success is still
// a success: the body carries the result plus the step that did not happen.
func RespondAction(c *gin.Context, status int, result any, err error) {
	if err == nil {
		c.JSON(status, gin.H{"result": result})
		return
	}
	se, ok := pipeline.AsStepError(err)
	if !ok {
		RespondWithError(c, err)
		return
	}
	c.JSON(status, gin.H{
		"result":      result,
		"degraded":    true,
		"failed_step": se.Step,
		"error":       errors.CodeOf(se.Err),
	})
}

// RespondUnauthorized sends a 401 Unauthorized response
func RespondUnauthorized(c *gin.Context, message ...string) {
	msg := ""
	if len(message) > 0 {
		msg = message[0]
	}
	RespondWithAPIError(c, errors.Unauthenticated(msg))
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.BadRequest(message))
}
