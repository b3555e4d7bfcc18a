package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shaygp/boxd/internal/auth"
	"github.com/shaygp/boxd/internal/logger"
	"github.com/shaygp/boxd/internal/util"
)

// TokenValidator is what the auth middleware needs from auth.Service
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// AuthMiddleware requires a valid bearer token and stores its user id
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, validator) {
			util.RespondUnauthorized(c, "valid bearer token required")
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware stores the user id when a valid token is sent and
// lets anonymous requests through
func OptionalAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, validator)
		c.Next()
	}
}

func authenticate(c *gin.Context, validator TokenValidator) bool {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return false
	}

	claims, err := validator.ValidateToken(token)
	if err != nil {
		logger.Log.Debug("Rejected bearer token", logger.WithIP(c.ClientIP()))
		return false
	}
	c.Set(util.ContextUserID, claims.UserID)
	return true
}
