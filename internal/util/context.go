package util

import (
	"github.com/gin-gonic/gin"
)

// ContextUserID is the gin context key the auth middleware sets
const ContextUserID = "user_id"

// GetUserIDFromContext extracts the user ID from the Gin context.
// If the user is not authenticated, it responds with 401 and returns false.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextUserID)
	if userID == "" {
		RespondUnauthorized(c)
		return "", false
	}
	return userID, true
}

// OptionalUserID returns the caller's id, or "" on public routes
func OptionalUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
