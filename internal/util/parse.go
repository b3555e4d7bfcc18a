package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// QueryInt reads an integer query parameter
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	return ParseInt(c.Query(key), defaultValue)
}
