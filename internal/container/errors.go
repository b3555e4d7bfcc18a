package container

import (
	"fmt"
	"strings"
)

// InitializationError indicates that required dependencies are missing
type InitializationError struct {
	Message     string
	MissingDeps []string
}

func NewInitializationError(message string, missingDeps []string) *InitializationError {
	return &InitializationError{Message: message, MissingDeps: missingDeps}
}

func (e *InitializationError) Error() string {
	if len(e.MissingDeps) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.MissingDeps, ", "))
}
