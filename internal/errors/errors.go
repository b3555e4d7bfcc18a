package errors

import (
	"context"
	stderrors "errors"
	"fmt"
)

// APIError is the error type every boxd package returns for classified
// failures. Status is derived from Code and only used at the HTTP boundary.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Details string    `json:"details,omitempty"`
	Status  int       `json:"-"`

	// Err is the underlying cause, kept out of responses
	Err error `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field: %s)", msg, e.Field)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the cause to errors.Is/As
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches an APIError against an ErrorCode sentinel or another APIError with the same code.
func (e *APIError) Is(target error) bool {
	switch t := target.(type) {
	case ErrorCode:
		return e.Code == t
	case *APIError:
		return e.Code == t.Code
	}
	return false
}

// WithDetails adds additional details to an error
func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}

func newError(code ErrorCode, message string, cause error) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Status:  code.StatusCode(),
		Err:     cause,
	}
}

// CodeOf returns the ErrorCode carried by err, or ErrInternalError.
func CodeOf(err error) ErrorCode {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Code
	}
	var code ErrorCode
	if stderrors.As(err, &code) {
		return code
	}
	return ErrInternalError
}

// AsAPIError classifies any error for the HTTP layer.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return newError(ErrTimeout, "operation timed out", err)
	}
	return newError(ErrInternalError, "internal server error", err)
}

// NotFound creates a NOT_FOUND error
func NotFound(resource string) *APIError {
	return newError(ErrNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// Unauthenticated is returned when no acting user is present
func Unauthenticated(message string) *APIError {
	if message == "" {
		message = "user not authenticated"
	}
	return newError(ErrUnauthenticated, message, nil)
}

// Forbidden creates a FORBIDDEN error
func Forbidden(message string) *APIError {
	return newError(ErrForbidden, message, nil)
}

// ValidationError creates a VALIDATION_ERROR
func ValidationError(field, message string) *APIError {
	e := newError(ErrValidation, message, nil)
	e.Field = field
	return e
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *APIError {
	return newError(ErrBadRequest, message, nil)
}

// InternalError creates an INTERNAL_ERROR
func InternalError(message string) *APIError {
	return newError(ErrInternalError, message, nil)
}

// Timeout creates a TIMEOUT error
func Timeout(operation string, cause error) *APIError {
	return newError(ErrTimeout, fmt.Sprintf("%s timed out", operation), cause)
}

func AlreadyFollowing() *APIError {
	return newError(ErrAlreadyFollowing, "already following this user", nil)
}

func NotFollowing() *APIError {
	return newError(ErrNotFollowing, "not following this user", nil)
}

func SelfFollow() *APIError {
	return newError(ErrSelfFollow, "users cannot follow themselves", nil)
}

func AlreadyLiked() *APIError {
	return newError(ErrAlreadyLiked, "already liked", nil)
}

func NotLiked() *APIError {
	return newError(ErrNotLiked, "not liked", nil)
}

// StorageUnavailable wraps a transient store failure
func StorageUnavailable(operation string, cause error) *APIError {
	return newError(ErrStorageUnavailable, fmt.Sprintf("store unavailable during %s", operation), cause)
}

// BatchPartialFailure reports that failed of total fan-out batches did not complete
func BatchPartialFailure(failed, total int, cause error) *APIError {
	return newError(ErrBatchPartialFailure, fmt.Sprintf("%d of %d feed batches failed", failed, total), cause)
}

// MembershipLimitExceeded is returned when a membership query exceeds the store's cap
func MembershipLimitExceeded(size, limit int) *APIError {
	return newError(ErrMembershipLimit, fmt.Sprintf("membership filter has %d values, limit is %d", size, limit), nil)
}
