package errors

import "net/http"

// ErrorCode represents the type of error. Codes double as sentinel errors, so
// callers can match wrapped failures with errors.Is(err, errors.ErrSelfFollow).
type ErrorCode string

const (
	ErrNotFound        ErrorCode = "NOT_FOUND"
	ErrUnauthenticated ErrorCode = "UNAUTHENTICATED"
	ErrForbidden       ErrorCode = "FORBIDDEN"
	ErrValidation      ErrorCode = "VALIDATION_ERROR"
	ErrBadRequest      ErrorCode = "BAD_REQUEST"
	ErrInternalError   ErrorCode = "INTERNAL_ERROR"
	ErrTimeout         ErrorCode = "TIMEOUT"

	// Social graph and reactions
	ErrAlreadyFollowing ErrorCode = "ALREADY_FOLLOWING"
	ErrNotFollowing     ErrorCode = "NOT_FOLLOWING"
	ErrSelfFollow       ErrorCode = "SELF_FOLLOW"
	ErrAlreadyLiked     ErrorCode = "ALREADY_LIKED"
	ErrNotLiked         ErrorCode = "NOT_LIKED"

	// Store
	ErrStorageUnavailable  ErrorCode = "STORAGE_UNAVAILABLE"
	ErrBatchPartialFailure ErrorCode = "BATCH_PARTIAL_FAILURE"
	ErrMembershipLimit     ErrorCode = "MEMBERSHIP_LIMIT_EXCEEDED"
)

// StatusCodeMap maps ErrorCode to HTTP status code
var StatusCodeMap = map[ErrorCode]int{
	ErrNotFound:            http.StatusNotFound,
	ErrUnauthenticated:     http.StatusUnauthorized,
	ErrForbidden:           http.StatusForbidden,
	ErrValidation:          http.StatusUnprocessableEntity,
	ErrBadRequest:          http.StatusBadRequest,
	ErrInternalError:       http.StatusInternalServerError,
	ErrTimeout:             http.StatusGatewayTimeout,
	ErrAlreadyFollowing:    http.StatusConflict,
	ErrNotFollowing:        http.StatusConflict,
	ErrSelfFollow:          http.StatusUnprocessableEntity,
	ErrAlreadyLiked:        http.StatusConflict,
	ErrNotLiked:            http.StatusConflict,
	ErrStorageUnavailable:  http.StatusServiceUnavailable,
	ErrBatchPartialFailure: http.StatusBadGateway,
	ErrMembershipLimit:     http.StatusInternalServerError,
}

// StatusCode returns the HTTP status code for this error code
func (e ErrorCode) StatusCode() int {
	if code, ok := StatusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// Error makes ErrorCode usable as a sentinel error.
func (e ErrorCode) Error() string {
	return string(e)
}
