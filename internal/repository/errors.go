package repository

import (
	"context"
	"errors"

	apperrors "github.com/shaygp/boxd/internal/errors"
	"gorm.io/gorm"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// storeErr classifies a gorm error at the repository boundary. Callers above
// this package only ever see *errors.APIError values.
func storeErr(op string, resource string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound(resource)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout(op, err)
	}
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return apperrors.StorageUnavailable(op, err)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
