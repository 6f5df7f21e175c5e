package repository

import (
	"errors"

	"lms/apperrors"

	"gorm.io/gorm"
)

// ErrDuplicate is returned when an insert violates a unique key
var ErrDuplicate = errors.New("duplicate key")

// translate maps gorm errors to the errors callers are expected to match on
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound("%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
