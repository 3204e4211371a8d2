package store

import (
	"errors"

	apperrors "github.com/formcraft/formcraft-backend/errors"
)

// Predefined errors for the store layer.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden indicates that the caller does not own the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates a unique constraint violation.
	ErrConflict = errors.New("conflict")

	// ErrInsufficientCredits indicates a debit larger than the balance.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// ToAppError maps a store sentinel to the AppError rendered at the HTTP
// boundary. Anything unrecognized becomes a sanitized database error.
func ToAppError(err error, entity string, id interface{}) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, ErrNotFound):
		return apperrors.NotFound(entity, id)
	case errors.Is(err, ErrForbidden):
		return apperrors.Forbidden("Access denied", entity)
	case errors.Is(err, ErrConflict):
		return apperrors.NewConflictError(entity+" already exists", "")
	case errors.Is(err, ErrInsufficientCredits):
		return apperrors.ValidationFailed("Insufficient credits", "").WithData("code", "INSUFFICIENT_CREDITS")
	default:
		return apperrors.NewDatabaseError(err)
	}
}

// IsConflict reports whether err is, or wraps, ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
