package apperr

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Sentinel errors shared by services and HTTP handlers. Handlers map them to
// statuses with Status; services wrap them with context via fmt.Errorf + %w.
var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller is authenticated but not permitted.
	ErrForbidden = errors.New("forbidden")

	// ErrEmailTaken means a registration collided with an existing account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSelfDelete means an admin tried to delete their own account.
	ErrSelfDelete = errors.New("cannot delete your own account")
)

// IsValidation reports whether err originated from field validation.
func IsValidation(err error) bool {
	var verrs validation.Errors
	return errors.As(err, &verrs)
}

// Status maps a domain error to its HTTP status code. Anything unrecognized
// is an internal error.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err),
		errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrSelfDelete):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
