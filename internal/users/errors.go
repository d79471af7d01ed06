package users

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/caduceus/pkg/auth"
	"github.com/JaimeStill/caduceus/pkg/repository"
)

// Domain errors for user operations.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("user not found")
	ErrDuplicate  = errors.New("email already registered")
)

// Validation failures. Each wraps ErrValidation.
var (
	ErrMissingField          = fmt.Errorf("%w: email, password, first_name, last_name and role are required", ErrValidation)
	ErrInvalidEmail          = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrWeakPassword          = fmt.Errorf("%w: password must be at least 8 characters with an uppercase letter, a lowercase letter and a digit", ErrValidation)
	ErrInvalidRole           = fmt.Errorf("%w: role must be patient or clinician", ErrValidation)
	ErrInvalidSpecialization = fmt.Errorf("%w: clinicians require a valid specialization", ErrValidation)
	ErrInvalidLicense        = fmt.Errorf("%w: license_number must match AAA-1234567", ErrValidation)
)

// MapHTTPStatus maps user domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrValidation), errors.Is(err, repository.ErrConstraint):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
