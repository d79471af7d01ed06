package queries

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// Domain errors for query operations.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("query not found")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrForbidden         = errors.New("query belongs to another patient")
	ErrDuplicate         = errors.New("query already exists")
)

// Validation failures. Each wraps ErrValidation.
var (
	ErrEmptyQuestion   = fmt.Errorf("%w: question must not be empty", ErrValidation)
	ErrEmptyAnswer     = fmt.Errorf("%w: ai response must not be empty", ErrValidation)
	ErrEmptyReview     = fmt.Errorf("%w: review response must not be empty", ErrValidation)
	ErrInvalidUrgency  = fmt.Errorf("%w: urgency_level must be low, normal, or high", ErrValidation)
	ErrInvalidStatus   = fmt.Errorf("%w: status must be pending, pending_review, or verified", ErrValidation)
	ErrInvalidCategory = fmt.Errorf("%w: unknown category", ErrValidation)
	ErrInvalidDuration = fmt.Errorf("%w: older_than must be a positive duration", ErrValidation)
)

// ConflictError is returned by Store.CompareAndUpdate when the stored status
// differs from the expected one.
type ConflictError struct {
	ID       uuid.UUID
	Expected Status
	Actual   Status
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("query %s is %s, expected %s", e.ID, e.Actual, e.Expected)
}

func (e *ConflictError) Unwrap() error {
	return ErrInvalidTransition
}

// TransitionError describes a rejected state machine transition.
type TransitionError struct {
	ID   uuid.UUID
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: query %s cannot move from %s to %s", ErrInvalidTransition, e.ID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// MapHTTPStatus maps query domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
