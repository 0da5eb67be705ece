package workflow

import (
	"errors"
	"net/http"
)

// Error taxonomy for transition requests. Every engine failure wraps exactly
// one of these sentinels with human-readable detail; the engine never retries
// and never coerces an illegal request into a legal one.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("transition not defined from current status")
	ErrPermission        = errors.New("role not authorized for action")
	ErrConflict          = errors.New("document status changed concurrently")
	ErrNotFound          = errors.New("not found")
)

// MapHTTPStatus maps workflow errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
