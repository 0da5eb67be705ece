package documents

import (
	"errors"
	"net/http"

	"github.com/initra/procflow/internal/workflow"
)

// Domain errors for document operations. Workflow taxonomy errors pass
// through to workflow.MapHTTPStatus.
var (
	ErrNotFound       = errors.New("document not found")
	ErrDuplicate      = errors.New("document already exists")
	ErrInvalidRequest = errors.New("invalid request")
)

// MapHTTPStatus maps document and workflow errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	}
	return workflow.MapHTTPStatus(err)
}
