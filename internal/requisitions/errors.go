package requisitions

import (
	"errors"
	"net/http"

	"github.com/initra/procflow/internal/split"
)

// Domain errors for requisition operations. Resolver errors pass through to
// split.MapHTTPStatus.
var (
	ErrNotFound       = errors.New("requisition not found")
	ErrDuplicate      = errors.New("requisition already exists")
	ErrInvalidRequest = errors.New("invalid request")
)

// MapHTTPStatus maps requisition and resolver errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, split.ErrQuotationNotFound), errors.Is(err, split.ErrItemNotQuoted):
		return split.MapHTTPStatus(err)
	}
	return http.StatusInternalServerError
}
