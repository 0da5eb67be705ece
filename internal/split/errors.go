package split

import (
	"errors"
	"net/http"
)

// Domain errors for assignment and split order derivation.
var (
	ErrQuotationNotFound = errors.New("quotation not found")
	ErrItemNotQuoted     = errors.New("quotation does not cover item")
)

// MapHTTPStatus maps resolver errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrQuotationNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrItemNotQuoted) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
