package attachments

import (
	"errors"
	"net/http"
)

// Domain errors for attachment operations.
var (
	ErrNotFound     = errors.New("attachment not found")
	ErrDuplicate    = errors.New("attachment already exists")
	ErrInvalidFile  = errors.New("invalid file")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
)

// MapHTTPStatus maps attachment errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
