package attachments_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/initra/procflow/internal/attachments"
)

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", attachments.ErrNotFound, http.StatusNotFound},
		{"duplicate", attachments.ErrDuplicate, http.StatusConflict},
		{"invalid file", attachments.ErrInvalidFile, http.StatusBadRequest},
		{"file too large", attachments.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"wrapped not found", fmt.Errorf("find failed: %w", attachments.ErrNotFound), http.StatusNotFound},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := attachments.MapHTTPStatus(tt.err)
			if got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	docID := uuid.New()

	values := url.Values{
		"document_id":  {docID.String()},
		"filename":     {"receipt"},
		"content_type": {"application/pdf"},
	}

	f := attachments.FiltersFromQuery(values)

	if f.DocumentID == nil || *f.DocumentID != docID {
		t.Errorf("DocumentID = %v, want %v", f.DocumentID, docID)
	}
	if f.Filename == nil || *f.Filename != "receipt" {
		t.Errorf("Filename = %v, want receipt", f.Filename)
	}
	if f.ContentType == nil || *f.ContentType != "application/pdf" {
		t.Errorf("ContentType = %v, want application/pdf", f.ContentType)
	}

	t.Run("invalid document_id ignored", func(t *testing.T) {
		f := attachments.FiltersFromQuery(url.Values{"document_id": {"not-a-uuid"}})
		if f.DocumentID != nil {
			t.Errorf("DocumentID = %v, want nil for invalid input", f.DocumentID)
		}
	})
}
