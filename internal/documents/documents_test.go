package documents_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/initra/procflow/internal/documents"
	"github.com/initra/procflow/internal/workflow"
)

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", documents.ErrNotFound, http.StatusNotFound},
		{"duplicate", documents.ErrDuplicate, http.StatusConflict},
		{"invalid request", documents.ErrInvalidRequest, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("find failed: %w", documents.ErrNotFound), http.StatusNotFound},
		{"workflow conflict passthrough", workflow.ErrConflict, http.StatusConflict},
		{"workflow permission passthrough", workflow.ErrPermission, http.StatusForbidden},
		{"workflow transition passthrough", workflow.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := documents.MapHTTPStatus(tt.err)
			if got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	t.Run("all params present", func(t *testing.T) {
		values := url.Values{
			"kind":   {"purchase_order"},
			"status": {"Pending Audit"},
		}

		f := documents.FiltersFromQuery(values)

		if f.Kind == nil || *f.Kind != "purchase_order" {
			t.Errorf("Kind = %v, want purchase_order", f.Kind)
		}
		if f.Status == nil || *f.Status != "Pending Audit" {
			t.Errorf("Status = %v, want Pending Audit", f.Status)
		}
	})

	t.Run("empty params yield nil fields", func(t *testing.T) {
		f := documents.FiltersFromQuery(url.Values{})

		if f.Kind != nil {
			t.Errorf("Kind = %v, want nil", f.Kind)
		}
		if f.Status != nil {
			t.Errorf("Status = %v, want nil", f.Status)
		}
	})
}

func TestInitialStatus(t *testing.T) {
	tests := []struct {
		kind workflow.Kind
		want workflow.Status
	}{
		{workflow.KindPurchaseOrder, workflow.StatusDraft},
		{workflow.KindPreAuditItem, workflow.StatusPending},
		{workflow.KindPaymentSettlement, workflow.StatusSendToCEOOffice},
		{workflow.Kind("bogus"), ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := documents.InitialStatus(tt.kind); got != tt.want {
				t.Errorf("InitialStatus(%s) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}
