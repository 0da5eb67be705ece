package requisitions_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/initra/procflow/internal/requisitions"
	"github.com/initra/procflow/internal/split"
)

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", requisitions.ErrNotFound, http.StatusNotFound},
		{"duplicate", requisitions.ErrDuplicate, http.StatusConflict},
		{"invalid request", requisitions.ErrInvalidRequest, http.StatusBadRequest},
		{"quotation not found passthrough", split.ErrQuotationNotFound, http.StatusNotFound},
		{"item not quoted passthrough", split.ErrItemNotQuoted, http.StatusBadRequest},
		{"wrapped invalid", fmt.Errorf("save failed: %w", requisitions.ErrInvalidRequest), http.StatusBadRequest},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := requisitions.MapHTTPStatus(tt.err)
			if got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	values := url.Values{
		"title":     {"site materials"},
		"reference": {"REQ-2026-014"},
	}

	f := requisitions.FiltersFromQuery(values)

	if f.Title == nil || *f.Title != "site materials" {
		t.Errorf("Title = %v, want site materials", f.Title)
	}
	if f.Reference == nil || *f.Reference != "REQ-2026-014" {
		t.Errorf("Reference = %v, want REQ-2026-014", f.Reference)
	}

	empty := requisitions.FiltersFromQuery(url.Values{})
	if empty.Title != nil || empty.Reference != nil {
		t.Errorf("empty query produced filters: %+v", empty)
	}
}

func TestAssignmentEntryRoundTrip(t *testing.T) {
	q1, q2 := uuid.New(), uuid.New()

	entries := []requisitions.AssignmentEntry{
		{ItemIndex: 0, QuotationID: q1},
		{ItemIndex: 2, QuotationID: q2},
	}

	a := requisitions.AssignmentsFromEntries(entries)
	if len(a) != 2 || a[0] != q1 || a[2] != q2 {
		t.Fatalf("assignments = %v", a)
	}

	back := requisitions.EntriesFromAssignments(a)
	if len(back) != 2 {
		t.Fatalf("entries = %v", back)
	}
	if back[0].ItemIndex != 0 || back[0].QuotationID != q1 {
		t.Errorf("first entry = %+v", back[0])
	}
	if back[1].ItemIndex != 2 || back[1].QuotationID != q2 {
		t.Errorf("second entry = %+v", back[1])
	}
}
