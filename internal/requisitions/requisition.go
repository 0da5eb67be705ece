// Package requisitions implements the requisition and quotation source that
// feeds the split assignment resolver, the two-phase persistence of vendor
// assignments, and the derivation of split purchase orders from saved
// assignments.
package requisitions

import (
	"time"

	"github.com/google/uuid"

	"github.com/initra/procflow/internal/split"
)

// QuotationStatus tracks a quotation through vendor selection.
type QuotationStatus string

const (
	QuotationSubmitted QuotationStatus = "Submitted"
	QuotationFinalized QuotationStatus = "Finalized"
	QuotationRejected  QuotationStatus = "Rejected"
)

// Quotation is a vendor's priced response with its selection status.
type Quotation struct {
	split.Quotation
	Status    QuotationStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// Requisition is the originating request for goods with its quotations and
// any saved vendor assignments.
type Requisition struct {
	ID          uuid.UUID               `json:"id"`
	Title       string                  `json:"title"`
	Reference   string                  `json:"reference"`
	Items       []split.RequisitionItem `json:"items"`
	Quotations  []Quotation             `json:"quotations"`
	Assignments split.Assignments       `json:"-"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// AllAssigned reports whether every requisition item has a saved assignment.
func (r *Requisition) AllAssigned() bool {
	return split.AllAssigned(r.Assignments, len(r.Items))
}

// splitQuotations projects the stored quotations into the resolver's shape.
func (r *Requisition) splitQuotations() []split.Quotation {
	out := make([]split.Quotation, len(r.Quotations))
	for i, q := range r.Quotations {
		out[i] = q.Quotation
	}
	return out
}

// Summary is the list/search row for a requisition.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCommand carries the data needed to register a requisition.
type CreateCommand struct {
	Title     string                  `json:"title"`
	Reference string                  `json:"reference"`
	Items     []split.RequisitionItem `json:"items"`
}

// AddQuotationCommand registers a vendor's quotation. Items align by index to
// the requisition's items; nil entries mean the vendor did not quote that line.
type AddQuotationCommand struct {
	VendorID       uuid.UUID          `json:"vendor_id"`
	TaxBasisPoints int                `json:"tax_basis_points"`
	Items          []*split.QuoteItem `json:"items"`
}

// AssignmentEntry is the wire shape of a single vendor assignment. The sparse
// map is carried as explicit entries so indices are bounds-checked at the
// boundary rather than smuggled through stringified object keys.
type AssignmentEntry struct {
	ItemIndex   int       `json:"item_index"`
	QuotationID uuid.UUID `json:"quotation_id"`
}

// AssignmentsFromEntries converts wire entries to the resolver's sparse map.
func AssignmentsFromEntries(entries []AssignmentEntry) split.Assignments {
	a := make(split.Assignments, len(entries))
	for _, e := range entries {
		a[e.ItemIndex] = e.QuotationID
	}
	return a
}

// EntriesFromAssignments converts the sparse map to wire entries in item order.
func EntriesFromAssignments(a split.Assignments) []AssignmentEntry {
	entries := make([]AssignmentEntry, 0, len(a))
	for i := 0; len(entries) < len(a); i++ {
		if q, ok := a[i]; ok {
			entries = append(entries, AssignmentEntry{ItemIndex: i, QuotationID: q})
		}
	}
	return entries
}
