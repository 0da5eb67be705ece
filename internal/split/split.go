// Package split implements the split purchase order derivation algorithm:
// per-line-item vendor assignments over a requisition's quotations are
// resolved into one grouped purchase order draft per winning vendor. All
// operations are pure; persistence of assignments and drafts is the caller's
// concern.
package split

import (
	"fmt"

	"github.com/google/uuid"
)

// RequisitionItem is a single line of the originating requisition. Prices are
// estimates in minor currency units; drafts always price from the quotation.
type RequisitionItem struct {
	Description        string `json:"description"`
	Unit               string `json:"unit"`
	Quantity           int    `json:"quantity"`
	EstimatedUnitPrice int64  `json:"estimated_unit_price"`
}

// QuoteItem is a vendor's priced response to one requisition line.
type QuoteItem struct {
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}

// Quotation is a vendor's response to a requisition. Items align by index to
// the requisition's items; a nil entry means the vendor did not quote that
// line. TaxBasisPoints is the quotation-level tax rate in basis points.
type Quotation struct {
	ID             uuid.UUID    `json:"id"`
	VendorID       uuid.UUID    `json:"vendor_id"`
	TaxBasisPoints int          `json:"tax_basis_points"`
	Items          []*QuoteItem `json:"items"`
}

// covers reports whether the quotation has a present item at idx.
func (q Quotation) covers(idx int) bool {
	return idx >= 0 && idx < len(q.Items) && q.Items[idx] != nil
}

// Assignments is a sparse map from requisition item index to the quotation
// selected for that line. Absent entries mean unassigned.
type Assignments map[int]uuid.UUID

func (a Assignments) clone() Assignments {
	out := make(Assignments, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// DraftLine is one line of a split purchase order draft, priced from the
// quotation rather than the requisition's estimate.
type DraftLine struct {
	ItemIndex   int    `json:"item_index"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

// Draft is a split purchase order covering the items assigned to one vendor.
type Draft struct {
	VendorID    uuid.UUID   `json:"vendor_id"`
	QuotationID uuid.UUID   `json:"quotation_id"`
	Lines       []DraftLine `json:"lines"`
	Subtotal    int64       `json:"subtotal"`
	Tax         int64       `json:"tax"`
	Total       int64       `json:"total"`
}

// AssignVendor toggles a vendor assignment: assigning the same quotation to
// an already-matching index removes the entry, otherwise the entry is set.
// Fails when the named quotation does not exist or has no item at itemIndex;
// the input map is never mutated.
func AssignVendor(a Assignments, itemIndex int, quotationID uuid.UUID, quotations []Quotation) (Assignments, error) {
	q := findQuotation(quotations, quotationID)
	if q == nil {
		return nil, fmt.Errorf("%w: quotation %s", ErrQuotationNotFound, quotationID)
	}
	if !q.covers(itemIndex) {
		return nil, fmt.Errorf(
			"%w: quotation %s has no item at index %d",
			ErrItemNotQuoted, quotationID, itemIndex,
		)
	}

	out := a.clone()
	if out[itemIndex] == quotationID {
		delete(out, itemIndex)
	} else {
		out[itemIndex] = quotationID
	}
	return out, nil
}

// AllAssigned reports whether every index in [0, itemCount) has an entry.
func AllAssigned(a Assignments, itemCount int) bool {
	for i := 0; i < itemCount; i++ {
		if _, ok := a[i]; !ok {
			return false
		}
	}
	return true
}

// CreateSplitOrders groups assigned item indices by quotation, preserving the
// requisition's item order within each group, and builds one draft per vendor
// with at least one assigned item. Drafts are ordered by the position of each
// vendor's first assigned item. Unassigned indices are excluded; partial
// assignment is legal, and callers wanting full coverage must gate on
// AllAssigned themselves.
func CreateSplitOrders(items []RequisitionItem, quotations []Quotation, a Assignments) ([]Draft, error) {
	grouped := make(map[uuid.UUID][]int)
	var order []uuid.UUID

	for idx := 0; idx < len(items); idx++ {
		quotationID, ok := a[idx]
		if !ok {
			continue
		}

		q := findQuotation(quotations, quotationID)
		if q == nil {
			return nil, fmt.Errorf("%w: quotation %s", ErrQuotationNotFound, quotationID)
		}
		if !q.covers(idx) {
			return nil, fmt.Errorf(
				"%w: quotation %s has no item at index %d",
				ErrItemNotQuoted, quotationID, idx,
			)
		}

		if _, seen := grouped[quotationID]; !seen {
			order = append(order, quotationID)
		}
		grouped[quotationID] = append(grouped[quotationID], idx)
	}

	drafts := make([]Draft, 0, len(order))
	for _, quotationID := range order {
		q := findQuotation(quotations, quotationID)

		draft := Draft{
			VendorID:    q.VendorID,
			QuotationID: q.ID,
		}
		for _, idx := range grouped[quotationID] {
			quoted := q.Items[idx]
			draft.Lines = append(draft.Lines, DraftLine{
				ItemIndex:   idx,
				Description: items[idx].Description,
				Unit:        items[idx].Unit,
				Quantity:    quoted.Quantity,
				UnitPrice:   quoted.UnitPrice,
			})
			draft.Subtotal += int64(quoted.Quantity) * quoted.UnitPrice
		}
		draft.Tax = draft.Subtotal * int64(q.TaxBasisPoints) / 10000
		draft.Total = draft.Subtotal + draft.Tax

		drafts = append(drafts, draft)
	}

	return drafts, nil
}

func findQuotation(quotations []Quotation, id uuid.UUID) *Quotation {
	for i := range quotations {
		if quotations[i].ID == id {
			return &quotations[i]
		}
	}
	return nil
}
