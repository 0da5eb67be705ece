package requisitions

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/initra/procflow/internal/split"
	"github.com/initra/procflow/pkg/query"
	"github.com/initra/procflow/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "requisitions", "r").
	Project("id", "ID").
	Project("title", "Title").
	Project("reference", "Reference").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for requisition queries.
type Filters struct {
	Title     *string `json:"title,omitempty"`
	Reference *string `json:"reference,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Title", f.Title).
		WhereEquals("Reference", f.Reference)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if t := values.Get("title"); t != "" {
		f.Title = &t
	}
	if ref := values.Get("reference"); ref != "" {
		f.Reference = &ref
	}

	return f
}

func scanSummary(s repository.Scanner) (Summary, error) {
	var row Summary
	err := s.Scan(
		&row.ID,
		&row.Title,
		&row.Reference,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	return row, err
}

func scanRequisition(s repository.Scanner) (Requisition, error) {
	var r Requisition
	err := s.Scan(
		&r.ID,
		&r.Title,
		&r.Reference,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

type reqItemRow struct {
	index int
	item  split.RequisitionItem
}

func scanReqItem(s repository.Scanner) (reqItemRow, error) {
	var row reqItemRow
	err := s.Scan(
		&row.index,
		&row.item.Description,
		&row.item.Unit,
		&row.item.Quantity,
		&row.item.EstimatedUnitPrice,
	)
	return row, err
}

func scanQuotation(s repository.Scanner) (Quotation, error) {
	var q Quotation
	err := s.Scan(
		&q.ID,
		&q.VendorID,
		&q.Status,
		&q.TaxBasisPoints,
		&q.CreatedAt,
	)
	return q, err
}

type quoteItemRow struct {
	quotationID uuid.UUID
	index       int
	item        split.QuoteItem
}

func scanQuoteItem(s repository.Scanner) (quoteItemRow, error) {
	var row quoteItemRow
	err := s.Scan(
		&row.quotationID,
		&row.index,
		&row.item.Quantity,
		&row.item.UnitPrice,
	)
	return row, err
}

type assignmentRow struct {
	index       int
	quotationID uuid.UUID
}

func scanAssignment(s repository.Scanner) (assignmentRow, error) {
	var row assignmentRow
	err := s.Scan(&row.index, &row.quotationID)
	return row, err
}
