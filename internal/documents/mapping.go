package documents

import (
	"net/url"

	"github.com/initra/procflow/internal/workflow"
	"github.com/initra/procflow/pkg/query"
	"github.com/initra/procflow/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("kind", "Kind").
	Project("status", "Status").
	Project("change_summary", "ChangeSummary").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UpdatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored; Kind and Status use exact matching.
type Filters struct {
	Kind   *string `json:"kind,omitempty"`
	Status *string `json:"status,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Kind", f.Kind).
		WhereEquals("Status", f.Status)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if k := values.Get("kind"); k != "" {
		f.Kind = &k
	}
	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	return f
}

func scanSummary(s repository.Scanner) (Summary, error) {
	var row Summary
	err := s.Scan(
		&row.ID,
		&row.Kind,
		&row.Status,
		&row.ChangeSummary,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	return row, err
}

type documentRow struct {
	doc               workflow.Document
	rawWorkflowStatus *string
	changeSummary     *string
}

func scanDocumentRow(s repository.Scanner) (documentRow, error) {
	var row documentRow
	err := s.Scan(
		&row.doc.ID,
		&row.doc.Kind,
		&row.doc.Status,
		&row.rawWorkflowStatus,
		&row.changeSummary,
		&row.doc.CreatedAt,
		&row.doc.UpdatedAt,
	)
	return row, err
}

type itemRow struct {
	index int
	item  workflow.LineItem
}

func scanItemRow(s repository.Scanner) (itemRow, error) {
	var row itemRow
	err := s.Scan(
		&row.index,
		&row.item.Description,
		&row.item.Unit,
		&row.item.Quantity,
		&row.item.UnitPrice,
	)
	return row, err
}

func scanHistoryEntry(s repository.Scanner) (workflow.HistoryEntry, error) {
	var e workflow.HistoryEntry
	err := s.Scan(
		&e.FromStatus,
		&e.ToStatus,
		&e.ActorID,
		&e.Comments,
		&e.At,
	)
	return e, err
}

func scanObservation(s repository.Scanner) (workflow.Observation, error) {
	var o workflow.Observation
	err := s.Scan(
		&o.ID,
		&o.Text,
		&o.Severity,
		&o.AddedBy,
		&o.AddedAt,
		&o.Answer,
		&o.AnsweredBy,
		&o.AnsweredAt,
		&o.Resolved,
		&o.AttachmentID,
	)
	return o, err
}
