// Package documents implements persistence and the HTTP surface for workflow
// documents. It loads the full aggregate (document, line items, history,
// observations), delegates transition decisions to the workflow engine, and
// commits each successful transition atomically with an optimistic
// expected-status guard.
package documents

import (
	"time"

	"github.com/google/uuid"

	"github.com/initra/procflow/internal/workflow"
)

// Summary is the list/search row for a document, without the aggregate's
// child collections.
type Summary struct {
	ID            uuid.UUID       `json:"id"`
	Kind          workflow.Kind   `json:"kind"`
	Status        workflow.Status `json:"status"`
	ChangeSummary *string         `json:"change_summary,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreateCommand carries the data needed to register a new document in its
// variant's initial state. Items and VendorAssignments apply to purchase
// orders; WorkflowStatus is the free-text status payment settlements arrive
// with and is normalized before storage.
type CreateCommand struct {
	Kind              workflow.Kind       `json:"kind"`
	Items             []workflow.LineItem `json:"items,omitempty"`
	VendorAssignments map[int]uuid.UUID   `json:"vendor_assignments,omitempty"`
	WorkflowStatus    string              `json:"workflow_status,omitempty"`
}

// TransitionCommand is a validated transition request for a document.
type TransitionCommand struct {
	Action         workflow.Action  `json:"action"`
	ExpectedStatus workflow.Status  `json:"expected_status"`
	Payload        workflow.Payload `json:"payload"`
	IdempotencyKey string           `json:"-"`
}

// TransitionResult reports the outcome of a transition request. Replayed is
// true when the idempotency key matched a prior request and nothing changed.
type TransitionResult struct {
	Document *workflow.Document `json:"document"`
	Replayed bool               `json:"replayed"`
}

// InitialStatus returns the variant's initial state for a new document.
// Settlements normalize their free-text workflow status instead.
func InitialStatus(kind workflow.Kind) workflow.Status {
	switch kind {
	case workflow.KindPurchaseOrder:
		return workflow.StatusDraft
	case workflow.KindPreAuditItem:
		return workflow.StatusPending
	case workflow.KindPaymentSettlement:
		return workflow.StatusSendToCEOOffice
	}
	return ""
}
