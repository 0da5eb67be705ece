// Package workflow implements the document approval workflow engine shared by
// purchase orders, pre-audit review items, and payment settlements. It provides
// the document model, per-kind transition tables, role policy, the observation
// ledger, and the append-only workflow history.
package workflow

import (
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the document variants. It determines which state set,
// transition table, and policy rows apply.
type Kind string

const (
	KindPurchaseOrder     Kind = "purchase_order"
	KindPreAuditItem      Kind = "pre_audit_item"
	KindPaymentSettlement Kind = "payment_settlement"
)

var validKinds = map[Kind]bool{
	KindPurchaseOrder:     true,
	KindPreAuditItem:      true,
	KindPaymentSettlement: true,
}

// IsValid returns true if the kind is a known document variant.
func (k Kind) IsValid() bool {
	return validKinds[k]
}

// Role identifies an actor's function within the procurement organization.
type Role string

const (
	RoleRequester          Role = "requester"
	RoleProcurementOfficer Role = "procurement_officer"
	RoleAuditManager       Role = "audit_manager"
	RoleDirector           Role = "director"
	RoleCEOSecretariat     Role = "ceo_secretariat"
	RoleCEO                Role = "ceo"
	RoleStoreKeeper        Role = "store_keeper"
	RoleFinanceOfficer     Role = "finance_officer"
	RoleSuperAdmin         Role = "super_admin"
)

// Actor is the authenticated identity performing a transition.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// LineItem is a single purchase order line. Prices are in minor currency units.
type LineItem struct {
	Description string `json:"description"`
	Unit        string `json:"unit"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

// Document is the aggregate the engine operates on. Items and
// VendorAssignments are populated for purchase orders only; RawWorkflowStatus
// carries the free-text status string payment settlements arrive with.
type Document struct {
	ID                uuid.UUID         `json:"id"`
	Kind              Kind              `json:"kind"`
	Status            Status            `json:"status"`
	History           []HistoryEntry    `json:"history"`
	Observations      []Observation     `json:"observations"`
	Items             []LineItem        `json:"items,omitempty"`
	VendorAssignments map[int]uuid.UUID `json:"vendor_assignments,omitempty"`
	ChangeSummary     string            `json:"change_summary,omitempty"`
	RawWorkflowStatus string            `json:"raw_workflow_status,omitempty"`
	IdempotencyKeys   map[string]Status `json:"-"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Clone returns a deep copy of the document. The engine mutates only the copy
// so that a failed transition leaves the caller's aggregate untouched.
func (d *Document) Clone() Document {
	out := *d

	out.History = make([]HistoryEntry, len(d.History))
	copy(out.History, d.History)

	out.Observations = make([]Observation, len(d.Observations))
	for i, o := range d.Observations {
		out.Observations[i] = o.clone()
	}

	if d.Items != nil {
		out.Items = make([]LineItem, len(d.Items))
		copy(out.Items, d.Items)
	}

	if d.VendorAssignments != nil {
		out.VendorAssignments = make(map[int]uuid.UUID, len(d.VendorAssignments))
		for k, v := range d.VendorAssignments {
			out.VendorAssignments[k] = v
		}
	}

	if d.IdempotencyKeys != nil {
		out.IdempotencyKeys = make(map[string]Status, len(d.IdempotencyKeys))
		for k, v := range d.IdempotencyKeys {
			out.IdempotencyKeys[k] = v
		}
	}

	return out
}
