package workflow

// Status is a document's current workflow state. Each Kind draws from its own
// state set; the names are canonical and stored verbatim.
type Status string

// PreAuditItem states.
const (
	StatusPending                  Status = "pending"
	StatusUnderReview              Status = "under_review"
	StatusForwardedToDirector      Status = "forwarded_to_director"
	StatusItemApproved             Status = "approved"
	StatusReturnedWithObservations Status = "returned_with_observations"
	StatusItemRejected             Status = "rejected"
)

// PurchaseOrder states.
const (
	StatusDraft                  Status = "Draft"
	StatusPendingAudit           Status = "Pending Audit"
	StatusReturnedFromAudit      Status = "Returned from Audit"
	StatusRejected               Status = "Rejected"
	StatusApproved               Status = "Approved"
	StatusSentToStore            Status = "Sent to Store"
	StatusGRNCreated             Status = "GRN Created"
	StatusSentToProcurement      Status = "Sent to Procurement"
	StatusSendToCEOOffice        Status = "Send to CEO Office"
	StatusForwardedToCEO         Status = "Forwarded to CEO"
	StatusReturnedFromCEOOffice  Status = "Returned from CEO Office"
	StatusReturnedFromCEOSecrtrt Status = "Returned from CEO Secretariat"
	StatusSentToFinance          Status = "Sent to Finance"
	StatusCancelled              Status = "Cancelled"
)

var stateSets = map[Kind]map[Status]bool{
	KindPreAuditItem: {
		StatusPending:                  true,
		StatusUnderReview:              true,
		StatusForwardedToDirector:      true,
		StatusItemApproved:             true,
		StatusReturnedWithObservations: true,
		StatusItemRejected:             true,
	},
	KindPurchaseOrder: {
		StatusDraft:                  true,
		StatusPendingAudit:           true,
		StatusReturnedFromAudit:      true,
		StatusRejected:               true,
		StatusApproved:               true,
		StatusSentToStore:            true,
		StatusGRNCreated:             true,
		StatusSentToProcurement:      true,
		StatusSendToCEOOffice:        true,
		StatusForwardedToCEO:         true,
		StatusReturnedFromCEOOffice:  true,
		StatusReturnedFromCEOSecrtrt: true,
		StatusSentToFinance:          true,
		StatusCancelled:              true,
	},
	KindPaymentSettlement: {
		StatusSendToCEOOffice:       true,
		StatusForwardedToCEO:        true,
		StatusReturnedFromCEOOffice: true,
		StatusApproved:              true,
		StatusRejected:              true,
	},
}

// ValidStatus reports whether s belongs to the state set of kind.
func ValidStatus(kind Kind, s Status) bool {
	return stateSets[kind][s]
}

// Editable states may have line items and vendor assignments mutated before
// resubmission. Purchase orders only.
var editableStates = map[Status]bool{
	StatusDraft:                  true,
	StatusReturnedFromAudit:      true,
	StatusReturnedFromCEOSecrtrt: true,
	StatusRejected:               true,
}

// Editable reports whether a purchase order in status s accepts item mutation.
func Editable(kind Kind, s Status) bool {
	return kind == KindPurchaseOrder && editableStates[s]
}

var terminalStates = map[Kind]map[Status]bool{
	KindPreAuditItem: {
		StatusItemApproved: true,
	},
	KindPurchaseOrder: {
		StatusCancelled:     true,
		StatusSentToFinance: true,
	},
	KindPaymentSettlement: {
		StatusApproved: true,
		StatusRejected: true,
	},
}

// Terminal reports whether a document in status s admits no further
// transitions. Rejected and returned states are deliberately non-terminal
// where the variant defines a resubmission edge.
func Terminal(kind Kind, s Status) bool {
	return terminalStates[kind][s]
}
