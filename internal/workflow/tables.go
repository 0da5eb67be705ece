package workflow

// requirement names an action's payload precondition. Observation rules count
// both observations already on the document and observations supplied in the
// transition payload.
type requirement int

const (
	requireNone requirement = iota
	// comments or at least one observation
	requireCommentsOrObservations
	// at least one observation; comments optional
	requireObservations
	// both comments and at least one observation
	requireCommentsAndObservations
	// comments and a digital signature
	requireSignature
)

// edge defines a legal transition: any status in from may move to to.
type edge struct {
	from    []Status
	to      Status
	require requirement
}

// tables holds the per-variant transition tables. An action may define
// multiple edges; the edge containing the document's current status applies.
// The generic approve/return/reject actions are retained alongside the named
// purchase order actions for compatibility with the action surface the UI
// layer consumes.
var tables = map[Kind]map[Action][]edge{
	KindPreAuditItem: {
		ActionStartReview: {
			{from: []Status{StatusPending}, to: StatusUnderReview},
		},
		ActionForward: {
			{from: []Status{StatusPending, StatusUnderReview}, to: StatusForwardedToDirector},
		},
		ActionApprove: {
			{from: []Status{StatusPending, StatusUnderReview, StatusForwardedToDirector}, to: StatusItemApproved},
		},
		ActionReturn: {
			{from: []Status{StatusPending, StatusUnderReview}, to: StatusReturnedWithObservations, require: requireObservations},
		},
		ActionReject: {
			{from: []Status{StatusPending, StatusUnderReview, StatusForwardedToDirector}, to: StatusItemRejected, require: requireCommentsOrObservations},
		},
		ActionResubmit: {
			{from: []Status{StatusItemRejected, StatusReturnedWithObservations}, to: StatusPending},
		},
	},
	KindPurchaseOrder: {
		ActionSendToAudit: {
			{from: []Status{StatusDraft, StatusReturnedFromAudit, StatusReturnedFromCEOSecrtrt, StatusRejected}, to: StatusPendingAudit},
		},
		ActionAuditApprove: {
			{from: []Status{StatusPendingAudit}, to: StatusApproved},
		},
		ActionAuditReturn: {
			{from: []Status{StatusPendingAudit}, to: StatusReturnedFromAudit, require: requireObservations},
		},
		ActionAuditReject: {
			{from: []Status{StatusPendingAudit}, to: StatusRejected, require: requireCommentsOrObservations},
		},
		ActionSendToCEOOffice: {
			{from: []Status{StatusApproved}, to: StatusSendToCEOOffice},
		},
		ActionForwardToCEO: {
			{from: []Status{StatusSendToCEOOffice}, to: StatusForwardedToCEO, require: requireSignature},
		},
		ActionCEOApprove: {
			{from: []Status{StatusForwardedToCEO}, to: StatusApproved},
		},
		ActionCEOReturn: {
			{from: []Status{StatusForwardedToCEO}, to: StatusReturnedFromCEOOffice, require: requireCommentsOrObservations},
		},
		ActionCEOSecretariatReturn: {
			{from: []Status{StatusSendToCEOOffice}, to: StatusReturnedFromCEOSecrtrt, require: requireCommentsOrObservations},
		},
		ActionCEOSecretariatReject: {
			{from: []Status{StatusSendToCEOOffice}, to: StatusRejected, require: requireCommentsOrObservations},
		},
		ActionSendToStore: {
			{from: []Status{StatusApproved}, to: StatusSentToStore},
		},
		ActionRecordGRN: {
			{from: []Status{StatusSentToStore}, to: StatusGRNCreated},
		},
		ActionSendToProcurement: {
			{from: []Status{StatusGRNCreated}, to: StatusSentToProcurement},
		},
		ActionSendToPostGRNAudit: {
			{from: []Status{StatusSentToProcurement}, to: StatusPendingAudit},
		},
		ActionSendToFinance: {
			{from: []Status{StatusApproved}, to: StatusSentToFinance},
		},
		ActionCancel: {
			{from: []Status{StatusDraft, StatusReturnedFromAudit, StatusReturnedFromCEOSecrtrt, StatusRejected}, to: StatusCancelled},
		},
		ActionApprove: {
			{from: []Status{StatusPendingAudit}, to: StatusApproved},
			{from: []Status{StatusForwardedToCEO}, to: StatusApproved},
		},
		ActionReturn: {
			{from: []Status{StatusPendingAudit}, to: StatusReturnedFromAudit, require: requireObservations},
			{from: []Status{StatusForwardedToCEO}, to: StatusReturnedFromCEOOffice, require: requireCommentsOrObservations},
			{from: []Status{StatusSendToCEOOffice}, to: StatusReturnedFromCEOSecrtrt, require: requireCommentsOrObservations},
		},
		ActionReject: {
			{from: []Status{StatusPendingAudit, StatusSendToCEOOffice, StatusForwardedToCEO}, to: StatusRejected, require: requireCommentsOrObservations},
		},
	},
	KindPaymentSettlement: {
		ActionForwardToCEO: {
			{from: []Status{StatusSendToCEOOffice}, to: StatusForwardedToCEO, require: requireSignature},
		},
		ActionApprove: {
			{from: []Status{StatusSendToCEOOffice, StatusForwardedToCEO}, to: StatusApproved},
		},
		ActionReturn: {
			{from: []Status{StatusSendToCEOOffice, StatusForwardedToCEO}, to: StatusReturnedFromCEOOffice, require: requireCommentsAndObservations},
		},
		ActionReject: {
			{from: []Status{StatusSendToCEOOffice, StatusForwardedToCEO}, to: StatusRejected, require: requireCommentsAndObservations},
		},
		ActionResubmit: {
			{from: []Status{StatusReturnedFromCEOOffice}, to: StatusSendToCEOOffice},
		},
	},
}

// findEdge returns the edge for the given action whose from set contains the
// current status, or nil when the action defines no edge from that status.
func findEdge(kind Kind, action Action, current Status) *edge {
	for i, e := range tables[kind][action] {
		for _, f := range e.from {
			if f == current {
				return &tables[kind][action][i]
			}
		}
	}
	return nil
}
