package workflow_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/initra/procflow/internal/workflow"
)

func newEngine() *workflow.Engine {
	return workflow.NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func preAuditItem(status workflow.Status) workflow.Document {
	return workflow.Document{
		ID:     uuid.New(),
		Kind:   workflow.KindPreAuditItem,
		Status: status,
	}
}

func purchaseOrder(status workflow.Status) workflow.Document {
	return workflow.Document{
		ID:     uuid.New(),
		Kind:   workflow.KindPurchaseOrder,
		Status: status,
		Items: []workflow.LineItem{
			{Description: "laptops", Unit: "each", Quantity: 10, UnitPrice: 125000},
			{Description: "docking stations", Unit: "each", Quantity: 10, UnitPrice: 22000},
		},
	}
}

func settlement(status workflow.Status) workflow.Document {
	return workflow.Document{
		ID:     uuid.New(),
		Kind:   workflow.KindPaymentSettlement,
		Status: status,
	}
}

var (
	auditManager = workflow.Actor{ID: "u-audit", Role: workflow.RoleAuditManager}
	director     = workflow.Actor{ID: "u-director", Role: workflow.RoleDirector}
	requester    = workflow.Actor{ID: "u-req", Role: workflow.RoleRequester}
	officer      = workflow.Actor{ID: "u-proc", Role: workflow.RoleProcurementOfficer}
	secretariat  = workflow.Actor{ID: "u-sec", Role: workflow.RoleCEOSecretariat}
	ceo          = workflow.Actor{ID: "u-ceo", Role: workflow.RoleCEO}
	finance      = workflow.Actor{ID: "u-fin", Role: workflow.RoleFinanceOfficer}
)

func TestPreAuditReviewPath(t *testing.T) {
	e := newEngine()
	doc := preAuditItem(workflow.StatusPending)

	res, err := e.Transition(doc, workflow.ActionStartReview, auditManager, workflow.Payload{}, workflow.StatusPending, "")
	if err != nil {
		t.Fatalf("startReview: %v", err)
	}
	if res.Document.Status != workflow.StatusUnderReview {
		t.Fatalf("status = %q, want %q", res.Document.Status, workflow.StatusUnderReview)
	}

	res, err = e.Transition(res.Document, workflow.ActionForward, auditManager, workflow.Payload{}, workflow.StatusUnderReview, "")
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if res.Document.Status != workflow.StatusForwardedToDirector {
		t.Fatalf("status = %q, want %q", res.Document.Status, workflow.StatusForwardedToDirector)
	}

	res, err = e.Transition(res.Document, workflow.ActionApprove, director, workflow.Payload{}, workflow.StatusForwardedToDirector, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.Document.Status != workflow.StatusItemApproved {
		t.Fatalf("status = %q, want %q", res.Document.Status, workflow.StatusItemApproved)
	}
	if len(res.Document.History) != 3 {
		t.Fatalf("history length = %d, want 3", len(res.Document.History))
	}
}

func TestTransitionAppendsOneHistoryEntry(t *testing.T) {
	e := newEngine()
	doc := preAuditItem(workflow.StatusPending)

	res, err := e.Transition(doc, workflow.ActionApprove, auditManager, workflow.Payload{}, workflow.StatusPending, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if len(res.Document.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(res.Document.History))
	}

	entry := res.Document.History[0]
	if entry.FromStatus != workflow.StatusPending || entry.ToStatus != workflow.StatusItemApproved {
		t.Errorf("entry = %q to %q, want %q to %q",
			entry.FromStatus, entry.ToStatus, workflow.StatusPending, workflow.StatusItemApproved)
	}
	if entry.ActorID != auditManager.ID {
		t.Errorf("actor = %q, want %q", entry.ActorID, auditManager.ID)
	}
}

func TestRejectRequiresCommentsOrObservations(t *testing.T) {
	e := newEngine()
	doc := preAuditItem(workflow.StatusUnderReview)

	_, err := e.Transition(doc, workflow.ActionReject, auditManager, workflow.Payload{}, workflow.StatusUnderReview, "")
	if !errors.Is(err, workflow.ErrValidation) {
		t.Fatalf("bare reject error = %v, want ErrValidation", err)
	}

	res, err := e.Transition(doc, workflow.ActionReject, auditManager,
		workflow.Payload{Comments: "missing vendor registration"},
		workflow.StatusUnderReview, "")
	if err != nil {
		t.Fatalf("reject with comments: %v", err)
	}
	if res.Document.Status != workflow.StatusItemRejected {
		t.Fatalf("status = %q, want %q", res.Document.Status, workflow.StatusItemRejected)
	}

	res, err = e.Transition(doc, workflow.ActionReject, auditManager, workflow.Payload{
		Observations: []workflow.ObservationInput{
			{Text: "quotation expired", Severity: workflow.SeverityHigh},
		},
	}, workflow.StatusUnderReview, "")
	if err != nil {
		t.Fatalf("reject with observation: %v", err)
	}
	if len(res.Document.Observations) != 1 {
		t.Fatalf("observations = %d, want 1", len(res.Document.Observations))
	}
}

func TestReturnRequiresObservations(t *testing.T) {
	e := newEngine()
	doc := preAuditItem(workflow.StatusUnderReview)

	_, err := e.Transition(doc, workflow.ActionReturn, auditManager,
		workflow.Payload{Comments: "see notes"},
		workflow.StatusUnderReview, "")
	if !errors.Is(err, workflow.ErrValidation) {
		t.Fatalf("return without observations error = %v, want ErrValidation", err)
	}

	// an observation already on the document satisfies the rule
	withObs := doc.Clone()
	withObs.Observations = []workflow.Observation{
		{ID: uuid.New(), Text: "budget line missing", Severity: workflow.SeverityMedium, AddedBy: auditManager.ID},
	}
	res, err := e.Transition(withObs, workflow.ActionReturn, auditManager, workflow.Payload{}, workflow.StatusUnderReview, "")
	if err != nil {
		t.Fatalf("return with existing observation: %v", err)
	}
	if res.Document.Status != workflow.StatusReturnedWithObservations {
		t.Fatalf("status = %q, want %q", res.Document.Status, workflow.StatusReturnedWithObservations)
	}
}

func TestPermissionDenied(t *testing.T) {
	e := newEngine()
	doc := preAuditItem(workflow.StatusPending)

	_, err := e.Transition(doc, workflow.ActionApprove, requester, workflow.Payload{}, workflow.StatusPending, "")
	if !errors.Is(err, workflow.ErrPermission) {
		t.Fatalf("error = %v, want ErrPermission", err)
	}
}

func TestSuperAdminBypassesPolicy(t *testing.T) {
	e := newEngine()
	doc := preAuditItem(workflow.StatusPending)
	admin := workflow.Actor{ID: "u-admin", Role: workflow.RoleSuperAdmin}

	res, err := e.Transition(doc, workflow.ActionApprove, admin, workflow.Payload{}, workflow.StatusPending, "")
	if err != nil {
		t.Fatalf("super_admin approve: %v", err)
	}
	if res.Document.Status != workflow.StatusItemApproved {
		t.Fatalf("status = %q, want %q", res.Document.Status, workflow.StatusItemApproved)
	}
}

func TestExpectedStatusConflict(t *testing.T) {
	e := newEngine()
	doc := preAuditItem(workflow.StatusUnderReview)

	_, err := e.Transition(doc, workflow.ActionApprove, auditManager, workflow.Payload{}, workflow.StatusPending, "")
	if !errors.Is(err, workflow.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
}

func TestInvalidTransition(t *testing.T) {
	e := newEngine()
	doc := preAuditItem(workflow.StatusItemApproved)

	_, err := e.Transition(doc, workflow.ActionApprove, auditManager, workflow.Payload{}, workflow.StatusItemApproved, "")
	if !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition", err)
	}
}

func TestFailedTransitionLeavesDocumentUntouched(t *testing.T) {
	e := newEngine()
	doc := preAuditItem(workflow.StatusUnderReview)

	_, err := e.Transition(doc, workflow.ActionReject, auditManager, workflow.Payload{}, workflow.StatusUnderReview, "")
	if !errors.Is(err, workflow.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if doc.Status != workflow.StatusUnderReview {
		t.Errorf("status mutated to %q", doc.Status)
	}
	if len(doc.History) != 0 || len(doc.Observations) != 0 {
		t.Errorf("history/observations mutated: %d/%d", len(doc.History), len(doc.Observations))
	}
}

func TestIdempotentReplay(t *testing.T) {
	e := newEngine()
	doc := preAuditItem(workflow.StatusPending)

	res, err := e.Transition(doc, workflow.ActionApprove, auditManager, workflow.Payload{}, workflow.StatusPending, "key-1")
	if err != nil {
		t.Fatalf("first transition: %v", err)
	}
	if res.Replayed {
		t.Fatal("first transition marked replayed")
	}
	if res.Document.IdempotencyKeys["key-1"] != workflow.StatusItemApproved {
		t.Fatalf("recorded key status = %q", res.Document.IdempotencyKeys["key-1"])
	}

	replay, err := e.Transition(res.Document, workflow.ActionApprove, auditManager, workflow.Payload{}, workflow.StatusPending, "key-1")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !replay.Replayed {
		t.Fatal("replay not marked replayed")
	}
	if len(replay.Document.History) != len(res.Document.History) {
		t.Errorf("replay grew history: %d to %d", len(res.Document.History), len(replay.Document.History))
	}
	if replay.Document.Status != res.Document.Status {
		t.Errorf("replay changed status: %q", replay.Document.Status)
	}
}

func TestPurchaseOrderAuditCycle(t *testing.T) {
	e := newEngine()
	doc := purchaseOrder(workflow.StatusDraft)

	res, err := e.Transition(doc, workflow.ActionSendToAudit, requester, workflow.Payload{}, workflow.StatusDraft, "")
	if err != nil {
		t.Fatalf("sendToAudit: %v", err)
	}
	if res.Document.Status != workflow.StatusPendingAudit {
		t.Fatalf("status = %q, want %q", res.Document.Status, workflow.StatusPendingAudit)
	}

	res, err = e.Transition(res.Document, workflow.ActionAuditReturn, auditManager, workflow.Payload{
		Observations: []workflow.ObservationInput{
			{Text: "unit price exceeds estimate", Severity: workflow.SeverityHigh},
		},
	}, workflow.StatusPendingAudit, "")
	if err != nil {
		t.Fatalf("auditReturn: %v", err)
	}
	if res.Document.Status != workflow.StatusReturnedFromAudit {
		t.Fatalf("status = %q, want %q", res.Document.Status, workflow.StatusReturnedFromAudit)
	}

	obsID := res.Document.Observations[0].ID
	revised := []workflow.LineItem{
		{Description: "laptops", Unit: "each", Quantity: 8, UnitPrice: 125000},
		{Description: "docking stations", Unit: "each", Quantity: 10, UnitPrice: 22000},
	}

	res, err = e.Transition(res.Document, workflow.ActionSendToAudit, requester, workflow.Payload{
		ObservationAnswers: []workflow.ObservationAnswer{
			{ObservationID: obsID, Answer: "reduced quantity to fit budget"},
		},
		Items: revised,
	}, workflow.StatusReturnedFromAudit, "")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if res.Document.Status != workflow.StatusPendingAudit {
		t.Fatalf("status = %q, want %q", res.Document.Status, workflow.StatusPendingAudit)
	}
	if res.Document.ChangeSummary == "" {
		t.Error("change summary empty after item revision")
	}
	if res.Document.Items[0].Quantity != 8 {
		t.Errorf("item quantity = %d, want 8", res.Document.Items[0].Quantity)
	}
	if res.Document.Observations[0].Answer == nil {
		t.Error("observation answer not recorded")
	}
	if res.Document.Observations[0].Resolved {
		t.Error("answering must not resolve the observation")
	}
}

func TestItemChangesRejectedOutsideEditableStates(t *testing.T) {
	e := newEngine()
	doc := purchaseOrder(workflow.StatusApproved)

	_, err := e.Transition(doc, workflow.ActionSendToCEOOffice, officer, workflow.Payload{
		Items: []workflow.LineItem{{Description: "laptops", Unit: "each", Quantity: 1, UnitPrice: 1}},
	}, workflow.StatusApproved, "")
	if !errors.Is(err, workflow.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestForwardToCEORequiresSignature(t *testing.T) {
	e := newEngine()
	doc := purchaseOrder(workflow.StatusSendToCEOOffice)

	_, err := e.Transition(doc, workflow.ActionForwardToCEO, secretariat,
		workflow.Payload{Comments: "for approval"},
		workflow.StatusSendToCEOOffice, "")
	if !errors.Is(err, workflow.ErrValidation) {
		t.Fatalf("missing signature error = %v, want ErrValidation", err)
	}

	res, err := e.Transition(doc, workflow.ActionForwardToCEO, secretariat, workflow.Payload{
		Comments:         "for approval",
		DigitalSignature: "sig:u-sec:2026-08-29",
	}, workflow.StatusSendToCEOOffice, "")
	if err != nil {
		t.Fatalf("forwardToCeo: %v", err)
	}
	if res.Document.Status != workflow.StatusForwardedToCEO {
		t.Fatalf("status = %q, want %q", res.Document.Status, workflow.StatusForwardedToCEO)
	}
}

func TestGenericActionsResolveByCurrentStatus(t *testing.T) {
	e := newEngine()

	tests := []struct {
		name   string
		status workflow.Status
		action workflow.Action
		actor  workflow.Actor
		want   workflow.Status
	}{
		{"approve at audit", workflow.StatusPendingAudit, workflow.ActionApprove, auditManager, workflow.StatusApproved},
		{"approve at ceo", workflow.StatusForwardedToCEO, workflow.ActionApprove, ceo, workflow.StatusApproved},
		{"return at ceo", workflow.StatusForwardedToCEO, workflow.ActionReturn, ceo, workflow.StatusReturnedFromCEOOffice},
		{"return at secretariat", workflow.StatusSendToCEOOffice, workflow.ActionReturn, secretariat, workflow.StatusReturnedFromCEOSecrtrt},
		{"reject at secretariat", workflow.StatusSendToCEOOffice, workflow.ActionReject, secretariat, workflow.StatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := purchaseOrder(tt.status)
			payload := workflow.Payload{Comments: "decision recorded"}

			res, err := e.Transition(doc, tt.action, tt.actor, payload, tt.status, "")
			if err != nil {
				t.Fatalf("%s from %q: %v", tt.action, tt.status, err)
			}
			if res.Document.Status != tt.want {
				t.Errorf("status = %q, want %q", res.Document.Status, tt.want)
			}
		})
	}
}

func TestSettlementReturnRequiresCommentsAndObservation(t *testing.T) {
	e := newEngine()
	doc := settlement(workflow.StatusForwardedToCEO)

	_, err := e.Transition(doc, workflow.ActionReturn, ceo,
		workflow.Payload{Comments: "missing receipts"},
		workflow.StatusForwardedToCEO, "")
	if !errors.Is(err, workflow.ErrValidation) {
		t.Fatalf("return without observation error = %v, want ErrValidation", err)
	}

	res, err := e.Transition(doc, workflow.ActionReturn, ceo, workflow.Payload{
		Comments: "missing receipts",
		Observations: []workflow.ObservationInput{
			{Text: "no receipt for line 3", Severity: workflow.SeverityHigh},
		},
	}, workflow.StatusForwardedToCEO, "")
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if res.Document.Status != workflow.StatusReturnedFromCEOOffice {
		t.Fatalf("status = %q, want %q", res.Document.Status, workflow.StatusReturnedFromCEOOffice)
	}
}

func TestSettlementResubmitAfterReturn(t *testing.T) {
	e := newEngine()
	doc := settlement(workflow.StatusReturnedFromCEOOffice)
	doc.Observations = []workflow.Observation{
		{ID: uuid.New(), Text: "no receipt for line 3", Severity: workflow.SeverityHigh, AddedBy: ceo.ID},
	}

	res, err := e.Transition(doc, workflow.ActionResubmit, finance, workflow.Payload{
		ObservationAnswers: []workflow.ObservationAnswer{
			{ObservationID: doc.Observations[0].ID, Answer: "receipt attached"},
		},
	}, workflow.StatusReturnedFromCEOOffice, "")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if res.Document.Status != workflow.StatusSendToCEOOffice {
		t.Fatalf("status = %q, want %q", res.Document.Status, workflow.StatusSendToCEOOffice)
	}
	if res.Document.Observations[0].Answer == nil {
		t.Error("observation answer not recorded")
	}
}

func TestAnswersRejectedOutsideResubmission(t *testing.T) {
	e := newEngine()
	doc := preAuditItem(workflow.StatusPending)
	doc.Observations = []workflow.Observation{
		{ID: uuid.New(), Text: "clarify warranty terms", Severity: workflow.SeverityLow, AddedBy: auditManager.ID},
	}

	_, err := e.Transition(doc, workflow.ActionApprove, auditManager, workflow.Payload{
		ObservationAnswers: []workflow.ObservationAnswer{
			{ObservationID: doc.Observations[0].ID, Answer: "done"},
		},
	}, workflow.StatusPending, "")
	if !errors.Is(err, workflow.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestEngineObservationOperations(t *testing.T) {
	e := newEngine()
	doc := preAuditItem(workflow.StatusUnderReview)

	updated, err := e.AddObservation(doc, workflow.ObservationInput{
		Text:     "attach vendor registration",
		Severity: workflow.SeverityMedium,
	}, auditManager)
	if err != nil {
		t.Fatalf("add observation: %v", err)
	}
	if updated.Status != workflow.StatusUnderReview {
		t.Errorf("status changed to %q", updated.Status)
	}
	if len(updated.History) != 0 {
		t.Errorf("history written for observation add")
	}

	obsID := updated.Observations[0].ID

	_, err = e.Respond(updated, workflow.ObservationAnswer{ObservationID: obsID, Answer: ""}, requester)
	if !errors.Is(err, workflow.ErrValidation) {
		t.Fatalf("empty answer error = %v, want ErrValidation", err)
	}

	answered, err := e.Respond(updated, workflow.ObservationAnswer{
		ObservationID: obsID,
		Answer:        "registration attached",
	}, requester)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if answered.Observations[0].Resolved {
		t.Error("respond must not resolve")
	}

	resolved, err := e.Resolve(answered, obsID, auditManager)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !resolved.Observations[0].Resolved {
		t.Error("observation not resolved")
	}

	_, err = e.Resolve(answered, uuid.New(), auditManager)
	if !errors.Is(err, workflow.ErrNotFound) {
		t.Fatalf("unknown observation error = %v, want ErrNotFound", err)
	}

	_, err = e.AddObservation(doc, workflow.ObservationInput{Text: "", Severity: workflow.SeverityLow}, auditManager)
	if !errors.Is(err, workflow.ErrValidation) {
		t.Fatalf("empty text error = %v, want ErrValidation", err)
	}
}
