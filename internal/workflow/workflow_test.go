package workflow_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/initra/procflow/internal/workflow"
)

func TestValidStatus(t *testing.T) {
	tests := []struct {
		name   string
		kind   workflow.Kind
		status workflow.Status
		want   bool
	}{
		{"pre-audit pending", workflow.KindPreAuditItem, workflow.StatusPending, true},
		{"pre-audit draft invalid", workflow.KindPreAuditItem, workflow.StatusDraft, false},
		{"po draft", workflow.KindPurchaseOrder, workflow.StatusDraft, true},
		{"po pending invalid", workflow.KindPurchaseOrder, workflow.StatusPending, false},
		{"settlement approved", workflow.KindPaymentSettlement, workflow.StatusApproved, true},
		{"settlement draft invalid", workflow.KindPaymentSettlement, workflow.StatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workflow.ValidStatus(tt.kind, tt.status); got != tt.want {
				t.Errorf("ValidStatus(%s, %s) = %v, want %v", tt.kind, tt.status, got, tt.want)
			}
		})
	}
}

func TestEditable(t *testing.T) {
	editable := []workflow.Status{
		workflow.StatusDraft,
		workflow.StatusReturnedFromAudit,
		workflow.StatusReturnedFromCEOSecrtrt,
		workflow.StatusRejected,
	}
	for _, s := range editable {
		if !workflow.Editable(workflow.KindPurchaseOrder, s) {
			t.Errorf("Editable(purchase_order, %q) = false, want true", s)
		}
	}

	if workflow.Editable(workflow.KindPurchaseOrder, workflow.StatusPendingAudit) {
		t.Error("Editable(purchase_order, Pending Audit) = true, want false")
	}
	if workflow.Editable(workflow.KindPreAuditItem, workflow.StatusPending) {
		t.Error("pre-audit items must never be editable")
	}
}

func TestTerminal(t *testing.T) {
	tests := []struct {
		kind   workflow.Kind
		status workflow.Status
		want   bool
	}{
		{workflow.KindPreAuditItem, workflow.StatusItemApproved, true},
		{workflow.KindPreAuditItem, workflow.StatusItemRejected, false},
		{workflow.KindPurchaseOrder, workflow.StatusCancelled, true},
		{workflow.KindPurchaseOrder, workflow.StatusSentToFinance, true},
		{workflow.KindPurchaseOrder, workflow.StatusRejected, false},
		{workflow.KindPaymentSettlement, workflow.StatusApproved, true},
		{workflow.KindPaymentSettlement, workflow.StatusRejected, true},
		{workflow.KindPaymentSettlement, workflow.StatusReturnedFromCEOOffice, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.kind, tt.status), func(t *testing.T) {
			if got := workflow.Terminal(tt.kind, tt.status); got != tt.want {
				t.Errorf("Terminal(%s, %s) = %v, want %v", tt.kind, tt.status, got, tt.want)
			}
		})
	}
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		name   string
		role   workflow.Role
		kind   workflow.Kind
		action workflow.Action
		want   bool
	}{
		{"audit manager approves pre-audit", workflow.RoleAuditManager, workflow.KindPreAuditItem, workflow.ActionApprove, true},
		{"requester cannot approve pre-audit", workflow.RoleRequester, workflow.KindPreAuditItem, workflow.ActionApprove, false},
		{"requester resubmits pre-audit", workflow.RoleRequester, workflow.KindPreAuditItem, workflow.ActionResubmit, true},
		{"store keeper records grn", workflow.RoleStoreKeeper, workflow.KindPurchaseOrder, workflow.ActionRecordGRN, true},
		{"store keeper cannot approve", workflow.RoleStoreKeeper, workflow.KindPurchaseOrder, workflow.ActionApprove, false},
		{"secretariat forwards to ceo", workflow.RoleCEOSecretariat, workflow.KindPurchaseOrder, workflow.ActionForwardToCEO, true},
		{"ceo approves settlement", workflow.RoleCEO, workflow.KindPaymentSettlement, workflow.ActionApprove, true},
		{"finance resubmits settlement", workflow.RoleFinanceOfficer, workflow.KindPaymentSettlement, workflow.ActionResubmit, true},
		{"super admin everywhere", workflow.RoleSuperAdmin, workflow.KindPaymentSettlement, workflow.ActionForwardToCEO, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workflow.Allowed(tt.role, tt.kind, tt.action); got != tt.want {
				t.Errorf("Allowed(%s, %s, %s) = %v, want %v", tt.role, tt.kind, tt.action, got, tt.want)
			}
		})
	}
}

func TestNormalizeSettlementStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    workflow.Status
		wantErr bool
	}{
		{"Approved", workflow.StatusApproved, false},
		{"approved (from CEO)", workflow.StatusApproved, false},
		{"Rejected", workflow.StatusRejected, false},
		{"Returned from CEO Office", workflow.StatusReturnedFromCEOOffice, false},
		{"Forwarded to CEO", workflow.StatusForwardedToCEO, false},
		{"Send to CEO Office", workflow.StatusSendToCEOOffice, false},
		{"Sent to CEO Office", workflow.StatusSendToCEOOffice, false},
		{"  approved  ", workflow.StatusApproved, false},
		{"", "", true},
		{"Pending Review", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := workflow.NormalizeSettlementStatus(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, workflow.ErrValidation) {
					t.Fatalf("error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeSettlementStatus(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeSettlementStatus(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSummarizeItemChanges(t *testing.T) {
	base := []workflow.LineItem{
		{Description: "laptops", Unit: "each", Quantity: 10, UnitPrice: 125000},
		{Description: "monitors", Unit: "each", Quantity: 4, UnitPrice: 40000},
	}

	t.Run("no changes", func(t *testing.T) {
		if got := workflow.SummarizeItemChanges(base, base); got != "" {
			t.Errorf("summary = %q, want empty", got)
		}
	})

	t.Run("quantity change", func(t *testing.T) {
		after := []workflow.LineItem{
			{Description: "laptops", Unit: "each", Quantity: 8, UnitPrice: 125000},
			{Description: "monitors", Unit: "each", Quantity: 4, UnitPrice: 40000},
		}
		want := "item 1 quantity 10 to 8"
		if got := workflow.SummarizeItemChanges(base, after); got != want {
			t.Errorf("summary = %q, want %q", got, want)
		}
	})

	t.Run("removal and addition", func(t *testing.T) {
		after := []workflow.LineItem{
			{Description: "laptops", Unit: "each", Quantity: 10, UnitPrice: 125000},
		}
		want := "item 2 removed (monitors)"
		if got := workflow.SummarizeItemChanges(base, after); got != want {
			t.Errorf("summary = %q, want %q", got, want)
		}

		grown := append(append([]workflow.LineItem{}, base...),
			workflow.LineItem{Description: "keyboards", Unit: "each", Quantity: 10, UnitPrice: 5000},
		)
		want = "item 3 added (keyboards)"
		if got := workflow.SummarizeItemChanges(base, grown); got != want {
			t.Errorf("summary = %q, want %q", got, want)
		}
	})

	t.Run("multiple changes joined", func(t *testing.T) {
		after := []workflow.LineItem{
			{Description: "laptops", Unit: "each", Quantity: 8, UnitPrice: 120000},
			{Description: "monitors", Unit: "each", Quantity: 4, UnitPrice: 40000},
		}
		want := "item 1 quantity 10 to 8; item 1 unit price 125000 to 120000"
		if got := workflow.SummarizeItemChanges(base, after); got != want {
			t.Errorf("summary = %q, want %q", got, want)
		}
	})
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", workflow.ErrNotFound, http.StatusNotFound},
		{"conflict", workflow.ErrConflict, http.StatusConflict},
		{"permission", workflow.ErrPermission, http.StatusForbidden},
		{"invalid transition", workflow.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{"validation", workflow.ErrValidation, http.StatusBadRequest},
		{"wrapped conflict", fmt.Errorf("transition: %w", workflow.ErrConflict), http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workflow.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
