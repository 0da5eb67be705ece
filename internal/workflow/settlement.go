package workflow

import (
	"fmt"
	"strings"
)

// NormalizeSettlementStatus maps the free-text workflowStatus string that
// payment settlements arrive with (e.g. "Approved (from CEO)") into the
// canonical settlement state set. The raw string is preserved on the document
// for display; the engine operates only on the normalized status.
func NormalizeSettlementStatus(raw string) (Status, error) {
	s := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case s == "":
		return "", fmt.Errorf("%w: empty workflow status", ErrValidation)
	case strings.HasPrefix(s, "approved"):
		return StatusApproved, nil
	case strings.HasPrefix(s, "rejected"):
		return StatusRejected, nil
	case strings.HasPrefix(s, "returned from ceo office"):
		return StatusReturnedFromCEOOffice, nil
	case strings.HasPrefix(s, "forwarded to ceo"):
		return StatusForwardedToCEO, nil
	case strings.HasPrefix(s, "send to ceo office"), strings.HasPrefix(s, "sent to ceo office"):
		return StatusSendToCEOOffice, nil
	}

	return "", fmt.Errorf("%w: unrecognized workflow status %q", ErrValidation, raw)
}
