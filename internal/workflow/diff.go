package workflow

import (
	"fmt"
	"strings"
)

// SummarizeItemChanges produces a human-readable summary of line item changes
// between two revisions of a purchase order, so reviewers can see what a
// resubmission changed without re-reading the whole document. Item positions
// are reported 1-based. Returns "" when nothing changed.
func SummarizeItemChanges(before, after []LineItem) string {
	var parts []string

	shared := min(len(before), len(after))
	for i := 0; i < shared; i++ {
		b, a := before[i], after[i]
		if b.Description != a.Description {
			parts = append(parts, fmt.Sprintf(
				"item %d renamed %q to %q", i+1, b.Description, a.Description,
			))
		}
		if b.Quantity != a.Quantity {
			parts = append(parts, fmt.Sprintf(
				"item %d quantity %d to %d", i+1, b.Quantity, a.Quantity,
			))
		}
		if b.UnitPrice != a.UnitPrice {
			parts = append(parts, fmt.Sprintf(
				"item %d unit price %d to %d", i+1, b.UnitPrice, a.UnitPrice,
			))
		}
	}

	for i := shared; i < len(before); i++ {
		parts = append(parts, fmt.Sprintf(
			"item %d removed (%s)", i+1, before[i].Description,
		))
	}
	for i := shared; i < len(after); i++ {
		parts = append(parts, fmt.Sprintf(
			"item %d added (%s)", i+1, after[i].Description,
		))
	}

	return strings.Join(parts, "; ")
}
