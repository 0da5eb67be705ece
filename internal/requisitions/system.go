package requisitions

import (
	"context"

	"github.com/google/uuid"

	"github.com/initra/procflow/internal/split"
	"github.com/initra/procflow/internal/workflow"
	"github.com/initra/procflow/pkg/pagination"
)

// System defines the public contract for requisition domain operations.
// SaveAssignments and CreateOrdersFromSaved form the two-phase split
// protocol: a reviewer may shortlist partial assignments and return later;
// order creation always re-reads what was saved.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Summary], error)

	Find(ctx context.Context, id uuid.UUID) (*Requisition, error)
	Create(ctx context.Context, cmd CreateCommand) (*Requisition, error)
	AddQuotation(ctx context.Context, id uuid.UUID, cmd AddQuotationCommand) (*Requisition, error)

	ToggleAssignment(ctx context.Context, id uuid.UUID, entry AssignmentEntry) (split.Assignments, error)
	SaveAssignments(ctx context.Context, id uuid.UUID, assignments split.Assignments) error
	CreateOrdersFromSaved(ctx context.Context, id uuid.UUID, actor workflow.Actor) ([]*workflow.Document, error)
}
