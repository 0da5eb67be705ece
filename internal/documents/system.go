package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/initra/procflow/internal/workflow"
	"github.com/initra/procflow/pkg/pagination"
)

// System defines the public contract for document domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Summary], error)

	Find(ctx context.Context, id uuid.UUID) (*workflow.Document, error)
	Create(ctx context.Context, cmd CreateCommand) (*workflow.Document, error)
	Transition(ctx context.Context, id uuid.UUID, actor workflow.Actor, cmd TransitionCommand) (*TransitionResult, error)

	AddObservation(ctx context.Context, id uuid.UUID, actor workflow.Actor, input workflow.ObservationInput) (*workflow.Document, error)
	Respond(ctx context.Context, id uuid.UUID, actor workflow.Actor, answer workflow.ObservationAnswer) (*workflow.Document, error)
	Resolve(ctx context.Context, id, observationID uuid.UUID, actor workflow.Actor) (*workflow.Document, error)
}
