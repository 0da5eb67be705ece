package workflow

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Engine is the single authority for whether a requested transition is legal
// and for applying its side effects. It performs no I/O: it validates against
// the policy and transition tables, mutates a working copy of the aggregate,
// and returns it. Persistence is the caller's concern and must commit the
// returned aggregate atomically.
type Engine struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates a workflow engine.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{
		logger: logger.With("system", "workflow"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Result is the outcome of a successful transition. Replayed is true when the
// idempotency key matched a previously recorded request; in that case the
// document is returned unchanged and nothing must be persisted.
type Result struct {
	Document Document
	Replayed bool
}

// Transition validates and applies a workflow action. Validation order:
// idempotent replay, role policy, expected-status guard, edge legality,
// payload preconditions. On success exactly one history entry is appended and
// the status moves per the variant's table; on failure the input document is
// untouched and the error wraps one of the five taxonomy sentinels.
func (e *Engine) Transition(
	doc Document,
	action Action,
	actor Actor,
	payload Payload,
	expectedStatus Status,
	idempotencyKey string,
) (Result, error) {
	if !doc.Kind.IsValid() {
		return Result{}, fmt.Errorf("%w: unknown document kind %q", ErrValidation, doc.Kind)
	}

	if idempotencyKey != "" {
		if recorded, ok := doc.IdempotencyKeys[idempotencyKey]; ok {
			e.logger.Info(
				"transition replayed",
				"document", doc.ID,
				"action", action,
				"status", recorded,
			)
			return Result{Document: doc, Replayed: true}, nil
		}
	}

	if !Allowed(actor.Role, doc.Kind, action) {
		return Result{}, fmt.Errorf(
			"%w: role %s may not %s a %s",
			ErrPermission, actor.Role, action, doc.Kind,
		)
	}

	if doc.Status != expectedStatus {
		return Result{}, fmt.Errorf(
			"%w: expected %q, document is %q",
			ErrConflict, expectedStatus, doc.Status,
		)
	}

	edge := findEdge(doc.Kind, action, doc.Status)
	if edge == nil {
		return Result{}, fmt.Errorf(
			"%w: %s from %q on %s",
			ErrInvalidTransition, action, doc.Status, doc.Kind,
		)
	}

	now := e.now()
	work := doc.Clone()

	for _, input := range payload.Observations {
		if _, err := AddObservation(&work, input, actor, now); err != nil {
			return Result{}, err
		}
	}

	if err := checkRequirement(edge.require, &work, payload); err != nil {
		return Result{}, err
	}

	if err := e.applyResubmission(&work, action, actor, payload, now); err != nil {
		return Result{}, err
	}

	AppendHistory(&work, HistoryEntry{
		FromStatus: doc.Status,
		ToStatus:   edge.to,
		ActorID:    actor.ID,
		Comments:   payload.Comments,
		At:         now,
	})
	work.Status = edge.to
	work.UpdatedAt = now

	if idempotencyKey != "" {
		if work.IdempotencyKeys == nil {
			work.IdempotencyKeys = make(map[string]Status)
		}
		work.IdempotencyKeys[idempotencyKey] = edge.to
	}

	e.logger.Info(
		"transition applied",
		"document", doc.ID,
		"kind", doc.Kind,
		"action", action,
		"from", doc.Status,
		"to", edge.to,
		"actor", actor.ID,
	)

	return Result{Document: work}, nil
}

// AddObservation appends an observation outside any status transition. The
// role policy still applies; the document status is unchanged and no history
// entry is written.
func (e *Engine) AddObservation(doc Document, input ObservationInput, actor Actor) (Document, error) {
	if !Allowed(actor.Role, doc.Kind, ActionAddObservation) {
		return Document{}, fmt.Errorf(
			"%w: role %s may not add observations to a %s",
			ErrPermission, actor.Role, doc.Kind,
		)
	}

	work := doc.Clone()
	now := e.now()
	if _, err := AddObservation(&work, input, actor, now); err != nil {
		return Document{}, err
	}
	work.UpdatedAt = now
	return work, nil
}

// Respond records an answer on an observation.
func (e *Engine) Respond(doc Document, answer ObservationAnswer, actor Actor) (Document, error) {
	if !Allowed(actor.Role, doc.Kind, ActionRespond) {
		return Document{}, fmt.Errorf(
			"%w: role %s may not answer observations on a %s",
			ErrPermission, actor.Role, doc.Kind,
		)
	}

	work := doc.Clone()
	now := e.now()
	if err := RespondToObservation(&work, answer.ObservationID, answer.Answer, actor, now); err != nil {
		return Document{}, err
	}
	work.UpdatedAt = now
	return work, nil
}

// Resolve explicitly closes an observation.
func (e *Engine) Resolve(doc Document, observationID uuid.UUID, actor Actor) (Document, error) {
	if !Allowed(actor.Role, doc.Kind, ActionResolve) {
		return Document{}, fmt.Errorf(
			"%w: role %s may not resolve observations on a %s",
			ErrPermission, actor.Role, doc.Kind,
		)
	}

	work := doc.Clone()
	if err := ResolveObservation(&work, observationID); err != nil {
		return Document{}, err
	}
	work.UpdatedAt = e.now()
	return work, nil
}

// applyResubmission handles the payload effects of resubmission actions:
// observation answers are written before the transition, and line item
// mutations are accepted only from editable states, producing a change
// summary for reviewers.
func (e *Engine) applyResubmission(work *Document, action Action, actor Actor, payload Payload, now time.Time) error {
	resubmitting := action == ActionSendToAudit || action == ActionResubmit
	if !resubmitting {
		if len(payload.ObservationAnswers) > 0 || payload.Items != nil {
			return fmt.Errorf(
				"%w: observation answers and item changes apply only on resubmission",
				ErrValidation,
			)
		}
		return nil
	}

	for _, ans := range payload.ObservationAnswers {
		if err := RespondToObservation(work, ans.ObservationID, ans.Answer, actor, now); err != nil {
			return err
		}
	}

	if payload.Items != nil {
		if !Editable(work.Kind, work.Status) {
			return fmt.Errorf(
				"%w: items may only change in an editable state, document is %q",
				ErrValidation, work.Status,
			)
		}
		if summary := SummarizeItemChanges(work.Items, payload.Items); summary != "" {
			work.ChangeSummary = summary
		}
		work.Items = payload.Items
	}

	return nil
}

func checkRequirement(req requirement, work *Document, payload Payload) error {
	hasComments := strings.TrimSpace(payload.Comments) != ""

	switch req {
	case requireNone:
		return nil
	case requireCommentsOrObservations:
		if !hasComments && len(payload.Observations) == 0 {
			return fmt.Errorf("%w: comments or at least one observation required", ErrValidation)
		}
	case requireObservations:
		if len(work.Observations) == 0 {
			return fmt.Errorf("%w: at least one observation required", ErrValidation)
		}
	case requireCommentsAndObservations:
		if !hasComments {
			return fmt.Errorf("%w: comments required", ErrValidation)
		}
		if len(work.Observations) == 0 {
			return fmt.Errorf("%w: at least one observation required", ErrValidation)
		}
	case requireSignature:
		if !hasComments {
			return fmt.Errorf("%w: comments required", ErrValidation)
		}
		if strings.TrimSpace(payload.DigitalSignature) == "" {
			return fmt.Errorf("%w: digital signature required", ErrValidation)
		}
	}

	return nil
}
