package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/initra/procflow/internal/workflow"
	"github.com/initra/procflow/pkg/pagination"
	"github.com/initra/procflow/pkg/query"
	"github.com/initra/procflow/pkg/repository"
)

type repo struct {
	db         *sql.DB
	engine     *workflow.Engine
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a document repository implementing the System interface.
func New(
	db *sql.DB,
	engine *workflow.Engine,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		engine:     engine,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Summary], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Kind", "Status", "ChangeSummary")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	rows, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSummary)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(rows, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*workflow.Document, error) {
	return r.loadAggregate(ctx, r.db, id)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*workflow.Document, error) {
	if !cmd.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown document kind %q", ErrInvalidRequest, cmd.Kind)
	}

	status := InitialStatus(cmd.Kind)
	raw := ""
	if cmd.Kind == workflow.KindPaymentSettlement && cmd.WorkflowStatus != "" {
		normalized, err := workflow.NormalizeSettlementStatus(cmd.WorkflowStatus)
		if err != nil {
			return nil, err
		}
		status = normalized
		raw = cmd.WorkflowStatus
	}

	id := uuid.New()

	doc, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (workflow.Document, error) {
		row, err := repository.QueryOne(ctx, tx, `
			INSERT INTO documents(id, kind, status, raw_workflow_status, change_summary)
			VALUES ($1, $2, $3, $4, NULL)
			RETURNING id, kind, status, raw_workflow_status, change_summary, created_at, updated_at`,
			[]any{id, cmd.Kind, status, nullable(raw)}, scanDocumentRow,
		)
		if err != nil {
			return workflow.Document{}, err
		}

		for idx, item := range cmd.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO document_items(document_id, item_index, description, unit, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				id, idx, item.Description, item.Unit, item.Quantity, item.UnitPrice,
			); err != nil {
				return workflow.Document{}, fmt.Errorf("insert item %d: %w", idx, err)
			}
		}

		for idx, quotationID := range cmd.VendorAssignments {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO vendor_assignments(document_id, item_index, quotation_id)
				VALUES ($1, $2, $3)`,
				id, idx, quotationID,
			); err != nil {
				return workflow.Document{}, fmt.Errorf("insert assignment %d: %w", idx, err)
			}
		}

		d := row.doc
		d.RawWorkflowStatus = raw
		d.Items = cmd.Items
		d.VendorAssignments = cmd.VendorAssignments
		return d, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document created", "id", doc.ID, "kind", doc.Kind, "status", doc.Status)
	return &doc, nil
}

func (r *repo) Transition(
	ctx context.Context,
	id uuid.UUID,
	actor workflow.Actor,
	cmd TransitionCommand,
) (*TransitionResult, error) {
	doc, err := r.loadAggregate(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	res, err := r.engine.Transition(
		*doc, cmd.Action, actor, cmd.Payload, cmd.ExpectedStatus, cmd.IdempotencyKey,
	)
	if err != nil {
		return nil, err
	}

	if res.Replayed {
		return &TransitionResult{Document: &res.Document, Replayed: true}, nil
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := r.persistTransition(ctx, tx, doc, &res.Document, cmd); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
	if err != nil {
		return nil, err
	}

	return &TransitionResult{Document: &res.Document}, nil
}

// persistTransition commits the delta between the loaded aggregate and the
// engine's result. The guarded status UPDATE doubles as the optimistic
// concurrency check: a concurrent transition that already moved the status
// makes it affect zero rows, which surfaces as ErrConflict.
func (r *repo) persistTransition(
	ctx context.Context,
	tx *sql.Tx,
	before, after *workflow.Document,
	cmd TransitionCommand,
) error {
	raw := after.RawWorkflowStatus
	if after.Kind == workflow.KindPaymentSettlement {
		raw = string(after.Status)
	}

	err := repository.ExecExpectOne(ctx, tx, `
		UPDATE documents
		SET status = $1, raw_workflow_status = $2, change_summary = $3, updated_at = $4
		WHERE id = $5 AND status = $6`,
		after.Status, nullable(raw), nullable(after.ChangeSummary), after.UpdatedAt,
		after.ID, before.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf(
				"%w: document %s moved past %q", workflow.ErrConflict, after.ID, before.Status,
			)
		}
		return fmt.Errorf("update document status: %w", err)
	}

	entry := after.History[len(after.History)-1]
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO workflow_history(document_id, from_status, to_status, actor_id, comments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		after.ID, entry.FromStatus, entry.ToStatus, entry.ActorID, entry.Comments, entry.At,
	); err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	if err := persistObservationChanges(ctx, tx, after.ID, before.Observations, after.Observations); err != nil {
		return err
	}

	if cmd.Payload.Items != nil {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM document_items WHERE document_id = $1`, after.ID,
		); err != nil {
			return fmt.Errorf("clear items: %w", err)
		}
		for idx, item := range after.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO document_items(document_id, item_index, description, unit, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				after.ID, idx, item.Description, item.Unit, item.Quantity, item.UnitPrice,
			); err != nil {
				return fmt.Errorf("insert item %d: %w", idx, err)
			}
		}
	}

	if cmd.IdempotencyKey != "" {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO workflow_idempotency(document_id, idem_key, action, result_status)
			VALUES ($1, $2, $3, $4)`,
			after.ID, cmd.IdempotencyKey, cmd.Action, after.Status,
		); err != nil {
			return fmt.Errorf("record idempotency key: %w", err)
		}
	}

	return nil
}

func (r *repo) AddObservation(
	ctx context.Context,
	id uuid.UUID,
	actor workflow.Actor,
	input workflow.ObservationInput,
) (*workflow.Document, error) {
	doc, err := r.loadAggregate(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	updated, err := r.engine.AddObservation(*doc, input, actor)
	if err != nil {
		return nil, err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := persistObservationChanges(ctx, tx, id, doc.Observations, updated.Observations); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, touchDocument(ctx, tx, &updated)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *repo) Respond(
	ctx context.Context,
	id uuid.UUID,
	actor workflow.Actor,
	answer workflow.ObservationAnswer,
) (*workflow.Document, error) {
	doc, err := r.loadAggregate(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	updated, err := r.engine.Respond(*doc, answer, actor)
	if err != nil {
		return nil, err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := persistObservationChanges(ctx, tx, id, doc.Observations, updated.Observations); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, touchDocument(ctx, tx, &updated)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *repo) Resolve(
	ctx context.Context,
	id, observationID uuid.UUID,
	actor workflow.Actor,
) (*workflow.Document, error) {
	doc, err := r.loadAggregate(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	updated, err := r.engine.Resolve(*doc, observationID, actor)
	if err != nil {
		return nil, err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := persistObservationChanges(ctx, tx, id, doc.Observations, updated.Observations); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, touchDocument(ctx, tx, &updated)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *repo) loadAggregate(ctx context.Context, q repository.Querier, id uuid.UUID) (*workflow.Document, error) {
	row, err := repository.QueryOne(ctx, q, `
		SELECT id, kind, status, raw_workflow_status, change_summary, created_at, updated_at
		FROM documents WHERE id = $1`,
		[]any{id}, scanDocumentRow,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	doc := row.doc
	if row.rawWorkflowStatus != nil {
		doc.RawWorkflowStatus = *row.rawWorkflowStatus
	}
	if row.changeSummary != nil {
		doc.ChangeSummary = *row.changeSummary
	}

	items, err := repository.QueryMany(ctx, q, `
		SELECT item_index, description, unit, quantity, unit_price
		FROM document_items WHERE document_id = $1 ORDER BY item_index`,
		[]any{id}, scanItemRow,
	)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	for _, ir := range items {
		doc.Items = append(doc.Items, ir.item)
	}

	assignments, err := repository.QueryMany(ctx, q, `
		SELECT item_index, quotation_id
		FROM vendor_assignments WHERE document_id = $1 ORDER BY item_index`,
		[]any{id}, scanAssignment,
	)
	if err != nil {
		return nil, fmt.Errorf("load vendor assignments: %w", err)
	}
	if len(assignments) > 0 {
		doc.VendorAssignments = make(map[int]uuid.UUID, len(assignments))
		for _, a := range assignments {
			doc.VendorAssignments[a.index] = a.quotationID
		}
	}

	doc.History, err = repository.QueryMany(ctx, q, `
		SELECT from_status, to_status, actor_id, comments, created_at
		FROM workflow_history WHERE document_id = $1 ORDER BY id`,
		[]any{id}, scanHistoryEntry,
	)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	doc.Observations, err = repository.QueryMany(ctx, q, `
		SELECT id, text, severity, added_by, added_at, answer, answered_by, answered_at, resolved, attachment_id
		FROM observations WHERE document_id = $1 ORDER BY seq`,
		[]any{id}, scanObservation,
	)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}

	keys, err := repository.QueryMany(ctx, q, `
		SELECT idem_key, result_status
		FROM workflow_idempotency WHERE document_id = $1`,
		[]any{id}, scanIdempotencyKey,
	)
	if err != nil {
		return nil, fmt.Errorf("load idempotency keys: %w", err)
	}
	if len(keys) > 0 {
		doc.IdempotencyKeys = make(map[string]workflow.Status, len(keys))
		for _, k := range keys {
			doc.IdempotencyKeys[k.key] = k.status
		}
	}

	return &doc, nil
}

type assignmentRow struct {
	index       int
	quotationID uuid.UUID
}

func scanAssignment(s repository.Scanner) (assignmentRow, error) {
	var row assignmentRow
	err := s.Scan(&row.index, &row.quotationID)
	return row, err
}

type idempotencyRow struct {
	key    string
	status workflow.Status
}

func scanIdempotencyKey(s repository.Scanner) (idempotencyRow, error) {
	var row idempotencyRow
	err := s.Scan(&row.key, &row.status)
	return row, err
}

// persistObservationChanges diffs the ledger by observation id: unknown ids
// are inserted at their sequence position, known ids with a changed answer or
// resolved flag are updated. Nothing is ever deleted.
func persistObservationChanges(
	ctx context.Context,
	tx *sql.Tx,
	docID uuid.UUID,
	before, after []workflow.Observation,
) error {
	prev := make(map[uuid.UUID]workflow.Observation, len(before))
	for _, o := range before {
		prev[o.ID] = o
	}

	for seq, o := range after {
		p, known := prev[o.ID]
		if !known {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO observations(id, document_id, seq, text, severity, added_by, added_at,
					answer, answered_by, answered_at, resolved, attachment_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				o.ID, docID, seq, o.Text, o.Severity, o.AddedBy, o.AddedAt,
				o.Answer, o.AnsweredBy, o.AnsweredAt, o.Resolved, o.AttachmentID,
			); err != nil {
				return fmt.Errorf("insert observation %s: %w", o.ID, err)
			}
			continue
		}

		if observationEqual(p, o) {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE observations
			SET answer = $1, answered_by = $2, answered_at = $3, resolved = $4
			WHERE id = $5`,
			o.Answer, o.AnsweredBy, o.AnsweredAt, o.Resolved, o.ID,
		); err != nil {
			return fmt.Errorf("update observation %s: %w", o.ID, err)
		}
	}

	return nil
}

func observationEqual(a, b workflow.Observation) bool {
	if a.Resolved != b.Resolved {
		return false
	}
	if (a.Answer == nil) != (b.Answer == nil) {
		return false
	}
	if a.Answer != nil && *a.Answer != *b.Answer {
		return false
	}
	return true
}

func touchDocument(ctx context.Context, tx *sql.Tx, doc *workflow.Document) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET updated_at = $1 WHERE id = $2`,
		doc.UpdatedAt, doc.ID,
	); err != nil {
		return fmt.Errorf("touch document: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
