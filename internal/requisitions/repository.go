package requisitions

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/initra/procflow/internal/documents"
	"github.com/initra/procflow/internal/split"
	"github.com/initra/procflow/internal/workflow"
	"github.com/initra/procflow/pkg/pagination"
	"github.com/initra/procflow/pkg/query"
	"github.com/initra/procflow/pkg/repository"
)

type repo struct {
	db         *sql.DB
	docs       documents.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a requisition repository implementing the System interface.
// Split purchase orders are registered through the documents system so they
// enter the workflow in Draft like any other purchase order.
func New(
	db *sql.DB,
	docs documents.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		docs:       docs,
		logger:     logger.With("system", "requisitions"),
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
		WhereSearch(page.Search, "Title", "Reference")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count requisitions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	rows, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSummary)
	if err != nil {
		return nil, fmt.Errorf("query requisitions: %w", err)
	}

	result := pagination.NewPageResult(rows, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Requisition, error) {
	return r.loadAggregate(ctx, r.db, id)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Requisition, error) {
	if cmd.Title == "" {
		return nil, fmt.Errorf("%w: title required", ErrInvalidRequest)
	}
	if len(cmd.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item required", ErrInvalidRequest)
	}

	id := uuid.New()

	req, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Requisition, error) {
		created, err := repository.QueryOne(ctx, tx, `
			INSERT INTO requisitions(id, title, reference)
			VALUES ($1, $2, $3)
			RETURNING id, title, reference, created_at, updated_at`,
			[]any{id, cmd.Title, cmd.Reference}, scanRequisition,
		)
		if err != nil {
			return Requisition{}, err
		}

		for idx, item := range cmd.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO requisition_items(requisition_id, item_index, description, unit, quantity, estimated_unit_price)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				id, idx, item.Description, item.Unit, item.Quantity, item.EstimatedUnitPrice,
			); err != nil {
				return Requisition{}, fmt.Errorf("insert item %d: %w", idx, err)
			}
		}

		created.Items = cmd.Items
		return created, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("requisition created", "id", req.ID, "title", req.Title)
	return &req, nil
}

func (r *repo) AddQuotation(ctx context.Context, id uuid.UUID, cmd AddQuotationCommand) (*Requisition, error) {
	req, err := r.loadAggregate(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	if cmd.VendorID == uuid.Nil {
		return nil, fmt.Errorf("%w: vendor_id required", ErrInvalidRequest)
	}
	if len(cmd.Items) != len(req.Items) {
		return nil, fmt.Errorf(
			"%w: quotation must align to %d requisition items, got %d",
			ErrInvalidRequest, len(req.Items), len(cmd.Items),
		)
	}

	quotationID := uuid.New()

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO quotations(id, requisition_id, vendor_id, status, tax_basis_points)
			VALUES ($1, $2, $3, $4, $5)`,
			quotationID, id, cmd.VendorID, QuotationSubmitted, cmd.TaxBasisPoints,
		); err != nil {
			return struct{}{}, fmt.Errorf("insert quotation: %w", err)
		}

		for idx, item := range cmd.Items {
			if item == nil {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO quotation_items(quotation_id, item_index, quantity, unit_price)
				VALUES ($1, $2, $3, $4)`,
				quotationID, idx, item.Quantity, item.UnitPrice,
			); err != nil {
				return struct{}{}, fmt.Errorf("insert quote item %d: %w", idx, err)
			}
		}

		return struct{}{}, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("quotation added", "requisition", id, "quotation", quotationID, "vendor", cmd.VendorID)
	return r.loadAggregate(ctx, r.db, id)
}

func (r *repo) ToggleAssignment(ctx context.Context, id uuid.UUID, entry AssignmentEntry) (split.Assignments, error) {
	req, err := r.loadAggregate(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	if entry.ItemIndex < 0 || entry.ItemIndex >= len(req.Items) {
		return nil, fmt.Errorf(
			"%w: item index %d out of range [0,%d)",
			ErrInvalidRequest, entry.ItemIndex, len(req.Items),
		)
	}

	updated, err := split.AssignVendor(req.Assignments, entry.ItemIndex, entry.QuotationID, req.splitQuotations())
	if err != nil {
		return nil, err
	}

	if err := r.storeAssignments(ctx, id, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *repo) SaveAssignments(ctx context.Context, id uuid.UUID, assignments split.Assignments) error {
	req, err := r.loadAggregate(ctx, r.db, id)
	if err != nil {
		return err
	}

	quotations := req.splitQuotations()
	for idx, quotationID := range assignments {
		if idx < 0 || idx >= len(req.Items) {
			return fmt.Errorf(
				"%w: item index %d out of range [0,%d)",
				ErrInvalidRequest, idx, len(req.Items),
			)
		}
		// reuse the resolver's presence check without mutating anything
		if _, err := split.AssignVendor(split.Assignments{}, idx, quotationID, quotations); err != nil {
			return err
		}
	}

	if err := r.storeAssignments(ctx, id, assignments); err != nil {
		return err
	}

	r.logger.Info("assignments saved", "requisition", id, "assigned", len(assignments))
	return nil
}

func (r *repo) CreateOrdersFromSaved(ctx context.Context, id uuid.UUID, actor workflow.Actor) ([]*workflow.Document, error) {
	req, err := r.loadAggregate(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	if len(req.Assignments) == 0 {
		return nil, fmt.Errorf("%w: no saved assignments", ErrInvalidRequest)
	}

	drafts, err := split.CreateSplitOrders(req.Items, req.splitQuotations(), req.Assignments)
	if err != nil {
		return nil, err
	}

	docs := make([]*workflow.Document, len(drafts))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, draft := range drafts {
		g.Go(func() error {
			items := make([]workflow.LineItem, len(draft.Lines))
			assignments := make(map[int]uuid.UUID, len(draft.Lines))
			for j, line := range draft.Lines {
				items[j] = workflow.LineItem{
					Description: line.Description,
					Unit:        line.Unit,
					Quantity:    line.Quantity,
					UnitPrice:   line.UnitPrice,
				}
				assignments[line.ItemIndex] = draft.QuotationID
			}

			doc, err := r.docs.Create(gctx, documents.CreateCommand{
				Kind:              workflow.KindPurchaseOrder,
				Items:             items,
				VendorAssignments: assignments,
			})
			if err != nil {
				return fmt.Errorf("create split order for vendor %s: %w", draft.VendorID, err)
			}

			mu.Lock()
			docs[i] = doc
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := r.finalizeQuotations(ctx, req, drafts); err != nil {
		return nil, err
	}

	r.logger.Info(
		"split orders created",
		"requisition", id,
		"orders", len(docs),
		"actor", actor.ID,
	)
	return docs, nil
}

// finalizeQuotations marks winning quotations Finalized and rejects the
// remaining Submitted ones. Quotations already Finalized through another flow
// are deliberately left untouched rather than blanket-rejected.
func (r *repo) finalizeQuotations(ctx context.Context, req *Requisition, drafts []split.Draft) error {
	winners := make(map[uuid.UUID]bool, len(drafts))
	for _, d := range drafts {
		winners[d.QuotationID] = true
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		for _, q := range req.Quotations {
			var next QuotationStatus
			switch {
			case winners[q.ID]:
				next = QuotationFinalized
			case q.Status == QuotationSubmitted:
				next = QuotationRejected
			default:
				continue
			}

			if _, err := tx.ExecContext(ctx,
				`UPDATE quotations SET status = $1 WHERE id = $2`,
				next, q.ID,
			); err != nil {
				return struct{}{}, fmt.Errorf("update quotation %s: %w", q.ID, err)
			}
		}
		return struct{}{}, nil
	})
	return err
}

func (r *repo) storeAssignments(ctx context.Context, id uuid.UUID, assignments split.Assignments) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM requisition_assignments WHERE requisition_id = $1`, id,
		); err != nil {
			return struct{}{}, fmt.Errorf("clear assignments: %w", err)
		}

		for _, entry := range EntriesFromAssignments(assignments) {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO requisition_assignments(requisition_id, item_index, quotation_id)
				VALUES ($1, $2, $3)`,
				id, entry.ItemIndex, entry.QuotationID,
			); err != nil {
				return struct{}{}, fmt.Errorf("insert assignment %d: %w", entry.ItemIndex, err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE requisitions SET updated_at = now() WHERE id = $1`, id,
		); err != nil {
			return struct{}{}, fmt.Errorf("touch requisition: %w", err)
		}

		return struct{}{}, nil
	})
	return err
}

func (r *repo) loadAggregate(ctx context.Context, q repository.Querier, id uuid.UUID) (*Requisition, error) {
	req, err := repository.QueryOne(ctx, q, `
		SELECT id, title, reference, created_at, updated_at
		FROM requisitions WHERE id = $1`,
		[]any{id}, scanRequisition,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	items, err := repository.QueryMany(ctx, q, `
		SELECT item_index, description, unit, quantity, estimated_unit_price
		FROM requisition_items WHERE requisition_id = $1 ORDER BY item_index`,
		[]any{id}, scanReqItem,
	)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	for _, ir := range items {
		req.Items = append(req.Items, ir.item)
	}

	req.Quotations, err = repository.QueryMany(ctx, q, `
		SELECT id, vendor_id, status, tax_basis_points, created_at
		FROM quotations WHERE requisition_id = $1 ORDER BY created_at, id`,
		[]any{id}, scanQuotation,
	)
	if err != nil {
		return nil, fmt.Errorf("load quotations: %w", err)
	}

	quoteItems, err := repository.QueryMany(ctx, q, `
		SELECT qi.quotation_id, qi.item_index, qi.quantity, qi.unit_price
		FROM quotation_items qi
		JOIN quotations qt ON qt.id = qi.quotation_id
		WHERE qt.requisition_id = $1
		ORDER BY qi.quotation_id, qi.item_index`,
		[]any{id}, scanQuoteItem,
	)
	if err != nil {
		return nil, fmt.Errorf("load quotation items: %w", err)
	}

	byQuotation := make(map[uuid.UUID][]*split.QuoteItem, len(req.Quotations))
	for i := range req.Quotations {
		byQuotation[req.Quotations[i].ID] = make([]*split.QuoteItem, len(req.Items))
	}
	for _, qi := range quoteItems {
		if lines, ok := byQuotation[qi.quotationID]; ok && qi.index >= 0 && qi.index < len(lines) {
			item := qi.item
			lines[qi.index] = &item
		}
	}
	for i := range req.Quotations {
		req.Quotations[i].Items = byQuotation[req.Quotations[i].ID]
	}

	saved, err := repository.QueryMany(ctx, q, `
		SELECT item_index, quotation_id
		FROM requisition_assignments WHERE requisition_id = $1 ORDER BY item_index`,
		[]any{id}, scanAssignment,
	)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	if len(saved) > 0 {
		req.Assignments = make(split.Assignments, len(saved))
		for _, a := range saved {
			req.Assignments[a.index] = a.quotationID
		}
	}

	return &req, nil
}
