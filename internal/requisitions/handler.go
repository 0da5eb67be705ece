package requisitions

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/initra/procflow/internal/workflow"
	"github.com/initra/procflow/pkg/handlers"
	"github.com/initra/procflow/pkg/middleware"
	"github.com/initra/procflow/pkg/pagination"
	"github.com/initra/procflow/pkg/routes"
)

// Handler provides HTTP endpoints for requisitions, quotations, and the
// split assignment protocol.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SaveAssignmentsRequest carries the full sparse assignment set to persist.
type SaveAssignmentsRequest struct {
	Assignments []AssignmentEntry `json:"assignments"`
}

// AssignmentsResponse is the wire shape returned after assignment changes.
type AssignmentsResponse struct {
	Assignments []AssignmentEntry `json:"assignments"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "requisitions"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for requisition endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/requisitions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/{id}/quotations", Handler: h.AddQuotation},
			{Method: "GET", Pattern: "/{id}/assignments", Handler: h.Assignments},
			{Method: "PUT", Pattern: "/{id}/assignments", Handler: h.SaveAssignments},
			{Method: "POST", Pattern: "/{id}/assignments/toggle", Handler: h.ToggleAssignment},
			{Method: "POST", Pattern: "/{id}/split-orders", Handler: h.CreateSplitOrders},
		},
	}
}

// List returns a paginated list of requisitions with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a full requisition aggregate by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	req, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, req)
}

// Create registers a new requisition with its line items.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	req, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, req)
}

// AddQuotation registers a vendor quotation against a requisition.
func (h *Handler) AddQuotation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	var cmd AddQuotationCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	req, err := h.sys.AddQuotation(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, req)
}

// Assignments returns the currently saved vendor assignments.
func (h *Handler) Assignments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	req, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, AssignmentsResponse{
		Assignments: EntriesFromAssignments(req.Assignments),
	})
}

// SaveAssignments replaces the saved assignment set. Partial coverage is
// accepted; items without an assignment are simply omitted.
func (h *Handler) SaveAssignments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	var req SaveAssignmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	assignments := AssignmentsFromEntries(req.Assignments)
	if err := h.sys.SaveAssignments(r.Context(), id, assignments); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, AssignmentsResponse{
		Assignments: EntriesFromAssignments(assignments),
	})
}

// ToggleAssignment assigns a quotation to an item, or clears the assignment
// when the same quotation is already assigned.
func (h *Handler) ToggleAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	var entry AssignmentEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	updated, err := h.sys.ToggleAssignment(r.Context(), id, entry)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, AssignmentsResponse{
		Assignments: EntriesFromAssignments(updated),
	})
}

// CreateSplitOrders derives one purchase order per assigned vendor from the
// saved assignments and registers each in Draft.
func (h *Handler) CreateSplitOrders(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	actor, err := actorFrom(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	docs, err := h.sys.CreateOrdersFromSaved(r.Context(), id, actor)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, docs)
}

func actorFrom(r *http.Request) (workflow.Actor, error) {
	a, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return workflow.Actor{}, errors.New("request actor missing")
	}
	return workflow.Actor{ID: a.ID, Role: workflow.Role(a.Role)}, nil
}
