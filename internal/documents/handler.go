package documents

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

// IdempotencyKeyHeader carries the client's idempotency key for transition
// requests. Replays of the same key return the recorded outcome without a
// second history entry.
const IdempotencyKeyHeader = "Idempotency-Key"

// Handler provides HTTP endpoints for document workflow operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// TransitionRequest is the JSON body of a transition call.
type TransitionRequest struct {
	Action         workflow.Action `json:"action"`
	ExpectedStatus workflow.Status `json:"expected_status"`
	workflow.Payload
}

// AnswerRequest carries the originator's answer to an observation.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "documents"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for document endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/history", Handler: h.History},
			{Method: "POST", Pattern: "/{id}/transitions", Handler: h.Transition},
			{Method: "GET", Pattern: "/{id}/observations", Handler: h.Observations},
			{Method: "POST", Pattern: "/{id}/observations", Handler: h.AddObservation},
			{Method: "POST", Pattern: "/{id}/observations/{obsId}/answer", Handler: h.Answer},
			{Method: "POST", Pattern: "/{id}/observations/{obsId}/resolve", Handler: h.Resolve},
		},
	}
}

// List returns a paginated list of documents with optional query parameter filters.
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

// Search accepts a JSON body with pagination and filter criteria and returns matching documents.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a full document aggregate by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// History returns the chronological transition record for a document.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc.History)
}

// Create registers a new document in its variant's initial state.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	doc, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

// Transition applies a workflow action to a document. The actor comes from
// the authenticated request context; the idempotency key, when present, comes
// from the Idempotency-Key header.
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
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

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}
	if req.Action == "" || req.ExpectedStatus == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	result, err := h.sys.Transition(r.Context(), id, actor, TransitionCommand{
		Action:         req.Action,
		ExpectedStatus: req.ExpectedStatus,
		Payload:        req.Payload,
		IdempotencyKey: r.Header.Get(IdempotencyKeyHeader),
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Observations returns the document's observation ledger.
func (h *Handler) Observations(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc.Observations)
}

// AddObservation appends a reviewer observation without changing status.
func (h *Handler) AddObservation(w http.ResponseWriter, r *http.Request) {
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

	var input workflow.ObservationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	doc, err := h.sys.AddObservation(r.Context(), id, actor, input)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

// Answer records the originator's response to an observation.
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	id, obsID, actor, ok := h.observationTarget(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	doc, err := h.sys.Respond(r.Context(), id, actor, workflow.ObservationAnswer{
		ObservationID: obsID,
		Answer:        req.Answer,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Resolve explicitly closes an observation.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, obsID, actor, ok := h.observationTarget(w, r)
	if !ok {
		return
	}

	doc, err := h.sys.Resolve(r.Context(), id, obsID, actor)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

func (h *Handler) observationTarget(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, workflow.Actor, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return uuid.Nil, uuid.Nil, workflow.Actor{}, false
	}

	obsID, err := uuid.Parse(r.PathValue("obsId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return uuid.Nil, uuid.Nil, workflow.Actor{}, false
	}

	actor, err := actorFrom(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return uuid.Nil, uuid.Nil, workflow.Actor{}, false
	}

	return id, obsID, actor, true
}

func actorFrom(r *http.Request) (workflow.Actor, error) {
	a, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return workflow.Actor{}, errors.New("request actor missing")
	}
	return workflow.Actor{ID: a.ID, Role: workflow.Role(a.Role)}, nil
}
