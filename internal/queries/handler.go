package queries

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/caduceus/pkg/auth"
	"github.com/JaimeStill/caduceus/pkg/handlers"
	"github.com/JaimeStill/caduceus/pkg/pagination"
	"github.com/JaimeStill/caduceus/pkg/routes"
)

// Handler provides HTTP endpoints for query operations.
type Handler struct {
	sys        System
	queue      ReviewQueue
	logger     *slog.Logger
	pagination pagination.Config
	maxBody    int64
}

// NewHandler creates a Handler. The queue serves clinician listings.
func NewHandler(
	sys System,
	queue ReviewQueue,
	logger *slog.Logger,
	pagination pagination.Config,
	maxBody int64,
) *Handler {
	return &Handler{
		sys:        sys,
		queue:      queue,
		logger:     logger.With("handler", "queries"),
		pagination: pagination,
		maxBody:    maxBody,
	}
}

// Routes returns the route group definition for query endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/queries",
		Tags:   []string{"Queries"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: auth.Require(h.logger, h.List), OpenAPI: listOp()},
			{Method: "POST", Pattern: "", Handler: auth.Require(h.logger, h.Create, auth.RolePatient), OpenAPI: createOp()},
			{Method: "GET", Pattern: "/stalled", Handler: auth.Require(h.logger, h.Stalled, auth.RoleClinician), OpenAPI: stalledOp()},
			{Method: "GET", Pattern: "/{id}", Handler: auth.Require(h.logger, h.Find), OpenAPI: findOp()},
			{Method: "POST", Pattern: "/{id}/regenerate", Handler: auth.Require(h.logger, h.Regenerate, auth.RoleClinician), OpenAPI: regenerateOp()},
		},
	}
}

// List returns the caller's own queries for patients and the review queue
// for clinicians.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	req := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	var (
		page Page
		err  error
	)
	if p.Role == auth.RoleClinician {
		page, err = h.queue.ListPending(r.Context(), req.Page, req.PerPage)
	} else {
		page, err = h.sys.ListForPatient(r.Context(), p.UserID, req.Page, req.PerPage)
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, page)
}

// Create submits a new question for the calling patient.
// Returns 201 with the pending query.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	cmd, err := handlers.DecodeJSON[CreateCommand](w, r, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	q, err := h.sys.Create(r.Context(), p.UserID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, q.View(false))
}

// Find returns a single query. Patients may only read their own.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	q, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	p, _ := auth.FromContext(r.Context())
	clinician := p.Role == auth.RoleClinician
	if !clinician && q.PatientID != p.UserID {
		handlers.RespondError(w, h.logger, http.StatusForbidden, ErrForbidden)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, q.View(clinician))
}

// Stalled lists pending queries older than the older_than duration.
func (h *Handler) Stalled(w http.ResponseWriter, r *http.Request) {
	var olderThan time.Duration
	if raw := r.URL.Query().Get("older_than"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidDuration)
			return
		}
		olderThan = d
	}

	qs, err := h.sys.Stalled(r.Context(), olderThan)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Views(qs, true))
}

// Regenerate re-dispatches answer generation for a pending query.
// Returns 202 once the generation task is started.
func (h *Handler) Regenerate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	q, err := h.sys.Regenerate(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, q.View(true))
}
