package reviews

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/caduceus/internal/queries"
	"github.com/JaimeStill/caduceus/pkg/auth"
	"github.com/JaimeStill/caduceus/pkg/handlers"
	"github.com/JaimeStill/caduceus/pkg/pagination"
	"github.com/JaimeStill/caduceus/pkg/routes"
)

// Handler provides HTTP endpoints for the review workflow.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
	maxBody    int64
}

type reviewBody struct {
	Response string `json:"response"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxBody int64,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "reviews"),
		pagination: pagination,
		maxBody:    maxBody,
	}
}

// Routes returns the review endpoints. Every route requires a clinician.
func (h *Handler) Routes() routes.Group {
	clinician := func(fn http.HandlerFunc) http.HandlerFunc {
		return auth.Require(h.logger, fn, auth.RoleClinician)
	}

	return routes.Group{
		Children: []routes.Group{
			{
				Prefix: "/reviews",
				Tags:   []string{"Reviews"},
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: clinician(h.List), OpenAPI: queueOp()},
					{Method: "POST", Pattern: "", Handler: clinician(h.Submit), OpenAPI: submitOp()},
				},
			},
			{
				Prefix: "/queries",
				Tags:   []string{"Reviews"},
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/{id}/review", Handler: clinician(h.Review), OpenAPI: reviewOp()},
				},
			},
			{
				Prefix: "/clinicians",
				Tags:   []string{"Clinicians"},
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/stats", Handler: clinician(h.Stats), OpenAPI: statsOp()},
				},
			},
		},
	}
}

// List returns the prioritized queue of queries awaiting review.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	page, err := h.sys.ListPending(r.Context(), req.Page, req.PerPage)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, page)
}

// Submit reviews the query named by query_id in the body.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[SubmitCommand](w, r, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	h.submit(w, r, cmd)
}

// Review reviews the query named by the id path parameter.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, queries.ErrNotFound)
		return
	}

	body, err := handlers.DecodeJSON[reviewBody](w, r, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	h.submit(w, r, SubmitCommand{QueryID: id, Response: body.Response})
}

// Stats returns review statistics for the calling clinician.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	stats, err := h.sys.Stats(r.Context(), p.UserID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, cmd SubmitCommand) {
	p, _ := auth.FromContext(r.Context())
	cmd.ClinicianID = p.UserID

	q, err := h.sys.Submit(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, q.View(true))
}
