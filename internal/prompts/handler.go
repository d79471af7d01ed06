package prompts

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/caduceus/pkg/auth"
	"github.com/JaimeStill/caduceus/pkg/handlers"
	"github.com/JaimeStill/caduceus/pkg/pagination"
	"github.com/JaimeStill/caduceus/pkg/routes"
)

// Handler serves prompt override management to clinicians.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
	maxBody    int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// StageContent is the response type for stage-scoped content endpoints.
type StageContent struct {
	Stage   Stage  `json:"stage"`
	Content string `json:"content"`
}

func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxBody int64,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "prompts"),
		pagination: pagination,
		maxBody:    maxBody,
	}
}

// Routes returns the prompt route group. Every route requires a clinician.
func (h *Handler) Routes() routes.Group {
	clinician := func(fn http.HandlerFunc) http.HandlerFunc {
		return auth.Require(h.logger, fn, auth.RoleClinician)
	}

	return routes.Group{
		Prefix: "/prompts",
		Tags:   []string{"Prompts"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: clinician(h.List), OpenAPI: listOp()},
			{Method: "POST", Pattern: "", Handler: clinician(h.Create), OpenAPI: createOp()},
			{Method: "POST", Pattern: "/search", Handler: clinician(h.Search), OpenAPI: searchOp()},
			{Method: "GET", Pattern: "/stages", Handler: clinician(h.Stages), OpenAPI: stagesOp()},
			{Method: "GET", Pattern: "/{id}", Handler: clinician(h.Find), OpenAPI: findOp()},
			{Method: "PUT", Pattern: "/{id}", Handler: clinician(h.Update), OpenAPI: updateOp()},
			{Method: "DELETE", Pattern: "/{id}", Handler: clinician(h.Delete), OpenAPI: deleteOp()},
			{Method: "POST", Pattern: "/{id}/activate", Handler: clinician(h.Activate), OpenAPI: toggleOp("activatePrompt", "Make a prompt the active override for its stage")},
			{Method: "POST", Pattern: "/{id}/deactivate", Handler: clinician(h.Deactivate), OpenAPI: toggleOp("deactivatePrompt", "Fall back to the default instructions")},
			{Method: "GET", Pattern: "/{stage}/instructions", Handler: clinician(h.Instructions), OpenAPI: stageOp("getStageInstructions", "Effective instructions for a stage")},
			{Method: "GET", Pattern: "/{stage}/spec", Handler: clinician(h.Spec), OpenAPI: stageOp("getStageSpec", "Output specification for a stage")},
			{Method: "GET", Pattern: "/{stage}/preview", Handler: clinician(h.Preview), OpenAPI: stageOp("previewStagePrompt", "System prompt sent to the generator for a stage")},
		},
	}
}

// List returns a page of prompts filtered by query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	h.list(w, r, page, FiltersFromQuery(r.URL.Query()))
}

// Search is List with the criteria in a JSON body.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[SearchRequest](w, r, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	req.PageRequest.Normalize(h.pagination)
	h.list(w, r, req.PageRequest, req.Filters)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, page pagination.PageRequest, filters Filters) {
	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Stages(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Stages())
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	prompt, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, prompt)
}

// Create stores a new, inactive prompt override.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[CreateCommand](w, r, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	prompt, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.audit(r, "prompt created", prompt)
	handlers.RespondJSON(w, http.StatusCreated, prompt)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	cmd, err := handlers.DecodeJSON[UpdateCommand](w, r, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	prompt, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.audit(r, "prompt updated", prompt)
	handlers.RespondJSON(w, http.StatusOK, prompt)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.logger.Info("prompt deleted", "id", id, "by", actor(r))
	w.WriteHeader(http.StatusNoContent)
}

// Activate makes the prompt the single active override for its stage.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "prompt activated", h.sys.Activate)
}

// Deactivate returns the prompt's stage to its default instructions.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "prompt deactivated", h.sys.Deactivate)
}

func (h *Handler) toggle(
	w http.ResponseWriter,
	r *http.Request,
	msg string,
	fn func(context.Context, uuid.UUID) (*Prompt, error),
) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	prompt, err := fn(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.audit(r, msg, prompt)
	handlers.RespondJSON(w, http.StatusOK, prompt)
}

// Instructions returns the override in effect for a stage, or its defaults.
func (h *Handler) Instructions(w http.ResponseWriter, r *http.Request) {
	h.stage(w, r, h.sys.Instructions)
}

// Spec returns the fixed output specification for a stage.
func (h *Handler) Spec(w http.ResponseWriter, r *http.Request) {
	h.stage(w, r, func(_ context.Context, s Stage) (string, error) {
		return Spec(s)
	})
}

// Preview returns the composed system prompt for a stage exactly as the
// triage classifier or answer generator would send it.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	h.stage(w, r, func(ctx context.Context, s Stage) (string, error) {
		return SystemPrompt(ctx, h.sys, s)
	})
}

func (h *Handler) stage(
	w http.ResponseWriter,
	r *http.Request,
	resolve func(context.Context, Stage) (string, error),
) {
	stage, err := ParseStage(r.PathValue("stage"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	text, err := resolve(r.Context(), stage)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, StageContent{Stage: stage, Content: text})
}

// pathID parses the {id} segment. An unparseable id cannot name a prompt,
// so it is reported as not found.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) audit(r *http.Request, msg string, p *Prompt) {
	h.logger.Info(msg,
		"id", p.ID,
		"name", p.Name,
		"stage", p.Stage,
		"active", p.Active,
		"by", actor(r),
	)
}

func actor(r *http.Request) uuid.UUID {
	p, _ := auth.FromContext(r.Context())
	return p.UserID
}
