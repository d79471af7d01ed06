package users

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/caduceus/internal/queries"
	"github.com/JaimeStill/caduceus/pkg/auth"
	"github.com/JaimeStill/caduceus/pkg/handlers"
	"github.com/JaimeStill/caduceus/pkg/routes"
)

// Handler provides HTTP endpoints for accounts and clinician profiles.
type Handler struct {
	sys     System
	logger  *slog.Logger
	maxBody int64
}

type specialization struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// NewHandler creates a Handler over sys.
func NewHandler(sys System, logger *slog.Logger, maxBody int64) *Handler {
	return &Handler{
		sys:     sys,
		logger:  logger.With("handler", "users"),
		maxBody: maxBody,
	}
}

// Routes returns the /auth and /clinicians route groups.
func (h *Handler) Routes() routes.Group {
	clinician := func(fn http.HandlerFunc) http.HandlerFunc {
		return auth.Require(h.logger, fn, auth.RoleClinician)
	}

	return routes.Group{
		Children: []routes.Group{
			{
				Prefix: "/auth",
				Tags:   []string{"Auth"},
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/register", Handler: h.Register, OpenAPI: registerOp()},
					{Method: "POST", Pattern: "/login", Handler: h.Login, OpenAPI: loginOp()},
					{Method: "GET", Pattern: "/me", Handler: auth.Require(h.logger, h.Me), OpenAPI: meOp("currentUser", "Current user")},
				},
			},
			{
				Prefix: "/clinicians",
				Tags:   []string{"Clinicians"},
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/profile", Handler: clinician(h.Me), OpenAPI: meOp("getClinicianProfile", "Clinician profile")},
					{Method: "PUT", Pattern: "/profile", Handler: clinician(h.UpdateProfile), OpenAPI: updateProfileOp()},
					{Method: "GET", Pattern: "/specializations", Handler: h.Specializations, OpenAPI: specializationsOp()},
				},
			},
		},
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[RegisterCommand](w, r, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	u, err := h.sys.Register(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, u)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[LoginCommand](w, r, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	session, err := h.sys.Login(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, session)
}

// Me returns the calling user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	u, err := h.sys.Find(r.Context(), p.UserID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, u)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	cmd, err := handlers.DecodeJSON[ProfileCommand](w, r, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	u, err := h.sys.UpdateProfile(r.Context(), p.UserID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, u)
}

// Specializations lists the clinical specialties a clinician may register with.
func (h *Handler) Specializations(w http.ResponseWriter, r *http.Request) {
	specs := queries.Specializations()
	out := make([]specialization, len(specs))
	for i, c := range specs {
		out[i] = specialization{Value: string(c), Label: c.Label()}
	}
	handlers.RespondJSON(w, http.StatusOK, out)
}
