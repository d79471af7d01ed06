package analytics

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/caduceus/pkg/auth"
	"github.com/JaimeStill/caduceus/pkg/handlers"
	"github.com/JaimeStill/caduceus/pkg/openapi"
	"github.com/JaimeStill/caduceus/pkg/routes"
)

// Handler provides the analytics endpoint.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "analytics"),
	}
}

// Routes returns the route group for analytics. Clinicians only.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/queries",
		Tags:   []string{"Analytics"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/analytics", Handler: auth.Require(h.logger, h.Get, auth.RoleClinician), OpenAPI: reportOp()},
		},
	}
}

// Get computes and returns the analytics report.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.sys.Compute(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

// Schemas returns the component schema for the analytics report.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"AnalyticsReport": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"total_queries":             {Type: "integer"},
				"pending_review":            {Type: "integer"},
				"average_response_time":     {Type: "number", Description: "Mean seconds from submission to verification"},
				"avg_response_time_seconds": {Type: "number", Description: "Alias of average_response_time"},
				"category_stats":            {Type: "object", AdditionalProperties: &openapi.Schema{Type: "integer"}},
			},
		},
	}
}

func reportOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "getAnalytics",
		Summary:     "System-wide query analytics",
		Responses: map[int]*openapi.Response{
			http.StatusOK:        openapi.ResponseJSON("Analytics report", "AnalyticsReport"),
			http.StatusForbidden: openapi.ResponseRef(openapi.Forbidden),
		},
		Security: openapi.Bearer(),
	}
}
