package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/caduceus/internal/analytics"
	"github.com/JaimeStill/caduceus/internal/config"
	"github.com/JaimeStill/caduceus/internal/prompts"
	"github.com/JaimeStill/caduceus/internal/queries"
	"github.com/JaimeStill/caduceus/internal/reviews"
	"github.com/JaimeStill/caduceus/internal/users"
	"github.com/JaimeStill/caduceus/pkg/openapi"
	"github.com/JaimeStill/caduceus/pkg/routes"
)

// NewSpec describes every API route under the configured base path.
func NewSpec(cfg *config.Config, groups []routes.Group) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	cfg.API.OpenAPI.Apply(spec, cfg.API.BasePath)

	spec.Components.AddSchemas(queries.Schemas())
	spec.Components.AddSchemas(users.Schemas())
	spec.Components.AddSchemas(reviews.Schemas())
	spec.Components.AddSchemas(analytics.Schemas())
	spec.Components.AddSchemas(prompts.Schemas())

	routes.Describe(spec, groups...)
	return spec
}

func specHandler(cfg *config.Config, groups []routes.Group) (http.HandlerFunc, error) {
	data, err := openapi.MarshalJSON(NewSpec(cfg, groups))
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return openapi.ServeSpec(data), nil
}
