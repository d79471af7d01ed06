package api

import (
	"net/http"

	"github.com/JaimeStill/caduceus/internal/config"
	"github.com/JaimeStill/caduceus/pkg/routes"
)

func routeGroups(domain *Domain) []routes.Group {
	return []routes.Group{
		domain.Users.Handler().Routes(),
		domain.Queries.Handler(domain.Reviews).Routes(),
		domain.Reviews.Handler().Routes(),
		domain.Analytics.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
	}
}

func registerRoutes(mux *http.ServeMux, domain *Domain, cfg *config.Config) error {
	groups := routeGroups(domain)
	routes.Register(mux, groups...)

	spec, err := specHandler(cfg, groups)
	if err != nil {
		return err
	}
	mux.HandleFunc("GET "+cfg.API.OpenAPI.Path, spec)
	return nil
}
