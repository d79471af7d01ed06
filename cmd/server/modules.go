package main

import (
	"github.com/JaimeStill/caduceus/internal/api"
	"github.com/JaimeStill/caduceus/internal/config"
	"github.com/JaimeStill/caduceus/internal/infrastructure"
	"github.com/JaimeStill/caduceus/pkg/middleware"
	"github.com/JaimeStill/caduceus/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API: apiModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()
	router.Use(
		middleware.RequestID(),
		middleware.Recover(infra.Logger),
	)
	router.HandleHealth(infra)
	return router
}
