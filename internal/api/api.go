// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net"
	"net/http"

	"github.com/JaimeStill/caduceus/internal/config"
	"github.com/JaimeStill/caduceus/internal/infrastructure"
	"github.com/JaimeStill/caduceus/pkg/auth"
	"github.com/JaimeStill/caduceus/pkg/middleware"
	"github.com/JaimeStill/caduceus/pkg/module"
	"github.com/JaimeStill/caduceus/pkg/ratelimit"
)

// NewModule creates the API module with all domain handlers and middleware.
// Background generation is registered with the lifecycle so shutdown waits
// for in-flight tasks.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)
	domain.Dispatcher.Start(runtime.Lifecycle)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(auth.Authenticate(runtime.Tokens, runtime.Logger))
	m.Use(ratelimit.Middleware(runtime.Limiter, clientKey, runtime.Logger))

	return m, nil
}

// clientKey identifies the caller for rate limiting: the authenticated user
// when present, else the remote host.
func clientKey(r *http.Request) string {
	if p, ok := auth.FromContext(r.Context()); ok {
		return "user:" + p.UserID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}
