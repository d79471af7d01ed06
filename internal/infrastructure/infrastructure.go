// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, database, rate limiting, events,
// token signing and the AI generator) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/caduceus/internal/config"
	"github.com/JaimeStill/caduceus/pkg/ai"
	"github.com/JaimeStill/caduceus/pkg/auth"
	"github.com/JaimeStill/caduceus/pkg/database"
	"github.com/JaimeStill/caduceus/pkg/events"
	"github.com/JaimeStill/caduceus/pkg/lifecycle"
	"github.com/JaimeStill/caduceus/pkg/ratelimit"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil when no database is configured and domain systems fall
// back to in-process stores. Limiter is nil when rate limiting is disabled.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Limiter   *ratelimit.Limiter
	Events    events.Publisher
	Tokens    *auth.Tokens
	Generator ai.Generator

	publisher *events.Async
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Events:    events.Noop(),
		Tokens:    auth.NewTokens(&cfg.Auth),
	}

	if cfg.Database.Configured() {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	} else {
		logger.Warn("no database configured, using in-memory stores")
	}

	if cfg.RateLimit.Enabled {
		limiter, err := ratelimit.New(&cfg.RateLimit, logger)
		if err != nil {
			return nil, fmt.Errorf("rate limiter init failed: %w", err)
		}
		infra.Limiter = limiter
	}

	if cfg.Events.Enabled {
		pub, err := events.New(context.Background(), &cfg.Events, logger)
		if err != nil {
			return nil, fmt.Errorf("events init failed: %w", err)
		}
		async := events.NewAsync(pub, cfg.Events.Buffer, logger)
		infra.Events = async
		infra.publisher = async
	}

	gen, err := ai.New(&cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("ai init failed: %w", err)
	}
	infra.Generator = gen

	return infra, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Limiter != nil {
		if err := i.Limiter.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("rate limiter start failed: %w", err)
		}
	}
	if i.publisher != nil {
		if err := i.publisher.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("events start failed: %w", err)
		}
	}
	return nil
}

// Ready reports whether startup has completed and, when a database is
// configured, whether it answered its last ping.
func (i *Infrastructure) Ready() bool {
	if !i.Lifecycle.Ready() {
		return false
	}
	return i.Database == nil || i.Database.Ready()
}

// StorageMode names the record store backing the domain systems.
func (i *Infrastructure) StorageMode() string {
	if i.Database == nil {
		return "memory"
	}
	return "postgres"
}
