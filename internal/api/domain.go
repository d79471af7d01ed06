package api

import (
	"github.com/JaimeStill/caduceus/internal/analytics"
	"github.com/JaimeStill/caduceus/internal/config"
	"github.com/JaimeStill/caduceus/internal/generation"
	"github.com/JaimeStill/caduceus/internal/prompts"
	"github.com/JaimeStill/caduceus/internal/queries"
	"github.com/JaimeStill/caduceus/internal/reviews"
	"github.com/JaimeStill/caduceus/internal/triage"
	"github.com/JaimeStill/caduceus/internal/users"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Queries    queries.System
	Reviews    reviews.System
	Analytics  analytics.System
	Prompts    prompts.System
	Users      users.System
	Dispatcher *generation.Dispatcher
}

// NewDomain creates all domain systems from the API runtime. Without a
// database every store is in-process.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	var (
		queryStore queries.Store
		userStore  users.Store
		promptsSys prompts.System
	)

	if runtime.Database != nil {
		db := runtime.Database.Connection()
		queryStore = queries.NewPostgresStore(db)
		userStore = users.NewPostgresStore(db)
		promptsSys = prompts.New(db, runtime.Logger, runtime.Pagination, runtime.MaxBody)
	} else {
		queryStore = queries.NewMemoryStore()
		userStore = users.NewMemoryStore()
		promptsSys = prompts.NewMemory(runtime.Logger, runtime.Pagination, runtime.MaxBody)
	}

	machine := queries.NewMachine(queryStore, runtime.Events, runtime.Logger)

	classifier := triage.New(
		runtime.Generator,
		promptsSys,
		cfg.Triage.TimeoutDuration(),
		runtime.Logger,
	)

	dispatcher := generation.New(
		runtime.Lifecycle.Context(),
		runtime.Generator,
		promptsSys,
		machine,
		generation.Options{
			AttemptTimeout: cfg.Generation.AttemptTimeoutDuration(),
			MaxAttempts:    cfg.Generation.MaxAttempts,
			Concurrency:    cfg.Generation.Concurrency,
			RetryDelay:     cfg.Generation.RetryDelayDuration(),
		},
		runtime.Logger,
	)

	queriesSys := queries.New(
		queryStore,
		machine,
		classifier,
		dispatcher,
		runtime.Logger,
		queries.Options{
			Pagination: runtime.Pagination,
			MaxBody:    runtime.MaxBody,
			StallAfter: cfg.Generation.StallAfterDuration(),
		},
	)

	return &Domain{
		Queries:    queriesSys,
		Reviews:    reviews.New(queryStore, machine, runtime.Logger, runtime.Pagination, runtime.MaxBody),
		Analytics:  analytics.New(queryStore, runtime.Logger),
		Prompts:    promptsSys,
		Users:      users.New(userStore, runtime.Tokens, cfg.Auth.BcryptCost, runtime.Logger, runtime.MaxBody),
		Dispatcher: dispatcher,
	}
}
