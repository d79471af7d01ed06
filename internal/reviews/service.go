package reviews

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/caduceus/internal/queries"
	"github.com/JaimeStill/caduceus/pkg/pagination"
)

type coordinator struct {
	store      queries.Store
	machine    *queries.Machine
	logger     *slog.Logger
	pagination pagination.Config
	maxBody    int64
}

// New creates the review System over the query store and state machine.
func New(
	store queries.Store,
	machine *queries.Machine,
	logger *slog.Logger,
	pagination pagination.Config,
	maxBody int64,
) System {
	return &coordinator{
		store:      store,
		machine:    machine,
		logger:     logger.With("system", "reviews"),
		pagination: pagination,
		maxBody:    maxBody,
	}
}

func (c *coordinator) Handler() *Handler {
	return NewHandler(c, c.logger, c.pagination, c.maxBody)
}

func (c *coordinator) ListPending(ctx context.Context, page, perPage int) (queries.Page, error) {
	qs, err := c.store.ListByStatus(ctx, queries.StatusPendingReview)
	if err != nil {
		return queries.Page{}, err
	}

	Prioritize(qs)
	return queries.NewPage(qs, page, perPage, true), nil
}

func (c *coordinator) Submit(ctx context.Context, cmd SubmitCommand) (queries.Query, error) {
	if cmd.QueryID == uuid.Nil {
		return queries.Query{}, ErrMissingQueryID
	}

	return c.machine.Verify(ctx, cmd.QueryID, queries.Review{
		ClinicianID: cmd.ClinicianID,
		Response:    cmd.Response,
	})
}

func (c *coordinator) Stats(ctx context.Context, clinicianID uuid.UUID) (Stats, error) {
	var verified, pending []queries.Query

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		verified, err = c.store.ListByStatus(gctx, queries.StatusVerified)
		return err
	})
	g.Go(func() (err error) {
		pending, err = c.store.ListByStatus(gctx, queries.StatusPendingReview)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	stats := Stats{PendingReviews: len(pending)}
	var total float64
	for _, q := range verified {
		if q.ClinicianID == nil || *q.ClinicianID != clinicianID {
			continue
		}
		if rt, ok := q.ResponseTime(); ok {
			stats.TotalReviewed++
			total += rt.Seconds()
		}
	}
	if stats.TotalReviewed > 0 {
		stats.AvgResponseTimeSeconds = total / float64(stats.TotalReviewed)
	}
	return stats, nil
}
