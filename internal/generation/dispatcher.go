// Package generation drafts answers for pending queries in the background.
// Each dispatched query gets a Task bounded by a shared concurrency limit
// and retried once on failure; a query whose attempts are exhausted stays
// pending and is parked for manual intervention.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/JaimeStill/caduceus/internal/prompts"
	"github.com/JaimeStill/caduceus/internal/queries"
	"github.com/JaimeStill/caduceus/pkg/ai"
	"github.com/JaimeStill/caduceus/pkg/lifecycle"
)

var (
	// ErrEmptyOutput is returned for an attempt that produced no text.
	ErrEmptyOutput = errors.New("generator returned empty output")
	// ErrStopped is the result of a task dispatched after shutdown began.
	ErrStopped = errors.New("generation dispatcher stopped")
)

// Options bounds generation work.
type Options struct {
	AttemptTimeout time.Duration
	MaxAttempts    int
	Concurrency    int64
	RetryDelay     time.Duration
}

// Dispatcher implements queries.Dispatcher.
type Dispatcher struct {
	ctx     context.Context
	gen     ai.Generator
	prompts prompts.Source
	machine *queries.Machine
	sem     *semaphore.Weighted
	opts    Options
	logger  *slog.Logger

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// New creates a Dispatcher whose tasks run under ctx and stop when it is
// cancelled.
func New(
	ctx context.Context,
	gen ai.Generator,
	src prompts.Source,
	machine *queries.Machine,
	opts Options,
	logger *slog.Logger,
) *Dispatcher {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Dispatcher{
		ctx:     ctx,
		gen:     gen,
		prompts: src,
		machine: machine,
		sem:     semaphore.NewWeighted(opts.Concurrency),
		opts:    opts,
		logger:  logger.With("system", "generation"),
	}
}

// Start registers a shutdown hook that waits for in-flight tasks once the
// lifecycle context is cancelled.
func (d *Dispatcher) Start(lc *lifecycle.Coordinator) {
	lc.OnShutdown("generation", func() {
		<-lc.Context().Done()
		d.Wait()
		d.logger.Info("generation dispatcher stopped")
	})
}

// Wait stops accepting new tasks and blocks until every dispatched task
// has finished.
func (d *Dispatcher) Wait() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.wg.Wait()
}

// Dispatch starts answer generation for q and returns immediately. Once
// shutdown has begun the returned task is already done with ErrStopped and
// the query stays pending.
func (d *Dispatcher) Dispatch(q queries.Query) queries.Task {
	ctx, cancel := context.WithCancel(d.ctx)
	t := &task{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || d.ctx.Err() != nil {
		cancel()
		t.err = ErrStopped
		close(t.done)
		d.logger.Info("generation not started", "id", q.ID, "reason", "shutting down")
		return t
	}

	d.wg.Go(func() {
		defer close(t.done)
		defer cancel()
		t.result, t.err = d.run(ctx, q)
	})

	return t
}

func (d *Dispatcher) run(ctx context.Context, q queries.Query) (queries.Query, error) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return queries.Query{}, err
	}
	defer d.sem.Release(1)

	system, err := prompts.SystemPrompt(ctx, d.prompts, prompts.StageAnswer)
	if err != nil {
		if ctx.Err() == nil {
			d.machine.Park(ctx, q, err)
		}
		return queries.Query{}, err
	}
	user := userPrompt(q)

	var lastErr error
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		text, err := d.attempt(ctx, system, user)
		if err == nil {
			return d.commit(ctx, q, text)
		}

		lastErr = err
		if ctx.Err() != nil {
			d.logger.Info("generation cancelled", "id", q.ID, "attempt", attempt)
			return queries.Query{}, ctx.Err()
		}
		d.logger.Warn("generation attempt failed", "id", q.ID, "attempt", attempt, "error", err)

		if attempt < d.opts.MaxAttempts && !d.sleep(ctx) {
			return queries.Query{}, ctx.Err()
		}
	}

	d.machine.Park(ctx, q, lastErr)
	return queries.Query{}, fmt.Errorf("generation exhausted after %d attempts: %w", d.opts.MaxAttempts, lastErr)
}

func (d *Dispatcher) attempt(ctx context.Context, system, user string) (string, error) {
	if d.opts.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.AttemptTimeout)
		defer cancel()
	}

	text, err := d.gen.Generate(ctx, system, user)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyOutput
	}
	return text, nil
}

// commit records the answer even if ctx was cancelled after generation
// finished.
func (d *Dispatcher) commit(ctx context.Context, q queries.Query, text string) (queries.Query, error) {
	answered, err := d.machine.Answer(context.WithoutCancel(ctx), q.ID, Normalize(q.Category, text))
	if errors.Is(err, queries.ErrInvalidTransition) {
		d.logger.Info("generated answer discarded", "id", q.ID, "reason", "query no longer pending")
	}
	return answered, err
}

func (d *Dispatcher) sleep(ctx context.Context) bool {
	if d.opts.RetryDelay <= 0 {
		return true
	}
	timer := time.NewTimer(d.opts.RetryDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func userPrompt(q queries.Query) string {
	return fmt.Sprintf(
		"Category: %s\nUrgency: %s\n\nQuery: %s",
		q.Category.Label(),
		q.Urgency,
		q.Question,
	)
}

type task struct {
	done   chan struct{}
	cancel context.CancelFunc
	result queries.Query
	err    error
}

func (t *task) Done() <-chan struct{} {
	return t.done
}

// Result returns the outcome once Done is closed.
func (t *task) Result() (queries.Query, error) {
	<-t.done
	return t.result, t.err
}

func (t *task) Cancel() {
	t.cancel()
}
