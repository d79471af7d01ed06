package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/caduceus/pkg/lifecycle"
)

// Async errors.
var (
	ErrBufferFull = errors.New("event buffer full")
	ErrClosed     = errors.New("event publisher closed")
)

// Async queues events in a bounded buffer and delivers them to the wrapped
// Publisher from a single goroutine, so Publish never waits on the broker
// and events keep their publish order. A full buffer drops the event.
type Async struct {
	next   Publisher
	queue  chan Event
	done   chan struct{}
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewAsync starts the delivery goroutine for next.
func NewAsync(next Publisher, buffer int, logger *slog.Logger) *Async {
	if buffer < 1 {
		buffer = 1
	}
	a := &Async{
		next:   next,
		queue:  make(chan Event, buffer),
		done:   make(chan struct{}),
		logger: logger.With("system", "events"),
	}
	go a.run()
	return a
}

// Unwrap returns the broker publisher.
func (a *Async) Unwrap() Publisher {
	return a.next
}

func (a *Async) Publish(_ context.Context, e Event) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- e:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
func (a *Async) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	<-a.done
}

// Start registers one shutdown hook that drains the queue and then closes
// the broker publisher, so queued events are flushed before the connection
// goes away.
func (a *Async) Start(lc *lifecycle.Coordinator) error {
	lc.OnShutdown("events", func() {
		<-lc.Context().Done()
		a.Close()

		c, ok := a.next.(io.Closer)
		if !ok {
			return
		}
		if err := c.Close(); err != nil {
			a.logger.Error("event publisher close failed", "error", err)
			return
		}
		a.logger.Info("event publisher closed")
	})
	return nil
}

func (a *Async) run() {
	defer close(a.done)
	for e := range a.queue {
		if err := a.next.Publish(context.Background(), e); err != nil {
			a.logger.Error("event delivery failed", "type", e.Type, "key", e.Key, "error", err)
		}
	}
}
