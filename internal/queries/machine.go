package queries

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/caduceus/pkg/events"
)

// Lifecycle event types published after each committed transition.
const (
	EventCreated  = "query.created"
	EventAnswered = "query.answered"
	EventVerified = "query.verified"
	EventParked   = "query.parked"
)

// Machine is the only writer of Query.Status. Every transition is a
// compare-and-swap against the store.
type Machine struct {
	store     Store
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewMachine creates a Machine over store. A nil publisher discards events.
func NewMachine(store Store, publisher events.Publisher, logger *slog.Logger) *Machine {
	if publisher == nil {
		publisher = events.Noop()
	}
	return &Machine{
		store:     store,
		publisher: publisher,
		logger:    logger.With("system", "state-machine"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	m.now = now
	return m
}

// Create validates a triaged submission and stores it as pending.
func (m *Machine) Create(ctx context.Context, nq NewQuery) (Query, error) {
	question := strings.TrimSpace(nq.Question)
	if question == "" {
		return Query{}, ErrEmptyQuestion
	}
	if _, ok := labels[nq.Category]; !ok {
		return Query{}, ErrInvalidCategory
	}
	if nq.Urgency.Rank() < 0 {
		return Query{}, ErrInvalidUrgency
	}

	now := m.now()
	q := Query{
		ID:          uuid.New(),
		PatientID:   nq.PatientID,
		Question:    question,
		Category:    nq.Category,
		Urgency:     nq.Urgency,
		Status:      StatusPending,
		IsAnonymous: nq.IsAnonymous,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := m.store.Create(ctx, q)
	if err != nil {
		return Query{}, err
	}
	q.ID = id

	m.logger.Info("query created", "id", q.ID, "category", q.Category, "urgency", q.Urgency)
	m.publish(ctx, EventCreated, q)
	return q, nil
}

// Answer records the generated draft and moves pending -> pending_review.
func (m *Machine) Answer(ctx context.Context, id uuid.UUID, text string) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, ErrEmptyAnswer
	}

	q, err := m.transition(ctx, id, StatusPendingReview, func(q *Query) {
		q.AIResponse = text
	})
	if err != nil {
		return Query{}, err
	}

	m.logger.Info("query answered", "id", q.ID)
	m.publish(ctx, EventAnswered, q)
	return q, nil
}

// Verify applies a clinician review and moves pending_review -> verified.
// An unknown id reports ErrNotFound ahead of ErrEmptyReview.
func (m *Machine) Verify(ctx context.Context, id uuid.UUID, review Review) (Query, error) {
	response := strings.TrimSpace(review.Response)
	if response == "" {
		if _, err := m.store.Get(ctx, id); err != nil {
			return Query{}, err
		}
		return Query{}, ErrEmptyReview
	}

	q, err := m.transition(ctx, id, StatusVerified, func(q *Query) {
		reviewed := m.now()
		if reviewed.Before(q.CreatedAt) {
			reviewed = q.CreatedAt
		}
		clinician := review.ClinicianID
		q.ClinicianResponse = response
		q.ClinicianID = &clinician
		q.ReviewedAt = &reviewed
	})
	if err != nil {
		return Query{}, err
	}

	m.logger.Info("query verified", "id", q.ID, "clinician_id", review.ClinicianID)
	m.publish(ctx, EventVerified, q)
	return q, nil
}

// Park records that automatic answer generation gave up on a pending query.
// The query stays pending; only an event and a warning are emitted.
func (m *Machine) Park(ctx context.Context, q Query, cause error) {
	m.logger.Warn("query parked awaiting manual intervention", "id", q.ID, "error", cause)
	m.publish(ctx, EventParked, q)
}

func (m *Machine) transition(ctx context.Context, id uuid.UUID, to Status, apply func(*Query)) (Query, error) {
	from, ok := Source(to)
	if !ok {
		return Query{}, &TransitionError{ID: id, To: to}
	}

	q, err := m.store.CompareAndUpdate(ctx, id, from, func(q *Query) error {
		apply(q)
		q.Status = to
		q.UpdatedAt = m.now()
		return nil
	})

	var conflict *ConflictError
	if errors.As(err, &conflict) {
		actual := conflict.Actual
		if actual == "" {
			if current, getErr := m.store.Get(ctx, id); getErr == nil {
				actual = current.Status
			}
		}
		m.logger.Warn("transition rejected", "id", id, "from", actual, "to", to)
		return Query{}, &TransitionError{ID: id, From: actual, To: to}
	}
	return q, err
}

func (m *Machine) publish(ctx context.Context, eventType string, q Query) {
	err := m.publisher.Publish(context.WithoutCancel(ctx), events.Event{
		Type: eventType,
		Key:  q.ID.String(),
		Time: m.now(),
		Payload: map[string]any{
			"status":        q.Status,
			"category":      q.Category,
			"urgency_level": q.Urgency,
		},
	})
	if err != nil {
		m.logger.Error("event publish failed", "type", eventType, "id", q.ID, "error", err)
	}
}
