package queries

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/caduceus/pkg/pagination"
)

type service struct {
	store      Store
	machine    *Machine
	classifier Classifier
	dispatcher Dispatcher
	logger     *slog.Logger
	opts       Options
	now        func() time.Time
}

// Options carries the boundary settings for the query System.
type Options struct {
	Pagination pagination.Config
	MaxBody    int64
	StallAfter time.Duration
}

// New creates the query System. Created queries are triaged by classifier and
// handed to dispatcher for answer generation.
func New(
	store Store,
	machine *Machine,
	classifier Classifier,
	dispatcher Dispatcher,
	logger *slog.Logger,
	opts Options,
) System {
	return &service{
		store:      store,
		machine:    machine,
		classifier: classifier,
		dispatcher: dispatcher,
		logger:     logger.With("system", "queries"),
		opts:       opts,
		now:        time.Now,
	}
}

func (s *service) Handler(queue ReviewQueue) *Handler {
	return NewHandler(s, queue, s.logger, s.opts.Pagination, s.opts.MaxBody)
}

func (s *service) Create(ctx context.Context, patientID uuid.UUID, cmd CreateCommand) (Query, error) {
	if blank(cmd.Question) {
		return Query{}, ErrEmptyQuestion
	}

	triage := s.classifier.Classify(ctx, cmd.Question, cmd.UrgencyLevel)

	q, err := s.machine.Create(ctx, NewQuery{
		PatientID:   patientID,
		Question:    cmd.Question,
		Category:    triage.Category,
		Urgency:     triage.Urgency,
		IsAnonymous: cmd.IsAnonymous,
	})
	if err != nil {
		return Query{}, err
	}

	s.dispatcher.Dispatch(q)
	return q, nil
}

func (s *service) Find(ctx context.Context, id uuid.UUID) (Query, error) {
	return s.store.Get(ctx, id)
}

func (s *service) ListForPatient(ctx context.Context, patientID uuid.UUID, page, perPage int) (Page, error) {
	qs, err := s.store.ListByPatient(ctx, patientID)
	if err != nil {
		return Page{}, err
	}

	slices.SortStableFunc(qs, func(a, b Query) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return NewPage(qs, page, perPage, false), nil
}

func (s *service) Stalled(ctx context.Context, olderThan time.Duration) ([]Query, error) {
	if olderThan <= 0 {
		olderThan = s.opts.StallAfter
	}
	cutoff := s.now().Add(-olderThan)

	var (
		pending []Query
		err     error
	)
	if sl, ok := s.store.(StalledLister); ok {
		pending, err = sl.ListPendingBefore(ctx, cutoff)
	} else {
		pending, err = s.store.ListByStatus(ctx, StatusPending)
	}
	if err != nil {
		return nil, err
	}

	stalled := make([]Query, 0, len(pending))
	for _, q := range pending {
		if !q.CreatedAt.After(cutoff) {
			stalled = append(stalled, q)
		}
	}

	slices.SortStableFunc(stalled, func(a, b Query) int {
		return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	})
	return stalled, nil
}

func (s *service) Regenerate(ctx context.Context, id uuid.UUID) (Query, error) {
	q, err := s.store.Get(ctx, id)
	if err != nil {
		return Query{}, err
	}
	if q.Status != StatusPending {
		return Query{}, &TransitionError{ID: id, From: q.Status, To: StatusPendingReview}
	}

	s.logger.Info("generation re-dispatched", "id", id)
	s.dispatcher.Dispatch(q)
	return q, nil
}

// NewPage windows an ordered result set into the paged boundary shape.
// The requested page is clamped into range.
func NewPage(qs []Query, page, perPage int, clinicianFacing bool) Page {
	w := pagination.NewWindow(len(qs), page, perPage)
	return Page{
		Queries:     Views(pagination.Slice(qs, w), clinicianFacing),
		Pages:       w.Pages,
		CurrentPage: w.Page,
		Total:       len(qs),
	}
}
