package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// System defines the public contract for patient-facing query operations.
type System interface {
	Handler(queue ReviewQueue) *Handler

	Create(ctx context.Context, patientID uuid.UUID, cmd CreateCommand) (Query, error)
	Find(ctx context.Context, id uuid.UUID) (Query, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID, page, perPage int) (Page, error)
	Stalled(ctx context.Context, olderThan time.Duration) ([]Query, error)
	Regenerate(ctx context.Context, id uuid.UUID) (Query, error)
}

// Classifier triages a question. A non-nil urgency is returned unchanged.
// Implementations never fail; they fall back to defaults instead.
type Classifier interface {
	Classify(ctx context.Context, question string, urgency *Urgency) Triage
}

// Task is an in-flight answer generation for one query.
type Task interface {
	Done() <-chan struct{}
	Result() (Query, error)
	Cancel()
}

// Dispatcher starts asynchronous answer generation for a pending query.
type Dispatcher interface {
	Dispatch(q Query) Task
}

// ReviewQueue lists queries awaiting clinician review in priority order.
type ReviewQueue interface {
	ListPending(ctx context.Context, page, perPage int) (Page, error)
}
