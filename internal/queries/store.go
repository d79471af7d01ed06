package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the durable record contract for queries.
//
// CompareAndUpdate loads the query, verifies its status equals expected,
// applies mutate to a copy, and commits only the mutable fields, all as one
// atomic step. It returns ErrNotFound for unknown ids and a *ConflictError
// when the status differs. An error from mutate aborts the update unchanged.
type Store interface {
	Create(ctx context.Context, q Query) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (Query, error)
	CompareAndUpdate(ctx context.Context, id uuid.UUID, expected Status, mutate func(*Query) error) (Query, error)
	ListByStatus(ctx context.Context, status Status) ([]Query, error)
	ListAll(ctx context.Context) ([]Query, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Query, error)
}

// StalledLister is implemented by stores that can select pending queries
// created at or before cutoff without listing every pending query.
type StalledLister interface {
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]Query, error)
}

// mutable copies the fields a transition may change from src into dst.
func mutable(dst *Query, src Query) {
	dst.Status = src.Status
	dst.AIResponse = src.AIResponse
	dst.ClinicianResponse = src.ClinicianResponse
	dst.ClinicianID = src.ClinicianID
	dst.UpdatedAt = src.UpdatedAt
	dst.ReviewedAt = src.ReviewedAt
}
