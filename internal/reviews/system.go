package reviews

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/caduceus/internal/queries"
)

// System defines the public contract for the review workflow.
type System interface {
	Handler() *Handler

	ListPending(ctx context.Context, page, perPage int) (queries.Page, error)
	Submit(ctx context.Context, cmd SubmitCommand) (queries.Query, error)
	Stats(ctx context.Context, clinicianID uuid.UUID) (Stats, error)
}

// SubmitCommand is a clinician's review of one query.
type SubmitCommand struct {
	QueryID     uuid.UUID `json:"query_id"`
	Response    string    `json:"response"`
	ClinicianID uuid.UUID `json:"-"`
}

// Stats summarizes one clinician's review activity.
type Stats struct {
	TotalReviewed          int     `json:"total_reviewed"`
	PendingReviews         int     `json:"pending_reviews"`
	AvgResponseTimeSeconds float64 `json:"avg_response_time_seconds"`
}
