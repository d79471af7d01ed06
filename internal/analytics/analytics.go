// Package analytics computes aggregate statistics over all queries. Results
// are computed fresh from the store on every call.
package analytics

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/caduceus/internal/queries"
)

// Report is the analytics boundary shape. AvgResponseTimeSeconds mirrors
// AverageResponseTime for older clients.
type Report struct {
	TotalQueries           int                      `json:"total_queries"`
	PendingReview          int                      `json:"pending_review"`
	AverageResponseTime    float64                  `json:"average_response_time"`
	AvgResponseTimeSeconds float64                  `json:"avg_response_time_seconds"`
	CategoryStats          map[queries.Category]int `json:"category_stats"`
}

// System defines the public contract for analytics.
type System interface {
	Handler() *Handler
	Compute(ctx context.Context) (Report, error)
}

type aggregator struct {
	store  queries.Store
	logger *slog.Logger
}

// New creates the analytics System over store.
func New(store queries.Store, logger *slog.Logger) System {
	return &aggregator{
		store:  store,
		logger: logger.With("system", "analytics"),
	}
}

func (a *aggregator) Handler() *Handler {
	return NewHandler(a, a.logger)
}

// Compute reads the record set once so every figure in the report comes
// from the same snapshot.
func (a *aggregator) Compute(ctx context.Context) (Report, error) {
	all, err := a.store.ListAll(ctx)
	if err != nil {
		return Report{}, err
	}
	return Summarize(all), nil
}

// Summarize aggregates totals, per-category counts, and the mean response
// time of verified queries. PendingReview is counted from qs.
func Summarize(qs []queries.Query) Report {
	r := Report{
		TotalQueries:  len(qs),
		CategoryStats: make(map[queries.Category]int),
	}

	var (
		total    float64
		verified int
	)
	for _, q := range qs {
		r.CategoryStats[q.Category]++
		if q.Status == queries.StatusPendingReview {
			r.PendingReview++
		}
		if rt, ok := q.ResponseTime(); ok {
			total += rt.Seconds()
			verified++
		}
	}

	if verified > 0 {
		r.AverageResponseTime = total / float64(verified)
	}
	r.AvgResponseTimeSeconds = r.AverageResponseTime
	return r
}
