// Package reviews coordinates clinician review of drafted answers: the
// prioritized review queue, review submission, and per-clinician stats.
package reviews

import (
	"cmp"
	"slices"

	"github.com/JaimeStill/caduceus/internal/queries"
)

// Compare orders queries for review: higher urgency first, then older first.
func Compare(a, b queries.Query) int {
	if c := cmp.Compare(b.Urgency.Rank(), a.Urgency.Rank()); c != 0 {
		return c
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}

// Prioritize sorts qs in review order. Ties keep their store order.
func Prioritize(qs []queries.Query) {
	slices.SortStableFunc(qs, Compare)
}
