package reviews

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/caduceus/internal/queries"
)

// ErrMissingQueryID is returned when a review names no query.
var ErrMissingQueryID = errors.New("query_id is required")

// MapHTTPStatus maps review errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrMissingQueryID) {
		return http.StatusBadRequest
	}
	return queries.MapHTTPStatus(err)
}
