package ratelimit

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/caduceus/pkg/handlers"
)

// ErrLimited is returned to clients that exceed their quota.
var ErrLimited = errors.New("rate limit exceeded")

// KeyFunc derives the quota key for a request.
type KeyFunc func(r *http.Request) string

// Middleware rejects requests over quota with 429. A nil limiter disables limiting.
func Middleware(l *Limiter, key KeyFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(r.Context(), key(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
				handlers.RespondError(w, logger, http.StatusTooManyRequests, ErrLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
