package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"

	"portfolio-service/common/httputil"
	"portfolio-service/internal/metrics"
)

type KeyFunc func(r *http.Request) string

// Middleware rejects requests over the limiter's policy with 429 before they
// reach the wrapped handler. A failing store lets the request through.
func Middleware(limiter *Limiter, keyFn KeyFunc, m *metrics.Metrics, logger *slog.Logger) func(next http.Handler) http.Handler {
	policy := limiter.Policy()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)

			dec, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.WarnContext(r.Context(), "rate limit store unavailable, allowing request",
					"policy", policy.Name,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(dec.ResetAt.Unix(), 10))

			if !dec.Allowed {
				m.RecordRateLimited(r.Context(), policy.Name)
				logger.InfoContext(r.Context(), "rate limit exceeded",
					"policy", policy.Name,
					"address", key,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(dec.RetryAfter.Seconds())))
				httputil.RespondWithError(w, http.StatusTooManyRequests, policy.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
