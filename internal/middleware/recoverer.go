package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"portfolio-service/common/httputil"
)

const internalErrorMessage = "Something went wrong! Please try again later."

// Recoverer turns a panic in a handler into a logged 500 response.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.ErrorContext(r.Context(), "unhandled error",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				httputil.RespondWithFailure(w, http.StatusInternalServerError, internalErrorMessage)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
