package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/maccam912/vikunja-ai/pkg/observability"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestContext gives each request a request id and a correlation id,
// inheriting them from the incoming headers when present, and logs the outcome.
func requestContext(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := observability.WithRequestID(r.Context(), r.Header.Get(observability.RequestIDHeader))
			ctx = observability.WithCorrelationID(ctx, r.Header.Get(observability.CorrelationIDHeader))

			w.Header().Set(observability.RequestIDHeader, observability.RequestIDFromContext(ctx))
			w.Header().Set(observability.CorrelationIDHeader, observability.CorrelationIDFromContext(ctx))

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(ctx))

			logger.InfoContext(ctx, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
