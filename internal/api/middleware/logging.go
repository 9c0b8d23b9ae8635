package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logging writes one access-log line per request via slog. It runs inside the
// otelhttp handler so r.Context() carries the span and the log record picks up
// trace_id/span_id (and request_id) from the context handler.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		slog.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
