package telemetry

import (
	"log/slog"
	"net/http"
	"time"
)

// HTTPLogging logs one line per request, leveled by status code.
func HTTPLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := wrapResponseWriter(w)
		next.ServeHTTP(rw, r)

		logger := slog.Default()
		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", RequestIDFromContext(r.Context()),
		}

		switch {
		case rw.status >= http.StatusInternalServerError:
			logger.Error("HTTP request", args...)
		case rw.status >= http.StatusBadRequest:
			logger.Warn("HTTP request", args...)
		default:
			logger.Info("HTTP request", args...)
		}
	})
}
