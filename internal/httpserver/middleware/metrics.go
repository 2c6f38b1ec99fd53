package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/davidbz/bridge/internal/observability"
)

// Metrics records request counts and latency per route and logs the outcome.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			elapsed := time.Since(start)
			path := routeLabel(r.URL.Path)

			observability.RequestsTotal.WithLabelValues(r.Method, path, statusClass(sw.status)).Inc()
			observability.RequestDuration.WithLabelValues(r.Method, path).Observe(elapsed.Seconds())

			observability.FromContext(r.Context()).Info("request finished",
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.Int("status", sw.status),
				observability.Duration("duration", elapsed),
			)
		})
	}
}

// routeLabel bounds label cardinality to the registered routes.
func routeLabel(path string) string {
	switch {
	case path == "/", path == "/health", path == "/metrics",
		path == "/v1/models", path == "/v1/chat/completions":
		return path
	case strings.HasPrefix(path, "/v1/models/"):
		return "/v1/models/{id}"
	default:
		return "other"
	}
}

func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}

// statusWriter captures the response status.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

// WriteHeader captures the status code and delegates to the underlying writer.
func (w *statusWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
	}
	w.ResponseWriter.WriteHeader(status)
}

// Write delegates to the underlying writer and marks the status as written.
func (w *statusWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

// Flush delegates to the underlying writer if it implements http.Flusher.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter for http.NewResponseController.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
