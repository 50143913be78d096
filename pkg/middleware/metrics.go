// Package middleware provides the HTTP middleware of the search server:
// request ids, Prometheus request metrics and request timeouts.
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/metrics"
)

// routes are the paths reported under their own label.
var routes = map[string]bool{
	"/api/v1/search": true,
	"/api/v1/stats":  true,
	"/health/live":   true,
	"/health/ready":  true,
	"/metrics":       true,
}

// Metrics records request count, latency and in-flight requests, and logs
// each request at debug level with its request id.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			route := routeLabel(r.URL.Path)
			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

			logger.FromContext(r.Context()).LogAttrs(r.Context(), slog.LevelDebug, "request served",
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.Int("status", rec.status),
				slog.Int64("bytes", rec.bytes),
				slog.Duration("elapsed", elapsed),
			)
		})
	}
}

// recorder captures the status code and body size of a response.
type recorder struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func (rec *recorder) WriteHeader(code int) {
	if !rec.wroteHeader {
		rec.status = code
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *recorder) Write(b []byte) (int, error) {
	rec.wroteHeader = true
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += int64(n)
	return n, err
}

// routeLabel collapses unknown paths into one label so scanners cannot grow
// the label set.
func routeLabel(path string) string {
	if routes[path] {
		return path
	}
	return "other"
}
