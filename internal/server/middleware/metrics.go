package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/pronostico/internal/server/metrics"
)

// MetricsMiddleware instruments HTTP requests with Prometheus metrics.
// The route label is the ServeMux pattern, so path parameters do not blow up cardinality.
func MetricsMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			route := routeOf(r)
			status := strconv.Itoa(wrapped.statusCode)

			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
