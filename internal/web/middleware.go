package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gridwatch/solarcast/pkg/metrics"
)

// statusRecorder captures the response status for metrics labels.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withHTTPMetrics wraps the route table with request counting and timing.
// Counter and histogram labels use the matched route pattern, keeping label
// cardinality bounded by the route table.
func withHTTPMetrics(next http.Handler, m *metrics.WebMetrics) http.Handler {
	if m == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.HTTPRequestsInFlight.WithLabelValues(r.Method).Inc()
		defer m.HTTPRequestsInFlight.WithLabelValues(r.Method).Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}
