package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RefreshMetrics contains Prometheus metrics for the forecast refresh path.
type RefreshMetrics struct {
	RefreshesTotal  *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	FetchDuration   prometheus.Histogram
	FetchErrors     *prometheus.CounterVec
	SnapshotPoints  prometheus.Histogram
}

// NewRefreshMetrics creates and registers refresh metrics.
func NewRefreshMetrics(namespace string) *RefreshMetrics {
	m := &RefreshMetrics{
		RefreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "refresh",
				Name:      "total",
				Help:      "Total number of snapshot refreshes by outcome",
			},
			[]string{"outcome"}, // success, not_found, no_api_key, fetch_error, storage_error
		),
		RefreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "refresh",
				Name:      "duration_seconds",
				Help:      "Duration of snapshot refreshes end to end",
				Buckets:   prometheus.DefBuckets,
			},
		),
		FetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "fetch",
				Name:      "duration_seconds",
				Help:      "Duration of remote forecast API calls",
				Buckets:   prometheus.DefBuckets,
			},
		),
		FetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "fetch",
				Name:      "errors_total",
				Help:      "Total number of remote fetch failures by class",
			},
			[]string{"class"}, // transport, status, decode, malformed
		),
		SnapshotPoints: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "refresh",
				Name:      "snapshot_points",
				Help:      "Number of forecast points stored per refreshed snapshot",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512 points
			},
		),
	}

	MustRegister(
		m.RefreshesTotal,
		m.RefreshDuration,
		m.FetchDuration,
		m.FetchErrors,
		m.SnapshotPoints,
	)

	return m
}
