package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scans = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qrattend",
		Name:      "scans_total",
		Help:      "Scan events by terminal outcome.",
	}, []string{"outcome"})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "qrattend",
		Name:      "scan_duration_seconds",
		Help:      "Time from payload receipt to terminal outcome.",
		Buckets:   prometheus.DefBuckets,
	})

	sessions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "qrattend",
		Name:      "sessions_created_total",
		Help:      "Sessions materialized by the first scan or an explicit request.",
	})
)

// ObserveScan records one terminal scan outcome and its latency.
func ObserveScan(outcome string, elapsed time.Duration) {
	scans.WithLabelValues(outcome).Inc()
	scanDuration.Observe(elapsed.Seconds())
}

// SessionCreated counts a newly created session.
func SessionCreated() {
	sessions.Inc()
}
