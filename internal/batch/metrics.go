package batch

import "github.com/prometheus/client_golang/prometheus"

// metrics records batch-run outcomes and durations for scraping,
// mirroring internal/apply's metrics shape at the batch granularity.
type metrics struct {
	agentsTotal  *prometheus.CounterVec
	durationHist prometheus.Histogram
}

var defaultRegisterer = prometheus.DefaultRegisterer

func newMetrics() *metrics {
	m := &metrics{
		agentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lettasync",
			Subsystem: "batch",
			Name:      "agents_total",
			Help:      "Count of batch upgrade agent outcomes by status.",
		}, []string{"status"}),
		durationHist: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lettasync",
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Total wall-clock duration of a batch upgrade run.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if err := defaultRegisterer.Register(m.agentsTotal); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			m.agentsTotal = are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	if err := defaultRegisterer.Register(m.durationHist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			m.durationHist = are.ExistingCollector.(prometheus.Histogram)
		}
	}
	return m
}

func (m *metrics) observe(result *BatchRunMetrics) {
	for status, count := range result.StatusCounts {
		m.agentsTotal.WithLabelValues(status).Add(float64(count))
	}
	m.durationHist.Observe(result.DurationSeconds)
}

// BatchRunMetrics is the minimal summary metrics.observe needs, kept
// separate from v1.BatchUpgradeResult so this package doesn't need to
// recompute status counts itself.
type BatchRunMetrics struct {
	StatusCounts    map[string]int
	DurationSeconds float64
}
