package search

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess  = "success"
	outcomeError    = "error"
	outcomeCanceled = "canceled"
)

// Metrics holds the Prometheus collectors of a Searcher. A nil *Metrics
// records nothing.
type Metrics struct {
	QueriesTotal  *prometheus.CounterVec
	SegmentsTotal prometheus.Counter
	QueryDuration prometheus.Histogram
}

// NewMetrics creates the search collectors and registers them on registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lynx_search_queries_total",
				Help: "Total search queries by outcome (success, error, canceled).",
			},
			[]string{"outcome"},
		),
		SegmentsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lynx_search_segments_total",
				Help: "Total number of segments searched.",
			},
		),
		QueryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lynx_search_query_duration_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
	}

	registerer.MustRegister(m.QueriesTotal, m.SegmentsTotal, m.QueryDuration)

	return m
}

func (m *Metrics) observeQuery(outcome string, duration time.Duration) {
	if m == nil {
		return
	}

	m.QueriesTotal.WithLabelValues(outcome).Inc()
	m.QueryDuration.Observe(duration.Seconds())
}

func (m *Metrics) observeSegment() {
	if m == nil {
		return
	}

	m.SegmentsTotal.Inc()
}
