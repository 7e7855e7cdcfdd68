package rostermetrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics counts roster import outcomes.
type PrometheusMetrics struct {
	rows    *prometheus.CounterVec
	skipped *prometheus.CounterVec
	ratings prometheus.Counter
}

// NewPrometheusMetrics registers the import collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ttbw",
			Subsystem: "roster",
			Name:      "rows_imported_total",
			Help:      "Roster rows written, by change type.",
		}, []string{"change"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ttbw",
			Subsystem: "roster",
			Name:      "rows_skipped_total",
			Help:      "Roster rows rejected during import, by reason.",
		}, []string{"reason"}),
		ratings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ttbw",
			Subsystem: "roster",
			Name:      "ratings_updated_total",
			Help:      "Players whose rating changed on a rating import.",
		}),
	}
	reg.MustRegister(m.rows, m.skipped, m.ratings)
	return m
}

func (m *PrometheusMetrics) RecordRowImported(_ context.Context, change string) {
	m.rows.WithLabelValues(change).Inc()
}

func (m *PrometheusMetrics) RecordRowSkipped(_ context.Context, reason string) {
	m.skipped.WithLabelValues(reason).Inc()
}

func (m *PrometheusMetrics) RecordRatingUpdated(_ context.Context) {
	m.ratings.Inc()
}

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordRowImported(context.Context, string) {}
func (NoOpMetrics) RecordRowSkipped(context.Context, string)  {}
func (NoOpMetrics) RecordRatingUpdated(context.Context)       {}
