package identitymetrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics records resolver outcomes on a Prometheus registry.
type PrometheusMetrics struct {
	resolutions   *prometheus.CounterVec
	unmatched     *prometheus.CounterVec
	auditFailures prometheus.Counter
	duration      prometheus.Histogram
}

// NewPrometheusMetrics registers the resolver collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ttbw",
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Resolved result fragments by strategy.",
		}, []string{"strategy", "fuzzy"}),
		unmatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ttbw",
			Subsystem: "resolver",
			Name:      "unmatched_total",
			Help:      "Result fragments without a roster match by classification.",
		}, []string{"classification"}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ttbw",
			Subsystem: "resolver",
			Name:      "audit_failures_total",
			Help:      "Fuzzy match records that could not be appended.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ttbw",
			Subsystem: "resolver",
			Name:      "resolve_duration_seconds",
			Help:      "Time spent resolving one fragment.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
	reg.MustRegister(m.resolutions, m.unmatched, m.auditFailures, m.duration)
	return m
}

func (m *PrometheusMetrics) RecordResolution(_ context.Context, strategy string, fuzzy bool) {
	m.resolutions.WithLabelValues(strategy, strconv.FormatBool(fuzzy)).Inc()
}

func (m *PrometheusMetrics) RecordUnmatched(_ context.Context, classification string) {
	m.unmatched.WithLabelValues(classification).Inc()
}

func (m *PrometheusMetrics) RecordAuditFailure(_ context.Context) {
	m.auditFailures.Inc()
}

func (m *PrometheusMetrics) RecordDuration(_ context.Context, d time.Duration) {
	m.duration.Observe(d.Seconds())
}

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordResolution(context.Context, string, bool) {}
func (NoOpMetrics) RecordUnmatched(context.Context, string)        {}
func (NoOpMetrics) RecordAuditFailure(context.Context)             {}
func (NoOpMetrics) RecordDuration(context.Context, time.Duration)  {}
