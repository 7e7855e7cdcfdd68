package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics is recorded by every service operation wrapper.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)
}

// PrometheusOperationMetrics implements OperationMetrics with labelled collectors.
type PrometheusOperationMetrics struct {
	attempts *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusOperationMetrics registers the operation collectors on reg.
func NewPrometheusOperationMetrics(reg prometheus.Registerer) *PrometheusOperationMetrics {
	m := &PrometheusOperationMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ttbw",
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"service", "operation"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ttbw",
			Name:      "operation_outcomes_total",
			Help:      "Service operations finished, by outcome.",
		}, []string{"service", "operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ttbw",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
	}
	reg.MustRegister(m.attempts, m.outcomes, m.duration)
	return m
}

func (m *PrometheusOperationMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(service, operation).Inc()
}

func (m *PrometheusOperationMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.outcomes.WithLabelValues(service, operation, "success").Inc()
}

func (m *PrometheusOperationMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.outcomes.WithLabelValues(service, operation, "failure").Inc()
}

func (m *PrometheusOperationMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.duration.WithLabelValues(service, operation).Observe(d.Seconds())
}

// NoOpOperationMetrics discards everything.
type NoOpOperationMetrics struct{}

func (NoOpOperationMetrics) RecordOperationAttempt(context.Context, string, string)                  {}
func (NoOpOperationMetrics) RecordOperationSuccess(context.Context, string, string)                  {}
func (NoOpOperationMetrics) RecordOperationFailure(context.Context, string, string)                  {}
func (NoOpOperationMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
