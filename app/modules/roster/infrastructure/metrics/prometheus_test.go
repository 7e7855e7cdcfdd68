package rostermetrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMetrics(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())
	ctx := context.Background()

	m.RecordRowImported(ctx, "INSERT")
	m.RecordRowImported(ctx, "INSERT")
	m.RecordRowImported(ctx, "unchanged")
	m.RecordRowSkipped(ctx, "foreign_federation")
	m.RecordRatingUpdated(ctx)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.rows.WithLabelValues("INSERT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rows.WithLabelValues("unchanged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipped.WithLabelValues("foreign_federation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ratings))
}
