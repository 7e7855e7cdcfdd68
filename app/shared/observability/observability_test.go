package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("visible", slog.String("club", "TTC Alpha"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "visible", line["msg"])
	assert.Equal(t, "TTC Alpha", line["club"])
	assert.Equal(t, "ttbw-roster", line["service"])
}

func TestPrometheusOperationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusOperationMetrics(reg)
	ctx := context.Background()

	m.RecordOperationAttempt(ctx, "ImportRoster", "RosterService")
	m.RecordOperationSuccess(ctx, "ImportRoster", "RosterService")
	m.RecordOperationFailure(ctx, "ImportRoster", "RosterService")
	m.RecordOperationDuration(ctx, "ImportRoster", "RosterService", 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("RosterService", "ImportRoster")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("RosterService", "ImportRoster", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("RosterService", "ImportRoster", "failure")))
}
