package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", m.Name)
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	return totals
}

func TestMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m := NewWithMeter(provider.Meter("test"), " Zap ")

	assert.Equal(t, "zap", m.backend)

	m.Emitted("info")
	m.Emitted("error")
	m.Dropped("debug", "formatting_failure")
	m.Diagnostic("backend_invocation_failure")
	m.CacheMiss()
	m.CacheHit()
	m.CacheHit()

	totals := collect(t, reader)
	assert.Equal(t, int64(2), totals["unilog.entries.emitted"])
	assert.Equal(t, int64(1), totals["unilog.entries.dropped"])
	assert.Equal(t, int64(1), totals["unilog.diagnostics"])
	assert.Equal(t, int64(2), totals["unilog.journal.cache_hits"])
	assert.Equal(t, int64(1), totals["unilog.journal.cache_misses"])
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Emitted("info")
		m.Dropped("info", "formatting_failure")
		m.Diagnostic("config_error")
		m.CacheHit()
		m.CacheMiss()
	})

	assert.NotPanics(t, func() {
		New("console").Emitted("info")
	})
}

func TestMetrics_DiagnosticAttributes(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	NewWithMeter(provider.Meter("test"), "slog").Diagnostic("creation_failure")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	var found bool
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name != "unilog.diagnostics" {
			continue
		}
		sum := m.Data.(metricdata.Sum[int64])
		require.Len(t, sum.DataPoints, 1)
		attrs := sum.DataPoints[0].Attributes
		kind, ok := attrs.Value("kind")
		require.True(t, ok)
		assert.Equal(t, "creation_failure", kind.AsString())
		backend, ok := attrs.Value("backend")
		require.True(t, ok)
		assert.Equal(t, "slog", backend.AsString())
		found = true
	}
	assert.True(t, found)
}
