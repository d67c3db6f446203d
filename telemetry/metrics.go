// Package telemetry exposes OpenTelemetry counters for the dispatch engine.
// Counters come from the global meter provider, so they are no-ops until the
// application installs one.
package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/kart-io/unilog"

// Metrics records dispatch counters for one backend.
type Metrics struct {
	backend string

	emitted     metric.Int64Counter
	dropped     metric.Int64Counter
	diagnostics metric.Int64Counter
	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
}

// New creates counters labelled with the backend name, using the global meter provider.
func New(backend string) *Metrics {
	return NewWithMeter(otel.Meter(meterName), backend)
}

// NewWithMeter creates counters from meter. Instruments that fail to register stay nil
// and are skipped when recording.
func NewWithMeter(meter metric.Meter, backend string) *Metrics {
	m := &Metrics{backend: strings.ToLower(strings.TrimSpace(backend))}
	if counter, err := meter.Int64Counter("unilog.entries.emitted",
		metric.WithDescription("Log entries delivered to a backend"),
		metric.WithUnit("{entry}")); err == nil {
		m.emitted = counter
	}
	if counter, err := meter.Int64Counter("unilog.entries.dropped",
		metric.WithDescription("Log entries dropped after a formatting or backend failure"),
		metric.WithUnit("{entry}")); err == nil {
		m.dropped = counter
	}
	if counter, err := meter.Int64Counter("unilog.diagnostics",
		metric.WithDescription("Failures written to the diagnostic stream"),
		metric.WithUnit("{error}")); err == nil {
		m.diagnostics = counter
	}
	if counter, err := meter.Int64Counter("unilog.journal.cache_hits",
		metric.WithDescription("Journal cache hits"),
		metric.WithUnit("{request}")); err == nil {
		m.cacheHits = counter
	}
	if counter, err := meter.Int64Counter("unilog.journal.cache_misses",
		metric.WithDescription("Journal cache misses"),
		metric.WithUnit("{request}")); err == nil {
		m.cacheMisses = counter
	}
	return m
}

// Emitted records one delivered entry.
func (m *Metrics) Emitted(level string) {
	if m == nil {
		return
	}
	m.record(m.emitted, attribute.String("level", level))
}

// Dropped records one dropped entry and the reason it was dropped.
func (m *Metrics) Dropped(level, reason string) {
	if m == nil {
		return
	}
	m.record(m.dropped, attribute.String("level", level), attribute.String("reason", reason))
}

// Diagnostic records one diagnostic write.
func (m *Metrics) Diagnostic(kind string) {
	if m == nil {
		return
	}
	m.record(m.diagnostics, attribute.String("kind", kind))
}

// CacheHit records a journal cache hit.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.record(m.cacheHits)
}

// CacheMiss records a journal cache miss.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.record(m.cacheMisses)
}

func (m *Metrics) record(counter metric.Int64Counter, attrs ...attribute.KeyValue) {
	if m == nil || counter == nil {
		return
	}
	attrs = append(attrs, attribute.String("backend", m.backend))
	counter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}
