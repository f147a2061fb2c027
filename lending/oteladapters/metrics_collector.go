package oteladapters

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

const (
	descriptionDuration = "Lending analytics operation duration"
	descriptionCounter  = "Lending analytics operation counter"
	descriptionValue    = "Lending analytics current value"
	unitSeconds         = "s"
)

// MetricsCollector implements lending.ContextualMetricsCollector on top of an OpenTelemetry meter.
// Instruments are created lazily on first use and cached by metric name.
type MetricsCollector struct {
	meter metric.Meter

	mu         sync.Mutex
	histograms map[string]metric.Float64Histogram
	counters   map[string]metric.Int64Counter
	gauges     map[string]metric.Float64Gauge
}

// NewMetricsCollector creates a metrics collector that records with the given meter.
func NewMetricsCollector(meter metric.Meter) *MetricsCollector {
	return &MetricsCollector{
		meter:      meter,
		histograms: make(map[string]metric.Float64Histogram),
		counters:   make(map[string]metric.Int64Counter),
		gauges:     make(map[string]metric.Float64Gauge),
	}
}

// RecordDuration records a duration in seconds.
func (m *MetricsCollector) RecordDuration(metricName string, duration time.Duration, labels map[string]string) {
	m.RecordDurationContext(context.Background(), metricName, duration, labels)
}

// RecordDurationContext records a duration in seconds, correlated with the span in ctx.
func (m *MetricsCollector) RecordDurationContext(ctx context.Context, metricName string, duration time.Duration, labels map[string]string) {
	histogram, ok := instrument(&m.mu, m.histograms, metricName, func(name string) (metric.Float64Histogram, error) {
		return m.meter.Float64Histogram(name, metric.WithDescription(descriptionDuration), metric.WithUnit(unitSeconds))
	})
	if !ok {
		return
	}

	histogram.Record(ctx, duration.Seconds(), metric.WithAttributes(toAttributes(labels)...))
}

// IncrementCounter adds one to a counter.
func (m *MetricsCollector) IncrementCounter(metricName string, labels map[string]string) {
	m.IncrementCounterContext(context.Background(), metricName, labels)
}

// IncrementCounterContext adds one to a counter, correlated with the span in ctx.
func (m *MetricsCollector) IncrementCounterContext(ctx context.Context, metricName string, labels map[string]string) {
	counter, ok := instrument(&m.mu, m.counters, metricName, func(name string) (metric.Int64Counter, error) {
		return m.meter.Int64Counter(name, metric.WithDescription(descriptionCounter))
	})
	if !ok {
		return
	}

	counter.Add(ctx, 1, metric.WithAttributes(toAttributes(labels)...))
}

// RecordValue records the current value of a gauge, e.g. the number of rows a query returned.
func (m *MetricsCollector) RecordValue(metricName string, value float64, labels map[string]string) {
	m.RecordValueContext(context.Background(), metricName, value, labels)
}

// RecordValueContext records a gauge value, correlated with the span in ctx.
func (m *MetricsCollector) RecordValueContext(ctx context.Context, metricName string, value float64, labels map[string]string) {
	gauge, ok := instrument(&m.mu, m.gauges, metricName, func(name string) (metric.Float64Gauge, error) {
		return m.meter.Float64Gauge(name, metric.WithDescription(descriptionValue))
	})
	if !ok {
		return
	}

	gauge.Record(ctx, value, metric.WithAttributes(toAttributes(labels)...))
}

// instrument returns the cached instrument for name, creating it on first use.
// A meter that refuses to create the instrument yields ok == false and nothing is cached.
func instrument[I any](mu *sync.Mutex, cache map[string]I, name string, create func(string) (I, error)) (I, bool) {
	mu.Lock()
	defer mu.Unlock()

	if existing, found := cache[name]; found {
		return existing, true
	}

	created, err := create(name)
	if err != nil {
		var zero I
		return zero, false
	}

	cache[name] = created

	return created, true
}

// toAttributes converts labels into attributes with a stable key order.
func toAttributes(labels map[string]string) []attribute.KeyValue {
	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	attrs := make([]attribute.KeyValue, 0, len(keys))
	for _, key := range keys {
		attrs = append(attrs, attribute.String(strings.TrimSpace(key), labels[key]))
	}

	return attrs
}

var _ lending.ContextualMetricsCollector = (*MetricsCollector)(nil)
