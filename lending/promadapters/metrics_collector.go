package promadapters

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

// Option configures a MetricsCollector.
type Option func(*MetricsCollector)

// WithNamespace prefixes every metric name with namespace.
func WithNamespace(namespace string) Option {
	return func(m *MetricsCollector) {
		m.namespace = namespace
	}
}

// WithBuckets overrides the histogram buckets used for durations.
func WithBuckets(buckets []float64) Option {
	return func(m *MetricsCollector) {
		m.buckets = buckets
	}
}

// MetricsCollector implements lending.ContextualMetricsCollector on a prometheus.Registerer.
// Durations become histograms, increments become counters and values become gauges.
type MetricsCollector struct {
	registerer prometheus.Registerer
	namespace  string
	buckets    []float64

	mu         sync.Mutex
	histograms map[string]*prometheus.HistogramVec
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec

	dropped atomic.Int64
}

// NewMetricsCollector creates a collector that registers its vectors with registerer.
func NewMetricsCollector(registerer prometheus.Registerer, options ...Option) *MetricsCollector {
	m := &MetricsCollector{
		registerer: registerer,
		buckets:    prometheus.DefBuckets,
		histograms: make(map[string]*prometheus.HistogramVec),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}

	for _, option := range options {
		option(m)
	}

	return m
}

// RecordDuration observes duration in seconds.
func (m *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	vec, ok := m.histogram(metric, labelNames(labels))
	if !ok {
		return
	}

	observer, err := vec.GetMetricWith(labels)
	if err != nil {
		m.dropped.Add(1)
		return
	}

	observer.Observe(duration.Seconds())
}

// IncrementCounter adds one to the counter.
func (m *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	vec, ok := m.counter(metric, labelNames(labels))
	if !ok {
		return
	}

	counter, err := vec.GetMetricWith(labels)
	if err != nil {
		m.dropped.Add(1)
		return
	}

	counter.Inc()
}

// RecordValue sets the gauge to value.
func (m *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	vec, ok := m.gauge(metric, labelNames(labels))
	if !ok {
		return
	}

	gauge, err := vec.GetMetricWith(labels)
	if err != nil {
		m.dropped.Add(1)
		return
	}

	gauge.Set(value)
}

// RecordDurationContext is RecordDuration. Prometheus has no trace correlation for plain observations.
func (m *MetricsCollector) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	m.RecordDuration(metric, duration, labels)
}

func (m *MetricsCollector) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	m.IncrementCounter(metric, labels)
}

func (m *MetricsCollector) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	m.RecordValue(metric, value, labels)
}

// DroppedRecords returns how many records could not be recorded.
func (m *MetricsCollector) DroppedRecords() int64 {
	return m.dropped.Load()
}

func (m *MetricsCollector) histogram(name string, labels []string) (*prometheus.HistogramVec, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if vec, found := m.histograms[name]; found {
		return vec, true
	}

	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      name,
		Help:      "Lending analytics operation duration in seconds",
		Buckets:   m.buckets,
	}, labels)

	registered, ok := m.register(vec)
	if !ok {
		return nil, false
	}

	existing, isHistogram := registered.(*prometheus.HistogramVec)
	if !isHistogram {
		m.dropped.Add(1)
		return nil, false
	}

	m.histograms[name] = existing

	return existing, true
}

func (m *MetricsCollector) counter(name string, labels []string) (*prometheus.CounterVec, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if vec, found := m.counters[name]; found {
		return vec, true
	}

	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      name,
		Help:      "Lending analytics operation counter",
	}, labels)

	registered, ok := m.register(vec)
	if !ok {
		return nil, false
	}

	existing, isCounter := registered.(*prometheus.CounterVec)
	if !isCounter {
		m.dropped.Add(1)
		return nil, false
	}

	m.counters[name] = existing

	return existing, true
}

func (m *MetricsCollector) gauge(name string, labels []string) (*prometheus.GaugeVec, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if vec, found := m.gauges[name]; found {
		return vec, true
	}

	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      name,
		Help:      "Lending analytics current value",
	}, labels)

	registered, ok := m.register(vec)
	if !ok {
		return nil, false
	}

	existing, isGauge := registered.(*prometheus.GaugeVec)
	if !isGauge {
		m.dropped.Add(1)
		return nil, false
	}

	m.gauges[name] = existing

	return existing, true
}

// register registers collector, or returns the collector already registered under the same descriptor.
func (m *MetricsCollector) register(collector prometheus.Collector) (prometheus.Collector, bool) {
	err := m.registerer.Register(collector)
	if err == nil {
		return collector, true
	}

	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		return alreadyRegistered.ExistingCollector, true
	}

	m.dropped.Add(1)

	return nil, false
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

var _ lending.ContextualMetricsCollector = (*MetricsCollector)(nil)
