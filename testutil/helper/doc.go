// Package helper provides test doubles for the observability interfaces of the lending packages.
//
// MetricsCollectorSpy, TracingCollectorSpy and LogHandlerSpy capture every call so tests can
// assert on metric names, labels, span outcomes and log messages without a real backend.
package helper
