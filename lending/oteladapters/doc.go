// Package oteladapters connects the lending observability interfaces to OpenTelemetry.
//
// MetricsCollector maps durations to histograms, increments to counters and values to gauges.
// TracingCollector opens one OpenTelemetry span per store operation or query.
// SlogBridgeLogger and OTelLogger implement lending.ContextualLogger so that log records carry
// the trace and span ids of the active span.
package oteladapters
