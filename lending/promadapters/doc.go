// Package promadapters implements lending.MetricsCollector with the Prometheus client library.
//
// Metric vectors are created on first use. The label names of a metric are fixed by the first
// record; records with a different label set are dropped and counted in DroppedRecords.
package promadapters
