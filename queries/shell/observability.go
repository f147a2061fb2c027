package shell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

const (
	// QueryHandlerDurationMetric tracks query handler execution duration (OpenTelemetry-compatible).
	QueryHandlerDurationMetric = "queryhandler_handle_duration_seconds"

	// QueryHandlerCallsMetric tracks total query handler calls.
	QueryHandlerCallsMetric = "queryhandler_handle_calls_total"

	// QueryHandlerCanceledMetric tracks canceled query operations.
	QueryHandlerCanceledMetric = "queryhandler_canceled_operations_total"

	// QueryHandlerTimeoutMetric tracks timeout query operations.
	QueryHandlerTimeoutMetric = "queryhandler_timeout_operations_total"

	// QueryHandlerInvalidArgumentMetric tracks queries rejected by validation.
	QueryHandlerInvalidArgumentMetric = "queryhandler_invalid_argument_total"

	// QueryHandlerComponentDurationMetric tracks the duration of the fetch and projection phases.
	QueryHandlerComponentDurationMetric = "queryhandler_component_duration_seconds"

	// StatusSuccess indicates successful query completion.
	StatusSuccess = "success"

	// StatusError indicates a query processing error.
	StatusError = "error"

	// StatusCanceled indicates the operation was canceled due to context cancellation.
	StatusCanceled = "canceled"

	// StatusTimeout indicates the operation timed out due to context deadline exceeded.
	StatusTimeout = "timeout"

	// StatusInvalidArgument indicates a query that violated a precondition.
	StatusInvalidArgument = "invalid_argument"

	// ComponentFetch is the phase that loads loans from the data source.
	ComponentFetch = "fetch"

	// ComponentProjection is the phase that runs the pure lending computation.
	ComponentProjection = "projection"

	LogMsgQueryStarted   = "query handler started"
	LogMsgQueryCompleted = "query handler completed"
	LogMsgQueryFailed    = "query handler failed"
	LogMsgQueryRejected  = "query handler rejected invalid query"

	LogAttrQueryType   = "query_type"
	LogAttrQueryID     = "query_id"
	LogAttrStatus      = "status"
	LogAttrDurationMS  = "duration_ms"
	LogAttrResultCount = "result_count"
	LogAttrError       = "error"
	LogAttrComponent   = "component"

	// SpanNameQueryHandle is the tracing span name for query handling.
	SpanNameQueryHandle = "queryhandler.handle"
)

// MetricsCollector interface for collecting query handler performance metrics.
type MetricsCollector = lending.MetricsCollector

// ContextualMetricsCollector extends MetricsCollector with context-aware methods.
type ContextualMetricsCollector = lending.ContextualMetricsCollector

// TracingCollector interface for distributed tracing in query handlers.
type TracingCollector = lending.TracingCollector

// SpanContext represents an active tracing span.
type SpanContext = lending.SpanContext

// ContextualLogger interface for context-aware logging in query handlers.
type ContextualLogger = lending.ContextualLogger

// Logger interface for basic logging in query handlers.
type Logger = lending.Logger

// NewQueryID returns a fresh correlation id for one query execution.
func NewQueryID() string {
	return uuid.NewString()
}

// BuildQueryLabels creates standard metric labels for query handler operations.
func BuildQueryLabels(queryType, status string) map[string]string {
	return map[string]string{
		LogAttrQueryType: queryType,
		LogAttrStatus:    status,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// StatusFromError classifies the outcome of a query into a status label.
func StatusFromError(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case IsInvalidArgumentError(err):
		return StatusInvalidArgument
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	default:
		return StatusError
	}
}

// RecordQueryMetrics records the duration and the call count of a query,
// plus the dedicated counter for canceled, timed out and rejected queries.
func RecordQueryMetrics(
	ctx context.Context,
	collector MetricsCollector,
	queryType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildQueryLabels(queryType, status)
	recordDuration(ctx, collector, QueryHandlerDurationMetric, duration, labels)
	incrementCounter(ctx, collector, QueryHandlerCallsMetric, labels)

	switch status {
	case StatusCanceled:
		incrementCounter(ctx, collector, QueryHandlerCanceledMetric, BuildQueryLabels(queryType, status))
	case StatusTimeout:
		incrementCounter(ctx, collector, QueryHandlerTimeoutMetric, BuildQueryLabels(queryType, status))
	case StatusInvalidArgument:
		incrementCounter(ctx, collector, QueryHandlerInvalidArgumentMetric, BuildQueryLabels(queryType, status))
	}
}

// RecordQueryComponentDuration records how long one phase of a query took.
func RecordQueryComponentDuration(
	ctx context.Context,
	collector MetricsCollector,
	queryType string,
	component string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildQueryLabels(queryType, status)
	labels[LogAttrComponent] = component
	recordDuration(ctx, collector, QueryHandlerComponentDurationMetric, duration, labels)
}

// StartQuerySpan starts a tracing span for a query.
// It returns the original context and a nil span if tracing is disabled.
func StartQuerySpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	queryType string,
	queryID string,
) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	attrs := map[string]string{
		LogAttrQueryType: queryType,
		LogAttrQueryID:   queryID,
	}

	return tracingCollector.StartSpan(ctx, SpanNameQueryHandle, attrs)
}

// FinishQuerySpan completes a query span with its outcome.
func FinishQuerySpan(
	tracingCollector TracingCollector,
	span SpanContext,
	status string,
	duration time.Duration,
	err error,
) {
	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: fmt.Sprintf("%.2f", ToMilliseconds(duration)),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

// LogQueryStart logs the beginning of query processing.
func LogQueryStart(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	queryType string,
	queryID string,
) {
	args := []any{LogAttrQueryType, queryType, LogAttrQueryID, queryID}

	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgQueryStarted, args...)
	} else if logger != nil {
		logger.Info(LogMsgQueryStarted, args...)
	}
}

// LogQuerySuccess logs successful query completion.
func LogQuerySuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	queryType string,
	queryID string,
	resultCount int,
	duration time.Duration,
) {
	args := []any{
		LogAttrQueryType, queryType,
		LogAttrQueryID, queryID,
		LogAttrResultCount, resultCount,
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgQueryCompleted, args...)
	} else if logger != nil {
		logger.Info(LogMsgQueryCompleted, args...)
	}
}

// LogQueryError logs a failed query. Rejected queries are logged at warn level since they are caller errors.
func LogQueryError(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	queryType string,
	queryID string,
	status string,
	err error,
) {
	args := []any{
		LogAttrQueryType, queryType,
		LogAttrQueryID, queryID,
		LogAttrStatus, status,
		LogAttrError, err.Error(),
	}

	if status == StatusInvalidArgument {
		if contextualLogger != nil {
			contextualLogger.WarnContext(ctx, LogMsgQueryRejected, args...)
		} else if logger != nil {
			logger.Warn(LogMsgQueryRejected, args...)
		}

		return
	}

	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, LogMsgQueryFailed, args...)
	} else if logger != nil {
		logger.Error(LogMsgQueryFailed, args...)
	}
}

// IsInvalidArgumentError checks if an error is a precondition violation of the lending package.
func IsInvalidArgumentError(err error) bool {
	return lending.IsInvalidArgument(err)
}

// IsCancellationError checks if an error is due to context cancellation.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError checks if an error is due to context deadline exceeded.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IncrementCounter increments metric on collector, preferring the context-aware method.
// A nil collector is ignored.
func IncrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if collector == nil {
		return
	}

	incrementCounter(ctx, collector, metric, labels)
}

func recordDuration(ctx context.Context, collector MetricsCollector, metric string, duration time.Duration, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	collector.RecordDuration(metric, duration, labels)
}

func incrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}
