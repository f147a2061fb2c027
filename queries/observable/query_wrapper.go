package observable

import (
	"context"
	"errors"
	"time"

	"github.com/cecbur/RebtelAssignment-sub000/queries/shell"
)

// ErrNilQueryHandler is returned when a wrapper is created without a handler to wrap.
var ErrNilQueryHandler = errors.New("query handler must not be nil")

// QueryWrapper adds metrics, tracing and logging around any query handler.
type QueryWrapper[Q shell.Query, R shell.QueryResult] struct {
	coreHandler      shell.QueryHandler[Q, R]
	queryType        string
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
	newQueryID       func() string
}

// NewQueryWrapper creates an observable wrapper around coreHandler.
func NewQueryWrapper[Q shell.Query, R shell.QueryResult](
	coreHandler shell.QueryHandler[Q, R],
	opts ...QueryOption[Q, R],
) (*QueryWrapper[Q, R], error) {
	if coreHandler == nil {
		return nil, ErrNilQueryHandler
	}

	var zeroQuery Q

	wrapper := &QueryWrapper[Q, R]{
		coreHandler: coreHandler,
		queryType:   zeroQuery.QueryType(),
		newQueryID:  shell.NewQueryID,
	}

	for _, opt := range opts {
		if err := opt(wrapper); err != nil {
			return nil, err
		}
	}

	return wrapper, nil
}

// Handle delegates to the wrapped handler and records the outcome.
// Results and errors of the wrapped handler are returned unchanged.
func (w *QueryWrapper[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	queryStart := time.Now()
	queryID := w.newQueryID()
	ctx, span := shell.StartQuerySpan(ctx, w.tracingCollector, w.queryType, queryID)
	shell.LogQueryStart(ctx, w.logger, w.contextualLogger, w.queryType, queryID)

	result, err := w.coreHandler.Handle(ctx, query)

	duration := time.Since(queryStart)
	if err != nil {
		w.recordQueryError(ctx, queryID, err, duration, span)
		return result, err
	}

	w.recordQuerySuccess(ctx, queryID, result.ResultCount(), duration, span)

	return result, nil
}

// QueryOption defines a functional option for configuring QueryWrapper.
type QueryOption[Q shell.Query, R shell.QueryResult] func(*QueryWrapper[Q, R]) error

// WithQueryMetrics sets the metrics collector for the QueryWrapper.
func WithQueryMetrics[Q shell.Query, R shell.QueryResult](collector shell.MetricsCollector) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.metricsCollector = collector
		return nil
	}
}

// WithQueryTracing sets the tracing collector for the QueryWrapper.
func WithQueryTracing[Q shell.Query, R shell.QueryResult](collector shell.TracingCollector) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.tracingCollector = collector
		return nil
	}
}

// WithQueryContextualLogging sets the contextual logger for the QueryWrapper.
func WithQueryContextualLogging[Q shell.Query, R shell.QueryResult](logger shell.ContextualLogger) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.contextualLogger = logger
		return nil
	}
}

// WithQueryLogging sets the basic logger for the QueryWrapper.
func WithQueryLogging[Q shell.Query, R shell.QueryResult](logger shell.Logger) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.logger = logger
		return nil
	}
}

// WithQueryIDGenerator replaces the uuid based query id generator, mainly for tests.
func WithQueryIDGenerator[Q shell.Query, R shell.QueryResult](generate func() string) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		if generate == nil {
			return errors.New("query id generator must not be nil")
		}

		w.newQueryID = generate

		return nil
	}
}

func (w *QueryWrapper[Q, R]) recordQuerySuccess(
	ctx context.Context,
	queryID string,
	resultCount int,
	duration time.Duration,
	span shell.SpanContext,
) {
	shell.RecordQueryMetrics(ctx, w.metricsCollector, w.queryType, shell.StatusSuccess, duration)
	shell.FinishQuerySpan(w.tracingCollector, span, shell.StatusSuccess, duration, nil)
	shell.LogQuerySuccess(ctx, w.logger, w.contextualLogger, w.queryType, queryID, resultCount, duration)
}

func (w *QueryWrapper[Q, R]) recordQueryError(
	ctx context.Context,
	queryID string,
	err error,
	duration time.Duration,
	span shell.SpanContext,
) {
	status := shell.StatusFromError(err)

	shell.RecordQueryMetrics(ctx, w.metricsCollector, w.queryType, status, duration)
	shell.FinishQuerySpan(w.tracingCollector, span, status, duration, err)
	shell.LogQueryError(ctx, w.logger, w.contextualLogger, w.queryType, queryID, status, err)
}
