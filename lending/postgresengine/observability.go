package postgresengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

const (
	operationAllLoans       = "all_loans"
	operationLoansBetween   = "loans_between"
	operationLoansForBook   = "loans_for_book"
	operationLoansForPatron = "loans_for_patron"
	operationCoBorrowCounts = "co_borrow_counts"

	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgQueryCompleted         = "loan store operation: query completed"
	logMsgSQLExecuted            = "executed sql for: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrOperation             = "operation"
	logAttrRowCount              = "row_count"
	logAttrDurationMS            = "duration_ms"

	metricQueryDuration  = "lendingstore_query_duration_seconds"
	metricRowsReturned   = "lendingstore_rows_returned"
	metricDatabaseErrors = "lendingstore_database_errors_total"

	spanNameQuery     = "lendingstore.query"
	spanAttrOperation = "operation"
	spanAttrRowCount  = "row_count"
	spanAttrErrorType = "error_type"
	spanAttrDuration  = "duration_ms"
	labelStatus       = "status"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeBuildQuery    = "build_query"
	errorTypeDatabaseQuery = "database_query"
	errorTypeRowScan       = "row_scan"
)

// operationObserver bundles metrics, tracing and logging for one store operation.
type operationObserver struct {
	store     *LoanStore
	ctx       context.Context
	span      lending.SpanContext
	operation string
	start     time.Time
}

// startObservation starts the span and the timer for an operation.
func (s *LoanStore) startObservation(ctx context.Context, operation string) (*operationObserver, context.Context) {
	newCtx, span := s.startTraceSpan(ctx, operation)

	return &operationObserver{
		store:     s,
		ctx:       newCtx,
		span:      span,
		operation: operation,
		start:     time.Now(),
	}, newCtx
}

// finishSuccess records metrics, the span outcome and an info log for a completed operation.
func (o *operationObserver) finishSuccess(rowCount int) {
	duration := time.Since(o.start)

	o.store.recordDuration(o.ctx, o.operation, statusSuccess, duration)
	o.store.recordRowsReturned(o.ctx, o.operation, rowCount)
	o.store.finishTraceSpan(o.span, statusSuccess, map[string]string{
		spanAttrRowCount: fmt.Sprintf("%d", rowCount),
		spanAttrDuration: fmt.Sprintf("%.2f", toMilliseconds(duration)),
	})
	o.store.logOperation(
		o.ctx,
		logAttrOperation, o.operation,
		logAttrRowCount, rowCount,
		logAttrDurationMS, toMilliseconds(duration),
	)
}

// finishError records metrics and the span outcome for a failed operation.
func (o *operationObserver) finishError(errorType string) {
	duration := time.Since(o.start)

	o.store.recordDuration(o.ctx, o.operation, statusError, duration)
	o.store.recordError(o.ctx, o.operation, errorType)
	o.store.finishTraceSpan(o.span, statusError, map[string]string{
		spanAttrErrorType: errorType,
		spanAttrDuration:  fmt.Sprintf("%.2f", toMilliseconds(duration)),
	})
}

func (s *LoanStore) startTraceSpan(ctx context.Context, operation string) (context.Context, lending.SpanContext) {
	if s.tracingCollector == nil {
		return ctx, nil
	}

	return s.tracingCollector.StartSpan(ctx, spanNameQuery, map[string]string{spanAttrOperation: operation})
}

func (s *LoanStore) finishTraceSpan(span lending.SpanContext, status string, attrs map[string]string) {
	if s.tracingCollector == nil || span == nil {
		return
	}

	s.tracingCollector.FinishSpan(span, status, attrs)
}

// recordDuration records the operation duration, using the context-aware method when available.
func (s *LoanStore) recordDuration(ctx context.Context, operation, status string, duration time.Duration) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, labelStatus: status}

	if contextualCollector, ok := s.metricsCollector.(lending.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricQueryDuration, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metricQueryDuration, duration, labels)
}

func (s *LoanStore) recordRowsReturned(ctx context.Context, operation string, rowCount int) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, labelStatus: statusSuccess}

	if contextualCollector, ok := s.metricsCollector.(lending.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricRowsReturned, float64(rowCount), labels)
		return
	}

	s.metricsCollector.RecordValue(metricRowsReturned, float64(rowCount), labels)
}

func (s *LoanStore) recordError(ctx context.Context, operation, errorType string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, labelStatus: statusError, spanAttrErrorType: errorType}

	if contextualCollector, ok := s.metricsCollector.(lending.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
}

// logQueryWithDuration logs SQL queries with execution time at debug level.
func (s *LoanStore) logQueryWithDuration(ctx context.Context, sqlQuery, operation string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+operation, args...)
	}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+operation, args...)
	}
}

// logOperation logs operational information at info level.
func (s *LoanStore) logOperation(ctx context.Context, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgQueryCompleted, args...)
	}

	if s.logger != nil {
		s.logger.Info(logMsgQueryCompleted, args...)
	}
}

func (s *LoanStore) logWarn(ctx context.Context, message string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, args...)
	}

	if s.logger != nil {
		s.logger.Warn(message, args...)
	}
}

// logError logs error information at the error level.
func (s *LoanStore) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
