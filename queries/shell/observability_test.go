package shell_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
	"github.com/cecbur/RebtelAssignment-sub000/queries/shell"
	. "github.com/cecbur/RebtelAssignment-sub000/testutil/helper" //nolint:revive
)

func Test_StatusFromError_ClassifiesErrors(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: shell.StatusSuccess},
		{name: "invalid limit", err: lending.ErrNonPositiveLimit, expected: shell.StatusInvalidArgument},
		{name: "wrapped invalid window", err: fmt.Errorf("handler: %w", lending.ErrInvalidWindow), expected: shell.StatusInvalidArgument},
		{name: "canceled", err: context.Canceled, expected: shell.StatusCanceled},
		{name: "joined deadline", err: errors.Join(lending.ErrQueryingLoansFailed, context.DeadlineExceeded), expected: shell.StatusTimeout},
		{name: "database failure", err: errors.Join(lending.ErrQueryingLoansFailed, errors.New("boom")), expected: shell.StatusError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, shell.StatusFromError(tc.err))
		})
	}
}

func Test_RecordQueryMetrics_RecordsDedicatedCounters(t *testing.T) {
	testCases := []struct {
		status          string
		dedicatedMetric string
	}{
		{status: shell.StatusCanceled, dedicatedMetric: shell.QueryHandlerCanceledMetric},
		{status: shell.StatusTimeout, dedicatedMetric: shell.QueryHandlerTimeoutMetric},
		{status: shell.StatusInvalidArgument, dedicatedMetric: shell.QueryHandlerInvalidArgumentMetric},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// arrange
			metrics := NewMetricsCollectorSpy()

			// act
			shell.RecordQueryMetrics(context.Background(), metrics, "MostLoanedBooks", tc.status, time.Millisecond)

			// assert
			assert.True(t, metrics.HasDurationRecordForMetric(shell.QueryHandlerDurationMetric).
				WithLabel(shell.LogAttrQueryType, "MostLoanedBooks").WithStatus(tc.status).Assert())
			assert.True(t, metrics.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).WithStatus(tc.status).Assert())
			assert.True(t, metrics.HasCounterRecordForMetric(tc.dedicatedMetric).WithStatus(tc.status).Assert())
		})
	}
}

func Test_RecordQueryMetrics_RecordsNoDedicatedCounter_OnSuccess(t *testing.T) {
	// arrange
	metrics := NewMetricsCollectorSpy()

	// act
	shell.RecordQueryMetrics(context.Background(), metrics, "ReadingPace", shell.StatusSuccess, time.Millisecond)

	// assert
	assert.Len(t, metrics.GetCounterRecords(), 1)
	assert.Len(t, metrics.GetDurationRecords(), 1)
}

func Test_RecordQueryMetrics_IgnoresNilCollector(t *testing.T) {
	assert.NotPanics(t, func() {
		shell.RecordQueryMetrics(context.Background(), nil, "ReadingPace", shell.StatusSuccess, time.Millisecond)
		shell.RecordQueryComponentDuration(context.Background(), nil, "ReadingPace", shell.ComponentFetch, shell.StatusSuccess, time.Millisecond)
	})
}

func Test_RecordQueryComponentDuration_LabelsComponent(t *testing.T) {
	// arrange
	metrics := NewMetricsCollectorSpy()

	// act
	shell.RecordQueryComponentDuration(context.Background(), metrics, "AssociatedBooks", shell.ComponentProjection, shell.StatusSuccess, time.Millisecond)

	// assert
	assert.True(t, metrics.HasDurationRecordForMetric(shell.QueryHandlerComponentDurationMetric).
		WithLabel(shell.LogAttrComponent, shell.ComponentProjection).
		WithLabel(shell.LogAttrQueryType, "AssociatedBooks").
		Assert())
}

func Test_QuerySpan_CarriesQueryIDAndOutcome(t *testing.T) {
	// arrange
	tracing := NewTracingCollectorSpy()
	queryID := shell.NewQueryID()

	// act
	_, span := shell.StartQuerySpan(context.Background(), tracing, "MostActivePatrons", queryID)
	shell.FinishQuerySpan(tracing, span, shell.StatusError, time.Millisecond, errors.New("boom"))

	// assert
	records := tracing.GetSpanRecords()
	require.Len(t, records, 1)
	assert.Equal(t, queryID, records[0].StartAttributes[shell.LogAttrQueryID])
	assert.Equal(t, "boom", records[0].EndAttributes[shell.LogAttrError])
	assert.True(t, tracing.HasFinishedSpan(shell.SpanNameQueryHandle, shell.StatusError))
}

func Test_NewQueryID_ReturnsDistinctUUIDs(t *testing.T) {
	// act
	first := shell.NewQueryID()
	second := shell.NewQueryID()

	// assert
	assert.NotEqual(t, first, second)
	_, err := uuid.Parse(first)
	assert.NoError(t, err)
}

func Test_LogQueryError_LogsRejectedQueriesAtWarnLevel(t *testing.T) {
	// arrange
	logSpy := NewLogHandlerSpy(false)
	logger := slog.New(logSpy)

	// act
	shell.LogQueryError(context.Background(), nil, logger, "MostLoanedBooks", "id-1", shell.StatusInvalidArgument, lending.ErrNonPositiveLimit)
	shell.LogQueryError(context.Background(), logger, nil, "MostLoanedBooks", "id-2", shell.StatusError, errors.New("boom"))

	// assert
	assert.True(t, logSpy.HasLogWithAttr(slog.LevelWarn, shell.LogMsgQueryRejected, shell.LogAttrQueryID))
	assert.True(t, logSpy.HasLogWithAttr(slog.LevelError, shell.LogMsgQueryFailed, shell.LogAttrError))
}

func Test_LogQuerySuccess_PrefersContextualLogger(t *testing.T) {
	// arrange
	contextualSpy := NewLogHandlerSpy(false)
	plainSpy := NewLogHandlerSpy(false)

	// act
	shell.LogQuerySuccess(context.Background(), slog.New(plainSpy), slog.New(contextualSpy), "ReadingPace", "id", 3, time.Millisecond)

	// assert
	assert.True(t, contextualSpy.HasLogWithAttr(slog.LevelInfo, shell.LogMsgQueryCompleted, shell.LogAttrResultCount))
	assert.Empty(t, plainSpy.GetRecords())
}
