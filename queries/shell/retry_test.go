package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
	"github.com/cecbur/RebtelAssignment-sub000/queries/shell"
	. "github.com/cecbur/RebtelAssignment-sub000/testutil/helper" //nolint:revive
)

var errConnectionReset = errors.New("connection reset by peer")

func Test_RetryWithExponentialBackoff_Success_NoRetries(t *testing.T) {
	callCount := 0
	fn := func(_ context.Context) error {
		callCount++
		return nil
	}

	meta, err := shell.RetryWithExponentialBackoff(context.Background(), fn)

	assert.NoError(t, err)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, time.Duration(0), meta.TotalDelay)
	assert.Equal(t, "none", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_RetriesTransientErrors(t *testing.T) {
	// arrange
	callCount := 0
	fn := func(_ context.Context) error {
		callCount++
		if callCount < 3 {
			return errConnectionReset
		}
		return nil
	}
	metrics := NewMetricsCollectorSpy()

	// act
	meta, err := shell.RetryWithExponentialBackoff(context.Background(), fn,
		shell.WithBaseDelay(time.Millisecond),
		shell.WithRetryMetrics(metrics, "warm:most-loaned"),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, meta.Attempts)
	assert.Greater(t, meta.TotalDelay, time.Duration(0))
	assert.Equal(t, 2, metrics.HasCounterRecordForMetric(shell.QueryRetriesMetric).WithOperation("warm:most-loaned").Count())
	assert.Equal(t, 2, metrics.HasDurationRecordForMetric(shell.QueryRetryDelayMetric).Count())
	assert.False(t, metrics.HasCounterRecordForMetric(shell.QueryMaxRetriesReachedMetric).Assert())
}

func Test_RetryWithExponentialBackoff_FailsFast_OnPermanentErrors(t *testing.T) {
	testCases := []struct {
		description string
		err         error
		errorType   string
	}{
		{"invalid argument", lending.ErrInvalidBookID, "invalid_argument"},
		{"canceled", context.Canceled, "context_canceled"},
		{"deadline", context.DeadlineExceeded, "context_deadline_exceeded"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			callCount := 0
			fn := func(_ context.Context) error {
				callCount++
				return tc.err
			}

			meta, err := shell.RetryWithExponentialBackoff(context.Background(), fn, shell.WithBaseDelay(time.Millisecond))

			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, 1, callCount)
			assert.Equal(t, tc.errorType, meta.LastErrorType)
		})
	}
}

func Test_RetryWithExponentialBackoff_StopsAfterMaxAttempts(t *testing.T) {
	// arrange
	metrics := NewMetricsCollectorSpy()
	fn := func(_ context.Context) error { return errConnectionReset }

	// act
	meta, err := shell.RetryWithExponentialBackoff(context.Background(), fn,
		shell.WithMaxAttempts(2),
		shell.WithBaseDelay(time.Millisecond),
		shell.WithJitterFactor(0),
		shell.WithRetryMetrics(metrics, "fetch"),
	)

	// assert
	assert.ErrorIs(t, err, errConnectionReset)
	assert.Equal(t, 2, meta.Attempts)
	assert.Equal(t, time.Millisecond, meta.TotalDelay)
	assert.Equal(t, "other", meta.LastErrorType)
	assert.True(t, metrics.HasCounterRecordForMetric(shell.QueryMaxRetriesReachedMetric).
		WithLabel("final_error_type", "other").Assert())
}

func Test_RetryWithExponentialBackoff_StopsWaiting_WhenContextIsCanceled(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	fn := func(_ context.Context) error {
		cancel()
		return errConnectionReset
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(ctx, fn, shell.WithBaseDelay(time.Hour))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, meta.Attempts)
}

func Test_RetryWithExponentialBackoff_UsesCustomPredicate(t *testing.T) {
	callCount := 0
	fn := func(_ context.Context) error {
		callCount++
		return errConnectionReset
	}

	_, err := shell.RetryWithExponentialBackoff(context.Background(), fn,
		shell.WithRetryable(func(error) bool { return false }))

	assert.ErrorIs(t, err, errConnectionReset)
	assert.Equal(t, 1, callCount)
}

func Test_RetryWithExponentialBackoff_InvalidOptions(t *testing.T) {
	ctx := context.Background()
	fn := func(_ context.Context) error { return nil }

	_, err := shell.RetryWithExponentialBackoff(ctx, fn, shell.WithMaxAttempts(0))
	assert.ErrorIs(t, err, shell.ErrInvalidMaxAttempts)

	_, err = shell.RetryWithExponentialBackoff(ctx, fn, shell.WithBaseDelay(-1*time.Second))
	assert.ErrorIs(t, err, shell.ErrNegativeBaseDelay)

	_, err = shell.RetryWithExponentialBackoff(ctx, fn, shell.WithJitterFactor(1.5))
	assert.ErrorIs(t, err, shell.ErrInvalidJitterFactor)

	_, err = shell.RetryWithExponentialBackoff(ctx, fn, shell.WithRetryMetrics(NewMetricsCollectorSpy(), ""))
	assert.ErrorIs(t, err, shell.ErrEmptyOperation)
}
