package shell

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"
)

const (
	defaultMaxAttempts  = 3
	defaultBaseDelay    = 100 * time.Millisecond
	defaultJitterFactor = 0.3
)

const (
	// QueryRetriesMetric counts retries of transient query failures.
	QueryRetriesMetric = "queryhandler_retries_total"

	// QueryRetryDelayMetric tracks the backoff before each retry.
	QueryRetryDelayMetric = "queryhandler_retry_delay_seconds"

	// QueryMaxRetriesReachedMetric counts operations that failed after the last attempt.
	QueryMaxRetriesReachedMetric = "queryhandler_max_retries_reached_total"
)

const (
	labelOperation      = "operation"
	labelAttemptNumber  = "attempt_number"
	labelErrorType      = "error_type"
	labelFinalErrorType = "final_error_type"
)

var (
	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")

	// ErrEmptyOperation is returned when retry metrics are requested without an operation label.
	ErrEmptyOperation = errors.New("operation must not be empty")
)

// RetryableFunc represents a function that can be retried.
type RetryableFunc func(ctx context.Context) error

// RetryMeta describes how a retried operation went.
type RetryMeta struct {
	Attempts      int
	TotalDelay    time.Duration
	LastErrorType string
}

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	isRetryable      func(error) bool
	metricsCollector MetricsCollector
	operation        string
}

// RetryWithExponentialBackoff runs fn until it succeeds, fails with an error that is not
// retryable, or maxAttempts is reached.
//
// Retry schedule (default): 0 ms, 100 ms, 200 ms (with 30% jitter).
// By default only transient errors are retried, see IsTransientError.
func RetryWithExponentialBackoff(
	ctx context.Context,
	fn RetryableFunc,
	options ...RetryOption,
) (RetryMeta, error) {

	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
		isRetryable:  IsTransientError,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return RetryMeta{}, err
		}
	}

	var (
		meta    RetryMeta
		lastErr error
	)

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * config.jitterFactor //nolint:gosec // jitter needs no crypto randomness
			backoffDelay := delay + time.Duration(jitter)

			config.recordDelay(ctx, attempt, backoffDelay)

			select {
			case <-time.After(backoffDelay):
			case <-ctx.Done():
				meta.LastErrorType = errorType(ctx.Err())
				return meta, ctx.Err()
			}

			meta.TotalDelay += backoffDelay
		}

		meta.Attempts++
		lastErr = fn(ctx)
		meta.LastErrorType = errorType(lastErr)

		if lastErr == nil {
			return meta, nil
		}

		if !config.isRetryable(lastErr) {
			return meta, lastErr
		}

		if attempt < config.maxAttempts-1 {
			config.recordRetry(ctx, attempt+1, lastErr)
		}
	}

	config.recordMaxRetriesReached(ctx, lastErr)

	return meta, lastErr
}

// IsTransientError reports whether err may go away on retry.
// Rejected queries, cancellation and deadlines are permanent: retrying a timeout under load only adds load.
func IsTransientError(err error) bool {
	return err != nil && !IsInvalidArgumentError(err) && !IsCancellationError(err) && !IsTimeoutError(err)
}

func errorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case IsInvalidArgumentError(err):
		return StatusInvalidArgument
	case IsCancellationError(err):
		return "context_canceled"
	case IsTimeoutError(err):
		return "context_deadline_exceeded"
	default:
		return "other"
	}
}

func (c *retryConfig) recordDelay(ctx context.Context, attempt int, delay time.Duration) {
	if c.metricsCollector == nil {
		return
	}

	recordDuration(ctx, c.metricsCollector, QueryRetryDelayMetric, delay, map[string]string{
		labelOperation:     c.operation,
		labelAttemptNumber: strconv.Itoa(attempt),
	})
}

func (c *retryConfig) recordRetry(ctx context.Context, attempt int, err error) {
	IncrementCounter(ctx, c.metricsCollector, QueryRetriesMetric, map[string]string{
		labelOperation:     c.operation,
		labelAttemptNumber: strconv.Itoa(attempt),
		labelErrorType:     errorType(err),
	})
}

func (c *retryConfig) recordMaxRetriesReached(ctx context.Context, err error) {
	IncrementCounter(ctx, c.metricsCollector, QueryMaxRetriesReachedMetric, map[string]string{
		labelOperation:      c.operation,
		labelFinalErrorType: errorType(err),
	})
}

// RetryOption configures retry behavior using the functional options pattern.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets the maximum number of attempts, including the first one.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
// Actual delays: baseDelay, baseDelay*2, baseDelay*4, etc.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter added as a fraction of each backoff delay, from 0.0 to 1.0.
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithRetryable replaces IsTransientError as the retry predicate.
func WithRetryable(isRetryable func(error) bool) RetryOption {
	return func(config *retryConfig) error {
		if isRetryable == nil {
			return errors.New("retry predicate must not be nil")
		}

		config.isRetryable = isRetryable

		return nil
	}
}

// WithRetryMetrics sets the metrics collector for retry instrumentation, labeled with operation.
func WithRetryMetrics(collector MetricsCollector, operation string) RetryOption {
	return func(config *retryConfig) error {
		if operation == "" {
			return ErrEmptyOperation
		}

		config.metricsCollector = collector
		config.operation = operation

		return nil
	}
}
