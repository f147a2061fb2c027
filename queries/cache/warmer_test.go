package cache_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
	"github.com/cecbur/RebtelAssignment-sub000/queries/cache"
	"github.com/cecbur/RebtelAssignment-sub000/queries/mostloanedbooks"
	"github.com/cecbur/RebtelAssignment-sub000/queries/shell"
	. "github.com/cecbur/RebtelAssignment-sub000/testutil/fixtures" //nolint:revive
	. "github.com/cecbur/RebtelAssignment-sub000/testutil/helper"   //nolint:revive
)

func Test_Warmer_RunAll_RefreshesRegisteredQueries(t *testing.T) {
	// arrange
	source := NewInMemoryLoanSource(givenPopularLoans()...)
	store, err := cache.NewMemoryStore(16, 0)
	require.NoError(t, err)
	wrapper := givenMostLoanedWrapper(t, source, store)
	warmer, err := cache.NewWarmer("*/10 * * * *")
	require.NoError(t, err)
	require.NoError(t, warmer.Register("top-3", cache.Refresher(wrapper, mostloanedbooks.BuildQuery(lending.Top(3)))))
	require.NoError(t, warmer.Register("all", cache.Refresher(wrapper, mostloanedbooks.BuildQuery(lending.NoLimit))))

	// act
	err = warmer.RunAll(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, []string{"top-3", "all"}, warmer.Jobs())

	_, err = wrapper.Handle(context.Background(), mostloanedbooks.BuildQuery(lending.Top(3)))
	require.NoError(t, err)
	assert.Equal(t, 2, source.Calls("AllLoans"))
}

func Test_Warmer_RunAll_RunsEveryJob_AndJoinsFailures(t *testing.T) {
	// arrange
	logSpy := NewLogHandlerSpy(false)
	warmer, err := cache.NewWarmer("@hourly", cache.WithConcurrency(1), cache.WithWarmerLogging(slog.New(logSpy)))
	require.NoError(t, err)
	firstErr := errors.New("replica lag")
	secondErr := errors.New("redis down")
	var succeeded atomic.Int32

	require.NoError(t, warmer.Register("first", func(context.Context) error { return firstErr }))
	require.NoError(t, warmer.Register("ok", func(context.Context) error { succeeded.Add(1); return nil }))
	require.NoError(t, warmer.Register("second", func(context.Context) error { return secondErr }))

	// act
	err = warmer.RunAll(context.Background())

	// assert
	assert.ErrorIs(t, err, firstErr)
	assert.ErrorIs(t, err, secondErr)
	assert.EqualValues(t, 1, succeeded.Load())
	assert.True(t, logSpy.HasLogWithAttr(slog.LevelWarn, "cache warm job failed", "job"))
	failed, ok := logSpy.AttrValue("cache warm run completed", "failed")
	require.True(t, ok)
	assert.EqualValues(t, 2, failed.Int64())
}

func Test_Warmer_RunAll_BoundsJobRuntime(t *testing.T) {
	// arrange
	warmer, err := cache.NewWarmer("@every 1m", cache.WithJobTimeout(10*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, warmer.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	// act
	err = warmer.RunAll(context.Background())

	// assert
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func Test_Warmer_Register_RejectsInvalidJobs(t *testing.T) {
	// arrange
	warmer, err := cache.NewWarmer("0 3 * * *")
	require.NoError(t, err)
	noop := func(context.Context) error { return nil }
	require.NoError(t, warmer.Register("nightly", noop))

	// act & assert
	assert.ErrorIs(t, warmer.Register("", noop), cache.ErrInvalidWarmJob)
	assert.ErrorIs(t, warmer.Register("nil", nil), cache.ErrInvalidWarmJob)
	assert.ErrorIs(t, warmer.Register("nightly", noop), cache.ErrDuplicateWarmJob)
}

func Test_Warmer_Start_RejectsRegistrationAfterStart(t *testing.T) {
	// arrange
	warmer, err := cache.NewWarmer("0 3 * * *")
	require.NoError(t, err)

	// act
	require.NoError(t, warmer.Start())
	defer warmer.Stop()

	// assert
	assert.ErrorIs(t, warmer.Start(), cache.ErrWarmerStarted)
	assert.ErrorIs(t, warmer.Register("late", func(context.Context) error { return nil }), cache.ErrWarmerStarted)
}

func Test_Warmer_Next_FollowsSchedule(t *testing.T) {
	// arrange
	warmer, err := cache.NewWarmer("30 2 * * *")
	require.NoError(t, err)
	now := time.Date(2024, time.April, 10, 12, 0, 0, 0, time.UTC)

	// act
	next := warmer.Next(now)

	// assert
	assert.True(t, time.Date(2024, time.April, 11, 2, 30, 0, 0, time.UTC).Equal(next), next.String())
}

func Test_NewWarmer_RejectsInvalidConfiguration(t *testing.T) {
	_, scheduleErr := cache.NewWarmer("every tuesday")
	_, concurrencyErr := cache.NewWarmer("@daily", cache.WithConcurrency(0))
	_, timeoutErr := cache.NewWarmer("@daily", cache.WithJobTimeout(-time.Second))
	_, retryErr := cache.NewWarmer("@daily", cache.WithRetry(nil, shell.WithMaxAttempts(0)))

	assert.ErrorIs(t, scheduleErr, cache.ErrInvalidSchedule)
	assert.Error(t, concurrencyErr)
	assert.Error(t, timeoutErr)
	assert.ErrorIs(t, retryErr, shell.ErrInvalidMaxAttempts)
}

func Test_Warmer_RunAll_RetriesTransientFailures(t *testing.T) {
	// arrange
	metrics := NewMetricsCollectorSpy()
	warmer, err := cache.NewWarmer("@hourly",
		cache.WithRetry(metrics, shell.WithMaxAttempts(3), shell.WithBaseDelay(time.Millisecond)))
	require.NoError(t, err)

	var flakyCalls, invalidCalls atomic.Int32
	require.NoError(t, warmer.Register("flaky", func(context.Context) error {
		if flakyCalls.Add(1) == 1 {
			return errors.New("connection refused")
		}
		return nil
	}))
	require.NoError(t, warmer.Register("invalid", func(context.Context) error {
		invalidCalls.Add(1)
		return lending.ErrInvalidBookID
	}))

	// act
	err = warmer.RunAll(context.Background())

	// assert
	assert.ErrorIs(t, err, lending.ErrInvalidBookID)
	assert.Equal(t, int32(2), flakyCalls.Load())
	assert.Equal(t, int32(1), invalidCalls.Load())
	assert.True(t, metrics.HasCounterRecordForMetric(shell.QueryRetriesMetric).WithOperation("warm:flaky").Assert())
	assert.False(t, metrics.HasCounterRecordForMetric(shell.QueryRetriesMetric).WithOperation("warm:invalid").Assert())
}
