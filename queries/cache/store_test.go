package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cecbur/RebtelAssignment-sub000/queries/cache"
)

func givenRedisStore(t *testing.T) (*cache.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := cache.NewRedisStore(client)
	require.NoError(t, err)

	return store, server
}

func Test_RedisStore_SetThenGet_ReturnsValue(t *testing.T) {
	// arrange
	store, server := givenRedisStore(t)
	ctx := context.Background()

	// act
	require.NoError(t, store.Set(ctx, "lending:k", []byte(`{"Count":1}`), time.Minute))
	value, err := store.Get(ctx, "lending:k")

	// assert
	require.NoError(t, err)
	assert.JSONEq(t, `{"Count":1}`, string(value))
	assert.Equal(t, time.Minute, server.TTL("lending:k"))
}

func Test_RedisStore_Get_ReturnsCacheMiss_ForAbsentAndExpiredKeys(t *testing.T) {
	// arrange
	store, server := givenRedisStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "short", []byte("x"), time.Second))

	// act
	_, absentErr := store.Get(ctx, "absent")
	server.FastForward(2 * time.Second)
	_, expiredErr := store.Get(ctx, "short")

	// assert
	assert.ErrorIs(t, absentErr, cache.ErrCacheMiss)
	assert.ErrorIs(t, expiredErr, cache.ErrCacheMiss)
}

func Test_RedisStore_Delete_RemovesKey(t *testing.T) {
	// arrange
	store, server := givenRedisStore(t)
	ctx := context.Background()
	require.NoError(t, server.Set("gone", "x"))

	// act
	err := store.Delete(ctx, "gone")

	// assert
	require.NoError(t, err)
	assert.False(t, server.Exists("gone"))
	assert.NoError(t, store.Delete(ctx, "never-existed"))
}

func Test_RedisStore_Get_ReturnsServerError(t *testing.T) {
	// arrange
	store, server := givenRedisStore(t)
	server.SetError("LOADING dataset in memory")

	// act
	_, err := store.Get(context.Background(), "k")

	// assert
	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrCacheMiss)
}

func Test_NewRedisStore_Fails_WhenClientIsNil(t *testing.T) {
	_, err := cache.NewRedisStore(nil)

	assert.ErrorIs(t, err, cache.ErrNilRedisClient)
}

func Test_MemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	// arrange
	store, err := cache.NewMemoryStore(2, 0)
	require.NoError(t, err)
	ctx := context.Background()

	// act
	require.NoError(t, store.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), 0))
	_, _ = store.Get(ctx, "a")
	require.NoError(t, store.Set(ctx, "c", []byte("3"), 0))

	// assert
	_, errB := store.Get(ctx, "b")
	valueA, errA := store.Get(ctx, "a")
	assert.ErrorIs(t, errB, cache.ErrCacheMiss)
	require.NoError(t, errA)
	assert.Equal(t, []byte("1"), valueA)
	assert.Equal(t, 2, store.Len())
}

func Test_MemoryStore_Delete_RemovesKey(t *testing.T) {
	// arrange
	store, err := cache.NewMemoryStore(4, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "a", []byte("1"), 0))

	// act
	require.NoError(t, store.Delete(ctx, "a"))

	// assert
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func Test_MemoryStore_RespectsCanceledContext(t *testing.T) {
	// arrange
	store, err := cache.NewMemoryStore(4, 0)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	_, getErr := store.Get(ctx, "a")
	setErr := store.Set(ctx, "a", []byte("1"), 0)

	// assert
	assert.ErrorIs(t, getErr, context.Canceled)
	assert.ErrorIs(t, setErr, context.Canceled)
}

func Test_NewMemoryStore_Fails_ForNonPositiveCapacity(t *testing.T) {
	_, err := cache.NewMemoryStore(0, time.Minute)

	assert.ErrorIs(t, err, cache.ErrNonPositiveCapacity)
}
