package cache

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by a ResultStore when no entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// ErrNilRedisClient is returned when a RedisStore is created without a client.
var ErrNilRedisClient = errors.New("redis client must not be nil")

// ErrNonPositiveCapacity is returned when a MemoryStore is created with a capacity below one.
var ErrNonPositiveCapacity = errors.New("cache capacity must be greater than zero")

// ResultStore keeps encoded query results.
// Get returns ErrCacheMiss when the key is absent or expired.
type ResultStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisStore is a ResultStore backed by Redis.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a RedisStore on top of client. The caller owns the client.
func NewRedisStore(client redis.UniversalClient) (*RedisStore, error) {
	if client == nil {
		return nil, ErrNilRedisClient
	}

	return &RedisStore{client: client}, nil
}

// Get returns the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}

	if err != nil {
		return nil, err
	}

	return value, nil
}

// Set stores value under key. A ttl of zero keeps the entry until it is evicted by Redis.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes key. Deleting an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// MemoryStore is an in-process ResultStore with LRU eviction and a store-wide ttl.
// The per-entry ttl passed to Set is ignored.
type MemoryStore struct {
	entries *expirable.LRU[string, []byte]
}

// NewMemoryStore creates a MemoryStore holding at most capacity entries for ttl each.
// A ttl of zero keeps entries until they are evicted.
func NewMemoryStore(capacity int, ttl time.Duration) (*MemoryStore, error) {
	if capacity <= 0 {
		return nil, ErrNonPositiveCapacity
	}

	return &MemoryStore{
		entries: expirable.NewLRU[string, []byte](capacity, nil, ttl),
	}, nil
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, ok := s.entries.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}

	return value, nil
}

// Set stores value under key.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.entries.Add(key, value)

	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.entries.Remove(key)

	return nil
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	return s.entries.Len()
}
