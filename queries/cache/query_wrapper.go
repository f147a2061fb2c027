package cache

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/cecbur/RebtelAssignment-sub000/queries/shell"
)

// DefaultKeyPrefix is the namespace of all cache keys unless WithKeyPrefix is used.
const DefaultKeyPrefix = "lending"

// ErrNilQueryHandler is returned when a wrapper is created without a handler to wrap.
var ErrNilQueryHandler = errors.New("query handler must not be nil")

// ErrNilResultStore is returned when a wrapper is created without a store.
var ErrNilResultStore = errors.New("result store must not be nil")

// ErrEmptyKeyPrefix is returned by WithKeyPrefix for an empty prefix.
var ErrEmptyKeyPrefix = errors.New("cache key prefix must not be empty")

// ErrNegativeTTL is returned by WithTTL for a negative duration.
var ErrNegativeTTL = errors.New("cache ttl must not be negative")

// The standard library compatible config keeps floats exact, the fastest config rounds them.
var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// QueryWrapper answers queries from a ResultStore and runs the wrapped handler on a miss.
type QueryWrapper[Q shell.Query, R shell.QueryResult] struct {
	coreHandler      shell.QueryHandler[Q, R]
	store            ResultStore
	queryType        string
	keyPrefix        string
	ttl              time.Duration
	metricsCollector shell.MetricsCollector
	log              loggers
}

// NewQueryWrapper creates a caching wrapper around coreHandler.
func NewQueryWrapper[Q shell.Query, R shell.QueryResult](
	coreHandler shell.QueryHandler[Q, R],
	store ResultStore,
	opts ...QueryOption[Q, R],
) (*QueryWrapper[Q, R], error) {
	if coreHandler == nil {
		return nil, ErrNilQueryHandler
	}

	if store == nil {
		return nil, ErrNilResultStore
	}

	var zeroQuery Q

	wrapper := &QueryWrapper[Q, R]{
		coreHandler: coreHandler,
		store:       store,
		queryType:   zeroQuery.QueryType(),
		keyPrefix:   DefaultKeyPrefix,
	}

	for _, opt := range opts {
		if err := opt(wrapper); err != nil {
			return nil, err
		}
	}

	return wrapper, nil
}

// Handle returns the cached result for query if there is one, otherwise it runs the wrapped
// handler and stores its result. Invalid queries go straight to the wrapped handler.
func (w *QueryWrapper[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	if query.Validate() != nil {
		return w.coreHandler.Handle(ctx, query)
	}

	key := w.Key(query)

	if result, ok := w.lookup(ctx, key); ok {
		shell.IncrementCounter(ctx, w.metricsCollector, CacheHitsMetric, shell.BuildQueryLabels(w.queryType, shell.StatusSuccess))
		return result, nil
	}

	shell.IncrementCounter(ctx, w.metricsCollector, CacheMissesMetric, shell.BuildQueryLabels(w.queryType, shell.StatusSuccess))

	return w.handleAndStore(ctx, query, key)
}

// Refresh runs the wrapped handler and overwrites the cached result, ignoring any cached entry.
func (w *QueryWrapper[Q, R]) Refresh(ctx context.Context, query Q) (R, error) {
	if err := query.Validate(); err != nil {
		var zero R
		return zero, err
	}

	return w.handleAndStore(ctx, query, w.Key(query))
}

// Invalidate removes the cached result of query.
func (w *QueryWrapper[Q, R]) Invalidate(ctx context.Context, query Q) error {
	return w.store.Delete(ctx, w.Key(query))
}

// Key returns the store key of query.
func (w *QueryWrapper[Q, R]) Key(query Q) string {
	return w.keyPrefix + ":" + w.queryType + ":" + query.CacheKey()
}

func (w *QueryWrapper[Q, R]) lookup(ctx context.Context, key string) (R, bool) {
	var result R

	raw, err := w.store.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return result, false
	}

	if err != nil {
		w.recordStoreError(ctx, logMsgLookupFailed, operationGet, key, err)
		return result, false
	}

	if err := codec.Unmarshal(raw, &result); err != nil {
		w.recordStoreError(ctx, logMsgCorruptEntry, operationDecode, key, err)
		_ = w.store.Delete(ctx, key)

		var zero R
		return zero, false
	}

	return result, true
}

func (w *QueryWrapper[Q, R]) handleAndStore(ctx context.Context, query Q, key string) (R, error) {
	result, err := w.coreHandler.Handle(ctx, query)
	if err != nil {
		return result, err
	}

	raw, err := codec.Marshal(result)
	if err != nil {
		shell.IncrementCounter(ctx, w.metricsCollector, CacheSkippedMetric, cacheLabels(w.queryType, operationEncode))
		w.log.debug(ctx, logMsgNotCacheable,
			shell.LogAttrQueryType, w.queryType, logAttrCacheKey, key, shell.LogAttrError, err.Error())

		return result, nil
	}

	if err := w.store.Set(ctx, key, raw, w.ttl); err != nil {
		w.recordStoreError(ctx, logMsgStoreFailed, operationSet, key, err)
	}

	return result, nil
}

func (w *QueryWrapper[Q, R]) recordStoreError(ctx context.Context, msg, operation, key string, err error) {
	shell.IncrementCounter(ctx, w.metricsCollector, CacheErrorsMetric, cacheLabels(w.queryType, operation))
	w.log.warn(ctx, msg,
		shell.LogAttrQueryType, w.queryType,
		logAttrCacheKey, key,
		logAttrOperation, operation,
		shell.LogAttrError, err.Error(),
	)
}

// QueryOption defines a functional option for configuring QueryWrapper.
type QueryOption[Q shell.Query, R shell.QueryResult] func(*QueryWrapper[Q, R]) error

// WithTTL sets how long stored results stay valid. Zero means no expiry.
func WithTTL[Q shell.Query, R shell.QueryResult](ttl time.Duration) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		if ttl < 0 {
			return ErrNegativeTTL
		}

		w.ttl = ttl

		return nil
	}
}

// WithKeyPrefix sets the namespace of the cache keys, so several deployments can share a store.
func WithKeyPrefix[Q shell.Query, R shell.QueryResult](prefix string) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		if prefix == "" {
			return ErrEmptyKeyPrefix
		}

		w.keyPrefix = prefix

		return nil
	}
}

// WithMetrics sets the metrics collector for hit, miss and error counters.
func WithMetrics[Q shell.Query, R shell.QueryResult](collector shell.MetricsCollector) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.metricsCollector = collector
		return nil
	}
}

// WithLogging sets the basic logger for store failures.
func WithLogging[Q shell.Query, R shell.QueryResult](logger shell.Logger) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.log.logger = logger
		return nil
	}
}

// WithContextualLogging sets the contextual logger for store failures.
func WithContextualLogging[Q shell.Query, R shell.QueryResult](logger shell.ContextualLogger) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.log.contextualLogger = logger
		return nil
	}
}
