package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/cecbur/RebtelAssignment-sub000/config"
	"github.com/cecbur/RebtelAssignment-sub000/lending"
	"github.com/cecbur/RebtelAssignment-sub000/lending/oteladapters"
	"github.com/cecbur/RebtelAssignment-sub000/lending/postgresengine"
	"github.com/cecbur/RebtelAssignment-sub000/lending/promadapters"
	"github.com/cecbur/RebtelAssignment-sub000/queries/associatedbooks"
	"github.com/cecbur/RebtelAssignment-sub000/queries/cache"
	"github.com/cecbur/RebtelAssignment-sub000/queries/mostactivepatrons"
	"github.com/cecbur/RebtelAssignment-sub000/queries/mostloanedbooks"
	"github.com/cecbur/RebtelAssignment-sub000/queries/observable"
	"github.com/cecbur/RebtelAssignment-sub000/queries/readingpace"
	"github.com/cecbur/RebtelAssignment-sub000/queries/shell"
)

const instrumentationName = "lendingreport"

// LoanSource is everything the report handlers read from the database.
type LoanSource interface {
	mostloanedbooks.LoanSource
	mostactivepatrons.LoanSource
	readingpace.PatronLoanSource
	associatedbooks.LoanSource
}

// Observability holds the optional collectors. Nil fields disable the concern.
type Observability struct {
	Logger           shell.Logger
	ContextualLogger shell.ContextualLogger
	Metrics          shell.MetricsCollector
	Tracing          shell.TracingCollector
	Registry         *prometheus.Registry
}

// Handlers are the fully decorated query handlers of all reports.
type Handlers struct {
	MostLoaned  shell.QueryHandler[mostloanedbooks.Query, mostloanedbooks.MostLoanedBooks]
	MostActive  shell.QueryHandler[mostactivepatrons.Query, mostactivepatrons.MostActivePatrons]
	Pace        shell.QueryHandler[readingpace.Query, readingpace.ReadingPace]
	Leaderboard shell.QueryHandler[readingpace.LeaderboardQuery, readingpace.PaceLeaderboard]
	Associated  shell.QueryHandler[associatedbooks.Query, associatedbooks.AssociatedBooks]

	// Warmer is nil unless a cache store and a warm schedule are configured.
	Warmer *cache.Warmer
}

type decoration struct {
	store         cache.ResultStore
	cacheSettings config.CacheConfig
	observability Observability
}

// decorate wraps core with the result cache (when a store is configured) and then with the
// observable wrapper, so cache hits are measured like any other query.
func decorate[Q shell.Query, R shell.QueryResult](
	core shell.QueryHandler[Q, R],
	d decoration,
) (shell.QueryHandler[Q, R], *cache.QueryWrapper[Q, R], error) {

	handler := core
	var cached *cache.QueryWrapper[Q, R]

	if d.store != nil {
		var err error
		cached, err = cache.NewQueryWrapper[Q, R](core, d.store,
			cache.WithTTL[Q, R](d.cacheSettings.TTL),
			cache.WithKeyPrefix[Q, R](d.cacheSettings.KeyPrefix),
			cache.WithMetrics[Q, R](d.observability.Metrics),
			cache.WithLogging[Q, R](d.observability.Logger),
			cache.WithContextualLogging[Q, R](d.observability.ContextualLogger),
		)
		if err != nil {
			return nil, nil, err
		}

		handler = cached
	}

	wrapped, err := observable.NewQueryWrapper[Q, R](handler,
		observable.WithQueryMetrics[Q, R](d.observability.Metrics),
		observable.WithQueryTracing[Q, R](d.observability.Tracing),
		observable.WithQueryLogging[Q, R](d.observability.Logger),
		observable.WithQueryContextualLogging[Q, R](d.observability.ContextualLogger),
	)
	if err != nil {
		return nil, nil, err
	}

	return wrapped, cached, nil
}

// BuildHandlers composes the handlers of all reports on top of source.
// The warm jobs refresh the default queries: the configured limit and the 30 day activity window.
func BuildHandlers(
	source LoanSource,
	store cache.ResultStore,
	cfg config.Config,
	obs Observability,
	limit lending.Limit,
	now func() time.Time,
) (Handlers, error) {

	d := decoration{store: store, cacheSettings: cfg.Cache, observability: obs}
	var h Handlers

	mostLoanedCore, err := mostloanedbooks.NewQueryHandler(source, mostloanedbooks.WithMetrics(obs.Metrics))
	if err != nil {
		return Handlers{}, err
	}
	mostActiveCore, err := mostactivepatrons.NewQueryHandler(source, mostactivepatrons.WithMetrics(obs.Metrics))
	if err != nil {
		return Handlers{}, err
	}
	paceCore, err := readingpace.NewQueryHandler(source, readingpace.WithMetrics(obs.Metrics))
	if err != nil {
		return Handlers{}, err
	}
	leaderboardCore, err := readingpace.NewLeaderboardQueryHandler(source, readingpace.WithMetrics(obs.Metrics))
	if err != nil {
		return Handlers{}, err
	}
	associatedCore, err := associatedbooks.NewQueryHandler(source, associatedbooks.WithMetrics(obs.Metrics))
	if err != nil {
		return Handlers{}, err
	}

	var (
		mostLoanedCache  *cache.QueryWrapper[mostloanedbooks.Query, mostloanedbooks.MostLoanedBooks]
		mostActiveCache  *cache.QueryWrapper[mostactivepatrons.Query, mostactivepatrons.MostActivePatrons]
		leaderboardCache *cache.QueryWrapper[readingpace.LeaderboardQuery, readingpace.PaceLeaderboard]
	)

	if h.MostLoaned, mostLoanedCache, err = decorate[mostloanedbooks.Query, mostloanedbooks.MostLoanedBooks](mostLoanedCore, d); err != nil {
		return Handlers{}, err
	}
	if h.MostActive, mostActiveCache, err = decorate[mostactivepatrons.Query, mostactivepatrons.MostActivePatrons](mostActiveCore, d); err != nil {
		return Handlers{}, err
	}
	if h.Pace, _, err = decorate[readingpace.Query, readingpace.ReadingPace](paceCore, d); err != nil {
		return Handlers{}, err
	}
	if h.Leaderboard, leaderboardCache, err = decorate[readingpace.LeaderboardQuery, readingpace.PaceLeaderboard](leaderboardCore, d); err != nil {
		return Handlers{}, err
	}
	if h.Associated, _, err = decorate[associatedbooks.Query, associatedbooks.AssociatedBooks](associatedCore, d); err != nil {
		return Handlers{}, err
	}

	if store == nil || cfg.Cache.WarmSchedule == "" {
		return h, nil
	}

	h.Warmer, err = cache.NewWarmer(cfg.Cache.WarmSchedule,
		cache.WithJobTimeout(time.Minute),
		cache.WithRetry(obs.Metrics, shell.WithMaxAttempts(3)),
		cache.WithWarmerLogging(obs.Logger),
		cache.WithWarmerContextualLogging(obs.ContextualLogger),
	)
	if err != nil {
		return Handlers{}, err
	}

	err = errors.Join(
		h.Warmer.Register("most-loaned", cache.Refresher(mostLoanedCache, mostloanedbooks.BuildQuery(limit))),
		h.Warmer.Register("pace-leaderboard", cache.Refresher(leaderboardCache, readingpace.BuildLeaderboardQuery(limit))),
		h.Warmer.Register("most-active", func(ctx context.Context) error {
			from, to, err := parseWindow("", "", now())
			if err != nil {
				return err
			}

			_, err = mostActiveCache.Refresh(ctx, mostactivepatrons.BuildQuery(from, to, limit))

			return err
		}),
	)
	if err != nil {
		return Handlers{}, err
	}

	return h, nil
}

// OpenLoanStore connects to PostgreSQL with the configured adapter.
// The returned function closes the connection.
func OpenLoanStore(ctx context.Context, cfg config.PostgresConfig, obs Observability) (*postgresengine.LoanStore, func(), error) {
	options := []postgresengine.Option{
		postgresengine.WithLoansTableName(cfg.LoansTable),
		postgresengine.WithBooksTableName(cfg.BooksTable),
		postgresengine.WithPatronsTableName(cfg.PatronsTable),
	}
	if obs.Logger != nil {
		options = append(options, postgresengine.WithLogger(obs.Logger))
	}
	if obs.ContextualLogger != nil {
		options = append(options, postgresengine.WithContextualLogger(obs.ContextualLogger))
	}
	if obs.Metrics != nil {
		options = append(options, postgresengine.WithMetrics(obs.Metrics))
	}
	if obs.Tracing != nil {
		options = append(options, postgresengine.WithTracing(obs.Tracing))
	}

	switch cfg.Adapter {
	case config.AdapterSQLDB:
		db, err := config.OpenSQLDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store, err := postgresengine.NewLoanStoreFromSQLDB(db, options...)
		return store, func() { _ = db.Close() }, err

	case config.AdapterSQLX:
		db, err := config.OpenSQLX(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store, err := postgresengine.NewLoanStoreFromSQLX(db, options...)
		return store, func() { _ = db.Close() }, err

	case config.AdapterPGXPool:
		pool, err := config.OpenPGXPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store, err := postgresengine.NewLoanStoreFromPGXPool(pool, options...)
		return store, pool.Close, err

	default:
		return nil, nil, fmt.Errorf("unsupported postgres adapter %q", cfg.Adapter)
	}
}

// OpenResultStore creates the configured cache store. It returns a nil store when caching is off.
func OpenResultStore(ctx context.Context, cfg config.Config) (cache.ResultStore, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		store, err := cache.NewMemoryStore(cfg.Cache.Capacity, cfg.Cache.TTL)
		return store, func() {}, err

	case config.CacheBackendRedis:
		client := redis.NewClient(config.RedisOptions(cfg.Redis))
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("pinging redis: %w", err)
		}

		store, err := cache.NewRedisStore(client)
		return store, func() { _ = client.Close() }, err

	default:
		return nil, func() {}, nil
	}
}

// NewObservability creates the collectors for cfg. Prometheus metrics win over OTLP metrics when
// both are configured; tracing and trace-correlated logging need OTLP. The returned function
// flushes the OTLP providers.
func NewObservability(ctx context.Context, cfg config.ObservabilityConfig, logger *slog.Logger) (Observability, func(context.Context) error, error) {
	obs := Observability{Logger: logger}
	shutdown := func(context.Context) error { return nil }

	if cfg.OTLPEndpoint != "" {
		providers, err := config.NewObservabilityProviders(ctx, cfg)
		if err != nil {
			return Observability{}, nil, err
		}

		shutdown = providers.Shutdown
		obs.Metrics = oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))
		obs.Tracing = oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))
		obs.ContextualLogger = oteladapters.NewSlogBridgeLoggerWithHandler(logger.Handler())
	}

	if cfg.PrometheusAddr != "" {
		obs.Registry = prometheus.NewRegistry()
		obs.Metrics = promadapters.NewMetricsCollector(obs.Registry, promadapters.WithNamespace("lending"))
	}

	return obs, shutdown, nil
}
