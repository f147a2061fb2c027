package readingpace

import (
	"context"
	"time"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
	"github.com/cecbur/RebtelAssignment-sub000/queries/shell"
)

// PatronLoanSource defines the data access needed by the QueryHandler.
type PatronLoanSource interface {
	LoansForPatron(ctx context.Context, patronID int) ([]lending.Loan, error)
}

// AllLoanSource defines the data access needed by the LeaderboardQueryHandler.
type AllLoanSource interface {
	AllLoans(ctx context.Context) ([]lending.Loan, error)
}

// QueryHandler runs the Reading Pace workflow: Validate -> Fetch -> Project.
type QueryHandler struct {
	source           PatronLoanSource
	metricsCollector shell.MetricsCollector
}

// NewQueryHandler creates a new QueryHandler reading from source.
func NewQueryHandler(source PatronLoanSource, opts ...Option) (QueryHandler, error) {
	if source == nil {
		return QueryHandler{}, shell.ErrNilLoanSource
	}

	h := QueryHandler{source: source}
	for _, opt := range opts {
		opt(&h.metricsCollector)
	}

	return h, nil
}

// Handle validates the query, loads the loans of the patron and computes their pace.
func (h QueryHandler) Handle(ctx context.Context, query Query) (ReadingPace, error) {
	if err := query.Validate(); err != nil {
		return ReadingPace{}, err
	}

	fetchStart := time.Now()
	loans, err := h.source.LoansForPatron(ctx, query.PatronID)
	recordComponentTiming(ctx, h.metricsCollector, queryType, shell.ComponentFetch, err, time.Since(fetchStart))
	if err != nil {
		return ReadingPace{}, err
	}

	projectionStart := time.Now()
	result := ProjectReadingPace(loans, query)
	recordComponentTiming(ctx, h.metricsCollector, queryType, shell.ComponentProjection, nil, time.Since(projectionStart))

	return result, nil
}

// LeaderboardQueryHandler runs the leaderboard workflow over all loans.
type LeaderboardQueryHandler struct {
	source           AllLoanSource
	metricsCollector shell.MetricsCollector
}

// NewLeaderboardQueryHandler creates a new LeaderboardQueryHandler reading from source.
func NewLeaderboardQueryHandler(source AllLoanSource, opts ...Option) (LeaderboardQueryHandler, error) {
	if source == nil {
		return LeaderboardQueryHandler{}, shell.ErrNilLoanSource
	}

	h := LeaderboardQueryHandler{source: source}
	for _, opt := range opts {
		opt(&h.metricsCollector)
	}

	return h, nil
}

// Handle validates the query, loads all loans and ranks every patron with a known pace.
func (h LeaderboardQueryHandler) Handle(ctx context.Context, query LeaderboardQuery) (PaceLeaderboard, error) {
	if err := query.Validate(); err != nil {
		return PaceLeaderboard{}, err
	}

	fetchStart := time.Now()
	loans, err := h.source.AllLoans(ctx)
	recordComponentTiming(ctx, h.metricsCollector, leaderboardQueryType, shell.ComponentFetch, err, time.Since(fetchStart))
	if err != nil {
		return PaceLeaderboard{}, err
	}

	projectionStart := time.Now()
	result, err := ProjectAll(loans, query)
	recordComponentTiming(ctx, h.metricsCollector, leaderboardQueryType, shell.ComponentProjection, err, time.Since(projectionStart))

	return result, err
}

// Option configures the metrics collector of both handlers in this package.
type Option func(*shell.MetricsCollector)

// WithMetrics sets the metrics collector that receives the fetch and projection durations.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(target *shell.MetricsCollector) {
		*target = collector
	}
}

func recordComponentTiming(
	ctx context.Context,
	collector shell.MetricsCollector,
	queryType string,
	component string,
	err error,
	duration time.Duration,
) {
	shell.RecordQueryComponentDuration(ctx, collector, queryType, component, shell.StatusFromError(err), duration)
}
