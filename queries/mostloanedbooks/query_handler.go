package mostloanedbooks

import (
	"context"
	"time"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
	"github.com/cecbur/RebtelAssignment-sub000/queries/shell"
)

// LoanSource defines the data access needed by the QueryHandler.
type LoanSource interface {
	AllLoans(ctx context.Context) ([]lending.Loan, error)
}

// QueryHandler runs the Most Loaned Books workflow: Validate -> Fetch -> Project.
type QueryHandler struct {
	source           LoanSource
	metricsCollector shell.MetricsCollector
}

// NewQueryHandler creates a new QueryHandler reading from source.
func NewQueryHandler(source LoanSource, opts ...Option) (QueryHandler, error) {
	if source == nil {
		return QueryHandler{}, shell.ErrNilLoanSource
	}

	h := QueryHandler{
		source: source,
	}

	for _, opt := range opts {
		if err := opt(&h); err != nil {
			return QueryHandler{}, err
		}
	}

	return h, nil
}

// Handle validates the query, loads all loans and ranks their books.
// Invalid queries fail before the loan source is touched.
func (h QueryHandler) Handle(ctx context.Context, query Query) (MostLoanedBooks, error) {
	if err := query.Validate(); err != nil {
		return MostLoanedBooks{}, err
	}

	fetchStart := time.Now()
	loans, err := h.source.AllLoans(ctx)
	h.recordComponentTiming(ctx, shell.ComponentFetch, shell.StatusFromError(err), time.Since(fetchStart))
	if err != nil {
		return MostLoanedBooks{}, err
	}

	projectionStart := time.Now()
	result, err := ProjectMostLoanedBooks(loans, query)
	h.recordComponentTiming(ctx, shell.ComponentProjection, shell.StatusFromError(err), time.Since(projectionStart))

	return result, err
}

// Option defines a functional option for configuring QueryHandler.
type Option func(*QueryHandler) error

// WithMetrics sets the metrics collector that receives the fetch and projection durations.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(h *QueryHandler) error {
		h.metricsCollector = collector
		return nil
	}
}

func (h QueryHandler) recordComponentTiming(ctx context.Context, component string, status string, duration time.Duration) {
	shell.RecordQueryComponentDuration(ctx, h.metricsCollector, queryType, component, status, duration)
}
