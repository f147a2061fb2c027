package associatedbooks

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
	"github.com/cecbur/RebtelAssignment-sub000/queries/shell"
)

// LoanSource defines the data access needed by the QueryHandler.
type LoanSource interface {
	LoansForBook(ctx context.Context, bookID int) ([]lending.Loan, error)
	CoBorrowCounts(ctx context.Context, bookID int) ([]lending.CoBorrowCount, error)
}

// QueryHandler runs the Associated Books workflow: Validate -> Fetch (concurrently) -> Project.
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

// Handle validates the query, loads the loans of the target book together with its co-borrow
// counts and ranks the associated books. The first fetch error cancels the other fetch.
func (h QueryHandler) Handle(ctx context.Context, query Query) (AssociatedBooks, error) {
	if err := query.Validate(); err != nil {
		return AssociatedBooks{}, err
	}

	fetchStart := time.Now()
	loans, coBorrows, err := h.fetch(ctx, query.BookID)
	h.recordComponentTiming(ctx, shell.ComponentFetch, shell.StatusFromError(err), time.Since(fetchStart))
	if err != nil {
		return AssociatedBooks{}, err
	}

	projectionStart := time.Now()
	result, err := ProjectAssociatedBooks(loans, coBorrows, query)
	h.recordComponentTiming(ctx, shell.ComponentProjection, shell.StatusFromError(err), time.Since(projectionStart))

	return result, err
}

func (h QueryHandler) fetch(ctx context.Context, bookID int) ([]lending.Loan, []lending.CoBorrowCount, error) {
	var (
		loans     []lending.Loan
		coBorrows []lending.CoBorrowCount
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		loans, err = h.source.LoansForBook(gctx, bookID)
		return err
	})

	g.Go(func() error {
		var err error
		coBorrows, err = h.source.CoBorrowCounts(gctx, bookID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return loans, coBorrows, nil
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
