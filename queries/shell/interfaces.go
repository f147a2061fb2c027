package shell

import (
	"context"
)

// Query represents the contract for all lending query types.
// QueryType names the query in metrics, spans and logs.
// CacheKey identifies the query parameters, two queries with equal keys must yield equal results.
// Validate checks the parameters before any data is fetched.
type Query interface {
	QueryType() string
	CacheKey() string
	Validate() error
}

// QueryResult represents the contract for all query result types.
// ResultCount is the number of entries in the result, it is logged by the observable wrapper.
type QueryResult interface {
	ResultCount() int
}

// QueryHandler defines the contract for components that process queries and return projections.
// Core handlers, observable wrappers and cache wrappers all implement it, so they compose freely.
type QueryHandler[Q Query, R QueryResult] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// QueryHandlerFunc adapts a function to a QueryHandler.
type QueryHandlerFunc[Q Query, R QueryResult] func(ctx context.Context, query Q) (R, error)

// Handle calls f(ctx, query).
func (f QueryHandlerFunc[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	return f(ctx, query)
}
