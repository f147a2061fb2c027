package mostloanedbooks

import (
	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

const (
	queryType = "MostLoanedBooks"
)

// Query represents the intent to rank books by loan count.
type Query struct {
	Limit lending.Limit
}

// BuildQuery creates a new Query with the provided limit.
func BuildQuery(limit lending.Limit) Query {
	return Query{
		Limit: limit,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}

// CacheKey returns the key that identifies the query parameters.
func (q Query) CacheKey() string {
	return "limit=" + q.Limit.String()
}

// Validate rejects a non-positive limit.
func (q Query) Validate() error {
	return q.Limit.Validate()
}
