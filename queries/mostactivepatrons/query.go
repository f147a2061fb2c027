package mostactivepatrons

import (
	"time"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

const (
	queryType = "MostActivePatrons"
)

// Query represents the intent to rank patrons by loans within [From, To).
type Query struct {
	From  time.Time
	To    time.Time
	Limit lending.Limit
}

// BuildQuery creates a new Query for the window [from, to).
func BuildQuery(from, to time.Time, limit lending.Limit) Query {
	return Query{
		From:  from,
		To:    to,
		Limit: limit,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}

// CacheKey returns the key that identifies the query parameters. Instants are normalized to UTC.
func (q Query) CacheKey() string {
	return "from=" + q.From.UTC().Format(time.RFC3339Nano) +
		"|to=" + q.To.UTC().Format(time.RFC3339Nano) +
		"|limit=" + q.Limit.String()
}

// Validate rejects an empty or inverted window and a non-positive limit.
func (q Query) Validate() error {
	if err := lending.ValidateWindow(q.From, q.To); err != nil {
		return err
	}

	return q.Limit.Validate()
}
