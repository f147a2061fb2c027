package associatedbooks

import (
	"errors"
	"strconv"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

const queryType = "AssociatedBooks"

// Query represents the intent to find books associated with a target book.
type Query struct {
	BookID int
	Limit  lending.Limit
}

// BuildQuery creates a new Query for the target book.
func BuildQuery(bookID int, limit lending.Limit) Query {
	return Query{
		BookID: bookID,
		Limit:  limit,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}

// CacheKey returns the key that identifies the query parameters.
func (q Query) CacheKey() string {
	return "book=" + strconv.Itoa(q.BookID) + "|limit=" + q.Limit.String()
}

// Validate rejects an invalid book id and a non-positive limit. Both violations are reported.
func (q Query) Validate() error {
	return errors.Join(lending.ValidateBookID(q.BookID), q.Limit.Validate())
}
