package readingpace

import (
	"strconv"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

const (
	queryType            = "ReadingPace"
	leaderboardQueryType = "ReadingPaceLeaderboard"
)

// Query represents the intent to compute the reading pace of one patron.
type Query struct {
	PatronID int
}

// BuildQuery creates a new Query for the patron.
func BuildQuery(patronID int) Query {
	return Query{
		PatronID: patronID,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}

// CacheKey returns the key that identifies the query parameters.
func (q Query) CacheKey() string {
	return "patron=" + strconv.Itoa(q.PatronID)
}

// Validate rejects ids that cannot identify a patron.
func (q Query) Validate() error {
	return lending.ValidatePatronID(q.PatronID)
}

// LeaderboardQuery represents the intent to rank all patrons by reading pace.
type LeaderboardQuery struct {
	Limit lending.Limit
}

// BuildLeaderboardQuery creates a new LeaderboardQuery with the provided limit.
func BuildLeaderboardQuery(limit lending.Limit) LeaderboardQuery {
	return LeaderboardQuery{
		Limit: limit,
	}
}

// QueryType returns the query type.
func (q LeaderboardQuery) QueryType() string {
	return leaderboardQueryType
}

// CacheKey returns the key that identifies the query parameters.
func (q LeaderboardQuery) CacheKey() string {
	return "limit=" + q.Limit.String()
}

// Validate rejects a non-positive limit.
func (q LeaderboardQuery) Validate() error {
	return q.Limit.Validate()
}
