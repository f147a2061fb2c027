package lending

import (
	"strconv"
)

// Limit is an optional maxResults value.
// The zero value is NoLimit; use Top to request the first n entries.
type Limit struct {
	n   int
	set bool
}

// NoLimit returns all entries.
var NoLimit = Limit{}

// Top limits a ranking to its first n entries. n must be greater than zero.
func Top(n int) Limit {
	return Limit{n: n, set: true}
}

// IsSet reports whether a maximum was supplied.
func (l Limit) IsSet() bool {
	return l.set
}

// Max returns the supplied maximum, or zero for NoLimit.
func (l Limit) Max() int {
	return l.n
}

// Validate rejects an explicitly supplied maximum that is not positive.
func (l Limit) Validate() error {
	if l.set && l.n <= 0 {
		return ErrNonPositiveLimit
	}

	return nil
}

// String renders the limit for logs and cache keys.
func (l Limit) String() string {
	if !l.set {
		return "all"
	}

	return strconv.Itoa(l.n)
}

func truncate[T any](entries []T, limit Limit) []T {
	if !limit.set || limit.n >= len(entries) {
		return entries
	}

	return entries[:limit.n]
}
