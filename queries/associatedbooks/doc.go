// Package associatedbooks implements the Associated Books query use case.
//
// For a target book it ranks the other books that patrons of the target book also borrowed.
// Books co-borrowed only once are dropped. Each entry carries the ratio of its co-borrow count to
// the number of loans of the target book. The loans of the target book and the co-borrow counts
// are fetched concurrently.
package associatedbooks
