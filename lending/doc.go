// Package lending provides the analytics engine for a library's lending history.
//
// The engine is a functional core: every operation takes fully materialized, read-only
// snapshots of loan records and returns ordered statistics. Nothing in this package performs
// I/O, holds state between calls, or blocks, so all operations are safe for concurrent use.
//
// The engine answers four questions:
//   - Which books are borrowed most (MostLoanedBooks)
//   - Which patrons borrow most within a time window (MostActivePatrons)
//   - How fast a patron reads in pages per day (ReadingPace, ReadingPaceForPatron, ReadingPaceByPatron)
//   - Which other books are borrowed by the patrons of a given book (AssociatedBooks)
//
// Building blocks:
//   - RankBy: group by key, count, order by descending count with stable ties, optional top-N
//   - MergeIntervals / CoveredDuration: merge overlapping or touching date ranges
//   - RankAssociations: filter and rank co-borrow counts by ratio to the target's loan count
//
// Precondition violations (a non-positive limit, an empty time window, an invalid book id) are
// reported with errors wrapping ErrInvalidArgument before any data is processed. Missing data
// is not an error: empty inputs produce empty results and an unknown pace is reported as such.
//
// Common usage pattern:
//
//	loans, err := store.AllLoans(ctx)
//	if err != nil {
//		// handle error
//	}
//
//	topBooks, err := lending.MostLoanedBooks(loans, lending.Top(10))
//	if err != nil {
//		// only precondition violations end up here
//	}
//
//	for _, entry := range topBooks {
//		fmt.Println(entry.Item.Title, entry.Count)
//	}
package lending
