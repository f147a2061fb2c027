package lending

import (
	"slices"
)

// RankBy groups items by key, counts each group and orders the groups by descending count.
//
// The item reported for a group is the first item seen with that key. Groups with equal counts
// keep the order in which their key first appeared, so the result is deterministic for a given
// input order. An explicitly supplied limit must be positive; a limit larger than the number of
// groups returns all groups. Empty input yields an empty, non-nil result.
func RankBy[T any, K comparable](items []T, key func(T) K, limit Limit) ([]RankedEntry[T], error) {
	if err := limit.Validate(); err != nil {
		return nil, err
	}

	positions := make(map[K]int, len(items))
	entries := make([]RankedEntry[T], 0)

	for _, item := range items {
		k := key(item)

		if pos, seen := positions[k]; seen {
			entries[pos].Count++
			continue
		}

		positions[k] = len(entries)
		entries = append(entries, RankedEntry[T]{Item: item, Count: 1})
	}

	slices.SortStableFunc(entries, func(a, b RankedEntry[T]) int {
		return b.Count - a.Count
	})

	return truncate(entries, limit), nil
}

// booksOf returns the books of all loans that reference one.
func booksOf(loans []Loan) []Book {
	books := make([]Book, 0, len(loans))
	for _, loan := range loans {
		if loan.Book != nil {
			books = append(books, *loan.Book)
		}
	}

	return books
}

// patronsOf returns the patrons of all loans that reference one.
func patronsOf(loans []Loan) []Patron {
	patrons := make([]Patron, 0, len(loans))
	for _, loan := range loans {
		if loan.Patron != nil {
			patrons = append(patrons, *loan.Patron)
		}
	}

	return patrons
}
