package lending

import (
	"slices"
)

// RankAssociations turns co-borrow counts into association entries for a target book.
//
// Rows for the same book are merged by summing their counts. Books co-borrowed at most once and
// the target book itself are dropped. The ratio of each remaining book is its co-borrow count
// divided by targetLoanCount. Entries are ordered by descending co-borrow count; equal counts
// keep their input order.
//
// A target book without loans has no meaningful ratios: with co-borrow rows present this is
// reported as ErrTargetBookNotLoaned, without rows the result is empty.
func RankAssociations(targetBookID, targetLoanCount int, coBorrows []CoBorrowCount) ([]AssociationEntry, error) {
	if err := ValidateBookID(targetBookID); err != nil {
		return nil, err
	}

	if targetLoanCount < 0 {
		return nil, ErrNegativeLoanCount
	}

	if targetLoanCount == 0 && len(coBorrows) > 0 {
		return nil, ErrTargetBookNotLoaned
	}

	merged := mergeCoBorrows(coBorrows)

	entries := make([]AssociationEntry, 0, len(merged))
	for _, row := range merged {
		if row.Book.ID == targetBookID || row.Count <= 1 {
			continue
		}

		entries = append(entries, AssociationEntry{
			Book:          row.Book,
			CoBorrowCount: row.Count,
			Ratio:         float64(row.Count) / float64(targetLoanCount),
		})
	}

	slices.SortStableFunc(entries, func(a, b AssociationEntry) int {
		return b.CoBorrowCount - a.CoBorrowCount
	})

	return entries, nil
}

func mergeCoBorrows(coBorrows []CoBorrowCount) []CoBorrowCount {
	positions := make(map[int]int, len(coBorrows))
	merged := make([]CoBorrowCount, 0, len(coBorrows))

	for _, row := range coBorrows {
		if pos, seen := positions[row.Book.ID]; seen {
			merged[pos].Count += row.Count
			continue
		}

		positions[row.Book.ID] = len(merged)
		merged = append(merged, row)
	}

	return merged
}
