package lending

import (
	"cmp"
	"math"
	"slices"
	"time"
)

// ReadingPace returns the pages per day of a single loan.
//
// The pace is unknown (ok == false) when the loan has not been returned, has no book, the page
// count of its book is unknown, or it was returned before it was lent. A loan returned at the
// instant it was lent has an infinite pace; a book with zero pages has a pace of zero.
func ReadingPace(loan Loan) (pagesPerDay float64, ok bool) {
	if loan.Book == nil || loan.Book.PageCount == nil {
		return 0, false
	}

	returnedAt, returned := loan.ReturnedAt()
	if !returned || returnedAt.Before(loan.LoanDate) {
		return 0, false
	}

	return pace(*loan.Book.PageCount, returnedAt.Sub(loan.LoanDate)), true
}

// ReadingPaceForPatron returns the overall pages per day of one patron.
//
// Only returned loans with a known page count qualify; loans that belong to a different patron
// are ignored. The pages of all qualifying loans are divided by the days covered by their loan
// periods after merging overlaps, so reading two books in parallel is not counted twice.
// The pace is unknown (ok == false) when no loan qualifies.
func ReadingPaceForPatron(patron Patron, loans []Loan) (pagesPerDay float64, ok bool) {
	totalPages := 0
	periods := make([]Interval, 0, len(loans))
	qualifying := 0

	for _, loan := range loans {
		if loan.Patron != nil && loan.Patron.ID != patron.ID {
			continue
		}

		if loan.Book == nil || loan.Book.PageCount == nil {
			continue
		}

		returnedAt, returned := loan.ReturnedAt()
		if !returned {
			continue
		}

		qualifying++
		totalPages += *loan.Book.PageCount
		periods = append(periods, Interval{Start: loan.LoanDate, End: returnedAt})
	}

	if qualifying == 0 {
		return 0, false
	}

	return pace(totalPages, CoveredDuration(periods)), true
}

// ReadingPaceByPatron computes the pace of every patron that appears in loans.
//
// Patrons without a known pace are excluded. The result is ordered by descending pace;
// patrons with equal paces keep the order in which they first appeared.
func ReadingPaceByPatron(loans []Loan) []PatronPace {
	order := make([]Patron, 0)
	loansByPatron := make(map[int][]Loan)

	for _, loan := range loans {
		if loan.Patron == nil {
			continue
		}

		id := PatronID(*loan.Patron)
		if _, seen := loansByPatron[id]; !seen {
			order = append(order, *loan.Patron)
		}
		loansByPatron[id] = append(loansByPatron[id], loan)
	}

	paces := make([]PatronPace, 0, len(order))
	for _, patron := range order {
		if pagesPerDay, ok := ReadingPaceForPatron(patron, loansByPatron[PatronID(patron)]); ok {
			paces = append(paces, PatronPace{Patron: patron, PagesPerDay: pagesPerDay})
		}
	}

	slices.SortStableFunc(paces, func(a, b PatronPace) int {
		return cmp.Compare(b.PagesPerDay, a.PagesPerDay)
	})

	return paces
}

func pace(pages int, elapsed time.Duration) float64 {
	if pages == 0 {
		return 0
	}

	if elapsed <= 0 {
		return math.Inf(1)
	}

	return float64(pages) / days(elapsed)
}
