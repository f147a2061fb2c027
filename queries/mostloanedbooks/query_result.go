package mostloanedbooks

import (
	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

// MostLoanedBooks represents the query result: books ranked by loan count.
type MostLoanedBooks struct {
	Books []lending.RankedEntry[lending.Book]
	Count int
}

// ResultCount returns the number of ranked books.
func (r MostLoanedBooks) ResultCount() int {
	return r.Count
}
