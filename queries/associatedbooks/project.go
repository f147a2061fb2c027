package associatedbooks

import (
	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

// ProjectAssociatedBooks ranks the co-borrowed books of the queried book and applies the limit.
func ProjectAssociatedBooks(
	loansOfTargetBook []lending.Loan,
	coBorrows []lending.CoBorrowCount,
	query Query,
) (AssociatedBooks, error) {

	entries, err := lending.AssociatedBooks(query.BookID, loansOfTargetBook, coBorrows)
	if err != nil {
		return AssociatedBooks{}, err
	}

	entries, err = lending.ApplyLimit(entries, query.Limit)
	if err != nil {
		return AssociatedBooks{}, err
	}

	return AssociatedBooks{
		BookID: query.BookID,
		Books:  entries,
		Count:  len(entries),
	}, nil
}
