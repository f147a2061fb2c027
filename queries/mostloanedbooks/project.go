package mostloanedbooks

import (
	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

// ProjectMostLoanedBooks ranks the books of loans by loan count.
// This is a pure function; loans without a book are skipped.
func ProjectMostLoanedBooks(loans []lending.Loan, query Query) (MostLoanedBooks, error) {
	ranked, err := lending.MostLoanedBooks(loans, query.Limit)
	if err != nil {
		return MostLoanedBooks{}, err
	}

	return MostLoanedBooks{
		Books: ranked,
		Count: len(ranked),
	}, nil
}
