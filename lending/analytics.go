package lending

import (
	"time"
)

// MostLoanedBooks ranks books by their number of loans. Loans without a book are skipped.
func MostLoanedBooks(loans []Loan, limit Limit) ([]RankedEntry[Book], error) {
	if err := limit.Validate(); err != nil {
		return nil, err
	}

	return RankBy(booksOf(loans), BookID, limit)
}

// MostActivePatrons ranks patrons by their number of loans lent within [from, to).
// Loans without a patron are skipped.
func MostActivePatrons(loans []Loan, from, to time.Time, limit Limit) ([]RankedEntry[Patron], error) {
	if err := ValidateWindow(from, to); err != nil {
		return nil, err
	}

	if err := limit.Validate(); err != nil {
		return nil, err
	}

	return RankBy(patronsOf(LoansWithin(loans, from, to)), PatronID, limit)
}

// AssociatedBooks ranks the books co-borrowed with the target book.
// The loan count of the target book is taken from loansOfTargetBook; loans that reference
// another book are not counted.
func AssociatedBooks(targetBookID int, loansOfTargetBook []Loan, coBorrows []CoBorrowCount) ([]AssociationEntry, error) {
	if err := ValidateBookID(targetBookID); err != nil {
		return nil, err
	}

	targetLoanCount := 0
	for _, loan := range loansOfTargetBook {
		if loan.Book == nil || loan.Book.ID == targetBookID {
			targetLoanCount++
		}
	}

	return RankAssociations(targetBookID, targetLoanCount, coBorrows)
}

// LoansWithin returns the loans lent within [from, to), preserving their order.
func LoansWithin(loans []Loan, from, to time.Time) []Loan {
	within := make([]Loan, 0, len(loans))
	for _, loan := range loans {
		if !loan.LoanDate.Before(from) && loan.LoanDate.Before(to) {
			within = append(within, loan)
		}
	}

	return within
}

// ApplyLimit returns at most limit entries of an already ranked slice.
func ApplyLimit[T any](entries []T, limit Limit) ([]T, error) {
	if err := limit.Validate(); err != nil {
		return nil, err
	}

	return truncate(entries, limit), nil
}

// ValidateWindow rejects a window whose start is not before its end.
func ValidateWindow(from, to time.Time) error {
	if !from.Before(to) {
		return ErrInvalidWindow
	}

	return nil
}

// ValidateBookID rejects ids that cannot identify a stored book.
func ValidateBookID(id int) error {
	if id <= 0 {
		return ErrInvalidBookID
	}

	return nil
}

// ValidatePatronID rejects ids that cannot identify a stored patron.
func ValidatePatronID(id int) error {
	if id <= 0 {
		return ErrInvalidPatronID
	}

	return nil
}
