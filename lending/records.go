package lending

import (
	"time"
)

// Book is a read-only snapshot of a catalog entry.
// A nil PageCount means the page count is unknown, which is different from zero pages.
type Book struct {
	ID              int
	Title           string
	AuthorID        *int
	ISBN            *string
	PublicationYear *int
	PageCount       *int
	IsAvailable     bool
}

// Patron is a read-only snapshot of a library member. Identity is the ID alone.
type Patron struct {
	ID             int
	FirstName      string
	LastName       string
	Email          string
	PhoneNumber    *string
	MembershipDate time.Time
	IsActive       bool
}

// Loan is a read-only snapshot of one lending.
// Book or Patron may be nil when the record could not be resolved; such loans are skipped
// by every computation that needs the missing reference.
type Loan struct {
	ID         int
	Book       *Book
	Patron     *Patron
	LoanDate   time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	IsReturned bool
}

// ReturnedAt returns the return date if the loan has been returned.
func (l Loan) ReturnedAt() (time.Time, bool) {
	if !l.IsReturned || l.ReturnDate == nil {
		return time.Time{}, false
	}

	return *l.ReturnDate, true
}

// RankedEntry pairs an item with the number of times its key occurred.
type RankedEntry[T any] struct {
	Item  T
	Count int
}

// CoBorrowCount is one row of the co-borrow table: how often Book was borrowed
// by patrons who also borrowed the target book.
type CoBorrowCount struct {
	Book  Book
	Count int
}

// AssociationEntry is a book associated with a target book.
// Ratio is CoBorrowCount divided by the number of loans of the target book.
type AssociationEntry struct {
	Book          Book
	CoBorrowCount int
	Ratio         float64
}

// PatronPace is the reading pace of one patron in pages per day.
type PatronPace struct {
	Patron      Patron
	PagesPerDay float64
}

// BookID returns the id of a book.
func BookID(b Book) int {
	return b.ID
}

// PatronID returns the id of a patron. It is the identity key for patrons.
func PatronID(p Patron) int {
	return p.ID
}
