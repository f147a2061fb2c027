package fixtures

import (
	"fmt"
	"sync"
	"time"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

// IDSequence hands out increasing ids starting at 1.
type IDSequence struct {
	mu   sync.Mutex
	next int
}

// NewIDSequence creates a sequence whose first id is 1.
func NewIDSequence() *IDSequence {
	return &IDSequence{next: 1}
}

// Next returns the next id.
func (s *IDSequence) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++

	return id
}

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Pages returns a pointer to a page count.
func Pages(n int) *int {
	return &n
}

// GivenBook builds an available book with the given page count (nil for unknown).
func GivenBook(seq *IDSequence, pageCount *int) lending.Book {
	id := seq.Next()

	return lending.Book{
		ID:          id,
		Title:       fmt.Sprintf("Book %d", id),
		PageCount:   pageCount,
		IsAvailable: true,
	}
}

// GivenPatron builds an active patron.
func GivenPatron(seq *IDSequence) lending.Patron {
	id := seq.Next()

	return lending.Patron{
		ID:             id,
		FirstName:      "Reader",
		LastName:       fmt.Sprintf("%d", id),
		Email:          fmt.Sprintf("reader%d@library.test", id),
		MembershipDate: Day(2020, time.January, 1),
		IsActive:       true,
	}
}

// GivenOpenLoan builds a loan that has not been returned. Due date is two weeks after lending.
func GivenOpenLoan(seq *IDSequence, book lending.Book, patron lending.Patron, lentAt time.Time) lending.Loan {
	return lending.Loan{
		ID:       seq.Next(),
		Book:     &book,
		Patron:   &patron,
		LoanDate: lentAt,
		DueDate:  lentAt.AddDate(0, 0, 14),
	}
}

// GivenReturnedLoan builds a loan that was returned at returnedAt.
func GivenReturnedLoan(
	seq *IDSequence,
	book lending.Book,
	patron lending.Patron,
	lentAt time.Time,
	returnedAt time.Time,
) lending.Loan {

	loan := GivenOpenLoan(seq, book, patron, lentAt)
	loan.ReturnDate = &returnedAt
	loan.IsReturned = true

	return loan
}

// GivenLoansOf builds count open loans of book, each by patron, lent one day apart starting at from.
func GivenLoansOf(
	seq *IDSequence,
	count int,
	book lending.Book,
	patron lending.Patron,
	from time.Time,
) []lending.Loan {

	loans := make([]lending.Loan, 0, count)
	for i := 0; i < count; i++ {
		loans = append(loans, GivenOpenLoan(seq, book, patron, from.AddDate(0, 0, i)))
	}

	return loans
}
