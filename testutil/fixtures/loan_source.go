package fixtures

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

// InMemoryLoanSource serves loans from memory with the same semantics as the postgres LoanStore.
// It counts calls per method and can be told to fail, so tests can check that invalid queries
// never reach the data source.
type InMemoryLoanSource struct {
	mu    sync.Mutex
	loans []lending.Loan
	err   error
	calls map[string]int
}

// NewInMemoryLoanSource creates a source holding loans.
func NewInMemoryLoanSource(loans ...lending.Loan) *InMemoryLoanSource {
	return &InMemoryLoanSource{
		loans: loans,
		calls: make(map[string]int),
	}
}

// FailWith makes every following call return err.
func (s *InMemoryLoanSource) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
}

// Calls returns how often method was called.
func (s *InMemoryLoanSource) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[method]
}

// TotalCalls returns the number of calls over all methods.
func (s *InMemoryLoanSource) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.calls {
		total += n
	}

	return total
}

func (s *InMemoryLoanSource) AllLoans(ctx context.Context) ([]lending.Loan, error) {
	return s.filter(ctx, "AllLoans", func(lending.Loan) bool { return true })
}

func (s *InMemoryLoanSource) LoansBetween(ctx context.Context, from, to time.Time) ([]lending.Loan, error) {
	return s.filter(ctx, "LoansBetween", func(loan lending.Loan) bool {
		return !loan.LoanDate.Before(from) && loan.LoanDate.Before(to)
	})
}

func (s *InMemoryLoanSource) LoansForBook(ctx context.Context, bookID int) ([]lending.Loan, error) {
	return s.filter(ctx, "LoansForBook", func(loan lending.Loan) bool {
		return loan.Book != nil && loan.Book.ID == bookID
	})
}

func (s *InMemoryLoanSource) LoansForPatron(ctx context.Context, patronID int) ([]lending.Loan, error) {
	return s.filter(ctx, "LoansForPatron", func(loan lending.Loan) bool {
		return loan.Patron != nil && loan.Patron.ID == patronID
	})
}

// CoBorrowCounts counts, per other book, the loans by patrons who also borrowed bookID.
// Rows are ordered by descending count, then by book id.
func (s *InMemoryLoanSource) CoBorrowCounts(ctx context.Context, bookID int) ([]lending.CoBorrowCount, error) {
	loans, err := s.filter(ctx, "CoBorrowCounts", func(loan lending.Loan) bool {
		return loan.Book != nil && loan.Patron != nil
	})
	if err != nil {
		return nil, err
	}

	borrowers := make(map[int]bool)
	for _, loan := range loans {
		if loan.Book.ID == bookID {
			borrowers[loan.Patron.ID] = true
		}
	}

	counts := make([]lending.CoBorrowCount, 0)
	positions := make(map[int]int)
	for _, loan := range loans {
		if loan.Book.ID == bookID || !borrowers[loan.Patron.ID] {
			continue
		}

		if position, seen := positions[loan.Book.ID]; seen {
			counts[position].Count++
			continue
		}

		positions[loan.Book.ID] = len(counts)
		counts = append(counts, lending.CoBorrowCount{Book: *loan.Book, Count: 1})
	}

	slices.SortFunc(counts, func(a, b lending.CoBorrowCount) int {
		if byCount := cmp.Compare(b.Count, a.Count); byCount != 0 {
			return byCount
		}

		return cmp.Compare(a.Book.ID, b.Book.ID)
	})

	return counts, nil
}

func (s *InMemoryLoanSource) filter(ctx context.Context, method string, keep func(lending.Loan) bool) ([]lending.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[method]++

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.err != nil {
		return nil, s.err
	}

	kept := make([]lending.Loan, 0, len(s.loans))
	for _, loan := range s.loans {
		if keep(loan) {
			kept = append(kept, loan)
		}
	}

	return kept, nil
}
