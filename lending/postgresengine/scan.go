package postgresengine

import (
	"database/sql"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
	"github.com/cecbur/RebtelAssignment-sub000/lending/postgresengine/internal/adapters"
)

// bookRow holds the nullable book columns of a left-joined row.
type bookRow struct {
	id              sql.NullInt64
	title           sql.NullString
	authorID        sql.NullInt64
	isbn            sql.NullString
	publicationYear sql.NullInt64
	numberOfPages   sql.NullInt64
	isAvailable     sql.NullBool
}

func (r *bookRow) destinations() []any {
	return []any{&r.id, &r.title, &r.authorID, &r.isbn, &r.publicationYear, &r.numberOfPages, &r.isAvailable}
}

func (r *bookRow) toBook() *lending.Book {
	if !r.id.Valid {
		return nil
	}

	return &lending.Book{
		ID:              int(r.id.Int64),
		Title:           r.title.String,
		AuthorID:        optionalInt(r.authorID),
		ISBN:            optionalString(r.isbn),
		PublicationYear: optionalInt(r.publicationYear),
		PageCount:       optionalInt(r.numberOfPages),
		IsAvailable:     r.isAvailable.Bool,
	}
}

// patronRow holds the nullable patron columns of a left-joined row.
type patronRow struct {
	id             sql.NullInt64
	firstName      sql.NullString
	lastName       sql.NullString
	email          sql.NullString
	phoneNumber    sql.NullString
	membershipDate sql.NullTime
	isActive       sql.NullBool
}

func (r *patronRow) destinations() []any {
	return []any{&r.id, &r.firstName, &r.lastName, &r.email, &r.phoneNumber, &r.membershipDate, &r.isActive}
}

func (r *patronRow) toPatron() *lending.Patron {
	if !r.id.Valid {
		return nil
	}

	return &lending.Patron{
		ID:             int(r.id.Int64),
		FirstName:      r.firstName.String,
		LastName:       r.lastName.String,
		Email:          r.email.String,
		PhoneNumber:    optionalString(r.phoneNumber),
		MembershipDate: r.membershipDate.Time,
		IsActive:       r.isActive.Bool,
	}
}

// scanLoanRow scans one row of the loan select into a loan.
// The returned flag and the return date are reconciled so that a loan is returned
// exactly when it carries a return date.
func scanLoanRow(rows adapters.DBRows) (lending.Loan, error) {
	var (
		loanID     int64
		loanDate   sql.NullTime
		dueDate    sql.NullTime
		returnDate sql.NullTime
		isReturned sql.NullBool
		book       bookRow
		patron     patronRow
	)

	dest := []any{&loanID, &loanDate, &dueDate, &returnDate, &isReturned}
	dest = append(dest, book.destinations()...)
	dest = append(dest, patron.destinations()...)

	if err := rows.Scan(dest...); err != nil {
		return lending.Loan{}, err
	}

	loan := lending.Loan{
		ID:       int(loanID),
		Book:     book.toBook(),
		Patron:   patron.toPatron(),
		LoanDate: loanDate.Time,
		DueDate:  dueDate.Time,
	}

	if isReturned.Bool && returnDate.Valid {
		returnedAt := returnDate.Time
		loan.ReturnDate = &returnedAt
		loan.IsReturned = true
	}

	return loan, nil
}

// scanCoBorrowRow scans one row of the co-borrow aggregation.
func scanCoBorrowRow(rows adapters.DBRows) (lending.CoBorrowCount, error) {
	var (
		book  bookRow
		count int64
	)

	dest := append(book.destinations(), &count)
	if err := rows.Scan(dest...); err != nil {
		return lending.CoBorrowCount{}, err
	}

	row := lending.CoBorrowCount{Count: int(count)}
	if b := book.toBook(); b != nil {
		row.Book = *b
	}

	return row, nil
}

// scanAll materializes all rows; the result is never nil.
func scanAll[T any](rows adapters.DBRows, scan func(adapters.DBRows) (T, error)) ([]T, error) {
	result := make([]T, 0)

	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func optionalInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}

	i := int(v.Int64)

	return &i
}

func optionalString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}

	s := v.String

	return &s
}
