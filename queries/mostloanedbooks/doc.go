// Package mostloanedbooks implements the Most Loaned Books query use case.
//
// The query ranks all books by how often they were lent, most loaned first. Books with equal
// loan counts keep the order in which they first appear in the loan history. An optional limit
// restricts the result to the top n books.
//
// This is a read-only operation: validate, fetch all loans, project.
package mostloanedbooks
