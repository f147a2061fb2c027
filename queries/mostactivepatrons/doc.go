// Package mostactivepatrons implements the Most Active Patrons query use case.
//
// The query ranks patrons by the number of loans lent to them within a half-open window
// [From, To). Patrons with equal counts keep the order in which they first appear.
// An optional limit restricts the result to the top n patrons.
package mostactivepatrons
