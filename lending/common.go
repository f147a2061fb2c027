package lending

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the kind shared by all precondition violations.
// Callers should treat it as non-retryable and use errors.Is to detect it.
var ErrInvalidArgument = errors.New("invalid argument")

var ErrNonPositiveLimit = fmt.Errorf("%w: maxResults must be greater than zero", ErrInvalidArgument)
var ErrInvalidWindow = fmt.Errorf("%w: window start must be before window end", ErrInvalidArgument)
var ErrInvalidBookID = fmt.Errorf("%w: book id must be greater than zero", ErrInvalidArgument)
var ErrInvalidPatronID = fmt.Errorf("%w: patron id must be greater than zero", ErrInvalidArgument)
var ErrNegativeLoanCount = fmt.Errorf("%w: target loan count must not be negative", ErrInvalidArgument)
var ErrTargetBookNotLoaned = fmt.Errorf("%w: co-borrow data supplied for a book without loans", ErrInvalidArgument)

// ErrNilDatabaseConnection and the errors below are reported by loan sources.
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrEmptyTableNameSupplied = errors.New("empty table name supplied")
var ErrQueryingLoansFailed = errors.New("querying loans failed")
var ErrScanningLoanRowFailed = errors.New("scanning loan row failed")
var ErrQueryingCoBorrowsFailed = errors.New("querying co-borrow counts failed")

// IsInvalidArgument reports whether err is a precondition violation.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
