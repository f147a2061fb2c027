package shell

import "errors"

// ErrNilLoanSource is returned when a query handler is created without a data source.
var ErrNilLoanSource = errors.New("loan source must not be nil")
