package postgresengine

import (
	"github.com/cecbur/RebtelAssignment-sub000/lending"
)

// Option defines a functional option for configuring LoanStore.
type Option func(*LoanStore) error

// WithLoansTableName sets the loans table name.
func WithLoansTableName(tableName string) Option {
	return func(s *LoanStore) error {
		if tableName == "" {
			return lending.ErrEmptyTableNameSupplied
		}

		s.loansTable = tableName

		return nil
	}
}

// WithBooksTableName sets the books table name.
func WithBooksTableName(tableName string) Option {
	return func(s *LoanStore) error {
		if tableName == "" {
			return lending.ErrEmptyTableNameSupplied
		}

		s.booksTable = tableName

		return nil
	}
}

// WithPatronsTableName sets the patrons table name.
func WithPatronsTableName(tableName string) Option {
	return func(s *LoanStore) error {
		if tableName == "" {
			return lending.ErrEmptyTableNameSupplied
		}

		s.patronsTable = tableName

		return nil
	}
}

// WithLogger sets the logger for the LoanStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: row counts and durations (production-safe)
// Warn level: non-critical issues like failures to close rows
// Error level: failures that cause an operation to fail.
func WithLogger(logger lending.Logger) Option {
	return func(s *LoanStore) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the LoanStore.
// It receives query durations, returned row counts and database errors.
func WithMetrics(collector lending.MetricsCollector) Option {
	return func(s *LoanStore) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the LoanStore.
// One span is created per operation.
func WithTracing(collector lending.TracingCollector) Option {
	return func(s *LoanStore) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the LoanStore.
// It receives the same messages as the Logger, with the context for trace correlation.
func WithContextualLogger(logger lending.ContextualLogger) Option {
	return func(s *LoanStore) error {
		s.contextualLogger = logger
		return nil
	}
}
