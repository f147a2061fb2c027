// Package postgresengine provides a PostgreSQL implementation of the loan source the lending
// analytics queries read from.
//
// The LoanStore materializes loans together with their book and patron in one query, so the
// analytics engine always receives complete, immutable snapshots. Co-borrow counts are
// aggregated in the database with GROUP BY, which keeps the data transferred proportional to
// the number of distinct books rather than the number of loans.
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Loan retrieval: all, by lending date window, by book, by patron
//   - Co-borrow aggregation per target book
//   - Configurable table names
//   - Optional logging, contextual logging, metrics and tracing
//
// Expected schema (table names configurable):
//
//	books(id, title, author_id, isbn, publication_year, number_of_pages, is_available)
//	patrons(id, first_name, last_name, email, phone_number, membership_date, is_active)
//	loans(id, book_id, patron_id, loan_date, due_date, return_date, is_returned)
//
// Usage examples:
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	store, _ := postgresengine.NewLoanStoreFromPGXPool(pool)
//
//	// With observability
//	store, _ := postgresengine.NewLoanStoreFromPGXPool(
//		pool,
//		postgresengine.WithLoansTableName("library_loans"),
//		postgresengine.WithLogger(slog.Default()),
//		postgresengine.WithMetrics(metricsCollector),
//		postgresengine.WithTracing(tracingCollector),
//	)
//
//	loans, err := store.LoansBetween(ctx, from, to)
package postgresengine
