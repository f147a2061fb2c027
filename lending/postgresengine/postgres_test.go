package postgresengine_test

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
	"github.com/cecbur/RebtelAssignment-sub000/lending/postgresengine"
	. "github.com/cecbur/RebtelAssignment-sub000/testutil/helper" //nolint:revive
)

var loanColumns = []string{
	"id", "loan_date", "due_date", "return_date", "is_returned",
	"id", "title", "author_id", "isbn", "publication_year", "number_of_pages", "is_available",
	"id", "first_name", "last_name", "email", "phone_number", "membership_date", "is_active",
}

var bookColumns = []string{"id", "title", "author_id", "isbn", "publication_year", "number_of_pages", "is_available"}

var selectLoansPattern = regexp.QuoteMeta(`FROM "loans" AS "l" LEFT JOIN "books" AS "b"`)

func givenMockedStore(t *testing.T, options ...postgresengine.Option) (*postgresengine.LoanStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "error in arranging test data")
	t.Cleanup(func() { _ = db.Close() })

	store, err := postgresengine.NewLoanStoreFromSQLDB(db, options...)
	require.NoError(t, err, "error in arranging test data")

	return store, mock
}

func date(day int) time.Time {
	return time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC)
}

func givenReturnedLoanRow(rows *sqlmock.Rows, loanID, bookID, patronID int64, pages any) *sqlmock.Rows {
	return rows.AddRow(
		loanID, date(1), date(15), date(10), true,
		bookID, "Dune", int64(4), "9780441013593", int64(1965), pages, true,
		patronID, "Ada", "Lovelace", "ada@library.test", nil, date(1), true,
	)
}

func Test_NewLoanStore_Fails_WhenDatabaseIsNil(t *testing.T) {
	// act
	_, sqlDBErr := postgresengine.NewLoanStoreFromSQLDB(nil)
	_, sqlxErr := postgresengine.NewLoanStoreFromSQLX(nil)
	_, pgxErr := postgresengine.NewLoanStoreFromPGXPool(nil)
	_, replicaErr := postgresengine.NewLoanStoreFromPGXPoolAndReplica(nil, nil)

	// assert
	assert.ErrorIs(t, sqlDBErr, lending.ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqlxErr, lending.ErrNilDatabaseConnection)
	assert.ErrorIs(t, pgxErr, lending.ErrNilDatabaseConnection)
	assert.ErrorIs(t, replicaErr, lending.ErrNilDatabaseConnection)
}

func Test_NewLoanStore_Fails_WhenTableNameIsEmpty(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, option := range []postgresengine.Option{
		postgresengine.WithLoansTableName(""),
		postgresengine.WithBooksTableName(""),
		postgresengine.WithPatronsTableName(""),
	} {
		// act
		store, err := postgresengine.NewLoanStoreFromSQLDB(db, option)

		// assert
		assert.ErrorIs(t, err, lending.ErrEmptyTableNameSupplied)
		assert.Nil(t, store)
	}
}

func Test_AllLoans_MapsJoinedRows(t *testing.T) {
	// arrange
	store, mock := givenMockedStore(t)
	rows := givenReturnedLoanRow(sqlmock.NewRows(loanColumns), 1, 10, 100, int64(412))
	mock.ExpectQuery(selectLoansPattern + `.*ORDER BY "l"\."id" ASC`).WillReturnRows(rows)

	// act
	loans, err := store.AllLoans(context.Background())

	// assert
	require.NoError(t, err)
	require.Len(t, loans, 1)
	loan := loans[0]
	assert.Equal(t, 1, loan.ID)
	assert.True(t, loan.IsReturned)
	require.NotNil(t, loan.ReturnDate)
	assert.Equal(t, date(10), *loan.ReturnDate)
	require.NotNil(t, loan.Book)
	assert.Equal(t, 10, loan.Book.ID)
	assert.Equal(t, "Dune", loan.Book.Title)
	require.NotNil(t, loan.Book.PageCount)
	assert.Equal(t, 412, *loan.Book.PageCount)
	require.NotNil(t, loan.Patron)
	assert.Equal(t, 100, loan.Patron.ID)
	assert.Nil(t, loan.Patron.PhoneNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_AllLoans_LeavesUnresolvedReferencesNil(t *testing.T) {
	// arrange
	store, mock := givenMockedStore(t)
	rows := sqlmock.NewRows(loanColumns).AddRow(
		int64(2), date(3), date(17), nil, false,
		nil, nil, nil, nil, nil, nil, nil,
		nil, nil, nil, nil, nil, nil, nil,
	)
	mock.ExpectQuery(selectLoansPattern).WillReturnRows(rows)

	// act
	loans, err := store.AllLoans(context.Background())

	// assert
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Nil(t, loans[0].Book)
	assert.Nil(t, loans[0].Patron)
	assert.False(t, loans[0].IsReturned)
	assert.Nil(t, loans[0].ReturnDate)
}

func Test_AllLoans_KeepsPageCountUnknown_WhenColumnIsNull(t *testing.T) {
	// arrange
	store, mock := givenMockedStore(t)
	rows := givenReturnedLoanRow(sqlmock.NewRows(loanColumns), 1, 10, 100, nil)
	mock.ExpectQuery(selectLoansPattern).WillReturnRows(rows)

	// act
	loans, err := store.AllLoans(context.Background())

	// assert
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Nil(t, loans[0].Book.PageCount)
}

func Test_AllLoans_TreatsLoanAsNotReturned_WhenReturnDateIsMissing(t *testing.T) {
	// arrange
	store, mock := givenMockedStore(t)
	rows := sqlmock.NewRows(loanColumns).AddRow(
		int64(3), date(3), date(17), nil, true,
		int64(10), "Dune", nil, nil, nil, int64(412), true,
		int64(100), "Ada", "Lovelace", "ada@library.test", nil, date(1), true,
	)
	mock.ExpectQuery(selectLoansPattern).WillReturnRows(rows)

	// act
	loans, err := store.AllLoans(context.Background())

	// assert
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.False(t, loans[0].IsReturned)
	assert.Nil(t, loans[0].ReturnDate)
}

func Test_AllLoans_ReturnsEmptyResult_WhenThereAreNoRows(t *testing.T) {
	// arrange
	store, mock := givenMockedStore(t)
	mock.ExpectQuery(selectLoansPattern).WillReturnRows(sqlmock.NewRows(loanColumns))

	// act
	loans, err := store.AllLoans(context.Background())

	// assert
	require.NoError(t, err)
	assert.NotNil(t, loans)
	assert.Empty(t, loans)
}

func Test_LoansBetween_FiltersOnHalfOpenLoanDateWindow(t *testing.T) {
	// arrange
	store, mock := givenMockedStore(t)
	pattern := selectLoansPattern +
		`.*` + regexp.QuoteMeta(`"l"."loan_date" >= '2024-03-01`) +
		`.*` + regexp.QuoteMeta(`"l"."loan_date" < '2024-03-08`)
	mock.ExpectQuery(pattern).WillReturnRows(sqlmock.NewRows(loanColumns))

	// act
	_, err := store.LoansBetween(context.Background(), date(1), date(8))

	// assert
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_LoansForBook_And_LoansForPatron_FilterByID(t *testing.T) {
	// arrange
	store, mock := givenMockedStore(t)
	mock.ExpectQuery(selectLoansPattern + `.*` + regexp.QuoteMeta(`"l"."book_id" = 7`)).
		WillReturnRows(sqlmock.NewRows(loanColumns))
	mock.ExpectQuery(selectLoansPattern + `.*` + regexp.QuoteMeta(`"l"."patron_id" = 9`)).
		WillReturnRows(sqlmock.NewRows(loanColumns))

	// act
	_, bookErr := store.LoansForBook(context.Background(), 7)
	_, patronErr := store.LoansForPatron(context.Background(), 9)

	// assert
	require.NoError(t, bookErr)
	require.NoError(t, patronErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_WithTableNames_AreUsedInQueries(t *testing.T) {
	// arrange
	store, mock := givenMockedStore(
		t,
		postgresengine.WithLoansTableName("lib_loans"),
		postgresengine.WithBooksTableName("lib_books"),
		postgresengine.WithPatronsTableName("lib_patrons"),
	)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "lib_loans" AS "l" LEFT JOIN "lib_books" AS "b"`) +
		`.*` + regexp.QuoteMeta(`LEFT JOIN "lib_patrons" AS "p"`)).
		WillReturnRows(sqlmock.NewRows(loanColumns))

	// act
	_, err := store.AllLoans(context.Background())

	// assert
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_AllLoans_PropagatesDatabaseError(t *testing.T) {
	// arrange
	store, mock := givenMockedStore(t)
	dbErr := errors.New("connection reset")
	mock.ExpectQuery(selectLoansPattern).WillReturnError(dbErr)

	// act
	loans, err := store.AllLoans(context.Background())

	// assert
	assert.Nil(t, loans)
	assert.ErrorIs(t, err, lending.ErrQueryingLoansFailed)
	assert.ErrorIs(t, err, dbErr)
	assert.False(t, lending.IsInvalidArgument(err))
}

func Test_AllLoans_PropagatesCancellation(t *testing.T) {
	// arrange
	store, mock := givenMockedStore(t)
	mock.ExpectQuery(selectLoansPattern).WillReturnError(context.Canceled)

	// act
	_, err := store.AllLoans(context.Background())

	// assert
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_AllLoans_Fails_WhenRowCannotBeScanned(t *testing.T) {
	// arrange
	store, mock := givenMockedStore(t)
	mock.ExpectQuery(selectLoansPattern).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	// act
	_, err := store.AllLoans(context.Background())

	// assert
	assert.ErrorIs(t, err, lending.ErrScanningLoanRowFailed)
}

func Test_CoBorrowCounts_AggregatesInDatabase(t *testing.T) {
	// arrange
	store, mock := givenMockedStore(t)
	pattern := regexp.QuoteMeta(`COUNT(*) AS "co_borrow_count"`) +
		`.*` + regexp.QuoteMeta(`"l"."patron_id" IN (SELECT "patron_id" FROM "loans" WHERE ("book_id" = 3))`) +
		`.*` + regexp.QuoteMeta(`"l"."book_id" != 3`) +
		`.*GROUP BY.*ORDER BY "co_borrow_count" DESC`
	rows := sqlmock.NewRows(append(bookColumns, "co_borrow_count")).
		AddRow(int64(5), "Emma", nil, nil, nil, int64(320), true, int64(4)).
		AddRow(int64(6), "Persuasion", nil, nil, int64(1817), nil, false, int64(2))
	mock.ExpectQuery(pattern).WillReturnRows(rows)

	// act
	counts, err := store.CoBorrowCounts(context.Background(), 3)

	// assert
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, 5, counts[0].Book.ID)
	assert.Equal(t, 4, counts[0].Count)
	assert.Equal(t, "Persuasion", counts[1].Book.Title)
	require.NotNil(t, counts[1].Book.PublicationYear)
	assert.Equal(t, 1817, *counts[1].Book.PublicationYear)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_CoBorrowCounts_PropagatesDatabaseError(t *testing.T) {
	// arrange
	store, mock := givenMockedStore(t)
	dbErr := errors.New("relation does not exist")
	mock.ExpectQuery("SELECT").WillReturnError(dbErr)

	// act
	_, err := store.CoBorrowCounts(context.Background(), 3)

	// assert
	assert.ErrorIs(t, err, lending.ErrQueryingCoBorrowsFailed)
	assert.ErrorIs(t, err, dbErr)
}

func Test_NewLoanStoreFromSQLX_QueriesThroughSQLX(t *testing.T) {
	// arrange
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store, err := postgresengine.NewLoanStoreFromSQLX(sqlx.NewDb(db, "sqlmock"))
	require.NoError(t, err)
	mock.ExpectQuery(selectLoansPattern).
		WillReturnRows(givenReturnedLoanRow(sqlmock.NewRows(loanColumns), 1, 10, 100, int64(300)))

	// act
	loans, err := store.AllLoans(context.Background())

	// assert
	require.NoError(t, err)
	assert.Len(t, loans, 1)
}

func Test_Observability_RecordsMetricsSpansAndLogs_OnSuccess(t *testing.T) {
	// arrange
	metrics := NewMetricsCollectorSpy()
	tracing := NewTracingCollectorSpy()
	logSpy := NewLogHandlerSpy(false)
	logger := slog.New(logSpy)

	store, mock := givenMockedStore(
		t,
		postgresengine.WithMetrics(metrics),
		postgresengine.WithTracing(tracing),
		postgresengine.WithLogger(logger),
		postgresengine.WithContextualLogger(logger),
	)
	mock.ExpectQuery(selectLoansPattern).
		WillReturnRows(givenReturnedLoanRow(sqlmock.NewRows(loanColumns), 1, 10, 100, int64(300)))

	// act
	_, err := store.AllLoans(context.Background())

	// assert
	require.NoError(t, err)
	assert.True(t, metrics.HasDurationRecordForMetric("lendingstore_query_duration_seconds").
		WithOperation("all_loans").WithStatus("success").Assert())
	assert.True(t, metrics.HasValueRecordForMetric("lendingstore_rows_returned").WithOperation("all_loans").Assert())
	assert.True(t, metrics.UsedContextualMethods())
	assert.True(t, tracing.HasFinishedSpan("lendingstore.query", "success"))
	assert.True(t, logSpy.HasLogWithAttr(slog.LevelDebug, "executed sql for: all_loans", "query"))
	assert.True(t, logSpy.HasLogWithAttr(slog.LevelInfo, "loan store operation: query completed", "row_count"))
}

func Test_Observability_RecordsErrorMetricsAndSpan_OnFailure(t *testing.T) {
	// arrange
	metrics := NewMetricsCollectorSpy()
	tracing := NewTracingCollectorSpy()
	logSpy := NewLogHandlerSpy(false)

	store, mock := givenMockedStore(
		t,
		postgresengine.WithMetrics(metrics),
		postgresengine.WithTracing(tracing),
		postgresengine.WithLogger(slog.New(logSpy)),
	)
	mock.ExpectQuery(selectLoansPattern).WillReturnError(errors.New("boom"))

	// act
	_, err := store.LoansForPatron(context.Background(), 1)

	// assert
	require.Error(t, err)
	assert.True(t, metrics.HasCounterRecordForMetric("lendingstore_database_errors_total").
		WithOperation("loans_for_patron").WithLabel("error_type", "database_query").Assert())
	assert.True(t, tracing.HasFinishedSpan("lendingstore.query", "error"))
	assert.True(t, logSpy.HasLog(slog.LevelError, "database query execution failed"))
}
