package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/cecbur/RebtelAssignment-sub000/lending"
	"github.com/cecbur/RebtelAssignment-sub000/lending/postgresengine/internal/adapters"
)

const (
	defaultLoansTableName   = "loans"
	defaultBooksTableName   = "books"
	defaultPatronsTableName = "patrons"
	dialectPostgres         = "postgres"
	aliasLoan               = "l"
	aliasBook               = "b"
	aliasPatron             = "p"
	aliasCoBorrowCount      = "co_borrow_count"
	colID                   = "id"
	colBookID               = "book_id"
	colPatronID             = "patron_id"
	colLoanDate             = "loan_date"
	colDueDate              = "due_date"
	colReturnDate           = "return_date"
	colIsReturned           = "is_returned"
	colTitle                = "title"
	colAuthorID             = "author_id"
	colISBN                 = "isbn"
	colPublicationYear      = "publication_year"
	colNumberOfPages        = "number_of_pages"
	colIsAvailable          = "is_available"
	colFirstName            = "first_name"
	colLastName             = "last_name"
	colEmail                = "email"
	colPhoneNumber          = "phone_number"
	colMembershipDate       = "membership_date"
	colIsActive             = "is_active"
)

// LoanStore reads loans and co-borrow aggregates from PostgreSQL.
// It is safe for concurrent use.
type LoanStore struct {
	db               adapters.DBAdapter
	loansTable       string
	booksTable       string
	patronsTable     string
	logger           lending.Logger
	contextualLogger lending.ContextualLogger
	metricsCollector lending.MetricsCollector
	tracingCollector lending.TracingCollector
}

// NewLoanStoreFromPGXPool creates a new LoanStore using a pgx Pool with optional configuration.
func NewLoanStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*LoanStore, error) {
	if db == nil {
		return nil, lending.ErrNilDatabaseConnection
	}

	return newLoanStore(adapters.NewPGXAdapter(db), options...)
}

// NewLoanStoreFromPGXPoolAndReplica creates a new LoanStore that reads from the replica pool.
func NewLoanStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*LoanStore, error) {
	if db == nil || replica == nil {
		return nil, lending.ErrNilDatabaseConnection
	}

	return newLoanStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewLoanStoreFromSQLDB creates a new LoanStore using a sql.DB with optional configuration.
func NewLoanStoreFromSQLDB(db *sql.DB, options ...Option) (*LoanStore, error) {
	if db == nil {
		return nil, lending.ErrNilDatabaseConnection
	}

	return newLoanStore(adapters.NewSQLAdapter(db), options...)
}

// NewLoanStoreFromSQLX creates a new LoanStore using a sqlx.DB with optional configuration.
func NewLoanStoreFromSQLX(db *sqlx.DB, options ...Option) (*LoanStore, error) {
	if db == nil {
		return nil, lending.ErrNilDatabaseConnection
	}

	return newLoanStore(adapters.NewSQLXAdapter(db), options...)
}

func newLoanStore(db adapters.DBAdapter, options ...Option) (*LoanStore, error) {
	store := &LoanStore{
		db:           db,
		loansTable:   defaultLoansTableName,
		booksTable:   defaultBooksTableName,
		patronsTable: defaultPatronsTableName,
	}

	for _, option := range options {
		if err := option(store); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// AllLoans returns every loan ordered by loan id.
func (s *LoanStore) AllLoans(ctx context.Context) ([]lending.Loan, error) {
	return s.queryLoans(ctx, operationAllLoans)
}

// LoansBetween returns the loans lent within [from, to) ordered by loan id.
func (s *LoanStore) LoansBetween(ctx context.Context, from, to time.Time) ([]lending.Loan, error) {
	return s.queryLoans(
		ctx,
		operationLoansBetween,
		goqu.I(qualified(aliasLoan, colLoanDate)).Gte(from.UTC()),
		goqu.I(qualified(aliasLoan, colLoanDate)).Lt(to.UTC()),
	)
}

// LoansForBook returns all loans of one book ordered by loan id.
func (s *LoanStore) LoansForBook(ctx context.Context, bookID int) ([]lending.Loan, error) {
	return s.queryLoans(ctx, operationLoansForBook, goqu.I(qualified(aliasLoan, colBookID)).Eq(bookID))
}

// LoansForPatron returns all loans of one patron ordered by loan id.
func (s *LoanStore) LoansForPatron(ctx context.Context, patronID int) ([]lending.Loan, error) {
	return s.queryLoans(ctx, operationLoansForPatron, goqu.I(qualified(aliasLoan, colPatronID)).Eq(patronID))
}

// CoBorrowCounts returns, for every other book, how many loans it has from patrons who also
// borrowed the target book. Rows are ordered by descending count, then by book id.
func (s *LoanStore) CoBorrowCounts(ctx context.Context, bookID int) ([]lending.CoBorrowCount, error) {
	observer, ctx := s.startObservation(ctx, operationCoBorrowCounts)

	sqlQuery, _, buildErr := s.buildCoBorrowQuery(bookID).ToSQL()
	if buildErr != nil {
		s.logError(ctx, logMsgBuildSelectQueryFailed, buildErr)
		observer.finishError(errorTypeBuildQuery)
		return nil, buildErr
	}

	rows, queryErr := s.executeQuery(ctx, operationCoBorrowCounts, sqlQuery)
	if queryErr != nil {
		observer.finishError(errorTypeDatabaseQuery)
		return nil, errors.Join(lending.ErrQueryingCoBorrowsFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	counts, scanErr := scanAll(rows, scanCoBorrowRow)
	if scanErr != nil {
		s.logError(ctx, logMsgScanRowFailed, scanErr)
		observer.finishError(errorTypeRowScan)
		return nil, errors.Join(lending.ErrScanningLoanRowFailed, scanErr)
	}

	observer.finishSuccess(len(counts))

	return counts, nil
}

// queryLoans runs the loan select with the given conditions and materializes the rows.
func (s *LoanStore) queryLoans(ctx context.Context, operation string, conditions ...exp.Expression) ([]lending.Loan, error) {
	observer, ctx := s.startObservation(ctx, operation)

	sqlQuery, _, buildErr := s.buildLoansQuery(conditions...).ToSQL()
	if buildErr != nil {
		s.logError(ctx, logMsgBuildSelectQueryFailed, buildErr)
		observer.finishError(errorTypeBuildQuery)
		return nil, buildErr
	}

	rows, queryErr := s.executeQuery(ctx, operation, sqlQuery)
	if queryErr != nil {
		observer.finishError(errorTypeDatabaseQuery)
		return nil, errors.Join(lending.ErrQueryingLoansFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	loans, scanErr := scanAll(rows, scanLoanRow)
	if scanErr != nil {
		s.logError(ctx, logMsgScanRowFailed, scanErr)
		observer.finishError(errorTypeRowScan)
		return nil, errors.Join(lending.ErrScanningLoanRowFailed, scanErr)
	}

	observer.finishSuccess(len(loans))

	return loans, nil
}

// executeQuery executes the SQL query and logs it with its duration.
func (s *LoanStore) executeQuery(ctx context.Context, operation, sqlQuery string) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, operation, time.Since(start))

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, queryErr
	}

	return rows, nil
}

// closeRows safely closes database rows and logs any errors.
func (s *LoanStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func (s *LoanStore) buildLoansQuery(conditions ...exp.Expression) *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(goqu.T(s.loansTable).As(aliasLoan)).
		LeftJoin(
			goqu.T(s.booksTable).As(aliasBook),
			goqu.On(goqu.I(qualified(aliasBook, colID)).Eq(goqu.I(qualified(aliasLoan, colBookID)))),
		).
		LeftJoin(
			goqu.T(s.patronsTable).As(aliasPatron),
			goqu.On(goqu.I(qualified(aliasPatron, colID)).Eq(goqu.I(qualified(aliasLoan, colPatronID)))),
		).
		Select(loanColumns()...).
		Where(conditions...).
		Order(goqu.I(qualified(aliasLoan, colID)).Asc())
}

func (s *LoanStore) buildCoBorrowQuery(bookID int) *goqu.SelectDataset {
	dialect := goqu.Dialect(dialectPostgres)

	patronsOfTarget := dialect.
		From(s.loansTable).
		Select(goqu.C(colPatronID)).
		Where(goqu.C(colBookID).Eq(bookID))

	bookCols := bookColumns()
	groupBy := make([]any, 0, len(bookCols))
	groupBy = append(groupBy, bookCols...)

	selectCols := make([]any, 0, len(bookCols)+1)
	selectCols = append(selectCols, bookCols...)
	selectCols = append(selectCols, goqu.COUNT(goqu.Star()).As(aliasCoBorrowCount))

	return dialect.
		From(goqu.T(s.loansTable).As(aliasLoan)).
		Join(
			goqu.T(s.booksTable).As(aliasBook),
			goqu.On(goqu.I(qualified(aliasBook, colID)).Eq(goqu.I(qualified(aliasLoan, colBookID)))),
		).
		Select(selectCols...).
		Where(
			goqu.I(qualified(aliasLoan, colPatronID)).In(patronsOfTarget),
			goqu.I(qualified(aliasLoan, colBookID)).Neq(bookID),
		).
		GroupBy(groupBy...).
		Order(goqu.I(aliasCoBorrowCount).Desc(), goqu.I(qualified(aliasBook, colID)).Asc())
}

func loanColumns() []any {
	cols := []any{
		goqu.I(qualified(aliasLoan, colID)),
		goqu.I(qualified(aliasLoan, colLoanDate)),
		goqu.I(qualified(aliasLoan, colDueDate)),
		goqu.I(qualified(aliasLoan, colReturnDate)),
		goqu.I(qualified(aliasLoan, colIsReturned)),
	}
	cols = append(cols, bookColumns()...)

	return append(cols,
		goqu.I(qualified(aliasPatron, colID)),
		goqu.I(qualified(aliasPatron, colFirstName)),
		goqu.I(qualified(aliasPatron, colLastName)),
		goqu.I(qualified(aliasPatron, colEmail)),
		goqu.I(qualified(aliasPatron, colPhoneNumber)),
		goqu.I(qualified(aliasPatron, colMembershipDate)),
		goqu.I(qualified(aliasPatron, colIsActive)),
	)
}

func bookColumns() []any {
	return []any{
		goqu.I(qualified(aliasBook, colID)),
		goqu.I(qualified(aliasBook, colTitle)),
		goqu.I(qualified(aliasBook, colAuthorID)),
		goqu.I(qualified(aliasBook, colISBN)),
		goqu.I(qualified(aliasBook, colPublicationYear)),
		goqu.I(qualified(aliasBook, colNumberOfPages)),
		goqu.I(qualified(aliasBook, colIsAvailable)),
	}
}

func qualified(alias, column string) string {
	return alias + "." + column
}
