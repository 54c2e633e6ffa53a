package repository

import (
	"context"
	"database/sql"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookbuster/lending/internal/errs"
	"github.com/Astemirdum/bookbuster/lending/internal/model"
	"github.com/Astemirdum/bookbuster/pkg/sqldb"
)

type Repository interface {
	Ping(ctx context.Context) error

	AddBook(ctx context.Context, req model.BookRequest) (int64, error)
	UpdateBook(ctx context.Context, id int64, req model.BookRequest) error
	DeleteBook(ctx context.Context, id int64) error
	GetBook(ctx context.Context, id int64) (model.Book, error)
	ListBooks(ctx context.Context, status model.RentalStatus, page, size int) (model.ListBooks, error)

	AddMember(ctx context.Context, req model.MemberRequest) (int64, error)
	UpdateMember(ctx context.Context, id int64, req model.MemberRequest) error
	DeleteMember(ctx context.Context, id int64) error
	ListMembers(ctx context.Context) ([]model.Member, error)

	AddStaff(ctx context.Context, req model.StaffRequest) (int64, error)
	UpdateStaff(ctx context.Context, id int64, req model.StaffRequest) error
	DeleteStaff(ctx context.Context, id int64) error
	ListStaff(ctx context.Context) ([]model.Staff, error)

	AddLoan(ctx context.Context, req model.LoanRequest) (int64, error)
	UpdateLoan(ctx context.Context, id int64, req model.LoanRequest) (model.Loan, error)
	ReturnLoan(ctx context.Context, id int64, returnDate model.Date) (model.Loan, error)
	DeleteLoan(ctx context.Context, id int64) (model.Loan, error)
	GetLoan(ctx context.Context, id int64) (model.Loan, error)
	ListLoans(ctx context.Context, page, size int) (model.ListLoans, error)
	ListFineEligibleLoans(ctx context.Context) ([]model.Loan, error)

	AddFine(ctx context.Context, loanID int64) (int64, error)
	DeleteFine(ctx context.Context, id int64) (int64, error)
	ListFines(ctx context.Context) ([]model.Fine, error)

	AddPayment(ctx context.Context, req model.PaymentRequest) (int64, error)
	DeletePayment(ctx context.Context, id int64) error
	ListPayments(ctx context.Context) ([]model.Payment, error)

	LoanFineDetails(ctx context.Context) ([]model.LoanFineDetail, error)
	MemberBalances(ctx context.Context) ([]model.MemberBalance, error)
}

type repository struct {
	db      *sqlx.DB
	dialect sqldb.Dialect
	qb      sq.StatementBuilderType
	log     *zap.Logger
}

func NewRepository(db *sqlx.DB, dialect sqldb.Dialect, log *zap.Logger) (*repository, error) {
	if !dialect.Valid() {
		return nil, errors.Errorf("unsupported dialect %q", dialect)
	}
	return &repository{
		db:      db,
		dialect: dialect,
		qb:      sq.StatementBuilder.PlaceholderFormat(dialect.Placeholder()),
		log:     log.Named("repo"),
	}, nil
}

const (
	provincesTableName = `provinces`
	citiesTableName    = `cities`
	addressesTableName = `addresses`
	genresTableName    = `genres`
	rolesTableName     = `roles`
	booksTableName     = `books`
	bookGenreTableName = `book_genre`
	membersTableName   = `members`
	staffTableName     = `staff`
	staffRoleTableName = `staff_role`
	loansTableName     = `loans`
	finesTableName     = `fines`
	paymentsTableName  = `payments`

	loanFineDetailsViewName = `loan_fine_details`
	memberBalancesViewName  = `member_balances`
)

func (r *repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *repository) inTx(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	return RunInTx(ctx, r.db, nil, fn)
}

// insertID runs the insert and returns the generated id of the new row.
func (r *repository) insertID(ctx context.Context, tx DBTX, ib sq.InsertBuilder) (int64, error) {
	if r.dialect.Returning() {
		query, args, err := ib.Suffix("RETURNING id").ToSql()
		if err != nil {
			return 0, err
		}
		var id int64
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			r.log.Debug("insertID", zap.String("q", query), zap.Any("args", args), zap.Error(err))
			return 0, err
		}
		return id, nil
	}

	query, args, err := ib.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.Debug("insertID", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return 0, err
	}
	return res.LastInsertId()
}

func (r *repository) exec(ctx context.Context, tx DBTX, b sq.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) get(ctx context.Context, q sqlx.QueryerContext, dest any, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	if err := sqlx.GetContext(ctx, q, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *repository) selectAll(ctx context.Context, q sqlx.QueryerContext, dest any, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	r.log.Debug("select", zap.String("query", query), zap.Any("args", args))
	return sqlx.SelectContext(ctx, q, dest, query, args...)
}

func (r *repository) count(ctx context.Context, q sqlx.QueryerContext, table string, where sq.Sqlizer) (int, error) {
	var n int
	err := r.get(ctx, q, &n, r.qb.Select("count(*)").From(table).Where(where))
	return n, err
}

// findOrCreate resolves the row of a lookup table whose natural key
// columns equal key, inserting it when absent, and returns its id.
// It must run in the transaction of the dependent write.
func (r *repository) findOrCreate(ctx context.Context, tx DBTX, table string, key sq.Eq) (int64, error) {
	var id int64
	err := r.get(ctx, tx, &id, r.qb.Select("id").From(table).Where(key))
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return 0, errors.Wrapf(err, "find %s", table)
	}

	cols := make([]string, 0, len(key))
	for col := range key {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	vals := make([]any, 0, len(cols))
	for _, col := range cols {
		vals = append(vals, key[col])
	}

	id, err = r.insertID(ctx, tx, r.qb.Insert(table).Columns(cols...).Values(vals...))
	if err != nil {
		return 0, errors.Wrapf(err, "create %s", table)
	}
	return id, nil
}

// forUpdate locks the selected rows until the end of the transaction
// where the dialect supports it.
func (r *repository) forUpdate(b sq.SelectBuilder) sq.SelectBuilder {
	if r.dialect.RowLock() {
		return b.Suffix("FOR UPDATE")
	}
	return b
}

// translate maps a store constraint rejection to onFK (when given) or a
// generic constraint error; other errors are wrapped with msg.
func translate(err error, onFK error, msg string) error {
	switch {
	case err == nil:
		return nil
	case isForeignKeyViolation(err):
		if onFK != nil {
			return onFK
		}
		return errs.Constraint(errors.Wrap(err, msg))
	case isUniqueViolation(err):
		return errs.Constraint(errors.Wrap(err, msg))
	}
	return errors.Wrap(err, msg)
}

func paginate(b sq.SelectBuilder, page, size int) sq.SelectBuilder {
	if page != 0 && size != 0 {
		b = b.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}
	return b
}

func normalizeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok || n == "" {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
