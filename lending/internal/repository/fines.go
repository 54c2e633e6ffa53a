package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Astemirdum/bookbuster/lending/internal/errs"
	"github.com/Astemirdum/bookbuster/lending/internal/model"
)

// AddFine fines a loan that was returned after its due date.
func (r *repository) AddFine(ctx context.Context, loanID int64) (int64, error) {
	var fineID int64
	err := r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		fined, err := r.count(ctx, tx, finesTableName, sq.Eq{"loan_id": loanID})
		if err != nil {
			return err
		}
		if fined > 0 {
			return errs.ErrAlreadyFined
		}
		loan, err := r.lockLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if loan.Active() {
			return errs.ErrNotYetReturned
		}
		if !loan.ReturnDate.After(loan.DueDate.Time) {
			return errs.ErrReturnedOnTime
		}
		id, err := r.insertID(ctx, tx, r.qb.Insert(finesTableName).
			Columns("loan_id").
			Values(loanID))
		if err != nil {
			if isUniqueViolation(err) {
				return errs.ErrAlreadyFined
			}
			return translate(err, errs.ErrNotFound, "insert fine")
		}
		fineID = id
		return nil
	})
	return fineID, err
}

// DeleteFine removes the fine together with its payments and returns the
// id of the fined loan.
func (r *repository) DeleteFine(ctx context.Context, id int64) (int64, error) {
	var loanID int64
	err := r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := r.get(ctx, tx, &loanID, r.forUpdate(r.qb.Select("loan_id").
			From(finesTableName).
			Where(sq.Eq{"id": id}))); err != nil {
			return err
		}
		if _, err := r.exec(ctx, tx, r.qb.Delete(paymentsTableName).Where(sq.Eq{"fine_id": id})); err != nil {
			return errors.Wrap(err, "delete fine payments")
		}
		n, err := r.exec(ctx, tx, r.qb.Delete(finesTableName).Where(sq.Eq{"id": id}))
		if err != nil {
			return translate(err, nil, "delete fine")
		}
		if n == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return loanID, nil
}

func (r *repository) ListFines(ctx context.Context) ([]model.Fine, error) {
	var fines []model.Fine
	err := r.selectAll(ctx, r.db, &fines, r.qb.Select(
		"f.id", "f.loan_id", "b.title as book_title",
		"m.first_name as member_first_name", "m.last_name as member_last_name").
		From(finesTableName+" f").
		Join(loansTableName+" l on l.id = f.loan_id").
		Join(booksTableName+" b on b.id = l.book_id").
		Join(membersTableName+" m on m.id = l.member_id").
		OrderBy("f.id"))
	return fines, err
}
