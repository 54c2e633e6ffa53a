package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookbuster/lending/internal/errs"
	"github.com/Astemirdum/bookbuster/lending/internal/model"
)

func (r *repository) loanSelect() sq.SelectBuilder {
	return r.qb.Select(
		"l.id", "l.book_id", "l.member_id", "l.staff_id",
		"l.checkout_date", "l.due_date", "l.return_date",
		"b.title as book_title",
		"m.first_name as member_first_name", "m.last_name as member_last_name",
		"s.first_name as staff_first_name", "s.last_name as staff_last_name").
		From(loansTableName + " l").
		Join(booksTableName + " b on b.id = l.book_id").
		Join(membersTableName + " m on m.id = l.member_id").
		Join(staffTableName + " s on s.id = l.staff_id")
}

func (r *repository) AddLoan(ctx context.Context, req model.LoanRequest) (int64, error) {
	var loanID int64
	err := r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		status, err := r.lockBookStatus(ctx, tx, req.BookID)
		if err != nil {
			return err
		}
		if status != model.StatusAvailable {
			return errs.ErrBookUnavailable
		}
		id, err := r.insertID(ctx, tx, r.qb.Insert(loansTableName).
			Columns("book_id", "member_id", "staff_id", "checkout_date", "due_date", "return_date").
			Values(req.BookID, req.MemberID, req.StaffID, req.CheckoutDate, req.DueDate, req.ReturnDate))
		if err != nil {
			return translate(err, errs.ErrNotFound, "insert loan")
		}
		// a loan recorded with its return date never holds the book
		if req.ReturnDate == nil {
			if err := r.setBookStatus(ctx, tx, req.BookID, model.StatusRented); err != nil {
				return err
			}
		}
		loanID = id
		return nil
	})
	return loanID, err
}

// UpdateLoan rewrites the loan and moves rental status between books so
// that a book is Rented exactly while an open loan references it. It
// returns the loan as it was before the update.
func (r *repository) UpdateLoan(ctx context.Context, id int64, req model.LoanRequest) (model.Loan, error) {
	var prev model.Loan
	err := r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		cur, err := r.lockLoan(ctx, tx, id)
		if err != nil {
			return err
		}
		prev = cur
		return r.updateLoan(ctx, tx, cur, req)
	})
	if err != nil {
		return model.Loan{}, err
	}
	return prev, nil
}

// ReturnLoan sets the return date of the locked loan, keeping its other
// fields, and returns the loan as updated.
func (r *repository) ReturnLoan(ctx context.Context, id int64, returnDate model.Date) (model.Loan, error) {
	var updated model.Loan
	err := r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		cur, err := r.lockLoan(ctx, tx, id)
		if err != nil {
			return err
		}
		if returnDate.Before(cur.CheckoutDate.Time) {
			return errs.Validationf("return date %s is before checkout date %s", returnDate, cur.CheckoutDate)
		}
		req := model.LoanRequest{
			BookID:       cur.BookID,
			MemberID:     cur.MemberID,
			StaffID:      cur.StaffID,
			CheckoutDate: cur.CheckoutDate,
			DueDate:      cur.DueDate,
			ReturnDate:   &returnDate,
		}
		if err := r.updateLoan(ctx, tx, cur, req); err != nil {
			return err
		}
		updated = cur
		updated.ReturnDate = &returnDate
		return nil
	})
	if err != nil {
		return model.Loan{}, err
	}
	return updated, nil
}

// updateLoan writes req over the locked loan cur. A fined loan must stay
// on its book and returned after its due date.
func (r *repository) updateLoan(ctx context.Context, tx *sqlx.Tx, cur model.Loan, req model.LoanRequest) error {
	fined, err := r.count(ctx, tx, finesTableName, sq.Eq{"loan_id": cur.ID})
	if err != nil {
		return err
	}
	if fined > 0 && (req.BookID != cur.BookID || req.ReturnDate == nil || !req.ReturnDate.After(req.DueDate.Time)) {
		return errs.ErrLoanFined
	}
	active := req.ReturnDate == nil

	if req.BookID != cur.BookID {
		if cur.Active() {
			if err := r.setBookStatus(ctx, tx, cur.BookID, model.StatusAvailable); err != nil {
				return err
			}
		}
		status, err := r.lockBookStatus(ctx, tx, req.BookID)
		if err != nil {
			return err
		}
		if status != model.StatusAvailable {
			return errs.ErrBookUnavailable
		}
		if active {
			if err := r.setBookStatus(ctx, tx, req.BookID, model.StatusRented); err != nil {
				return err
			}
		}
	} else {
		switch {
		case cur.Active() && !active:
			if err := r.setBookStatus(ctx, tx, cur.BookID, model.StatusAvailable); err != nil {
				return err
			}
		case !cur.Active() && active:
			status, err := r.lockBookStatus(ctx, tx, cur.BookID)
			if err != nil {
				return err
			}
			if status != model.StatusAvailable {
				return errs.ErrBookUnavailable
			}
			if err := r.setBookStatus(ctx, tx, cur.BookID, model.StatusRented); err != nil {
				return err
			}
		}
	}

	n, err := r.exec(ctx, tx, r.qb.Update(loansTableName).
		Set("book_id", req.BookID).
		Set("member_id", req.MemberID).
		Set("staff_id", req.StaffID).
		Set("checkout_date", req.CheckoutDate).
		Set("due_date", req.DueDate).
		Set("return_date", req.ReturnDate).
		Where(sq.Eq{"id": cur.ID}))
	if err != nil {
		return translate(err, errs.ErrNotFound, "update loan")
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) lockLoan(ctx context.Context, tx DBTX, id int64) (model.Loan, error) {
	var loan model.Loan
	err := r.get(ctx, tx, &loan, r.forUpdate(r.qb.Select(
		"id", "book_id", "member_id", "staff_id", "checkout_date", "due_date", "return_date").
		From(loansTableName).
		Where(sq.Eq{"id": id})))
	return loan, err
}

// DeleteLoan removes a loan without a fine and returns the deleted row.
func (r *repository) DeleteLoan(ctx context.Context, id int64) (model.Loan, error) {
	var deleted model.Loan
	err := r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		loan, err := r.lockLoan(ctx, tx, id)
		if err != nil {
			return err
		}
		n, err := r.exec(ctx, tx, r.qb.Delete(loansTableName).Where(sq.Eq{"id": id}))
		if err != nil {
			return translate(err, errs.ErrHasDependentFine, "delete loan")
		}
		if n == 0 {
			return errs.ErrNotFound
		}
		if loan.Active() {
			if err := r.setBookStatus(ctx, tx, loan.BookID, model.StatusAvailable); err != nil {
				return err
			}
		}
		deleted = loan
		return nil
	})
	if err != nil {
		return model.Loan{}, err
	}
	return deleted, nil
}

func (r *repository) GetLoan(ctx context.Context, id int64) (model.Loan, error) {
	var loan model.Loan
	if err := r.get(ctx, r.db, &loan, r.loanSelect().Where(sq.Eq{"l.id": id})); err != nil {
		return model.Loan{}, err
	}
	return loan, nil
}

func (r *repository) ListLoans(ctx context.Context, page, size int) (model.ListLoans, error) {
	var loans []model.Loan
	if err := r.selectAll(ctx, r.db, &loans, paginate(r.loanSelect().OrderBy("l.id"), page, size)); err != nil {
		r.log.Error("ListLoans", zap.Error(err))
		return model.ListLoans{}, err
	}
	return model.ListLoans{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(loans),
		},
		Items: loans,
	}, nil
}

// ListFineEligibleLoans lists returned loans that have no fine yet.
func (r *repository) ListFineEligibleLoans(ctx context.Context) ([]model.Loan, error) {
	var loans []model.Loan
	err := r.selectAll(ctx, r.db, &loans, r.loanSelect().
		LeftJoin(finesTableName+" f on f.loan_id = l.id").
		Where(sq.And{
			sq.NotEq{"l.return_date": nil},
			sq.Eq{"f.id": nil},
		}).
		OrderBy("l.id"))
	return loans, err
}
