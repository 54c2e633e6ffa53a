package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/Astemirdum/bookbuster/lending/internal/errs"
	"github.com/Astemirdum/bookbuster/lending/internal/model"
)

func (r *repository) AddPayment(ctx context.Context, req model.PaymentRequest) (int64, error) {
	var paymentID int64
	err := r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		fines, err := r.count(ctx, tx, finesTableName, sq.Eq{"id": req.FineID})
		if err != nil {
			return err
		}
		if fines == 0 {
			return errs.ErrNotFound
		}
		id, err := r.insertID(ctx, tx, r.qb.Insert(paymentsTableName).
			Columns("fine_id", "amount_cents", "payment_date", "payment_method").
			Values(req.FineID, req.AmountCents, req.PaymentDate, req.PaymentMethod))
		if err != nil {
			return translate(err, errs.ErrNotFound, "insert payment")
		}
		paymentID = id
		return nil
	})
	return paymentID, err
}

func (r *repository) DeletePayment(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		n, err := r.exec(ctx, tx, r.qb.Delete(paymentsTableName).Where(sq.Eq{"id": id}))
		if err != nil {
			return translate(err, nil, "delete payment")
		}
		if n == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
}

func (r *repository) ListPayments(ctx context.Context) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.selectAll(ctx, r.db, &payments, r.qb.Select(
		"p.id", "p.fine_id", "p.amount_cents", "p.payment_date", "p.payment_method", "f.loan_id").
		From(paymentsTableName+" p").
		Join(finesTableName+" f on f.id = p.fine_id").
		OrderBy("p.id"))
	return payments, err
}
