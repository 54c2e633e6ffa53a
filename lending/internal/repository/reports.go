package repository

import (
	"context"

	"github.com/Astemirdum/bookbuster/lending/internal/model"
)

func (r *repository) LoanFineDetails(ctx context.Context) ([]model.LoanFineDetail, error) {
	var details []model.LoanFineDetail
	err := r.selectAll(ctx, r.db, &details, r.qb.Select(
		"loan_id", "book_title", "member_first_name", "member_last_name",
		"checkout_date", "due_date", "return_date", "fine_id", "total_paid_cents").
		From(loanFineDetailsViewName).
		OrderBy("loan_id"))
	return details, err
}

func (r *repository) MemberBalances(ctx context.Context) ([]model.MemberBalance, error) {
	var balances []model.MemberBalance
	err := r.selectAll(ctx, r.db, &balances, r.qb.Select(
		"member_id", "first_name", "last_name", "fines_count", "total_paid_cents").
		From(memberBalancesViewName).
		OrderBy("member_id"))
	return balances, err
}
