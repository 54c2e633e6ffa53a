package service

import (
	"context"
	"strings"

	"github.com/Astemirdum/bookbuster/lending/internal/errs"
	"github.com/Astemirdum/bookbuster/lending/internal/model"
)

func (s *Service) checkLoan(req model.LoanRequest) error {
	if err := s.validate(req); err != nil {
		return err
	}
	if req.CheckoutDate.IsZero() || req.DueDate.IsZero() {
		return errs.Validationf("checkout and due dates are required")
	}
	if req.DueDate.Before(req.CheckoutDate.Time) {
		return errs.Validationf("due date %s is before checkout date %s", req.DueDate, req.CheckoutDate)
	}
	if req.ReturnDate != nil && req.ReturnDate.Before(req.CheckoutDate.Time) {
		return errs.Validationf("return date %s is before checkout date %s", req.ReturnDate, req.CheckoutDate)
	}
	return nil
}

// AddLoan lends a book. The book must be Available when the transaction
// runs; it becomes Rented unless the loan is recorded already returned.
func (s *Service) AddLoan(ctx context.Context, req model.LoanRequest) (int64, error) {
	if req.ReturnDate != nil && req.ReturnDate.IsZero() {
		req.ReturnDate = nil
	}
	if err := s.checkLoan(req); err != nil {
		return 0, err
	}
	id, err := s.repo.AddLoan(ctx, req)
	if err != nil {
		return 0, err
	}

	e := s.newEvent(LoanCreated)
	e.LoanID, e.BookID, e.MemberID = id, req.BookID, req.MemberID
	e.Returned = req.ReturnDate != nil
	s.publish(ctx, e)
	return id, nil
}

func (s *Service) UpdateLoan(ctx context.Context, id int64, req model.LoanRequest) error {
	if err := checkID("loan id", id); err != nil {
		return err
	}
	if req.ReturnDate != nil && req.ReturnDate.IsZero() {
		req.ReturnDate = nil
	}
	if err := s.checkLoan(req); err != nil {
		return err
	}
	if _, err := s.repo.UpdateLoan(ctx, id, req); err != nil {
		return err
	}

	e := s.newEvent(LoanUpdated)
	e.LoanID, e.BookID, e.MemberID = id, req.BookID, req.MemberID
	e.Returned = req.ReturnDate != nil
	s.publish(ctx, e)
	return nil
}

// ReturnLoan closes a loan on the given date, keeping its other fields.
func (s *Service) ReturnLoan(ctx context.Context, id int64, returnDate model.Date) error {
	if err := checkID("loan id", id); err != nil {
		return err
	}
	if returnDate.IsZero() {
		return errs.Validationf("return date is required")
	}
	loan, err := s.repo.ReturnLoan(ctx, id, returnDate)
	if err != nil {
		return err
	}

	e := s.newEvent(LoanUpdated)
	e.LoanID, e.BookID, e.MemberID = id, loan.BookID, loan.MemberID
	e.Returned = true
	s.publish(ctx, e)
	return nil
}

func (s *Service) DeleteLoan(ctx context.Context, id int64) error {
	if err := checkID("loan id", id); err != nil {
		return err
	}
	loan, err := s.repo.DeleteLoan(ctx, id)
	if err != nil {
		return err
	}

	e := s.newEvent(LoanDeleted)
	e.LoanID, e.BookID, e.MemberID = id, loan.BookID, loan.MemberID
	s.publish(ctx, e)
	return nil
}

func (s *Service) GetLoan(ctx context.Context, id int64) (model.Loan, error) {
	if err := checkID("loan id", id); err != nil {
		return model.Loan{}, err
	}
	return s.repo.GetLoan(ctx, id)
}

func (s *Service) ListLoans(ctx context.Context, page, size int) (model.ListLoans, error) {
	if err := checkPaging(page, size); err != nil {
		return model.ListLoans{}, err
	}
	return s.repo.ListLoans(ctx, page, size)
}

func (s *Service) ListFineEligibleLoans(ctx context.Context) ([]model.Loan, error) {
	return s.repo.ListFineEligibleLoans(ctx)
}

func (s *Service) AddFine(ctx context.Context, loanID int64) (int64, error) {
	if err := checkID("loan id", loanID); err != nil {
		return 0, err
	}
	id, err := s.repo.AddFine(ctx, loanID)
	if err != nil {
		return 0, err
	}

	e := s.newEvent(FineCreated)
	e.LoanID, e.FineID = loanID, id
	s.publish(ctx, e)
	return id, nil
}

// DeleteFine removes the fine and every payment made against it.
func (s *Service) DeleteFine(ctx context.Context, id int64) error {
	if err := checkID("fine id", id); err != nil {
		return err
	}
	loanID, err := s.repo.DeleteFine(ctx, id)
	if err != nil {
		return err
	}

	e := s.newEvent(FineDeleted)
	e.LoanID, e.FineID = loanID, id
	s.publish(ctx, e)
	return nil
}

func (s *Service) ListFines(ctx context.Context) ([]model.Fine, error) {
	return s.repo.ListFines(ctx)
}

func (s *Service) AddPayment(ctx context.Context, req model.PaymentRequest) (int64, error) {
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if err := s.validate(req); err != nil {
		return 0, err
	}
	if req.PaymentDate.IsZero() {
		return 0, errs.Validationf("payment date is required")
	}
	id, err := s.repo.AddPayment(ctx, req)
	if err != nil {
		return 0, err
	}

	e := s.newEvent(PaymentCreated)
	e.FineID, e.PaymentID = req.FineID, id
	s.publish(ctx, e)
	return id, nil
}

func (s *Service) DeletePayment(ctx context.Context, id int64) error {
	if err := checkID("payment id", id); err != nil {
		return err
	}
	if err := s.repo.DeletePayment(ctx, id); err != nil {
		return err
	}

	e := s.newEvent(PaymentDeleted)
	e.PaymentID = id
	s.publish(ctx, e)
	return nil
}

func (s *Service) ListPayments(ctx context.Context) ([]model.Payment, error) {
	return s.repo.ListPayments(ctx)
}

func (s *Service) LoanFineDetails(ctx context.Context) ([]model.LoanFineDetail, error) {
	return s.repo.LoanFineDetails(ctx)
}

func (s *Service) MemberBalances(ctx context.Context) ([]model.MemberBalance, error) {
	return s.repo.MemberBalances(ctx)
}
