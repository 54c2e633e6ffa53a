package handler

import (
	"context"

	"github.com/Astemirdum/bookbuster/lending/internal/model"
	"github.com/Astemirdum/bookbuster/lending/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LendingService interface {
	Health(ctx context.Context) error

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
	UpdateLoan(ctx context.Context, id int64, req model.LoanRequest) error
	ReturnLoan(ctx context.Context, id int64, returnDate model.Date) error
	DeleteLoan(ctx context.Context, id int64) error
	GetLoan(ctx context.Context, id int64) (model.Loan, error)
	ListLoans(ctx context.Context, page, size int) (model.ListLoans, error)
	ListFineEligibleLoans(ctx context.Context) ([]model.Loan, error)

	AddFine(ctx context.Context, loanID int64) (int64, error)
	DeleteFine(ctx context.Context, id int64) error
	ListFines(ctx context.Context) ([]model.Fine, error)

	AddPayment(ctx context.Context, req model.PaymentRequest) (int64, error)
	DeletePayment(ctx context.Context, id int64) error
	ListPayments(ctx context.Context) ([]model.Payment, error)

	LoanFineDetails(ctx context.Context) ([]model.LoanFineDetail, error)
	MemberBalances(ctx context.Context) ([]model.MemberBalance, error)
}

var _ LendingService = (*service.Service)(nil)
