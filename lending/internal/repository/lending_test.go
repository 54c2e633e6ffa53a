package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/bookbuster/lending/internal/errs"
	"github.com/Astemirdum/bookbuster/lending/internal/model"
)

func TestAddLoan_RentsBook(t *testing.T) {
	repo, _ := tempRepo(t)
	f := seed(t, repo)
	ctx := context.Background()

	id, err := repo.AddLoan(ctx, loanRequest(f, f.bookID))
	require.NoError(t, err)
	assert.Equal(t, model.StatusRented, bookStatus(t, repo, f.bookID))

	loan, err := repo.GetLoan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, f.bookID, loan.BookID)
	assert.Equal(t, f.memberID, loan.MemberID)
	assert.Equal(t, f.staffID, loan.StaffID)
	assert.Equal(t, "2024-01-01", loan.CheckoutDate.String())
	assert.Equal(t, "2024-01-15", loan.DueDate.String())
	assert.Nil(t, loan.ReturnDate)
	assert.Equal(t, "Dune", loan.BookTitle)
	assert.Equal(t, "Jane", loan.MemberFirstName)
}

func TestAddLoan_BookUnavailable(t *testing.T) {
	repo, db := tempRepo(t)
	f := seed(t, repo)
	ctx := context.Background()

	_, err := repo.AddLoan(ctx, loanRequest(f, f.bookID))
	require.NoError(t, err)

	_, err = repo.AddLoan(ctx, loanRequest(f, f.bookID))
	require.ErrorIs(t, err, errs.ErrBookUnavailable)
	assert.Equal(t, 1, tableCount(t, db, loansTableName))
	assert.Equal(t, model.StatusRented, bookStatus(t, repo, f.bookID))
}

func TestAddLoan_Errors(t *testing.T) {
	repo, db := tempRepo(t)
	f := seed(t, repo)
	ctx := context.Background()

	_, err := repo.AddLoan(ctx, loanRequest(f, 999))
	require.ErrorIs(t, err, errs.ErrNotFound)

	req := loanRequest(f, f.bookID)
	req.MemberID = 999
	_, err = repo.AddLoan(ctx, req)
	require.ErrorIs(t, err, errs.ErrNotFound)

	assert.Equal(t, 0, tableCount(t, db, loansTableName))
	assert.Equal(t, model.StatusAvailable, bookStatus(t, repo, f.bookID))
}

func TestAddLoan_AlreadyReturned(t *testing.T) {
	repo, _ := tempRepo(t)
	f := seed(t, repo)

	req := loanRequest(f, f.bookID)
	req.ReturnDate = datePtr(model.NewDate(2024, 1, 10))
	_, err := repo.AddLoan(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAvailable, bookStatus(t, repo, f.bookID))
}

func TestUpdateLoan_StatusTransitions(t *testing.T) {
	repo, _ := tempRepo(t)
	f := seed(t, repo)
	ctx := context.Background()

	otherBook, err := repo.AddBook(ctx, model.BookRequest{
		Title: "Emma", Author: "Jane Austen", PublishingYear: 1815, Language: "English",
		Genres: []string{"Romance"},
	})
	require.NoError(t, err)

	id, err := repo.AddLoan(ctx, loanRequest(f, f.bookID))
	require.NoError(t, err)

	// move the open loan to another book
	prev, err := repo.UpdateLoan(ctx, id, loanRequest(f, otherBook))
	require.NoError(t, err)
	assert.Equal(t, f.bookID, prev.BookID)
	assert.Equal(t, model.StatusAvailable, bookStatus(t, repo, f.bookID))
	assert.Equal(t, model.StatusRented, bookStatus(t, repo, otherBook))

	// return it
	req := loanRequest(f, otherBook)
	req.ReturnDate = datePtr(model.NewDate(2024, 1, 20))
	_, err = repo.UpdateLoan(ctx, id, req)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAvailable, bookStatus(t, repo, otherBook))

	// reopen it
	_, err = repo.UpdateLoan(ctx, id, loanRequest(f, otherBook))
	require.NoError(t, err)
	assert.Equal(t, model.StatusRented, bookStatus(t, repo, otherBook))
}

func TestUpdateLoan_TargetBookRented(t *testing.T) {
	repo, _ := tempRepo(t)
	f := seed(t, repo)
	ctx := context.Background()

	otherBook, err := repo.AddBook(ctx, model.BookRequest{
		Title: "Emma", Author: "Jane Austen", PublishingYear: 1815, Language: "English",
		Genres: []string{"Romance"},
	})
	require.NoError(t, err)

	first, err := repo.AddLoan(ctx, loanRequest(f, f.bookID))
	require.NoError(t, err)
	_, err = repo.AddLoan(ctx, loanRequest(f, otherBook))
	require.NoError(t, err)

	_, err = repo.UpdateLoan(ctx, first, loanRequest(f, otherBook))
	require.ErrorIs(t, err, errs.ErrBookUnavailable)

	// rolled back: both books stay rented and the loan keeps its book
	assert.Equal(t, model.StatusRented, bookStatus(t, repo, f.bookID))
	assert.Equal(t, model.StatusRented, bookStatus(t, repo, otherBook))
	loan, err := repo.GetLoan(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, f.bookID, loan.BookID)
}

func TestUpdateLoan_NotFound(t *testing.T) {
	repo, _ := tempRepo(t)
	f := seed(t, repo)

	_, err := repo.UpdateLoan(context.Background(), 42, loanRequest(f, f.bookID))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestFineScenario(t *testing.T) {
	repo, db := tempRepo(t)
	f := seed(t, repo)
	ctx := context.Background()

	loanID, err := repo.AddLoan(ctx, loanRequest(f, f.bookID))
	require.NoError(t, err)

	_, err = repo.AddFine(ctx, loanID)
	require.ErrorIs(t, err, errs.ErrNotYetReturned)

	req := loanRequest(f, f.bookID)
	req.ReturnDate = datePtr(model.NewDate(2024, 1, 15))
	_, err = repo.UpdateLoan(ctx, loanID, req)
	require.NoError(t, err)
	_, err = repo.AddFine(ctx, loanID)
	require.ErrorIs(t, err, errs.ErrReturnedOnTime)
	assert.Equal(t, 0, tableCount(t, db, finesTableName))

	req.ReturnDate = datePtr(model.NewDate(2024, 1, 20))
	_, err = repo.UpdateLoan(ctx, loanID, req)
	require.NoError(t, err)

	eligible, err := repo.ListFineEligibleLoans(ctx)
	require.NoError(t, err)
	require.Len(t, eligible, 1)

	fineID, err := repo.AddFine(ctx, loanID)
	require.NoError(t, err)
	_, err = repo.AddFine(ctx, loanID)
	require.ErrorIs(t, err, errs.ErrAlreadyFined)
	assert.Equal(t, 1, tableCount(t, db, finesTableName))

	eligible, err = repo.ListFineEligibleLoans(ctx)
	require.NoError(t, err)
	assert.Empty(t, eligible)

	_, err = repo.DeleteLoan(ctx, loanID)
	require.ErrorIs(t, err, errs.ErrHasDependentFine)
	assert.Equal(t, model.StatusAvailable, bookStatus(t, repo, f.bookID))
	assert.Equal(t, 1, tableCount(t, db, loansTableName))

	fines, err := repo.ListFines(ctx)
	require.NoError(t, err)
	require.Len(t, fines, 1)
	assert.Equal(t, fineID, fines[0].ID)
	assert.Equal(t, "Dune", fines[0].BookTitle)
}

func TestAddFine_LoanNotFound(t *testing.T) {
	repo, _ := tempRepo(t)

	_, err := repo.AddFine(context.Background(), 7)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func fineForLateLoan(t *testing.T, repo *repository, f fixture) (loanID, fineID int64) {
	t.Helper()
	ctx := context.Background()
	req := loanRequest(f, f.bookID)
	req.ReturnDate = datePtr(model.NewDate(2024, 1, 20))
	loanID, err := repo.AddLoan(ctx, req)
	require.NoError(t, err)
	fineID, err = repo.AddFine(ctx, loanID)
	require.NoError(t, err)
	return loanID, fineID
}

func TestDeleteFine_RemovesPayments(t *testing.T) {
	repo, db := tempRepo(t)
	f := seed(t, repo)
	ctx := context.Background()

	loanID, fineID := fineForLateLoan(t, repo, f)
	for _, cents := range []int64{150, 999} {
		_, err := repo.AddPayment(ctx, model.PaymentRequest{
			FineID:        fineID,
			AmountCents:   cents,
			PaymentDate:   model.NewDate(2024, 2, 1),
			PaymentMethod: "Cash",
		})
		require.NoError(t, err)
	}

	details, err := repo.LoanFineDetails(ctx)
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.NotNil(t, details[0].FineID)
	assert.Equal(t, fineID, *details[0].FineID)
	assert.EqualValues(t, 1149, details[0].TotalPaidCents)

	gotLoanID, err := repo.DeleteFine(ctx, fineID)
	require.NoError(t, err)
	assert.Equal(t, loanID, gotLoanID)
	assert.Equal(t, 0, tableCount(t, db, paymentsTableName))
	assert.Equal(t, 0, tableCount(t, db, finesTableName))

	_, err = repo.DeleteFine(ctx, fineID)
	require.ErrorIs(t, err, errs.ErrNotFound)

	// the loan is deletable once the fine is gone
	_, err = repo.DeleteLoan(ctx, loanID)
	require.NoError(t, err)
}

func TestPayments(t *testing.T) {
	repo, db := tempRepo(t)
	f := seed(t, repo)
	ctx := context.Background()

	loanID, fineID := fineForLateLoan(t, repo, f)

	_, err := repo.AddPayment(ctx, model.PaymentRequest{
		FineID: 404, AmountCents: 100, PaymentDate: model.NewDate(2024, 2, 1), PaymentMethod: "Card",
	})
	require.ErrorIs(t, err, errs.ErrNotFound)

	id, err := repo.AddPayment(ctx, model.PaymentRequest{
		FineID: fineID, AmountCents: 500, PaymentDate: model.NewDate(2024, 2, 1), PaymentMethod: "Card",
	})
	require.NoError(t, err)

	payments, err := repo.ListPayments(ctx)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, loanID, payments[0].LoanID)
	assert.Equal(t, "2024-02-01", payments[0].PaymentDate.String())

	balances, err := repo.MemberBalances(ctx)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.EqualValues(t, 1, balances[0].FinesCount)
	assert.EqualValues(t, 500, balances[0].TotalPaidCents)

	require.NoError(t, repo.DeletePayment(ctx, id))
	require.ErrorIs(t, repo.DeletePayment(ctx, id), errs.ErrNotFound)
	assert.Equal(t, 0, tableCount(t, db, paymentsTableName))
}

func TestDeleteLoan(t *testing.T) {
	repo, db := tempRepo(t)
	f := seed(t, repo)
	ctx := context.Background()

	id, err := repo.AddLoan(ctx, loanRequest(f, f.bookID))
	require.NoError(t, err)

	deleted, err := repo.DeleteLoan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, f.bookID, deleted.BookID)
	assert.Equal(t, model.StatusAvailable, bookStatus(t, repo, f.bookID))
	assert.Equal(t, 0, tableCount(t, db, loansTableName))

	_, err = repo.DeleteLoan(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDeleteMember(t *testing.T) {
	repo, db := tempRepo(t)
	f := seed(t, repo)
	ctx := context.Background()

	loanID, err := repo.AddLoan(ctx, loanRequest(f, f.bookID))
	require.NoError(t, err)

	require.ErrorIs(t, repo.DeleteMember(ctx, f.memberID), errs.ErrMemberHasActiveLoans)

	req := loanRequest(f, f.bookID)
	req.ReturnDate = datePtr(model.NewDate(2024, 1, 10))
	_, err = repo.UpdateLoan(ctx, loanID, req)
	require.NoError(t, err)

	// closed loans still reference the member
	require.ErrorIs(t, repo.DeleteMember(ctx, f.memberID), errs.ErrHasDependentLoans)

	_, err = repo.DeleteLoan(ctx, loanID)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteMember(ctx, f.memberID))
	assert.Equal(t, 0, tableCount(t, db, membersTableName))

	require.ErrorIs(t, repo.DeleteMember(ctx, f.memberID), errs.ErrNotFound)
}

func TestMembers_AddressResolution(t *testing.T) {
	repo, db := tempRepo(t)
	f := seed(t, repo)
	ctx := context.Background()

	email := "john@example.com"
	_, err := repo.AddMember(ctx, model.MemberRequest{
		FirstName: "John",
		LastName:  "Roe",
		JoinDate:  model.NewDate(2023, 5, 1),
		Email:     &email,
		Street:    "1 Main St",
		City:      "Halifax",
		Province:  "NS",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tableCount(t, db, addressesTableName))

	require.NoError(t, repo.UpdateMember(ctx, f.memberID, model.MemberRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		JoinDate:  model.NewDate(2023, 1, 10),
		Street:    "9 Spring Garden Rd",
		City:      "Halifax",
		Province:  "NS",
	}))
	assert.Equal(t, 2, tableCount(t, db, addressesTableName))
	assert.Equal(t, 1, tableCount(t, db, citiesTableName))
	assert.Equal(t, 1, tableCount(t, db, provincesTableName))

	members, err := repo.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "9 Spring Garden Rd", members[0].Street)
	assert.Equal(t, "2023-01-10", members[0].JoinDate.String())
	require.NotNil(t, members[1].Email)
	assert.Equal(t, email, *members[1].Email)

	require.ErrorIs(t, repo.UpdateMember(ctx, 999, model.MemberRequest{
		FirstName: "X", LastName: "Y", JoinDate: model.NewDate(2023, 1, 1),
		Street: "s", City: "c", Province: "p",
	}), errs.ErrNotFound)
}

func TestStaff(t *testing.T) {
	repo, db := tempRepo(t)
	f := seed(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.UpdateStaff(ctx, f.staffID, model.StaffRequest{
		FirstName: "Sam",
		LastName:  "Clerk",
		Roles:     []string{"Manager", "Librarian", "Manager"},
	}))
	staff, err := repo.ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, []string{"Librarian", "Manager"}, staff[0].Roles)

	loanID, err := repo.AddLoan(ctx, loanRequest(f, f.bookID))
	require.NoError(t, err)
	require.ErrorIs(t, repo.DeleteStaff(ctx, f.staffID), errs.ErrStaffHasLoans)

	_, err = repo.DeleteLoan(ctx, loanID)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteStaff(ctx, f.staffID))
	assert.Equal(t, 0, tableCount(t, db, staffRoleTableName))
	assert.Equal(t, 2, tableCount(t, db, rolesTableName))
}

func TestBooks(t *testing.T) {
	repo, db := tempRepo(t)
	f := seed(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.UpdateBook(ctx, f.bookID, model.BookRequest{
		Title:          "Dune",
		Author:         "Frank Herbert",
		PublishingYear: 1965,
		Language:       "English",
		Genres:         []string{"Classic", "Science Fiction"},
	}))
	book, err := repo.GetBook(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Classic", "Science Fiction"}, book.Genres)

	loanID, err := repo.AddLoan(ctx, loanRequest(f, f.bookID))
	require.NoError(t, err)

	rented, err := repo.ListBooks(ctx, model.StatusRented, 1, 10)
	require.NoError(t, err)
	require.Len(t, rented.Items, 1)
	available, err := repo.ListBooks(ctx, model.StatusAvailable, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, available.Items)

	require.ErrorIs(t, repo.DeleteBook(ctx, f.bookID), errs.ErrBookRented)

	req := loanRequest(f, f.bookID)
	req.ReturnDate = datePtr(model.NewDate(2024, 1, 10))
	_, err = repo.UpdateLoan(ctx, loanID, req)
	require.NoError(t, err)
	require.ErrorIs(t, repo.DeleteBook(ctx, f.bookID), errs.ErrHasDependentLoans)
	assert.Equal(t, 2, tableCount(t, db, bookGenreTableName))

	_, err = repo.DeleteLoan(ctx, loanID)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteBook(ctx, f.bookID))
	_, err = repo.GetBook(ctx, f.bookID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.ErrorIs(t, repo.DeleteBook(ctx, f.bookID), errs.ErrNotFound)
}

func TestUpdateLoan_FinedLoan(t *testing.T) {
	repo, db := tempRepo(t)
	f := seed(t, repo)
	ctx := context.Background()

	loanID, _ := fineForLateLoan(t, repo, f)
	otherBook, err := repo.AddBook(ctx, model.BookRequest{
		Title: "Emma", Author: "Jane Austen", PublishingYear: 1815, Language: "English",
	})
	require.NoError(t, err)

	late := loanRequest(f, f.bookID)
	late.ReturnDate = datePtr(model.NewDate(2024, 1, 20))

	reopened := late
	reopened.ReturnDate = nil

	onTime := late
	onTime.ReturnDate = datePtr(model.NewDate(2024, 1, 10))

	dueMoved := late
	dueMoved.DueDate = model.NewDate(2024, 1, 25)

	bookChanged := late
	bookChanged.BookID = otherBook

	tests := []struct {
		name string
		req  model.LoanRequest
	}{
		{name: "reopen", req: reopened},
		{name: "returned on time", req: onTime},
		{name: "due date after return", req: dueMoved},
		{name: "another book", req: bookChanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.UpdateLoan(ctx, loanID, tt.req)
			require.ErrorIs(t, err, errs.ErrLoanFined)
			assert.Equal(t, errs.KindBusinessRule, errs.KindOf(err))
		})
	}

	_, err = repo.ReturnLoan(ctx, loanID, model.NewDate(2024, 1, 12))
	require.ErrorIs(t, err, errs.ErrLoanFined)

	loan, err := repo.GetLoan(ctx, loanID)
	require.NoError(t, err)
	require.NotNil(t, loan.ReturnDate)
	assert.Equal(t, "2024-01-20", loan.ReturnDate.String())
	assert.Equal(t, f.bookID, loan.BookID)
	assert.Equal(t, model.StatusAvailable, bookStatus(t, repo, f.bookID))
	assert.Equal(t, model.StatusAvailable, bookStatus(t, repo, otherBook))

	// still late, so the fine stays valid
	stillLate := late
	stillLate.ReturnDate = datePtr(model.NewDate(2024, 1, 22))
	_, err = repo.UpdateLoan(ctx, loanID, stillLate)
	require.NoError(t, err)
	assert.Equal(t, 1, tableCount(t, db, finesTableName))
}

func TestReturnLoan(t *testing.T) {
	repo, _ := tempRepo(t)
	f := seed(t, repo)
	ctx := context.Background()

	loanID, err := repo.AddLoan(ctx, loanRequest(f, f.bookID))
	require.NoError(t, err)

	_, err = repo.ReturnLoan(ctx, loanID, model.NewDate(2023, 12, 31))
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Equal(t, model.StatusRented, bookStatus(t, repo, f.bookID))

	loan, err := repo.ReturnLoan(ctx, loanID, model.NewDate(2024, 1, 14))
	require.NoError(t, err)
	assert.Equal(t, f.bookID, loan.BookID)
	assert.Equal(t, f.memberID, loan.MemberID)
	require.NotNil(t, loan.ReturnDate)
	assert.Equal(t, "2024-01-14", loan.ReturnDate.String())
	assert.Equal(t, model.StatusAvailable, bookStatus(t, repo, f.bookID))

	got, err := repo.GetLoan(ctx, loanID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", got.CheckoutDate.String())
	assert.Equal(t, "2024-01-15", got.DueDate.String())
	require.NotNil(t, got.ReturnDate)
	assert.Equal(t, "2024-01-14", got.ReturnDate.String())

	_, err = repo.ReturnLoan(ctx, 404, model.NewDate(2024, 1, 14))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMembers_AddressRollback(t *testing.T) {
	repo, db := tempRepo(t)
	seed(t, repo)
	ctx := context.Background()

	err := repo.UpdateMember(ctx, 999, model.MemberRequest{
		FirstName: "X",
		LastName:  "Y",
		JoinDate:  model.NewDate(2023, 1, 1),
		Street:    "12 Water St",
		City:      "St. John's",
		Province:  "NL",
	})
	require.ErrorIs(t, err, errs.ErrNotFound)

	assert.Equal(t, 1, tableCount(t, db, provincesTableName))
	assert.Equal(t, 1, tableCount(t, db, citiesTableName))
	assert.Equal(t, 1, tableCount(t, db, addressesTableName))
}
