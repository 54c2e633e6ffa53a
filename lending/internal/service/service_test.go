package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookbuster/lending/internal/errs"
	"github.com/Astemirdum/bookbuster/lending/internal/model"
	"github.com/Astemirdum/bookbuster/lending/internal/repository"
	"github.com/Astemirdum/bookbuster/lending/internal/service"
	"github.com/Astemirdum/bookbuster/lending/migrations"
	"github.com/Astemirdum/bookbuster/pkg/sqldb"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

type recordingPublisher struct {
	mu     sync.Mutex
	events []service.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, v.(service.Event))
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []service.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]service.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type env struct {
	svc      *service.Service
	pub      *recordingPublisher
	memberID int64
	staffID  int64
	bookID   int64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	db, err := sqldb.NewDB(ctx, &sqldb.DB{
		Driver: sqldb.SQLite,
		Path:   filepath.Join(t.TempDir(), "svc.db"),
	}, migrations.MigrationFiles)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := repository.NewRepository(db, sqldb.SQLite, zap.NewNop())
	require.NoError(t, err)

	pub := &recordingPublisher{}
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := service.NewService(repo, zap.NewNop(),
		service.WithClock(fixedClock(now)),
		service.WithPublisher(pub))

	e := &env{svc: svc, pub: pub}
	e.memberID, err = svc.AddMember(ctx, model.MemberRequest{
		FirstName: " Jane ",
		LastName:  "Doe",
		JoinDate:  model.NewDate(2023, 1, 10),
		Street:    "1 Main St",
		City:      "Halifax",
		Province:  "NS",
	})
	require.NoError(t, err)
	e.staffID, err = svc.AddStaff(ctx, model.StaffRequest{
		FirstName: "Sam",
		LastName:  "Clerk",
		Roles:     []string{"Librarian"},
	})
	require.NoError(t, err)
	e.bookID, err = svc.AddBook(ctx, model.BookRequest{
		Title:          "Dune",
		Author:         "Frank Herbert",
		PublishingYear: 1965,
		Language:       "English",
		Genres:         []string{"Science Fiction"},
	})
	require.NoError(t, err)
	return e
}

func (e *env) loan() model.LoanRequest {
	return model.LoanRequest{
		BookID:       e.bookID,
		MemberID:     e.memberID,
		StaffID:      e.staffID,
		CheckoutDate: model.NewDate(2024, 1, 1),
		DueDate:      model.NewDate(2024, 1, 15),
	}
}

func TestService_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{
			name: "due before checkout",
			call: func() error {
				req := e.loan()
				req.DueDate = model.NewDate(2023, 12, 31)
				_, err := e.svc.AddLoan(ctx, req)
				return err
			},
		},
		{
			name: "return before checkout",
			call: func() error {
				req := e.loan()
				ret := model.NewDate(2023, 12, 1)
				req.ReturnDate = &ret
				_, err := e.svc.AddLoan(ctx, req)
				return err
			},
		},
		{
			name: "missing member",
			call: func() error {
				req := e.loan()
				req.MemberID = 0
				_, err := e.svc.AddLoan(ctx, req)
				return err
			},
		},
		{
			name: "year in the future",
			call: func() error {
				_, err := e.svc.AddBook(ctx, model.BookRequest{
					Title: "Later", Author: "Someone", PublishingYear: 2026, Language: "English",
					Genres: []string{"Drama"},
				})
				return err
			},
		},
		{
			name: "no genre",
			call: func() error {
				_, err := e.svc.AddBook(ctx, model.BookRequest{
					Title: "Bare", Author: "Someone", PublishingYear: 2000, Language: "English",
					Genres: []string{"  "},
				})
				return err
			},
		},
		{
			name: "payment over limit",
			call: func() error {
				_, err := e.svc.AddPayment(ctx, model.PaymentRequest{
					FineID: 1, AmountCents: 1000, PaymentDate: model.NewDate(2024, 2, 1), PaymentMethod: "Cash",
				})
				return err
			},
		},
		{
			name: "payment without date",
			call: func() error {
				_, err := e.svc.AddPayment(ctx, model.PaymentRequest{
					FineID: 1, AmountCents: 100, PaymentMethod: "Cash",
				})
				return err
			},
		},
		{
			name: "member without join date",
			call: func() error {
				_, err := e.svc.AddMember(ctx, model.MemberRequest{
					FirstName: "A", LastName: "B", Street: "s", City: "c", Province: "p",
				})
				return err
			},
		},
		{
			name: "bad email",
			call: func() error {
				email := "not-an-email"
				_, err := e.svc.AddStaff(ctx, model.StaffRequest{
					FirstName: "A", LastName: "B", Email: &email, Roles: []string{"Clerk"},
				})
				return err
			},
		},
		{
			name: "unknown status",
			call: func() error {
				_, err := e.svc.ListBooks(ctx, "Lost", 0, 0)
				return err
			},
		},
		{
			name: "zero id",
			call: func() error { return e.svc.DeleteLoan(ctx, 0) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))
		})
	}

	book, err := e.svc.GetBook(ctx, e.bookID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAvailable, book.RentalStatus)
	assert.Empty(t, e.pub.types())
}

func TestService_LendingFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	loanID, err := e.svc.AddLoan(ctx, e.loan())
	require.NoError(t, err)

	_, err = e.svc.AddLoan(ctx, e.loan())
	require.ErrorIs(t, err, errs.ErrBookUnavailable)
	assert.Equal(t, errs.KindBusinessRule, errs.KindOf(err))

	require.NoError(t, e.svc.ReturnLoan(ctx, loanID, model.NewDate(2024, 1, 20)))
	loan, err := e.svc.GetLoan(ctx, loanID)
	require.NoError(t, err)
	require.NotNil(t, loan.ReturnDate)
	assert.Equal(t, "2024-01-20", loan.ReturnDate.String())
	assert.Equal(t, "2024-01-15", loan.DueDate.String())

	book, err := e.svc.GetBook(ctx, e.bookID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAvailable, book.RentalStatus)

	fineID, err := e.svc.AddFine(ctx, loanID)
	require.NoError(t, err)
	_, err = e.svc.AddFine(ctx, loanID)
	require.ErrorIs(t, err, errs.ErrAlreadyFined)

	err = e.svc.ReturnLoan(ctx, loanID, model.NewDate(2024, 1, 10))
	require.ErrorIs(t, err, errs.ErrLoanFined)
	assert.Equal(t, errs.KindBusinessRule, errs.KindOf(err))

	paymentID, err := e.svc.AddPayment(ctx, model.PaymentRequest{
		FineID: fineID, AmountCents: 999, PaymentDate: model.NewDate(2024, 2, 1), PaymentMethod: " Cash ",
	})
	require.NoError(t, err)
	require.NoError(t, e.svc.DeletePayment(ctx, paymentID))

	err = e.svc.DeleteLoan(ctx, loanID)
	require.ErrorIs(t, err, errs.ErrHasDependentFine)
	assert.Equal(t, errs.KindConstraint, errs.KindOf(err))

	require.NoError(t, e.svc.DeleteFine(ctx, fineID))
	require.NoError(t, e.svc.DeleteLoan(ctx, loanID))

	assert.Equal(t, []service.EventType{
		service.LoanCreated,
		service.LoanUpdated,
		service.FineCreated,
		service.PaymentCreated,
		service.PaymentDeleted,
		service.FineDeleted,
		service.LoanDeleted,
	}, e.pub.types())

	first := e.pub.events[0]
	assert.Len(t, first.ID, 26)
	assert.Equal(t, loanID, first.LoanID)
	assert.Equal(t, e.bookID, first.BookID)
	assert.False(t, first.Returned)
	assert.True(t, e.pub.events[1].Returned)
}

func TestService_PublishFailureKeepsCommit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.pub.err = errors.New("broker down")

	_, err := e.svc.AddLoan(ctx, e.loan())
	require.NoError(t, err)

	book, err := e.svc.GetBook(ctx, e.bookID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRented, book.RentalStatus)
}

func TestService_Trims(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	members, err := e.svc.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Jane", members[0].FirstName)

	_, err = e.svc.AddBook(ctx, model.BookRequest{
		Title:          "  Emma ",
		Author:         "Jane Austen",
		PublishingYear: 2025,
		Language:       "English",
		Genres:         []string{" Romance", "Romance "},
	})
	require.NoError(t, err)

	books, err := e.svc.ListBooks(ctx, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, books.Items, 2)
	assert.Equal(t, "Emma", books.Items[1].Title)
	assert.Equal(t, []string{"Romance"}, books.Items[1].Genres)
}

func TestService_Health(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.svc.Health(context.Background()))
}
