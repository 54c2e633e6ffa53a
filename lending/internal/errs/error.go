package errs

import (
	"github.com/pkg/errors"
)

type Kind uint8

const (
	KindSystem Kind = iota
	KindValidation
	KindNotFound
	KindBusinessRule
	KindConstraint
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindBusinessRule:
		return "business_rule"
	case KindConstraint:
		return "constraint"
	default:
		return "system"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

var (
	ErrNotFound = &Error{Kind: KindNotFound, Msg: "not found"}

	ErrBookUnavailable      = &Error{Kind: KindBusinessRule, Msg: "book is not available for loan"}
	ErrBookRented           = &Error{Kind: KindBusinessRule, Msg: "cannot delete a rented book, return it first"}
	ErrMemberHasActiveLoans = &Error{Kind: KindBusinessRule, Msg: "cannot delete member with active loans"}
	ErrStaffHasLoans        = &Error{Kind: KindBusinessRule, Msg: "cannot delete staff member who has processed loans"}
	ErrAlreadyFined         = &Error{Kind: KindBusinessRule, Msg: "this loan already has a fine"}
	ErrNotYetReturned       = &Error{Kind: KindBusinessRule, Msg: "cannot add fine, book has not been returned yet"}
	ErrReturnedOnTime       = &Error{Kind: KindBusinessRule, Msg: "cannot add fine, book was returned on time"}
	ErrLoanFined            = &Error{Kind: KindBusinessRule, Msg: "loan has a fine, it must stay returned late with the same book"}

	ErrHasDependentFine  = &Error{Kind: KindConstraint, Msg: "cannot delete loan, it has related fine records"}
	ErrHasDependentLoans = &Error{Kind: KindConstraint, Msg: "record has related loan records"}
)

// Validation marks err as malformed or missing input.
func Validation(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindValidation, Msg: "validation failed", Err: err}
}

func Validationf(format string, args ...any) error {
	return Validation(errors.Errorf(format, args...))
}

// Constraint wraps a store constraint rejection that has no dedicated sentinel.
func Constraint(err error) error {
	return &Error{Kind: KindConstraint, Msg: "constraint violation", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, KindSystem otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindSystem
}
