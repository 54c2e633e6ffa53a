package model

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type RentalStatus string

const (
	StatusAvailable RentalStatus = "Available"
	StatusRented    RentalStatus = "Rented"
)

type Book struct {
	ID             int64        `json:"id" db:"id"`
	Title          string       `json:"title" db:"title"`
	Author         string       `json:"author" db:"author"`
	PublishingYear int          `json:"publishingYear" db:"publishing_year"`
	Language       string       `json:"language" db:"book_language"`
	RentalStatus   RentalStatus `json:"rentalStatus" db:"rental_status"`
	Genres         []string     `json:"genres" db:"-"`
}

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type BookRequest struct {
	Title          string   `json:"title" validate:"required,max=255"`
	Author         string   `json:"author" validate:"required,max=255"`
	PublishingYear int      `json:"publishingYear" validate:"required,min=1000"`
	Language       string   `json:"language" validate:"required,max=50"`
	Genres         []string `json:"genres" validate:"required,min=1,dive,required,max=100"`
}

type Member struct {
	ID        int64   `json:"id" db:"id"`
	FirstName string  `json:"firstName" db:"first_name"`
	LastName  string  `json:"lastName" db:"last_name"`
	JoinDate  Date    `json:"joinDate" db:"join_date"`
	Email     *string `json:"email,omitempty" db:"email"`
	Phone     *string `json:"phone,omitempty" db:"phone_number"`
	AddressID int64   `json:"addressId" db:"address_id"`
	Street    string  `json:"street" db:"street"`
	City      string  `json:"city" db:"city"`
	Province  string  `json:"province" db:"province"`
}

type MemberRequest struct {
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"required,max=100"`
	JoinDate  Date    `json:"joinDate"`
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Street    string  `json:"street" validate:"required,max=200"`
	City      string  `json:"city" validate:"required,max=100"`
	Province  string  `json:"province" validate:"required,max=100"`
}

type Staff struct {
	ID        int64    `json:"id" db:"id"`
	FirstName string   `json:"firstName" db:"first_name"`
	LastName  string   `json:"lastName" db:"last_name"`
	Email     *string  `json:"email,omitempty" db:"email"`
	Phone     *string  `json:"phone,omitempty" db:"phone_number"`
	Roles     []string `json:"roles" db:"-"`
}

type StaffRequest struct {
	FirstName string   `json:"firstName" validate:"required,max=100"`
	LastName  string   `json:"lastName" validate:"required,max=100"`
	Email     *string  `json:"email" validate:"omitempty,email,max=255"`
	Phone     *string  `json:"phone" validate:"omitempty,max=30"`
	Roles     []string `json:"roles" validate:"required,min=1,dive,required,max=100"`
}

type Loan struct {
	ID              int64  `json:"id" db:"id"`
	BookID          int64  `json:"bookId" db:"book_id"`
	MemberID        int64  `json:"memberId" db:"member_id"`
	StaffID         int64  `json:"staffId" db:"staff_id"`
	CheckoutDate    Date   `json:"checkoutDate" db:"checkout_date"`
	DueDate         Date   `json:"dueDate" db:"due_date"`
	ReturnDate      *Date  `json:"returnDate" db:"return_date"`
	BookTitle       string `json:"bookTitle,omitempty" db:"book_title"`
	MemberFirstName string `json:"memberFirstName,omitempty" db:"member_first_name"`
	MemberLastName  string `json:"memberLastName,omitempty" db:"member_last_name"`
	StaffFirstName  string `json:"staffFirstName,omitempty" db:"staff_first_name"`
	StaffLastName   string `json:"staffLastName,omitempty" db:"staff_last_name"`
}

// Active reports whether the loan still holds its book.
func (l Loan) Active() bool { return l.ReturnDate == nil }

type ListLoans struct {
	Paging `json:",inline"`
	Items  []Loan `json:"items"`
}

type LoanRequest struct {
	BookID       int64 `json:"bookId" validate:"required,gt=0"`
	MemberID     int64 `json:"memberId" validate:"required,gt=0"`
	StaffID      int64 `json:"staffId" validate:"required,gt=0"`
	CheckoutDate Date  `json:"checkoutDate"`
	DueDate      Date  `json:"dueDate"`
	ReturnDate   *Date `json:"returnDate"`
}

type ReturnLoanRequest struct {
	ReturnDate Date `json:"returnDate"`
}

type Fine struct {
	ID              int64  `json:"id" db:"id"`
	LoanID          int64  `json:"loanId" db:"loan_id"`
	BookTitle       string `json:"bookTitle" db:"book_title"`
	MemberFirstName string `json:"memberFirstName" db:"member_first_name"`
	MemberLastName  string `json:"memberLastName" db:"member_last_name"`
}

type FineRequest struct {
	LoanID int64 `json:"loanId" validate:"required,gt=0"`
}

const (
	MinPaymentCents = 1
	MaxPaymentCents = 999
)

type Payment struct {
	ID            int64  `json:"id" db:"id"`
	FineID        int64  `json:"fineId" db:"fine_id"`
	AmountCents   int64  `json:"amountCents" db:"amount_cents"`
	PaymentDate   Date   `json:"paymentDate" db:"payment_date"`
	PaymentMethod string `json:"paymentMethod" db:"payment_method"`
	LoanID        int64  `json:"loanId" db:"loan_id"`
}

type PaymentRequest struct {
	FineID        int64  `json:"fineId" validate:"required,gt=0"`
	AmountCents   int64  `json:"amountCents" validate:"min=1,max=999"`
	PaymentDate   Date   `json:"paymentDate"`
	PaymentMethod string `json:"paymentMethod" validate:"required,max=50"`
}

type LoanFineDetail struct {
	LoanID          int64  `json:"loanId" db:"loan_id"`
	BookTitle       string `json:"bookTitle" db:"book_title"`
	MemberFirstName string `json:"memberFirstName" db:"member_first_name"`
	MemberLastName  string `json:"memberLastName" db:"member_last_name"`
	CheckoutDate    Date   `json:"checkoutDate" db:"checkout_date"`
	DueDate         Date   `json:"dueDate" db:"due_date"`
	ReturnDate      *Date  `json:"returnDate" db:"return_date"`
	FineID          *int64 `json:"fineId" db:"fine_id"`
	TotalPaidCents  int64  `json:"totalPaidCents" db:"total_paid_cents"`
}

type MemberBalance struct {
	MemberID       int64  `json:"memberId" db:"member_id"`
	FirstName      string `json:"firstName" db:"first_name"`
	LastName       string `json:"lastName" db:"last_name"`
	FinesCount     int64  `json:"finesCount" db:"fines_count"`
	TotalPaidCents int64  `json:"totalPaidCents" db:"total_paid_cents"`
}

type CreatedResponse struct {
	ID int64 `json:"id"`
}
