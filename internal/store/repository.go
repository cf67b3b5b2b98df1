/**
 * @description
 * This file defines the data access contract for the banking service and the
 * sentinel errors repositories translate database failures into. The service
 * layer depends only on this interface; tests substitute stubs for it.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trustbank/banking-service/internal/domain"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrAccountNotFound       = errors.New("account not found")
	ErrLoanNotFound          = errors.New("loan application not found")
	ErrPaymentNotFound       = errors.New("loan payment not found")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrTransferNotFound      = errors.New("transfer not found")
	ErrSettingNotFound       = errors.New("setting not found")
	ErrMessageNotFound       = errors.New("contact message not found")
	ErrEmailTaken            = errors.New("email already registered")
	// ErrDuplicateReference is returned when a generated reference collides
	// with an existing row; callers regenerate and retry.
	ErrDuplicateReference = errors.New("duplicate reference")
)

// DisbursementResult reports the outcome of an approval write. Credited is
// true only when the application was still under review at write time, so a
// concurrent second approval observes Credited=false and posts nothing.
type DisbursementResult struct {
	Loan         *domain.LoanApplication
	Credited     bool
	CreditAmount decimal.Decimal
}

// VerifyPaymentParams carries one administrative verification decision.
type VerifyPaymentParams struct {
	PaymentID uuid.UUID
	Verify    bool
	Notes     string
	StaffID   uuid.UUID
	When      time.Time
}

// VerifyPaymentResult reports the updated payment, the parent loan's status
// before the write and whether the loan advanced to under_review as part of it.
type VerifyPaymentResult struct {
	Payment         *domain.LoanPayment
	Loan            *domain.LoanApplication
	PriorLoanStatus domain.LoanStatus
	LoanAdvanced    bool
}

// UpdateTransferStatusParams carries one administrative transfer transition.
type UpdateTransferStatusParams struct {
	TransferID uuid.UUID
	Status     domain.TransferStatus
	Notes      string
	StaffID    uuid.UUID
	When       time.Time
}

// Repository is the durable storage collaborator.
type Repository interface {
	// Users and profiles.
	CreateUser(ctx context.Context, user *domain.User, profile *domain.UserProfile, account *domain.Account) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)

	// Accounts and ledger.
	FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	EnsureAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)
	SetAccountBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error
	PostTransaction(ctx context.Context, tx *domain.Transaction, balanceDelta decimal.Decimal) error
	ListTransactions(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Transaction, error)

	// Payment method registry.
	CreatePaymentMethod(ctx context.Context, m *domain.PaymentMethod) error
	UpdatePaymentMethod(ctx context.Context, m *domain.PaymentMethod) error
	DeletePaymentMethod(ctx context.Context, id uuid.UUID) error
	FindPaymentMethodByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, activeOnly bool) ([]domain.PaymentMethod, error)

	// Loan applications.
	CreateLoanApplication(ctx context.Context, loan *domain.LoanApplication, payment *domain.LoanPayment, verification *domain.LoanPaymentVerification) error
	FindLoanByID(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error)
	FindLatestLoanByUserID(ctx context.Context, userID uuid.UUID) (*domain.LoanApplication, error)
	ListLoansByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]domain.LoanApplication, error)
	ListLoans(ctx context.Context, status domain.LoanStatus) ([]domain.LoanApplication, error)
	CountLoansByStatus(ctx context.Context) (*domain.LoanStatusCounts, error)
	UpdateLoanStatus(ctx context.Context, loanID uuid.UUID, status domain.LoanStatus) (*domain.LoanApplication, error)
	DisburseLoan(ctx context.Context, loanID uuid.UUID) (*DisbursementResult, error)

	// Loan payments and verification trail.
	FindPaymentByID(ctx context.Context, id uuid.UUID) (*domain.LoanPayment, error)
	FindPaymentByLoanID(ctx context.Context, loanID uuid.UUID) (*domain.LoanPayment, error)
	ListPayments(ctx context.Context, filter domain.PaymentListFilter) ([]domain.LoanPayment, error)
	ListPaymentsByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]domain.LoanPayment, error)
	CountPayments(ctx context.Context) (*domain.PaymentCounts, error)
	VerifyPayment(ctx context.Context, params VerifyPaymentParams) (*VerifyPaymentResult, error)
	ListVerifications(ctx context.Context, paymentID uuid.UUID) ([]domain.LoanPaymentVerification, error)

	// Money transfers.
	CreateTransfer(ctx context.Context, t *domain.MoneyTransfer) error
	FindTransferByID(ctx context.Context, id uuid.UUID) (*domain.MoneyTransfer, error)
	ListTransfersBySenderID(ctx context.Context, userID uuid.UUID, limit int) ([]domain.MoneyTransfer, error)
	ListTransfers(ctx context.Context, status domain.TransferStatus) ([]domain.MoneyTransfer, error)
	UpdateTransferStatus(ctx context.Context, params UpdateTransferStatusParams) (*domain.MoneyTransfer, error)
	ListTransferHistory(ctx context.Context, transferID uuid.UUID) ([]domain.TransferStatusHistory, error)

	// Contact messages and system settings.
	CreateContactMessage(ctx context.Context, m *domain.ContactMessage) error
	ResolveContactMessage(ctx context.Context, id uuid.UUID, resolved bool) error
	ListContactMessages(ctx context.Context) ([]domain.ContactMessage, error)
	GetSetting(ctx context.Context, name string) (*domain.SystemSetting, error)
	UpsertSetting(ctx context.Context, s domain.SystemSetting) error
	ListSettings(ctx context.Context) ([]domain.SystemSetting, error)
}
