/**
 * @description
 * This file defines the account and ledger models. Every customer owns exactly
 * one account; the ledger is an append-only list of transactions against it.
 * Balances and amounts use shopspring/decimal so that monetary values never
 * pass through floating point.
 */

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account types offered by the bank.
const (
	AccountTypeChecking = "checking"
	AccountTypeSavings  = "savings"
	AccountTypeBusiness = "business"
)

// Transaction types recorded in the ledger.
const (
	TransactionTypeDeposit          = "deposit"
	TransactionTypeWithdrawal       = "withdrawal"
	TransactionTypeTransfer         = "transfer"
	TransactionTypePayment          = "payment"
	TransactionTypeLoanDisbursement = "loan_disbursement"
)

// Account is a customer's bank account. Exactly one active account exists per
// user; it is created lazily on first access with a zero balance.
type Account struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	AccountNumber string          `json:"account_number"`
	AccountType   string          `json:"account_type"`
	Balance       decimal.Decimal `json:"balance"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Transaction is a single immutable ledger entry. The canonical read order is
// created_at descending.
type Transaction struct {
	ID               uuid.UUID       `json:"id"`
	TransactionID    string          `json:"transaction_id"`
	AccountID        uuid.UUID       `json:"account_id"`
	TransactionType  string          `json:"transaction_type"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	RecipientAccount string          `json:"recipient_account,omitempty"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewAccountNumber generates a unique external-facing account number.
func NewAccountNumber(now time.Time) string {
	return fmt.Sprintf("ACC-%d-%s", now.Unix(), uuid.New().String()[:8])
}

// NewTransactionReference generates a unique external-facing ledger reference.
func NewTransactionReference(now time.Time) string {
	return fmt.Sprintf("TXN-%d-%s", now.Unix(), uuid.New().String()[:8])
}

// Dashboard aggregates the records shown on a customer's landing page.
type Dashboard struct {
	Account      *Account          `json:"account"`
	Transactions []Transaction     `json:"transactions"`
	Loans        []LoanApplication `json:"loans"`
	Transfers    []MoneyTransfer   `json:"transfers"`
	Payments     []LoanPayment     `json:"payments"`
}
