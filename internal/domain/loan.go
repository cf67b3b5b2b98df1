/**
 * @description
 * This file defines the loan application aggregate: the application record
 * itself, the deposit payment submitted against it, the append-only payment
 * verification trail, and the session-staged draft carried between the two
 * intake steps.
 *
 * @notes
 * - Loan statuses form a closed set. `rejected` is terminal: no transition
 *   out of it is ever accepted.
 * - `deposit_required` is derived exactly once at creation time and is never
 *   recomputed, even if the amount is later edited by staff.
 */

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus is the closed set of loan application states.
type LoanStatus string

const (
	LoanStatusPending     LoanStatus = "pending"
	LoanStatusUnderReview LoanStatus = "under_review"
	LoanStatusApproved    LoanStatus = "approved"
	LoanStatusRejected    LoanStatus = "rejected"
	LoanStatusDisbursed   LoanStatus = "disbursed"
	LoanStatusCompleted   LoanStatus = "completed"

	// LoanStatusPendingPayment is a legacy alias some records carry for the
	// initial state; payment verification treats it the same as pending.
	LoanStatusPendingPayment LoanStatus = "pending_payment"
)

// Loan types offered by the bank.
const (
	LoanTypePersonal = "personal"
	LoanTypeBusiness = "business"
	LoanTypeMortgage = "mortgage"
	LoanTypeAuto     = "auto"
)

// ValidLoanStatus reports whether s belongs to the closed status set.
func ValidLoanStatus(s LoanStatus) bool {
	switch s {
	case LoanStatusPending, LoanStatusPendingPayment, LoanStatusUnderReview,
		LoanStatusApproved, LoanStatusRejected, LoanStatusDisbursed, LoanStatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether a loan currently in `from` may be moved to
// `to`. Every valid target is reachable except that rejected is terminal.
func CanTransition(from, to LoanStatus) bool {
	if !ValidLoanStatus(to) {
		return false
	}
	if from == LoanStatusRejected && to != LoanStatusRejected {
		return false
	}
	return true
}

// LoanApplication is the persistent application record committed at the end
// of the intake wizard.
type LoanApplication struct {
	ID            uuid.UUID       `json:"id"`
	ApplicationID string          `json:"application_id"`
	UserID        uuid.UUID       `json:"user_id"`
	LoanType      string          `json:"loan_type"`
	Amount        decimal.Decimal `json:"amount"`
	Purpose       string          `json:"purpose"`
	TermMonths    int             `json:"term_months"`

	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Location    string `json:"location"`
	FullAddress string `json:"full_address"`
	DateOfBirth string `json:"date_of_birth"`

	SecurityQuestion   string `json:"security_question"`
	SecurityAnswerHash string `json:"-"`

	SelfieURL       string `json:"selfie_url,omitempty"`
	IDDocumentURL   string `json:"id_document_url,omitempty"`
	AddressProofURL string `json:"address_proof_url,omitempty"`

	PaymentMethodID  *uuid.UUID      `json:"payment_method_id,omitempty"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	DepositRequired  decimal.Decimal `json:"deposit_required"`
	DepositPaid      bool            `json:"deposit_paid"`
	TransactionID    string          `json:"transaction_id,omitempty"`

	Status    LoanStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	AppliedAt time.Time  `json:"applied_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewApplicationID generates the external-facing loan reference.
func NewApplicationID(userID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("LOAN-%s-%d", userID.String()[:8], now.Unix())
}

// DepositRequired computes the upfront deposit for a requested principal,
// rounded to two decimal places.
func DepositRequired(amount decimal.Decimal, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
}

// LoanDraft is the serializable staging record carried between wizard steps.
// It lives in the session store under the applicant's user id and expires
// after a configured TTL; nothing durable is written until step 2 commits.
type LoanDraft struct {
	Step             int       `json:"step"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Location         string    `json:"location"`
	FullAddress      string    `json:"full_address"`
	DateOfBirth      string    `json:"date_of_birth"`
	SecurityQuestion string    `json:"security_question"`
	SecurityAnswer   string    `json:"security_answer"`
	SelfieURL        string    `json:"selfie_url,omitempty"`
	IDDocumentURL    string    `json:"id_document_url,omitempty"`
	AddressProofURL  string    `json:"address_proof_url,omitempty"`
	SavedAt          time.Time `json:"saved_at"`
}

// PersonalInfoInput is the step-1 form payload, before file handling.
type PersonalInfoInput struct {
	FullName         string
	Email            string
	Phone            string
	Location         string
	FullAddress      string
	DateOfBirth      string
	SecurityQuestion string
	SecurityAnswer   string
}

// LoanDetailsInput is the step-2 form payload.
type LoanDetailsInput struct {
	LoanAmount      decimal.Decimal
	LoanPurpose     string
	LoanTermMonths  int
	PaymentMethodID *uuid.UUID
	SenderName      string
	SenderAddress   string
	SenderPhone     string
	TransactionID   string
	PaymentDate     string
}

// LoanPayment records a deposit payment submitted for a loan application.
type LoanPayment struct {
	ID              uuid.UUID       `json:"id"`
	LoanID          uuid.UUID       `json:"loan_id"`
	PaymentMethodID *uuid.UUID      `json:"payment_method_id,omitempty"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	TransactionID   string          `json:"transaction_id"`
	PaymentDate     string          `json:"payment_date"`
	SenderName      string          `json:"sender_name"`
	SenderAddress   string          `json:"sender_address,omitempty"`
	SenderPhone     string          `json:"sender_phone,omitempty"`
	PaymentProofURL string          `json:"payment_proof_url,omitempty"`
	Verified        bool            `json:"verified"`
	VerifiedBy      *uuid.UUID      `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`
	AdminNotes      string          `json:"admin_notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Verification trail statuses.
const (
	VerificationStatusPending  = "pending"
	VerificationStatusVerified = "verified"
	VerificationStatusRejected = "rejected"
)

// LoanPaymentVerification is one append-only entry in a payment's
// verification history. Entries are never mutated after creation.
type LoanPaymentVerification struct {
	ID         uuid.UUID  `json:"id"`
	PaymentID  uuid.UUID  `json:"payment_id"`
	Status     string     `json:"status"`
	Notes      string     `json:"notes,omitempty"`
	VerifiedBy *uuid.UUID `json:"verified_by,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// LoanStatusCounts summarizes applications per status for the admin list.
type LoanStatusCounts struct {
	Pending     int64 `json:"pending"`
	UnderReview int64 `json:"under_review"`
	Approved    int64 `json:"approved"`
	Rejected    int64 `json:"rejected"`
	Disbursed   int64 `json:"disbursed"`
	Completed   int64 `json:"completed"`
	Total       int64 `json:"total"`
}

// PaymentCounts summarizes payments by verification state for the admin queue.
type PaymentCounts struct {
	Total    int64 `json:"total"`
	Verified int64 `json:"verified"`
	Pending  int64 `json:"pending"`
}

// PaymentListFilter controls the admin payment queue query.
type PaymentListFilter struct {
	// Status is "all", "verified" or "pending".
	Status string
	// Search matches transaction id, application reference, sender name or
	// the applicant's email.
	Search string
}
