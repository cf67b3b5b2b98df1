/**
 * @description
 * This file defines the money transfer records and their status history.
 * Transfers record intent and an external reference only; no transfer status
 * transition moves money between accounts.
 *
 * @notes
 * - `total_amount` is computed exactly once, at creation, as amount + fee.
 *   Later changes to the fee or amount do not recompute it.
 */

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus is the closed set of transfer states.
type TransferStatus string

const (
	TransferStatusPending    TransferStatus = "pending"
	TransferStatusProcessing TransferStatus = "processing"
	TransferStatusCompleted  TransferStatus = "completed"
	TransferStatusFailed     TransferStatus = "failed"
	TransferStatusCancelled  TransferStatus = "cancelled"
)

// ValidTransferStatus reports whether s belongs to the closed status set.
func ValidTransferStatus(s TransferStatus) bool {
	switch s {
	case TransferStatusPending, TransferStatusProcessing, TransferStatusCompleted,
		TransferStatusFailed, TransferStatusCancelled:
		return true
	}
	return false
}

// Transfer payment methods. This enum is distinct from the deposit
// PaymentMethod registry.
const (
	TransferPaymentBankTransfer = "bank_transfer"
	TransferPaymentMobileMoney  = "mobile_money"
	TransferPaymentCrypto       = "crypto"
	TransferPaymentPayPal       = "paypal"
	TransferPaymentOther        = "other"
)

// MoneyTransfer is a single peer/external transfer record.
type MoneyTransfer struct {
	ID          uuid.UUID `json:"id"`
	SenderID    uuid.UUID `json:"sender_id"`
	SenderName  string    `json:"sender_name"`
	SenderEmail string    `json:"sender_email"`
	SenderPhone string    `json:"sender_phone"`

	RecipientName          string `json:"recipient_name"`
	RecipientEmail         string `json:"recipient_email,omitempty"`
	RecipientPhone         string `json:"recipient_phone"`
	RecipientCountry       string `json:"recipient_country"`
	RecipientBankName      string `json:"recipient_bank_name,omitempty"`
	RecipientAccountNumber string `json:"recipient_account_number,omitempty"`
	RecipientRoutingNumber string `json:"recipient_routing_number,omitempty"`

	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	TransferType    string          `json:"transfer_type"`
	PaymentMethod   string          `json:"payment_method"`
	Purpose         string          `json:"purpose,omitempty"`
	ReferenceNumber string          `json:"reference_number"`

	TransactionID string          `json:"transaction_id,omitempty"`
	Status        TransferStatus  `json:"status"`
	AdminNotes    string          `json:"admin_notes,omitempty"`
	TransferFee   decimal.Decimal `json:"transfer_fee"`
	TotalAmount   decimal.Decimal `json:"total_amount"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	ProcessedBy *uuid.UUID `json:"processed_by,omitempty"`
}

// NewTransferReference generates the external-facing transfer reference.
func NewTransferReference(senderID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("TRF-%s-%d", senderID.String()[:8], now.Unix())
}

// TransferStatusHistory is one append-only entry recorded per status change.
type TransferStatusHistory struct {
	ID         uuid.UUID      `json:"id"`
	TransferID uuid.UUID      `json:"transfer_id"`
	Status     TransferStatus `json:"status"`
	Notes      string         `json:"notes,omitempty"`
	ChangedBy  *uuid.UUID     `json:"changed_by,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// CreateTransferInput is the DTO for creating a transfer.
type CreateTransferInput struct {
	SenderName             string          `json:"sender_name"`
	SenderEmail            string          `json:"sender_email"`
	SenderPhone            string          `json:"sender_phone"`
	RecipientName          string          `json:"recipient_name"`
	RecipientEmail         string          `json:"recipient_email"`
	RecipientPhone         string          `json:"recipient_phone"`
	RecipientCountry       string          `json:"recipient_country"`
	RecipientBankName      string          `json:"recipient_bank_name"`
	RecipientAccountNumber string          `json:"recipient_account_number"`
	RecipientRoutingNumber string          `json:"recipient_routing_number"`
	Amount                 decimal.Decimal `json:"amount"`
	Currency               string          `json:"currency"`
	TransferType           string          `json:"transfer_type"`
	PaymentMethod          string          `json:"payment_method"`
	Purpose                string          `json:"purpose"`
}
