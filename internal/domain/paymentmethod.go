/**
 * @description
 * This file defines the administrator-curated payment method registry: the
 * instructions applicants follow to pay the required loan deposit.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Payment method types the registry supports.
const (
	PaymentMethodTypeWalmart      = "walmart"
	PaymentMethodTypeBankTransfer = "bank_transfer"
	PaymentMethodTypeWesternUnion = "western_union"
	PaymentMethodTypeMoneyGram    = "moneygram"
	PaymentMethodTypeCrypto       = "crypto"
	PaymentMethodTypeOther        = "other"
)

// ValidPaymentMethodType reports whether t is a known registry type.
func ValidPaymentMethodType(t string) bool {
	switch t {
	case PaymentMethodTypeWalmart, PaymentMethodTypeBankTransfer,
		PaymentMethodTypeWesternUnion, PaymentMethodTypeMoneyGram,
		PaymentMethodTypeCrypto, PaymentMethodTypeOther:
		return true
	}
	return false
}

// PaymentMethod is one deposit-payment instruction set. Inactive methods are
// never offered to applicants, but past references to them stay valid.
type PaymentMethod struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	PaymentType   string    `json:"payment_type"`
	Instructions  string    `json:"instructions"`
	AccountName   string    `json:"account_name,omitempty"`
	AccountNumber string    `json:"account_number,omitempty"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
