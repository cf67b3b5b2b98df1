/**
 * @description
 * This file defines the contact message record and the string-keyed system
 * settings store with get-or-default and upsert semantics.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContactMessage is an inbound support message from the public contact form.
type ContactMessage struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	IsResolved bool      `json:"is_resolved"`
	CreatedAt  time.Time `json:"created_at"`
}

// SystemSetting is one named configuration value administrators can control.
type SystemSetting struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// DefaultSystemSettings are installed idempotently at startup.
var DefaultSystemSettings = []SystemSetting{
	{Name: "default_account_balance", Value: "0.00", Description: "Default balance for new accounts"},
	{Name: "min_deposit_amount", Value: "10.00", Description: "Minimum deposit amount"},
	{Name: "auto_logout_minutes", Value: "30", Description: "Auto logout after minutes of inactivity"},
	{Name: "loan_deposit_percentage", Value: "10", Description: "Loan deposit percentage (10 = 10%)"},
	{Name: "company_bank_account", Value: "1234567890", Description: "Company bank account number for deposits"},
	{Name: "company_usdt_address", Value: "TXYZ1234567890abcdef", Description: "Company USDT wallet address"},
	{Name: "company_bank_name", Value: "TrustBank", Description: "Bank name for company account"},
	{Name: "company_account_name", Value: "TRUSTBANK LOAN SERVICES", Description: "Account name for company account"},
	{Name: "support_email", Value: "support@trustbank.com", Description: "Support email address"},
	{Name: "support_phone", Value: "+1 (800) 123-4567", Description: "Support phone number"},
	{Name: "min_loan_amount", Value: "100", Description: "Minimum loan amount ($)"},
	{Name: "max_loan_amount", Value: "100000", Description: "Maximum loan amount ($)"},
}
