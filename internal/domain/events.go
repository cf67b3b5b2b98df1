/**
 * @description
 * This file defines the message payloads published to RabbitMQ when workflow
 * state changes. Downstream consumers (notification tooling, back-office
 * dashboards) subscribe to these on the trustbank.events topic exchange.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanSubmittedEvent is published when step 2 commits a new application.
type LoanSubmittedEvent struct {
	LoanID          uuid.UUID       `json:"loan_id"`
	ApplicationID   string          `json:"application_id"`
	UserID          uuid.UUID       `json:"user_id"`
	Amount          decimal.Decimal `json:"amount"`
	DepositRequired decimal.Decimal `json:"deposit_required"`
	Timestamp       time.Time       `json:"timestamp"`
}

// LoanStatusChangedEvent is published on every administrative status write.
type LoanStatusChangedEvent struct {
	LoanID        uuid.UUID  `json:"loan_id"`
	ApplicationID string     `json:"application_id"`
	OldStatus     LoanStatus `json:"old_status"`
	NewStatus     LoanStatus `json:"new_status"`
	Disbursed     bool       `json:"disbursed"`
	ChangedBy     uuid.UUID  `json:"changed_by"`
	Timestamp     time.Time  `json:"timestamp"`
}

// PaymentVerifiedEvent is published when staff verify or reject a payment.
type PaymentVerifiedEvent struct {
	PaymentID uuid.UUID `json:"payment_id"`
	LoanID    uuid.UUID `json:"loan_id"`
	Verified  bool      `json:"verified"`
	Notes     string    `json:"notes,omitempty"`
	StaffID   uuid.UUID `json:"staff_id"`
	Timestamp time.Time `json:"timestamp"`
}

// TransferEvent is published when a transfer is created or its status changes.
type TransferEvent struct {
	TransferID      uuid.UUID      `json:"transfer_id"`
	ReferenceNumber string         `json:"reference_number"`
	Status          TransferStatus `json:"status"`
	Timestamp       time.Time      `json:"timestamp"`
}

// ContactMessageEvent is published when the contact form is submitted.
type ContactMessageEvent struct {
	MessageID uuid.UUID `json:"message_id"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Timestamp time.Time `json:"timestamp"`
}
