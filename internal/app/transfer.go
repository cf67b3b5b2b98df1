/**
 * @description
 * This file implements money transfers. Transfers are records of intent
 * tracked through a status workflow for back-office processing; no status
 * change moves money between accounts. The total is computed exactly once at
 * creation as amount plus fee.
 */

package app

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trustbank/banking-service/internal/domain"
	"github.com/trustbank/banking-service/internal/store"
)

func validTransferPaymentMethod(m string) bool {
	switch m {
	case domain.TransferPaymentBankTransfer, domain.TransferPaymentMobileMoney,
		domain.TransferPaymentCrypto, domain.TransferPaymentPayPal, domain.TransferPaymentOther:
		return true
	}
	return false
}

// CreateTransfer validates and records a new transfer in the pending state.
func (s *Service) CreateTransfer(ctx context.Context, userID uuid.UUID, input domain.CreateTransferInput) (*domain.MoneyTransfer, error) {
	if !input.Amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if strings.TrimSpace(input.RecipientName) == "" {
		return nil, &ValidationError{Field: "recipient_name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(input.RecipientCountry) == "" {
		return nil, &ValidationError{Field: "recipient_country", Reason: "must not be empty"}
	}
	if !validTransferPaymentMethod(input.PaymentMethod) {
		return nil, &ValidationError{Field: "payment_method", Reason: "unknown payment method"}
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "USD"
	}

	sender, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	senderName := strings.TrimSpace(input.SenderName)
	if senderName == "" {
		senderName = sender.FullName
	}
	senderEmail := strings.TrimSpace(input.SenderEmail)
	if senderEmail == "" {
		senderEmail = sender.Email
	}

	now := time.Now()
	fee := s.policy.TransferFee
	transfer := &domain.MoneyTransfer{
		ID:          uuid.New(),
		SenderID:    userID,
		SenderName:  senderName,
		SenderEmail: senderEmail,
		SenderPhone: strings.TrimSpace(input.SenderPhone),

		RecipientName:          strings.TrimSpace(input.RecipientName),
		RecipientEmail:         strings.TrimSpace(input.RecipientEmail),
		RecipientPhone:         strings.TrimSpace(input.RecipientPhone),
		RecipientCountry:       strings.TrimSpace(input.RecipientCountry),
		RecipientBankName:      strings.TrimSpace(input.RecipientBankName),
		RecipientAccountNumber: strings.TrimSpace(input.RecipientAccountNumber),
		RecipientRoutingNumber: strings.TrimSpace(input.RecipientRoutingNumber),

		Amount:          input.Amount,
		Currency:        currency,
		TransferType:    strings.TrimSpace(input.TransferType),
		PaymentMethod:   input.PaymentMethod,
		Purpose:         strings.TrimSpace(input.Purpose),
		ReferenceNumber: domain.NewTransferReference(userID, now),

		Status:      domain.TransferStatusPending,
		TransferFee: fee,
		TotalAmount: input.Amount.Add(fee),
	}

	err = s.repo.CreateTransfer(ctx, transfer)
	if err == store.ErrDuplicateReference {
		// Same sender, same second. Regenerate off the row id and retry once.
		transfer.ReferenceNumber = domain.NewTransferReference(transfer.ID, now)
		err = s.repo.CreateTransfer(ctx, transfer)
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "transfer.created", domain.TransferEvent{
		TransferID:      transfer.ID,
		ReferenceNumber: transfer.ReferenceNumber,
		Status:          transfer.Status,
		Timestamp:       now,
	})

	log.Printf("level=info component=app msg=\"transfer created\" reference=%s user_id=%s", transfer.ReferenceNumber, userID)
	return transfer, nil
}

// UserTransfers retrieves a user's transfers, newest first.
func (s *Service) UserTransfers(ctx context.Context, userID uuid.UUID, limit int) ([]domain.MoneyTransfer, error) {
	return s.repo.ListTransfersBySenderID(ctx, userID, limit)
}

// TransferForUser retrieves a single transfer with its history, refusing
// access to records the caller does not own.
func (s *Service) TransferForUser(ctx context.Context, userID, transferID uuid.UUID) (*domain.MoneyTransfer, []domain.TransferStatusHistory, error) {
	transfer, err := s.repo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, nil, err
	}
	if transfer.SenderID != userID {
		return nil, nil, ErrNotAuthorized
	}
	history, err := s.repo.ListTransferHistory(ctx, transferID)
	if err != nil {
		return nil, nil, err
	}
	return transfer, history, nil
}

// AdminTransfers lists transfers for the back office, optionally filtered by
// status.
func (s *Service) AdminTransfers(ctx context.Context, status domain.TransferStatus) ([]domain.MoneyTransfer, error) {
	if status != "" && !domain.ValidTransferStatus(status) {
		return nil, ErrInvalidTransferStatus
	}
	return s.repo.ListTransfers(ctx, status)
}

// AdminTransferDetail retrieves one transfer with its status history.
func (s *Service) AdminTransferDetail(ctx context.Context, transferID uuid.UUID) (*domain.MoneyTransfer, []domain.TransferStatusHistory, error) {
	transfer, err := s.repo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.repo.ListTransferHistory(ctx, transferID)
	if err != nil {
		return nil, nil, err
	}
	return transfer, history, nil
}

// UpdateTransferStatus records a back-office status decision and appends the
// history entry.
func (s *Service) UpdateTransferStatus(ctx context.Context, staffID, transferID uuid.UUID, status domain.TransferStatus, notes string) (*domain.MoneyTransfer, error) {
	if !domain.ValidTransferStatus(status) {
		return nil, ErrInvalidTransferStatus
	}

	now := time.Now()
	transfer, err := s.repo.UpdateTransferStatus(ctx, store.UpdateTransferStatusParams{
		TransferID: transferID,
		Status:     status,
		Notes:      notes,
		StaffID:    staffID,
		When:       now,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "transfer.status.changed", domain.TransferEvent{
		TransferID:      transfer.ID,
		ReferenceNumber: transfer.ReferenceNumber,
		Status:          transfer.Status,
		Timestamp:       now,
	})

	log.Printf("level=info component=app msg=\"transfer status changed\" reference=%s status=%s staff_id=%s",
		transfer.ReferenceNumber, status, staffID)
	return transfer, nil
}
