/**
 * @description
 * This file implements the administrator-curated payment method registry,
 * runtime system settings and the public contact form.
 */

package app

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trustbank/banking-service/internal/domain"
)

// PaymentMethodInput is the admin payload for creating or updating a
// registry entry.
type PaymentMethodInput struct {
	Name          string `json:"name"`
	PaymentType   string `json:"payment_type"`
	Instructions  string `json:"instructions"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	WalletAddress string `json:"wallet_address"`
	IsActive      bool   `json:"is_active"`
}

func validatePaymentMethodInput(input PaymentMethodInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !domain.ValidPaymentMethodType(input.PaymentType) {
		return &ValidationError{Field: "payment_type", Reason: "unknown payment type"}
	}
	return nil
}

// CreatePaymentMethod adds a registry entry.
func (s *Service) CreatePaymentMethod(ctx context.Context, input PaymentMethodInput) (*domain.PaymentMethod, error) {
	if err := validatePaymentMethodInput(input); err != nil {
		return nil, err
	}

	method := &domain.PaymentMethod{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(input.Name),
		PaymentType:   input.PaymentType,
		Instructions:  input.Instructions,
		AccountName:   strings.TrimSpace(input.AccountName),
		AccountNumber: strings.TrimSpace(input.AccountNumber),
		WalletAddress: strings.TrimSpace(input.WalletAddress),
		IsActive:      input.IsActive,
	}
	if err := s.repo.CreatePaymentMethod(ctx, method); err != nil {
		return nil, err
	}

	log.Printf("level=info component=app msg=\"payment method created\" id=%s name=%q", method.ID, method.Name)
	return method, nil
}

// UpdatePaymentMethod overwrites a registry entry. Deactivating a method
// leaves existing applications that reference it untouched.
func (s *Service) UpdatePaymentMethod(ctx context.Context, id uuid.UUID, input PaymentMethodInput) (*domain.PaymentMethod, error) {
	if err := validatePaymentMethodInput(input); err != nil {
		return nil, err
	}

	method := &domain.PaymentMethod{
		ID:            id,
		Name:          strings.TrimSpace(input.Name),
		PaymentType:   input.PaymentType,
		Instructions:  input.Instructions,
		AccountName:   strings.TrimSpace(input.AccountName),
		AccountNumber: strings.TrimSpace(input.AccountNumber),
		WalletAddress: strings.TrimSpace(input.WalletAddress),
		IsActive:      input.IsActive,
	}
	if err := s.repo.UpdatePaymentMethod(ctx, method); err != nil {
		return nil, err
	}
	return s.repo.FindPaymentMethodByID(ctx, id)
}

// DeletePaymentMethod removes a registry entry.
func (s *Service) DeletePaymentMethod(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeletePaymentMethod(ctx, id)
}

// AdminPaymentMethods lists every registry entry, active or not.
func (s *Service) AdminPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	return s.repo.ListPaymentMethods(ctx, false)
}

// GetPaymentMethod retrieves a single registry entry.
func (s *Service) GetPaymentMethod(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error) {
	return s.repo.FindPaymentMethodByID(ctx, id)
}

// ListSettings retrieves every system setting.
func (s *Service) ListSettings(ctx context.Context) ([]domain.SystemSetting, error) {
	return s.repo.ListSettings(ctx)
}

// UpdateSetting writes one system setting.
func (s *Service) UpdateSetting(ctx context.Context, name, value, description string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	err := s.repo.UpsertSetting(ctx, domain.SystemSetting{
		Name:        strings.TrimSpace(name),
		Value:       value,
		Description: description,
	})
	if err != nil {
		return err
	}
	log.Printf("level=info component=app msg=\"system setting updated\" name=%s", name)
	return nil
}

// SubmitContactMessage records an inbound support message and notifies the
// back office.
func (s *Service) SubmitContactMessage(ctx context.Context, name, email, subject, message string) (*domain.ContactMessage, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !strings.Contains(email, "@") {
		return nil, &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if strings.TrimSpace(message) == "" {
		return nil, &ValidationError{Field: "message", Reason: "must not be empty"}
	}

	record := &domain.ContactMessage{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Subject: strings.TrimSpace(subject),
		Message: strings.TrimSpace(message),
	}
	if err := s.repo.CreateContactMessage(ctx, record); err != nil {
		return nil, err
	}

	s.publish(ctx, "contact.message.received", domain.ContactMessageEvent{
		MessageID: record.ID,
		Email:     record.Email,
		Subject:   record.Subject,
		Timestamp: time.Now(),
	})
	return record, nil
}

// ListContactMessages retrieves support messages for the back office.
func (s *Service) ListContactMessages(ctx context.Context) ([]domain.ContactMessage, error) {
	return s.repo.ListContactMessages(ctx)
}

// ResolveContactMessage flips the resolved flag on a support message.
func (s *Service) ResolveContactMessage(ctx context.Context, id uuid.UUID, resolved bool) error {
	return s.repo.ResolveContactMessage(ctx, id, resolved)
}
