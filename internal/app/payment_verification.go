/**
 * @description
 * This file implements the deposit payment verification queue. Verifying a
 * payment marks the loan's deposit paid and advances the application to
 * under_review only when it is still in its initial state; applications
 * already past intake keep their status.
 */

package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/trustbank/banking-service/internal/domain"
	"github.com/trustbank/banking-service/internal/store"
)

// PaymentQueue is the admin verification queue with its summary counts.
type PaymentQueue struct {
	Payments []domain.LoanPayment  `json:"payments"`
	Counts   *domain.PaymentCounts `json:"counts"`
}

// PaymentDetail is the admin view of one payment with its loan and trail.
type PaymentDetail struct {
	Payment       *domain.LoanPayment              `json:"payment"`
	Loan          *domain.LoanApplication          `json:"loan"`
	Verifications []domain.LoanPaymentVerification `json:"verifications"`
}

// VerifyPayment records one verification decision and publishes the outcome.
func (s *Service) VerifyPayment(ctx context.Context, staffID, paymentID uuid.UUID, verify bool, notes string) (*store.VerifyPaymentResult, error) {
	now := time.Now()
	result, err := s.repo.VerifyPayment(ctx, store.VerifyPaymentParams{
		PaymentID: paymentID,
		Verify:    verify,
		Notes:     notes,
		StaffID:   staffID,
		When:      now,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "loan.payment.verified", domain.PaymentVerifiedEvent{
		PaymentID: paymentID,
		LoanID:    result.Payment.LoanID,
		Verified:  verify,
		Notes:     notes,
		StaffID:   staffID,
		Timestamp: now,
	})
	if result.LoanAdvanced {
		s.publish(ctx, "loan.status.changed", domain.LoanStatusChangedEvent{
			LoanID:        result.Loan.ID,
			ApplicationID: result.Loan.ApplicationID,
			OldStatus:     result.PriorLoanStatus,
			NewStatus:     result.Loan.Status,
			ChangedBy:     staffID,
			Timestamp:     now,
		})
	}

	log.Printf("level=info component=app msg=\"payment verification recorded\" payment_id=%s verified=%v advanced=%v staff_id=%s",
		paymentID, verify, result.LoanAdvanced, staffID)
	return result, nil
}

// ListPayments assembles the verification queue for the given filter.
func (s *Service) ListPayments(ctx context.Context, filter domain.PaymentListFilter) (*PaymentQueue, error) {
	payments, err := s.repo.ListPayments(ctx, filter)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountPayments(ctx)
	if err != nil {
		return nil, err
	}
	return &PaymentQueue{Payments: payments, Counts: counts}, nil
}

// AdminPaymentDetail assembles the full admin view of one payment.
func (s *Service) AdminPaymentDetail(ctx context.Context, paymentID uuid.UUID) (*PaymentDetail, error) {
	payment, err := s.repo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	loan, err := s.repo.FindLoanByID(ctx, payment.LoanID)
	if err != nil {
		return nil, err
	}
	verifications, err := s.repo.ListVerifications(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return &PaymentDetail{
		Payment:       payment,
		Loan:          loan,
		Verifications: verifications,
	}, nil
}
