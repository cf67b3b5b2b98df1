/**
 * @description
 * This file implements the back-office loan workflow: status transitions, the
 * review queue and the application detail view. Approval is the only status
 * write with side effects: when the application is still under review it
 * credits the applicant's account with the principal minus the deposit and
 * appends the disbursement ledger entry, exactly once.
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

// LoanDetail is the admin view of one application: the record, the declared
// deposit payment when one exists, its verification trail and the referenced
// payment method.
type LoanDetail struct {
	Loan          *domain.LoanApplication          `json:"loan"`
	Payment       *domain.LoanPayment              `json:"payment,omitempty"`
	Verifications []domain.LoanPaymentVerification `json:"verifications,omitempty"`
	PaymentMethod *domain.PaymentMethod            `json:"payment_method,omitempty"`
}

// UpdateLoanStatus moves an application to a new status. Rejected is terminal.
// Approval runs the disbursement write; every other target is a plain status
// update.
func (s *Service) UpdateLoanStatus(ctx context.Context, staffID, loanID uuid.UUID, newStatus domain.LoanStatus) (*domain.LoanApplication, error) {
	if !domain.ValidLoanStatus(newStatus) {
		return nil, ErrInvalidLoanStatus
	}

	loan, err := s.repo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(loan.Status, newStatus) {
		return nil, ErrLoanStatusFinal
	}

	oldStatus := loan.Status
	disbursed := false

	if newStatus == domain.LoanStatusApproved {
		if s.policy.RequireVerifiedDeposit && !loan.DepositPaid {
			return nil, ErrDepositNotVerified
		}
		// The disbursement write expects the account row to exist.
		if _, err := s.EnsureAccount(ctx, loan.UserID); err != nil {
			return nil, err
		}
		result, err := s.repo.DisburseLoan(ctx, loanID)
		if err != nil {
			return nil, err
		}
		loan = result.Loan
		disbursed = result.Credited
		if disbursed {
			log.Printf("level=info component=app msg=\"loan disbursed\" application_id=%s amount=%s staff_id=%s",
				loan.ApplicationID, result.CreditAmount, staffID)
		}
	} else {
		loan, err = s.repo.UpdateLoanStatus(ctx, loanID, newStatus)
		if err != nil {
			return nil, err
		}
	}

	s.publish(ctx, "loan.status.changed", domain.LoanStatusChangedEvent{
		LoanID:        loan.ID,
		ApplicationID: loan.ApplicationID,
		OldStatus:     oldStatus,
		NewStatus:     loan.Status,
		Disbursed:     disbursed,
		ChangedBy:     staffID,
		Timestamp:     time.Now(),
	})

	log.Printf("level=info component=app msg=\"loan status changed\" application_id=%s old=%s new=%s staff_id=%s",
		loan.ApplicationID, oldStatus, loan.Status, staffID)
	return loan, nil
}

// AdminLoans lists applications for the review queue, optionally filtered by
// status.
func (s *Service) AdminLoans(ctx context.Context, status domain.LoanStatus) ([]domain.LoanApplication, error) {
	if status != "" && !domain.ValidLoanStatus(status) {
		return nil, ErrInvalidLoanStatus
	}
	return s.repo.ListLoans(ctx, status)
}

// LoanCounts computes the per-status totals shown above the review queue.
func (s *Service) LoanCounts(ctx context.Context) (*domain.LoanStatusCounts, error) {
	return s.repo.CountLoansByStatus(ctx)
}

// AdminLoanDetail assembles the full admin view of one application.
func (s *Service) AdminLoanDetail(ctx context.Context, loanID uuid.UUID) (*LoanDetail, error) {
	loan, err := s.repo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	detail := &LoanDetail{Loan: loan}

	payment, err := s.repo.FindPaymentByLoanID(ctx, loanID)
	if err != nil && err != store.ErrPaymentNotFound {
		return nil, err
	}
	if payment != nil {
		detail.Payment = payment
		verifications, err := s.repo.ListVerifications(ctx, payment.ID)
		if err != nil {
			return nil, err
		}
		detail.Verifications = verifications
	}

	if loan.PaymentMethodID != nil {
		method, err := s.repo.FindPaymentMethodByID(ctx, *loan.PaymentMethodID)
		if err != nil && err != store.ErrPaymentMethodNotFound {
			return nil, err
		}
		detail.PaymentMethod = method
	}

	return detail, nil
}
