package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/trustbank/banking-service/internal/domain"
	"github.com/trustbank/banking-service/internal/store"
)

type verifyRepoStub struct {
	store.Repository

	params store.VerifyPaymentParams
	result *store.VerifyPaymentResult

	// When loan is set, the stub mirrors the repository's write semantics:
	// a positive decision marks the deposit paid and advances the loan only
	// out of its intake statuses.
	loan *domain.LoanApplication
}

func (s *verifyRepoStub) VerifyPayment(ctx context.Context, params store.VerifyPaymentParams) (*store.VerifyPaymentResult, error) {
	s.params = params
	if s.loan != nil {
		result := &store.VerifyPaymentResult{
			Payment:         &domain.LoanPayment{ID: params.PaymentID, LoanID: s.loan.ID, Verified: params.Verify},
			Loan:            s.loan,
			PriorLoanStatus: s.loan.Status,
		}
		if params.Verify {
			s.loan.DepositPaid = true
			if s.loan.Status == domain.LoanStatusPending || s.loan.Status == domain.LoanStatusPendingPayment {
				s.loan.Status = domain.LoanStatusUnderReview
				result.LoanAdvanced = true
			}
		}
		return result, nil
	}
	if s.result == nil {
		return nil, store.ErrPaymentNotFound
	}
	return s.result, nil
}

type recordingPublisher struct {
	keys   []string
	events []interface{}
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, body interface{}) error {
	p.keys = append(p.keys, routingKey)
	p.events = append(p.events, body)
	return nil
}

func (p *recordingPublisher) Close() {}

func TestVerifyPayment_PassesDecisionThrough(t *testing.T) {
	loanID := uuid.New()
	paymentID := uuid.New()
	staffID := uuid.New()
	repo := &verifyRepoStub{
		result: &store.VerifyPaymentResult{
			Payment:      &domain.LoanPayment{ID: paymentID, LoanID: loanID, Verified: true},
			Loan:         &domain.LoanApplication{ID: loanID, Status: domain.LoanStatusUnderReview},
			LoanAdvanced: true,
		},
	}
	svc := NewService(repo, nil, nil, nil, DefaultPolicy())

	result, err := svc.VerifyPayment(context.Background(), staffID, paymentID, true, "receipt matches")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if repo.params.PaymentID != paymentID || !repo.params.Verify {
		t.Fatal("expected the decision to reach the repository unchanged")
	}
	if repo.params.StaffID != staffID {
		t.Fatal("expected the verifying staff member to be recorded")
	}
	if repo.params.Notes != "receipt matches" {
		t.Fatalf("expected notes to be recorded, got %q", repo.params.Notes)
	}
	if !result.LoanAdvanced {
		t.Fatal("expected the advance flag to surface to the caller")
	}
}

func TestVerifyPayment_UnknownPayment(t *testing.T) {
	svc := NewService(&verifyRepoStub{}, nil, nil, nil, DefaultPolicy())

	_, err := svc.VerifyPayment(context.Background(), uuid.New(), uuid.New(), false, "no matching wire")
	if err != store.ErrPaymentNotFound {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestVerifyPayment_AdvancesOnlyIntakeLoans(t *testing.T) {
	tests := []struct {
		name        string
		status      domain.LoanStatus
		wantAdvance bool
	}{
		{"pending advances", domain.LoanStatusPending, true},
		{"pending_payment advances", domain.LoanStatusPendingPayment, true},
		{"under_review keeps status", domain.LoanStatusUnderReview, false},
		{"approved keeps status", domain.LoanStatusApproved, false},
		{"rejected keeps status", domain.LoanStatusRejected, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &verifyRepoStub{
				loan: &domain.LoanApplication{ID: uuid.New(), ApplicationID: "LOAN-x", Status: tt.status},
			}
			svc := NewService(repo, nil, nil, nil, DefaultPolicy())

			result, err := svc.VerifyPayment(context.Background(), uuid.New(), uuid.New(), true, "")
			if err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
			if result.LoanAdvanced != tt.wantAdvance {
				t.Fatalf("expected advanced=%t from %s, got %t", tt.wantAdvance, tt.status, result.LoanAdvanced)
			}
			if tt.wantAdvance && result.Loan.Status != domain.LoanStatusUnderReview {
				t.Fatalf("expected under_review, got %s", result.Loan.Status)
			}
			if !tt.wantAdvance && result.Loan.Status != tt.status {
				t.Fatalf("expected status %s to be kept, got %s", tt.status, result.Loan.Status)
			}
			if !result.Loan.DepositPaid {
				t.Fatal("expected the deposit to be marked paid either way")
			}
		})
	}
}

func TestVerifyPayment_PublishesActualPriorStatus(t *testing.T) {
	repo := &verifyRepoStub{
		loan: &domain.LoanApplication{ID: uuid.New(), ApplicationID: "LOAN-x", Status: domain.LoanStatusPendingPayment},
	}
	events := &recordingPublisher{}
	svc := NewService(repo, nil, nil, events, DefaultPolicy())

	if _, err := svc.VerifyPayment(context.Background(), uuid.New(), uuid.New(), true, ""); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	var changed *domain.LoanStatusChangedEvent
	for i, key := range events.keys {
		if key == "loan.status.changed" {
			event := events.events[i].(domain.LoanStatusChangedEvent)
			changed = &event
		}
	}
	if changed == nil {
		t.Fatal("expected a loan.status.changed event after the advance")
	}
	if changed.OldStatus != domain.LoanStatusPendingPayment {
		t.Fatalf("expected the recorded prior status, got %s", changed.OldStatus)
	}
	if changed.NewStatus != domain.LoanStatusUnderReview {
		t.Fatalf("expected under_review as the new status, got %s", changed.NewStatus)
	}
}

func TestVerifyPayment_NoStatusEventWithoutAdvance(t *testing.T) {
	repo := &verifyRepoStub{
		loan: &domain.LoanApplication{ID: uuid.New(), ApplicationID: "LOAN-x", Status: domain.LoanStatusApproved},
	}
	events := &recordingPublisher{}
	svc := NewService(repo, nil, nil, events, DefaultPolicy())

	if _, err := svc.VerifyPayment(context.Background(), uuid.New(), uuid.New(), true, ""); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	for _, key := range events.keys {
		if key == "loan.status.changed" {
			t.Fatal("did not expect a status event when the loan kept its status")
		}
	}
	if len(events.keys) == 0 || events.keys[0] != "loan.payment.verified" {
		t.Fatalf("expected the verification event, got %v", events.keys)
	}
}
