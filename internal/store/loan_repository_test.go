package store

import (
	"testing"

	"github.com/trustbank/banking-service/internal/domain"
)

func TestLoanAwaitingDeposit(t *testing.T) {
	tests := []struct {
		status domain.LoanStatus
		want   bool
	}{
		{domain.LoanStatusPending, true},
		{domain.LoanStatusPendingPayment, true},
		{domain.LoanStatusUnderReview, false},
		{domain.LoanStatusApproved, false},
		{domain.LoanStatusRejected, false},
		{domain.LoanStatusDisbursed, false},
		{domain.LoanStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := loanAwaitingDeposit(tt.status); got != tt.want {
				t.Fatalf("expected %t for %s, got %t", tt.want, tt.status, got)
			}
		})
	}
}
