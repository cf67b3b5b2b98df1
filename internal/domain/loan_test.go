package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDepositRequired(t *testing.T) {
	ten := decimal.NewFromInt(10)

	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{name: "even thousand", amount: "1000", want: "100"},
		{name: "minimum loan", amount: "100", want: "10"},
		{name: "rounds to two places", amount: "333.33", want: "33.33"},
		{name: "rounds half up", amount: "100.05", want: "10.01"},
		{name: "large principal", amount: "99999.99", want: "10000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			got := DepositRequired(amount, ten)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("DepositRequired(%s) = %s, want %s", tt.amount, got, tt.want)
			}
		})
	}
}

func TestValidLoanStatus(t *testing.T) {
	valid := []LoanStatus{
		LoanStatusPending, LoanStatusPendingPayment, LoanStatusUnderReview,
		LoanStatusApproved, LoanStatusRejected, LoanStatusDisbursed, LoanStatusCompleted,
	}
	for _, s := range valid {
		if !ValidLoanStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}

	invalid := []LoanStatus{"", "cancelled", "APPROVED", "done", "review"}
	for _, s := range invalid {
		if ValidLoanStatus(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from LoanStatus
		to   LoanStatus
		want bool
	}{
		{name: "pending to under_review", from: LoanStatusPending, to: LoanStatusUnderReview, want: true},
		{name: "under_review to approved", from: LoanStatusUnderReview, to: LoanStatusApproved, want: true},
		{name: "under_review to rejected", from: LoanStatusUnderReview, to: LoanStatusRejected, want: true},
		{name: "approved to disbursed", from: LoanStatusApproved, to: LoanStatusDisbursed, want: true},
		{name: "disbursed to completed", from: LoanStatusDisbursed, to: LoanStatusCompleted, want: true},
		{name: "rejected is terminal", from: LoanStatusRejected, to: LoanStatusPending, want: false},
		{name: "rejected cannot be approved", from: LoanStatusRejected, to: LoanStatusApproved, want: false},
		{name: "rejected to rejected is a no-op write", from: LoanStatusRejected, to: LoanStatusRejected, want: true},
		{name: "unknown target rejected", from: LoanStatusPending, to: "refunded", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Fatalf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestValidTransferStatus(t *testing.T) {
	for _, s := range []TransferStatus{
		TransferStatusPending, TransferStatusProcessing, TransferStatusCompleted,
		TransferStatusFailed, TransferStatusCancelled,
	} {
		if !ValidTransferStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []TransferStatus{"", "done", "Pending", "refunded"} {
		if ValidTransferStatus(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}
