package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trustbank/banking-service/internal/domain"
	"github.com/trustbank/banking-service/internal/store"
)

type transferRepoStub struct {
	store.Repository

	user *domain.User

	created         *domain.MoneyTransfer
	createCalls     int
	failFirstCreate bool

	updateParams store.UpdateTransferStatusParams
}

func (s *transferRepoStub) FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if s.user == nil {
		return nil, store.ErrUserNotFound
	}
	return s.user, nil
}

func (s *transferRepoStub) CreateTransfer(ctx context.Context, t *domain.MoneyTransfer) error {
	s.createCalls++
	if s.failFirstCreate && s.createCalls == 1 {
		return store.ErrDuplicateReference
	}
	s.created = t
	return nil
}

func (s *transferRepoStub) UpdateTransferStatus(ctx context.Context, params store.UpdateTransferStatusParams) (*domain.MoneyTransfer, error) {
	s.updateParams = params
	return &domain.MoneyTransfer{ID: params.TransferID, Status: params.Status}, nil
}

func transferSender() *domain.User {
	return &domain.User{
		ID:       uuid.New(),
		Email:    "ada@example.com",
		FullName: "Ada Lovelace",
		IsActive: true,
	}
}

func TestCreateTransfer_ComputesTotalOnce(t *testing.T) {
	sender := transferSender()
	repo := &transferRepoStub{user: sender}
	policy := DefaultPolicy()
	policy.TransferFee = decimal.NewFromFloat(2.50)
	svc := NewService(repo, nil, nil, nil, policy)

	transfer, err := svc.CreateTransfer(context.Background(), sender.ID, domain.CreateTransferInput{
		RecipientName:    "Grace Hopper",
		RecipientCountry: "US",
		Amount:           decimal.NewFromInt(200),
		PaymentMethod:    domain.TransferPaymentBankTransfer,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if transfer.Status != domain.TransferStatusPending {
		t.Fatalf("expected pending status, got %s", transfer.Status)
	}
	if !transfer.TotalAmount.Equal(decimal.NewFromFloat(202.50)) {
		t.Fatalf("expected total 202.50, got %s", transfer.TotalAmount)
	}
	if transfer.Currency != "USD" {
		t.Fatalf("expected USD default currency, got %s", transfer.Currency)
	}
	if transfer.SenderName != "Ada Lovelace" || transfer.SenderEmail != "ada@example.com" {
		t.Fatal("expected sender details to default from the user record")
	}
	if transfer.ReferenceNumber == "" {
		t.Fatal("expected a generated transfer reference")
	}
}

func TestCreateTransfer_RejectsBadInput(t *testing.T) {
	sender := transferSender()
	svc := NewService(&transferRepoStub{user: sender}, nil, nil, nil, DefaultPolicy())

	_, err := svc.CreateTransfer(context.Background(), sender.ID, domain.CreateTransferInput{
		RecipientName:    "Grace Hopper",
		RecipientCountry: "US",
		Amount:           decimal.NewFromInt(-5),
		PaymentMethod:    domain.TransferPaymentBankTransfer,
	})
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected validation error for negative amount, got %v", err)
	}

	_, err = svc.CreateTransfer(context.Background(), sender.ID, domain.CreateTransferInput{
		RecipientName:    "Grace Hopper",
		RecipientCountry: "US",
		Amount:           decimal.NewFromInt(50),
		PaymentMethod:    "carrier_pigeon",
	})
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected validation error for unknown payment method, got %v", err)
	}
}

func TestCreateTransfer_RetriesOnceOnReferenceCollision(t *testing.T) {
	sender := transferSender()
	repo := &transferRepoStub{user: sender, failFirstCreate: true}
	svc := NewService(repo, nil, nil, nil, DefaultPolicy())

	transfer, err := svc.CreateTransfer(context.Background(), sender.ID, domain.CreateTransferInput{
		RecipientName:    "Grace Hopper",
		RecipientCountry: "US",
		Amount:           decimal.NewFromInt(75),
		PaymentMethod:    domain.TransferPaymentMobileMoney,
	})
	if err != nil {
		t.Fatalf("expected collision retry to succeed, got %v", err)
	}
	if repo.createCalls != 2 {
		t.Fatalf("expected exactly two create attempts, got %d", repo.createCalls)
	}
	if transfer.ReferenceNumber == "" {
		t.Fatal("expected a regenerated transfer reference")
	}
}

func TestUpdateTransferStatus_RejectsUnknownStatus(t *testing.T) {
	svc := NewService(&transferRepoStub{}, nil, nil, nil, DefaultPolicy())

	_, err := svc.UpdateTransferStatus(context.Background(), uuid.New(), uuid.New(), "teleported", "")
	if err != ErrInvalidTransferStatus {
		t.Fatalf("expected ErrInvalidTransferStatus, got %v", err)
	}
}

func TestUpdateTransferStatus_RecordsDecision(t *testing.T) {
	repo := &transferRepoStub{}
	svc := NewService(repo, nil, nil, nil, DefaultPolicy())
	staffID := uuid.New()
	transferID := uuid.New()

	transfer, err := svc.UpdateTransferStatus(context.Background(), staffID, transferID, domain.TransferStatusCompleted, "wired out")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if transfer.Status != domain.TransferStatusCompleted {
		t.Fatalf("expected completed status, got %s", transfer.Status)
	}
	if repo.updateParams.StaffID != staffID || repo.updateParams.Notes != "wired out" {
		t.Fatal("expected the processing decision to reach the repository unchanged")
	}
}
