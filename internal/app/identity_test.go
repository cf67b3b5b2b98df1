package app

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trustbank/banking-service/internal/domain"
	"github.com/trustbank/banking-service/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type identityRepoStub struct {
	store.Repository

	userByEmail *domain.User

	createdUser    *domain.User
	createdAccount *domain.Account

	postedEntry *domain.Transaction
	postedDelta decimal.Decimal
}

func (s *identityRepoStub) CreateUser(ctx context.Context, user *domain.User, profile *domain.UserProfile, account *domain.Account) error {
	s.createdUser = user
	s.createdAccount = account
	return nil
}

func (s *identityRepoStub) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if s.userByEmail == nil {
		return nil, store.ErrUserNotFound
	}
	return s.userByEmail, nil
}

func (s *identityRepoStub) EnsureAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	return account, nil
}

func (s *identityRepoStub) PostTransaction(ctx context.Context, entry *domain.Transaction, balanceDelta decimal.Decimal) error {
	s.postedEntry = entry
	s.postedDelta = balanceDelta
	return nil
}

func TestRegisterUser_CreatesCustomerWithAccount(t *testing.T) {
	repo := &identityRepoStub{}
	svc := NewService(repo, nil, nil, nil, DefaultPolicy())

	user, err := svc.RegisterUser(context.Background(), domain.RegisterRequest{
		Name:     "Ada Lovelace",
		Email:    " Ada@Example.com ",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.IsStaff {
		t.Fatal("registration must never grant staff access")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")) != nil {
		t.Fatal("expected stored hash to match the password")
	}
	if repo.createdAccount == nil {
		t.Fatal("expected an account to be created with the user")
	}
	if !repo.createdAccount.Balance.IsZero() {
		t.Fatalf("expected a zero opening balance, got %s", repo.createdAccount.Balance)
	}
	if repo.createdAccount.AccountNumber == "" {
		t.Fatal("expected a generated account number")
	}
}

func TestRegisterUser_BlocksReservedNames(t *testing.T) {
	svc := NewService(&identityRepoStub{}, nil, nil, nil, DefaultPolicy())

	for _, req := range []domain.RegisterRequest{
		{Name: "Admin", Email: "someone@example.com", Password: "longenough"},
		{Name: "Someone", Email: "ROOT@example.com", Password: "longenough"},
		{Name: " superuser ", Email: "other@example.com", Password: "longenough"},
		// Reserved identifiers lose to no other check, even email format.
		{Name: "Someone", Email: "admin", Password: "longenough"},
		{Name: "Someone", Email: " Administrator ", Password: "x"},
	} {
		if _, err := svc.RegisterUser(context.Background(), req); err != ErrReservedUsername {
			t.Fatalf("expected ErrReservedUsername for %q/%q, got %v", req.Name, req.Email, err)
		}
	}
}

func TestRegisterUser_ValidatesInput(t *testing.T) {
	svc := NewService(&identityRepoStub{}, nil, nil, nil, DefaultPolicy())

	_, err := svc.RegisterUser(context.Background(), domain.RegisterRequest{
		Name: "Ada", Email: "not-an-email", Password: "longenough",
	})
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected validation error for malformed email, got %v", err)
	}

	_, err = svc.RegisterUser(context.Background(), domain.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "short",
	})
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected validation error for short password, got %v", err)
	}
}

func TestAuthenticate_UniformFailure(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	active := &domain.User{
		ID:           uuid.New(),
		Email:        "ada@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}

	svc := NewService(&identityRepoStub{}, nil, nil, nil, DefaultPolicy())
	if _, err := svc.Authenticate(context.Background(), "ghost@example.com", "anything"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	svc = NewService(&identityRepoStub{userByEmail: active}, nil, nil, nil, DefaultPolicy())
	if _, err := svc.Authenticate(context.Background(), active.Email, "wrong password"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), active.Email, "correct horse"); err != nil {
		t.Fatalf("expected successful login, got %v", err)
	}

	inactive := *active
	inactive.IsActive = false
	svc = NewService(&identityRepoStub{userByEmail: &inactive}, nil, nil, nil, DefaultPolicy())
	if _, err := svc.Authenticate(context.Background(), active.Email, "correct horse"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for deactivated user, got %v", err)
	}
}

func TestAdminPostTransaction_AppliesSignedDelta(t *testing.T) {
	staffID := uuid.New()
	userID := uuid.New()
	repo := &identityRepoStub{}
	svc := NewService(repo, nil, nil, nil, DefaultPolicy())

	entry, err := svc.AdminPostTransaction(context.Background(), staffID, userID,
		domain.TransactionTypeDeposit, decimal.NewFromInt(150), "wire received")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !repo.postedDelta.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected a credit of 150, got %s", repo.postedDelta)
	}
	if entry.TransactionType != domain.TransactionTypeDeposit || entry.Status != "completed" {
		t.Fatalf("unexpected ledger entry %+v", entry)
	}
	if !strings.HasPrefix(entry.TransactionID, "TXN-") {
		t.Fatalf("expected a generated ledger reference, got %q", entry.TransactionID)
	}

	_, err = svc.AdminPostTransaction(context.Background(), staffID, userID,
		domain.TransactionTypeWithdrawal, decimal.NewFromInt(40), "correction")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !repo.postedDelta.Equal(decimal.NewFromInt(-40)) {
		t.Fatalf("expected a debit of 40, got %s", repo.postedDelta)
	}
}

func TestAdminPostTransaction_ValidatesInput(t *testing.T) {
	svc := NewService(&identityRepoStub{}, nil, nil, nil, DefaultPolicy())

	_, err := svc.AdminPostTransaction(context.Background(), uuid.New(), uuid.New(),
		domain.TransactionTypeLoanDisbursement, decimal.NewFromInt(10), "")
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected validation error for a non-manual type, got %v", err)
	}

	_, err = svc.AdminPostTransaction(context.Background(), uuid.New(), uuid.New(),
		domain.TransactionTypeDeposit, decimal.Zero, "")
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected validation error for a non-positive amount, got %v", err)
	}
}
