/**
 * @description
 * This file implements registration, login and account access. Every customer
 * owns exactly one account, created at registration and recreated lazily if a
 * legacy user predates the accounts table.
 */

package app

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trustbank/banking-service/internal/domain"
	"github.com/trustbank/banking-service/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// RegisterUser validates the registration request, hashes the password and
// creates the user, profile and initial account in one write. Reserved names
// are rejected before anything is persisted.
func (s *Service) RegisterUser(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)

	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	// The deny-list wins over format validation: a reserved identifier is
	// refused as reserved even when it is not a well-formed email.
	if isReservedName(name) || isReservedName(email) {
		return nil, ErrReservedUsername
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return nil, &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if isReservedName(email[:at]) {
		return nil, ErrReservedUsername
	}
	if len(req.Password) < 8 {
		return nil, &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		FullName:     name,
		PasswordHash: string(hash),
		IsStaff:      false,
		IsActive:     true,
	}
	profile := &domain.UserProfile{
		UserID: user.ID,
		Phone:  strings.TrimSpace(req.Phone),
	}
	account := &domain.Account{
		ID:            uuid.New(),
		UserID:        user.ID,
		AccountNumber: domain.NewAccountNumber(time.Now()),
		AccountType:   domain.AccountTypeChecking,
		Balance:       decimal.Zero,
		InterestRate:  decimal.Zero,
		IsActive:      true,
	}

	if err := s.repo.CreateUser(ctx, user, profile, account); err != nil {
		return nil, err
	}

	log.Printf("level=info component=app msg=\"user registered\" user_id=%s", user.ID)
	return user, nil
}

// Authenticate checks a login attempt. Unknown emails, wrong passwords,
// reserved identifiers and deactivated users all produce the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if at := strings.Index(normalized, "@"); at > 0 && isReservedName(normalized[:at]) {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if err == store.ErrUserNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser retrieves a user by id.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.repo.FindUserByID(ctx, userID)
}

// ListUsers retrieves every registered user for the admin list.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

// EnsureAccount returns the user's account, creating it with a zero balance
// when none exists yet. Concurrent first accesses converge on one account.
func (s *Service) EnsureAccount(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	candidate := &domain.Account{
		ID:            uuid.New(),
		UserID:        userID,
		AccountNumber: domain.NewAccountNumber(time.Now()),
		AccountType:   domain.AccountTypeChecking,
		Balance:       decimal.Zero,
		InterestRate:  decimal.Zero,
		IsActive:      true,
	}
	return s.repo.EnsureAccount(ctx, candidate)
}

// Dashboard assembles the records shown on a customer's landing page.
func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID) (*domain.Dashboard, error) {
	account, err := s.EnsureAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.repo.ListTransactions(ctx, account.ID, 10)
	if err != nil {
		return nil, err
	}
	loans, err := s.repo.ListLoansByUserID(ctx, userID, 5)
	if err != nil {
		return nil, err
	}
	transfers, err := s.repo.ListTransfersBySenderID(ctx, userID, 5)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPaymentsByUserID(ctx, userID, 5)
	if err != nil {
		return nil, err
	}

	return &domain.Dashboard{
		Account:      account,
		Transactions: transactions,
		Loans:        loans,
		Transfers:    transfers,
		Payments:     payments,
	}, nil
}

// AccountTransactions retrieves a user's recent ledger entries.
func (s *Service) AccountTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Transaction, error) {
	account, err := s.EnsureAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, account.ID, limit)
}

// AdminSetBalance overwrites a customer's balance. This is the back-office
// correction path and bypasses the ledger.
func (s *Service) AdminSetBalance(ctx context.Context, staffID, userID uuid.UUID, balance decimal.Decimal) (*domain.Account, error) {
	if balance.IsNegative() {
		return nil, &ValidationError{Field: "balance", Reason: "must not be negative"}
	}

	account, err := s.EnsureAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetAccountBalance(ctx, account.ID, balance); err != nil {
		return nil, err
	}

	log.Printf("level=info component=app msg=\"balance overridden\" account_id=%s staff_id=%s", account.ID, staffID)
	return s.repo.FindAccountByUserID(ctx, userID)
}

// AdminPostTransaction records a manual deposit or withdrawal against a
// customer's account: the ledger entry and the balance change commit together.
// This is the audited counterpart to AdminSetBalance.
func (s *Service) AdminPostTransaction(ctx context.Context, staffID, userID uuid.UUID, txType string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if txType != domain.TransactionTypeDeposit && txType != domain.TransactionTypeWithdrawal {
		return nil, &ValidationError{Field: "transaction_type", Reason: "must be deposit or withdrawal"}
	}
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	account, err := s.EnsureAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := &domain.Transaction{
		ID:              uuid.New(),
		TransactionID:   domain.NewTransactionReference(time.Now()),
		AccountID:       account.ID,
		TransactionType: txType,
		Amount:          amount,
		Description:     strings.TrimSpace(description),
		Status:          "completed",
	}
	delta := amount
	if txType == domain.TransactionTypeWithdrawal {
		delta = amount.Neg()
	}
	if err := s.repo.PostTransaction(ctx, entry, delta); err != nil {
		return nil, err
	}

	log.Printf("level=info component=app msg=\"transaction posted\" account_id=%s type=%s amount=%s staff_id=%s",
		account.ID, txType, amount, staffID)
	return entry, nil
}
