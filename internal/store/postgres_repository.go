/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface for users, accounts and the ledger. Loan, transfer and registry
 * queries live in their own files alongside this one.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/trustbank/banking-service/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateUser inserts the user, profile and initial account in one transaction.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *domain.User, profile *domain.UserProfile, account *domain.Account) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	userQuery := `
		INSERT INTO users (id, email, full_name, password_hash, is_staff, is_active)
		VALUES ($1, lower(btrim($2)), $3, $4, $5, $6)
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, userQuery,
		user.ID, user.Email, user.FullName, user.PasswordHash, user.IsStaff, user.IsActive,
	).Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}

	profileQuery := `
		INSERT INTO user_profiles (user_id, phone, address, date_of_birth)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, profileQuery,
		profile.UserID, profile.Phone, profile.Address, profile.DateOfBirth,
	); err != nil {
		return err
	}

	accountQuery := `
		INSERT INTO accounts (id, user_id, account_number, account_type, balance, interest_rate, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.Exec(ctx, accountQuery,
		account.ID, account.UserID, account.AccountNumber, account.AccountType,
		account.Balance, account.InterestRate, account.IsActive,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// FindUserByEmail retrieves a user by their email address.
func (r *PostgresRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	query := `
		SELECT id, email, full_name, password_hash, is_staff, is_active, created_at
		FROM users
		WHERE email = lower(btrim($1))
	`
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.FullName, &user.PasswordHash,
		&user.IsStaff, &user.IsActive, &user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID retrieves a user by their ID.
func (r *PostgresRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `
		SELECT id, email, full_name, password_hash, is_staff, is_active, created_at
		FROM users
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.FullName, &user.PasswordHash,
		&user.IsStaff, &user.IsActive, &user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers retrieves every registered user, newest first.
func (r *PostgresRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	query := `
		SELECT id, email, full_name, password_hash, is_staff, is_active, created_at
		FROM users
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID, &user.Email, &user.FullName, &user.PasswordHash,
			&user.IsStaff, &user.IsActive, &user.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// FindAccountByUserID retrieves a user's account.
func (r *PostgresRepository) FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	query := `
		SELECT id, user_id, account_number, account_type, balance, interest_rate, is_active, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&account.ID, &account.UserID, &account.AccountNumber, &account.AccountType,
		&account.Balance, &account.InterestRate, &account.IsActive,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// EnsureAccount creates the account if the user has none yet and returns the
// winning row. Concurrent callers race on the user_id unique constraint; the
// loser's insert is a no-op and both observe the same account.
func (r *PostgresRepository) EnsureAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	insertQuery := `
		INSERT INTO accounts (id, user_id, account_number, account_type, balance, interest_rate, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, insertQuery,
		account.ID, account.UserID, account.AccountNumber, account.AccountType,
		account.Balance, account.InterestRate, account.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return r.FindAccountByUserID(ctx, account.UserID)
}

// SetAccountBalance overwrites an account's balance. Administrative use only;
// normal balance changes go through PostTransaction.
func (r *PostgresRepository) SetAccountBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	query := `UPDATE accounts SET balance = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.Exec(ctx, query, balance, accountID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// PostTransaction applies a signed balance delta and appends the ledger entry
// atomically. The account row is locked for the duration of the transaction.
func (r *PostgresRepository) PostTransaction(ctx context.Context, entry *domain.Transaction, balanceDelta decimal.Decimal) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var balance decimal.Decimal
	err = tx.QueryRow(ctx, "SELECT balance FROM accounts WHERE id = $1 FOR UPDATE", entry.AccountID).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrAccountNotFound
		}
		return err
	}

	_, err = tx.Exec(ctx,
		"UPDATE accounts SET balance = balance + $1, updated_at = NOW() WHERE id = $2",
		balanceDelta, entry.AccountID,
	)
	if err != nil {
		return err
	}

	insertQuery := `
		INSERT INTO transactions (id, transaction_id, account_id, transaction_type, amount, description, recipient_account, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, insertQuery,
		entry.ID, entry.TransactionID, entry.AccountID, entry.TransactionType,
		entry.Amount, entry.Description, entry.RecipientAccount, entry.Status,
	).Scan(&entry.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReference
		}
		return err
	}

	return tx.Commit(ctx)
}

// ListTransactions retrieves ledger entries for an account, newest first.
func (r *PostgresRepository) ListTransactions(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	query := `
		SELECT id, transaction_id, account_id, transaction_type, amount,
		       COALESCE(description, '') AS description,
		       COALESCE(recipient_account, '') AS recipient_account,
		       status, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var entry domain.Transaction
		if err := rows.Scan(
			&entry.ID, &entry.TransactionID, &entry.AccountID, &entry.TransactionType,
			&entry.Amount, &entry.Description, &entry.RecipientAccount,
			&entry.Status, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, entry)
	}
	return transactions, rows.Err()
}
