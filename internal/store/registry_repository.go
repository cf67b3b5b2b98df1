/**
 * @description
 * This file provides the PostgreSQL queries for the payment method registry,
 * contact messages and system settings.
 */

package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/trustbank/banking-service/internal/domain"
)

// CreatePaymentMethod inserts a new registry entry.
func (r *PostgresRepository) CreatePaymentMethod(ctx context.Context, m *domain.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (id, name, payment_type, instructions, account_name, account_number, wallet_address, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		m.ID, m.Name, m.PaymentType, m.Instructions,
		m.AccountName, m.AccountNumber, m.WalletAddress, m.IsActive,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
}

// UpdatePaymentMethod overwrites an existing registry entry.
func (r *PostgresRepository) UpdatePaymentMethod(ctx context.Context, m *domain.PaymentMethod) error {
	query := `
		UPDATE payment_methods
		SET name = $2, payment_type = $3, instructions = $4, account_name = $5,
		    account_number = $6, wallet_address = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query,
		m.ID, m.Name, m.PaymentType, m.Instructions,
		m.AccountName, m.AccountNumber, m.WalletAddress, m.IsActive,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPaymentMethodNotFound
	}
	return nil
}

// DeletePaymentMethod removes a registry entry. Loan rows referencing it keep
// their payment_method_id; the foreign key is ON DELETE SET NULL.
func (r *PostgresRepository) DeletePaymentMethod(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, "DELETE FROM payment_methods WHERE id = $1", id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPaymentMethodNotFound
	}
	return nil
}

// FindPaymentMethodByID retrieves a single registry entry, active or not.
func (r *PostgresRepository) FindPaymentMethodByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	query := `
		SELECT id, name, payment_type, COALESCE(instructions, '') AS instructions,
		       COALESCE(account_name, '') AS account_name,
		       COALESCE(account_number, '') AS account_number,
		       COALESCE(wallet_address, '') AS wallet_address,
		       is_active, created_at, updated_at
		FROM payment_methods
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.PaymentType, &m.Instructions,
		&m.AccountName, &m.AccountNumber, &m.WalletAddress,
		&m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListPaymentMethods retrieves registry entries. Applicant-facing callers pass
// activeOnly=true; the admin list sees everything.
func (r *PostgresRepository) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]domain.PaymentMethod, error) {
	query := `
		SELECT id, name, payment_type, COALESCE(instructions, '') AS instructions,
		       COALESCE(account_name, '') AS account_name,
		       COALESCE(account_number, '') AS account_number,
		       COALESCE(wallet_address, '') AS wallet_address,
		       is_active, created_at, updated_at
		FROM payment_methods
	`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []domain.PaymentMethod
	for rows.Next() {
		var m domain.PaymentMethod
		if err := rows.Scan(
			&m.ID, &m.Name, &m.PaymentType, &m.Instructions,
			&m.AccountName, &m.AccountNumber, &m.WalletAddress,
			&m.IsActive, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

// CreateContactMessage inserts an inbound support message.
func (r *PostgresRepository) CreateContactMessage(ctx context.Context, m *domain.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (id, name, email, subject, message, is_resolved)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query, m.ID, m.Name, m.Email, m.Subject, m.Message).Scan(&m.CreatedAt)
}

// ResolveContactMessage flips the resolved flag on a support message.
func (r *PostgresRepository) ResolveContactMessage(ctx context.Context, id uuid.UUID, resolved bool) error {
	result, err := r.db.Exec(ctx,
		"UPDATE contact_messages SET is_resolved = $2 WHERE id = $1", id, resolved,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// ListContactMessages retrieves support messages, newest first.
func (r *PostgresRepository) ListContactMessages(ctx context.Context) ([]domain.ContactMessage, error) {
	query := `
		SELECT id, name, email, subject, message, is_resolved, created_at
		FROM contact_messages
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ContactMessage
	for rows.Next() {
		var m domain.ContactMessage
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.IsResolved, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// GetSetting retrieves one named setting.
func (r *PostgresRepository) GetSetting(ctx context.Context, name string) (*domain.SystemSetting, error) {
	var s domain.SystemSetting
	query := `SELECT name, value, COALESCE(description, '') AS description FROM system_settings WHERE name = $1`
	err := r.db.QueryRow(ctx, query, name).Scan(&s.Name, &s.Value, &s.Description)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}
	return &s, nil
}

// UpsertSetting writes a setting, inserting it when missing.
func (r *PostgresRepository) UpsertSetting(ctx context.Context, s domain.SystemSetting) error {
	query := `
		INSERT INTO system_settings (name, value, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (name)
		DO UPDATE SET value = EXCLUDED.value, description = EXCLUDED.description
	`
	_, err := r.db.Exec(ctx, query, s.Name, s.Value, s.Description)
	return err
}

// ListSettings retrieves every setting ordered by name.
func (r *PostgresRepository) ListSettings(ctx context.Context) ([]domain.SystemSetting, error) {
	query := `SELECT name, value, COALESCE(description, '') AS description FROM system_settings ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []domain.SystemSetting
	for rows.Next() {
		var s domain.SystemSetting
		if err := rows.Scan(&s.Name, &s.Value, &s.Description); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}
