/**
 * @description
 * This file provides the PostgreSQL queries for money transfers and their
 * append-only status history. A transfer create and every status change write
 * the history entry in the same transaction as the transfer row.
 */

package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/trustbank/banking-service/internal/domain"
)

const transferColumns = `
	id, sender_id, sender_name, COALESCE(sender_email, '') AS sender_email,
	COALESCE(sender_phone, '') AS sender_phone,
	recipient_name, COALESCE(recipient_email, '') AS recipient_email,
	COALESCE(recipient_phone, '') AS recipient_phone, recipient_country,
	COALESCE(recipient_bank_name, '') AS recipient_bank_name,
	COALESCE(recipient_account_number, '') AS recipient_account_number,
	COALESCE(recipient_routing_number, '') AS recipient_routing_number,
	amount, currency, transfer_type, payment_method, COALESCE(purpose, '') AS purpose,
	reference_number, COALESCE(transaction_id, '') AS transaction_id,
	status, COALESCE(admin_notes, '') AS admin_notes, transfer_fee, total_amount,
	created_at, updated_at, processed_at, processed_by`

func scanTransfer(row pgx.Row) (*domain.MoneyTransfer, error) {
	var t domain.MoneyTransfer
	err := row.Scan(
		&t.ID, &t.SenderID, &t.SenderName, &t.SenderEmail, &t.SenderPhone,
		&t.RecipientName, &t.RecipientEmail, &t.RecipientPhone, &t.RecipientCountry,
		&t.RecipientBankName, &t.RecipientAccountNumber, &t.RecipientRoutingNumber,
		&t.Amount, &t.Currency, &t.TransferType, &t.PaymentMethod, &t.Purpose,
		&t.ReferenceNumber, &t.TransactionID,
		&t.Status, &t.AdminNotes, &t.TransferFee, &t.TotalAmount,
		&t.CreatedAt, &t.UpdatedAt, &t.ProcessedAt, &t.ProcessedBy,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTransfer inserts the transfer and its initial pending history entry.
func (r *PostgresRepository) CreateTransfer(ctx context.Context, t *domain.MoneyTransfer) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	transferQuery := `
		INSERT INTO money_transfers (
			id, sender_id, sender_name, sender_email, sender_phone,
			recipient_name, recipient_email, recipient_phone, recipient_country,
			recipient_bank_name, recipient_account_number, recipient_routing_number,
			amount, currency, transfer_type, payment_method, purpose,
			reference_number, status, transfer_fee, total_amount
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRow(ctx, transferQuery,
		t.ID, t.SenderID, t.SenderName, t.SenderEmail, t.SenderPhone,
		t.RecipientName, t.RecipientEmail, t.RecipientPhone, t.RecipientCountry,
		t.RecipientBankName, t.RecipientAccountNumber, t.RecipientRoutingNumber,
		t.Amount, t.Currency, t.TransferType, t.PaymentMethod, t.Purpose,
		t.ReferenceNumber, t.Status, t.TransferFee, t.TotalAmount,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReference
		}
		return err
	}

	historyQuery := `
		INSERT INTO transfer_status_history (id, transfer_id, status, notes, changed_by)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, historyQuery,
		uuid.New(), t.ID, t.Status, "Transfer created", t.SenderID,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// FindTransferByID retrieves a single transfer.
func (r *PostgresRepository) FindTransferByID(ctx context.Context, id uuid.UUID) (*domain.MoneyTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM money_transfers WHERE id = $1`
	t, err := scanTransfer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTransferNotFound
		}
		return nil, err
	}
	return t, nil
}

// ListTransfersBySenderID retrieves a user's transfers, newest first.
func (r *PostgresRepository) ListTransfersBySenderID(ctx context.Context, userID uuid.UUID, limit int) ([]domain.MoneyTransfer, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	query := `SELECT ` + transferColumns + ` FROM money_transfers WHERE sender_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []domain.MoneyTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, *t)
	}
	return transfers, rows.Err()
}

// ListTransfers retrieves transfers for the admin list, optionally filtered by
// status. An empty status returns everything.
func (r *PostgresRepository) ListTransfers(ctx context.Context, status domain.TransferStatus) ([]domain.MoneyTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM money_transfers`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []domain.MoneyTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, *t)
	}
	return transfers, rows.Err()
}

// UpdateTransferStatus writes the new status, stamps the processing fields on
// terminal decisions, and appends the history entry, all in one transaction.
// No transfer status change moves money.
func (r *PostgresRepository) UpdateTransferStatus(ctx context.Context, params UpdateTransferStatusParams) (*domain.MoneyTransfer, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	stamped := params.Status == domain.TransferStatusCompleted ||
		params.Status == domain.TransferStatusFailed ||
		params.Status == domain.TransferStatusCancelled

	updateQuery := `
		UPDATE money_transfers
		SET status = $2,
		    admin_notes = CASE WHEN $3 <> '' THEN $3 ELSE admin_notes END,
		    processed_at = CASE WHEN $4 THEN $5 ELSE processed_at END,
		    processed_by = CASE WHEN $4 THEN $6 ELSE processed_by END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + transferColumns
	t, err := scanTransfer(tx.QueryRow(ctx, updateQuery,
		params.TransferID, params.Status, params.Notes, stamped, params.When, params.StaffID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTransferNotFound
		}
		return nil, err
	}

	historyQuery := `
		INSERT INTO transfer_status_history (id, transfer_id, status, notes, changed_by)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, historyQuery,
		uuid.New(), params.TransferID, params.Status, params.Notes, params.StaffID,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTransferHistory retrieves a transfer's status history, newest first.
func (r *PostgresRepository) ListTransferHistory(ctx context.Context, transferID uuid.UUID) ([]domain.TransferStatusHistory, error) {
	query := `
		SELECT id, transfer_id, status, COALESCE(notes, '') AS notes, changed_by, created_at
		FROM transfer_status_history
		WHERE transfer_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, transferID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.TransferStatusHistory
	for rows.Next() {
		var entry domain.TransferStatusHistory
		if err := rows.Scan(
			&entry.ID, &entry.TransferID, &entry.Status, &entry.Notes,
			&entry.ChangedBy, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
