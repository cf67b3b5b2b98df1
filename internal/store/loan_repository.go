/**
 * @description
 * This file provides the PostgreSQL queries for loan applications, deposit
 * payments and the payment verification trail. Approval and verification are
 * multi-statement writes and run inside transactions so their side effects
 * (account credit, loan advancement) commit atomically with the status change.
 */

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/trustbank/banking-service/internal/domain"
)

const loanColumns = `
	id, application_id, user_id, loan_type, amount, COALESCE(purpose, '') AS purpose, term_months,
	full_name, email, phone, COALESCE(location, '') AS location, COALESCE(full_address, '') AS full_address,
	COALESCE(date_of_birth, '') AS date_of_birth,
	COALESCE(security_question, '') AS security_question, COALESCE(security_answer_hash, '') AS security_answer_hash,
	COALESCE(selfie_url, '') AS selfie_url, COALESCE(id_document_url, '') AS id_document_url,
	COALESCE(address_proof_url, '') AS address_proof_url,
	payment_method_id, COALESCE(payment_reference, '') AS payment_reference,
	deposit_required, deposit_paid, COALESCE(transaction_id, '') AS transaction_id,
	status, created_at, applied_at, updated_at`

func scanLoan(row pgx.Row) (*domain.LoanApplication, error) {
	var loan domain.LoanApplication
	err := row.Scan(
		&loan.ID, &loan.ApplicationID, &loan.UserID, &loan.LoanType, &loan.Amount, &loan.Purpose, &loan.TermMonths,
		&loan.FullName, &loan.Email, &loan.Phone, &loan.Location, &loan.FullAddress, &loan.DateOfBirth,
		&loan.SecurityQuestion, &loan.SecurityAnswerHash,
		&loan.SelfieURL, &loan.IDDocumentURL, &loan.AddressProofURL,
		&loan.PaymentMethodID, &loan.PaymentReference,
		&loan.DepositRequired, &loan.DepositPaid, &loan.TransactionID,
		&loan.Status, &loan.CreatedAt, &loan.AppliedAt, &loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

const paymentColumns = `
	id, loan_id, payment_method_id, amount_paid, COALESCE(transaction_id, '') AS transaction_id,
	COALESCE(payment_date, '') AS payment_date, sender_name,
	COALESCE(sender_address, '') AS sender_address, COALESCE(sender_phone, '') AS sender_phone,
	COALESCE(payment_proof_url, '') AS payment_proof_url,
	verified, verified_by, verified_at, COALESCE(admin_notes, '') AS admin_notes,
	created_at, updated_at`

func scanPayment(row pgx.Row) (*domain.LoanPayment, error) {
	var p domain.LoanPayment
	err := row.Scan(
		&p.ID, &p.LoanID, &p.PaymentMethodID, &p.AmountPaid, &p.TransactionID,
		&p.PaymentDate, &p.SenderName, &p.SenderAddress, &p.SenderPhone,
		&p.PaymentProofURL, &p.Verified, &p.VerifiedBy, &p.VerifiedAt, &p.AdminNotes,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateLoanApplication inserts the application and, when the applicant
// declared a deposit payment at submission, its payment record plus the
// initial pending verification entry, all in one transaction.
func (r *PostgresRepository) CreateLoanApplication(ctx context.Context, loan *domain.LoanApplication, payment *domain.LoanPayment, verification *domain.LoanPaymentVerification) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	loanQuery := `
		INSERT INTO loan_applications (
			id, application_id, user_id, loan_type, amount, purpose, term_months,
			full_name, email, phone, location, full_address, date_of_birth,
			security_question, security_answer_hash,
			selfie_url, id_document_url, address_proof_url,
			payment_method_id, payment_reference, deposit_required, deposit_paid,
			transaction_id, status, applied_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRow(ctx, loanQuery,
		loan.ID, loan.ApplicationID, loan.UserID, loan.LoanType, loan.Amount, loan.Purpose, loan.TermMonths,
		loan.FullName, loan.Email, loan.Phone, loan.Location, loan.FullAddress, loan.DateOfBirth,
		loan.SecurityQuestion, loan.SecurityAnswerHash,
		loan.SelfieURL, loan.IDDocumentURL, loan.AddressProofURL,
		loan.PaymentMethodID, loan.PaymentReference, loan.DepositRequired, loan.DepositPaid,
		loan.TransactionID, loan.Status, loan.AppliedAt,
	).Scan(&loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReference
		}
		return err
	}

	if payment != nil {
		paymentQuery := `
			INSERT INTO loan_payments (
				id, loan_id, payment_method_id, amount_paid, transaction_id, payment_date,
				sender_name, sender_address, sender_phone, payment_proof_url, verified
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING created_at, updated_at
		`
		err = tx.QueryRow(ctx, paymentQuery,
			payment.ID, payment.LoanID, payment.PaymentMethodID, payment.AmountPaid,
			payment.TransactionID, payment.PaymentDate, payment.SenderName,
			payment.SenderAddress, payment.SenderPhone, payment.PaymentProofURL, payment.Verified,
		).Scan(&payment.CreatedAt, &payment.UpdatedAt)
		if err != nil {
			return err
		}
	}

	if verification != nil {
		verificationQuery := `
			INSERT INTO loan_payment_verifications (id, payment_id, status, notes, verified_by, verified_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at
		`
		err = tx.QueryRow(ctx, verificationQuery,
			verification.ID, verification.PaymentID, verification.Status,
			verification.Notes, verification.VerifiedBy, verification.VerifiedAt,
		).Scan(&verification.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// FindLoanByID retrieves a single loan application.
func (r *PostgresRepository) FindLoanByID(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_applications WHERE id = $1`
	loan, err := scanLoan(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// FindLatestLoanByUserID retrieves a user's most recent application.
func (r *PostgresRepository) FindLatestLoanByUserID(ctx context.Context, userID uuid.UUID) (*domain.LoanApplication, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_applications WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`
	loan, err := scanLoan(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// ListLoansByUserID retrieves a user's applications, newest first.
func (r *PostgresRepository) ListLoansByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]domain.LoanApplication, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	query := `SELECT ` + loanColumns + ` FROM loan_applications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []domain.LoanApplication
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *loan)
	}
	return loans, rows.Err()
}

// ListLoans retrieves applications for the admin list, optionally filtered by
// status. An empty status returns everything.
func (r *PostgresRepository) ListLoans(ctx context.Context, status domain.LoanStatus) ([]domain.LoanApplication, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_applications`
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

	var loans []domain.LoanApplication
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *loan)
	}
	return loans, rows.Err()
}

// CountLoansByStatus computes the per-status totals shown above the admin list.
// Legacy pending_payment rows are counted as pending.
func (r *PostgresRepository) CountLoansByStatus(ctx context.Context) (*domain.LoanStatusCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('pending', 'pending_payment')) AS pending,
			COUNT(*) FILTER (WHERE status = 'under_review') AS under_review,
			COUNT(*) FILTER (WHERE status = 'approved') AS approved,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
			COUNT(*) FILTER (WHERE status = 'disbursed') AS disbursed,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COUNT(*) AS total
		FROM loan_applications
	`
	var counts domain.LoanStatusCounts
	err := r.db.QueryRow(ctx, query).Scan(
		&counts.Pending, &counts.UnderReview, &counts.Approved,
		&counts.Rejected, &counts.Disbursed, &counts.Completed, &counts.Total,
	)
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

// UpdateLoanStatus writes a new status without side effects. Approval goes
// through DisburseLoan instead.
func (r *PostgresRepository) UpdateLoanStatus(ctx context.Context, loanID uuid.UUID, status domain.LoanStatus) (*domain.LoanApplication, error) {
	query := `
		UPDATE loan_applications
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + loanColumns
	loan, err := scanLoan(r.db.QueryRow(ctx, query, status, loanID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// DisburseLoan moves an application to approved and, when it was still under
// review at write time, credits the applicant's account with amount minus the
// deposit and appends the disbursement ledger entry. The status check and the
// credit share one transaction, so a second concurrent approval finds the row
// already approved, observes Credited=false and posts nothing.
func (r *PostgresRepository) DisburseLoan(ctx context.Context, loanID uuid.UUID) (*DisbursementResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	conditionalQuery := `
		UPDATE loan_applications
		SET status = 'approved', deposit_paid = TRUE, updated_at = NOW()
		WHERE id = $1 AND status = 'under_review'
		RETURNING ` + loanColumns
	loan, err := scanLoan(tx.QueryRow(ctx, conditionalQuery, loanID))
	credited := err == nil
	if err != nil {
		if err != pgx.ErrNoRows {
			return nil, err
		}
		// Not under review anymore; write the status only.
		plainQuery := `
			UPDATE loan_applications
			SET status = 'approved', updated_at = NOW()
			WHERE id = $1
			RETURNING ` + loanColumns
		loan, err = scanLoan(tx.QueryRow(ctx, plainQuery, loanID))
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, ErrLoanNotFound
			}
			return nil, err
		}
	}

	result := &DisbursementResult{Loan: loan, Credited: credited}
	if credited {
		creditAmount := loan.Amount.Sub(loan.DepositRequired)
		result.CreditAmount = creditAmount

		var accountID uuid.UUID
		err = tx.QueryRow(ctx,
			"SELECT id FROM accounts WHERE user_id = $1 FOR UPDATE", loan.UserID,
		).Scan(&accountID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, ErrAccountNotFound
			}
			return nil, err
		}

		_, err = tx.Exec(ctx,
			"UPDATE accounts SET balance = balance + $1, updated_at = NOW() WHERE id = $2",
			creditAmount, accountID,
		)
		if err != nil {
			return nil, err
		}

		entryQuery := `
			INSERT INTO transactions (id, transaction_id, account_id, transaction_type, amount, description, status)
			VALUES ($1, $2, $3, 'loan_disbursement', $4, $5, 'completed')
		`
		reference := domain.NewTransactionReference(time.Now())
		description := fmt.Sprintf("Loan Disbursement: %s (Application ID: %s)", loan.Purpose, loan.ApplicationID)
		if _, err = tx.Exec(ctx, entryQuery, uuid.New(), reference, accountID, creditAmount, description); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// FindPaymentByID retrieves a single deposit payment.
func (r *PostgresRepository) FindPaymentByID(ctx context.Context, id uuid.UUID) (*domain.LoanPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM loan_payments WHERE id = $1`
	payment, err := scanPayment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// FindPaymentByLoanID retrieves the most recent payment submitted for a loan.
func (r *PostgresRepository) FindPaymentByLoanID(ctx context.Context, loanID uuid.UUID) (*domain.LoanPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM loan_payments WHERE loan_id = $1 ORDER BY created_at DESC LIMIT 1`
	payment, err := scanPayment(r.db.QueryRow(ctx, query, loanID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// ListPayments retrieves the admin verification queue, newest first. The
// filter narrows by verification state and a free-text search over the
// transaction id, application reference, sender name and applicant email.
func (r *PostgresRepository) ListPayments(ctx context.Context, filter domain.PaymentListFilter) ([]domain.LoanPayment, error) {
	query := `
		SELECT p.id, p.loan_id, p.payment_method_id, p.amount_paid,
		       COALESCE(p.transaction_id, '') AS transaction_id,
		       COALESCE(p.payment_date, '') AS payment_date, p.sender_name,
		       COALESCE(p.sender_address, '') AS sender_address,
		       COALESCE(p.sender_phone, '') AS sender_phone,
		       COALESCE(p.payment_proof_url, '') AS payment_proof_url,
		       p.verified, p.verified_by, p.verified_at,
		       COALESCE(p.admin_notes, '') AS admin_notes,
		       p.created_at, p.updated_at
		FROM loan_payments p
		JOIN loan_applications la ON la.id = p.loan_id
		JOIN users u ON u.id = la.user_id
		WHERE 1=1
	`
	args := []interface{}{}
	argPos := 1

	switch filter.Status {
	case "verified":
		query += " AND p.verified = TRUE"
	case "pending":
		query += " AND p.verified = FALSE"
	}

	if filter.Search != "" {
		query += fmt.Sprintf(`
			AND (
				p.transaction_id ILIKE '%%' || $%d || '%%'
				OR la.application_id ILIKE '%%' || $%d || '%%'
				OR p.sender_name ILIKE '%%' || $%d || '%%'
				OR u.email ILIKE '%%' || $%d || '%%'
			)
		`, argPos, argPos, argPos, argPos)
		args = append(args, filter.Search)
	}

	query += " ORDER BY p.created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.LoanPayment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *payment)
	}
	return payments, rows.Err()
}

// ListPaymentsByUserID retrieves the deposit payments behind a user's loans.
func (r *PostgresRepository) ListPaymentsByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]domain.LoanPayment, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	query := `
		SELECT p.id, p.loan_id, p.payment_method_id, p.amount_paid,
		       COALESCE(p.transaction_id, '') AS transaction_id,
		       COALESCE(p.payment_date, '') AS payment_date, p.sender_name,
		       COALESCE(p.sender_address, '') AS sender_address,
		       COALESCE(p.sender_phone, '') AS sender_phone,
		       COALESCE(p.payment_proof_url, '') AS payment_proof_url,
		       p.verified, p.verified_by, p.verified_at,
		       COALESCE(p.admin_notes, '') AS admin_notes,
		       p.created_at, p.updated_at
		FROM loan_payments p
		JOIN loan_applications la ON la.id = p.loan_id
		WHERE la.user_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.LoanPayment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *payment)
	}
	return payments, rows.Err()
}

// CountPayments computes the queue totals shown above the admin payment list.
func (r *PostgresRepository) CountPayments(ctx context.Context) (*domain.PaymentCounts, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE verified = TRUE) AS verified,
			COUNT(*) FILTER (WHERE verified = FALSE) AS pending
		FROM loan_payments
	`
	var counts domain.PaymentCounts
	if err := r.db.QueryRow(ctx, query).Scan(&counts.Total, &counts.Verified, &counts.Pending); err != nil {
		return nil, err
	}
	return &counts, nil
}

// loanAwaitingDeposit reports whether a verified deposit may advance the
// application to under_review. Only the intake statuses qualify; applications
// already reviewed, approved or rejected keep their status.
func loanAwaitingDeposit(status domain.LoanStatus) bool {
	return status == domain.LoanStatusPending || status == domain.LoanStatusPendingPayment
}

// VerifyPayment records one verification decision: it stamps the payment,
// appends the trail entry and, on a positive decision, marks the loan's
// deposit paid and advances it to under_review when it is still in its
// initial state. All writes share one transaction; the loan row stays locked
// from the status read through the advancement.
func (r *PostgresRepository) VerifyPayment(ctx context.Context, params VerifyPaymentParams) (*VerifyPaymentResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	paymentQuery := `
		UPDATE loan_payments
		SET verified = $2, verified_by = $3, verified_at = $4, admin_notes = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + paymentColumns
	payment, err := scanPayment(tx.QueryRow(ctx, paymentQuery,
		params.PaymentID, params.Verify, params.StaffID, params.When, params.Notes,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	status := domain.VerificationStatusRejected
	if params.Verify {
		status = domain.VerificationStatusVerified
	}
	trailQuery := `
		INSERT INTO loan_payment_verifications (id, payment_id, status, notes, verified_by, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.Exec(ctx, trailQuery,
		uuid.New(), params.PaymentID, status, params.Notes, params.StaffID, params.When,
	); err != nil {
		return nil, err
	}

	result := &VerifyPaymentResult{Payment: payment}

	var prior domain.LoanStatus
	err = tx.QueryRow(ctx,
		"SELECT status FROM loan_applications WHERE id = $1 FOR UPDATE", payment.LoanID,
	).Scan(&prior)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	result.PriorLoanStatus = prior

	if params.Verify {
		if _, err := tx.Exec(ctx,
			"UPDATE loan_applications SET deposit_paid = TRUE, updated_at = NOW() WHERE id = $1",
			payment.LoanID,
		); err != nil {
			return nil, err
		}

		if loanAwaitingDeposit(prior) {
			advanceQuery := `
				UPDATE loan_applications
				SET status = 'under_review', updated_at = NOW()
				WHERE id = $1
				RETURNING ` + loanColumns
			loan, err := scanLoan(tx.QueryRow(ctx, advanceQuery, payment.LoanID))
			if err != nil {
				return nil, err
			}
			result.Loan = loan
			result.LoanAdvanced = true
		}
	}

	if result.Loan == nil {
		loanQuery := `SELECT ` + loanColumns + ` FROM loan_applications WHERE id = $1`
		loan, err := scanLoan(tx.QueryRow(ctx, loanQuery, payment.LoanID))
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, ErrLoanNotFound
			}
			return nil, err
		}
		result.Loan = loan
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// ListVerifications retrieves a payment's verification trail, newest first.
func (r *PostgresRepository) ListVerifications(ctx context.Context, paymentID uuid.UUID) ([]domain.LoanPaymentVerification, error) {
	query := `
		SELECT id, payment_id, status, COALESCE(notes, '') AS notes, verified_by, verified_at, created_at
		FROM loan_payment_verifications
		WHERE payment_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LoanPaymentVerification
	for rows.Next() {
		var entry domain.LoanPaymentVerification
		if err := rows.Scan(
			&entry.ID, &entry.PaymentID, &entry.Status, &entry.Notes,
			&entry.VerifiedBy, &entry.VerifiedAt, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
