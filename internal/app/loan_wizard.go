/**
 * @description
 * This file implements the two-step loan intake wizard. Step 1 collects the
 * applicant's personal and identity details, uploads their documents and
 * stages everything as a draft. Step 2 collects the loan terms and the
 * deposit payment declaration, then commits the application in one write.
 * Nothing durable exists until step 2 succeeds; abandoned drafts expire.
 */

package app

import (
	"context"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trustbank/banking-service/internal/domain"
	"github.com/trustbank/banking-service/internal/store"
	"github.com/trustbank/banking-service/pkg/blobstore"
	"golang.org/x/crypto/bcrypt"
)

// UploadInput is one document submitted with step 1.
type UploadInput struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

// WizardUploads carries the optional step-1 document uploads.
type WizardUploads struct {
	Selfie       *UploadInput
	IDDocument   *UploadInput
	AddressProof *UploadInput
}

// ActivePaymentMethods lists the deposit payment instructions offered to
// applicants. Inactive methods are excluded.
func (s *Service) ActivePaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	return s.repo.ListPaymentMethods(ctx, true)
}

func (s *Service) uploadDocument(ctx context.Context, file *UploadInput) (string, error) {
	if file == nil || s.uploads == nil {
		return "", nil
	}
	key := blobstore.ObjectKey("loans", file.Filename, time.Now())
	return s.uploads.Upload(ctx, key, file.ContentType, file.Data)
}

// SubmitPersonalInfo validates step 1, uploads the documents and stages the
// draft. Re-submitting replaces the previous draft and restarts its TTL.
func (s *Service) SubmitPersonalInfo(ctx context.Context, userID uuid.UUID, input domain.PersonalInfoInput, uploads WizardUploads) (*domain.LoanDraft, error) {
	if strings.TrimSpace(input.FullName) == "" {
		return nil, &ValidationError{Field: "full_name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, &ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, &ValidationError{Field: "phone", Reason: "must not be empty"}
	}
	if strings.TrimSpace(input.Location) == "" {
		return nil, &ValidationError{Field: "location", Reason: "must not be empty"}
	}
	if strings.TrimSpace(input.FullAddress) == "" {
		return nil, &ValidationError{Field: "full_address", Reason: "must not be empty"}
	}
	if strings.TrimSpace(input.DateOfBirth) == "" {
		return nil, &ValidationError{Field: "date_of_birth", Reason: "must not be empty"}
	}
	if strings.TrimSpace(input.SecurityQuestion) == "" {
		return nil, &ValidationError{Field: "security_question", Reason: "must not be empty"}
	}
	if strings.TrimSpace(input.SecurityAnswer) == "" {
		return nil, &ValidationError{Field: "security_answer", Reason: "must not be empty"}
	}

	selfieURL, err := s.uploadDocument(ctx, uploads.Selfie)
	if err != nil {
		return nil, err
	}
	idDocumentURL, err := s.uploadDocument(ctx, uploads.IDDocument)
	if err != nil {
		return nil, err
	}
	addressProofURL, err := s.uploadDocument(ctx, uploads.AddressProof)
	if err != nil {
		return nil, err
	}

	draft := &domain.LoanDraft{
		Step:             1,
		FullName:         strings.TrimSpace(input.FullName),
		Email:            strings.TrimSpace(input.Email),
		Phone:            strings.TrimSpace(input.Phone),
		Location:         strings.TrimSpace(input.Location),
		FullAddress:      strings.TrimSpace(input.FullAddress),
		DateOfBirth:      strings.TrimSpace(input.DateOfBirth),
		SecurityQuestion: strings.TrimSpace(input.SecurityQuestion),
		SecurityAnswer:   input.SecurityAnswer,
		SelfieURL:        selfieURL,
		IDDocumentURL:    idDocumentURL,
		AddressProofURL:  addressProofURL,
		SavedAt:          time.Now(),
	}
	if err := s.drafts.Save(ctx, userID, draft, s.policy.DraftTTL); err != nil {
		return nil, err
	}

	log.Printf("level=info component=app msg=\"loan draft staged\" user_id=%s", userID)
	return draft, nil
}

// GetDraft retrieves the staged step-1 draft, if any.
func (s *Service) GetDraft(ctx context.Context, userID uuid.UUID) (*domain.LoanDraft, error) {
	return s.drafts.Get(ctx, userID)
}

// SubmitLoanDetails validates step 2 against the staged draft and commits the
// application. The deposit is derived exactly once here; choosing a payment
// method declares the deposit payment, so the payment record, its uploaded
// proof and the initial pending verification entry commit in the same write.
// The draft is discarded after a successful commit.
func (s *Service) SubmitLoanDetails(ctx context.Context, userID uuid.UUID, input domain.LoanDetailsInput, proof *UploadInput) (*domain.LoanApplication, error) {
	draft, err := s.drafts.Get(ctx, userID)
	if err != nil {
		if err == ErrDraftNotFound {
			return nil, ErrCompleteStepOneFirst
		}
		return nil, err
	}

	minAmount := s.settingDecimal(ctx, "min_loan_amount", s.policy.MinLoanAmount)
	maxAmount := s.settingDecimal(ctx, "max_loan_amount", s.policy.MaxLoanAmount)
	depositPercent := s.settingDecimal(ctx, "loan_deposit_percentage", s.policy.DepositPercent)

	if input.LoanAmount.LessThan(minAmount) {
		return nil, ErrAmountBelowMinimum
	}
	if input.LoanAmount.GreaterThan(maxAmount) {
		return nil, ErrAmountAboveMaximum
	}
	if strings.TrimSpace(input.LoanPurpose) == "" {
		return nil, &ValidationError{Field: "loan_purpose", Reason: "must not be empty"}
	}
	if input.LoanTermMonths <= 0 {
		return nil, &ValidationError{Field: "loan_term_months", Reason: "must be positive"}
	}

	if input.PaymentMethodID != nil {
		method, err := s.repo.FindPaymentMethodByID(ctx, *input.PaymentMethodID)
		if err != nil {
			return nil, err
		}
		if !method.IsActive {
			return nil, ErrPaymentMethodInactive
		}
	}

	answerHash, err := bcrypt.GenerateFromPassword([]byte(draft.SecurityAnswer), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	deposit := domain.DepositRequired(input.LoanAmount, depositPercent)

	loan := &domain.LoanApplication{
		ID:                 uuid.New(),
		ApplicationID:      domain.NewApplicationID(userID, now),
		UserID:             userID,
		LoanType:           domain.LoanTypePersonal,
		Amount:             input.LoanAmount,
		Purpose:            strings.TrimSpace(input.LoanPurpose),
		TermMonths:         input.LoanTermMonths,
		FullName:           draft.FullName,
		Email:              draft.Email,
		Phone:              draft.Phone,
		Location:           draft.Location,
		FullAddress:        draft.FullAddress,
		DateOfBirth:        draft.DateOfBirth,
		SecurityQuestion:   draft.SecurityQuestion,
		SecurityAnswerHash: string(answerHash),
		SelfieURL:          draft.SelfieURL,
		IDDocumentURL:      draft.IDDocumentURL,
		AddressProofURL:    draft.AddressProofURL,
		PaymentMethodID:    input.PaymentMethodID,
		DepositRequired:    deposit,
		DepositPaid:        false,
		TransactionID:      strings.TrimSpace(input.TransactionID),
		Status:             domain.LoanStatusPending,
		AppliedAt:          now,
	}

	var payment *domain.LoanPayment
	var verification *domain.LoanPaymentVerification
	if input.PaymentMethodID != nil {
		proofURL, err := s.uploadDocument(ctx, proof)
		if err != nil {
			return nil, err
		}
		payment = &domain.LoanPayment{
			ID:              uuid.New(),
			LoanID:          loan.ID,
			PaymentMethodID: input.PaymentMethodID,
			AmountPaid:      deposit,
			TransactionID:   strings.TrimSpace(input.TransactionID),
			PaymentDate:     strings.TrimSpace(input.PaymentDate),
			SenderName:      strings.TrimSpace(input.SenderName),
			SenderAddress:   strings.TrimSpace(input.SenderAddress),
			SenderPhone:     strings.TrimSpace(input.SenderPhone),
			PaymentProofURL: proofURL,
			Verified:        false,
		}
		verification = &domain.LoanPaymentVerification{
			ID:        uuid.New(),
			PaymentID: payment.ID,
			Status:    domain.VerificationStatusPending,
			Notes:     "Payment submitted, awaiting verification",
		}
	}

	err = s.repo.CreateLoanApplication(ctx, loan, payment, verification)
	if err == store.ErrDuplicateReference {
		// Same applicant, same second. Regenerate off the row id and retry once.
		loan.ApplicationID = domain.NewApplicationID(loan.ID, now)
		err = s.repo.CreateLoanApplication(ctx, loan, payment, verification)
	}
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, userID); err != nil {
		log.Printf("level=warn component=app msg=\"draft cleanup failed\" user_id=%s error=%q", userID, err)
	}

	s.publish(ctx, "loan.application.submitted", domain.LoanSubmittedEvent{
		LoanID:          loan.ID,
		ApplicationID:   loan.ApplicationID,
		UserID:          userID,
		Amount:          loan.Amount,
		DepositRequired: loan.DepositRequired,
		Timestamp:       now,
	})

	log.Printf("level=info component=app msg=\"loan application submitted\" user_id=%s application_id=%s", userID, loan.ApplicationID)
	return loan, nil
}

// Confirmation retrieves the applicant's most recent application for the
// post-submission confirmation view.
func (s *Service) Confirmation(ctx context.Context, userID uuid.UUID) (*domain.LoanApplication, error) {
	return s.repo.FindLatestLoanByUserID(ctx, userID)
}

// UserLoans retrieves a user's applications, newest first.
func (s *Service) UserLoans(ctx context.Context, userID uuid.UUID, limit int) ([]domain.LoanApplication, error) {
	return s.repo.ListLoansByUserID(ctx, userID, limit)
}

// LoanForUser retrieves a single application, refusing access to records the
// caller does not own.
func (s *Service) LoanForUser(ctx context.Context, userID, loanID uuid.UUID) (*domain.LoanApplication, error) {
	loan, err := s.repo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.UserID != userID {
		return nil, ErrNotAuthorized
	}
	return loan, nil
}
