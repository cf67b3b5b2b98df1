package app

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trustbank/banking-service/internal/domain"
	"github.com/trustbank/banking-service/internal/store"
)

// memoryDraftStore is an in-memory LoanDraftStore for wizard tests.
type memoryDraftStore struct {
	drafts  map[uuid.UUID]*domain.LoanDraft
	lastTTL time.Duration
}

func newMemoryDraftStore() *memoryDraftStore {
	return &memoryDraftStore{drafts: map[uuid.UUID]*domain.LoanDraft{}}
}

func (m *memoryDraftStore) Save(ctx context.Context, userID uuid.UUID, draft *domain.LoanDraft, ttl time.Duration) error {
	m.drafts[userID] = draft
	m.lastTTL = ttl
	return nil
}

func (m *memoryDraftStore) Get(ctx context.Context, userID uuid.UUID) (*domain.LoanDraft, error) {
	draft, ok := m.drafts[userID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

func (m *memoryDraftStore) Delete(ctx context.Context, userID uuid.UUID) error {
	delete(m.drafts, userID)
	return nil
}

type wizardRepoStub struct {
	store.Repository

	method *domain.PaymentMethod

	createdLoan         *domain.LoanApplication
	createdPayment      *domain.LoanPayment
	createdVerification *domain.LoanPaymentVerification
	createCalls         int
	failFirstCreate     bool
}

func (s *wizardRepoStub) GetSetting(ctx context.Context, name string) (*domain.SystemSetting, error) {
	return nil, store.ErrSettingNotFound
}

func (s *wizardRepoStub) FindPaymentMethodByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error) {
	if s.method == nil {
		return nil, store.ErrPaymentMethodNotFound
	}
	return s.method, nil
}

func (s *wizardRepoStub) CreateLoanApplication(ctx context.Context, loan *domain.LoanApplication, payment *domain.LoanPayment, verification *domain.LoanPaymentVerification) error {
	s.createCalls++
	if s.failFirstCreate && s.createCalls == 1 {
		return store.ErrDuplicateReference
	}
	s.createdLoan = loan
	s.createdPayment = payment
	s.createdVerification = verification
	return nil
}

func stagedDraft() *domain.LoanDraft {
	return &domain.LoanDraft{
		Step:             1,
		FullName:         "Ada Lovelace",
		Email:            "ada@example.com",
		Phone:            "+1555000111",
		Location:         "London",
		FullAddress:      "12 St James's Square, London",
		DateOfBirth:      "1990-12-10",
		SecurityQuestion: "first pet",
		SecurityAnswer:   "byron",
		SavedAt:          time.Now(),
	}
}

// stubUploader records uploads and returns deterministic URLs.
type stubUploader struct {
	keys []string
}

func (u *stubUploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	u.keys = append(u.keys, key)
	return "https://files.example.com/" + key, nil
}

func TestSubmitLoanDetails_RequiresDraft(t *testing.T) {
	svc := NewService(&wizardRepoStub{}, newMemoryDraftStore(), nil, nil, DefaultPolicy())

	_, err := svc.SubmitLoanDetails(context.Background(), uuid.New(), domain.LoanDetailsInput{
		LoanAmount:     decimal.NewFromInt(1000),
		LoanPurpose:    "equipment",
		LoanTermMonths: 12,
	}, nil)
	if err != ErrCompleteStepOneFirst {
		t.Fatalf("expected ErrCompleteStepOneFirst, got %v", err)
	}
}

func TestSubmitLoanDetails_EnforcesAmountBounds(t *testing.T) {
	userID := uuid.New()
	drafts := newMemoryDraftStore()
	drafts.drafts[userID] = stagedDraft()
	svc := NewService(&wizardRepoStub{}, drafts, nil, nil, DefaultPolicy())

	_, err := svc.SubmitLoanDetails(context.Background(), userID, domain.LoanDetailsInput{
		LoanAmount:     decimal.NewFromInt(50),
		LoanPurpose:    "equipment",
		LoanTermMonths: 12,
	}, nil)
	if err != ErrAmountBelowMinimum {
		t.Fatalf("expected ErrAmountBelowMinimum for 50, got %v", err)
	}

	_, err = svc.SubmitLoanDetails(context.Background(), userID, domain.LoanDetailsInput{
		LoanAmount:     decimal.NewFromInt(500000),
		LoanPurpose:    "equipment",
		LoanTermMonths: 12,
	}, nil)
	if err != ErrAmountAboveMaximum {
		t.Fatalf("expected ErrAmountAboveMaximum for 500000, got %v", err)
	}
}

func TestSubmitLoanDetails_CommitsApplicationAndDiscardsDraft(t *testing.T) {
	userID := uuid.New()
	repo := &wizardRepoStub{}
	drafts := newMemoryDraftStore()
	drafts.drafts[userID] = stagedDraft()
	svc := NewService(repo, drafts, nil, nil, DefaultPolicy())

	loan, err := svc.SubmitLoanDetails(context.Background(), userID, domain.LoanDetailsInput{
		LoanAmount:     decimal.NewFromInt(1000),
		LoanPurpose:    "working capital",
		LoanTermMonths: 12,
	}, nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if loan.Status != domain.LoanStatusPending {
		t.Fatalf("expected pending status, got %s", loan.Status)
	}
	if !loan.DepositRequired.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected deposit 100 for 1000 at 10%%, got %s", loan.DepositRequired)
	}
	if loan.FullName != "Ada Lovelace" || loan.Email != "ada@example.com" {
		t.Fatal("expected draft fields carried onto the application")
	}
	if loan.SecurityAnswerHash == "" || loan.SecurityAnswerHash == "byron" {
		t.Fatal("expected security answer to be hashed")
	}
	if repo.createdPayment != nil {
		t.Fatal("did not expect a payment record without a chosen payment method")
	}
	if _, err := drafts.Get(context.Background(), userID); err != ErrDraftNotFound {
		t.Fatal("expected draft to be discarded after commit")
	}
}

func TestSubmitLoanDetails_ChosenMethodCreatesPendingVerification(t *testing.T) {
	userID := uuid.New()
	methodID := uuid.New()
	repo := &wizardRepoStub{
		method: &domain.PaymentMethod{ID: methodID, Name: "Western Union", IsActive: true},
	}
	drafts := newMemoryDraftStore()
	drafts.drafts[userID] = stagedDraft()
	svc := NewService(repo, drafts, nil, nil, DefaultPolicy())

	_, err := svc.SubmitLoanDetails(context.Background(), userID, domain.LoanDetailsInput{
		LoanAmount:      decimal.NewFromInt(2500),
		LoanPurpose:     "renovation",
		LoanTermMonths:  24,
		PaymentMethodID: &methodID,
		TransactionID:   "WU-1234",
		SenderName:      "Ada Lovelace",
		PaymentDate:     "2026-08-30",
	}, nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if repo.createdPayment == nil {
		t.Fatal("expected a payment record for the chosen method")
	}
	if !repo.createdPayment.AmountPaid.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected declared amount to equal the required deposit, got %s", repo.createdPayment.AmountPaid)
	}
	if repo.createdPayment.Verified {
		t.Fatal("expected declared payment to start unverified")
	}
	if repo.createdVerification == nil || repo.createdVerification.Status != domain.VerificationStatusPending {
		t.Fatal("expected an initial pending verification entry")
	}
	if repo.createdVerification.Notes != "Payment submitted, awaiting verification" {
		t.Fatalf("expected the initial verification note, got %q", repo.createdVerification.Notes)
	}
}

func TestSubmitLoanDetails_PaymentRequiresMethodSelection(t *testing.T) {
	userID := uuid.New()
	methodID := uuid.New()
	repo := &wizardRepoStub{
		method: &domain.PaymentMethod{ID: methodID, Name: "Western Union", IsActive: true},
	}
	drafts := newMemoryDraftStore()
	drafts.drafts[userID] = stagedDraft()
	svc := NewService(repo, drafts, nil, nil, DefaultPolicy())

	// Declared sender details without a chosen method record nothing.
	_, err := svc.SubmitLoanDetails(context.Background(), userID, domain.LoanDetailsInput{
		LoanAmount:     decimal.NewFromInt(1000),
		LoanPurpose:    "equipment",
		LoanTermMonths: 12,
		TransactionID:  "WU-1234",
		SenderName:     "Ada Lovelace",
	}, nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if repo.createdPayment != nil {
		t.Fatal("did not expect a payment record without a chosen payment method")
	}

	// A chosen method records the payment even with the details left blank.
	drafts.drafts[userID] = stagedDraft()
	_, err = svc.SubmitLoanDetails(context.Background(), userID, domain.LoanDetailsInput{
		LoanAmount:      decimal.NewFromInt(1000),
		LoanPurpose:     "equipment",
		LoanTermMonths:  12,
		PaymentMethodID: &methodID,
	}, nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if repo.createdPayment == nil {
		t.Fatal("expected a payment record for the chosen method")
	}
	if !repo.createdPayment.AmountPaid.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected the required deposit as the declared amount, got %s", repo.createdPayment.AmountPaid)
	}
	if repo.createdVerification == nil {
		t.Fatal("expected an initial pending verification entry")
	}
}

func TestSubmitLoanDetails_UploadsPaymentProof(t *testing.T) {
	userID := uuid.New()
	methodID := uuid.New()
	repo := &wizardRepoStub{
		method: &domain.PaymentMethod{ID: methodID, Name: "Western Union", IsActive: true},
	}
	drafts := newMemoryDraftStore()
	drafts.drafts[userID] = stagedDraft()
	uploads := &stubUploader{}
	svc := NewService(repo, drafts, uploads, nil, DefaultPolicy())

	_, err := svc.SubmitLoanDetails(context.Background(), userID, domain.LoanDetailsInput{
		LoanAmount:      decimal.NewFromInt(1000),
		LoanPurpose:     "equipment",
		LoanTermMonths:  12,
		PaymentMethodID: &methodID,
		TransactionID:   "WU-1234",
	}, &UploadInput{
		Filename:    "receipt.png",
		ContentType: "image/png",
		Data:        strings.NewReader("png-bytes"),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(uploads.keys) != 1 {
		t.Fatalf("expected exactly one upload, got %d", len(uploads.keys))
	}
	if repo.createdPayment == nil || repo.createdPayment.PaymentProofURL == "" {
		t.Fatal("expected the uploaded proof URL on the payment record")
	}
	if !strings.HasPrefix(repo.createdPayment.PaymentProofURL, "https://files.example.com/loans/") {
		t.Fatalf("unexpected proof URL %q", repo.createdPayment.PaymentProofURL)
	}
}

func TestSubmitLoanDetails_RejectsInactivePaymentMethod(t *testing.T) {
	userID := uuid.New()
	methodID := uuid.New()
	repo := &wizardRepoStub{
		method: &domain.PaymentMethod{ID: methodID, Name: "Western Union", IsActive: false},
	}
	drafts := newMemoryDraftStore()
	drafts.drafts[userID] = stagedDraft()
	svc := NewService(repo, drafts, nil, nil, DefaultPolicy())

	_, err := svc.SubmitLoanDetails(context.Background(), userID, domain.LoanDetailsInput{
		LoanAmount:      decimal.NewFromInt(1000),
		LoanPurpose:     "equipment",
		LoanTermMonths:  12,
		PaymentMethodID: &methodID,
	}, nil)
	if err != ErrPaymentMethodInactive {
		t.Fatalf("expected ErrPaymentMethodInactive, got %v", err)
	}
}

func TestSubmitLoanDetails_RetriesOnceOnReferenceCollision(t *testing.T) {
	userID := uuid.New()
	repo := &wizardRepoStub{failFirstCreate: true}
	drafts := newMemoryDraftStore()
	drafts.drafts[userID] = stagedDraft()
	svc := NewService(repo, drafts, nil, nil, DefaultPolicy())

	loan, err := svc.SubmitLoanDetails(context.Background(), userID, domain.LoanDetailsInput{
		LoanAmount:     decimal.NewFromInt(1000),
		LoanPurpose:    "equipment",
		LoanTermMonths: 12,
	}, nil)
	if err != nil {
		t.Fatalf("expected collision retry to succeed, got %v", err)
	}
	if repo.createCalls != 2 {
		t.Fatalf("expected exactly two create attempts, got %d", repo.createCalls)
	}
	if loan.ApplicationID == domain.NewApplicationID(userID, time.Unix(loan.AppliedAt.Unix(), 0)) {
		t.Fatal("expected retry to regenerate the application reference")
	}
}

func TestSubmitPersonalInfo_StagesDraftWithTTL(t *testing.T) {
	userID := uuid.New()
	drafts := newMemoryDraftStore()
	policy := DefaultPolicy()
	policy.DraftTTL = 45 * time.Minute
	svc := NewService(&wizardRepoStub{}, drafts, nil, nil, policy)

	draft, err := svc.SubmitPersonalInfo(context.Background(), userID, domain.PersonalInfoInput{
		FullName:         "  Ada Lovelace ",
		Email:            "ada@example.com",
		Phone:            "+1555000111",
		Location:         "London",
		FullAddress:      "12 St James's Square, London",
		DateOfBirth:      "1990-12-10",
		SecurityQuestion: "first pet",
		SecurityAnswer:   "byron",
	}, WizardUploads{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if draft.FullName != "Ada Lovelace" {
		t.Fatalf("expected trimmed full name, got %q", draft.FullName)
	}
	if drafts.lastTTL != 45*time.Minute {
		t.Fatalf("expected policy TTL on the staged draft, got %s", drafts.lastTTL)
	}

	_, err = svc.SubmitPersonalInfo(context.Background(), userID, domain.PersonalInfoInput{
		FullName: "Ada Lovelace",
	}, WizardUploads{})
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected validation error for missing fields, got %v", err)
	}
}

func TestSubmitPersonalInfo_RequiresEveryField(t *testing.T) {
	complete := domain.PersonalInfoInput{
		FullName:         "Ada Lovelace",
		Email:            "ada@example.com",
		Phone:            "+1555000111",
		Location:         "London",
		FullAddress:      "12 St James's Square, London",
		DateOfBirth:      "1990-12-10",
		SecurityQuestion: "first pet",
		SecurityAnswer:   "byron",
	}

	tests := []struct {
		field string
		blank func(in *domain.PersonalInfoInput)
	}{
		{"full_name", func(in *domain.PersonalInfoInput) { in.FullName = " " }},
		{"email", func(in *domain.PersonalInfoInput) { in.Email = "" }},
		{"phone", func(in *domain.PersonalInfoInput) { in.Phone = "" }},
		{"location", func(in *domain.PersonalInfoInput) { in.Location = "  " }},
		{"full_address", func(in *domain.PersonalInfoInput) { in.FullAddress = "" }},
		{"date_of_birth", func(in *domain.PersonalInfoInput) { in.DateOfBirth = "" }},
		{"security_question", func(in *domain.PersonalInfoInput) { in.SecurityQuestion = "" }},
		{"security_answer", func(in *domain.PersonalInfoInput) { in.SecurityAnswer = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			drafts := newMemoryDraftStore()
			svc := NewService(&wizardRepoStub{}, drafts, nil, nil, DefaultPolicy())

			input := complete
			tt.blank(&input)
			_, err := svc.SubmitPersonalInfo(context.Background(), uuid.New(), input, WizardUploads{})
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, verr.Field)
			}
			if len(drafts.drafts) != 0 {
				t.Fatal("expected nothing staged after a validation failure")
			}
		})
	}
}
