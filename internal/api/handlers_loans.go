/**
 * @description
 * This file contains the HTTP handlers for the loan intake wizard and the
 * customer-facing loan views. Both steps accept multipart form data for their
 * document uploads; step 2 additionally accepts plain JSON when no payment
 * proof is attached.
 */

package api

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trustbank/banking-service/internal/app"
	"github.com/trustbank/banking-service/internal/domain"
)

// maxUploadBytes bounds the step-1 multipart form, documents included.
const maxUploadBytes = 32 << 20

func formUpload(r *http.Request, field string) (*app.UploadInput, func(), error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upload := &app.UploadInput{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        file,
	}
	return upload, func() { file.Close() }, nil
}

func closeAll(closers []func()) {
	for _, c := range closers {
		c()
	}
}

// PersonalInfoHandler handles step 1 of the loan wizard.
func (h *Handlers) PersonalInfoHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if r.MultipartForm != nil {
		defer func(f *multipart.Form) { f.RemoveAll() }(r.MultipartForm)
	}

	input := domain.PersonalInfoInput{
		FullName:         r.FormValue("full_name"),
		Email:            r.FormValue("email"),
		Phone:            r.FormValue("phone"),
		Location:         r.FormValue("location"),
		FullAddress:      r.FormValue("full_address"),
		DateOfBirth:      r.FormValue("date_of_birth"),
		SecurityQuestion: r.FormValue("security_question"),
		SecurityAnswer:   r.FormValue("security_answer"),
	}

	var closers []func()
	defer closeAll(closers)

	var uploads app.WizardUploads
	for _, doc := range []struct {
		field  string
		target **app.UploadInput
	}{
		{"selfie", &uploads.Selfie},
		{"id_document", &uploads.IDDocument},
		{"address_proof", &uploads.AddressProof},
	} {
		upload, closeFn, err := formUpload(r, doc.field)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid file upload: "+doc.field)
			return
		}
		closers = append(closers, closeFn)
		*doc.target = upload
	}

	draft, err := h.service.SubmitPersonalInfo(r.Context(), userID, input, uploads)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, draft)
}

// DraftHandler returns the staged step-1 draft.
func (h *Handlers) DraftHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}

	draft, err := h.service.GetDraft(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, draft)
}

type loanDetailsRequest struct {
	LoanAmount      decimal.Decimal `json:"loan_amount"`
	LoanPurpose     string          `json:"loan_purpose"`
	LoanTermMonths  int             `json:"loan_term_months"`
	PaymentMethodID *string         `json:"payment_method_id"`
	SenderName      string          `json:"sender_name"`
	SenderAddress   string          `json:"sender_address"`
	SenderPhone     string          `json:"sender_phone"`
	TransactionID   string          `json:"transaction_id"`
	PaymentDate     string          `json:"payment_date"`
}

// LoanDetailsHandler handles step 2 of the loan wizard and commits the
// application. Multipart requests may attach the deposit payment proof.
func (h *Handlers) LoanDetailsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}

	var req loanDetailsRequest
	var proof *app.UploadInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		if r.MultipartForm != nil {
			defer func(f *multipart.Form) { f.RemoveAll() }(r.MultipartForm)
		}

		amount, err := decimal.NewFromString(r.FormValue("loan_amount"))
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid loan amount")
			return
		}
		term, err := strconv.Atoi(r.FormValue("loan_term_months"))
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid loan term")
			return
		}
		req = loanDetailsRequest{
			LoanAmount:     amount,
			LoanPurpose:    r.FormValue("loan_purpose"),
			LoanTermMonths: term,
			SenderName:     r.FormValue("sender_name"),
			SenderAddress:  r.FormValue("sender_address"),
			SenderPhone:    r.FormValue("sender_phone"),
			TransactionID:  r.FormValue("transaction_id"),
			PaymentDate:    r.FormValue("payment_date"),
		}
		if v := r.FormValue("payment_method_id"); v != "" {
			req.PaymentMethodID = &v
		}

		upload, closeFn, err := formUpload(r, "payment_proof")
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid file upload: payment_proof")
			return
		}
		defer closeFn()
		proof = upload
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := domain.LoanDetailsInput{
		LoanAmount:     req.LoanAmount,
		LoanPurpose:    req.LoanPurpose,
		LoanTermMonths: req.LoanTermMonths,
		SenderName:     req.SenderName,
		SenderAddress:  req.SenderAddress,
		SenderPhone:    req.SenderPhone,
		TransactionID:  req.TransactionID,
		PaymentDate:    req.PaymentDate,
	}
	if req.PaymentMethodID != nil && *req.PaymentMethodID != "" {
		methodID, err := uuid.Parse(*req.PaymentMethodID)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid payment method id")
			return
		}
		input.PaymentMethodID = &methodID
	}

	loan, err := h.service.SubmitLoanDetails(r.Context(), userID, input, proof)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, loan)
}

// ConfirmationHandler returns the applicant's latest application.
func (h *Handlers) ConfirmationHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}

	loan, err := h.service.Confirmation(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, loan)
}

// UserLoansHandler lists the caller's applications.
func (h *Handlers) UserLoansHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}

	loans, err := h.service.UserLoans(r.Context(), userID, queryLimit(r))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, loans)
}

// UserLoanHandler returns one of the caller's applications.
func (h *Handlers) UserLoanHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}
	loanID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid loan id")
		return
	}

	loan, err := h.service.LoanForUser(r.Context(), userID, loanID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, loan)
}
