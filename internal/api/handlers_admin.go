/**
 * @description
 * This file contains the HTTP handlers for the back office: the loan review
 * queue, payment verification, transfer processing, the payment method
 * registry, system settings, users and contact messages. All of these routes
 * sit behind the staff guard.
 */

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trustbank/banking-service/internal/app"
	"github.com/trustbank/banking-service/internal/domain"
)

// staffID pulls the staff caller's id; the staff guard already ran.
func (h *Handlers) staffID(w http.ResponseWriter, r *http.Request) (bool, uuid.UUID) {
	userID, ok := h.authenticatedUserID(w, r)
	return ok, userID
}

// AdminLoansHandler lists applications, optionally filtered by ?status=.
func (h *Handlers) AdminLoansHandler(w http.ResponseWriter, r *http.Request) {
	status := domain.LoanStatus(r.URL.Query().Get("status"))
	loans, err := h.service.AdminLoans(r.Context(), status)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, loans)
}

// LoanCountsHandler returns the per-status totals.
func (h *Handlers) LoanCountsHandler(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.LoanCounts(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, counts)
}

// AdminLoanDetailHandler returns the full admin view of one application.
func (h *Handlers) AdminLoanDetailHandler(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid loan id")
		return
	}

	detail, err := h.service.AdminLoanDetail(r.Context(), loanID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, detail)
}

// UpdateLoanStatusHandler moves an application to a new status.
func (h *Handlers) UpdateLoanStatusHandler(w http.ResponseWriter, r *http.Request) {
	ok, staffID := h.staffID(w, r)
	if !ok {
		return
	}
	loanID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid loan id")
		return
	}

	var req struct {
		Status domain.LoanStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	loan, err := h.service.UpdateLoanStatus(r.Context(), staffID, loanID, req.Status)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, loan)
}

// AdminPaymentsHandler returns the verification queue.
func (h *Handlers) AdminPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	filter := domain.PaymentListFilter{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
	}
	queue, err := h.service.ListPayments(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, queue)
}

// AdminPaymentDetailHandler returns the full admin view of one payment.
func (h *Handlers) AdminPaymentDetailHandler(w http.ResponseWriter, r *http.Request) {
	paymentID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	detail, err := h.service.AdminPaymentDetail(r.Context(), paymentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, detail)
}

// VerifyPaymentHandler records a verification decision.
func (h *Handlers) VerifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	ok, staffID := h.staffID(w, r)
	if !ok {
		return
	}
	paymentID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	var req struct {
		Verified bool   `json:"verified"`
		Notes    string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.VerifyPayment(r.Context(), staffID, paymentID, req.Verified, req.Notes)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// AdminTransfersHandler lists transfers, optionally filtered by ?status=.
func (h *Handlers) AdminTransfersHandler(w http.ResponseWriter, r *http.Request) {
	status := domain.TransferStatus(r.URL.Query().Get("status"))
	transfers, err := h.service.AdminTransfers(r.Context(), status)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, transfers)
}

// AdminTransferDetailHandler returns one transfer with its status history.
func (h *Handlers) AdminTransferDetailHandler(w http.ResponseWriter, r *http.Request) {
	transferID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid transfer id")
		return
	}

	transfer, history, err := h.service.AdminTransferDetail(r.Context(), transferID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, transferDetailResponse{Transfer: transfer, History: history})
}

// UpdateTransferStatusHandler records a transfer processing decision.
func (h *Handlers) UpdateTransferStatusHandler(w http.ResponseWriter, r *http.Request) {
	ok, staffID := h.staffID(w, r)
	if !ok {
		return
	}
	transferID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid transfer id")
		return
	}

	var req struct {
		Status domain.TransferStatus `json:"status"`
		Notes  string                `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transfer, err := h.service.UpdateTransferStatus(r.Context(), staffID, transferID, req.Status, req.Notes)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, transfer)
}

// AdminPaymentMethodsHandler lists every registry entry.
func (h *Handlers) AdminPaymentMethodsHandler(w http.ResponseWriter, r *http.Request) {
	methods, err := h.service.AdminPaymentMethods(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, methods)
}

// CreatePaymentMethodHandler adds a registry entry.
func (h *Handlers) CreatePaymentMethodHandler(w http.ResponseWriter, r *http.Request) {
	var req app.PaymentMethodInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	method, err := h.service.CreatePaymentMethod(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, method)
}

// UpdatePaymentMethodHandler overwrites a registry entry.
func (h *Handlers) UpdatePaymentMethodHandler(w http.ResponseWriter, r *http.Request) {
	methodID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payment method id")
		return
	}

	var req app.PaymentMethodInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	method, err := h.service.UpdatePaymentMethod(r.Context(), methodID, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, method)
}

// DeletePaymentMethodHandler removes a registry entry.
func (h *Handlers) DeletePaymentMethodHandler(w http.ResponseWriter, r *http.Request) {
	methodID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payment method id")
		return
	}

	if err := h.service.DeletePaymentMethod(r.Context(), methodID); err != nil {
		h.handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSettingsHandler lists every system setting.
func (h *Handlers) ListSettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.ListSettings(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, settings)
}

// UpdateSettingHandler writes one system setting.
func (h *Handlers) UpdateSettingHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req struct {
		Value       string `json:"value"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.UpdateSetting(r.Context(), name, req.Value, req.Description); err != nil {
		h.handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminUsersHandler lists registered users.
func (h *Handlers) AdminUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}

// AdminSetBalanceHandler overwrites a customer's balance.
func (h *Handlers) AdminSetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	ok, staffID := h.staffID(w, r)
	if !ok {
		return
	}
	userID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.service.AdminSetBalance(r.Context(), staffID, userID, req.Balance)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

// AdminPostTransactionHandler records a manual ledger entry against a
// customer's account.
func (h *Handlers) AdminPostTransactionHandler(w http.ResponseWriter, r *http.Request) {
	ok, staffID := h.staffID(w, r)
	if !ok {
		return
	}
	userID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		TransactionType string          `json:"transaction_type"`
		Amount          decimal.Decimal `json:"amount"`
		Description     string          `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.service.AdminPostTransaction(r.Context(), staffID, userID, req.TransactionType, req.Amount, req.Description)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, entry)
}

// ContactMessagesHandler lists inbound support messages.
func (h *Handlers) ContactMessagesHandler(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.ListContactMessages(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, messages)
}

// ResolveContactMessageHandler flips the resolved flag on a support message.
func (h *Handlers) ResolveContactMessageHandler(w http.ResponseWriter, r *http.Request) {
	messageID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid message id")
		return
	}

	var req struct {
		Resolved bool `json:"resolved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ResolveContactMessage(r.Context(), messageID, req.Resolved); err != nil {
		h.handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
