/**
 * @description
 * This file contains the HTTP handlers for authentication, the dashboard and
 * the public endpoints. Handlers parse incoming requests, call the
 * application service, and map service errors onto HTTP status codes. Loan,
 * transfer and admin handlers live in their own files alongside this one.
 *
 * @dependencies
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/trustbank/banking-service/internal/app"
	"github.com/trustbank/banking-service/internal/domain"
	"github.com/trustbank/banking-service/internal/store"
)

// Handlers holds the application service and token issuer that handlers use.
type Handlers struct {
	service *app.Service
	auth    *TokenAuthenticator
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(service *app.Service, auth *TokenAuthenticator) *Handlers {
	return &Handlers{service: service, auth: auth}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// handleServiceError maps service-layer errors onto HTTP responses.
func (h *Handlers) handleServiceError(w http.ResponseWriter, err error) {
	var validationErr *app.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, app.ErrInvalidCredentials):
		h.writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrReservedUsername),
		errors.Is(err, app.ErrCompleteStepOneFirst),
		errors.Is(err, app.ErrAmountBelowMinimum),
		errors.Is(err, app.ErrAmountAboveMaximum),
		errors.Is(err, app.ErrPaymentMethodInactive),
		errors.Is(err, app.ErrInvalidLoanStatus),
		errors.Is(err, app.ErrInvalidTransferStatus):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrEmailTaken),
		errors.Is(err, app.ErrLoanStatusFinal),
		errors.Is(err, app.ErrDepositNotVerified):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrNotAuthorized),
		errors.Is(err, app.ErrDraftNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrAccountNotFound),
		errors.Is(err, store.ErrLoanNotFound),
		errors.Is(err, store.ErrPaymentNotFound),
		errors.Is(err, store.ErrPaymentMethodNotFound),
		errors.Is(err, store.ErrTransferNotFound),
		errors.Is(err, store.ErrSettingNotFound),
		errors.Is(err, store.ErrMessageNotFound):
		h.writeError(w, http.StatusNotFound, "not found")
	default:
		log.Printf("level=error component=api msg=\"unhandled service error\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// authenticatedUserID pulls the caller's id out of the context, responding
// with 500 when the auth middleware did not run.
func (h *Handlers) authenticatedUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "could not get user id from context")
	}
	return userID, ok
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

// loginResponse is returned by register and login.
type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// RegisterHandler handles new customer registrations.
func (h *Handlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.RegisterUser(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	token, err := h.auth.IssueToken(user)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, loginResponse{Token: token, User: user})
}

// LoginHandler handles login attempts.
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	token, err := h.auth.IssueToken(user)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

// DashboardHandler returns the customer's landing page aggregate.
func (h *Handlers) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dashboard)
}

// TransactionsHandler returns the customer's recent ledger entries.
func (h *Handlers) TransactionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}

	transactions, err := h.service.AccountTransactions(r.Context(), userID, queryLimit(r))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, transactions)
}

// ContactHandler records a public contact form submission.
func (h *Handlers) ContactHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.service.SubmitContactMessage(r.Context(), req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, message)
}

// ActivePaymentMethodsHandler lists the deposit instructions offered to applicants.
func (h *Handlers) ActivePaymentMethodsHandler(w http.ResponseWriter, r *http.Request) {
	methods, err := h.service.ActivePaymentMethods(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, methods)
}
