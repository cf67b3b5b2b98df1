/**
 * @description
 * This file contains the HTTP handlers for customer-facing money transfers.
 */

package api

import (
	"encoding/json"
	"net/http"

	"github.com/trustbank/banking-service/internal/domain"
)

type transferDetailResponse struct {
	Transfer *domain.MoneyTransfer          `json:"transfer"`
	History  []domain.TransferStatusHistory `json:"history"`
}

// CreateTransferHandler records a new transfer.
func (h *Handlers) CreateTransferHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}

	var req domain.CreateTransferInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transfer, err := h.service.CreateTransfer(r.Context(), userID, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, transfer)
}

// UserTransfersHandler lists the caller's transfers.
func (h *Handlers) UserTransfersHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}

	transfers, err := h.service.UserTransfers(r.Context(), userID, queryLimit(r))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, transfers)
}

// UserTransferHandler returns one of the caller's transfers with its history.
func (h *Handlers) UserTransferHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}
	transferID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid transfer id")
		return
	}

	transfer, history, err := h.service.TransferForUser(r.Context(), userID, transferID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, transferDetailResponse{Transfer: transfer, History: history})
}
