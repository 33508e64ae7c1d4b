package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pos-terminal/internal/domain"
	"pos-terminal/pkg/response"
)

// PlaceOrder persists the composed order and resets the session. A resync
// follows so the mirrors pick up the backend's own counts.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.PlaceOrder(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	h.Resync()
	response.Success(w, h.Session.View())
}

// SettleBill loads an existing kitchen-ready order into the session.
func (h *Handler) SettleBill(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if err := h.Session.SettleBill(orderID); err != nil {
		writeSessionError(w, err)
		return
	}
	response.Success(w, h.Session.View())
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus moves a live order through the kitchen lifecycle.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid_request", "status is required")
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid_status", err.Error())
		return
	}
	if err := h.Session.UpdateOrderStatus(r.Context(), orderID, status); err != nil {
		writeSessionError(w, err)
		return
	}
	h.Resync()
	response.Accepted(w, "order status updated")
}

// Reset abandons the current transaction from any state.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.Session.Reset()
	response.Success(w, h.Session.View())
}
