package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pos-terminal/pkg/response"
)

type addItemRequest struct {
	ItemID string `json:"itemId"`
}

// CartAddItem puts one unit of a menu item into the cart.
func (h *Handler) CartAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		response.Error(w, http.StatusBadRequest, "invalid_request", "itemId is required")
		return
	}
	if err := h.Session.AddItem(req.ItemID); err != nil {
		writeSessionError(w, err)
		return
	}
	response.Success(w, h.Session.View())
}

type changeQuantityRequest struct {
	Delta int `json:"delta"`
}

// CartChangeQuantity moves a cart line by a signed delta.
func (h *Handler) CartChangeQuantity(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	var req changeQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid_request", "delta is required")
		return
	}
	if err := h.Session.ChangeQuantity(itemID, req.Delta); err != nil {
		writeSessionError(w, err)
		return
	}
	response.Success(w, h.Session.View())
}

type customerRequest struct {
	CustomerName string `json:"customerName"`
	TableNumber  string `json:"tableNumber"`
}

// SetCustomer records the customer name and table for the order in
// composition.
func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.Session.SetCustomer(req.CustomerName, req.TableNumber); err != nil {
		writeSessionError(w, err)
		return
	}
	response.Accepted(w, "customer details updated")
}
