package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pos-terminal/internal/domain"
	"pos-terminal/pkg/response"
)

// SaveMenuItem creates or updates a menu item on the backend. The id URL
// param is empty for creation.
func (h *Handler) SaveMenuItem(w http.ResponseWriter, r *http.Request) {
	var input domain.MenuItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if input.Name == "" {
		response.Error(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}
	if input.Price.IsNegative() || input.Price.IsZero() {
		response.Error(w, http.StatusBadRequest, "invalid_request", "price must be positive")
		return
	}
	if input.Available < 0 {
		response.Error(w, http.StatusBadRequest, "invalid_request", "available cannot be negative")
		return
	}

	id := chi.URLParam(r, "itemID")
	if err := h.Session.SaveMenuItem(r.Context(), input, id); err != nil {
		writeSessionError(w, err)
		return
	}
	h.Resync()
	response.Accepted(w, "menu item saved")
}

// DeleteMenuItem removes a menu item on the backend.
func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itemID")
	if err := h.Session.DeleteMenuItem(r.Context(), id); err != nil {
		writeSessionError(w, err)
		return
	}
	h.Resync()
	response.Accepted(w, "menu item deleted")
}
