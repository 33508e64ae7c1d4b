package handlers

import (
	"net/http"

	"pos-terminal/pkg/response"
)

// State returns the full session view for rendering.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.Session.View())
}

// Refresh forces a full resync with the backend and returns the reconciled
// view.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.Refresh(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	response.Success(w, h.Session.View())
}

// Notices returns the notification feed, newest first.
func (h *Handler) Notices(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]any{
		"notices": h.Feed.List(),
		"unread":  h.Feed.Unread(),
	})
}

// NoticesMarkRead flags every notice as read.
func (h *Handler) NoticesMarkRead(w http.ResponseWriter, r *http.Request) {
	h.Feed.MarkAllRead()
	response.Accepted(w, "notifications marked read")
}
