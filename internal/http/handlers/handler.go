package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"pos-terminal/internal/config"
	"pos-terminal/internal/notify"
	"pos-terminal/internal/pos"
	"pos-terminal/internal/receipt"
	"pos-terminal/pkg/response"
)

// Handler dispatches terminal UI intents into the session. Resync schedules
// a full backend refresh (coalesced); it is the same hook the push channel
// uses.
type Handler struct {
	Session  *pos.Session
	Feed     *notify.Feed
	Receipts *receipt.Service
	Logger   *zap.Logger
	Config   config.Config
	Resync   func()
}

// writeSessionError maps session errors onto the response envelope.
// Validation and missing-resource failures are client errors; only gateway
// failures become 502.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case pos.IsValidation(err):
		response.Error(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, pos.ErrNoOpenOrder):
		response.Error(w, http.StatusConflict, "no_open_order", err.Error())
	case errors.Is(err, pos.ErrBusy):
		response.Error(w, http.StatusConflict, "busy", err.Error())
	default:
		var te *pos.TransitionError
		if errors.As(err, &te) {
			response.Error(w, http.StatusConflict, "illegal_transition", err.Error())
			return
		}
		response.Error(w, http.StatusBadGateway, "backend_error", err.Error())
	}
}
