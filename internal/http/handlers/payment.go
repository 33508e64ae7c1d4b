package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pos-terminal/internal/receipt"
	"pos-terminal/pkg/response"
)

// ProceedToPayment freezes totals into the payment snapshot and enters
// AwaitingPayment.
func (h *Handler) ProceedToPayment(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.ProceedToPayment(); err != nil {
		writeSessionError(w, err)
		return
	}
	response.Success(w, h.Session.View())
}

// ConfirmPayment settles the bill against the backend and, on success,
// archives the receipt in the background.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.ConfirmPayment(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	if rec := h.Session.Receipt(); rec != nil && h.Receipts.Enabled() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := h.Receipts.Archive(ctx, *rec); err != nil {
				h.Logger.Warn("receipt archive failed",
					zap.String("transactionUid", rec.TransactionUID), zap.Error(err))
			}
		}()
	}
	h.Resync()
	response.Success(w, h.Session.View())
}

// ReceiptPDF streams the printable PDF of the receipt currently on screen.
func (h *Handler) ReceiptPDF(w http.ResponseWriter, r *http.Request) {
	rec := h.Session.Receipt()
	if rec == nil {
		response.Error(w, http.StatusNotFound, "no_receipt", "no completed transaction to print")
		return
	}
	body, err := receipt.Render(*rec)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("inline; filename=receipt-%s.pdf", rec.TransactionUID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ArchivedReceipts lists receipt PDFs already uploaded to the object store.
func (h *Handler) ArchivedReceipts(w http.ResponseWriter, r *http.Request) {
	if !h.Receipts.Enabled() {
		response.Error(w, http.StatusNotFound, "archive_disabled", "receipt archive is not configured")
		return
	}
	keys, err := h.Receipts.ListArchived(r.Context())
	if err != nil {
		response.Error(w, http.StatusBadGateway, "archive_error", err.Error())
		return
	}
	response.Success(w, keys)
}
