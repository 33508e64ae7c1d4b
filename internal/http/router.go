package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"pos-terminal/internal/config"
	"pos-terminal/internal/http/handlers"
	"pos-terminal/internal/middleware"
	"pos-terminal/internal/notify"
	"pos-terminal/internal/pos"
	"pos-terminal/internal/receipt"
)

// NewRouter wires the terminal UI's local API. Every route dispatches an
// intent into the session or reads its state.
func NewRouter(session *pos.Session, feed *notify.Feed, receipts *receipt.Service, logger *zap.Logger, cfg config.Config, resync func()) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
			AllowCredentials: true,
			MaxAge:           300,
		}
		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}
		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{
		Session:  session,
		Feed:     feed,
		Receipts: receipts,
		Logger:   logger,
		Config:   cfg,
		Resync:   resync,
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.State)
		r.Post("/refresh", h.Refresh)

		r.Get("/notices", h.Notices)
		r.Post("/notices/read", h.NoticesMarkRead)

		r.Post("/cart/items", h.CartAddItem)
		r.Post("/cart/items/{itemID}/quantity", h.CartChangeQuantity)
		r.Post("/customer", h.SetCustomer)

		r.Post("/orders", h.PlaceOrder)
		r.Put("/orders/{orderID}/status", h.UpdateOrderStatus)
		r.Post("/bills/{orderID}/settle", h.SettleBill)

		r.Post("/payment", h.ProceedToPayment)
		r.Post("/payment/confirm", h.ConfirmPayment)
		r.Post("/reset", h.Reset)

		r.Get("/receipt.pdf", h.ReceiptPDF)
		r.Get("/receipts/archive", h.ArchivedReceipts)

		r.Post("/menu", h.SaveMenuItem)
		r.Put("/menu/{itemID}", h.SaveMenuItem)
		r.Delete("/menu/{itemID}", h.DeleteMenuItem)

		r.Get("/reports/summary", h.SalesSummary)
	})

	return r
}
