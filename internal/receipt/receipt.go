// Package receipt renders settled transactions to PDF and optionally
// archives them to the object store.
package receipt

import (
	"bytes"
	"context"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-terminal/internal/domain"
	"pos-terminal/internal/storage"
)

type Service struct {
	store *storage.ObjectStore
	log   *zap.Logger
}

// NewService builds the receipt service. store may be nil, which disables
// archiving; rendering always works.
func NewService(store *storage.ObjectStore, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// Render produces the printable PDF for a settled transaction.
func Render(r domain.Receipt) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "Payment Receipt", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Transaction %s", r.TransactionUID), "", 1, "C", false, 0, "")
	if !r.CreatedAt.IsZero() {
		pdf.CellFormat(0, 5, r.CreatedAt.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "", 9)
	if r.CustomerName != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Customer: %s", r.CustomerName), "", 1, "L", false, 0, "")
	}
	if r.TableNumber != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Table: %s", r.TableNumber), "", 1, "L", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Items", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, item := range r.Items {
		line := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		pdf.CellFormat(120, 5, fmt.Sprintf("%dx %s", item.Quantity, item.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, line.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Totals", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(120, 5, "Subtotal", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, r.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(120, 5, "Tax (10%)", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, r.Tax.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(120, 6, "Total", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, r.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5, "Thank you for dining with us.", "", 1, "C", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Archive renders the receipt and uploads it under receipts/<uid>.pdf.
// Returns the public URL. No-op error when archiving is disabled.
func (s *Service) Archive(ctx context.Context, r domain.Receipt) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("receipt archive is not configured")
	}
	body, err := Render(r)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("receipts/%s.pdf", r.TransactionUID)
	url, err := s.store.PutObject(ctx, key, body, "application/pdf")
	if err != nil {
		return "", err
	}
	s.log.Info("receipt archived", zap.String("key", key))
	return url, nil
}

// ListArchived returns the keys of every archived receipt.
func (s *Service) ListArchived(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return nil, fmt.Errorf("receipt archive is not configured")
	}
	return s.store.ListKeys(ctx, "receipts/")
}

// Enabled reports whether archiving is configured.
func (s *Service) Enabled() bool {
	return s.store != nil
}
