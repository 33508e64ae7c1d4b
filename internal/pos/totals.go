package pos

import (
	"github.com/shopspring/decimal"

	"pos-terminal/internal/domain"
)

// taxRate is the fixed dine-in tax applied to every bill.
var taxRate = decimal.RequireFromString("0.10")

// ComputeTotals derives subtotal, tax and total from cart lines. It is the
// single source of truth for amounts: the cart sidebar, the frozen payment
// snapshot and the receipt all go through it, recomputed on every read.
func ComputeTotals(lines []Line) domain.PaymentDetails {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	tax := subtotal.Mul(taxRate)
	return domain.PaymentDetails{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
