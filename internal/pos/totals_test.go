package pos

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeTotalsEmptyCart(t *testing.T) {
	totals := ComputeTotals(nil)
	if !totals.Subtotal.IsZero() || !totals.Tax.IsZero() || !totals.Total.IsZero() {
		t.Fatalf("expected all zero, got %s/%s/%s", totals.Subtotal, totals.Tax, totals.Total)
	}
}

func TestComputeTotals(t *testing.T) {
	cases := []struct {
		name     string
		lines    []Line
		subtotal string
		tax      string
		total    string
	}{
		{
			name:     "single line",
			lines:    []Line{{UnitPrice: price("10"), Quantity: 1}},
			subtotal: "10", tax: "1", total: "11",
		},
		{
			name: "multiple lines",
			lines: []Line{
				{UnitPrice: price("3.50"), Quantity: 2},
				{UnitPrice: price("6.25"), Quantity: 1},
			},
			subtotal: "13.25", tax: "1.325", total: "14.575",
		},
		{
			name:     "quantity scales price",
			lines:    []Line{{UnitPrice: price("4.00"), Quantity: 5}},
			subtotal: "20", tax: "2", total: "22",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals := ComputeTotals(tc.lines)
			if !totals.Subtotal.Equal(price(tc.subtotal)) {
				t.Fatalf("subtotal: expected %s, got %s", tc.subtotal, totals.Subtotal)
			}
			if !totals.Tax.Equal(price(tc.tax)) {
				t.Fatalf("tax: expected %s, got %s", tc.tax, totals.Tax)
			}
			if !totals.Total.Equal(price(tc.total)) {
				t.Fatalf("total: expected %s, got %s", tc.total, totals.Total)
			}
		})
	}
}

func TestTaxIsExactlyTenPercent(t *testing.T) {
	rate := decimal.RequireFromString("0.10")
	for _, lines := range [][]Line{
		{{UnitPrice: price("0.01"), Quantity: 1}},
		{{UnitPrice: price("99.99"), Quantity: 3}},
		{{UnitPrice: price("7.77"), Quantity: 7}, {UnitPrice: price("0.50"), Quantity: 2}},
	} {
		totals := ComputeTotals(lines)
		if !totals.Tax.Equal(totals.Subtotal.Mul(rate)) {
			t.Fatalf("tax %s is not 10%% of subtotal %s", totals.Tax, totals.Subtotal)
		}
		if !totals.Total.Equal(totals.Subtotal.Add(totals.Tax)) {
			t.Fatalf("total %s is not subtotal+tax", totals.Total)
		}
	}
}
