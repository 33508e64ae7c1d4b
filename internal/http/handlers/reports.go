package handlers

import (
	"net/http"
	"sort"

	"github.com/shopspring/decimal"

	"pos-terminal/pkg/response"
)

type itemSales struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type salesSummary struct {
	Orders     int             `json:"orders"`
	GrossSales decimal.Decimal `json:"gross_sales"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	TopItems   []itemSales     `json:"top_items"`
}

// SalesSummary aggregates settled history into headline numbers. Chart data
// stays with the UI; this is just the totals row.
func (h *Handler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	view := h.Session.View()

	summary := salesSummary{
		GrossSales: decimal.Zero,
		TaxTotal:   decimal.Zero,
	}
	byItem := make(map[string]int)
	for _, order := range view.History {
		summary.Orders++
		summary.GrossSales = summary.GrossSales.Add(order.Total)
		summary.TaxTotal = summary.TaxTotal.Add(order.Tax)
		for _, item := range order.Items {
			byItem[item.Name] += item.Quantity
		}
	}
	for name, qty := range byItem {
		summary.TopItems = append(summary.TopItems, itemSales{Name: name, Quantity: qty})
	}
	sort.Slice(summary.TopItems, func(i, j int) bool {
		if summary.TopItems[i].Quantity != summary.TopItems[j].Quantity {
			return summary.TopItems[i].Quantity > summary.TopItems[j].Quantity
		}
		return summary.TopItems[i].Name < summary.TopItems[j].Name
	})
	if len(summary.TopItems) > 5 {
		summary.TopItems = summary.TopItems[:5]
	}

	response.Success(w, summary)
}
