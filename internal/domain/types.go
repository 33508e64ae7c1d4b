package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups menu items for browsing.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MenuItem is the server-owned menu record. The terminal holds a read-mostly
// mirror of it and optimistically decrements Available as the cart grows.
type MenuItem struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Available  int             `json:"available"`
	Sold       int             `json:"sold"`
	CategoryID string          `json:"category_id"`
}

// MenuItemInput is the payload for creating or updating a menu item.
type MenuItemInput struct {
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Available  int             `json:"available"`
	CategoryID string          `json:"category_id"`
}

// OrderItem is one line of a placed order as the backend reports it.
type OrderItem struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}

// LiveOrder is an open order held by the kitchen. Mirrored read-only except
// for status transitions the terminal requests.
type LiveOrder struct {
	ID           string      `json:"id"`
	TableNumber  string      `json:"table_number"`
	CustomerName string      `json:"customer_name"`
	Status       OrderStatus `json:"status"`
	Items        []OrderItem `json:"items"`
	CreatedAt    time.Time   `json:"created_at"`
}

// CompletedOrder is a settled transaction as stored in order history.
type CompletedOrder struct {
	ID             string          `json:"id"`
	TransactionUID string          `json:"transaction_uid"`
	CustomerName   string          `json:"customer_name"`
	TableNumber    string          `json:"table_number"`
	Items          []OrderItem     `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PaymentDetails is the totals snapshot frozen when payment starts, so the
// amount charged cannot drift from what was shown.
type PaymentDetails struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Receipt merges the backend's settlement result with the local cart snapshot
// and payment details. Write-once; discarded on reset.
type Receipt struct {
	ID             string          `json:"id"`
	TransactionUID string          `json:"transaction_uid"`
	CustomerName   string          `json:"customer_name"`
	TableNumber    string          `json:"table_number"`
	Items          []OrderItem     `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Snapshot is one full read of everything the backend owns. Refreshes replace
// the terminal's mirrors with it wholesale.
type Snapshot struct {
	Menu       []MenuItem
	Categories []Category
	LiveOrders []LiveOrder
	History    []CompletedOrder
}

// NewOrderRequest is the payload for placing a dine-in order.
type NewOrderRequest struct {
	CustomerName string      `json:"customerName"`
	TableNumber  string      `json:"tableNumber"`
	Items        []OrderItem `json:"items"`
}

// TransactionRequest is the authoritative payment-settlement payload.
type TransactionRequest struct {
	Cart         []OrderItem     `json:"cart"`
	CustomerName string          `json:"customerName"`
	TableNumber  string          `json:"tableNumber"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	OrderID      string          `json:"orderId"`
}

// TransactionResult is the backend's settlement acknowledgement.
type TransactionResult struct {
	ID             string    `json:"id"`
	TransactionUID string    `json:"transaction_uid"`
	CreatedAt      time.Time `json:"created_at"`
}
