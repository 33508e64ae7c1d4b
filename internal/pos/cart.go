package pos

import (
	"github.com/shopspring/decimal"

	"pos-terminal/internal/domain"
)

// Line is a single menu item plus quantity within the cart. UnitPrice is
// frozen at the moment the item was first added.
type Line struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

// cart is an insertion-ordered set of lines keyed uniquely by menu item id.
// It is owned by the active transaction and destroyed on reset.
type cart struct {
	lines []Line
}

func (c *cart) find(itemID string) int {
	for i := range c.lines {
		if c.lines[i].MenuItemID == itemID {
			return i
		}
	}
	return -1
}

// add increments an existing line or appends a new one at quantity 1.
func (c *cart) add(item domain.MenuItem) {
	if i := c.find(item.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, Line{
		MenuItemID: item.ID,
		Name:       item.Name,
		UnitPrice:  item.Price,
		Quantity:   1,
	})
}

// setQuantity pins a line to qty, removing it when qty reaches zero.
func (c *cart) setQuantity(itemID string, qty int) {
	i := c.find(itemID)
	if i < 0 {
		return
	}
	if qty <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return
	}
	c.lines[i].Quantity = qty
}

func (c *cart) quantity(itemID string) int {
	if i := c.find(itemID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// load replaces the cart with the lines of an existing order, bypassing the
// availability mirror: those items are already held server-side.
func (c *cart) load(items []domain.OrderItem) {
	c.lines = make([]Line, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		c.lines = append(c.lines, Line{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			UnitPrice:  item.Price,
			Quantity:   item.Quantity,
		})
	}
}

func (c *cart) clear() {
	c.lines = nil
}

func (c *cart) empty() bool {
	return len(c.lines) == 0
}

func (c *cart) snapshot() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// orderItems converts the cart to the wire shape used by order placement and
// settlement calls.
func (c *cart) orderItems() []domain.OrderItem {
	out := make([]domain.OrderItem, 0, len(c.lines))
	for _, line := range c.lines {
		out = append(out, domain.OrderItem{
			MenuItemID: line.MenuItemID,
			Name:       line.Name,
			Price:      line.UnitPrice,
			Quantity:   line.Quantity,
		})
	}
	return out
}
