package pos

import (
	"pos-terminal/internal/domain"
)

// View is a read-only snapshot of the session for rendering. Totals are
// recomputed from the live cart on every call, never cached.
type View struct {
	State        string                  `json:"state"`
	Cart         []Line                  `json:"cart"`
	Totals       domain.PaymentDetails   `json:"totals"`
	CustomerName string                  `json:"customer_name"`
	TableNumber  string                  `json:"table_number"`
	Menu         []domain.MenuItem       `json:"menu"`
	Categories   []domain.Category       `json:"categories"`
	LiveOrders   []domain.LiveOrder      `json:"live_orders"`
	History      []domain.CompletedOrder `json:"history"`
	Payment      *domain.PaymentDetails  `json:"payment,omitempty"`
	Receipt      *domain.Receipt         `json:"receipt,omitempty"`
	Processing   bool                    `json:"processing"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := View{
		State:        s.machine.state.String(),
		Cart:         s.cart.snapshot(),
		Totals:       ComputeTotals(s.cart.lines),
		CustomerName: s.customerName,
		TableNumber:  s.tableNumber,
		Menu:         s.mirror.snapshot(),
		Categories:   append([]domain.Category(nil), s.categories...),
		LiveOrders:   append([]domain.LiveOrder(nil), s.liveOrders...),
		History:      append([]domain.CompletedOrder(nil), s.history...),
		Processing:   len(s.inFlight) > 0,
	}
	if s.payment != nil {
		payment := *s.payment
		view.Payment = &payment
	}
	if s.receipt != nil {
		receipt := *s.receipt
		view.Receipt = &receipt
	}
	return view
}

// State reports the current transaction state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.state
}

// Receipt returns the completed-order receipt, or nil outside the Receipt
// state.
func (s *Session) Receipt() *domain.Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.receipt == nil {
		return nil
	}
	receipt := *s.receipt
	return &receipt
}
