package pos

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"pos-terminal/internal/domain"
)

// Gateway is the remote order backend as the session consumes it. The
// backend is authoritative for menu, inventory and order persistence; the
// session only mirrors it.
type Gateway interface {
	FetchAll(ctx context.Context) (*domain.Snapshot, error)
	CreateOrder(ctx context.Context, req domain.NewOrderRequest) error
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	CreateTransaction(ctx context.Context, req domain.TransactionRequest) (*domain.TransactionResult, error)
	SaveMenuItem(ctx context.Context, input domain.MenuItemInput, id string) error
	DeleteMenuItem(ctx context.Context, id string) error
}

// Notifier receives non-blocking user notices. Nothing the session reports
// through it is fatal to the process.
type Notifier interface {
	Notify(kind, message string)
}

const (
	NoticeError    = "error"
	NoticeSuccess  = "success"
	NoticeInfo     = "info"
	NoticeNewOrder = "new-order"
)

// Action names for the single-flight gate. One submission per action class
// may be in flight; two different actions may still overlap.
const (
	actionPlaceOrder     = "place-order"
	actionConfirmPayment = "confirm-payment"
	actionSaveItem       = "save-item"
)

// Session is the terminal's whole mutable state: cart, availability mirror,
// live-order and history mirrors, the transaction state machine, and the
// frozen payment snapshot. All intents and refreshes serialize through its
// mutex; network calls run outside it, gated per action.
type Session struct {
	gw       Gateway
	log      *zap.Logger
	notifier Notifier

	mu           sync.Mutex
	machine      machine
	cart         cart
	mirror       *mirror
	categories   []domain.Category
	liveOrders   []domain.LiveOrder
	history      []domain.CompletedOrder
	customerName string
	tableNumber  string
	payment      *domain.PaymentDetails
	receipt      *domain.Receipt
	inFlight     map[string]bool
}

func NewSession(gw Gateway, notifier Notifier, log *zap.Logger) *Session {
	return &Session{
		gw:       gw,
		log:      log,
		notifier: notifier,
		mirror:   newMirror(),
		inFlight: make(map[string]bool),
	}
}

func (s *Session) notify(kind, message string) {
	if s.notifier != nil {
		s.notifier.Notify(kind, message)
	}
}

// reject surfaces a locally refused intent and returns it unchanged.
func (s *Session) reject(err error) error {
	s.notify(NoticeError, err.Error())
	return err
}

// begin claims the single-flight slot for an action. A re-entrant submission
// is refused with a notice, like every other rejected intent.
func (s *Session) begin(action string) error {
	if s.inFlight[action] {
		return s.reject(ErrBusy)
	}
	s.inFlight[action] = true
	return nil
}

func (s *Session) end(action string) {
	delete(s.inFlight, action)
}

// ApplyRefresh replaces every mirror wholesale with a fresh server snapshot.
// Last full snapshot wins; local optimistic decrements not yet reflected by
// the server are overwritten, which is the accepted reconciliation policy.
func (s *Session) ApplyRefresh(snap *domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirror.replace(snap.Menu)
	s.categories = append([]domain.Category(nil), snap.Categories...)
	s.liveOrders = append([]domain.LiveOrder(nil), snap.LiveOrders...)
	s.history = append([]domain.CompletedOrder(nil), snap.History...)
}

// Refresh performs a full fetch and reconciles. Any one read failing fails
// the whole refresh and leaves the mirrors untouched.
func (s *Session) Refresh(ctx context.Context) error {
	snap, err := s.gw.FetchAll(ctx)
	if err != nil {
		s.log.Warn("refresh failed", zap.Error(err))
		s.notify(NoticeError, "Could not load data from the server.")
		return err
	}
	s.ApplyRefresh(snap)
	return nil
}

// AddItem puts one unit of a menu item into the cart, consuming one unit of
// mirrored availability. Rejected while settling or when the item is out of
// stock; the cart and mirror stay unchanged in that case.
func (s *Session) AddItem(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.state != StateOrdering {
		return s.reject(validationf("cannot add items while settling a bill"))
	}
	item, ok := s.mirror.get(itemID)
	if !ok {
		return s.reject(validationf("unknown menu item"))
	}
	if item.Available == 0 {
		return s.reject(validationf("%s is out of stock", item.Name))
	}
	s.mirror.adjust(itemID, -1)
	s.cart.add(item)
	return nil
}

// ChangeQuantity moves a cart line by delta. The mirror moves by -delta:
// growing the cart consumes availability, shrinking it restores it. The
// resulting quantity is floored at zero, removing the line.
func (s *Session) ChangeQuantity(itemID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.state != StateOrdering {
		return s.reject(validationf("cannot change quantities while settling a bill"))
	}
	current := s.cart.quantity(itemID)
	if current == 0 {
		return s.reject(validationf("item is not in the cart"))
	}
	next := current + delta
	if next < 0 {
		next = 0
	}
	applied := next - current
	if applied == 0 {
		return nil
	}
	line := s.cart.lines[s.cart.find(itemID)]
	if _, ok := s.mirror.get(itemID); !ok {
		return s.reject(validationf("%s is no longer on the menu", line.Name))
	}
	if !s.mirror.adjust(itemID, -applied) {
		return s.reject(validationf("%s is out of stock", line.Name))
	}
	s.cart.setQuantity(itemID, next)
	return nil
}

// SetCustomer records the customer name and table for the order being
// composed. Both are immutable once an existing bill has been loaded.
func (s *Session) SetCustomer(name, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.state != StateOrdering {
		return s.reject(validationf("customer details are locked while settling a bill"))
	}
	s.customerName = strings.TrimSpace(name)
	s.tableNumber = strings.TrimSpace(table)
	return nil
}

// PlaceOrder persists the composed order. On success the session resets to a
// clean Ordering state; the caller is expected to schedule a resync so the
// mirrors pick up the server's own counts. On failure everything is left
// exactly as it was so staff can retry.
func (s *Session) PlaceOrder(ctx context.Context) error {
	s.mu.Lock()
	if s.machine.state != StateOrdering {
		err := s.reject(validationf("an order can only be placed while ordering"))
		s.mu.Unlock()
		return err
	}
	if s.customerName == "" || s.tableNumber == "" {
		err := s.reject(validationf("customer name and table are required"))
		s.mu.Unlock()
		return err
	}
	if s.cart.empty() {
		err := s.reject(validationf("the cart is empty"))
		s.mu.Unlock()
		return err
	}
	if err := s.begin(actionPlaceOrder); err != nil {
		s.mu.Unlock()
		return err
	}
	req := domain.NewOrderRequest{
		CustomerName: s.customerName,
		TableNumber:  s.tableNumber,
		Items:        s.cart.orderItems(),
	}
	s.mu.Unlock()

	err := s.gw.CreateOrder(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.end(actionPlaceOrder)
	if err != nil {
		s.log.Warn("order placement failed", zap.String("table", req.TableNumber), zap.Error(err))
		s.notify(NoticeError, err.Error())
		return err
	}
	s.log.Info("order placed", zap.String("table", req.TableNumber), zap.Int("lines", len(req.Items)))
	s.notify(NoticeNewOrder, fmt.Sprintf("New order placed for table %s.", req.TableNumber))
	s.resetLocked()
	return nil
}

// SettleBill loads an existing kitchen-ready order into the cart and enters
// Settling. An order without line items is refused and the session stays in
// Ordering.
func (s *Session) SettleBill(orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var order *domain.LiveOrder
	for i := range s.liveOrders {
		if s.liveOrders[i].ID == orderID {
			order = &s.liveOrders[i]
			break
		}
	}
	if order == nil {
		return s.reject(validationf("order not found"))
	}
	if len(order.Items) == 0 {
		return s.reject(validationf("order for table %s has no items to settle", order.TableNumber))
	}
	if err := s.machine.transition(StateSettling); err != nil {
		return s.reject(err)
	}
	s.cart.load(order.Items)
	s.customerName = order.CustomerName
	s.tableNumber = order.TableNumber
	s.notify(NoticeInfo, fmt.Sprintf("Loaded bill for table %s.", order.TableNumber))
	return nil
}

// ProceedToPayment freezes the current totals into an immutable payment
// snapshot and enters AwaitingPayment. The cart cannot change again until
// reset.
func (s *Session) ProceedToPayment() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.transition(StateAwaitingPayment); err != nil {
		return s.reject(err)
	}
	totals := ComputeTotals(s.cart.lines)
	s.payment = &totals
	return nil
}

// ConfirmPayment settles the bill against the backend. The live order is
// located by table number; its absence aborts the payment but holds the
// session in AwaitingPayment so staff can retry after a resync.
func (s *Session) ConfirmPayment(ctx context.Context) error {
	s.mu.Lock()
	if s.machine.state != StateAwaitingPayment {
		err := s.reject(&TransitionError{From: s.machine.state, To: StateReceipt})
		s.mu.Unlock()
		return err
	}
	if err := s.begin(actionConfirmPayment); err != nil {
		s.mu.Unlock()
		return err
	}
	order, ok := s.findLiveOrderByTable(s.tableNumber)
	if !ok {
		s.end(actionConfirmPayment)
		err := s.reject(ErrNoOpenOrder)
		s.mu.Unlock()
		return err
	}
	payment := *s.payment
	req := domain.TransactionRequest{
		Cart:         s.cart.orderItems(),
		CustomerName: s.customerName,
		TableNumber:  s.tableNumber,
		Subtotal:     payment.Subtotal,
		Tax:          payment.Tax,
		Total:        payment.Total,
		OrderID:      order.ID,
	}
	s.mu.Unlock()

	result, err := s.gw.CreateTransaction(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.end(actionConfirmPayment)
	if err != nil {
		s.log.Warn("payment failed", zap.String("table", req.TableNumber), zap.Error(err))
		s.notify(NoticeError, fmt.Sprintf("Payment failed: %s", err.Error()))
		return err
	}
	s.receipt = &domain.Receipt{
		ID:             result.ID,
		TransactionUID: result.TransactionUID,
		CustomerName:   req.CustomerName,
		TableNumber:    req.TableNumber,
		Items:          req.Cart,
		Subtotal:       payment.Subtotal,
		Tax:            payment.Tax,
		Total:          payment.Total,
		CreatedAt:      result.CreatedAt,
	}
	if err := s.machine.transition(StateReceipt); err != nil {
		// Reset raced the payment call; keep the receipt discarded.
		s.receipt = nil
		return s.reject(err)
	}
	s.log.Info("payment settled",
		zap.String("table", req.TableNumber),
		zap.String("transactionUid", result.TransactionUID))
	s.notify(NoticeSuccess, fmt.Sprintf("Payment received for table %s.", req.TableNumber))
	return nil
}

func (s *Session) findLiveOrderByTable(table string) (domain.LiveOrder, bool) {
	want := strings.TrimSpace(table)
	for _, order := range s.liveOrders {
		if strings.EqualFold(strings.TrimSpace(order.TableNumber), want) {
			return order, true
		}
	}
	return domain.LiveOrder{}, false
}

// Reset abandons the transaction from any state: cart, customer details,
// payment snapshot and receipt are cleared atomically and the session
// returns to Ordering. Never blocked.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.cart.clear()
	s.customerName = ""
	s.tableNumber = ""
	s.payment = nil
	s.receipt = nil
	s.machine.state = StateOrdering
}

// UpdateOrderStatus asks the backend to move a live order through the
// kitchen lifecycle. The mirror is not touched; the follow-up resync is.
func (s *Session) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	if !status.Valid() {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.reject(validationf("unknown order status %q", string(status)))
	}
	if err := s.gw.UpdateOrderStatus(ctx, orderID, status); err != nil {
		s.log.Warn("order status update failed", zap.String("orderId", orderID), zap.Error(err))
		s.notify(NoticeError, err.Error())
		return err
	}
	return nil
}

// SaveMenuItem creates (empty id) or updates a menu item on the backend.
func (s *Session) SaveMenuItem(ctx context.Context, input domain.MenuItemInput, id string) error {
	s.mu.Lock()
	if err := s.begin(actionSaveItem); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	err := s.gw.SaveMenuItem(ctx, input, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.end(actionSaveItem)
	if err != nil {
		s.notify(NoticeError, err.Error())
		return err
	}
	return nil
}

// DeleteMenuItem removes a menu item on the backend.
func (s *Session) DeleteMenuItem(ctx context.Context, id string) error {
	s.mu.Lock()
	if err := s.begin(actionSaveItem); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	err := s.gw.DeleteMenuItem(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.end(actionSaveItem)
	if err != nil {
		s.notify(NoticeError, err.Error())
		return err
	}
	return nil
}
