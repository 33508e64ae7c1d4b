package pos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-terminal/internal/domain"
)

type fakeGateway struct {
	snapshot *domain.Snapshot
	fetchErr error

	createOrderErr   error
	createOrderCalls int
	lastOrder        domain.NewOrderRequest

	// When set, CreateOrder signals entry and blocks until the gate closes.
	createOrderGate    chan struct{}
	createOrderEntered chan struct{}

	txResult *domain.TransactionResult
	txErr    error
	txCalls  int
	lastTx   domain.TransactionRequest

	statusErr error
	saveErr   error
	deleteErr error
}

func (f *fakeGateway) FetchAll(ctx context.Context) (*domain.Snapshot, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.snapshot, nil
}

func (f *fakeGateway) CreateOrder(ctx context.Context, req domain.NewOrderRequest) error {
	f.createOrderCalls++
	f.lastOrder = req
	if f.createOrderGate != nil {
		close(f.createOrderEntered)
		<-f.createOrderGate
	}
	return f.createOrderErr
}

func (f *fakeGateway) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return f.statusErr
}

func (f *fakeGateway) CreateTransaction(ctx context.Context, req domain.TransactionRequest) (*domain.TransactionResult, error) {
	f.txCalls++
	f.lastTx = req
	if f.txErr != nil {
		return nil, f.txErr
	}
	return f.txResult, nil
}

func (f *fakeGateway) SaveMenuItem(ctx context.Context, input domain.MenuItemInput, id string) error {
	return f.saveErr
}

func (f *fakeGateway) DeleteMenuItem(ctx context.Context, id string) error {
	return f.deleteErr
}

type noticeRecorder struct {
	kinds    []string
	messages []string
}

func (n *noticeRecorder) Notify(kind, message string) {
	n.kinds = append(n.kinds, kind)
	n.messages = append(n.messages, message)
}

func (n *noticeRecorder) last() (string, string) {
	if len(n.kinds) == 0 {
		return "", ""
	}
	return n.kinds[len(n.kinds)-1], n.messages[len(n.messages)-1]
}

func price(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func testSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Menu: []domain.MenuItem{
			{ID: "espresso", Name: "Espresso", Price: price("3.50"), Available: 5},
			{ID: "flat-white", Name: "Flat White", Price: price("10"), Available: 2},
			{ID: "tiramisu", Name: "Tiramisu", Price: price("6.25"), Available: 1},
			{ID: "soup", Name: "Soup of the Day", Price: price("4.00"), Available: 0},
		},
		Categories: []domain.Category{{ID: "drinks", Name: "Drinks"}},
		LiveOrders: []domain.LiveOrder{
			{
				ID:           "order-7",
				TableNumber:  "7",
				CustomerName: "Dana",
				Status:       domain.StatusReadyToServe,
				Items: []domain.OrderItem{
					{MenuItemID: "flat-white", Name: "Flat White", Price: price("10"), Quantity: 2},
				},
				CreatedAt: time.Now(),
			},
			{
				ID:           "order-9",
				TableNumber:  "9",
				CustomerName: "Lee",
				Status:       domain.StatusReadyToServe,
				Items:        nil,
			},
		},
	}
}

func newTestSession(t *testing.T, gw *fakeGateway) (*Session, *noticeRecorder) {
	t.Helper()
	if gw.snapshot == nil {
		gw.snapshot = testSnapshot()
	}
	recorder := &noticeRecorder{}
	session := NewSession(gw, recorder, zap.NewNop())
	session.ApplyRefresh(gw.snapshot)
	return session, recorder
}

func availability(t *testing.T, s *Session, itemID string) int {
	t.Helper()
	for _, item := range s.View().Menu {
		if item.ID == itemID {
			return item.Available
		}
	}
	t.Fatalf("item %s not in menu", itemID)
	return 0
}

func cartQuantity(s *Session, itemID string) int {
	for _, line := range s.View().Cart {
		if line.MenuItemID == itemID {
			return line.Quantity
		}
	}
	return 0
}

func TestAddItemConsumesAvailability(t *testing.T) {
	s, _ := newTestSession(t, &fakeGateway{})

	if err := s.AddItem("tiramisu"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := availability(t, s, "tiramisu"); got != 0 {
		t.Fatalf("expected availability 0, got %d", got)
	}
	if got := cartQuantity(s, "tiramisu"); got != 1 {
		t.Fatalf("expected cart quantity 1, got %d", got)
	}

	// Second add hits the floor: rejected, nothing changes.
	err := s.AddItem("tiramisu")
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := availability(t, s, "tiramisu"); got != 0 {
		t.Fatalf("availability changed on rejected add: %d", got)
	}
	if got := cartQuantity(s, "tiramisu"); got != 1 {
		t.Fatalf("cart changed on rejected add: %d", got)
	}
}

func TestAddItemOutOfStock(t *testing.T) {
	s, recorder := newTestSession(t, &fakeGateway{})

	err := s.AddItem("soup")
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := cartQuantity(s, "soup"); got != 0 {
		t.Fatalf("out-of-stock item reached the cart: qty %d", got)
	}
	if kind, _ := recorder.last(); kind != NoticeError {
		t.Fatalf("expected error notice, got %q", kind)
	}
}

func TestAvailabilityInvariantAcrossSequence(t *testing.T) {
	s, _ := newTestSession(t, &fakeGateway{})
	initial := map[string]int{}
	for _, item := range s.View().Menu {
		initial[item.ID] = item.Available
	}

	_ = s.AddItem("espresso")
	_ = s.AddItem("espresso")
	_ = s.AddItem("flat-white")
	_ = s.ChangeQuantity("espresso", 2)
	_ = s.ChangeQuantity("flat-white", -1)
	_ = s.AddItem("flat-white")
	_ = s.ChangeQuantity("espresso", -10) // clamps to zero, removes the line

	view := s.View()
	inCart := map[string]int{}
	for _, line := range view.Cart {
		if line.Quantity < 1 {
			t.Fatalf("line %s kept at quantity %d", line.MenuItemID, line.Quantity)
		}
		inCart[line.MenuItemID] = line.Quantity
	}
	for _, item := range view.Menu {
		want := initial[item.ID] - inCart[item.ID]
		if item.Available != want {
			t.Fatalf("item %s: displayed %d, want %d", item.ID, item.Available, want)
		}
		if item.Available < 0 {
			t.Fatalf("item %s: negative availability %d", item.ID, item.Available)
		}
	}
}

func TestChangeQuantityRestoresAvailability(t *testing.T) {
	s, _ := newTestSession(t, &fakeGateway{})
	_ = s.AddItem("flat-white")
	_ = s.AddItem("flat-white")

	if err := s.ChangeQuantity("flat-white", -1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := availability(t, s, "flat-white"); got != 1 {
		t.Fatalf("expected availability 1 after restore, got %d", got)
	}

	totals := s.View().Totals
	if !totals.Subtotal.Equal(price("10")) {
		t.Fatalf("expected subtotal 10.00, got %s", totals.Subtotal)
	}
	if !totals.Tax.Equal(price("1")) {
		t.Fatalf("expected tax 1.00, got %s", totals.Tax)
	}
	if !totals.Total.Equal(price("11")) {
		t.Fatalf("expected total 11.00, got %s", totals.Total)
	}
}

func TestChangeQuantityClampRemovesLine(t *testing.T) {
	s, _ := newTestSession(t, &fakeGateway{})
	_ = s.AddItem("espresso")
	_ = s.AddItem("espresso")

	if err := s.ChangeQuantity("espresso", -9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cartQuantity(s, "espresso"); got != 0 {
		t.Fatalf("expected line removed, got quantity %d", got)
	}
	// Only the two units actually in the cart are restored.
	if got := availability(t, s, "espresso"); got != 5 {
		t.Fatalf("expected availability back to 5, got %d", got)
	}
}

func TestChangeQuantityCannotOversell(t *testing.T) {
	s, _ := newTestSession(t, &fakeGateway{})
	_ = s.AddItem("tiramisu") // availability now 0

	err := s.ChangeQuantity("tiramisu", 1)
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := cartQuantity(s, "tiramisu"); got != 1 {
		t.Fatalf("cart changed on rejected increase: %d", got)
	}
}

func TestSettleBillWithoutItemsRejected(t *testing.T) {
	s, recorder := newTestSession(t, &fakeGateway{})

	err := s.SettleBill("order-9")
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := s.State(); got != StateOrdering {
		t.Fatalf("expected state ordering, got %s", got)
	}
	if kind, _ := recorder.last(); kind != NoticeError {
		t.Fatalf("expected error notice, got %q", kind)
	}
}

func TestSettleBillLoadsCart(t *testing.T) {
	s, _ := newTestSession(t, &fakeGateway{})

	if err := s.SettleBill("order-7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.State(); got != StateSettling {
		t.Fatalf("expected state settling, got %s", got)
	}
	view := s.View()
	if view.CustomerName != "Dana" || view.TableNumber != "7" {
		t.Fatalf("customer details not loaded: %q table %q", view.CustomerName, view.TableNumber)
	}
	if got := cartQuantity(s, "flat-white"); got != 2 {
		t.Fatalf("expected loaded quantity 2, got %d", got)
	}
	// Loading an existing bill must not touch the availability mirror.
	if got := availability(t, s, "flat-white"); got != 2 {
		t.Fatalf("mirror changed by settle: %d", got)
	}

	// Cart and customer details are locked while settling.
	if err := s.AddItem("espresso"); !IsValidation(err) {
		t.Fatalf("expected add to be rejected while settling, got %v", err)
	}
	if err := s.ChangeQuantity("flat-white", 1); !IsValidation(err) {
		t.Fatalf("expected quantity change to be rejected while settling, got %v", err)
	}
	if err := s.SetCustomer("Other", "12"); !IsValidation(err) {
		t.Fatalf("expected customer change to be rejected while settling, got %v", err)
	}
}

func TestProceedToPaymentFreezesTotals(t *testing.T) {
	s, _ := newTestSession(t, &fakeGateway{})
	if err := s.SettleBill("order-7"); err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if err := s.ProceedToPayment(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.State(); got != StateAwaitingPayment {
		t.Fatalf("expected awaiting-payment, got %s", got)
	}

	payment := s.View().Payment
	if payment == nil {
		t.Fatalf("payment snapshot missing")
	}
	if !payment.Subtotal.Equal(price("20")) || !payment.Tax.Equal(price("2")) || !payment.Total.Equal(price("22")) {
		t.Fatalf("unexpected payment snapshot: %s/%s/%s", payment.Subtotal, payment.Tax, payment.Total)
	}
}

func TestProceedToPaymentFromOrderingIsIllegal(t *testing.T) {
	s, _ := newTestSession(t, &fakeGateway{})

	err := s.ProceedToPayment()
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected transition error, got %v", err)
	}
	if te.From != StateOrdering || te.To != StateAwaitingPayment {
		t.Fatalf("unexpected transition error: %v", te)
	}
}

func TestConfirmPaymentNoMatchingOrder(t *testing.T) {
	gw := &fakeGateway{}
	s, recorder := newTestSession(t, gw)
	if err := s.SettleBill("order-7"); err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if err := s.ProceedToPayment(); err != nil {
		t.Fatalf("proceed failed: %v", err)
	}

	// A refresh arrives in which the order was closed elsewhere.
	snap := testSnapshot()
	snap.LiveOrders = nil
	s.ApplyRefresh(snap)

	err := s.ConfirmPayment(context.Background())
	if !errors.Is(err, ErrNoOpenOrder) {
		t.Fatalf("expected ErrNoOpenOrder, got %v", err)
	}
	if gw.txCalls != 0 {
		t.Fatalf("gateway called despite missing order")
	}
	// Recoverable: held at the payment step for retry.
	if got := s.State(); got != StateAwaitingPayment {
		t.Fatalf("expected awaiting-payment, got %s", got)
	}
	if kind, _ := recorder.last(); kind != NoticeError {
		t.Fatalf("expected error notice, got %q", kind)
	}
}

func TestConfirmPaymentSuccess(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	gw := &fakeGateway{
		txResult: &domain.TransactionResult{ID: "tx-1", TransactionUID: "TX-0001", CreatedAt: created},
	}
	s, _ := newTestSession(t, gw)
	if err := s.SettleBill("order-7"); err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if err := s.ProceedToPayment(); err != nil {
		t.Fatalf("proceed failed: %v", err)
	}

	if err := s.ConfirmPayment(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.State(); got != StateReceipt {
		t.Fatalf("expected receipt state, got %s", got)
	}
	if gw.lastTx.OrderID != "order-7" {
		t.Fatalf("expected settlement against order-7, got %q", gw.lastTx.OrderID)
	}
	if !gw.lastTx.Total.Equal(price("22")) {
		t.Fatalf("expected frozen total 22, got %s", gw.lastTx.Total)
	}

	rec := s.Receipt()
	if rec == nil {
		t.Fatalf("receipt missing")
	}
	if rec.TransactionUID != "TX-0001" || rec.TableNumber != "7" {
		t.Fatalf("receipt not merged from result: %+v", rec)
	}
	if len(rec.Items) != 1 || rec.Items[0].Quantity != 2 {
		t.Fatalf("receipt missing cart snapshot: %+v", rec.Items)
	}
	if !rec.Total.Equal(price("22")) {
		t.Fatalf("receipt total drifted: %s", rec.Total)
	}
}

func TestConfirmPaymentBackendFailure(t *testing.T) {
	gw := &fakeGateway{txErr: errors.New("card declined")}
	s, recorder := newTestSession(t, gw)
	if err := s.SettleBill("order-7"); err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if err := s.ProceedToPayment(); err != nil {
		t.Fatalf("proceed failed: %v", err)
	}

	if err := s.ConfirmPayment(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if got := s.State(); got != StateAwaitingPayment {
		t.Fatalf("expected awaiting-payment after failure, got %s", got)
	}
	if s.Receipt() != nil {
		t.Fatalf("receipt created despite failure")
	}
	_, msg := recorder.last()
	if msg != "Payment failed: card declined" {
		t.Fatalf("unexpected notice %q", msg)
	}
}

func TestResetFromEveryState(t *testing.T) {
	prepare := map[string]func(*Session){
		"ordering": func(s *Session) {
			_ = s.AddItem("espresso")
			_ = s.SetCustomer("Ana", "3")
		},
		"settling": func(s *Session) {
			_ = s.SettleBill("order-7")
		},
		"awaiting-payment": func(s *Session) {
			_ = s.SettleBill("order-7")
			_ = s.ProceedToPayment()
		},
		"receipt": func(s *Session) {
			_ = s.SettleBill("order-7")
			_ = s.ProceedToPayment()
			_ = s.ConfirmPayment(context.Background())
		},
	}

	for name, setup := range prepare {
		t.Run(name, func(t *testing.T) {
			gw := &fakeGateway{txResult: &domain.TransactionResult{ID: "tx", TransactionUID: "TX"}}
			s, _ := newTestSession(t, gw)
			setup(s)

			s.Reset()

			view := s.View()
			if view.State != "ordering" {
				t.Fatalf("expected ordering, got %s", view.State)
			}
			if len(view.Cart) != 0 {
				t.Fatalf("cart not cleared: %d lines", len(view.Cart))
			}
			if view.CustomerName != "" || view.TableNumber != "" {
				t.Fatalf("customer details not cleared: %q %q", view.CustomerName, view.TableNumber)
			}
			if view.Payment != nil || view.Receipt != nil {
				t.Fatalf("payment/receipt not cleared")
			}
		})
	}
}

func TestPlaceOrderRequiresCustomerAndTable(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestSession(t, gw)
	_ = s.AddItem("espresso")

	err := s.PlaceOrder(context.Background())
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gw.createOrderCalls != 0 {
		t.Fatalf("gateway called despite local rejection")
	}
}

func TestPlaceOrderSuccessResetsSession(t *testing.T) {
	gw := &fakeGateway{}
	s, recorder := newTestSession(t, gw)
	_ = s.AddItem("espresso")
	_ = s.AddItem("espresso")
	_ = s.SetCustomer("Ana", "3")

	if err := s.PlaceOrder(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.lastOrder.TableNumber != "3" || len(gw.lastOrder.Items) != 1 {
		t.Fatalf("unexpected order payload: %+v", gw.lastOrder)
	}
	if gw.lastOrder.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", gw.lastOrder.Items[0].Quantity)
	}
	if len(s.View().Cart) != 0 || s.State() != StateOrdering {
		t.Fatalf("session not reset after placement")
	}
	if kind, _ := recorder.last(); kind != NoticeNewOrder {
		t.Fatalf("expected new-order notice, got %q", kind)
	}
}

func TestPlaceOrderFailureKeepsEverything(t *testing.T) {
	gw := &fakeGateway{createOrderErr: errors.New("backend down")}
	s, _ := newTestSession(t, gw)
	_ = s.AddItem("espresso")
	_ = s.SetCustomer("Ana", "3")

	if err := s.PlaceOrder(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if got := cartQuantity(s, "espresso"); got != 1 {
		t.Fatalf("cart lost on failure: qty %d", got)
	}
	if got := availability(t, s, "espresso"); got != 4 {
		t.Fatalf("mirror drifted on failure: %d", got)
	}
	if view := s.View(); view.CustomerName != "Ana" {
		t.Fatalf("customer details lost on failure")
	}
}

func TestPlaceOrderWhileInFlightIsRejectedWithNotice(t *testing.T) {
	gw := &fakeGateway{
		createOrderGate:    make(chan struct{}),
		createOrderEntered: make(chan struct{}),
	}
	s, recorder := newTestSession(t, gw)
	_ = s.AddItem("espresso")
	_ = s.SetCustomer("Ana", "3")

	done := make(chan error, 1)
	go func() { done <- s.PlaceOrder(context.Background()) }()
	<-gw.createOrderEntered

	err := s.PlaceOrder(context.Background())
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if kind, msg := recorder.last(); kind != NoticeError || msg != ErrBusy.Error() {
		t.Fatalf("busy rejection not surfaced as a notice: %q %q", kind, msg)
	}

	close(gw.createOrderGate)
	if err := <-done; err != nil {
		t.Fatalf("first placement failed: %v", err)
	}
	if gw.createOrderCalls != 1 {
		t.Fatalf("expected one gateway call, got %d", gw.createOrderCalls)
	}
}

func TestChangeQuantityAfterItemLeftMenu(t *testing.T) {
	gw := &fakeGateway{}
	s, recorder := newTestSession(t, gw)
	_ = s.AddItem("espresso")

	// A refresh arrives in which the item was withdrawn server-side.
	snap := testSnapshot()
	snap.Menu = snap.Menu[1:]
	s.ApplyRefresh(snap)

	err := s.ChangeQuantity("espresso", 1)
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, msg := recorder.last(); msg != "Espresso is no longer on the menu" {
		t.Fatalf("unexpected notice %q", msg)
	}
	if got := cartQuantity(s, "espresso"); got != 1 {
		t.Fatalf("cart changed on rejected increase: %d", got)
	}
}

func TestRefreshReplacesMirrorsWholesale(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestSession(t, gw)
	_ = s.AddItem("espresso") // optimistic decrement to 4

	// The server's snapshot wins, optimistic decrements included.
	next := testSnapshot()
	next.Menu[0].Available = 9
	gw.snapshot = next
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := availability(t, s, "espresso"); got != 9 {
		t.Fatalf("expected wholesale replacement to 9, got %d", got)
	}
	// The cart itself is untouched by reconciliation.
	if got := cartQuantity(s, "espresso"); got != 1 {
		t.Fatalf("cart changed by refresh: %d", got)
	}
}

func TestRefreshFailureLeavesStateUnchanged(t *testing.T) {
	gw := &fakeGateway{}
	s, recorder := newTestSession(t, gw)
	before := availability(t, s, "espresso")

	gw.fetchErr = errors.New("connection refused")
	if err := s.Refresh(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if got := availability(t, s, "espresso"); got != before {
		t.Fatalf("mirror changed on failed refresh")
	}
	if kind, _ := recorder.last(); kind != NoticeError {
		t.Fatalf("expected error notice, got %q", kind)
	}
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestSession(t, gw)

	err := s.UpdateOrderStatus(context.Background(), "order-7", domain.OrderStatus("Vanished"))
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
