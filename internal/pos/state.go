package pos

// State is the transaction lifecycle of a single table's order.
//
// Ordering is the resting state: staff compose a new order, which on
// placement is persisted and the session returns to Ordering. Settling is
// entered by loading an existing kitchen-ready bill; it leads to
// AwaitingPayment and then Receipt. Reset back to Ordering is legal from
// every state.
type State int

const (
	StateOrdering State = iota
	StateSettling
	StateAwaitingPayment
	StateReceipt
)

func (s State) String() string {
	switch s {
	case StateOrdering:
		return "ordering"
	case StateSettling:
		return "settling"
	case StateAwaitingPayment:
		return "awaiting-payment"
	case StateReceipt:
		return "receipt"
	}
	return "unknown"
}

type machine struct {
	state State
}

// transition validates and applies a state move, returning a TransitionError
// for illegal ones. Moving to StateOrdering (reset) is always legal.
func (m *machine) transition(to State) error {
	if to == StateOrdering {
		m.state = to
		return nil
	}

	legal := false
	switch m.state {
	case StateOrdering:
		legal = to == StateSettling
	case StateSettling:
		legal = to == StateAwaitingPayment
	case StateAwaitingPayment:
		legal = to == StateReceipt
	}
	if !legal {
		return &TransitionError{From: m.state, To: to}
	}
	m.state = to
	return nil
}
