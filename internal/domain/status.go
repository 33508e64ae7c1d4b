package domain

import "fmt"

// OrderStatus is the kitchen lifecycle of a live order. Values match the
// backend's wire strings.
type OrderStatus string

const (
	StatusWaiting      OrderStatus = "Waiting"
	StatusReadyToServe OrderStatus = "Ready to Serve"
	StatusCompleted    OrderStatus = "Completed"
	StatusCanceled     OrderStatus = "Canceled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusReadyToServe, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// ParseOrderStatus validates a wire string into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	s := OrderStatus(value)
	if !s.Valid() {
		return "", fmt.Errorf("unknown order status %q", value)
	}
	return s, nil
}
