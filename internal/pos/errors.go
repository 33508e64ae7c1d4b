package pos

import (
	"errors"
	"fmt"
)

// ValidationError is a locally rejected intent: no network call was made and
// the session is unchanged. Surfaced to staff as a non-fatal notice.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a locally rejected intent.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransitionError reports an illegal state-machine move.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal transition from %s to %s", e.From, e.To)
}

// ErrNoOpenOrder means no live order matched the transaction's table when
// payment was confirmed. Recoverable: the session stays in AwaitingPayment.
var ErrNoOpenOrder = errors.New("no open order found for this table")

// ErrBusy means the same action is already in flight; the re-entrant
// submission is dropped.
var ErrBusy = errors.New("action already in progress")
