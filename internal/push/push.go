// Package push delivers "something changed" signals from the backend. The
// only contract is coarse invalidation: a signal means resync everything, it
// never carries a delta. Implementations sit behind Channel so an
// incremental-diff feed could replace them without touching the session.
package push

import "context"

// Channel is a long-lived signal source. Run blocks until ctx is done,
// invoking onSignal for every inbound "data changed" event. Implementations
// reconnect on their own; Run returning an error means the channel is
// permanently unusable.
type Channel interface {
	Run(ctx context.Context, onSignal func()) error
}

// Coalescer folds bursts of signals into at most one pending resync. A
// signal arriving while one is already queued is absorbed: both would fetch
// the same full snapshot anyway.
type Coalescer struct {
	ch chan struct{}
}

func NewCoalescer() *Coalescer {
	return &Coalescer{ch: make(chan struct{}, 1)}
}

func (c *Coalescer) Signal() {
	select {
	case c.ch <- struct{}{}:
	default:
	}
}

// Wait exposes the pending-resync channel; one receive consumes the pending
// signal.
func (c *Coalescer) Wait() <-chan struct{} {
	return c.ch
}
