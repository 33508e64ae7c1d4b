// Package notify keeps the terminal's notification feed: every non-fatal
// notice the session emits, newest first, with read flags.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Notice struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	Read    bool      `json:"read"`
}

type Feed struct {
	mu      sync.Mutex
	notices []Notice
	max     int
}

// NewFeed keeps at most max notices, discarding the oldest.
func NewFeed(max int) *Feed {
	if max <= 0 {
		max = 100
	}
	return &Feed{max: max}
}

// Notify implements the session's notice sink.
func (f *Feed) Notify(kind, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	notice := Notice{
		ID:      uuid.NewString(),
		Kind:    kind,
		Message: message,
		Date:    time.Now(),
	}
	f.notices = append([]Notice{notice}, f.notices...)
	if len(f.notices) > f.max {
		f.notices = f.notices[:f.max]
	}
}

// List returns all notices, newest first.
func (f *Feed) List() []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notice, len(f.notices))
	copy(out, f.notices)
	return out
}

// Unread counts notices not yet marked read.
func (f *Feed) Unread() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.notices {
		if !n.Read {
			count++
		}
	}
	return count
}

func (f *Feed) MarkAllRead() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notices {
		f.notices[i].Read = true
	}
}
