package pos

import (
	"pos-terminal/internal/domain"
)

// mirror is the terminal's copy of the server-owned menu. Cart mutations
// decrement Available optimistically so the UI can refuse oversells without a
// round trip; every full refresh replaces the whole thing.
type mirror struct {
	items []domain.MenuItem
	index map[string]int
}

func newMirror() *mirror {
	return &mirror{index: make(map[string]int)}
}

func (m *mirror) replace(items []domain.MenuItem) {
	m.items = make([]domain.MenuItem, len(items))
	copy(m.items, items)
	m.index = make(map[string]int, len(items))
	for i, item := range m.items {
		m.index[item.ID] = i
	}
}

func (m *mirror) get(id string) (domain.MenuItem, bool) {
	i, ok := m.index[id]
	if !ok {
		return domain.MenuItem{}, false
	}
	return m.items[i], true
}

// adjust moves Available by delta. The availability floor of zero is
// enforced here, at mutation time, not at render time.
func (m *mirror) adjust(id string, delta int) bool {
	i, ok := m.index[id]
	if !ok {
		return false
	}
	next := m.items[i].Available + delta
	if next < 0 {
		return false
	}
	m.items[i].Available = next
	return true
}

func (m *mirror) snapshot() []domain.MenuItem {
	out := make([]domain.MenuItem, len(m.items))
	copy(out, m.items)
	return out
}
