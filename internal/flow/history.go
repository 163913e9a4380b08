package flow

// MemoryHistory is an in-process History for hosts without a browser, such
// as the terminal player and tests. Subscribers are notified synchronously.
type MemoryHistory struct {
	path    string
	entries []string
	subs    map[int]func(string)
	nextID  int
}

// NewMemoryHistory starts at path.
func NewMemoryHistory(path string) *MemoryHistory {
	path = normalizePath(path)
	return &MemoryHistory{
		path:    path,
		entries: []string{path},
		subs:    make(map[int]func(string)),
	}
}

// Path returns the current path.
func (h *MemoryHistory) Path() string { return h.path }

// Push appends path and notifies subscribers.
func (h *MemoryHistory) Push(path string) {
	h.path = normalizePath(path)
	h.entries = append(h.entries, h.path)
	h.notify()
}

// Back returns to the previous entry, like a browser popstate.
// It reports false at the first entry.
func (h *MemoryHistory) Back() bool {
	if len(h.entries) < 2 {
		return false
	}
	h.entries = h.entries[:len(h.entries)-1]
	h.path = h.entries[len(h.entries)-1]
	h.notify()
	return true
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int { return len(h.entries) }

// Subscribe registers fn for path changes.
func (h *MemoryHistory) Subscribe(fn func(path string)) func() {
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	return func() { delete(h.subs, id) }
}

func (h *MemoryHistory) notify() {
	for _, fn := range h.subs {
		fn(h.path)
	}
}
