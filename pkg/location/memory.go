package location

import "sync"

// MemorySource is an in-process history: an entry stack and a cursor.
// It backs tests, batch resolution, and the debug console, and is the
// reference Source implementation. Construct one per router; there are no
// process-wide singleton histories.
type MemorySource struct {
	mu        sync.Mutex
	entries   []*Location
	index     int
	listeners map[int]func(*Location)
	nextID    int
}

// NewMemorySource creates a memory history seeded with the given initial
// entries. With no arguments it starts at "/".
func NewMemorySource(initial ...*Location) *MemorySource {
	if len(initial) == 0 {
		initial = []*Location{New("/")}
	}
	return &MemorySource{
		entries:   initial,
		index:     len(initial) - 1,
		listeners: make(map[int]func(*Location)),
	}
}

// Current returns the present location.
func (s *MemorySource) Current() *Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[s.index]
}

// Listen registers a change listener.
func (s *MemorySource) Listen(fn func(*Location)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Push appends a new entry, dropping any forward entries, and notifies.
func (s *MemorySource) Push(loc *Location) {
	s.mu.Lock()
	s.entries = append(s.entries[:s.index+1], loc)
	s.index = len(s.entries) - 1
	s.mu.Unlock()

	s.notify(loc)
}

// Replace swaps the current entry in place and notifies.
func (s *MemorySource) Replace(loc *Location) {
	s.mu.Lock()
	s.entries[s.index] = loc
	s.mu.Unlock()

	s.notify(loc)
}

// Go moves n entries through the history. Out-of-range moves are ignored.
func (s *MemorySource) Go(n int) {
	s.mu.Lock()
	target := s.index + n
	if n == 0 || target < 0 || target >= len(s.entries) {
		s.mu.Unlock()
		return
	}
	s.index = target
	loc := s.entries[s.index]
	s.mu.Unlock()

	s.notify(loc)
}

// Length returns the number of history entries.
func (s *MemorySource) Length() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// notify calls every listener in registration order.
func (s *MemorySource) notify(loc *Location) {
	s.mu.Lock()
	fns := make([]func(*Location), 0, len(s.listeners))
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	// Map iteration order is random; keep registration order for
	// deterministic delivery.
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(loc)
	}
}
