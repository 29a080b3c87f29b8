package watch

import "sync"

// Signal is a payload-free event emitter. Listeners run synchronously, in
// registration order, on the goroutine that calls Fire.
type Signal struct {
	mu        sync.Mutex
	next      int
	listeners map[int]func()
	order     []int
	closed    bool
}

// NewSignal creates an open signal.
func NewSignal() *Signal {
	return &Signal{listeners: make(map[int]func())}
}

// On registers fn. Closing the returned subscription removes it. On a closed
// signal fn is never registered.
func (s *Signal) On(fn func()) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return onceSubscription(func() {})
	}

	id := s.next
	s.next++
	s.listeners[id] = fn
	s.order = append(s.order, id)

	return onceSubscription(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	})
}

// Fire invokes every registered listener once. It is a no-op after Close.
func (s *Signal) Fire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	fns := make([]func(), 0, len(s.listeners))
	live := s.order[:0]
	for _, id := range s.order {
		if fn, ok := s.listeners[id]; ok {
			fns = append(fns, fn)
			live = append(live, id)
		}
	}
	s.order = live
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close drops all listeners. Further Fire calls do nothing.
func (s *Signal) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.listeners = make(map[int]func())
	s.order = nil
}
