// Package observe provides a minimal change-notification hub for the stores.
package observe

import (
	"slices"
	"sync"
)

type subscriber struct {
	id int
	fn func()
}

// Hub fans a change notification out to registered callbacks in registration
// order. The zero value is ready to use.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber
}

// Subscribe registers fn and returns a function that removes it.
// The returned function is safe to call more than once.
func (h *Hub) Subscribe(fn func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.subs = slices.DeleteFunc(h.subs, func(s subscriber) bool { return s.id == id })
		})
	}
}

// Notify calls every subscriber. Callers must not hold locks the callbacks need.
func (h *Hub) Notify() {
	h.mu.Lock()
	subs := slices.Clone(h.subs)
	h.mu.Unlock()

	for _, s := range subs {
		s.fn()
	}
}

// Len returns the number of registered subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
