// Package bus is the in-replica publish/subscribe mechanism between the
// alert store and its consumers. Delivery is synchronous and in
// registration order; the bus does not recover panics from handlers, so
// subscribers are expected not to throw.
package bus

import (
	"sync"
	"sync/atomic"
)

type Handler func(event string, payload any)

type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]Handler
	order  []uint64
	nextID atomic.Uint64
}

func New() *Bus {
	return &Bus{
		subs: make(map[uint64]Handler),
	}
}

// Subscribe registers h and returns a function that removes it.
// Unsubscribing during an Emit is safe; the emission in progress still
// sees the subscriber set as it was when Emit started.
func (b *Bus) Subscribe(h Handler) func() {
	id := b.nextID.Add(1)

	b.mu.Lock()
	b.subs[id] = h
	b.order = append(b.order, id)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		}
		b.mu.Unlock()
	}
}

// Emit invokes every registered handler synchronously, in the order the
// handlers subscribed.
func (b *Bus) Emit(event string, payload any) {
	b.mu.RLock()
	snapshot := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		snapshot = append(snapshot, b.subs[id])
	}
	b.mu.RUnlock()

	for _, h := range snapshot {
		h(event, payload)
	}
}

func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
