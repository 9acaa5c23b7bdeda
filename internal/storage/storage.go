// Package storage models the shared durable key-value area that alert
// store replicas synchronize through. A single Shared area hands out one
// Handle per replica; writes made through one handle are delivered as
// change events to listeners on every other handle, never to the writer
// itself. A write that leaves the value unchanged fires no event.
package storage

import (
	"context"
	"sync"
	"sync/atomic"
)

// Well-known keys used by the alert store and the cross-replica relay.
const (
	KeyAlerts  = "alerts"
	KeyEvent   = "alert_event"
	KeyCounter = "alert_counter"
)

// Backend is the durable store underneath a Shared area.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Event describes a change made by some other handle. An empty OldValue
// means the key did not exist before; an empty NewValue means it was
// deleted.
type Event struct {
	Key      string
	OldValue string
	NewValue string
}

type listener struct {
	handleID uint64
	fn       func(Event)
}

// Shared is a durable KV area shared by any number of replica handles.
type Shared struct {
	backend Backend

	// writeMu serializes write-notify sequences so a change event
	// always carries the old value the write actually replaced.
	writeMu sync.Mutex

	mu        sync.Mutex
	listeners map[uint64]listener
	nextSub   atomic.Uint64
	nextID    atomic.Uint64
}

func NewShared(backend Backend) *Shared {
	return &Shared{
		backend:   backend,
		listeners: make(map[uint64]listener),
	}
}

// Handle returns a new replica-scoped view of the shared area.
func (s *Shared) Handle() *Handle {
	return &Handle{shared: s, id: s.nextID.Add(1)}
}

func (s *Shared) Close() error {
	return s.backend.Close()
}

// notify delivers ev to every listener not owned by the writing handle.
// Delivery is synchronous; the write that caused the event has already
// been applied to the backend.
func (s *Shared) notify(writer uint64, ev Event) {
	s.mu.Lock()
	snapshot := make([]listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		if l.handleID != writer {
			snapshot = append(snapshot, l)
		}
	}
	s.mu.Unlock()

	for _, l := range snapshot {
		l.fn(ev)
	}
}

// Handle is one replica's access point to the shared area.
type Handle struct {
	shared *Shared
	id     uint64
}

func (h *Handle) Get(ctx context.Context, key string) (string, bool, error) {
	return h.shared.backend.Get(ctx, key)
}

func (h *Handle) Set(ctx context.Context, key, value string) error {
	h.shared.writeMu.Lock()
	old, _, err := h.shared.backend.Get(ctx, key)
	if err != nil {
		h.shared.writeMu.Unlock()
		return err
	}
	if err := h.shared.backend.Set(ctx, key, value); err != nil {
		h.shared.writeMu.Unlock()
		return err
	}
	h.shared.writeMu.Unlock()

	// Notify outside writeMu: a listener may call back into a replica
	// that is itself waiting to write.
	if old != value {
		h.shared.notify(h.id, Event{Key: key, OldValue: old, NewValue: value})
	}
	return nil
}

func (h *Handle) Delete(ctx context.Context, key string) error {
	h.shared.writeMu.Lock()
	old, ok, err := h.shared.backend.Get(ctx, key)
	if err != nil {
		h.shared.writeMu.Unlock()
		return err
	}
	if err := h.shared.backend.Delete(ctx, key); err != nil {
		h.shared.writeMu.Unlock()
		return err
	}
	h.shared.writeMu.Unlock()

	if ok {
		h.shared.notify(h.id, Event{Key: key, OldValue: old})
	}
	return nil
}

// Watch registers fn for changes made through other handles. The
// returned function cancels the registration.
func (h *Handle) Watch(fn func(Event)) func() {
	sub := h.shared.nextSub.Add(1)
	h.shared.mu.Lock()
	h.shared.listeners[sub] = listener{handleID: h.id, fn: fn}
	h.shared.mu.Unlock()

	return func() {
		h.shared.mu.Lock()
		delete(h.shared.listeners, sub)
		h.shared.mu.Unlock()
	}
}
