// Package relay propagates alert store changes between replicas. The
// default transport is a side channel on the shared durable storage:
// the envelope is written to a well-known key, a counter key is bumped
// so the value always changes, and both keys are cleared after a short
// delay. Replicas watching the storage observe the envelope write and
// resynchronize from the alerts snapshot.
package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Envelope is the cross-replica change notification. OriginTag is a
// fresh random token per emission; it identifies the emission, not the
// emitting replica, so receivers cannot filter out their own
// notifications and must tolerate redundant self-delivery instead.
type Envelope struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	OriginTag string          `json:"originTag"`
}

// Transport carries envelopes between replicas.
type Transport interface {
	Emit(ctx context.Context, env Envelope) error
	// Listen registers fn for envelopes emitted by other replicas
	// (redundant self-delivery is allowed) and returns a stop function.
	Listen(fn func(Envelope)) (func(), error)
	Close() error
}

// Relay ties a transport to the owning store's resync callback.
type Relay struct {
	transport Transport
	onChange  func(event string)
	stop      func()
}

func New(transport Transport, onChange func(event string)) *Relay {
	return &Relay{
		transport: transport,
		onChange:  onChange,
	}
}

// Start begins listening for remote change notifications.
func (r *Relay) Start() error {
	stop, err := r.transport.Listen(func(env Envelope) {
		r.onChange(env.Event)
	})
	if err != nil {
		return err
	}
	r.stop = stop
	return nil
}

// Emit broadcasts a change notification to other replicas. Failures are
// logged and swallowed; the local mutation has already been applied and
// stays authoritative.
func (r *Relay) Emit(ctx context.Context, event string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		slog.Error("relay: marshal payload", "event", event, "error", err)
		return
	}

	env := Envelope{
		Event:     event,
		Data:      raw,
		Timestamp: time.Now(),
		OriginTag: uuid.NewString(),
	}
	if err := r.transport.Emit(ctx, env); err != nil {
		slog.Error("relay: emit", "event", event, "error", err)
	}
}

func (r *Relay) Close() {
	if r.stop != nil {
		r.stop()
	}
	if err := r.transport.Close(); err != nil {
		slog.Error("relay: close transport", "error", err)
	}
}
