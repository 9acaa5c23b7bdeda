package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/disha-ai/alert-sync/internal/storage"
)

// DefaultCleanupDelay is how long the envelope and counter keys stay in
// storage before being cleared. It has to be long enough for slow
// replicas to observe the change; it is a heuristic, not a delivery
// guarantee.
const DefaultCleanupDelay = 500 * time.Millisecond

// StorageTransport signals through the shared durable storage itself.
type StorageTransport struct {
	handle  *storage.Handle
	cleanup time.Duration

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
	wg     sync.WaitGroup
	closed bool
}

func NewStorageTransport(handle *storage.Handle, cleanup time.Duration) *StorageTransport {
	if cleanup <= 0 {
		cleanup = DefaultCleanupDelay
	}
	return &StorageTransport{
		handle:  handle,
		cleanup: cleanup,
		timers:  make(map[*time.Timer]struct{}),
	}
}

func (t *StorageTransport) Emit(ctx context.Context, env Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := t.handle.Set(ctx, storage.KeyEvent, string(raw)); err != nil {
		return err
	}

	// Bump the counter so the stored value always changes even when two
	// emissions carry byte-identical envelopes; an unchanged value would
	// fire no storage event.
	counter := int64(0)
	if cur, ok, err := t.handle.Get(ctx, storage.KeyCounter); err == nil && ok {
		if n, err := strconv.ParseInt(cur, 10, 64); err == nil {
			counter = n
		}
	}
	if err := t.handle.Set(ctx, storage.KeyCounter, strconv.FormatInt(counter+1, 10)); err != nil {
		return err
	}

	t.scheduleCleanup()
	return nil
}

func (t *StorageTransport) scheduleCleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	t.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(t.cleanup, func() {
		defer t.wg.Done()
		t.mu.Lock()
		delete(t.timers, timer)
		closed := t.closed
		t.mu.Unlock()
		if closed {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := t.handle.Delete(ctx, storage.KeyEvent); err != nil {
			slog.Error("relay: cleanup event key", "error", err)
		}
		if err := t.handle.Delete(ctx, storage.KeyCounter); err != nil {
			slog.Error("relay: cleanup counter key", "error", err)
		}
	})
	t.timers[timer] = struct{}{}
}

func (t *StorageTransport) Listen(fn func(Envelope)) (func(), error) {
	cancel := t.handle.Watch(func(ev storage.Event) {
		if ev.Key != storage.KeyEvent || ev.NewValue == "" {
			return
		}
		var env Envelope
		if err := json.Unmarshal([]byte(ev.NewValue), &env); err != nil {
			// Malformed envelope: skip this notification. The focus
			// resync path gives the replica a second chance.
			slog.Error("relay: malformed envelope", "error", err)
			return
		}
		fn(env)
	})
	return cancel, nil
}

func (t *StorageTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	for timer := range t.timers {
		if timer.Stop() {
			t.wg.Done()
		}
		delete(t.timers, timer)
	}
	t.mu.Unlock()
	t.wg.Wait()
	return nil
}
