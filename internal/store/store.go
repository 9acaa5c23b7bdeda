// Package store holds the canonical ordered alert list for one replica
// and keeps other replicas in sync through the shared storage area and
// the cross-replica relay.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/disha-ai/alert-sync/internal/bus"
	"github.com/disha-ai/alert-sync/internal/mockapi"
	"github.com/disha-ai/alert-sync/internal/models"
	"github.com/disha-ai/alert-sync/internal/relay"
	"github.com/disha-ai/alert-sync/internal/storage"
)

// Event names emitted on the local bus and through the relay.
const (
	EventCreated = "alert_created"
	EventUpdated = "alert_updated"
	EventDeleted = "alert_deleted"
	EventSynced  = "alert_synced"
)

// ErrCreateInFlight is returned when a Create starts while another one
// from the same replica has not settled yet. The duplicate submission
// is dropped, not queued.
var ErrCreateInFlight = errors.New("alert creation already in flight")

type Options struct {
	Handle    *storage.Handle
	Bus       *bus.Bus
	Transport relay.Transport
	Client    mockapi.Client
}

// Store is one replica of the shared alert list, newest first.
type Store struct {
	handle *storage.Handle
	bus    *bus.Bus
	relay  *relay.Relay
	client mockapi.Client

	mu       sync.Mutex
	alerts   []models.Alert
	creating atomic.Bool
}

// New builds a replica, loads any existing snapshot from the shared
// storage, and starts listening for remote change notifications.
func New(opts Options) (*Store, error) {
	s := &Store{
		handle: opts.Handle,
		bus:    opts.Bus,
		client: opts.Client,
	}

	s.load(context.Background())

	s.relay = relay.New(opts.Transport, func(event string) {
		s.Resync(context.Background())
	})
	if err := s.relay.Start(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() {
	s.relay.Close()
}

// Create validates the input, submits it through the backend client,
// prepends the resulting record, persists, and notifies both the local
// bus and the other replicas. A second Create while one is in flight
// returns ErrCreateInFlight.
func (s *Store) Create(ctx context.Context, in models.AlertInput) (*models.Alert, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !s.creating.CompareAndSwap(false, true) {
		return nil, ErrCreateInFlight
	}
	defer s.creating.Store(false)

	created, err := s.client.CreateAlert(ctx, in)
	if err != nil {
		return nil, err
	}
	created.Status = models.StatusActive

	s.mu.Lock()
	created.ID = s.uniqueIDLocked(created.ID)
	s.alerts = append([]models.Alert{created}, s.alerts...)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.bus.Emit(EventCreated, created)
	s.relay.Emit(ctx, EventCreated, created)
	return &created, nil
}

// uniqueIDLocked nudges a colliding id with a numeric suffix until it
// is unique within the replica.
func (s *Store) uniqueIDLocked(id string) string {
	candidate := id
	for n := 1; s.indexLocked(candidate) >= 0; n++ {
		candidate = fmt.Sprintf("%s-%d", id, n)
	}
	return candidate
}

// Update merges the patch into the matching record. Unknown ids are a
// silent no-op; the return value reports whether the target was found.
func (s *Store) Update(ctx context.Context, id string, p models.Patch) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	p.Apply(&s.alerts[i])
	updated := s.alerts[i]
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.bus.Emit(EventUpdated, updated)
	s.relay.Emit(ctx, EventUpdated, updated)
	return true
}

// Delete removes the matching record. Unknown ids are a silent no-op.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.alerts[i]
	s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.bus.Emit(EventDeleted, removed)
	s.relay.Emit(ctx, EventDeleted, removed)
	return true
}

// List returns a snapshot copy, newest first.
func (s *Store) List() []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// Refresh pulls the full set from the backend client and merges it in.
func (s *Store) Refresh(ctx context.Context) error {
	fetched, err := s.client.GetAlerts(ctx)
	if err != nil {
		return err
	}
	s.Merge(ctx, fetched)
	return nil
}

// Merge appends records whose id is not already known, leaving the
// order of existing records untouched. It reports how many were added.
func (s *Store) Merge(ctx context.Context, incoming []models.Alert) int {
	s.mu.Lock()
	added := 0
	for _, a := range incoming {
		if s.indexLocked(a.ID) >= 0 {
			continue
		}
		s.alerts = append(s.alerts, a)
		added++
	}
	if added > 0 {
		s.persistLocked(ctx)
	}
	snapshot := make([]models.Alert, len(s.alerts))
	copy(snapshot, s.alerts)
	s.mu.Unlock()

	if added > 0 {
		s.bus.Emit(EventSynced, snapshot)
		s.relay.Emit(ctx, EventSynced, snapshot)
	}
	return added
}

// Resync replaces the replica state with the durable snapshot and
// notifies local consumers. Called when another replica signals a
// change and from the focus fallback path.
func (s *Store) Resync(ctx context.Context) {
	raw, ok, err := s.handle.Get(ctx, storage.KeyAlerts)
	if err != nil {
		slog.Error("store: read snapshot", "error", err)
		return
	}
	if !ok {
		return
	}

	var alerts []models.Alert
	if err := json.Unmarshal([]byte(raw), &alerts); err != nil {
		slog.Error("store: malformed snapshot", "error", err)
		return
	}

	s.mu.Lock()
	s.alerts = alerts
	snapshot := make([]models.Alert, len(alerts))
	copy(snapshot, alerts)
	s.mu.Unlock()

	s.bus.Emit(EventSynced, snapshot)
}

// Focus is the supplementary resync path for notifications a replica
// may have missed while suspended: it compares the durable snapshot to
// the in-memory copy and resynchronizes on mismatch.
func (s *Store) Focus(ctx context.Context) {
	raw, ok, err := s.handle.Get(ctx, storage.KeyAlerts)
	if err != nil || !ok {
		return
	}

	s.mu.Lock()
	current, err := json.Marshal(s.alerts)
	s.mu.Unlock()
	if err != nil || string(current) == raw {
		return
	}

	s.Resync(ctx)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the full list to the shared storage. Failures
// are logged and swallowed: the in-memory state stays authoritative for
// this replica even when the snapshot could not be written.
func (s *Store) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(s.alerts)
	if err != nil {
		slog.Error("store: marshal snapshot", "error", err)
		return
	}
	if err := s.handle.Set(ctx, storage.KeyAlerts, string(raw)); err != nil {
		slog.Error("store: persist snapshot", "error", err)
	}
}

// load seeds the replica from an existing durable snapshot, if any.
func (s *Store) load(ctx context.Context) {
	raw, ok, err := s.handle.Get(ctx, storage.KeyAlerts)
	if err != nil {
		slog.Error("store: read snapshot", "error", err)
		return
	}
	if !ok {
		return
	}

	var alerts []models.Alert
	if err := json.Unmarshal([]byte(raw), &alerts); err != nil {
		slog.Error("store: malformed snapshot", "error", err)
		return
	}

	s.mu.Lock()
	s.alerts = alerts
	s.mu.Unlock()
}
