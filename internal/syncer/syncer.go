// Package syncer periodically pulls the full alert set from the backend
// client and merges it into the store, mirroring a dashboard's
// background refresh.
package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/disha-ai/alert-sync/internal/store"
	"github.com/disha-ai/alert-sync/internal/worker"
)

type Syncer struct {
	store    *store.Store
	interval time.Duration
	pool     *worker.Pool
	wg       sync.WaitGroup
}

func New(s *store.Store, interval time.Duration, workers, bufferSize int) *Syncer {
	return &Syncer{
		store:    s,
		interval: interval,
		pool:     worker.NewPool(workers, bufferSize),
	}
}

func (s *Syncer) Start(ctx context.Context) {
	s.pool.Start(ctx)

	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Syncer) run(ctx context.Context) {
	defer s.wg.Done()
	slog.Info("starting alert refresh loop", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Initial refresh
	s.submit()

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh loop shutting down")
			return
		case <-ticker.C:
			s.submit()
		}
	}
}

func (s *Syncer) submit() {
	ok := s.pool.TrySubmit(func(ctx context.Context) error {
		return s.store.Refresh(ctx)
	})
	if !ok {
		slog.Warn("refresh skipped, queue full")
	}
}

func (s *Syncer) Stop() {
	s.wg.Wait()
	s.pool.Stop()
	slog.Info("syncer stopped")
}
