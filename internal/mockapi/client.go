// Package mockapi simulates the alert backend. Every call succeeds
// after an artificial delay; a real backend drops in behind the Client
// interface without touching the synchronization core.
package mockapi

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/disha-ai/alert-sync/internal/models"
)

// Client is the backend surface the alert store depends on.
type Client interface {
	GetAlerts(ctx context.Context) ([]models.Alert, error)
	CreateAlert(ctx context.Context, in models.AlertInput) (models.Alert, error)
	UpdateAlert(ctx context.Context, id string, p models.Patch) error
	DeleteAlert(ctx context.Context, id string) error
}

// Simulated answers from canned data after a randomized delay within
// [MinLatency, MaxLatency].
type Simulated struct {
	MinLatency time.Duration
	MaxLatency time.Duration

	mu     sync.Mutex
	rng    *rand.Rand
	lastID int64
}

func NewSimulated(minLatency, maxLatency time.Duration) *Simulated {
	if maxLatency < minLatency {
		maxLatency = minLatency
	}
	return &Simulated{
		MinLatency: minLatency,
		MaxLatency: maxLatency,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Simulated) delay(ctx context.Context) error {
	d := s.MinLatency
	if jitter := s.MaxLatency - s.MinLatency; jitter > 0 {
		s.mu.Lock()
		d += time.Duration(s.rng.Int63n(int64(jitter)))
		s.mu.Unlock()
	}
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// nextID mints a millisecond-timestamp id, nudged forward on collision
// so ids stay unique even for back-to-back calls.
func (s *Simulated) nextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *Simulated) GetAlerts(ctx context.Context) ([]models.Alert, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	return SeedAlerts(), nil
}

func (s *Simulated) CreateAlert(ctx context.Context, in models.AlertInput) (models.Alert, error) {
	if err := s.delay(ctx); err != nil {
		return models.Alert{}, err
	}

	a := models.Alert{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Severity:    in.Severity,
		Location:    in.Location,
		Type:        in.Type,
		Timestamp:   in.Timestamp,
		Status:      models.StatusActive,
	}
	if a.ID == "" {
		a.ID = s.nextID()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	return a, nil
}

func (s *Simulated) UpdateAlert(ctx context.Context, id string, p models.Patch) error {
	return s.delay(ctx)
}

func (s *Simulated) DeleteAlert(ctx context.Context, id string) error {
	return s.delay(ctx)
}

// SeedAlerts returns the canned regional alerts served by GetAlerts.
// Each call returns a fresh slice; callers may mutate it freely.
func SeedAlerts() []models.Alert {
	base := time.Date(2026, time.July, 14, 9, 30, 0, 0, time.UTC)
	return []models.Alert{
		{
			ID:          "seed-1001",
			Title:       "Flood Warning",
			Description: "Heavy rainfall expected over the next 48 hours",
			Severity:    models.SeverityHigh,
			Location:    "Kolkata",
			Type:        models.AlertTypeWeather,
			Timestamp:   base,
			Status:      models.StatusActive,
		},
		{
			ID:          "seed-1002",
			Title:       "Cyclone Alert",
			Description: "Cyclonic storm forming over the Bay of Bengal",
			Severity:    models.SeverityCritical,
			Location:    "Chennai",
			Type:        models.AlertTypeWeather,
			Timestamp:   base.Add(-6 * time.Hour),
			Status:      models.StatusActive,
		},
		{
			ID:          "seed-1003",
			Title:       "Road Closure",
			Description: "Landslide debris blocking the national highway",
			Severity:    models.SeverityMedium,
			Location:    "Shimla",
			Type:        models.AlertTypeTraffic,
			Timestamp:   base.Add(-24 * time.Hour),
			Status:      models.StatusResolved,
		},
		{
			ID:          "seed-1004",
			Title:       "Heatwave Advisory",
			Description: "Temperatures above 45C forecast for the region",
			Severity:    models.SeverityLow,
			Location:    "Nagpur",
			Type:        models.AlertTypeSafety,
			Timestamp:   base.Add(-48 * time.Hour),
			Status:      models.StatusActive,
		},
	}
}
