package models

import (
	"fmt"
	"time"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type AlertType string

const (
	AlertTypeWeather   AlertType = "weather"
	AlertTypeEmergency AlertType = "emergency"
	AlertTypeTraffic   AlertType = "traffic"
	AlertTypeSafety    AlertType = "safety"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
)

// Alert is a single disaster notice. ID and Timestamp are fixed at
// creation; Status and the descriptive fields may change afterwards.
type Alert struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	Location    string    `json:"location"`
	Type        AlertType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Status      Status    `json:"status"`
}

// AlertInput carries the caller-supplied fields for a new alert. ID and
// Timestamp are optional; the store fills them in when absent.
type AlertInput struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	Location    string    `json:"location"`
	Type        AlertType `json:"type"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
}

func (in AlertInput) Validate() error {
	if in.Title == "" {
		return fmt.Errorf("missing required field: title")
	}
	if in.Description == "" {
		return fmt.Errorf("missing required field: description")
	}
	if in.Location == "" {
		return fmt.Errorf("missing required field: location")
	}
	return nil
}

// Patch is a partial update. Nil fields are left untouched. There is
// deliberately no way to patch ID or Timestamp.
type Patch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Severity    *Severity  `json:"severity,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Type        *AlertType `json:"type,omitempty"`
	Status      *Status    `json:"status,omitempty"`
}

// Apply merges the patch into a and reports whether anything changed.
func (p Patch) Apply(a *Alert) bool {
	changed := false
	if p.Title != nil && *p.Title != a.Title {
		a.Title = *p.Title
		changed = true
	}
	if p.Description != nil && *p.Description != a.Description {
		a.Description = *p.Description
		changed = true
	}
	if p.Severity != nil && *p.Severity != a.Severity {
		a.Severity = *p.Severity
		changed = true
	}
	if p.Location != nil && *p.Location != a.Location {
		a.Location = *p.Location
		changed = true
	}
	if p.Type != nil && *p.Type != a.Type {
		a.Type = *p.Type
		changed = true
	}
	if p.Status != nil && *p.Status != a.Status {
		a.Status = *p.Status
		changed = true
	}
	return changed
}
