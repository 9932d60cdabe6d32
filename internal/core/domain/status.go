package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ComponentStatus is the operational state reported by the status page.
type ComponentStatus string

const (
	StatusOperational         ComponentStatus = "operational"
	StatusDegraded            ComponentStatus = "degraded"
	StatusDegradedPerformance ComponentStatus = "degraded_performance"
	StatusPartialOutage       ComponentStatus = "partial_outage"
	StatusMajorOutage         ComponentStatus = "major_outage"
)

// Valid reports whether s is one of the statuses accepted on inbound webhooks.
func (s ComponentStatus) Valid() bool {
	switch s {
	case StatusOperational, StatusDegraded, StatusDegradedPerformance,
		StatusPartialOutage, StatusMajorOutage:
		return true
	}
	return false
}

// Impact is the four-point severity derived from a component status.
type Impact string

const (
	ImpactNone     Impact = "none"
	ImpactMinor    Impact = "minor"
	ImpactMajor    Impact = "major"
	ImpactCritical Impact = "critical"
)

// DetermineImpact maps a component status to its impact level.
func DetermineImpact(status ComponentStatus) Impact {
	switch status {
	case StatusMajorOutage:
		return ImpactCritical
	case StatusPartialOutage:
		return ImpactMajor
	case StatusDegradedPerformance:
		return ImpactMinor
	default:
		return ImpactNone
	}
}

// EventStatusUpdated is the only inbound event the webhook accepts.
const EventStatusUpdated = "status_updated"

// ErrInvalidPayload is returned for malformed inbound status payloads.
var ErrInvalidPayload = errors.New("invalid payload format")

// StatusWebhookPayload is the body pushed by the status page on a change.
type StatusWebhookPayload struct {
	Event         string          `json:"event"`
	ComponentID   string          `json:"component_id"`
	ComponentName string          `json:"component_name"`
	NewStatus     ComponentStatus `json:"new_status"`
	IncidentID    string          `json:"incident_id"`
	Timestamp     string          `json:"timestamp"`
}

// Validate checks the payload shape and returns the parsed timestamp.
func (p *StatusWebhookPayload) Validate() (time.Time, error) {
	if p.Event != EventStatusUpdated {
		return time.Time{}, fmt.Errorf("%w: unexpected event %q", ErrInvalidPayload, p.Event)
	}
	if p.ComponentID == "" || p.ComponentName == "" {
		return time.Time{}, fmt.Errorf("%w: component id and name are required", ErrInvalidPayload)
	}
	if !p.NewStatus.Valid() {
		return time.Time{}, fmt.Errorf("%w: unknown status %q", ErrInvalidPayload, p.NewStatus)
	}
	if p.IncidentID == "" {
		return time.Time{}, fmt.Errorf("%w: incident id is required", ErrInvalidPayload)
	}
	ts, err := ParseTimestamp(p.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return ts, nil
}

// timestampLayouts are tried in order. Zoneless layouts parse as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseTimestamp parses the date formats status pages commonly emit.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("timestamp is required")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// IncidentIDs returns the ids of incs in order.
func IncidentIDs(incs []Incident) []string {
	ids := make([]string, 0, len(incs))
	for _, inc := range incs {
		ids = append(ids, inc.ID)
	}
	return ids
}

// StatusSummary is the aggregated view of the status page.
type StatusSummary struct {
	Status     PageStatus  `json:"status"`
	Components []Component `json:"components"`
	Incidents  []Incident  `json:"incidents"`
}

// PageStatus is the overall indicator of the status page.
type PageStatus struct {
	Indicator   Impact `json:"indicator"`
	Description string `json:"description"`
}

// Component is a single status page component.
type Component struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Status      ComponentStatus `json:"status"`
	Description string          `json:"description,omitempty"`
	UpdatedAt   string          `json:"updated_at"`
}

// Incident is an unresolved status page incident.
type Incident struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Status    string      `json:"status"`
	Impact    Impact      `json:"impact"`
	Shortlink string      `json:"shortlink"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
	Sent      *SentStatus `json:"sent,omitempty"`
}
