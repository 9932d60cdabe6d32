// Package notify formats status events for chat platforms and relays them
// to Discord and Slack incoming webhooks.
package notify

import (
	"errors"
	"time"
)

// ErrUnknownEvent is returned when an Event has no formatter.
var ErrUnknownEvent = errors.New("unknown event type")

// Event is a closed set of things that can be relayed: TextEvent,
// IncidentEvent and MaintenanceEvent.
type Event interface {
	isEvent()
}

// TextEvent is a plain message relayed verbatim.
type TextEvent struct {
	Text string
}

// IncidentEvent is an incident or component status update.
type IncidentEvent struct {
	ID        string
	Name      string
	Status    string
	Impact    string
	UpdatedAt time.Time
	Link      string
}

// MaintenanceEvent is a scheduled maintenance update.
type MaintenanceEvent struct {
	ID             string
	Name           string
	Status         string
	Impact         string
	ScheduledFor   time.Time
	ScheduledUntil time.Time
	UpdatedAt      time.Time
	Link           string
}

func (TextEvent) isEvent()        {}
func (IncidentEvent) isEvent()    {}
func (MaintenanceEvent) isEvent() {}
