package domain

// Platform is a chat platform that receives relayed messages.
type Platform string

const (
	PlatformDiscord Platform = "discord"
	PlatformSlack   Platform = "slack"
)

// Platforms lists every supported platform in relay order.
var Platforms = []Platform{PlatformDiscord, PlatformSlack}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	return p == PlatformDiscord || p == PlatformSlack
}

// Source tells whether a message was sent by the operator or by the system.
type Source string

const (
	SourceManual    Source = "manual"
	SourceAutomatic Source = "automatic"
)

// Trigger types recorded on automatic messages.
const (
	TriggerStatusUpdate = "status_update"
	TriggerNetworkAlert = "network_alert"
	TriggerTestAlert    = "test_alert"
)

// Trigger identifies the status event behind an automatic message.
type Trigger struct {
	Type          string `json:"type"`
	ComponentID   string `json:"componentId,omitempty"`
	ComponentName string `json:"componentName,omitempty"`
	IncidentID    string `json:"incidentId,omitempty"`
}

// IntegrationMessage is a record of one notification sent or received.
// Records are never mutated once stored.
type IntegrationMessage struct {
	ID        string   `json:"id"`
	Platform  Platform `json:"platform"`
	Content   string   `json:"content"`
	Timestamp string   `json:"timestamp"`
	Source    Source   `json:"source"`
	Trigger   *Trigger `json:"trigger,omitempty"`
}

// SentStatus answers "has this incident already been announced".
type SentStatus struct {
	Sent      bool       `json:"sent"`
	Platforms []Platform `json:"platforms"`
	Timestamp string     `json:"timestamp,omitempty"`
	Type      Source     `json:"type"`
}
