// Package inbound handles status changes pushed by the status page.
package inbound

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vietddude/statusrelay/internal/core/domain"
	"github.com/vietddude/statusrelay/internal/messages"
	"github.com/vietddude/statusrelay/internal/metrics"
	"github.com/vietddude/statusrelay/internal/notify"
)

// Relayer delivers an event to the selected platforms.
type Relayer interface {
	Send(ctx context.Context, ev notify.Event, platforms []domain.Platform) ([]domain.Platform, error)
}

// Processor validates, relays and records inbound status updates.
type Processor struct {
	relay   Relayer
	store   *messages.Store
	pageURL string
	loc     *time.Location
	log     *slog.Logger
}

// NewProcessor creates a processor. pageURL is the public status page used
// to build incident links.
func NewProcessor(relay Relayer, store *messages.Store, pageURL string, loc *time.Location) *Processor {
	return &Processor{
		relay:   relay,
		store:   store,
		pageURL: strings.TrimRight(pageURL, "/"),
		loc:     loc,
		log:     slog.Default().With("component", "inbound"),
	}
}

// Process handles one payload. Validation failures wrap
// domain.ErrInvalidPayload and cause no side effects.
func (p *Processor) Process(ctx context.Context, payload domain.StatusWebhookPayload) error {
	ts, err := payload.Validate()
	if err != nil {
		metrics.InboundWebhooksTotal.WithLabelValues("invalid").Inc()
		return err
	}

	ev := p.eventFor(payload, ts)
	sent, err := p.relay.Send(ctx, ev, domain.Platforms)
	if err != nil {
		metrics.InboundWebhooksTotal.WithLabelValues("relay_error").Inc()
		return fmt.Errorf("relay status update: %w", err)
	}

	content, err := notify.PlainText(ev, p.loc)
	if err != nil {
		return err
	}
	trigger := &domain.Trigger{
		Type:          domain.TriggerStatusUpdate,
		ComponentID:   payload.ComponentID,
		ComponentName: payload.ComponentName,
		IncidentID:    payload.IncidentID,
	}
	for _, platform := range sent {
		p.store.AddMessage(ctx, messages.NewMessage(platform, content, domain.SourceAutomatic, trigger))
	}

	metrics.InboundWebhooksTotal.WithLabelValues("relayed").Inc()
	p.log.Info("Status update relayed",
		"component", payload.ComponentName,
		"status", payload.NewStatus,
		"incident", payload.IncidentID,
		"platforms", sent,
	)
	return nil
}

func (p *Processor) eventFor(payload domain.StatusWebhookPayload, ts time.Time) notify.IncidentEvent {
	return notify.IncidentEvent{
		ID:        payload.IncidentID,
		Name:      payload.ComponentName,
		Status:    string(payload.NewStatus),
		Impact:    string(domain.DetermineImpact(payload.NewStatus)),
		UpdatedAt: ts,
		Link:      fmt.Sprintf("%s/incidents/%s", p.pageURL, payload.IncidentID),
	}
}
