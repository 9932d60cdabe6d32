package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/statusrelay/internal/core/domain"
	"github.com/vietddude/statusrelay/internal/messages"
	"github.com/vietddude/statusrelay/internal/notify"
)

// Broadcaster delivers an event to every configured platform.
type Broadcaster interface {
	SendAll(ctx context.Context, ev notify.Event) ([]domain.Platform, error)
}

// Result is the outcome of one monitoring run.
type Result struct {
	Timestamp   time.Time          `json:"timestamp"`
	LatestBlock domain.BlockRecord `json:"latestBlock"`
	HealthCheck domain.HealthCheck `json:"healthCheck"`
}

// Service runs a health check and broadcasts any alerts.
type Service struct {
	checker *Checker
	relay   Broadcaster
	store   *messages.Store
	log     *slog.Logger
}

// NewService creates a monitoring service.
func NewService(checker *Checker, relay Broadcaster, store *messages.Store) *Service {
	return &Service{
		checker: checker,
		relay:   relay,
		store:   store,
		log:     slog.Default().With("component", "monitor_service"),
	}
}

// Run performs one check. Unhealthy results are combined into a single
// alert, relayed to all platforms and recorded once per platform.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	block, hc, err := s.checker.Check(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Timestamp:   time.Now().UTC(),
		LatestBlock: block,
		HealthCheck: hc,
	}

	combined, ok := Combine(hc.Alerts)
	if !ok {
		return res, nil
	}

	text := AlertText(combined)
	sent, err := s.relay.SendAll(ctx, notify.TextEvent{Text: text})
	switch {
	case errors.Is(err, notify.ErrNoPlatforms):
		s.log.Warn("Network alert raised but no webhook is configured", "network", combined.Network)
		return res, nil
	case err != nil:
		return nil, fmt.Errorf("relay network alert: %w", err)
	}

	for _, p := range sent {
		s.store.AddMessage(ctx, messages.NewMessage(p, text, domain.SourceAutomatic, &domain.Trigger{
			Type: domain.TriggerNetworkAlert,
		}))
	}
	s.log.Info("Network alert relayed", "network", combined.Network, "alerts", len(hc.Alerts), "platforms", sent)
	return res, nil
}
