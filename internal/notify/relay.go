package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/statusrelay/internal/core/domain"
	"github.com/vietddude/statusrelay/internal/metrics"
)

// ErrNoPlatforms is returned when none of the requested platforms is configured.
var ErrNoPlatforms = errors.New("no configured platform selected")

// Relay fans an event out to the configured notifiers.
type Relay struct {
	notifiers map[domain.Platform]Notifier
	log       *slog.Logger
}

// NewRelay creates a relay over the given notifiers. Nil notifiers are ignored.
func NewRelay(notifiers ...Notifier) *Relay {
	r := &Relay{
		notifiers: make(map[domain.Platform]Notifier),
		log:       slog.Default().With("component", "relay"),
	}
	for _, n := range notifiers {
		if n != nil {
			r.notifiers[n.Platform()] = n
		}
	}
	return r
}

// Configured returns the platforms that have a notifier, in relay order.
func (r *Relay) Configured() []domain.Platform {
	out := make([]domain.Platform, 0, len(r.notifiers))
	for _, p := range domain.Platforms {
		if _, ok := r.notifiers[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Send posts ev to every selected, configured platform concurrently and waits
// for all of them. Unconfigured platforms are skipped. The first failure is
// returned, but every post is issued regardless of the others' outcome.
// On success it returns the platforms that received the event.
func (r *Relay) Send(ctx context.Context, ev Event, platforms []domain.Platform) ([]domain.Platform, error) {
	targets := r.targets(platforms)
	if len(targets) == 0 {
		return nil, ErrNoPlatforms
	}

	// Plain group: one failure must not cancel the sibling request.
	var g errgroup.Group
	for _, n := range targets {
		n := n
		g.Go(func() error {
			return r.deliver(ctx, n, ev)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sent := make([]domain.Platform, 0, len(targets))
	for _, n := range targets {
		sent = append(sent, n.Platform())
	}
	return sent, nil
}

// SendAll posts ev to every configured platform.
func (r *Relay) SendAll(ctx context.Context, ev Event) ([]domain.Platform, error) {
	return r.Send(ctx, ev, domain.Platforms)
}

func (r *Relay) targets(platforms []domain.Platform) []Notifier {
	seen := make(map[domain.Platform]bool, len(platforms))
	var out []Notifier
	for _, p := range domain.Platforms {
		for _, want := range platforms {
			if want != p || seen[p] {
				continue
			}
			seen[p] = true
			if n, ok := r.notifiers[p]; ok {
				out = append(out, n)
			} else {
				r.log.Debug("Platform not configured, skipping", "platform", p)
			}
		}
	}
	return out
}

func (r *Relay) deliver(ctx context.Context, n Notifier, ev Event) error {
	start := time.Now()
	err := n.Send(ctx, ev)
	metrics.RelayLatency.WithLabelValues(string(n.Platform())).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.RelayTotal.WithLabelValues(string(n.Platform()), "error").Inc()
		r.log.Error("Webhook post failed", "platform", n.Platform(), "error", err)
		return err
	}
	metrics.RelayTotal.WithLabelValues(string(n.Platform()), "success").Inc()
	r.log.Info("Webhook post sent", "platform", n.Platform())
	return nil
}
