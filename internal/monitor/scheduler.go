package monitor

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler runs the monitoring service on a fixed interval.
type Scheduler struct {
	service  *Service
	interval time.Duration
}

// NewScheduler creates a scheduler. A non-positive interval disables it.
func NewScheduler(service *Service, interval time.Duration) *Scheduler {
	return &Scheduler{service: service, interval: interval}
}

// Start runs the loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Initial run
	s.run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	res, err := s.service.Run(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("Block monitoring failed", "error", err)
		}
		return
	}
	if !res.HealthCheck.IsHealthy {
		slog.Warn("Chain unhealthy", "height", res.LatestBlock.Height, "alerts", len(res.HealthCheck.Alerts))
	}
}
