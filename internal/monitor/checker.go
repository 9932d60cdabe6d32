// Package monitor runs the block production health check.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/statusrelay/internal/core/domain"
	"github.com/vietddude/statusrelay/internal/infra/storage"
	"github.com/vietddude/statusrelay/internal/metrics"
)

// Health check thresholds in seconds. Comparisons are strict.
const (
	BlockTimeTarget   = 6
	BlockTimeVariance = 3
	StallThreshold    = 30

	// MaxStoredBlocks is the size of the retained block history.
	MaxStoredBlocks = 100
)

// BlockSource returns the newest block of the monitored chain.
type BlockSource interface {
	FetchLatestBlock(ctx context.Context) (domain.BlockRecord, error)
}

// Checker compares the latest block against the recorded history.
type Checker struct {
	source      BlockSource
	history     storage.BlockHistoryRepository
	network     string
	explorerURL string
	now         func() time.Time
	log         *slog.Logger
}

// NewChecker creates a checker for one network.
func NewChecker(
	source BlockSource,
	history storage.BlockHistoryRepository,
	network string,
	explorerURL string,
) *Checker {
	return &Checker{
		source:      source,
		history:     history,
		network:     network,
		explorerURL: explorerURL,
		now:         time.Now,
		log:         slog.Default().With("component", "block_monitor", "network", network),
	}
}

// Network returns the monitored network name.
func (c *Checker) Network() string { return c.network }

// Check fetches the latest block, records it and evaluates chain health.
// Only a failed fetch is returned as an error; history failures surface as
// an extra alert next to whatever was already detected.
func (c *Checker) Check(ctx context.Context) (domain.BlockRecord, domain.HealthCheck, error) {
	block, err := c.source.FetchLatestBlock(ctx)
	if err != nil {
		metrics.HealthChecksTotal.WithLabelValues(c.network, "fetch_error").Inc()
		return domain.BlockRecord{}, domain.HealthCheck{}, err
	}
	metrics.ChainLatestBlock.WithLabelValues(c.network).Set(float64(block.Height))

	link := fmt.Sprintf("%s%d", c.explorerURL, block.Height)
	var alerts []domain.NetworkAlert

	if blockTime, err := time.Parse(time.RFC3339Nano, block.Timestamp); err == nil {
		staleness := float64(c.now().Sub(blockTime).Milliseconds()) / 1000
		if staleness > StallThreshold {
			alerts = append(alerts, c.alert("stall", link,
				"Chain appears stalled. No new blocks for %.1f seconds. Latest block %d was produced at %s",
				staleness, block.Height, block.Timestamp))
		}
	}

	alerts, err = c.track(ctx, block, link, alerts)
	if err != nil {
		c.log.Error("Failed to track block history", "height", block.Height, "error", err)
		alerts = append(alerts, c.alert("error", link,
			"Error monitoring block height: %v. Latest block: %d", err, block.Height))
	}

	hc := domain.HealthCheck{
		IsHealthy: len(alerts) == 0,
		Alerts:    alerts,
	}
	if hc.Alerts == nil {
		hc.Alerts = []domain.NetworkAlert{}
	}

	result := "healthy"
	if !hc.IsHealthy {
		result = "unhealthy"
	}
	metrics.HealthChecksTotal.WithLabelValues(c.network, result).Inc()
	c.log.Debug("Block health checked", "height", block.Height, "alerts", len(alerts))

	return block, hc, nil
}

// track stores block, compares the two newest recorded blocks and prunes the
// history. Alerts raised before a failure are returned with the error.
func (c *Checker) track(
	ctx context.Context,
	block domain.BlockRecord,
	link string,
	alerts []domain.NetworkAlert,
) ([]domain.NetworkAlert, error) {
	if err := c.history.Save(ctx, block); err != nil {
		return alerts, fmt.Errorf("save block: %w", err)
	}

	recent, err := c.history.Latest(ctx, 2)
	if err != nil {
		return alerts, fmt.Errorf("read block history: %w", err)
	}

	if len(recent) == 2 {
		prev, cur := recent[0], recent[1]

		prevTime, err := time.Parse(time.RFC3339Nano, prev.Timestamp)
		if err != nil {
			return alerts, fmt.Errorf("parse block %d time: %w", prev.Height, err)
		}
		curTime, err := time.Parse(time.RFC3339Nano, cur.Timestamp)
		if err != nil {
			return alerts, fmt.Errorf("parse block %d time: %w", cur.Height, err)
		}

		blockTimeDiff := float64(curTime.Sub(prevTime).Milliseconds()) / 1000
		if blockTimeDiff > BlockTimeTarget+BlockTimeVariance {
			alerts = append(alerts, c.alert("slow", link,
				"Block production is slower than expected. Time between blocks %d and %d: %.1fs (target: %ds ±%ds)",
				prev.Height, cur.Height, blockTimeDiff, BlockTimeTarget, BlockTimeVariance))
		}

		if heightDiff := cur.Height - prev.Height; heightDiff > 1 {
			alerts = append(alerts, c.alert("gap", link,
				"Block sequence gap detected. Missing %d blocks between heights %d and %d. Current block timestamp: %s",
				heightDiff-1, prev.Height, cur.Height, cur.Timestamp))
		}
	}

	if err := c.history.Prune(ctx, MaxStoredBlocks); err != nil {
		return alerts, fmt.Errorf("prune block history: %w", err)
	}
	return alerts, nil
}

func (c *Checker) alert(kind, link, format string, args ...any) domain.NetworkAlert {
	metrics.AlertsTotal.WithLabelValues(c.network, kind).Inc()
	return domain.NetworkAlert{
		Type:      domain.AlertTypeNetwork,
		Network:   c.network,
		Info:      fmt.Sprintf(format, args...),
		BlockLink: link,
	}
}

// Combine merges alerts into one alert for the first alert's network.
func Combine(alerts []domain.NetworkAlert) (domain.NetworkAlert, bool) {
	if len(alerts) == 0 {
		return domain.NetworkAlert{}, false
	}
	combined := domain.NetworkAlert{
		Type:      domain.AlertTypeNetwork,
		Network:   alerts[0].Network,
		BlockLink: alerts[0].BlockLink,
	}
	for i, a := range alerts {
		if i > 0 {
			combined.Info += "\n"
		}
		combined.Info += a.Info
	}
	return combined, true
}

// AlertText renders an alert as chat text.
func AlertText(a domain.NetworkAlert) string {
	text := fmt.Sprintf("⚠️ **Network Alert: %s**\n%s", a.Network, a.Info)
	if a.BlockLink != "" {
		text += "\n" + a.BlockLink
	}
	return text
}
