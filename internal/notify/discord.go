package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vietddude/statusrelay/internal/core/domain"
)

// DiscordNotifier posts `{content}` payloads to a Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	loc        *time.Location
	httpClient *http.Client
}

// NewDiscordNotifier creates a Discord notifier.
func NewDiscordNotifier(webhookURL string, timeout time.Duration, loc *time.Location) (*DiscordNotifier, error) {
	if err := validateWebhookURL(webhookURL); err != nil {
		return nil, fmt.Errorf("invalid discord config: %w", err)
	}
	return &DiscordNotifier{
		webhookURL: webhookURL,
		loc:        loc,
		httpClient: newHTTPClient(timeout),
	}, nil
}

func (d *DiscordNotifier) Platform() domain.Platform { return domain.PlatformDiscord }

func (d *DiscordNotifier) Send(ctx context.Context, ev Event) error {
	payload, err := FormatDiscord(ev, d.loc)
	if err != nil {
		return err
	}
	if err := postJSON(ctx, d.httpClient, d.webhookURL, payload); err != nil {
		return fmt.Errorf("discord: %w", err)
	}
	return nil
}
