package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vietddude/statusrelay/internal/core/domain"
)

// SlackNotifier posts Block Kit payloads to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	loc        *time.Location
	httpClient *http.Client
}

// NewSlackNotifier creates a Slack notifier.
func NewSlackNotifier(webhookURL string, timeout time.Duration, loc *time.Location) (*SlackNotifier, error) {
	if err := validateWebhookURL(webhookURL); err != nil {
		return nil, fmt.Errorf("invalid slack config: %w", err)
	}
	return &SlackNotifier{
		webhookURL: webhookURL,
		loc:        loc,
		httpClient: newHTTPClient(timeout),
	}, nil
}

func (s *SlackNotifier) Platform() domain.Platform { return domain.PlatformSlack }

func (s *SlackNotifier) Send(ctx context.Context, ev Event) error {
	payload, err := FormatSlack(ev, s.loc)
	if err != nil {
		return err
	}
	if err := postJSON(ctx, s.httpClient, s.webhookURL, payload); err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	return nil
}
