// Package notify delivers build announcements to the team.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"github.com/initializ/skyci/runtime"
)

// Notifier delivers a human-readable message.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Slack posts messages to a Slack incoming webhook.
type Slack struct {
	webhookURL string
	client     *http.Client
}

// NewSlack creates a Slack notifier for webhookURL.
func NewSlack(webhookURL string) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *Slack) Notify(ctx context.Context, message string) error {
	if s.webhookURL == "" {
		return errors.New("slack: webhook url is required (set the slack-webhook input)")
	}
	msg := &slack.WebhookMessage{Text: message}
	if err := slack.PostWebhookCustomHTTPContext(ctx, s.webhookURL, s.client, msg); err != nil {
		return fmt.Errorf("slack: posting webhook: %w", err)
	}
	return nil
}

// LogNotifier writes messages to the build log. It stands in when no
// webhook is configured.
type LogNotifier struct {
	Logger runtime.Logger
}

func (n LogNotifier) Notify(_ context.Context, message string) error {
	logger := n.Logger
	if logger == nil {
		logger = runtime.NopLogger{}
	}
	logger.Info("notification", map[string]any{"message": message})
	return nil
}

// New picks the Slack notifier when webhookURL is set and the log notifier
// otherwise.
func New(webhookURL string, logger runtime.Logger) Notifier {
	if webhookURL == "" {
		return LogNotifier{Logger: logger}
	}
	return NewSlack(webhookURL)
}
