package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// WebhookStyle selects the JSON payload shape a webhook endpoint expects.
type WebhookStyle string

const (
	// StyleSlack posts {"text": ...}; Slack answers 200.
	StyleSlack WebhookStyle = "slack"
	// StyleDiscord posts {"content": ...}; Discord answers 204.
	StyleDiscord WebhookStyle = "discord"
)

// WebhookNotifier sends the report to a Slack- or Discord-style incoming
// webhook URL.
type WebhookNotifier struct {
	url    string
	style  WebhookStyle
	client *http.Client
}

// NewWebhookNotifier creates a webhook notifier for the given style.
func NewWebhookNotifier(url string, style WebhookStyle) *WebhookNotifier {
	return &WebhookNotifier{
		url:   url,
		style: style,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (w *WebhookNotifier) Send(ctx context.Context, message string) error {
	var payload map[string]string
	switch w.style {
	case StyleDiscord:
		payload = map[string]string{"content": message}
	default:
		payload = map[string]string{"text": message}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}

	log.Printf("[webhook] sent %s report (%d bytes)", w.style, len(message))
	return nil
}
