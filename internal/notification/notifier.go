// Package notification delivers the daily screening report to external
// channels (Slack, Discord, Telegram, generic webhooks).
package notification

import (
	"context"
	"log"
)

// Notifier is the interface for all delivery backends.
type Notifier interface {
	// Send delivers a formatted report message. Returns error if delivery fails.
	Send(ctx context.Context, message string) error
}

// LogNotifier prints the message to the process log (useful for
// development and dry runs).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, message string) error {
	log.Printf("[notify]\n%s", message)
	return nil
}

// Multi fans one message out to several backends. A failing backend is
// logged and does not stop the rest; the first error is returned.
type Multi struct {
	backends []Notifier
}

// NewMulti creates a fan-out notifier.
func NewMulti(backends ...Notifier) *Multi {
	return &Multi{backends: backends}
}

func (m *Multi) Send(ctx context.Context, message string) error {
	var firstErr error
	for _, n := range m.backends {
		if err := n.Send(ctx, message); err != nil {
			log.Printf("[notify] backend error: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
