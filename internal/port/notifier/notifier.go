// Package notifier defines the port interface for outbound notifications.
package notifier

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by adapters missing required configuration.
var ErrNotConfigured = errors.New("notifier not configured")

// Notification is a single outbound message.
type Notification struct {
	Title   string
	Message string
	Level   string // "info", "success", "warning", "error"
	Source  string

	// WebhookURL overrides the adapter's default destination, used for
	// per-space webhook routing. Empty means the configured default.
	WebhookURL string
}

// Notifier sends notifications to an external channel. Sends are
// best-effort: failures are logged by callers, never surfaced to requests.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}
