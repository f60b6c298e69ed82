// Package notifier delivers scan results over Telegram.
package notifier

import "context"

// Notifier is the delivery boundary used by the scheduler.
type Notifier interface {
	Send(text string) error
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
	SendDocument(ctx context.Context, filename, contentType string, data []byte, caption string) error
}

// NoopNotifier discards all messages. Used when Telegram is not configured.
type NoopNotifier struct{}

func (NoopNotifier) Send(string) error { return nil }

func (NoopNotifier) SendWithRetry(context.Context, string, int) error { return nil }

func (NoopNotifier) SendDocument(context.Context, string, string, []byte, string) error { return nil }
