// Package notify delivers outbound email. Senders talk to the mail transport;
// dispatchers decouple delivery from the request that triggered it.
package notify

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 10 * time.Second

// Sender delivers one message synchronously.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogSender only logs messages. It is used when no SMTP server is configured.
type LogSender struct{}

var _ Sender = LogSender{}

// Send logs the message and never fails.
func (LogSender) Send(_ context.Context, recipient, subject, body string) error {
	slog.Info("email (not sent, no SMTP configured)", "to", recipient, "subject", subject, "body", body)
	return nil
}

// LoadTimeout reads NOTIFY_TIMEOUT, falling back to DefaultTimeout.
func LoadTimeout() time.Duration {
	if v := os.Getenv("NOTIFY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return DefaultTimeout
}

// AsyncDispatcher sends each message on its own goroutine, bounded by a timeout.
type AsyncDispatcher struct {
	sender  Sender
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewAsyncDispatcher creates an AsyncDispatcher. A non-positive timeout uses DefaultTimeout.
func NewAsyncDispatcher(sender Sender, timeout time.Duration) *AsyncDispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &AsyncDispatcher{sender: sender, timeout: timeout}
}

// Dispatch returns immediately; delivery errors are logged.
func (d *AsyncDispatcher) Dispatch(ctx context.Context, recipient, subject, body string) error {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		if err := d.sender.Send(sendCtx, recipient, subject, body); err != nil {
			slog.Error("email delivery failed", "to", recipient, "subject", subject, "error", err)
			return
		}
		slog.Debug("email delivered", "to", recipient, "subject", subject)
	}()
	return nil
}

// Wait blocks until every dispatched message has been handled.
func (d *AsyncDispatcher) Wait() {
	d.wg.Wait()
}
