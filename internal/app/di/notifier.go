package di

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"user_backend/internal/feature/users/usecase"
	"user_backend/internal/platform/notify"
)

// NewSender returns an SMTP sender when SMTP is configured, otherwise a sender that only logs.
func NewSender(cfg notify.SMTPConfig) notify.Sender {
	if cfg.Enabled() {
		slog.Info("email delivery via SMTP", "host", cfg.Host, "port", cfg.Port)
		return notify.NewSMTPSender(cfg)
	}
	slog.Warn("SMTP not configured. Emails will only be logged.")
	return notify.LogSender{}
}

// NewNotifier creates the Notifier used for welcome emails.
// If Redis is available, messages are queued and the returned Worker must be run
// to deliver them. Otherwise, it falls back to in-process goroutines and the Worker is nil.
func NewNotifier(rdb *redis.Client, sender notify.Sender, timeout time.Duration) (usecase.Notifier, *notify.Worker) {
	if rdb != nil {
		return notify.NewRedisQueue(rdb, notify.DefaultQueueKey),
			notify.NewWorker(rdb, notify.DefaultQueueKey, sender, timeout)
	}
	return notify.NewAsyncDispatcher(sender, timeout), nil
}
