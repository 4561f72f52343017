package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultQueueKey is the Redis list holding pending messages.
	DefaultQueueKey = "notify:email"

	popTimeout = time.Second
)

// Message is the queued form of an email.
type Message struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// RedisQueue enqueues messages on a Redis list for a Worker to deliver.
type RedisQueue struct {
	rdb *redis.Client
	key string
}

// NewRedisQueue creates a RedisQueue. An empty key uses DefaultQueueKey.
func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = DefaultQueueKey
	}
	return &RedisQueue{rdb: rdb, key: key}
}

// Dispatch pushes the message onto the queue.
func (q *RedisQueue) Dispatch(ctx context.Context, recipient, subject, body string) error {
	b, err := json.Marshal(Message{Recipient: recipient, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.key, b).Err(); err != nil {
		return fmt.Errorf("failed to enqueue message: %w", err)
	}
	return nil
}

// Worker drains a RedisQueue and hands each message to a Sender.
type Worker struct {
	rdb     *redis.Client
	key     string
	sender  Sender
	timeout time.Duration
}

// NewWorker creates a Worker. A non-positive timeout uses DefaultTimeout.
func NewWorker(rdb *redis.Client, key string, sender Sender, timeout time.Duration) *Worker {
	if key == "" {
		key = DefaultQueueKey
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Worker{rdb: rdb, key: key, sender: sender, timeout: timeout}
}

// Run blocks until ctx is cancelled, delivering messages in FIFO order.
// A delivery in progress when ctx is cancelled runs to completion (bounded by
// the worker timeout) before Run returns. Delivery failures are logged and the
// message is dropped.
func (w *Worker) Run(ctx context.Context) {
	slog.Info("notification worker started", "queue", w.key)
	defer slog.Info("notification worker stopped", "queue", w.key)

	for {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.ProcessOne(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("notification worker error", "queue", w.key, "error", err)
			// back off so a down Redis does not spin the loop
			select {
			case <-ctx.Done():
				return
			case <-time.After(popTimeout):
			}
		}
	}
}

// ProcessOne waits up to one second for a message and delivers it.
// It reports whether a message was taken off the queue.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	res, err := w.rdb.BRPop(ctx, popTimeout, w.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	// res[0] is the key, res[1] the value
	var msg Message
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		slog.Error("dropping malformed notification", "queue", w.key, "error", err)
		return true, nil
	}

	// the message is already off the list; cancelling ctx must not abort its delivery
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.timeout)
	defer cancel()
	if err := w.sender.Send(sendCtx, msg.Recipient, msg.Subject, msg.Body); err != nil {
		slog.Error("email delivery failed", "to", msg.Recipient, "subject", msg.Subject, "error", err)
		return true, nil
	}
	slog.Debug("email delivered", "to", msg.Recipient, "subject", msg.Subject)
	return true, nil
}
