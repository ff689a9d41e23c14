package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/shopledger/internal/ledger"
)

// Notifier tells a counterparty about the balance of a record.
type Notifier interface {
	PaymentSummary(ctx context.Context, rec *ledger.Record, bal ledger.Balance) error
}

// NopNotifier drops every notification.
type NopNotifier struct{}

// PaymentSummary implements Notifier.
func (NopNotifier) PaymentSummary(context.Context, *ledger.Record, ledger.Balance) error { return nil }

// Enqueuer is the part of asynq.Client the notifier needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier enqueues payment summaries for the worker.
type QueueNotifier struct {
	queue  Enqueuer
	logger *slog.Logger
}

// NewQueueNotifier constructs a notifier over queue.
func NewQueueNotifier(queue Enqueuer, logger *slog.Logger) *QueueNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueNotifier{queue: queue, logger: logger}
}

// PaymentSummary implements Notifier.
func (n *QueueNotifier) PaymentSummary(ctx context.Context, rec *ledger.Record, bal ledger.Balance) error {
	return n.enqueue(ctx, NewPaymentSummaryPayload(rec, bal))
}

func (n *QueueNotifier) enqueue(ctx context.Context, payload PaymentSummaryPayload) error {
	task, err := NewPaymentSummaryTask(payload)
	if err != nil {
		return fmt.Errorf("build payment summary task: %w", err)
	}
	info, err := n.queue.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue payment summary %s: %w", payload.Number, err)
	}
	if info != nil {
		n.logger.Debug("payment summary enqueued", slog.String("task_id", info.ID), slog.String("number", payload.Number))
	}
	return nil
}

// Reminder enqueues a summary flagged as an overdue reminder.
func (n *QueueNotifier) Reminder(ctx context.Context, rec *ledger.Record, bal ledger.Balance) error {
	payload := NewPaymentSummaryPayload(rec, bal)
	payload.Reminder = true
	return n.enqueue(ctx, payload)
}
