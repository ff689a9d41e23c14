package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
)

const (
	// QueueNotify carries self-contained notification tasks any worker can run.
	QueueNotify = "notify"
	// QueueLedger carries tasks that need the in-process journal.
	QueueLedger = "ledger"
	// TaskPaymentSummary sends a balance summary to a counterparty.
	TaskPaymentSummary = "ledger:payment_summary"
)

// PaymentSummaryPayload describes a record's settlement state.
type PaymentSummaryPayload struct {
	Kind         ledger.Kind `json:"kind"`
	Number       string      `json:"number"`
	Counterparty string      `json:"counterparty"`
	Phone        string      `json:"phone"`
	Total        money.Money `json:"total"`
	Paid         money.Money `json:"paid"`
	Pending      money.Money `json:"pending"`
	DueDate      *time.Time  `json:"due_date,omitempty"`
	Reminder     bool        `json:"reminder,omitempty"`
}

// NewPaymentSummaryPayload snapshots a record and its current balance.
func NewPaymentSummaryPayload(rec *ledger.Record, bal ledger.Balance) PaymentSummaryPayload {
	return PaymentSummaryPayload{
		Kind:         rec.Kind,
		Number:       rec.Number,
		Counterparty: rec.Counterparty.Name,
		Phone:        rec.Counterparty.Phone,
		Total:        bal.Total,
		Paid:         bal.Paid,
		Pending:      bal.Pending,
		DueDate:      bal.DueDate,
	}
}

// NewPaymentSummaryTask constructs an Asynq task.
func NewPaymentSummaryTask(payload PaymentSummaryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentSummary, data, asynq.Queue(QueueNotify), asynq.MaxRetry(5)), nil
}

// SummaryText renders the plain-text message sent to the counterparty.
func SummaryText(shop string, p PaymentSummaryPayload) string {
	var b strings.Builder
	name := p.Counterparty
	if name == "" {
		name = "Customer"
	}
	fmt.Fprintf(&b, "Hello %s,\n", name)
	if p.Reminder {
		b.WriteString("This is a reminder about your pending balance.\n")
	}
	fmt.Fprintf(&b, "%s %s: total %s, paid %s", p.Kind.Label(), p.Number,
		money.Format(p.Total), money.Format(p.Paid))
	if p.Pending.IsZero() {
		b.WriteString(". Fully paid, thank you!\n")
	} else {
		fmt.Fprintf(&b, ", pending %s", money.Format(p.Pending))
		if p.DueDate != nil {
			fmt.Fprintf(&b, " due %s", p.DueDate.Format("02 Jan 2006"))
		}
		b.WriteString(".\n")
	}
	if shop != "" {
		fmt.Fprintf(&b, "- %s", shop)
	}
	return b.String()
}

// Dispatcher delivers a rendered summary.
type Dispatcher interface {
	Dispatch(ctx context.Context, phone, message string) error
}

// LogDispatcher writes summaries to the log instead of sending them.
type LogDispatcher struct {
	Logger *slog.Logger
}

// Dispatch implements Dispatcher.
func (d LogDispatcher) Dispatch(_ context.Context, phone, message string) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("payment summary", slog.String("phone", phone), slog.String("message", message))
	return nil
}

// PaymentSummaryHandler processes TaskPaymentSummary tasks.
type PaymentSummaryHandler struct {
	Shop       string
	Dispatcher Dispatcher
	Logger     *slog.Logger
	// Observe, when set, is told the outcome of every task.
	Observe func(task string, err error)
}

// Handle implements asynq.HandlerFunc.
func (h *PaymentSummaryHandler) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if h.Observe != nil {
		defer func() { h.Observe(TaskPaymentSummary, err) }()
	}
	var payload PaymentSummaryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payment summary: %v: %w", err, asynq.SkipRetry)
	}
	if strings.TrimSpace(payload.Phone) == "" {
		if h.Logger != nil {
			h.Logger.Debug("payment summary skipped, no phone", slog.String("number", payload.Number))
		}
		return nil
	}
	if err := h.Dispatcher.Dispatch(ctx, payload.Phone, SummaryText(h.Shop, payload)); err != nil {
		return fmt.Errorf("dispatch payment summary %s: %w", payload.Number, err)
	}
	return nil
}
