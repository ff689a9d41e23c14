package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/shopledger/internal/journal"
	"github.com/odyssey-erp/shopledger/internal/ledger"
)

// TaskOverdueScan looks for records whose pending balance is past due.
const TaskOverdueScan = "ledger:overdue_scan"

// OverdueScanPayload selects the record kinds to scan.
type OverdueScanPayload struct {
	Kinds []ledger.Kind `json:"kinds"`
}

// NewOverdueScanTask constructs the scan task. It runs on QueueLedger because
// only the process owning the journal can serve it.
func NewOverdueScanTask(kinds ...ledger.Kind) (*asynq.Task, error) {
	body, err := json.Marshal(OverdueScanPayload{Kinds: kinds})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueScan, body, asynq.Queue(QueueLedger), asynq.MaxRetry(3)), nil
}

// OutstandingSource lists open records with a pending balance.
type OutstandingSource interface {
	List(ctx context.Context, kind ledger.Kind, f journal.Filter) ([]*ledger.Record, error)
	Balance(ctx context.Context, kind ledger.Kind, number string) (ledger.Balance, error)
}

// Reminders sends overdue reminders.
type Reminders interface {
	Reminder(ctx context.Context, rec *ledger.Record, bal ledger.Balance) error
}

// OverdueScanJob reminds counterparties of balances past their due date.
type OverdueScanJob struct {
	source    OutstandingSource
	reminders Reminders
	logger    *slog.Logger
	clock     func() time.Time
}

// NewOverdueScanJob initialises the scan handler.
func NewOverdueScanJob(source OutstandingSource, reminders Reminders, logger *slog.Logger) *OverdueScanJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &OverdueScanJob{source: source, reminders: reminders, logger: logger, clock: time.Now}
}

// Handle executes the scan.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode overdue scan: %v: %w", err, asynq.SkipRetry)
	}
	_, err := j.Scan(ctx, payload.Kinds...)
	return err
}

// Scan sends a reminder for each record at least one calendar day past due and
// returns how many were sent. Closed records are never listed as outstanding.
func (j *OverdueScanJob) Scan(ctx context.Context, kinds ...ledger.Kind) (int, error) {
	now := j.clock()
	sent := 0
	var errs []error
	for _, kind := range kinds {
		records, err := j.source.List(ctx, kind, journal.Filter{Outstanding: true})
		if err != nil {
			return sent, fmt.Errorf("list outstanding %s: %w", kind, err)
		}
		for _, rec := range records {
			bal, err := j.source.Balance(ctx, kind, rec.Number)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if !bal.Overdue(now) {
				continue
			}
			if err := j.reminders.Reminder(ctx, rec, bal); err != nil {
				errs = append(errs, err)
				continue
			}
			sent++
		}
	}
	j.logger.Info("overdue scan finished", slog.Int("reminders", sent), slog.Int("failures", len(errs)))
	return sent, errors.Join(errs...)
}
