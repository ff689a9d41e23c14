// Package records ties a ledger to the journal for one record kind: it
// finalizes, stores, settles and reports records, and tells counterparties and
// metrics about each step.
package records

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/shopledger/internal/journal"
	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/observability"
)

// Notifier tells a counterparty about the balance of a record.
type Notifier interface {
	PaymentSummary(ctx context.Context, rec *ledger.Record, bal ledger.Balance) error
}

// Entry is a record with its current settlement state.
type Entry struct {
	Record   *ledger.Record        `json:"record"`
	Balance  ledger.Balance        `json:"balance"`
	Payments []ledger.PaymentEvent `json:"payments,omitempty"`
	ClosedAt *time.Time            `json:"closed_at,omitempty"`
}

// Desk serves one record kind.
type Desk struct {
	ledger   *ledger.Ledger
	store    *journal.Store
	notifier Notifier
	metrics  *observability.LedgerMetrics
	logger   *slog.Logger
}

// Config collects the optional collaborators of a Desk.
type Config struct {
	Notifier Notifier
	Metrics  *observability.LedgerMetrics
	Logger   *slog.Logger
}

// NewDesk constructs a desk over l and store.
func NewDesk(l *ledger.Ledger, store *journal.Store, cfg Config) *Desk {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Desk{
		ledger:   l,
		store:    store,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger.With(slog.String("kind", string(l.Kind()))),
	}
}

// Kind returns the record kind served.
func (d *Desk) Kind() ledger.Kind { return d.ledger.Kind() }

// Ledger exposes the underlying ledger.
func (d *Desk) Ledger() *ledger.Ledger { return d.ledger }

// Store exposes the underlying journal.
func (d *Desk) Store() *journal.Store { return d.store }

// Finalize turns req into a stored record.
func (d *Desk) Finalize(ctx context.Context, req ledger.FinalizeRequest) (Entry, error) {
	rec, err := d.ledger.Finalize(ctx, req)
	if err != nil {
		d.reject(err)
		return Entry{}, err
	}
	if err := d.store.Save(ctx, rec); err != nil {
		return Entry{}, fmt.Errorf("save %s %s: %w", rec.Kind, rec.Number, err)
	}
	d.metrics.Finalized(rec)
	bal, err := d.store.Balance(ctx, rec.Kind, rec.Number)
	if err != nil {
		return Entry{}, err
	}
	d.logger.Info("record finalized",
		slog.String("number", rec.Number),
		slog.String("total", rec.Total.String()),
		slog.String("mode", string(rec.Plan.Mode)))
	d.notify(ctx, rec, bal)
	return Entry{Record: rec, Balance: bal}, nil
}

// Get returns a record with its balance and payment history.
func (d *Desk) Get(ctx context.Context, number string) (Entry, error) {
	rec, err := d.store.Get(ctx, d.Kind(), number)
	if err != nil {
		return Entry{}, err
	}
	payments, err := d.store.Payments(ctx, d.Kind(), number)
	if err != nil {
		return Entry{}, err
	}
	bal, err := ledger.ApplyPayments(rec, payments)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Record: rec, Balance: bal, Payments: payments, ClosedAt: d.closedAt(number)}, nil
}

// List returns matching records with their balances, newest first.
func (d *Desk) List(ctx context.Context, f journal.Filter) ([]Entry, error) {
	recs, err := d.store.List(ctx, d.Kind(), f)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(recs))
	for _, rec := range recs {
		bal, err := d.store.Balance(ctx, rec.Kind, rec.Number)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Record: rec, Balance: bal, ClosedAt: d.closedAt(rec.Number)})
	}
	return out, nil
}

// Close takes number out of the outstanding set. Its pending balance no longer
// ages or triggers reminders, and further payments are refused.
func (d *Desk) Close(ctx context.Context, number string) error {
	if err := d.store.Close(ctx, d.Kind(), number); err != nil {
		return err
	}
	d.logger.Info("record closed", slog.String("number", number))
	return nil
}

func (d *Desk) closedAt(number string) *time.Time {
	at, ok := d.store.ClosedAt(d.Kind(), number)
	if !ok {
		return nil
	}
	return &at
}

// Pay appends a payment against number and returns the new state.
func (d *Desk) Pay(ctx context.Context, number string, amount money.Money, note string) (Entry, ledger.PaymentEvent, error) {
	rec, err := d.store.Get(ctx, d.Kind(), number)
	if err != nil {
		return Entry{}, ledger.PaymentEvent{}, err
	}
	ev := ledger.NewPaymentEvent(rec, amount, d.ledger.Now(), strings.TrimSpace(note))
	bal, err := d.store.AppendPayment(ctx, ev)
	if err != nil {
		d.reject(err)
		return Entry{}, ledger.PaymentEvent{}, err
	}
	d.metrics.PaymentApplied(rec.Kind)
	d.logger.Info("payment applied",
		slog.String("number", number),
		slog.String("amount", amount.String()),
		slog.String("pending", bal.Pending.String()))
	d.notify(ctx, rec, bal)
	return Entry{Record: rec, Balance: bal}, ev, nil
}

// Return resolves a return or exchange against number.
func (d *Desk) Return(ctx context.Context, number string, req ledger.ReturnRequest, reason string) (*ledger.ReturnRecord, error) {
	ret, err := d.store.ResolveReturn(ctx, d.Kind(), number, req, strings.TrimSpace(reason))
	if err != nil {
		d.reject(err)
		return nil, err
	}
	d.metrics.ReturnResolved(ret.Resolution)
	d.logger.Info("return resolved",
		slog.String("number", number),
		slog.String("resolution", string(ret.Resolution)),
		slog.String("delta", ret.Delta.String()))
	return ret, nil
}

// Returns lists the returns taken against number.
func (d *Desk) Returns(ctx context.Context, number string) ([]ledger.ReturnRecord, error) {
	return d.store.Returns(ctx, d.Kind(), number)
}

func (d *Desk) reject(err error) {
	if ledger.IsValidation(err) {
		d.metrics.Rejected(d.Kind(), err)
	}
}

// notify never fails the caller: the record is already stored.
func (d *Desk) notify(ctx context.Context, rec *ledger.Record, bal ledger.Balance) {
	if d.notifier == nil {
		return
	}
	if err := d.notifier.PaymentSummary(ctx, rec, bal); err != nil {
		d.logger.Warn("payment summary not sent", slog.String("number", rec.Number), slog.Any("error", err))
	}
}
