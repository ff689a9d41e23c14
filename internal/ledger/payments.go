package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/shopledger/internal/money"
)

// PaymentStatus summarises how much of a record has been settled.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPending PaymentStatus = "pending"
)

// PaymentEvent is an additional payment recorded against an existing record.
// Events are appended; the record itself never changes.
type PaymentEvent struct {
	ID           uuid.UUID   `json:"id"`
	Kind         Kind        `json:"kind"`
	RecordNumber string      `json:"record_number"`
	Amount       money.Money `json:"amount"`
	AppliedAt    time.Time   `json:"applied_at"`
	Note         string      `json:"note,omitempty"`
}

// NewPaymentEvent stamps a payment against rec.
func NewPaymentEvent(rec *Record, amount money.Money, at time.Time, note string) PaymentEvent {
	return PaymentEvent{
		ID:           uuid.New(),
		Kind:         rec.Kind,
		RecordNumber: rec.Number,
		Amount:       amount,
		AppliedAt:    at,
		Note:         note,
	}
}

// Balance is the settlement state of a record after its payment events.
type Balance struct {
	Total         money.Money   `json:"total"`
	Paid          money.Money   `json:"paid"`
	Pending       money.Money   `json:"pending"`
	Status        PaymentStatus `json:"status"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	LastPaymentAt *time.Time    `json:"last_payment_at,omitempty"`
}

// ApplyPayments folds events into the record's checkout plan. Events for other
// records are rejected; cumulative payments may not exceed the total.
func ApplyPayments(rec *Record, events []PaymentEvent) (Balance, error) {
	plan := rec.Plan.clone()
	bal := Balance{
		Total:   plan.Total,
		Paid:    plan.Paid,
		Pending: plan.Pending,
		DueDate: plan.DueDate,
	}
	for _, ev := range events {
		if ev.RecordNumber != rec.Number || ev.Kind != rec.Kind {
			return Balance{}, fmt.Errorf("payment %s does not belong to %s %s", ev.ID, rec.Kind, rec.Number)
		}
		if ev.Amount <= 0 {
			return Balance{}, fmt.Errorf("%w: payment %s", ErrInvalidAmount, ev.Amount)
		}
		pending, err := bal.Pending.Sub(ev.Amount)
		if err != nil {
			return Balance{}, fmt.Errorf("%w: paying %s against pending %s", ErrPaidExceedsTotal, ev.Amount, bal.Pending)
		}
		bal.Paid = bal.Paid.Add(ev.Amount)
		bal.Pending = pending
		at := ev.AppliedAt
		bal.LastPaymentAt = &at
	}
	if bal.Pending.IsZero() {
		bal.DueDate = nil
	}
	bal.Status = statusFor(bal)
	return bal, nil
}

// Overdue reports whether an outstanding balance is at least one calendar day
// past its due date as of asOf.
func (b Balance) Overdue(asOf time.Time) bool {
	return b.DueDate != nil && !b.Pending.IsZero() && DaysPastDue(*b.DueDate, asOf) > 0
}

// DaysPastDue counts calendar days from due to asOf, both read in asOf's
// location. A balance due later today is zero days past due; one due
// yesterday evening is one day past due at any hour today.
func DaysPastDue(due, asOf time.Time) int {
	dy, dm, dd := due.In(asOf.Location()).Date()
	ay, am, ad := asOf.Date()
	from := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	to := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func statusFor(b Balance) PaymentStatus {
	switch {
	case b.Pending.IsZero():
		return PaymentPaid
	case b.Paid > 0:
		return PaymentPartial
	default:
		return PaymentPending
	}
}
