package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/odyssey-erp/shopledger/internal/money"
)

// Kind names the business flow a record belongs to.
type Kind string

const (
	KindBill     Kind = "bill"
	KindOrder    Kind = "whatsapp_order"
	KindShipment Kind = "courier"
	KindPrintJob Kind = "printing"
	KindSalary   Kind = "salary"
)

// Label is the human name of the record kind.
func (k Kind) Label() string {
	switch k {
	case KindBill:
		return "Bill"
	case KindOrder:
		return "Order"
	case KindShipment:
		return "Shipment"
	case KindPrintJob:
		return "Printing job"
	case KindSalary:
		return "Salary"
	default:
		return string(k)
	}
}

// PartyType distinguishes the directories a counterparty comes from.
type PartyType string

const (
	PartyCustomer PartyType = "customer"
	PartyVendor   PartyType = "vendor"
	PartyStaff    PartyType = "staff"
)

// Counterparty identifies the customer, vendor or staff member on a record.
type Counterparty struct {
	Type  PartyType `json:"type"`
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone,omitempty"`
}

// Sequencer hands out monotonically increasing identifiers. Implementations
// must be atomic: concurrent callers never observe the same value.
type Sequencer interface {
	Next(ctx context.Context) (int64, error)
}

// Record is a finalized transaction. Records are snapshots: nothing in the
// ledger mutates one after Finalize returns, and Clone must be used before
// handing one to code that might.
type Record struct {
	Kind         Kind         `json:"kind"`
	SequenceID   int64        `json:"sequence_id"`
	Number       string       `json:"number"`
	CreatedAt    time.Time    `json:"created_at"`
	Counterparty Counterparty `json:"counterparty"`
	Items        []LineItem   `json:"items"`
	Subtotal     money.Money  `json:"subtotal"`
	Discount     money.Money  `json:"discount"`
	Total        money.Money  `json:"total"`
	Plan         PaymentPlan  `json:"payment"`
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Items = cloneLines(r.Items)
	out.Plan = r.Plan.clone()
	return &out
}

// Quantities returns purchased units per product.
func (r *Record) Quantities() map[string]money.Quantity {
	out := make(map[string]money.Quantity, len(r.Items))
	for _, l := range r.Items {
		out[l.ProductID] += l.Quantity
	}
	return out
}

// Line returns the record row for productID.
func (r *Record) Line(productID string) (LineItem, bool) {
	for _, l := range r.Items {
		if l.ProductID == productID {
			return l, true
		}
	}
	return LineItem{}, false
}

// NumberFunc formats the public number of a record.
type NumberFunc func(seq int64, at time.Time) string

// PlainNumber renders the bare sequence, as used for retail bill numbers.
func PlainNumber(seq int64, _ time.Time) string {
	return strconv.FormatInt(seq, 10)
}

// PrefixedNumber renders {prefix}{seq:06d}.
func PrefixedNumber(prefix string) NumberFunc {
	return func(seq int64, _ time.Time) string {
		return fmt.Sprintf("%s%06d", prefix, seq)
	}
}

// Ledger finalizes carts into records for one Kind.
type Ledger struct {
	kind   Kind
	seq    Sequencer
	number NumberFunc
	grace  time.Duration
	now    func() time.Time
}

// Option customises a Ledger.
type Option func(*Ledger)

// WithNumberFunc sets the record number format.
func WithNumberFunc(fn NumberFunc) Option {
	return func(l *Ledger) {
		if fn != nil {
			l.number = fn
		}
	}
}

// WithGracePeriod sets the window before a pending balance is due.
func WithGracePeriod(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.grace = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// New constructs a ledger for kind drawing identifiers from seq.
func New(kind Kind, seq Sequencer, opts ...Option) *Ledger {
	l := &Ledger{
		kind:   kind,
		seq:    seq,
		number: PlainNumber,
		grace:  DefaultGracePeriod,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Kind returns the record kind this ledger produces.
func (l *Ledger) Kind() Kind { return l.kind }

// GracePeriod returns the configured due-date window.
func (l *Ledger) GracePeriod() time.Duration { return l.grace }

// Now returns the ledger clock reading.
func (l *Ledger) Now() time.Time { return l.now() }

// FinalizeRequest carries everything checkout needs.
type FinalizeRequest struct {
	Cart         *Cart
	Discount     money.Money
	Mode         PaymentMode
	Paid         *money.Money
	Counterparty Counterparty
}

// Finalize validates the request, consumes one sequence slot and returns the
// immutable record. Validation happens before the slot is taken, so a failed
// request never burns a number.
func (l *Ledger) Finalize(ctx context.Context, req FinalizeRequest) (*Record, error) {
	if req.Cart == nil || req.Cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if strings.TrimSpace(req.Counterparty.ID) == "" {
		return nil, ErrMissingCounterparty
	}

	issuedAt := l.now()
	items := req.Cart.Items()
	subtotal := sumLines(items)
	plan, err := ComputePlan(PlanInput{
		Subtotal: subtotal,
		Discount: req.Discount,
		Mode:     req.Mode,
		Paid:     req.Paid,
		IssuedAt: issuedAt,
		Grace:    l.grace,
	})
	if err != nil {
		return nil, err
	}

	seq, err := l.seq.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("next %s sequence: %w", l.kind, err)
	}

	return &Record{
		Kind:         l.kind,
		SequenceID:   seq,
		Number:       l.number(seq, issuedAt),
		CreatedAt:    issuedAt,
		Counterparty: req.Counterparty,
		Items:        items,
		Subtotal:     subtotal,
		Discount:     req.Discount,
		Total:        plan.Total,
		Plan:         plan,
	}, nil
}
