package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/odyssey-erp/shopledger/internal/money"
)

// DefaultGracePeriod is how long an unpaid balance stays open before it is due.
const DefaultGracePeriod = 15 * 24 * time.Hour

// PaymentMode selects how a total is settled at checkout.
type PaymentMode string

const (
	ModeFull    PaymentMode = "full"
	ModeCredit  PaymentMode = "credit"
	ModePartial PaymentMode = "partial"
)

// ParseMode accepts the mode names used on the counter ("cash" means full).
func ParseMode(s string) (PaymentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "cash":
		return ModeFull, nil
	case "credit":
		return ModeCredit, nil
	case "partial":
		return ModePartial, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// IsValid reports whether the mode is known.
func (m PaymentMode) IsValid() bool {
	switch m {
	case ModeFull, ModeCredit, ModePartial:
		return true
	default:
		return false
	}
}

// Label is the payment mode text printed on receipts.
func (m PaymentMode) Label() string {
	switch m {
	case ModeFull:
		return "Cash"
	case ModeCredit:
		return "Credit"
	case ModePartial:
		return "Cash / UPI / Credit"
	default:
		return string(m)
	}
}

// PaymentPlan is the settlement of a total at checkout.
// Paid + Pending == Total. DueDate is nil exactly when Pending is zero.
type PaymentPlan struct {
	Mode    PaymentMode `json:"mode"`
	Total   money.Money `json:"total"`
	Paid    money.Money `json:"paid"`
	Pending money.Money `json:"pending"`
	DueDate *time.Time  `json:"due_date,omitempty"`
}

// HasDueDate reports whether an outstanding balance carries a due date.
func (p PaymentPlan) HasDueDate() bool {
	return p.DueDate != nil
}

func (p PaymentPlan) clone() PaymentPlan {
	if p.DueDate != nil {
		due := *p.DueDate
		p.DueDate = &due
	}
	return p
}

// PlanInput collects the values a plan is computed from.
type PlanInput struct {
	Subtotal money.Money
	Discount money.Money
	Mode     PaymentMode
	// Paid is only read for ModePartial.
	Paid     *money.Money
	IssuedAt time.Time
	// Grace falls back to DefaultGracePeriod when zero.
	Grace time.Duration
}

// ComputePlan validates the discount and payment and derives paid, pending and
// the due date.
func ComputePlan(in PlanInput) (PaymentPlan, error) {
	if in.Subtotal.IsNegative() {
		return PaymentPlan{}, fmt.Errorf("%w: negative subtotal", ErrInvalidLine)
	}
	if in.Discount.IsNegative() || in.Discount > in.Subtotal {
		return PaymentPlan{}, fmt.Errorf("%w: discount %s, subtotal %s", ErrInvalidDiscount, in.Discount, in.Subtotal)
	}
	total, err := in.Subtotal.Sub(in.Discount)
	if err != nil {
		return PaymentPlan{}, err
	}

	var paid money.Money
	switch in.Mode {
	case ModeFull:
		paid = total
	case ModeCredit:
		paid = money.Zero
	case ModePartial:
		if in.Paid == nil {
			return PaymentPlan{}, ErrPaidRequired
		}
		if in.Paid.IsNegative() {
			return PaymentPlan{}, fmt.Errorf("%w: paid %s", ErrInvalidAmount, *in.Paid)
		}
		if *in.Paid > total {
			return PaymentPlan{}, fmt.Errorf("%w: paid %s, total %s", ErrPaidExceedsTotal, *in.Paid, total)
		}
		paid = *in.Paid
	default:
		return PaymentPlan{}, fmt.Errorf("%w: %q", ErrInvalidMode, in.Mode)
	}

	pending, err := total.Sub(paid)
	if err != nil {
		return PaymentPlan{}, err
	}
	plan := PaymentPlan{
		Mode:    in.Mode,
		Total:   total,
		Paid:    paid,
		Pending: pending,
	}
	if pending > 0 {
		plan.DueDate = dueDate(in.IssuedAt, in.Grace)
	}
	return plan, nil
}

func dueDate(issuedAt time.Time, grace time.Duration) *time.Time {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	due := issuedAt.Add(grace)
	return &due
}

// ModeForAdvance picks the payment mode implied by an advance taken against a
// total: nothing paid is credit, everything paid is full, anything else partial.
func ModeForAdvance(total, advance money.Money) PaymentMode {
	switch {
	case advance.IsZero():
		return ModeCredit
	case advance == total:
		return ModeFull
	default:
		return ModePartial
	}
}
