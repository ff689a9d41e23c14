package records

import (
	"context"
	"time"

	"github.com/odyssey-erp/shopledger/internal/journal"
	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
)

// Aging sums pending balances by how long they are past due.
type Aging struct {
	Current money.Money `json:"current"`
	Days30  money.Money `json:"days_1_30"`
	Days60  money.Money `json:"days_31_60"`
	Days90  money.Money `json:"days_61_90"`
	Over90  money.Money `json:"over_90"`
	Total   money.Money `json:"total"`
	Overdue int         `json:"overdue_records"`
	Open    int         `json:"open_records"`
	AsOf    time.Time   `json:"as_of"`
}

// Aging buckets every outstanding record as of asOf by calendar days past due.
// Closed records are left out.
func (d *Desk) Aging(ctx context.Context, asOf time.Time) (Aging, error) {
	if asOf.IsZero() {
		asOf = d.ledger.Now()
	}
	entries, err := d.List(ctx, journal.Filter{Outstanding: true})
	if err != nil {
		return Aging{}, err
	}
	out := Aging{AsOf: asOf}
	for _, e := range entries {
		pending := e.Balance.Pending
		out.Open++
		out.Total = out.Total.Add(pending)
		days := 0
		if e.Balance.DueDate != nil {
			days = ledger.DaysPastDue(*e.Balance.DueDate, asOf)
		}
		if e.Balance.Overdue(asOf) {
			out.Overdue++
		}
		switch {
		case days <= 0:
			out.Current = out.Current.Add(pending)
		case days <= 30:
			out.Days30 = out.Days30.Add(pending)
		case days <= 60:
			out.Days60 = out.Days60.Add(pending)
		case days <= 90:
			out.Days90 = out.Days90.Add(pending)
		default:
			out.Over90 = out.Over90.Add(pending)
		}
	}
	return out, nil
}
