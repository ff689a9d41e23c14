// Package printing tracks saree printing jobs taken against an advance.
package printing

import (
	"time"

	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/records"
)

// Job is a printing order.
type Job struct {
	Number       string        `json:"number"`
	SareeCount   int           `json:"saree_count"`
	DesignNotes  string        `json:"design_notes,omitempty"`
	DeliveryDate *time.Time    `json:"delivery_date,omitempty"`
	Status       ledger.Status `json:"status"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func cloneJob(j Job) Job {
	if j.DeliveryDate != nil {
		d := *j.DeliveryDate
		j.DeliveryDate = &d
	}
	return j
}

// View joins a job with its ledger record.
type View struct {
	Job      Job                   `json:"job"`
	Record   *ledger.Record        `json:"record"`
	Balance  ledger.Balance        `json:"balance"`
	Next     []ledger.Status       `json:"next_statuses"`
	Late     bool                  `json:"late"`
	Payments []ledger.PaymentEvent `json:"payments,omitempty"`
	ClosedAt *time.Time            `json:"closed_at,omitempty"`
}

func newView(j Job, e records.Entry, now time.Time) View {
	return View{
		Job:      j,
		Record:   e.Record,
		Balance:  e.Balance,
		Next:     ledger.PrintJobLifecycle.Next(j.Status),
		Late:     isLate(j, now),
		Payments: e.Payments,
		ClosedAt: e.ClosedAt,
	}
}

// isLate reports an unfinished job whose delivery date has passed.
func isLate(j Job, now time.Time) bool {
	if j.DeliveryDate == nil || ledger.PrintJobLifecycle.IsTerminal(j.Status) || j.Status == ledger.JobCompleted {
		return false
	}
	return now.After(j.DeliveryDate.AddDate(0, 0, 1))
}

// CreateInput takes a printing job.
type CreateInput struct {
	CustomerID   string      `json:"customer_id" validate:"required"`
	SareeCount   int         `json:"saree_count" validate:"gt=0,lte=10000"`
	DesignNotes  string      `json:"design_notes" validate:"max=1000"`
	DeliveryDate string      `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
	TotalCost    money.Money `json:"total_cost" validate:"gt=0"`
	Advance      money.Money `json:"advance" validate:"gte=0"`
}

// StatusInput moves a job to Status.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

// Board lists jobs with the counts shown on the printing desk.
type Board struct {
	Jobs      []View      `json:"jobs"`
	Open      int         `json:"open"`
	Late      int         `json:"late"`
	Delivered int         `json:"delivered"`
	Pending   money.Money `json:"pending"`
}
