// Package salaries keeps one ledger record per staff member and month. The
// record is opened on credit for the monthly salary and each payout is a
// payment event against it.
package salaries

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/odyssey-erp/shopledger/internal/directory"
	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
)

// ErrInvalidPeriod rejects an unknown month or year.
var ErrInvalidPeriod = fmt.Errorf("%w: invalid salary period", ledger.ErrInvalidLine)

// Period is a salary month.
type Period struct {
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
}

// ParsePeriod accepts a month name ("January", "jan") or number with a year.
func ParsePeriod(month string, year int) (Period, error) {
	if year < 2000 || year > 2100 {
		return Period{}, fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	month = strings.TrimSpace(month)
	if n, err := strconv.Atoi(month); err == nil {
		if n < 1 || n > 12 {
			return Period{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, n)
		}
		return Period{Month: time.Month(n), Year: year}, nil
	}
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(month, name) || (len(month) == 3 && strings.EqualFold(month, name[:3])) {
			return Period{Month: m, Year: year}, nil
		}
	}
	return Period{}, fmt.Errorf("%w: month %q", ErrInvalidPeriod, month)
}

// String renders "January 2024".
func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}

// Salary is the salary record of one staff member for one period.
type Salary struct {
	Number      string     `json:"number"`
	StaffID     string     `json:"staff_id"`
	Period      Period     `json:"period"`
	Notes       string     `json:"notes,omitempty"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
}

func cloneSalary(s Salary) Salary {
	if s.PaymentDate != nil {
		d := *s.PaymentDate
		s.PaymentDate = &d
	}
	return s
}

// View joins a salary with its ledger record.
type View struct {
	Salary   Salary                `json:"salary"`
	Record   *ledger.Record        `json:"record"`
	Balance  ledger.Balance        `json:"balance"`
	Payments []ledger.PaymentEvent `json:"payments,omitempty"`
}

// PayInput pays out part or all of a month's salary.
type PayInput struct {
	StaffID string      `json:"staff_id" validate:"required"`
	Month   string      `json:"month" validate:"required"`
	Year    int         `json:"year" validate:"required"`
	Amount  money.Money `json:"amount" validate:"gt=0"`
	Notes   string      `json:"notes" validate:"max=200"`
}

// Row is one staff member on the monthly sheet. Salary is nil until the
// month has been opened for them.
type Row struct {
	Staff   directory.Staff      `json:"staff"`
	Salary  *Salary              `json:"salary,omitempty"`
	Status  ledger.PaymentStatus `json:"status"`
	Paid    money.Money          `json:"paid"`
	Pending money.Money          `json:"pending"`
}

// Sheet is the payroll for one period.
type Sheet struct {
	Period  Period      `json:"period"`
	Rows    []Row       `json:"rows"`
	Payroll money.Money `json:"payroll"`
	Paid    money.Money `json:"paid"`
	Pending money.Money `json:"pending"`
	Counts  struct {
		Paid    int `json:"paid"`
		Partial int `json:"partial"`
		Pending int `json:"pending"`
	} `json:"counts"`
}
