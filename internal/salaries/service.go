package salaries

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/shopledger/internal/directory"
	"github.com/odyssey-erp/shopledger/internal/journal"
	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/records"
)

// Staff resolves employees and their monthly salary.
type Staff interface {
	StaffMember(ctx context.Context, id string) (directory.Staff, error)
	Staff(ctx context.Context, query string) ([]directory.Staff, error)
}

// Service manages monthly salary records.
type Service struct {
	desk     *records.Desk
	salaries *records.Details[Salary]
	staff    Staff
	validate *validator.Validate
	logger   *slog.Logger

	// open serialises the find-or-create of a period record.
	open sync.Mutex
}

// NewService constructs the salary service.
func NewService(desk *records.Desk, staff Staff, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		desk:     desk,
		salaries: records.NewDetails(cloneSalary),
		staff:    staff,
		validate: validator.New(),
		logger:   logger,
	}
}

// Desk exposes the salary desk.
func (s *Service) Desk() *records.Desk { return s.desk }

// Open returns the salary record of staffID for p, creating it on credit for
// the current monthly salary when it does not exist.
func (s *Service) Open(ctx context.Context, staffID string, p Period) (View, error) {
	s.open.Lock()
	defer s.open.Unlock()
	if number, ok := s.find(staffID, p); ok {
		return s.Get(ctx, number)
	}
	member, err := s.staff.StaffMember(ctx, staffID)
	if err != nil {
		return View{}, err
	}
	cart := ledger.NewCart()
	line := ledger.Product{ID: "salary", Name: "Salary " + p.String(), Price: member.MonthlySalary}
	if err := cart.AddItem(line, 1); err != nil {
		return View{}, err
	}
	entry, err := s.desk.Finalize(ctx, ledger.FinalizeRequest{
		Cart:         cart,
		Mode:         ledger.ModeCredit,
		Counterparty: member.Counterparty(),
	})
	if err != nil {
		return View{}, err
	}
	sal := Salary{Number: entry.Record.Number, StaffID: member.ID, Period: p}
	if err := s.salaries.Put(sal.Number, sal); err != nil {
		return View{}, err
	}
	s.logger.Info("salary opened", slog.String("number", sal.Number), slog.String("staff_id", member.ID), slog.String("period", p.String()))
	return View{Salary: sal, Record: entry.Record, Balance: entry.Balance}, nil
}

func (s *Service) find(staffID string, p Period) (string, bool) {
	return s.salaries.Find(func(sal Salary) bool { return sal.StaffID == staffID && sal.Period == p })
}

// Pay records a payout. The month is opened first if needed; paying more
// than is pending is rejected.
func (s *Service) Pay(ctx context.Context, in PayInput) (View, ledger.PaymentEvent, error) {
	if err := s.validate.Struct(in); err != nil {
		return View{}, ledger.PaymentEvent{}, err
	}
	p, err := ParsePeriod(in.Month, in.Year)
	if err != nil {
		return View{}, ledger.PaymentEvent{}, err
	}
	opened, err := s.Open(ctx, in.StaffID, p)
	if err != nil {
		return View{}, ledger.PaymentEvent{}, err
	}
	return s.payRecord(ctx, opened.Salary.Number, in.Amount, in.Notes)
}

func (s *Service) payRecord(ctx context.Context, number string, amount money.Money, notes string) (View, ledger.PaymentEvent, error) {
	_, ev, err := s.desk.Pay(ctx, number, amount, notes)
	if err != nil {
		return View{}, ledger.PaymentEvent{}, err
	}
	if _, err := s.salaries.Update(number, func(sal *Salary) error {
		at := ev.AppliedAt
		sal.PaymentDate = &at
		if note := strings.TrimSpace(notes); note != "" {
			sal.Notes = note
		}
		return nil
	}); err != nil {
		return View{}, ledger.PaymentEvent{}, err
	}
	v, err := s.Get(ctx, number)
	return v, ev, err
}

// Get returns one salary record with its payments.
func (s *Service) Get(ctx context.Context, number string) (View, error) {
	entry, err := s.desk.Get(ctx, number)
	if err != nil {
		return View{}, err
	}
	sal, ok := s.salaries.Get(number)
	if !ok {
		return View{}, fmt.Errorf("salary %s: %w", number, journal.ErrNotFound)
	}
	return View{Salary: sal, Record: entry.Record, Balance: entry.Balance, Payments: entry.Payments}, nil
}

// Sheet lists every staff member for p. Staff without a record yet are
// pending for their full monthly salary.
func (s *Service) Sheet(ctx context.Context, p Period, query string) (Sheet, error) {
	staff, err := s.staff.Staff(ctx, query)
	if err != nil {
		return Sheet{}, err
	}
	sheet := Sheet{Period: p, Rows: make([]Row, 0, len(staff))}
	for _, member := range staff {
		row := Row{Staff: member, Status: ledger.PaymentPending, Pending: member.MonthlySalary}
		payroll := member.MonthlySalary
		if number, ok := s.find(member.ID, p); ok {
			v, err := s.Get(ctx, number)
			if err != nil {
				return Sheet{}, err
			}
			sal := v.Salary
			row.Salary = &sal
			row.Status = v.Balance.Status
			row.Paid = v.Balance.Paid
			row.Pending = v.Balance.Pending
			payroll = v.Balance.Total
		}
		sheet.Payroll = sheet.Payroll.Add(payroll)
		sheet.Paid = sheet.Paid.Add(row.Paid)
		sheet.Pending = sheet.Pending.Add(row.Pending)
		switch row.Status {
		case ledger.PaymentPaid:
			sheet.Counts.Paid++
		case ledger.PaymentPartial:
			sheet.Counts.Partial++
		default:
			sheet.Counts.Pending++
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}
