package printing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/shopledger/internal/directory"
	"github.com/odyssey-erp/shopledger/internal/journal"
	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/records"
)

// Customers resolves the customer a job is printed for.
type Customers interface {
	Customer(ctx context.Context, id string) (directory.Customer, error)
}

// Service takes and tracks printing jobs.
type Service struct {
	desk      *records.Desk
	jobs      *records.Details[Job]
	customers Customers
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewService constructs the printing service.
func NewService(desk *records.Desk, customers Customers, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		desk:      desk,
		jobs:      records.NewDetails(cloneJob),
		customers: customers,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Desk exposes the job desk for shared record routes.
func (s *Service) Desk() *records.Desk { return s.desk }

// Create records a job. The advance decides the payment mode.
func (s *Service) Create(ctx context.Context, in CreateInput) (View, error) {
	if err := s.validate.Struct(in); err != nil {
		return View{}, err
	}
	customer, err := s.customers.Customer(ctx, in.CustomerID)
	if err != nil {
		return View{}, err
	}
	var delivery *time.Time
	if in.DeliveryDate != "" {
		d, err := time.ParseInLocation(time.DateOnly, in.DeliveryDate, s.desk.Ledger().Now().Location())
		if err != nil {
			return View{}, err
		}
		delivery = &d
	}

	cart := ledger.NewCart()
	line := ledger.Product{ID: "printing", Name: fmt.Sprintf("Saree printing x%d", in.SareeCount), Price: in.TotalCost}
	if err := cart.AddItem(line, 1); err != nil {
		return View{}, err
	}
	mode := ledger.ModeForAdvance(in.TotalCost, in.Advance)
	var paid *money.Money
	if mode == ledger.ModePartial {
		advance := in.Advance
		paid = &advance
	}
	entry, err := s.desk.Finalize(ctx, ledger.FinalizeRequest{
		Cart:         cart,
		Mode:         mode,
		Paid:         paid,
		Counterparty: customer.Counterparty(),
	})
	if err != nil {
		return View{}, err
	}
	job := Job{
		Number:       entry.Record.Number,
		SareeCount:   in.SareeCount,
		DesignNotes:  strings.TrimSpace(in.DesignNotes),
		DeliveryDate: delivery,
		Status:       ledger.PrintJobLifecycle.Initial(),
		UpdatedAt:    entry.Record.CreatedAt,
	}
	if err := s.jobs.Put(job.Number, job); err != nil {
		return View{}, err
	}
	s.logger.Info("printing job created", slog.String("number", job.Number), slog.Int("sarees", job.SareeCount))
	return newView(job, entry, s.desk.Ledger().Now()), nil
}

// Get returns one job.
func (s *Service) Get(ctx context.Context, number string) (View, error) {
	entry, err := s.desk.Get(ctx, number)
	if err != nil {
		return View{}, err
	}
	job, ok := s.jobs.Get(number)
	if !ok {
		return View{}, fmt.Errorf("printing job %s: %w", number, journal.ErrNotFound)
	}
	return newView(job, entry, s.desk.Ledger().Now()), nil
}

// UpdateStatus moves a job along its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, number string, in StatusInput) (View, error) {
	if err := s.validate.Struct(in); err != nil {
		return View{}, err
	}
	to, err := ledger.PrintJobLifecycle.Parse(in.Status)
	if err != nil {
		return View{}, err
	}
	now := s.desk.Ledger().Now()
	job, err := s.jobs.Update(number, func(j *Job) error {
		next, err := ledger.PrintJobLifecycle.Transition(j.Status, to)
		if err != nil {
			return err
		}
		j.Status = next
		j.UpdatedAt = now
		return nil
	})
	if err != nil {
		return View{}, err
	}
	if job.Status == ledger.JobCancelled {
		if err := s.desk.Close(ctx, number); err != nil {
			return View{}, err
		}
	}
	entry, err := s.desk.Get(ctx, number)
	if err != nil {
		return View{}, err
	}
	s.logger.Info("printing job status changed", slog.String("number", number), slog.String("status", string(job.Status)))
	return newView(job, entry, now), nil
}

// Board lists jobs, newest first, optionally narrowed to one status.
func (s *Service) Board(ctx context.Context, status ledger.Status) (Board, error) {
	entries, err := s.desk.List(ctx, journal.Filter{})
	if err != nil {
		return Board{}, err
	}
	now := s.desk.Ledger().Now()
	board := Board{Jobs: make([]View, 0, len(entries))}
	for _, e := range entries {
		job, ok := s.jobs.Get(e.Record.Number)
		if !ok {
			continue
		}
		if status != "" && job.Status != status {
			continue
		}
		v := newView(job, e, now)
		board.Jobs = append(board.Jobs, v)
		switch job.Status {
		case ledger.JobPending, ledger.JobInProgress:
			board.Open++
		case ledger.JobDelivered:
			board.Delivered++
		}
		if v.Late {
			board.Late++
		}
		if job.Status != ledger.JobCancelled {
			board.Pending = board.Pending.Add(e.Balance.Pending)
		}
	}
	return board, nil
}
