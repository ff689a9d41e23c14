package production

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/shopledger/internal/shared"
)

// Repository defines persistence for production entries and rolling batches.
type Repository interface {
	AddEntry(ctx context.Context, e Entry) error
	Entries(ctx context.Context, query, day string) ([]Entry, error)
	AddBatch(ctx context.Context, b Batch) error
	Batches(ctx context.Context) ([]Batch, error)
	UpdateBatches(ctx context.Context, fn func([]Batch) error) error
}

// Service records production and rolling.
type Service struct {
	repo     Repository
	now      func() time.Time
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService constructs the production service. now supplies the shop-local
// time that dates entries and batches.
func NewService(repo Repository, now func() time.Time, logger *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, now: now, validate: validator.New(), logger: logger}
}

// Today is the current shop-local day.
func (s *Service) Today() string {
	return s.now().Format(dayLayout)
}

// AddEntry records a day's production of one design.
func (s *Service) AddEntry(ctx context.Context, in EntryInput) (Entry, error) {
	if err := s.validate.Struct(in); err != nil {
		return Entry{}, err
	}
	now := s.now()
	day := in.Date
	if day == "" {
		day = now.Format(dayLayout)
	}
	e := Entry{
		ID:         uuid.New(),
		Day:        day,
		Type:       in.Type,
		DesignName: strings.TrimSpace(in.DesignName),
		Quantity:   in.Quantity,
		CreatedAt:  now,
	}
	if err := s.repo.AddEntry(ctx, e); err != nil {
		return Entry{}, fmt.Errorf("add production: %w", err)
	}
	s.logger.Info("production recorded",
		slog.String("day", e.Day),
		slog.String("type", string(e.Type)),
		slog.Int("quantity", e.Quantity))
	return e, nil
}

// Entries lists production whose design name contains query, on day when set.
func (s *Service) Entries(ctx context.Context, query, day string) ([]Entry, error) {
	if day != "" {
		if _, err := time.Parse(dayLayout, day); err != nil {
			return nil, fmt.Errorf("%w: date %q", shared.ErrInvalidInput, day)
		}
	}
	entries, err := s.repo.Entries(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("list production: %w", err)
	}
	return entries, nil
}

// Roll sends sarees out for rolling as a new batch, or receives them back.
func (s *Service) Roll(ctx context.Context, in RollingInput) (Receipt, error) {
	if err := s.validate.Struct(in); err != nil {
		return Receipt{}, err
	}
	if in.Action == ActionSend {
		b, err := s.send(ctx, in.Quantity)
		if err != nil {
			return Receipt{}, err
		}
		return Receipt{Quantity: in.Quantity, Batches: []Batch{b}}, nil
	}
	return s.receive(ctx, in)
}

func (s *Service) send(ctx context.Context, qty int) (Batch, error) {
	now := s.now()
	b := Batch{ID: uuid.New(), Day: now.Format(dayLayout), Sent: qty, UpdatedAt: now}
	if err := s.repo.AddBatch(ctx, b); err != nil {
		return Batch{}, fmt.Errorf("send for rolling: %w", err)
	}
	s.logger.Info("sent for rolling", slog.String("batch", b.ID.String()), slog.Int("quantity", qty))
	return b.withPending(), nil
}

func (s *Service) receive(ctx context.Context, in RollingInput) (Receipt, error) {
	var target uuid.UUID
	if in.BatchID != "" {
		id, err := uuid.Parse(in.BatchID)
		if err != nil {
			return Receipt{}, fmt.Errorf("%w: batch id %q", shared.ErrInvalidInput, in.BatchID)
		}
		target = id
	}
	now := s.now()
	out := Receipt{Quantity: in.Quantity}
	err := s.repo.UpdateBatches(ctx, func(batches []Batch) error {
		if target == uuid.Nil {
			atRolling := 0
			for _, b := range batches {
				atRolling += b.Outstanding()
			}
			if in.Quantity > atRolling {
				return fmt.Errorf("%w: %d received, %d at rolling", ErrOverReceive, in.Quantity, atRolling)
			}
			out.Batches = allocate(batches, in.Quantity, now)
			return nil
		}
		i := batchIndex(batches, target)
		if i < 0 {
			return fmt.Errorf("batch %s: %w", target, shared.ErrNotFound)
		}
		if in.Quantity > batches[i].Outstanding() {
			return fmt.Errorf("%w: %d received, %d out in batch %s", ErrOverReceive, in.Quantity, batches[i].Outstanding(), target)
		}
		out.Batches = allocate(batches[i:i+1], in.Quantity, now)
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}
	s.logger.Info("received from rolling", slog.Int("quantity", in.Quantity), slog.Int("batches", len(out.Batches)))
	return out, nil
}

// allocate returns qty sarees to batches oldest first and reports the batches
// it touched.
func allocate(batches []Batch, qty int, now time.Time) []Batch {
	var touched []Batch
	for i := range batches {
		if qty == 0 {
			break
		}
		take := min(qty, batches[i].Outstanding())
		if take == 0 {
			continue
		}
		batches[i].Returned += take
		batches[i].UpdatedAt = now
		touched = append(touched, batches[i].withPending())
		qty -= take
	}
	return touched
}

// Batches lists rolling batches, newest first.
func (s *Service) Batches(ctx context.Context) ([]Batch, error) {
	batches, err := s.repo.Batches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rolling: %w", err)
	}
	for i := range batches {
		batches[i] = batches[i].withPending()
	}
	return batches, nil
}

// Summary totals one day's production and everything still at rolling. An
// empty day means today.
func (s *Service) Summary(ctx context.Context, day string) (Summary, error) {
	if day == "" {
		day = s.Today()
	}
	entries, err := s.Entries(ctx, "", day)
	if err != nil {
		return Summary{}, err
	}
	batches, err := s.Batches(ctx)
	if err != nil {
		return Summary{}, err
	}
	out := Summary{Day: day}
	for _, e := range entries {
		switch e.Type {
		case TypeSaree:
			out.Sarees += e.Quantity
		case TypeDress:
			out.Dresses += e.Quantity
		}
	}
	for _, b := range batches {
		if b.Pending > 0 {
			out.AtRolling += b.Pending
			out.OpenBatches++
		}
	}
	return out, nil
}
