package courier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/shopledger/internal/directory"
	"github.com/odyssey-erp/shopledger/internal/journal"
	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/records"
)

// ErrInvalidWeight rejects a booking without a positive weight.
var ErrInvalidWeight = fmt.Errorf("%w: weight must be positive", ledger.ErrInvalidLine)

// Customers resolves the sender.
type Customers interface {
	Customer(ctx context.Context, id string) (directory.Customer, error)
}

// Service books and tracks shipments.
type Service struct {
	desk      *records.Desk
	shipments *records.Details[Shipment]
	customers Customers
	validate  *validator.Validate
	logger    *slog.Logger

	book sync.Mutex
}

// NewService constructs the courier service.
func NewService(desk *records.Desk, customers Customers, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		desk:      desk,
		shipments: records.NewDetails[Shipment](nil),
		customers: customers,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Desk exposes the shipment desk for shared record routes.
func (s *Service) Desk() *records.Desk { return s.desk }

// Book records a shipment. The AWB must not have been booked before.
func (s *Service) Book(ctx context.Context, in BookInput) (View, error) {
	if err := s.validate.Struct(in); err != nil {
		return View{}, err
	}
	if !in.WeightKg.IsPositive() {
		return View{}, ErrInvalidWeight
	}
	customer, err := s.customers.Customer(ctx, in.CustomerID)
	if err != nil {
		return View{}, err
	}

	cart := ledger.NewCart()
	if err := cart.AddItem(ledger.Product{ID: "charges", Name: "DTDC charges", Price: in.Charges}, 1); err != nil {
		return View{}, err
	}
	if in.GST > 0 {
		if err := cart.AddItem(ledger.Product{ID: "gst", Name: "GST", Price: in.GST}, 1); err != nil {
			return View{}, err
		}
	}
	total := cart.Subtotal()
	mode, paid := planFor(in.PaymentMode, total, in.Paid)

	awb := strings.ToUpper(strings.TrimSpace(in.AWB))
	s.book.Lock()
	defer s.book.Unlock()
	if number, taken := s.shipments.Find(func(sh Shipment) bool { return sh.AWB == awb }); taken {
		return View{}, fmt.Errorf("awb %s already booked on %s: %w", awb, number, journal.ErrDuplicate)
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

	booked := entry.Record.CreatedAt
	if in.BookingDate != "" {
		if d, err := time.ParseInLocation(time.DateOnly, in.BookingDate, booked.Location()); err == nil {
			booked = d
		}
	}
	origin := strings.TrimSpace(in.From)
	if origin == "" {
		origin = DefaultOrigin
	}
	delivery := in.DeliveryType
	if delivery == "" {
		delivery = DeliverySurface
	}
	sh := Shipment{
		Number:       entry.Record.Number,
		AWB:          awb,
		BookingDate:  booked,
		DeliveryType: delivery,
		From:         origin,
		To:           strings.TrimSpace(in.To),
		WeightKg:     in.WeightKg,
		Charges:      in.Charges,
		GST:          in.GST,
		Status:       ledger.ShipmentLifecycle.Initial(),
		UpdatedAt:    entry.Record.CreatedAt,
	}
	if err := s.shipments.Put(sh.Number, sh); err != nil {
		return View{}, err
	}
	s.logger.Info("shipment booked", slog.String("number", sh.Number), slog.String("awb", awb), slog.String("to", sh.To))
	return newView(sh, entry), nil
}

// planFor maps the counter payment modes onto a ledger plan.
func planFor(mode string, total, paid money.Money) (ledger.PaymentMode, *money.Money) {
	switch mode {
	case "cash", "online":
		return ledger.ModeFull, nil
	}
	m := ledger.ModeForAdvance(total, paid)
	if m == ledger.ModePartial {
		return m, &paid
	}
	return m, nil
}

// Get returns one shipment.
func (s *Service) Get(ctx context.Context, number string) (View, error) {
	entry, err := s.desk.Get(ctx, number)
	if err != nil {
		return View{}, err
	}
	sh, ok := s.shipments.Get(number)
	if !ok {
		return View{}, fmt.Errorf("shipment %s: %w", number, journal.ErrNotFound)
	}
	return newView(sh, entry), nil
}

// Track finds a shipment by AWB.
func (s *Service) Track(ctx context.Context, awb string) (View, error) {
	awb = strings.ToUpper(strings.TrimSpace(awb))
	number, ok := s.shipments.Find(func(sh Shipment) bool { return sh.AWB == awb })
	if !ok {
		return View{}, fmt.Errorf("awb %s: %w", awb, journal.ErrNotFound)
	}
	return s.Get(ctx, number)
}

// List returns shipments, newest first, optionally narrowed by status or a
// search over AWB, customer and destination.
func (s *Service) List(ctx context.Context, status ledger.Status, query string) ([]View, error) {
	entries, err := s.desk.List(ctx, journal.Filter{})
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]View, 0, len(entries))
	for _, e := range entries {
		sh, ok := s.shipments.Get(e.Record.Number)
		if !ok {
			continue
		}
		if status != "" && sh.Status != status {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(sh.AWB), query) &&
			!strings.Contains(strings.ToLower(sh.To), query) &&
			!strings.Contains(strings.ToLower(e.Record.Counterparty.Name), query) {
			continue
		}
		out = append(out, newView(sh, e))
	}
	return out, nil
}

// UpdateStatus moves a shipment along its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, number string, in StatusInput) (View, error) {
	if err := s.validate.Struct(in); err != nil {
		return View{}, err
	}
	to, err := ledger.ShipmentLifecycle.Parse(in.Status)
	if err != nil {
		return View{}, err
	}
	now := s.desk.Ledger().Now()
	sh, err := s.shipments.Update(number, func(sh *Shipment) error {
		next, err := ledger.ShipmentLifecycle.Transition(sh.Status, to)
		if err != nil {
			return err
		}
		sh.Status = next
		sh.UpdatedAt = now
		return nil
	})
	if err != nil {
		if errors.Is(err, journal.ErrNotFound) {
			return View{}, fmt.Errorf("shipment %s: %w", number, journal.ErrNotFound)
		}
		return View{}, err
	}
	if sh.Status == ledger.ShipmentCancelled {
		if err := s.desk.Close(ctx, number); err != nil {
			return View{}, err
		}
	}
	entry, err := s.desk.Get(ctx, number)
	if err != nil {
		return View{}, err
	}
	return newView(sh, entry), nil
}
