package orders

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/shopledger/internal/catalog"
	"github.com/odyssey-erp/shopledger/internal/directory"
	"github.com/odyssey-erp/shopledger/internal/journal"
	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/records"
)

// Catalog prices lines that name a product.
type Catalog interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
}

// Customers resolves registered customers.
type Customers interface {
	Customer(ctx context.Context, id string) (directory.Customer, error)
}

// NumberFunc numbers orders {prefix}{YYMMDD}-{n:04d}, where n counts the
// orders already in store for the same day. Callers must serialise
// finalize-and-save, as Service.Create does.
func NumberFunc(prefix string, store *journal.Store) ledger.NumberFunc {
	return func(_ int64, at time.Time) string {
		return ledger.OrderNumber(prefix, at, ledger.NextDailySequence(at, store.CreatedOn(ledger.KindOrder)))
	}
}

// Service takes and tracks WhatsApp orders.
type Service struct {
	desk      *records.Desk
	repo      Repository
	catalog   Catalog
	customers Customers
	epoch     time.Time
	validate  *validator.Validate
	logger    *slog.Logger

	// create serialises numbering, which depends on the orders stored so far.
	create sync.Mutex
}

// NewService constructs the order service. epoch is day 1 of the day count.
func NewService(desk *records.Desk, repo Repository, cat Catalog, customers Customers, epoch time.Time, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		desk:      desk,
		repo:      repo,
		catalog:   cat,
		customers: customers,
		epoch:     epoch,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Desk exposes the order desk for shared record routes.
func (s *Service) Desk() *records.Desk { return s.desk }

// Create finalizes an order. The advance decides the payment mode: none is
// credit, all of it is full and anything in between is partial.
func (s *Service) Create(ctx context.Context, in CreateInput) (View, error) {
	if err := s.validate.Struct(in); err != nil {
		return View{}, err
	}
	cp, err := s.counterparty(ctx, in)
	if err != nil {
		return View{}, err
	}
	cart, err := s.cart(ctx, in.Items)
	if err != nil {
		return View{}, err
	}
	total := cart.Subtotal()
	mode := ledger.ModeForAdvance(total, in.Advance)
	var paid *money.Money
	if mode == ledger.ModePartial {
		advance := in.Advance
		paid = &advance
	}

	s.create.Lock()
	defer s.create.Unlock()
	entry, err := s.desk.Finalize(ctx, ledger.FinalizeRequest{
		Cart:         cart,
		Mode:         mode,
		Paid:         paid,
		Counterparty: cp,
	})
	if err != nil {
		return View{}, err
	}
	order := Order{
		Number:          entry.Record.Number,
		DayNumber:       ledger.DayNumber(s.epoch, entry.Record.CreatedAt),
		Status:          ledger.OrderLifecycle.Initial(),
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		Notes:           strings.TrimSpace(in.Notes),
		UpdatedAt:       entry.Record.CreatedAt,
	}
	if err := s.repo.Put(ctx, order); err != nil {
		return View{}, fmt.Errorf("store order: %w", err)
	}
	s.logger.Info("whatsapp order taken", slog.String("number", order.Number), slog.Int("day", order.DayNumber))
	return newView(order, entry), nil
}

func (s *Service) counterparty(ctx context.Context, in CreateInput) (ledger.Counterparty, error) {
	if in.CustomerID != "" {
		c, err := s.customers.Customer(ctx, in.CustomerID)
		if err != nil {
			return ledger.Counterparty{}, err
		}
		return c.Counterparty(), nil
	}
	phone := strings.TrimSpace(in.CustomerPhone)
	id := "wa:" + phone
	if phone == "" {
		id = "wa:" + strings.ToLower(strings.Join(strings.Fields(in.CustomerName), "-"))
	}
	return ledger.Counterparty{
		Type:  ledger.PartyCustomer,
		ID:    id,
		Name:  strings.TrimSpace(in.CustomerName),
		Phone: phone,
	}, nil
}

func (s *Service) cart(ctx context.Context, items []ItemInput) (*ledger.Cart, error) {
	cart := ledger.NewCart()
	for i, it := range items {
		p := ledger.Product{ID: fmt.Sprintf("line-%d", i+1), Name: strings.TrimSpace(it.Name), Price: it.Price}
		if it.ProductID != "" && s.catalog != nil {
			prod, err := s.catalog.Get(ctx, it.ProductID)
			if err != nil {
				return nil, err
			}
			p = prod.LedgerProduct()
		}
		if err := cart.AddItem(p, it.Quantity); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, number string) (View, error) {
	entry, err := s.desk.Get(ctx, number)
	if err != nil {
		return View{}, err
	}
	order, ok, err := s.repo.Get(ctx, number)
	if err != nil {
		return View{}, err
	}
	if !ok {
		return View{}, fmt.Errorf("order %s: %w", number, journal.ErrNotFound)
	}
	return newView(order, entry), nil
}

// UpdateStatus moves an order along its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, number string, in StatusInput) (View, error) {
	if err := s.validate.Struct(in); err != nil {
		return View{}, err
	}
	to, err := ledger.OrderLifecycle.Parse(in.Status)
	if err != nil {
		return View{}, err
	}
	now := s.desk.Ledger().Now()
	order, err := s.repo.Update(ctx, number, func(o *Order) error {
		next, err := ledger.OrderLifecycle.Transition(o.Status, to)
		if err != nil {
			return err
		}
		o.History = append(o.History, StatusChange{From: o.Status, To: next, At: now})
		o.Status = next
		o.UpdatedAt = now
		return nil
	})
	if err != nil {
		return View{}, err
	}
	if order.Status == ledger.OrderCancelled {
		if err := s.desk.Close(ctx, number); err != nil {
			return View{}, err
		}
	}
	entry, err := s.desk.Get(ctx, number)
	if err != nil {
		return View{}, err
	}
	s.logger.Info("order status changed", slog.String("number", number), slog.String("status", string(order.Status)))
	return newView(order, entry), nil
}

// List groups matching orders by day, latest day first, and totals them.
func (s *Service) List(ctx context.Context, q ListQuery) (ListResult, error) {
	entries, err := s.desk.List(ctx, journal.Filter{})
	if err != nil {
		return ListResult{}, err
	}
	query := strings.ToLower(strings.TrimSpace(q.Query))
	groups := make(map[int]*DayGroup)
	var res ListResult
	for _, e := range entries {
		order, ok, err := s.repo.Get(ctx, e.Record.Number)
		if err != nil {
			return ListResult{}, err
		}
		if !ok {
			continue
		}
		if q.Day > 0 && order.DayNumber != q.Day {
			continue
		}
		if q.Status != "" && order.Status != q.Status {
			continue
		}
		if query != "" && !matches(query, order, e.Record) {
			continue
		}
		g, ok := groups[order.DayNumber]
		if !ok {
			g = &DayGroup{Day: order.DayNumber, Date: e.Record.CreatedAt.Format(time.DateOnly)}
			groups[order.DayNumber] = g
		}
		g.Orders = append(g.Orders, newView(order, e))
		res.Summary.add(order, e)
	}
	res.Days = make([]DayGroup, 0, len(groups))
	for _, g := range groups {
		res.Days = append(res.Days, *g)
	}
	sort.Slice(res.Days, func(i, j int) bool { return res.Days[i].Day > res.Days[j].Day })
	return res, nil
}

func matches(query string, o Order, rec *ledger.Record) bool {
	return strings.Contains(strings.ToLower(o.Number), query) ||
		strings.Contains(strings.ToLower(rec.Counterparty.Name), query) ||
		strings.Contains(rec.Counterparty.Phone, query)
}

func (s *Summary) add(o Order, e records.Entry) {
	s.Orders++
	switch o.Status {
	case ledger.OrderDelivered:
		s.Delivered++
	case ledger.OrderCancelled:
		s.Cancelled++
		return
	}
	s.Total = s.Total.Add(e.Balance.Total)
	s.Advance = s.Advance.Add(e.Record.Plan.Paid)
	s.Pending = s.Pending.Add(e.Balance.Pending)
}
