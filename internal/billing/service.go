package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/shopledger/internal/catalog"
	"github.com/odyssey-erp/shopledger/internal/directory"
	"github.com/odyssey-erp/shopledger/internal/journal"
	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/records"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

const idempotencyModule = "billing.checkout"

// Catalog prices cart lines.
type Catalog interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
}

// Customers resolves buyers and tracks their outstanding credit.
type Customers interface {
	Customer(ctx context.Context, id string) (directory.Customer, error)
	AddCredit(ctx context.Context, id string, amount money.Money) (directory.Customer, error)
	SettleCredit(ctx context.Context, id string, amount money.Money) (directory.Customer, error)
}

// Service orchestrates the counter flow.
type Service struct {
	desk      *records.Desk
	catalog   Catalog
	customers Customers
	carts     *CartStore
	idem      shared.IdempotencyStore
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewService constructs the billing service. idem may be nil, in which case
// Idempotency-Key headers are ignored.
func NewService(desk *records.Desk, cat Catalog, customers Customers, carts *CartStore, idem shared.IdempotencyStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if carts == nil {
		carts = NewCartStore()
	}
	return &Service{
		desk:      desk,
		catalog:   cat,
		customers: customers,
		carts:     carts,
		idem:      idem,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Desk exposes the bill desk for shared record routes.
func (s *Service) Desk() *records.Desk { return s.desk }

// CreateCart opens an empty cart.
func (s *Service) CreateCart(context.Context) CartView {
	return s.carts.Create()
}

// Cart returns a cart snapshot.
func (s *Service) Cart(_ context.Context, id string) (CartView, error) {
	return s.carts.Get(id)
}

// AddToCart prices a product from the catalog and adds it to a cart.
func (s *Service) AddToCart(ctx context.Context, cartID string, in ItemInput) (CartView, error) {
	if err := s.validate.Struct(in); err != nil {
		return CartView{}, err
	}
	p, err := s.catalog.Get(ctx, in.ProductID)
	if err != nil {
		return CartView{}, err
	}
	return s.carts.Add(cartID, p.LedgerProduct(), in.Quantity)
}

// ChangeQuantity adjusts a cart row.
func (s *Service) ChangeQuantity(_ context.Context, cartID, productID string, in ChangeInput) (CartView, error) {
	if err := s.validate.Struct(in); err != nil {
		return CartView{}, err
	}
	return s.carts.Change(cartID, productID, in.Delta)
}

// RemoveFromCart drops a cart row.
func (s *Service) RemoveFromCart(_ context.Context, cartID, productID string) (CartView, error) {
	return s.carts.Remove(cartID, productID)
}

// DiscardCart deletes a cart.
func (s *Service) DiscardCart(_ context.Context, cartID string) error {
	return s.carts.Delete(cartID)
}

// Checkout finalizes a bill. A non-empty key makes the call idempotent: a
// repeated key returns the bill created first and replayed is true.
func (s *Service) Checkout(ctx context.Context, key string, in CheckoutInput) (entry records.Entry, replayed bool, err error) {
	if err := s.validate.Struct(in); err != nil {
		return records.Entry{}, false, err
	}
	if key != "" && s.idem != nil {
		if err := s.idem.Claim(ctx, key, idempotencyModule); err != nil {
			if !errors.Is(err, shared.ErrIdempotencyConflict) {
				return records.Entry{}, false, fmt.Errorf("claim idempotency key: %w", err)
			}
			return s.replay(ctx, key)
		}
		defer func() {
			if err == nil {
				if cerr := s.idem.Complete(ctx, key, idempotencyModule, entry.Record.Number); cerr != nil {
					s.logger.Warn("idempotency complete failed", slog.String("number", entry.Record.Number), slog.Any("error", cerr))
				}
				return
			}
			if rerr := s.idem.Release(ctx, key, idempotencyModule); rerr != nil {
				s.logger.Warn("idempotency release failed", slog.Any("error", rerr))
			}
		}()
	}

	entry, err = s.checkout(ctx, in)
	return entry, false, err
}

func (s *Service) replay(ctx context.Context, key string) (records.Entry, bool, error) {
	number, err := s.idem.Result(ctx, key, idempotencyModule)
	if err != nil {
		return records.Entry{}, false, fmt.Errorf("read idempotency key: %w", err)
	}
	if number == "" {
		return records.Entry{}, false, fmt.Errorf("checkout %q still in progress: %w", key, shared.ErrIdempotencyConflict)
	}
	entry, err := s.desk.Get(ctx, number)
	if err != nil {
		return records.Entry{}, false, err
	}
	return entry, true, nil
}

func (s *Service) checkout(ctx context.Context, in CheckoutInput) (records.Entry, error) {
	mode, err := ledger.ParseMode(in.Mode)
	if err != nil {
		return records.Entry{}, err
	}
	customer, err := s.customers.Customer(ctx, in.CustomerID)
	if err != nil {
		return records.Entry{}, err
	}

	var cart *ledger.Cart
	if in.CartID != "" {
		cart, err = s.carts.Take(in.CartID)
		if err != nil {
			return records.Entry{}, err
		}
	} else {
		cart, err = s.inlineCart(ctx, in.Items)
		if err != nil {
			return records.Entry{}, err
		}
	}

	entry, err := s.desk.Finalize(ctx, ledger.FinalizeRequest{
		Cart:         cart,
		Discount:     in.Discount,
		Mode:         mode,
		Paid:         in.Paid,
		Counterparty: customer.Counterparty(),
	})
	if err != nil {
		if in.CartID != "" {
			s.carts.Restore(in.CartID, cart)
		}
		return records.Entry{}, err
	}

	if pending := entry.Record.Plan.Pending; pending > 0 {
		if _, err := s.customers.AddCredit(ctx, customer.ID, pending); err != nil {
			s.logger.Error("customer credit not updated",
				slog.String("number", entry.Record.Number),
				slog.String("customer_id", customer.ID),
				slog.Any("error", err))
		}
	}
	return entry, nil
}

func (s *Service) inlineCart(ctx context.Context, items []ItemInput) (*ledger.Cart, error) {
	cart := ledger.NewCart()
	for _, it := range items {
		p, err := s.catalog.Get(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if err := cart.AddItem(p.LedgerProduct(), it.Quantity); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

// Bill returns a bill with its balance and payments.
func (s *Service) Bill(ctx context.Context, number string) (records.Entry, error) {
	return s.desk.Get(ctx, number)
}

// Bills lists bills, newest first.
func (s *Service) Bills(ctx context.Context, f journal.Filter) ([]records.Entry, error) {
	return s.desk.List(ctx, f)
}

// Pay records a payment against a bill and lowers the customer's credit.
func (s *Service) Pay(ctx context.Context, number string, amount money.Money, note string) (records.Entry, ledger.PaymentEvent, error) {
	entry, ev, err := s.desk.Pay(ctx, number, amount, note)
	if err != nil {
		return records.Entry{}, ledger.PaymentEvent{}, err
	}
	cp := entry.Record.Counterparty
	if cp.Type == ledger.PartyCustomer {
		if _, err := s.customers.SettleCredit(ctx, cp.ID, amount); err != nil {
			s.logger.Error("customer credit not settled",
				slog.String("number", number),
				slog.String("customer_id", cp.ID),
				slog.Any("error", err))
		}
	}
	return entry, ev, nil
}

// Return resolves a return or exchange against a bill. Replacement items are
// priced at today's catalog price.
func (s *Service) Return(ctx context.Context, number string, in ReturnInput) (ReturnResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return ReturnResult{}, err
	}
	resolution, err := ledger.ParseResolution(in.Resolution)
	if err != nil {
		return ReturnResult{}, err
	}
	var exchange []ledger.LineItem
	if len(in.Exchange) > 0 {
		cart, err := s.inlineCart(ctx, in.Exchange)
		if err != nil {
			return ReturnResult{}, err
		}
		exchange = cart.Items()
	}
	ret, err := s.desk.Return(ctx, number, ledger.ReturnRequest{
		Returned:   in.Items,
		Resolution: resolution,
		Exchange:   exchange,
	}, in.Reason)
	if err != nil {
		return ReturnResult{}, err
	}
	settlement := ret.Settlement()
	return ReturnResult{Return: ret, Settlement: settlement, Summary: settlement.Describe()}, nil
}

// Returns lists returns taken against a bill.
func (s *Service) Returns(ctx context.Context, number string) ([]ledger.ReturnRecord, error) {
	if _, err := s.desk.Get(ctx, number); err != nil {
		return nil, err
	}
	return s.desk.Returns(ctx, number)
}
