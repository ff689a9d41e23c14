package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

// Repository defines persistence for products.
type Repository interface {
	Get(ctx context.Context, id string) (Product, bool, error)
	List(ctx context.Context, query string) ([]Product, error)
	Put(ctx context.Context, p Product) error
	Update(ctx context.Context, id string, fn func(*Product) error) (Product, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Service exposes catalog lookups to the counter flows.
type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService constructs the catalog service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, validate: validator.New(), logger: logger}
}

// Get returns a product or an error wrapping shared.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	p, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	if !ok {
		return Product{}, fmt.Errorf("product %q: %w", id, shared.ErrNotFound)
	}
	return p.flagged(), nil
}

// List returns products matching query.
func (s *Service) List(ctx context.Context, query string) ([]Product, error) {
	products, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	for i := range products {
		products[i] = products[i].flagged()
	}
	return products, nil
}

// Upsert creates a product or replaces its details. New prices only affect
// carts priced afterwards; finalized records keep their own unit prices.
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return Product{}, err
	}
	p := Product{
		ID:            in.ID,
		Code:          in.Code,
		Name:          in.Name,
		Category:      in.Category,
		Price:         in.Price,
		PurchasePrice: in.PurchasePrice,
		Stock:         in.Stock,
	}
	if err := s.repo.Put(ctx, p); err != nil {
		return Product{}, fmt.Errorf("put product: %w", err)
	}
	s.logger.Info("catalog product saved", slog.String("id", p.ID), slog.String("price", p.Price.String()))
	return p.flagged(), nil
}

// AdjustStock moves a product's stock by in.Delta. Stock never goes below
// zero or above money.MaxQuantity.
func (s *Service) AdjustStock(ctx context.Context, id string, in AdjustInput) (Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return Product{}, err
	}
	p, ok, err := s.repo.Update(ctx, id, func(p *Product) error {
		next := int(p.Stock) + in.Delta
		switch {
		case next < 0:
			return fmt.Errorf("%w: %s has %d, taking %d", ErrNegativeStock, p.ID, p.Stock, -in.Delta)
		case next > int(money.MaxQuantity):
			return fmt.Errorf("%w: %s would hold %d", ErrStockLimit, p.ID, next)
		}
		p.Stock = money.Quantity(next)
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	if !ok {
		return Product{}, fmt.Errorf("product %q: %w", id, shared.ErrNotFound)
	}
	p = p.flagged()
	s.logger.Info("stock adjusted",
		slog.String("id", p.ID),
		slog.Int("delta", in.Delta),
		slog.Int("stock", int(p.Stock)),
		slog.String("note", in.Note))
	if p.LowStock {
		s.logger.Warn("stock low", slog.String("id", p.ID), slog.Int("stock", int(p.Stock)))
	}
	return p, nil
}

// Delete removes a product. Finalized records keep their own copies of it.
func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if !ok {
		return fmt.Errorf("product %q: %w", id, shared.ErrNotFound)
	}
	s.logger.Info("catalog product deleted", slog.String("id", id))
	return nil
}

// Inventory lists stock matching q with unit and value totals.
func (s *Service) Inventory(ctx context.Context, q InventoryQuery) (Inventory, error) {
	products, err := s.List(ctx, q.Query)
	if err != nil {
		return Inventory{}, err
	}
	out := Inventory{Products: make([]Product, 0, len(products))}
	for _, p := range products {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.LowOnly && !p.LowStock {
			continue
		}
		cost, err := p.PurchasePrice.MulChecked(p.Stock)
		if err != nil {
			return Inventory{}, fmt.Errorf("value %s: %w", p.ID, err)
		}
		retail, err := p.Price.MulChecked(p.Stock)
		if err != nil {
			return Inventory{}, fmt.Errorf("value %s: %w", p.ID, err)
		}
		if out.Cost, err = out.Cost.AddChecked(cost); err != nil {
			return Inventory{}, fmt.Errorf("value inventory: %w", err)
		}
		if out.Retail, err = out.Retail.AddChecked(retail); err != nil {
			return Inventory{}, fmt.Errorf("value inventory: %w", err)
		}
		out.Units += int64(p.Stock)
		if p.LowStock {
			out.LowStock++
		}
		out.Products = append(out.Products, p)
	}
	return out, nil
}

// LowStock lists products at or below LowStockThreshold.
func (s *Service) LowStock(ctx context.Context) ([]Product, error) {
	inv, err := s.Inventory(ctx, InventoryQuery{LowOnly: true})
	if err != nil {
		return nil, err
	}
	return inv.Products, nil
}
