package orders

import (
	"context"
	"fmt"
	"sync"

	"github.com/odyssey-erp/shopledger/internal/journal"
)

// Repository keeps order fulfilment details.
type Repository interface {
	Get(ctx context.Context, number string) (Order, bool, error)
	Put(ctx context.Context, o Order) error
	Update(ctx context.Context, number string, fn func(*Order) error) (Order, error)
}

// MemoryRepository is a mutex-guarded Repository.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[string]Order)}
}

// Get returns a copy of the order.
func (r *MemoryRepository) Get(_ context.Context, number string) (Order, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[number]
	return cloneOrder(o), ok, nil
}

// Put stores a new order.
func (r *MemoryRepository) Put(_ context.Context, o Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[o.Number]; exists {
		return fmt.Errorf("order %s: %w", o.Number, journal.ErrDuplicate)
	}
	r.orders[o.Number] = cloneOrder(o)
	return nil
}

// Update applies fn under the write lock. fn errors leave the order as it was.
func (r *MemoryRepository) Update(_ context.Context, number string, fn func(*Order) error) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[number]
	if !ok {
		return Order{}, fmt.Errorf("order %s: %w", number, journal.ErrNotFound)
	}
	next := cloneOrder(o)
	if err := fn(&next); err != nil {
		return Order{}, err
	}
	r.orders[number] = next
	return cloneOrder(next), nil
}

func cloneOrder(o Order) Order {
	if o.History != nil {
		o.History = append([]StatusChange(nil), o.History...)
	}
	return o
}
