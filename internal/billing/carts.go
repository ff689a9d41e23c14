package billing

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

type storedCart struct {
	cart    *ledger.Cart
	updated time.Time
}

// CartStore keeps open carts. ledger.Cart is not safe for concurrent use, so
// every access goes through the store lock.
type CartStore struct {
	mu    sync.Mutex
	carts map[string]*storedCart
	now   func() time.Time
}

// NewCartStore constructs an empty store.
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]*storedCart), now: time.Now}
}

// Create opens an empty cart.
func (s *CartStore) Create() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	sc := &storedCart{cart: ledger.NewCart(), updated: s.now()}
	s.carts[id] = sc
	return view(id, sc)
}

// Get returns a snapshot of cart id.
func (s *CartStore) Get(id string) (CartView, error) {
	return s.update(id, func(*ledger.Cart) error { return nil }, false)
}

// Add puts qty units of p into cart id.
func (s *CartStore) Add(id string, p ledger.Product, qty money.Quantity) (CartView, error) {
	return s.update(id, func(c *ledger.Cart) error { return c.AddItem(p, qty) }, true)
}

// Change adjusts a row by delta.
func (s *CartStore) Change(id, productID string, delta int) (CartView, error) {
	return s.update(id, func(c *ledger.Cart) error {
		return c.ChangeQuantity(productID, delta)
	}, true)
}

// Remove drops a row.
func (s *CartStore) Remove(id, productID string) (CartView, error) {
	return s.update(id, func(c *ledger.Cart) error {
		c.RemoveItem(productID)
		return nil
	}, true)
}

// Take removes cart id from the store and hands it to the caller, so two
// checkouts of one cart cannot both succeed.
func (s *CartStore) Take(id string) (*ledger.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.carts[id]
	if !ok {
		return nil, fmt.Errorf("cart %q: %w", id, shared.ErrNotFound)
	}
	delete(s.carts, id)
	return sc.cart, nil
}

// Restore puts a taken cart back, used when checkout fails.
func (s *CartStore) Restore(id string, cart *ledger.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[id] = &storedCart{cart: cart, updated: s.now()}
}

// Delete discards cart id.
func (s *CartStore) Delete(id string) error {
	_, err := s.Take(id)
	return err
}

func (s *CartStore) update(id string, fn func(*ledger.Cart) error, touch bool) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.carts[id]
	if !ok {
		return CartView{}, fmt.Errorf("cart %q: %w", id, shared.ErrNotFound)
	}
	if err := fn(sc.cart); err != nil {
		return CartView{}, err
	}
	if touch {
		sc.updated = s.now()
	}
	return view(id, sc), nil
}

func view(id string, sc *storedCart) CartView {
	return CartView{ID: id, Items: sc.cart.Items(), Subtotal: sc.cart.Subtotal(), UpdatedAt: sc.updated}
}
