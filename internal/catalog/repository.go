package catalog

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// MemoryRepository keeps products in process.
type MemoryRepository struct {
	mu       sync.RWMutex
	products map[string]Product
}

// NewMemoryRepository returns a repository holding products.
func NewMemoryRepository(products ...Product) *MemoryRepository {
	r := &MemoryRepository{products: make(map[string]Product, len(products))}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

// Get returns a product by ID.
func (r *MemoryRepository) Get(_ context.Context, id string) (Product, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	return p, ok, nil
}

// List returns products whose name or code contains query, ordered by ID.
func (r *MemoryRepository) List(_ context.Context, query string) ([]Product, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	r.mu.RLock()
	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		if q == "" || strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Code), q) {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	return out, nil
}

// Put stores p, replacing any product with the same ID.
func (r *MemoryRepository) Put(_ context.Context, p Product) error {
	r.mu.Lock()
	r.products[p.ID] = p
	r.mu.Unlock()
	return nil
}

// Update applies fn to the stored product under the write lock. A failing fn
// leaves the product unchanged.
func (r *MemoryRepository) Update(_ context.Context, id string, fn func(*Product) error) (Product, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, false, nil
	}
	if err := fn(&p); err != nil {
		return Product{}, true, err
	}
	r.products[id] = p
	return p, true, nil
}

// Delete removes a product and reports whether it existed.
func (r *MemoryRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}

// lessID orders numeric IDs numerically and everything else lexically.
func lessID(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
