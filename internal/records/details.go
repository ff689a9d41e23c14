package records

import (
	"fmt"
	"sync"

	"github.com/odyssey-erp/shopledger/internal/journal"
)

// Details keeps per-record data a module adds on top of the ledger record,
// keyed by record number.
type Details[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	clone func(T) T
}

// NewDetails constructs an empty store. clone may be nil for value types
// without shared references.
func NewDetails[T any](clone func(T) T) *Details[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Details[T]{items: make(map[string]T), clone: clone}
}

// Get returns a copy of the details for number.
func (d *Details[T]) Get(number string) (T, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.items[number]
	if !ok {
		var zero T
		return zero, false
	}
	return d.clone(v), true
}

// Put stores details for a new record.
func (d *Details[T]) Put(number string, v T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.items[number]; exists {
		return fmt.Errorf("details %s: %w", number, journal.ErrDuplicate)
	}
	d.items[number] = d.clone(v)
	return nil
}

// Update applies fn under the write lock; an error leaves the stored value
// untouched.
func (d *Details[T]) Update(number string, fn func(*T) error) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero T
	v, ok := d.items[number]
	if !ok {
		return zero, fmt.Errorf("details %s: %w", number, journal.ErrNotFound)
	}
	next := d.clone(v)
	if err := fn(&next); err != nil {
		return zero, err
	}
	d.items[number] = next
	return d.clone(next), nil
}

// Find returns the first record number whose details satisfy match.
func (d *Details[T]) Find(match func(T) bool) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for number, v := range d.items {
		if match(v) {
			return number, true
		}
	}
	return "", false
}
