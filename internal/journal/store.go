// Package journal keeps finalized ledger records, their payment events and
// returns in memory.
package journal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/shopledger/internal/ledger"
)

var (
	// ErrNotFound indicates no record exists for the kind and number.
	ErrNotFound = errors.New("journal: record not found")
	// ErrDuplicate indicates a record with the same kind and number is stored.
	ErrDuplicate = errors.New("journal: record already exists")
	// ErrClosed indicates a payment against a closed record.
	ErrClosed = errors.New("journal: record is closed")
)

type key struct {
	kind   ledger.Kind
	number string
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	CounterpartyID string
	From           time.Time
	To             time.Time
	// Outstanding keeps only open records with a pending balance.
	Outstanding bool
	Limit       int
}

// Store is safe for concurrent use. Everything it returns is a copy.
type Store struct {
	mu       sync.RWMutex
	records  map[key]*ledger.Record
	order    map[ledger.Kind][]string
	payments map[key][]ledger.PaymentEvent
	returns  map[key][]ledger.ReturnRecord
	closed   map[key]time.Time
	now      func() time.Time
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		records:  make(map[key]*ledger.Record),
		order:    make(map[ledger.Kind][]string),
		payments: make(map[key][]ledger.PaymentEvent),
		returns:  make(map[key][]ledger.ReturnRecord),
		closed:   make(map[key]time.Time),
		now:      time.Now,
	}
}

// Save stores a finalized record.
func (s *Store) Save(ctx context.Context, rec *ledger.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec == nil || rec.Number == "" {
		return fmt.Errorf("journal: record number required")
	}
	k := key{kind: rec.Kind, number: rec.Number}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[k]; ok {
		return fmt.Errorf("%w: %s %s", ErrDuplicate, rec.Kind, rec.Number)
	}
	s.records[k] = rec.Clone()
	s.order[rec.Kind] = append(s.order[rec.Kind], rec.Number)
	return nil
}

// Get returns a record by kind and number.
func (s *Store) Get(ctx context.Context, kind ledger.Kind, number string) (*ledger.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key{kind: kind, number: number}]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, number)
	}
	return rec.Clone(), nil
}

// List returns records of kind in finalization order, newest first.
func (s *Store) List(ctx context.Context, kind ledger.Kind, f Filter) ([]*ledger.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	numbers := s.order[kind]
	out := make([]*ledger.Record, 0, len(numbers))
	for i := len(numbers) - 1; i >= 0; i-- {
		k := key{kind: kind, number: numbers[i]}
		rec := s.records[k]
		if !f.matches(rec) {
			continue
		}
		if f.Outstanding {
			if _, closed := s.closed[k]; closed {
				continue
			}
			bal, err := ledger.ApplyPayments(rec, s.payments[k])
			if err != nil || bal.Pending.IsZero() {
				continue
			}
		}
		out = append(out, rec.Clone())
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (f Filter) matches(rec *ledger.Record) bool {
	if f.CounterpartyID != "" && rec.Counterparty.ID != f.CounterpartyID {
		return false
	}
	if !f.From.IsZero() && rec.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !rec.CreatedAt.Before(f.To) {
		return false
	}
	return true
}

// AppendPayment records ev after checking it against the record and every
// earlier payment. The check and the append happen under one lock, so
// concurrent payments can never overpay a record.
func (s *Store) AppendPayment(ctx context.Context, ev ledger.PaymentEvent) (ledger.Balance, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Balance{}, err
	}
	k := key{kind: ev.Kind, number: ev.RecordNumber}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[k]
	if !ok {
		return ledger.Balance{}, fmt.Errorf("%w: %s %s", ErrNotFound, ev.Kind, ev.RecordNumber)
	}
	if _, closed := s.closed[k]; closed {
		return ledger.Balance{}, fmt.Errorf("%w: %s %s", ErrClosed, ev.Kind, ev.RecordNumber)
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	events := append(cloneEvents(s.payments[k]), ev)
	bal, err := ledger.ApplyPayments(rec, events)
	if err != nil {
		return ledger.Balance{}, err
	}
	s.payments[k] = events
	return bal, nil
}

// Close marks a record as closed, e.g. on cancellation. A closed record keeps
// its payments and balance but is no longer outstanding and takes no further
// payments. Closing twice keeps the first time.
func (s *Store) Close(ctx context.Context, kind ledger.Kind, number string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k := key{kind: kind, number: number}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[k]; !ok {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, number)
	}
	if _, ok := s.closed[k]; !ok {
		s.closed[k] = s.now()
	}
	return nil
}

// ClosedAt reports when a record was closed.
func (s *Store) ClosedAt(kind ledger.Kind, number string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.closed[key{kind: kind, number: number}]
	return at, ok
}

// Payments lists the payment events of a record in the order they were applied.
func (s *Store) Payments(ctx context.Context, kind ledger.Kind, number string) ([]ledger.PaymentEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	k := key{kind: kind, number: number}
	if _, ok := s.records[k]; !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, number)
	}
	return cloneEvents(s.payments[k]), nil
}

// Balance folds the stored payments into the record's plan.
func (s *Store) Balance(ctx context.Context, kind ledger.Kind, number string) (ledger.Balance, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Balance{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	k := key{kind: kind, number: number}
	rec, ok := s.records[k]
	if !ok {
		return ledger.Balance{}, fmt.Errorf("%w: %s %s", ErrNotFound, kind, number)
	}
	return ledger.ApplyPayments(rec, s.payments[k])
}

// ResolveReturn prices req against the stored record and every return already
// taken against it, then stores the outcome. Reason is kept on the record.
func (s *Store) ResolveReturn(ctx context.Context, kind ledger.Kind, number string, req ledger.ReturnRequest, reason string) (*ledger.ReturnRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := key{kind: kind, number: number}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, number)
	}
	req.Prior = s.returns[k]
	ret, err := ledger.ResolveReturn(rec, req)
	if err != nil {
		return nil, err
	}
	ret.ID = uuid.New()
	ret.CreatedAt = s.now()
	ret.Reason = reason
	s.returns[k] = append(s.returns[k], ret.Clone())
	return ret, nil
}

// Returns lists the returns taken against a record, oldest first.
func (s *Store) Returns(ctx context.Context, kind ledger.Kind, number string) ([]ledger.ReturnRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	k := key{kind: kind, number: number}
	if _, ok := s.records[k]; !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, number)
	}
	out := make([]ledger.ReturnRecord, 0, len(s.returns[k]))
	for _, r := range s.returns[k] {
		out = append(out, r.Clone())
	}
	return out, nil
}

// Count returns how many records of kind are stored.
func (s *Store) Count(kind ledger.Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order[kind])
}

// CreatedOn lists the creation times of records of kind, oldest first.
func (s *Store) CreatedOn(kind ledger.Kind) []time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]time.Time, 0, len(s.order[kind]))
	for _, n := range s.order[kind] {
		out = append(out, s.records[key{kind: kind, number: n}].CreatedAt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func cloneEvents(in []ledger.PaymentEvent) []ledger.PaymentEvent {
	if len(in) == 0 {
		return nil
	}
	out := make([]ledger.PaymentEvent, len(in))
	copy(out, in)
	return out
}
