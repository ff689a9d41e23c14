package production

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps production in process.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []Entry
	batches []Batch
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// AddEntry stores e.
func (r *MemoryRepository) AddEntry(_ context.Context, e Entry) error {
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
	return nil
}

// Entries returns entries whose design name contains query, on day when day
// is set, newest day first.
func (r *MemoryRepository) Entries(_ context.Context, query, day string) ([]Entry, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	r.mu.RLock()
	out := make([]Entry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if day != "" && e.Day != day {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(e.DesignName), q) {
			continue
		}
		out = append(out, e)
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day > out[j].Day })
	return out, nil
}

// AddBatch stores b.
func (r *MemoryRepository) AddBatch(_ context.Context, b Batch) error {
	r.mu.Lock()
	r.batches = append(r.batches, b)
	r.mu.Unlock()
	return nil
}

// Batches returns every batch, newest first.
func (r *MemoryRepository) Batches(_ context.Context) ([]Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Batch, 0, len(r.batches))
	for i := len(r.batches) - 1; i >= 0; i-- {
		out = append(out, r.batches[i])
	}
	return out, nil
}

// UpdateBatches hands fn the batches oldest first under the write lock. Any
// change fn makes is kept only when it returns nil.
func (r *MemoryRepository) UpdateBatches(_ context.Context, fn func([]Batch) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	work := make([]Batch, len(r.batches))
	copy(work, r.batches)
	if err := fn(work); err != nil {
		return err
	}
	r.batches = work
	return nil
}

// batchIndex finds id in batches.
func batchIndex(batches []Batch, id uuid.UUID) int {
	for i := range batches {
		if batches[i].ID == id {
			return i
		}
	}
	return -1
}
