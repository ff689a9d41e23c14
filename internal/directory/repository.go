package directory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// MemoryRepository keeps the three directories in process. IDs are assigned
// from per-directory counters continuing after the highest seeded ID.
type MemoryRepository struct {
	mu        sync.RWMutex
	customers map[string]Customer
	vendors   map[string]Vendor
	staff     map[string]Staff
	lastID    map[string]int
}

// NewMemoryRepository returns a repository holding the given entries.
func NewMemoryRepository(customers []Customer, vendors []Vendor, staff []Staff) *MemoryRepository {
	r := &MemoryRepository{
		customers: make(map[string]Customer, len(customers)),
		vendors:   make(map[string]Vendor, len(vendors)),
		staff:     make(map[string]Staff, len(staff)),
		lastID:    make(map[string]int, 3),
	}
	for _, c := range customers {
		r.customers[c.ID] = c
		r.bump("customer", c.ID)
	}
	for _, v := range vendors {
		r.vendors[v.ID] = v
		r.bump("vendor", v.ID)
	}
	for _, s := range staff {
		r.staff[s.ID] = s
		r.bump("staff", s.ID)
	}
	return r
}

func (r *MemoryRepository) bump(kind, id string) {
	if n, err := strconv.Atoi(id); err == nil && n > r.lastID[kind] {
		r.lastID[kind] = n
	}
}

func (r *MemoryRepository) nextID(kind string) string {
	r.lastID[kind]++
	return strconv.Itoa(r.lastID[kind])
}

// GetCustomer returns a customer by ID.
func (r *MemoryRepository) GetCustomer(_ context.Context, id string) (Customer, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	return c, ok, nil
}

// ListCustomers returns customers matching query by name or mobile.
func (r *MemoryRepository) ListCustomers(_ context.Context, query string) ([]Customer, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	r.mu.RLock()
	out := make([]Customer, 0, len(r.customers))
	for _, c := range r.customers {
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(c.Mobile, q) {
			out = append(out, c)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	return out, nil
}

// CreateCustomer assigns an ID and stores c.
func (r *MemoryRepository) CreateCustomer(_ context.Context, c Customer) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID("customer")
	r.customers[c.ID] = c
	return c, nil
}

// UpdateCustomer applies fn to the stored customer under the write lock.
func (r *MemoryRepository) UpdateCustomer(_ context.Context, id string, fn func(*Customer)) (Customer, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return Customer{}, false, nil
	}
	fn(&c)
	r.customers[id] = c
	return c, true, nil
}

// GetVendor returns a vendor by ID.
func (r *MemoryRepository) GetVendor(_ context.Context, id string) (Vendor, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vendors[id]
	return v, ok, nil
}

// ListVendors returns vendors matching query by name or company.
func (r *MemoryRepository) ListVendors(_ context.Context, query string) ([]Vendor, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	r.mu.RLock()
	out := make([]Vendor, 0, len(r.vendors))
	for _, v := range r.vendors {
		if q == "" || strings.Contains(strings.ToLower(v.Name), q) || strings.Contains(strings.ToLower(v.Company), q) {
			out = append(out, v)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	return out, nil
}

// CreateVendor assigns an ID and stores v.
func (r *MemoryRepository) CreateVendor(_ context.Context, v Vendor) (Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v.ID = r.nextID("vendor")
	r.vendors[v.ID] = v
	return v, nil
}

// GetStaff returns a staff member by ID.
func (r *MemoryRepository) GetStaff(_ context.Context, id string) (Staff, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.staff[id]
	return s, ok, nil
}

// ListStaff returns staff matching query by name, role or department.
func (r *MemoryRepository) ListStaff(_ context.Context, query string) ([]Staff, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	r.mu.RLock()
	out := make([]Staff, 0, len(r.staff))
	for _, s := range r.staff {
		if q == "" || strings.Contains(strings.ToLower(s.Name), q) ||
			strings.Contains(strings.ToLower(s.Role), q) || strings.Contains(strings.ToLower(s.Department), q) {
			out = append(out, s)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	return out, nil
}

// CreateStaff assigns an ID and stores s.
func (r *MemoryRepository) CreateStaff(_ context.Context, s Staff) (Staff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.nextID("staff")
	r.staff[s.ID] = s
	return s, nil
}

func lessID(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
