package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

// Repository defines persistence for the directories.
type Repository interface {
	GetCustomer(ctx context.Context, id string) (Customer, bool, error)
	ListCustomers(ctx context.Context, query string) ([]Customer, error)
	CreateCustomer(ctx context.Context, c Customer) (Customer, error)
	UpdateCustomer(ctx context.Context, id string, fn func(*Customer)) (Customer, bool, error)
	GetVendor(ctx context.Context, id string) (Vendor, bool, error)
	ListVendors(ctx context.Context, query string) ([]Vendor, error)
	CreateVendor(ctx context.Context, v Vendor) (Vendor, error)
	GetStaff(ctx context.Context, id string) (Staff, bool, error)
	ListStaff(ctx context.Context, query string) ([]Staff, error)
	CreateStaff(ctx context.Context, s Staff) (Staff, error)
}

// Service manages directory entries and customer credit balances.
type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs the directory service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, validate: validator.New(), logger: logger, now: time.Now}
}

// Customer returns a customer or an error wrapping shared.ErrNotFound.
func (s *Service) Customer(ctx context.Context, id string) (Customer, error) {
	c, ok, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return Customer{}, fmt.Errorf("get customer: %w", err)
	}
	if !ok {
		return Customer{}, fmt.Errorf("customer %q: %w", id, shared.ErrNotFound)
	}
	return c, nil
}

// Customers lists customers matching query.
func (s *Service) Customers(ctx context.Context, query string) ([]Customer, error) {
	return s.repo.ListCustomers(ctx, query)
}

// AddCustomer registers a customer with an empty credit balance.
func (s *Service) AddCustomer(ctx context.Context, in CustomerInput) (Customer, error) {
	if err := s.validate.Struct(in); err != nil {
		return Customer{}, err
	}
	return s.repo.CreateCustomer(ctx, Customer{
		Name:    strings.TrimSpace(in.Name),
		Mobile:  in.Mobile,
		Address: in.Address,
	})
}

// AddCredit raises a customer's outstanding balance, as checkout does with the
// pending amount of a bill.
func (s *Service) AddCredit(ctx context.Context, id string, amount money.Money) (Customer, error) {
	if amount.IsNegative() {
		return Customer{}, fmt.Errorf("add credit: negative amount %s", amount)
	}
	return s.updateCredit(ctx, id, func(c *Customer) {
		c.CreditBalance = c.CreditBalance.Add(amount)
	})
}

// SettleCredit lowers a customer's outstanding balance by a payment. The
// balance never goes below zero; payments against bills taken before the
// balance was tracked are absorbed.
func (s *Service) SettleCredit(ctx context.Context, id string, amount money.Money) (Customer, error) {
	if amount.IsNegative() {
		return Customer{}, fmt.Errorf("settle credit: negative amount %s", amount)
	}
	return s.updateCredit(ctx, id, func(c *Customer) {
		next, err := c.CreditBalance.Sub(amount)
		if err != nil {
			next = money.Zero
		}
		c.CreditBalance = next
	})
}

func (s *Service) updateCredit(ctx context.Context, id string, fn func(*Customer)) (Customer, error) {
	c, ok, err := s.repo.UpdateCustomer(ctx, id, fn)
	if err != nil {
		return Customer{}, fmt.Errorf("update customer credit: %w", err)
	}
	if !ok {
		return Customer{}, fmt.Errorf("customer %q: %w", id, shared.ErrNotFound)
	}
	s.logger.Debug("customer credit updated", slog.String("customer_id", id), slog.String("balance", c.CreditBalance.String()))
	return c, nil
}

// Vendor returns a vendor or an error wrapping shared.ErrNotFound.
func (s *Service) Vendor(ctx context.Context, id string) (Vendor, error) {
	v, ok, err := s.repo.GetVendor(ctx, id)
	if err != nil {
		return Vendor{}, fmt.Errorf("get vendor: %w", err)
	}
	if !ok {
		return Vendor{}, fmt.Errorf("vendor %q: %w", id, shared.ErrNotFound)
	}
	return v, nil
}

// Vendors lists vendors matching query.
func (s *Service) Vendors(ctx context.Context, query string) ([]Vendor, error) {
	return s.repo.ListVendors(ctx, query)
}

// AddVendor registers a vendor.
func (s *Service) AddVendor(ctx context.Context, in VendorInput) (Vendor, error) {
	if err := s.validate.Struct(in); err != nil {
		return Vendor{}, err
	}
	return s.repo.CreateVendor(ctx, Vendor{
		Name:    strings.TrimSpace(in.Name),
		Company: in.Company,
		Mobile:  in.Mobile,
		Address: in.Address,
	})
}

// StaffMember returns a staff member or an error wrapping shared.ErrNotFound.
func (s *Service) StaffMember(ctx context.Context, id string) (Staff, error) {
	st, ok, err := s.repo.GetStaff(ctx, id)
	if err != nil {
		return Staff{}, fmt.Errorf("get staff: %w", err)
	}
	if !ok {
		return Staff{}, fmt.Errorf("staff %q: %w", id, shared.ErrNotFound)
	}
	return st, nil
}

// Staff lists staff matching query.
func (s *Service) Staff(ctx context.Context, query string) ([]Staff, error) {
	return s.repo.ListStaff(ctx, query)
}

// AddStaff registers a staff member joining today.
func (s *Service) AddStaff(ctx context.Context, in StaffInput) (Staff, error) {
	if err := s.validate.Struct(in); err != nil {
		return Staff{}, err
	}
	dept := in.Department
	if dept == "" {
		dept = "Retail"
	}
	y, m, d := s.now().Date()
	return s.repo.CreateStaff(ctx, Staff{
		Name:          strings.TrimSpace(in.Name),
		Role:          in.Role,
		Department:    dept,
		MonthlySalary: in.MonthlySalary,
		JoinDate:      time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Phone:         in.Phone,
	})
}
