package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

func newService() *Service {
	return NewService(NewMemoryRepository(SeedCustomers(), SeedVendors(), SeedStaff()), nil)
}

func TestCustomerCredit(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	c, err := svc.AddCredit(ctx, "2", money.Rupees(4000))
	require.NoError(t, err)
	assert.Equal(t, money.Rupees(12200), c.CreditBalance)

	c, err = svc.SettleCredit(ctx, "2", money.Rupees(2200))
	require.NoError(t, err)
	assert.Equal(t, money.Rupees(10000), c.CreditBalance)

	c, err = svc.SettleCredit(ctx, "1", money.Rupees(500))
	require.NoError(t, err)
	assert.True(t, c.CreditBalance.IsZero())

	_, err = svc.AddCredit(ctx, "99", money.Rupees(1))
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.AddCredit(ctx, "1", money.Rupees(-1))
	require.Error(t, err)
}

func TestConcurrentCreditUpdates(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.AddCredit(ctx, "3", money.Rupees(10))
		}()
	}
	wg.Wait()
	c, err := svc.Customer(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, money.Rupees(500), c.CreditBalance)
}

func TestAddEntriesAssignsIDs(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	c, err := svc.AddCustomer(ctx, CustomerInput{Name: " Kavya Iyer ", Mobile: "9123456780"})
	require.NoError(t, err)
	assert.Equal(t, "6", c.ID)
	assert.Equal(t, "Kavya Iyer", c.Name)
	assert.Equal(t, ledger.PartyCustomer, c.Counterparty().Type)

	_, err = svc.AddCustomer(ctx, CustomerInput{Name: "Bad Phone", Mobile: "12ab"})
	require.Error(t, err)

	v, err := svc.AddVendor(ctx, VendorInput{Name: "Mysore Silks"})
	require.NoError(t, err)
	assert.Equal(t, "5", v.ID)

	st, err := svc.AddStaff(ctx, StaffInput{Name: "Geetha", Role: "Tailor", MonthlySalary: money.Rupees(14000)})
	require.NoError(t, err)
	assert.Equal(t, "6", st.ID)
	assert.Equal(t, "Retail", st.Department)

	_, err = svc.AddStaff(ctx, StaffInput{Name: "Nobody", Role: "Helper"})
	require.Error(t, err)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	cs, err := svc.Customers(ctx, "98765432")
	require.NoError(t, err)
	assert.Len(t, cs, 4)

	staff, err := svc.Staff(ctx, "production")
	require.NoError(t, err)
	assert.Len(t, staff, 3)

	vs, err := svc.Vendors(ctx, "silk")
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "Krishna Silks", vs[0].Name)
}

func TestHandler(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil, newService()).MountRoutes(r)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/customers/4", nil))
	require.Equal(t, http.StatusOK, res.Code)
	var c Customer
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &c))
	assert.Equal(t, money.Rupees(15000), c.CreditBalance)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/staff", strings.NewReader(`{"name":"Geetha","role":"Tailor","monthly_salary":"14000"}`)))
	assert.Equal(t, http.StatusCreated, res.Code)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/vendors", strings.NewReader(`{"company":"No Name"}`)))
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/staff/42", nil))
	assert.Equal(t, http.StatusNotFound, res.Code)
}
