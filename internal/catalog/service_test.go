package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

func newService() *Service {
	return NewService(NewMemoryRepository(Seed()...), nil)
}

func TestServiceGetAndList(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	p, err := svc.Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Cotton Kurti", p.Name)
	assert.Equal(t, money.Rupees(850), p.LedgerProduct().Price)

	_, err = svc.Get(ctx, "99")
	require.ErrorIs(t, err, shared.ErrNotFound)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 8)
	assert.Equal(t, "1", all[0].ID)
	assert.Equal(t, "8", all[7].ID)

	silk, err := svc.List(ctx, "silk")
	require.NoError(t, err)
	assert.Len(t, silk, 3)
}

func TestServiceUpsertValidates(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.Upsert(ctx, UpsertInput{ID: "9", Name: ""})
	require.Error(t, err)

	_, err = svc.Upsert(ctx, UpsertInput{ID: "9", Name: "Mysore Silk", Category: "shoes", Price: money.Rupees(100)})
	require.Error(t, err)

	p, err := svc.Upsert(ctx, UpsertInput{ID: "9", Name: "Mysore Silk Saree", Category: CategorySarees, Price: money.Rupees(6200)})
	require.NoError(t, err)
	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Rupees(6200), got.Price)
}

func TestInventoryTotalsAndLowStock(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	inv, err := svc.Inventory(ctx, InventoryQuery{})
	require.NoError(t, err)
	assert.Len(t, inv.Products, 8)
	assert.Equal(t, int64(301), inv.Units)
	assert.Equal(t, 2, inv.LowStock)
	assert.Equal(t, money.Rupees(144900), inv.Cost)
	assert.Equal(t, money.Rupees(240650), inv.Retail)

	fabrics, err := svc.Inventory(ctx, InventoryQuery{Category: CategoryFabrics})
	require.NoError(t, err)
	assert.Len(t, fabrics.Products, 2)
	assert.Zero(t, fabrics.LowStock)

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "4", low[0].ID)
	assert.Equal(t, "8", low[1].ID)
	assert.True(t, low[0].LowStock)

	p, err := svc.Get(ctx, "4")
	require.NoError(t, err)
	assert.True(t, p.LowStock, "exactly at the threshold")
	p, err = svc.Get(ctx, "2")
	require.NoError(t, err)
	assert.False(t, p.LowStock)
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	p, err := svc.AdjustStock(ctx, "2", AdjustInput{Delta: -3, Note: "sold at fair"})
	require.NoError(t, err)
	assert.Equal(t, money.Quantity(5), p.Stock)
	assert.True(t, p.LowStock)

	p, err = svc.AdjustStock(ctx, "2", AdjustInput{Delta: 10})
	require.NoError(t, err)
	assert.Equal(t, money.Quantity(15), p.Stock)
	assert.False(t, p.LowStock)

	_, err = svc.AdjustStock(ctx, "2", AdjustInput{Delta: -16})
	require.ErrorIs(t, err, ErrNegativeStock)
	require.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = svc.AdjustStock(ctx, "5", AdjustInput{Delta: int(money.MaxQuantity)})
	require.ErrorIs(t, err, ErrStockLimit)
	_, err = svc.AdjustStock(ctx, "2", AdjustInput{})
	require.Error(t, err)
	_, err = svc.AdjustStock(ctx, "99", AdjustInput{Delta: 1})
	require.ErrorIs(t, err, shared.ErrNotFound)

	got, err := svc.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, money.Quantity(15), got.Stock)

	require.NoError(t, svc.Delete(ctx, "2"))
	require.ErrorIs(t, svc.Delete(ctx, "2"), shared.ErrNotFound)
	_, err = svc.Get(ctx, "2")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestHandler(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil, newService()).MountRoutes(r)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/4", nil))
	require.Equal(t, http.StatusOK, res.Code)
	var p Product
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &p))
	assert.Equal(t, money.Rupees(2200), p.Price)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/404", nil))
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = httptest.NewRecorder()
	body := `{"id":"10","name":"Linen Fabric (per m)","category":"fabrics","price":"320.50"}`
	r.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &p))
	assert.Equal(t, money.Paise(32050), p.Price)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":"11"}`)))
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/low-stock", nil))
	require.Equal(t, http.StatusOK, res.Code)
	var low struct {
		Products  []Product `json:"products"`
		Threshold int       `json:"threshold"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &low))
	assert.Equal(t, 5, low.Threshold)
	assert.Len(t, low.Products, 3, "the new linen product has no stock")

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/8/stock", strings.NewReader(`{"delta":-4}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/8/stock", strings.NewReader(`{"delta":7,"note":"restock"}`)))
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &p))
	assert.Equal(t, money.Quantity(10), p.Stock)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/inventory?category=suit-sets", nil))
	require.Equal(t, http.StatusOK, res.Code)
	var inv Inventory
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &inv))
	assert.Equal(t, int64(28), inv.Units)
	assert.Zero(t, inv.LowStock)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodDelete, "/10", nil))
	assert.Equal(t, http.StatusNoContent, res.Code)
}
