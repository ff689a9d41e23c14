package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/observability"
	"github.com/odyssey-erp/shopledger/internal/records"
	_ "github.com/odyssey-erp/shopledger/testing"
)

func newTestShop(t *testing.T) (*Shop, http.Handler) {
	t.Helper()
	cfg, err := LoadConfig()
	require.NoError(t, err)
	clock := func() time.Time { return time.Date(2024, 1, 15, 6, 0, 0, 0, time.UTC) }
	shop, err := NewShop(context.Background(), cfg, ShopDeps{Metrics: observability.NewMetrics(), Clock: clock})
	require.NoError(t, err)
	return shop, shop.Router(nil)
}

func call(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func TestRouterHealth(t *testing.T) {
	_, h := newTestShop(t)
	res := call(h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"status":"ok"}`, res.Body.String())
	assert.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, res.Header().Get("X-Ratelimit-Limit"))
}

func TestRouterBillingFlow(t *testing.T) {
	shop, h := newTestShop(t)

	res := call(h, http.MethodPost, "/bills", `{"items":[{"product_id":"1","quantity":1},{"product_id":"3","quantity":2}],"customer_id":"2","discount":"200","payment_mode":"partial","paid":"3000"}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var entry records.Entry
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &entry))
	assert.Equal(t, "1235", entry.Record.Number)
	assert.Equal(t, money.Rupees(4000), entry.Balance.Pending)

	customer, err := shop.Directory.Customer(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, money.Rupees(12200), customer.CreditBalance)

	res = call(h, http.MethodGet, "/bills/1235/receipt", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Kanjeevaram ")
	assert.Contains(t, res.Body.String(), "Cash / UPI / Credit")

	res = call(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `shopledger_records_finalized_total{kind="bill",mode="partial"} 1`)
}

func TestRouterMountsEveryKind(t *testing.T) {
	shop, h := newTestShop(t)
	for _, kind := range Kinds {
		require.Contains(t, shop.Desks, kind)
	}

	res := call(h, http.MethodPost, "/orders", `{"customer_name":"Kavya","customer_phone":"9988776655","items":[{"product_id":"7","quantity":1}],"advance":"500","shipping_address":"Vijayawada"}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	assert.Contains(t, res.Body.String(), `"number":"WA240115-0001"`)

	res = call(h, http.MethodGet, "/orders/WA240115-0001/receipt", "")
	assert.Equal(t, http.StatusOK, res.Code)

	res = call(h, http.MethodPost, "/salaries/payments", `{"staff_id":"2","month":"January","year":2024,"amount":"15000"}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	assert.Contains(t, res.Body.String(), `"number":"SL000001"`)

	for _, path := range []string{"/products", "/customers", "/vendors", "/staff", "/courier", "/printing", "/salaries", "/bills/aging", "/products/inventory", "/products/low-stock", "/production", "/production/rolling"} {
		res = call(h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, res.Code, path)
	}

	res = call(h, http.MethodPost, "/production/entries", `{"type":"saree","design_name":"Floral Block Print","quantity":12}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	assert.Contains(t, res.Body.String(), `"date":"2024-01-15"`)

	res = call(h, http.MethodGet, "/bills/0001", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, 1, shop.Store.Count(ledger.KindOrder))
}
