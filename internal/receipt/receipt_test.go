package receipt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/shopledger/internal/journal"
	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/records"
	"github.com/odyssey-erp/shopledger/internal/sequence"
	"github.com/odyssey-erp/shopledger/report"
)

var (
	issued = time.Date(2024, 1, 10, 11, 30, 0, 0, time.UTC)
	shop   = Shop{Name: "Sri Lakshmi Textiles", Phone: "9876543210"}
)

func newDesk(t *testing.T) *records.Desk {
	t.Helper()
	l := ledger.New(ledger.KindBill, sequence.NewCounter(1234), ledger.WithClock(func() time.Time { return issued }))
	return records.NewDesk(l, journal.NewStore(), records.Config{})
}

func partialBill(t *testing.T, desk *records.Desk, phone string) records.Entry {
	t.Helper()
	cart := ledger.NewCart()
	require.NoError(t, cart.AddItem(ledger.Product{ID: "3", Name: "Cotton Kurti", Price: money.Rupees(850)}, 2))
	require.NoError(t, cart.AddItem(ledger.Product{ID: "4", Name: "Designer Anarkali", Price: money.Rupees(2200)}, 1))
	paid := money.Rupees(1000)
	entry, err := desk.Finalize(context.Background(), ledger.FinalizeRequest{
		Cart:         cart,
		Discount:     money.Rupees(100),
		Mode:         ledger.ModePartial,
		Paid:         &paid,
		Counterparty: ledger.Counterparty{Type: ledger.PartyCustomer, ID: "3", Name: "Anjali", Phone: phone},
	})
	require.NoError(t, err)
	return entry
}

func TestBuild(t *testing.T) {
	entry := partialBill(t, newDesk(t), "")
	r := Build(shop, entry.Record, entry.Balance)

	assert.Equal(t, "Bill", r.KindLabel)
	assert.Equal(t, "1235", r.Number)
	assert.Equal(t, "N/A", r.CustomerPhone)
	require.Len(t, r.Items, 2)
	assert.Equal(t, "Cotton Kurti", r.Items[0].Name)
	assert.Equal(t, "Designer Ana", r.Items[1].Name)
	assert.Equal(t, money.Rupees(1700), r.Items[0].Amount)
	assert.Equal(t, money.Rupees(3800), r.Total)
	assert.Equal(t, money.Rupees(2800), r.Balance)
	assert.Equal(t, "Cash / UPI / Credit", r.ModeLabel)
	require.NotNil(t, r.DueDate)
	assert.Equal(t, issued.Add(ledger.DefaultGracePeriod), *r.DueDate)
}

func TestBuildAfterSettlement(t *testing.T) {
	desk := newDesk(t)
	entry := partialBill(t, desk, "9000000001")
	settled, _, err := desk.Pay(context.Background(), entry.Record.Number, money.Rupees(2800), "")
	require.NoError(t, err)

	r := Build(shop, settled.Record, settled.Balance)
	assert.Equal(t, "9000000001", r.CustomerPhone)
	assert.True(t, r.Balance.IsZero())
	assert.Equal(t, money.Rupees(3800), r.Paid)
	assert.Nil(t, r.DueDate)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "पट्टु", truncate("पट्टु", 12))
	assert.Equal(t, "abcdefghijkl", truncate("abcdefghijklmnop", 12))
}

type fakePDF struct {
	err   error
	html  string
	paper report.Paper
}

func (f *fakePDF) RenderHTML(_ context.Context, html string, paper report.Paper) ([]byte, error) {
	f.html, f.paper = html, paper
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7"), nil
}

func mount(t *testing.T, desk *records.Desk, pdf PDFConverter) http.Handler {
	t.Helper()
	rd, err := NewRenderer(pdf)
	require.NoError(t, err)
	r := chi.NewRouter()
	NewHandler(nil, shop, desk, rd).MountRoutes(r)
	return r
}

func TestHandlerHTML(t *testing.T) {
	desk := newDesk(t)
	partialBill(t, desk, "")
	h := mount(t, desk, nil)

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/1235/receipt", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "text/html; charset=utf-8", res.Header().Get("Content-Type"))
	body := res.Body.String()
	assert.Contains(t, body, "Sri Lakshmi Textiles")
	assert.Contains(t, body, "Bill No: 1235")
	assert.Contains(t, body, "Phone: N/A")
	assert.Contains(t, body, "₹3,800")
	assert.Contains(t, body, "25 Jan 2024")

	res = httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/9999/receipt", nil))
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/1235/receipt?format=pdf", nil))
	assert.Equal(t, http.StatusNotImplemented, res.Code)
}

func TestHandlerPDF(t *testing.T) {
	desk := newDesk(t)
	partialBill(t, desk, "")
	pdf := &fakePDF{}
	h := mount(t, desk, pdf)

	req := httptest.NewRequest(http.MethodGet, "/1235/receipt", nil)
	req.Header.Set("Accept", "application/pdf")
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "application/pdf", res.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.7", res.Body.String())
	assert.Contains(t, pdf.html, "Designer Ana")
	assert.Equal(t, report.ReceiptPaper, pdf.paper)

	pdf.err = errors.New("gotenberg response 500")
	res = httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/1235/receipt?format=pdf", nil))
	assert.Equal(t, http.StatusBadGateway, res.Code)
}
