package records

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/shopledger/internal/journal"
	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/observability"
	"github.com/odyssey-erp/shopledger/internal/sequence"
)

var issued = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu       sync.Mutex
	balances []ledger.Balance
	err      error
}

func (n *recordingNotifier) PaymentSummary(_ context.Context, _ *ledger.Record, bal ledger.Balance) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.balances = append(n.balances, bal)
	return n.err
}

func newDesk(notifier Notifier) *Desk {
	l := ledger.New(ledger.KindBill, sequence.NewCounter(1234), ledger.WithClock(func() time.Time { return issued }))
	return NewDesk(l, journal.NewStore(), Config{
		Notifier: notifier,
		Metrics:  observability.NewMetrics().Ledger(),
	})
}

func checkout(t *testing.T, d *Desk, mode ledger.PaymentMode, paid *money.Money) Entry {
	t.Helper()
	cart := ledger.NewCart()
	require.NoError(t, cart.AddItem(ledger.Product{ID: "1", Name: "Silk Saree", Price: money.Rupees(5500)}, 1))
	require.NoError(t, cart.AddItem(ledger.Product{ID: "2", Name: "Cotton Kurti", Price: money.Rupees(850)}, 2))
	entry, err := d.Finalize(context.Background(), ledger.FinalizeRequest{
		Cart:         cart,
		Discount:     money.Rupees(200),
		Mode:         mode,
		Paid:         paid,
		Counterparty: ledger.Counterparty{Type: ledger.PartyCustomer, ID: "2", Name: "Priya", Phone: "9876543211"},
	})
	require.NoError(t, err)
	return entry
}

func TestFinalizeStoresAndNotifies(t *testing.T) {
	n := &recordingNotifier{}
	d := newDesk(n)
	paid := money.Rupees(3000)
	entry := checkout(t, d, ledger.ModePartial, &paid)

	assert.Equal(t, "1235", entry.Record.Number)
	assert.Equal(t, money.Rupees(4000), entry.Balance.Pending)
	assert.Equal(t, ledger.PaymentPartial, entry.Balance.Status)
	require.Len(t, n.balances, 1)

	got, err := d.Get(context.Background(), "1235")
	require.NoError(t, err)
	assert.Equal(t, entry.Record, got.Record)
	assert.Empty(t, got.Payments)
}

func TestFinalizeRejectionDoesNotStore(t *testing.T) {
	d := newDesk(nil)
	_, err := d.Finalize(context.Background(), ledger.FinalizeRequest{Cart: ledger.NewCart(), Mode: ledger.ModeFull})
	require.ErrorIs(t, err, ledger.ErrEmptyCart)
	list, err := d.List(context.Background(), journal.Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPaySettlesAndSurvivesNotifierFailure(t *testing.T) {
	n := &recordingNotifier{err: errors.New("queue down")}
	d := newDesk(n)
	checkout(t, d, ledger.ModeCredit, nil)

	entry, ev, err := d.Pay(context.Background(), "1235", money.Rupees(2000), " cash ")
	require.NoError(t, err)
	assert.Equal(t, "cash", ev.Note)
	assert.Equal(t, money.Rupees(5000), entry.Balance.Pending)

	_, _, err = d.Pay(context.Background(), "1235", money.Rupees(5001), "")
	require.ErrorIs(t, err, ledger.ErrPaidExceedsTotal)

	entry, _, err = d.Pay(context.Background(), "1235", money.Rupees(5000), "")
	require.NoError(t, err)
	assert.Equal(t, ledger.PaymentPaid, entry.Balance.Status)
	assert.Nil(t, entry.Balance.DueDate)
	assert.Len(t, n.balances, 3)

	_, _, err = d.Pay(context.Background(), "9999", money.Rupees(1), "")
	require.ErrorIs(t, err, journal.ErrNotFound)
}

func TestReturnThroughDesk(t *testing.T) {
	d := newDesk(nil)
	checkout(t, d, ledger.ModeFull, nil)
	ret, err := d.Return(context.Background(), "1235", ledger.ReturnRequest{
		Returned:   []ledger.ReturnLine{{ProductID: "2", Quantity: 1}},
		Resolution: ledger.ResolutionRefund,
	}, "wrong size")
	require.NoError(t, err)
	assert.Equal(t, money.Rupees(-850), ret.Delta)

	_, err = d.Return(context.Background(), "1235", ledger.ReturnRequest{
		Returned:   []ledger.ReturnLine{{ProductID: "2", Quantity: 2}},
		Resolution: ledger.ResolutionRefund,
	}, "")
	require.ErrorIs(t, err, ledger.ErrOverReturn)

	returns, err := d.Returns(context.Background(), "1235")
	require.NoError(t, err)
	require.Len(t, returns, 1)
	assert.Equal(t, "wrong size", returns[0].Reason)
}

func TestAging(t *testing.T) {
	d := newDesk(nil)
	checkout(t, d, ledger.ModeCredit, nil)
	paid := money.Rupees(3000)
	checkout(t, d, ledger.ModePartial, &paid)
	checkout(t, d, ledger.ModeFull, nil)

	report, err := d.Aging(context.Background(), issued.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Open)
	assert.Zero(t, report.Overdue)
	assert.Equal(t, money.Rupees(11000), report.Current)

	report, err = d.Aging(context.Background(), issued.Add(60*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Overdue)
	assert.Equal(t, money.Rupees(11000), report.Days60)
	assert.Equal(t, money.Rupees(11000), report.Total)
}

func TestAgingCountsCalendarDays(t *testing.T) {
	d := newDesk(nil)
	checkout(t, d, ledger.ModeCredit, nil)
	due := issued.Add(ledger.DefaultGracePeriod)

	report, err := d.Aging(context.Background(), due.Add(13*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, report.Overdue)
	assert.Equal(t, money.Rupees(7000), report.Current)

	// 23 hours past due is the next calendar day.
	report, err = d.Aging(context.Background(), due.Add(23*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Overdue)
	assert.Zero(t, report.Current)
	assert.Equal(t, money.Rupees(7000), report.Days30)
}

func TestAgingSkipsClosedRecords(t *testing.T) {
	d := newDesk(nil)
	ctx := context.Background()
	paid := money.Rupees(3000)
	cancelled := checkout(t, d, ledger.ModePartial, &paid)
	checkout(t, d, ledger.ModeCredit, nil)

	require.NoError(t, d.Close(ctx, cancelled.Record.Number))
	report, err := d.Aging(ctx, issued.Add(60*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Open)
	assert.Equal(t, 1, report.Overdue)
	assert.Equal(t, money.Rupees(7000), report.Total)

	e, err := d.Get(ctx, cancelled.Record.Number)
	require.NoError(t, err)
	require.NotNil(t, e.ClosedAt)
	assert.Equal(t, money.Rupees(4000), e.Balance.Pending)

	_, _, err = d.Pay(ctx, cancelled.Record.Number, money.Rupees(100), "")
	require.ErrorIs(t, err, journal.ErrClosed)
}

func TestHandlerPayments(t *testing.T) {
	d := newDesk(nil)
	checkout(t, d, ledger.ModeCredit, nil)
	r := chi.NewRouter()
	NewHandler(nil, d, nil).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/1235/payments", strings.NewReader(`{"amount":"1500","note":"upi"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/1235/payments", strings.NewReader(`{"amount":"0"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/1235/payments", strings.NewReader(`{"amount":"99999"}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/1235/payments", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Payments []ledger.PaymentEvent `json:"payments"`
		Balance  ledger.Balance        `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Payments, 1)
	assert.Equal(t, money.Rupees(5500), body.Balance.Pending)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/aging?as_of=bad", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
