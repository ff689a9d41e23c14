package courier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/shopledger/internal/directory"
	"github.com/odyssey-erp/shopledger/internal/journal"
	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/records"
	"github.com/odyssey-erp/shopledger/internal/sequence"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

var booked = time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC)

func newService(t *testing.T) *Service {
	t.Helper()
	l := ledger.New(ledger.KindShipment, sequence.NewCounter(0),
		ledger.WithClock(func() time.Time { return booked }),
		ledger.WithNumberFunc(ledger.PrefixedNumber("DT")))
	desk := records.NewDesk(l, journal.NewStore(), records.Config{})
	customers := directory.NewService(directory.NewMemoryRepository(directory.SeedCustomers(), nil, nil), nil)
	return NewService(desk, customers, nil)
}

func bookInput() BookInput {
	return BookInput{
		CustomerID:   "1",
		AWB:          "awb123456789",
		DeliveryType: DeliveryAir,
		To:           "Chennai",
		WeightKg:     decimal.RequireFromString("1.5"),
		Charges:      money.Rupees(450),
		GST:          money.Rupees(81),
		PaymentMode:  "cash",
	}
}

func TestBookBillsChargesAndGST(t *testing.T) {
	svc := newService(t)
	v, err := svc.Book(context.Background(), bookInput())
	require.NoError(t, err)

	assert.Equal(t, "DT000001", v.Shipment.Number)
	assert.Equal(t, "AWB123456789", v.Shipment.AWB)
	assert.Equal(t, DefaultOrigin, v.Shipment.From)
	assert.Equal(t, ledger.ShipmentBooked, v.Shipment.Status)
	require.Len(t, v.Record.Items, 2)
	assert.Equal(t, "GST", v.Record.Items[1].Name)
	assert.Equal(t, money.Rupees(531), v.Record.Total)
	assert.Equal(t, ledger.PaymentPaid, v.Balance.Status)
	assert.Equal(t, []ledger.Status{ledger.ShipmentInTransit, ledger.ShipmentCancelled}, v.Next)
}

func TestBookCreditAndValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	in := bookInput()
	in.PaymentMode, in.Paid, in.GST, in.BookingDate = "credit", money.Rupees(200), 0, "2024-01-14"
	v, err := svc.Book(ctx, in)
	require.NoError(t, err)
	require.Len(t, v.Record.Items, 1)
	assert.Equal(t, ledger.ModePartial, v.Record.Plan.Mode)
	assert.Equal(t, money.Rupees(250), v.Balance.Pending)
	assert.Equal(t, 14, v.Shipment.BookingDate.Day())

	_, err = svc.Book(ctx, bookInput())
	require.ErrorIs(t, err, journal.ErrDuplicate)

	in = bookInput()
	in.AWB, in.WeightKg = "AWB2", decimal.Zero
	_, err = svc.Book(ctx, in)
	require.ErrorIs(t, err, ErrInvalidWeight)

	in = bookInput()
	in.AWB, in.PaymentMode = "AWB3", "cheque"
	_, err = svc.Book(ctx, in)
	require.Error(t, err)

	in = bookInput()
	in.AWB, in.CustomerID = "AWB4", "404"
	_, err = svc.Book(ctx, in)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTrackAndStatus(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	_, err := svc.Book(ctx, bookInput())
	require.NoError(t, err)

	v, err := svc.Track(ctx, " awb123456789 ")
	require.NoError(t, err)
	assert.Equal(t, "DT000001", v.Shipment.Number)

	v, err = svc.UpdateStatus(ctx, "DT000001", StatusInput{Status: "in_transit"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, "DT000001", StatusInput{Status: "cancelled"})
	require.ErrorIs(t, err, ledger.ErrInvalidTransition)
	v, err = svc.UpdateStatus(ctx, "DT000001", StatusInput{Status: "delivered"})
	require.NoError(t, err)
	assert.Empty(t, v.Next)

	list, err := svc.List(ctx, ledger.ShipmentDelivered, "chennai")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = svc.List(ctx, ledger.ShipmentBooked, "")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Track(ctx, "nope")
	require.ErrorIs(t, err, journal.ErrNotFound)
}

func TestCancelClosesShipment(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	in := bookInput()
	in.PaymentMode, in.Paid = "credit", money.Rupees(100)
	_, err := svc.Book(ctx, in)
	require.NoError(t, err)

	v, err := svc.UpdateStatus(ctx, "DT000001", StatusInput{Status: "cancelled"})
	require.NoError(t, err)
	require.NotNil(t, v.ClosedAt)
	assert.Equal(t, money.Rupees(431), v.Balance.Pending)

	aging, err := svc.Desk().Aging(ctx, booked.AddDate(0, 3, 0))
	require.NoError(t, err)
	assert.Zero(t, aging.Open)
	assert.True(t, aging.Total.IsZero())
}

func TestHandler(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil, newService(t)).MountRoutes(r)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"customer_id":"2","awb":"AWB987654321","delivery_type":"surface","to":"Bengaluru","weight_kg":"2.25","charges":"380","gst":"68","payment_mode":"credit"}`)))
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	assert.Contains(t, res.Body.String(), `"weight_kg":"2.25"`)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/track/AWB987654321", nil))
	assert.Equal(t, http.StatusOK, res.Code)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/aging?as_of=2024-03-15", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"days_31_60":"448.00"`)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"customer_id":"2","awb":"AWB987654321","to":"Bengaluru","weight_kg":"1","charges":"380","payment_mode":"cash"}`)))
	assert.Equal(t, http.StatusConflict, res.Code)
}
