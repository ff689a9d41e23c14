// Package courier books DTDC shipments for customers. A booking bills the
// courier charges and GST as two lines and follows the shipment lifecycle.
package courier

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/records"
)

// DeliveryType is the DTDC service level.
type DeliveryType string

const (
	DeliverySurface DeliveryType = "surface"
	DeliveryAir     DeliveryType = "air"
)

// DefaultOrigin is where the shop books from.
const DefaultOrigin = "Hyderabad"

// Shipment holds the booking details.
type Shipment struct {
	Number       string          `json:"number"`
	AWB          string          `json:"awb"`
	BookingDate  time.Time       `json:"booking_date"`
	DeliveryType DeliveryType    `json:"delivery_type"`
	From         string          `json:"from"`
	To           string          `json:"to"`
	WeightKg     decimal.Decimal `json:"weight_kg"`
	Charges      money.Money     `json:"charges"`
	GST          money.Money     `json:"gst"`
	Status       ledger.Status   `json:"status"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// View joins a shipment with its ledger record.
type View struct {
	Shipment Shipment              `json:"shipment"`
	Record   *ledger.Record        `json:"record"`
	Balance  ledger.Balance        `json:"balance"`
	Next     []ledger.Status       `json:"next_statuses"`
	Payments []ledger.PaymentEvent `json:"payments,omitempty"`
	ClosedAt *time.Time            `json:"closed_at,omitempty"`
}

func newView(s Shipment, e records.Entry) View {
	return View{
		Shipment: s,
		Record:   e.Record,
		Balance:  e.Balance,
		Next:     ledger.ShipmentLifecycle.Next(s.Status),
		Payments: e.Payments,
		ClosedAt: e.ClosedAt,
	}
}

// BookInput books a shipment. Cash and online bookings are paid in full;
// credit bookings take Paid as an advance.
type BookInput struct {
	CustomerID   string          `json:"customer_id" validate:"required"`
	AWB          string          `json:"awb" validate:"required,alphanum,max=20"`
	BookingDate  string          `json:"booking_date" validate:"omitempty,datetime=2006-01-02"`
	DeliveryType DeliveryType    `json:"delivery_type" validate:"omitempty,oneof=surface air"`
	From         string          `json:"from" validate:"max=80"`
	To           string          `json:"to" validate:"required,max=80"`
	WeightKg     decimal.Decimal `json:"weight_kg"`
	Charges      money.Money     `json:"charges" validate:"gt=0"`
	GST          money.Money     `json:"gst" validate:"gte=0"`
	PaymentMode  string          `json:"payment_mode" validate:"required,oneof=cash online credit"`
	Paid         money.Money     `json:"paid" validate:"gte=0"`
}

// StatusInput moves a shipment to Status.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}
