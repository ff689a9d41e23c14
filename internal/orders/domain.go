// Package orders takes WhatsApp orders: numbered per day, paid by advance and
// moved through the order lifecycle until delivery.
package orders

import (
	"time"

	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/records"
)

// Order carries the fulfilment details the ledger record does not.
type Order struct {
	Number          string         `json:"number"`
	DayNumber       int            `json:"day_number"`
	Status          ledger.Status  `json:"status"`
	ShippingAddress string         `json:"shipping_address"`
	Notes           string         `json:"notes,omitempty"`
	History         []StatusChange `json:"history,omitempty"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// StatusChange is one step through the lifecycle.
type StatusChange struct {
	From ledger.Status `json:"from"`
	To   ledger.Status `json:"to"`
	At   time.Time     `json:"at"`
}

// View joins an order with its ledger record and balance.
type View struct {
	Order    Order                 `json:"order"`
	Record   *ledger.Record        `json:"record"`
	Balance  ledger.Balance        `json:"balance"`
	Next     []ledger.Status       `json:"next_statuses"`
	Payments []ledger.PaymentEvent `json:"payments,omitempty"`
	ClosedAt *time.Time            `json:"closed_at,omitempty"`
}

func newView(o Order, e records.Entry) View {
	return View{
		Order:    o,
		Record:   e.Record,
		Balance:  e.Balance,
		Next:     ledger.OrderLifecycle.Next(o.Status),
		Payments: e.Payments,
		ClosedAt: e.ClosedAt,
	}
}

// ItemInput is one ordered line. ProductID prices it from the catalog;
// otherwise Name and Price are taken as typed.
type ItemInput struct {
	ProductID string         `json:"product_id"`
	Name      string         `json:"name" validate:"required_without=ProductID,max=120"`
	Price     money.Money    `json:"price" validate:"gte=0,lte=100000000000000"`
	Quantity  money.Quantity `json:"quantity" validate:"gt=0,lte=100000"`
}

// CreateInput takes a new order. Without CustomerID the customer is recorded
// by name and phone only.
type CreateInput struct {
	CustomerID      string      `json:"customer_id"`
	CustomerName    string      `json:"customer_name" validate:"required_without=CustomerID,max=120"`
	CustomerPhone   string      `json:"customer_phone" validate:"omitempty,numeric,min=10,max=13"`
	Items           []ItemInput `json:"items" validate:"required,min=1,dive"`
	Advance         money.Money `json:"advance" validate:"gte=0"`
	ShippingAddress string      `json:"shipping_address" validate:"required,max=300"`
	Notes           string      `json:"notes" validate:"max=500"`
}

// StatusInput moves an order to Status.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

// ListQuery filters the order list. Zero values match everything.
type ListQuery struct {
	Day    int
	Status ledger.Status
	Query  string
}

// DayGroup lists the orders taken on one business day.
type DayGroup struct {
	Day    int    `json:"day"`
	Date   string `json:"date"`
	Orders []View `json:"orders"`
}

// Summary totals the listed orders.
type Summary struct {
	Orders    int         `json:"orders"`
	Delivered int         `json:"delivered"`
	Cancelled int         `json:"cancelled"`
	Total     money.Money `json:"total"`
	Advance   money.Money `json:"advance"`
	Pending   money.Money `json:"pending"`
}

// ListResult is the grouped order board.
type ListResult struct {
	Days    []DayGroup `json:"days"`
	Summary Summary    `json:"summary"`
}
