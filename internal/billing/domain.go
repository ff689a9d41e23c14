// Package billing runs the retail counter: server-side carts, checkout into
// numbered bills, payments against them and returns.
package billing

import (
	"time"

	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
)

// CartView is a snapshot of a stored cart.
type CartView struct {
	ID        string            `json:"id"`
	Items     []ledger.LineItem `json:"items"`
	Subtotal  money.Money       `json:"subtotal"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ItemInput names a catalog product and a quantity.
type ItemInput struct {
	ProductID string         `json:"product_id" validate:"required"`
	Quantity  money.Quantity `json:"quantity" validate:"gt=0,lte=100000"`
}

// ChangeInput adjusts a cart row by Delta units.
type ChangeInput struct {
	Delta int `json:"delta" validate:"ne=0,gte=-100000,lte=100000"`
}

// CheckoutInput finalizes either a stored cart or an inline item list.
type CheckoutInput struct {
	CartID     string       `json:"cart_id" validate:"required_without=Items,excluded_with=Items"`
	Items      []ItemInput  `json:"items" validate:"omitempty,dive"`
	CustomerID string       `json:"customer_id" validate:"required"`
	Discount   money.Money  `json:"discount" validate:"gte=0"`
	Mode       string       `json:"payment_mode" validate:"required"`
	Paid       *money.Money `json:"paid,omitempty"`
}

// ReturnInput takes back purchased items, optionally swapping them for others.
type ReturnInput struct {
	Items      []ledger.ReturnLine `json:"items" validate:"required,min=1,dive"`
	Resolution string              `json:"resolution" validate:"required"`
	Exchange   []ItemInput         `json:"exchange" validate:"omitempty,dive"`
	Reason     string              `json:"reason" validate:"max=200"`
}

// ReturnResult pairs the stored return with its human settlement line.
type ReturnResult struct {
	Return     *ledger.ReturnRecord `json:"return"`
	Settlement ledger.Settlement    `json:"settlement"`
	Summary    string               `json:"summary"`
}
