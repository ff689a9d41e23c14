// Package ledger holds the transaction ledger core: carts, payment plans,
// finalized records, payments against them and return/exchange resolution.
package ledger

import (
	"fmt"
	"strings"

	"github.com/odyssey-erp/shopledger/internal/money"
)

// Product is the catalog view a cart needs.
type Product struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Price money.Money `json:"price"`
}

// LineItem is one product row of a cart or record.
type LineItem struct {
	ProductID string         `json:"product_id"`
	Name      string         `json:"name"`
	UnitPrice money.Money    `json:"unit_price"`
	Quantity  money.Quantity `json:"quantity"`
}

// Amount is UnitPrice × Quantity.
func (l LineItem) Amount() money.Money {
	return l.UnitPrice.Mul(l.Quantity)
}

// Cart is a mutable, insertion-ordered set of line items keyed by product.
// A Cart is not safe for concurrent use.
type Cart struct {
	items []LineItem
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// AddItem adds qty units of product, incrementing an existing row. A row may
// hold at most money.MaxQuantity units and the cart subtotal may not exceed
// money.MaxAmount.
func (c *Cart) AddItem(p Product, qty money.Quantity) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: product id required", ErrInvalidLine)
	}
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidLine)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: negative price for %s", ErrInvalidLine, p.ID)
	}
	i := c.indexOf(p.ID)
	line := LineItem{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price, Quantity: qty}
	if i >= 0 {
		line = c.items[i]
		if qty > money.MaxQuantity-line.Quantity {
			return fmt.Errorf("%w: more than %d units of %s", ErrInvalidLine, money.MaxQuantity, p.ID)
		}
		line.Quantity += qty
	}
	if err := c.checkLine(i, line); err != nil {
		return err
	}
	if i >= 0 {
		c.items[i] = line
		return nil
	}
	c.items = append(c.items, line)
	return nil
}

// ChangeQuantity adjusts a row by delta, clamping at zero. A row reaching zero
// is removed. Unknown products are ignored. Growing a row past the limits of
// AddItem fails and leaves the cart unchanged.
func (c *Cart) ChangeQuantity(productID string, delta int) error {
	i := c.indexOf(productID)
	if i < 0 {
		return nil
	}
	if delta > int(money.MaxQuantity) {
		return fmt.Errorf("%w: more than %d units of %s", ErrInvalidLine, money.MaxQuantity, productID)
	}
	next := int(c.items[i].Quantity) + delta
	if next <= 0 {
		c.removeAt(i)
		return nil
	}
	line := c.items[i]
	line.Quantity = money.Quantity(next)
	if err := c.checkLine(i, line); err != nil {
		return err
	}
	c.items[i] = line
	return nil
}

// RemoveItem drops a row. Unknown products are ignored.
func (c *Cart) RemoveItem(productID string) {
	if i := c.indexOf(productID); i >= 0 {
		c.removeAt(i)
	}
}

// Subtotal sums all line amounts.
func (c *Cart) Subtotal() money.Money {
	return sumLines(c.items)
}

// Items returns a copy of the rows in insertion order.
func (c *Cart) Items() []LineItem {
	return cloneLines(c.items)
}

// Len returns the number of rows.
func (c *Cart) Len() int { return len(c.items) }

// IsEmpty reports whether the cart has no rows.
func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// Clear removes every row.
func (c *Cart) Clear() { c.items = nil }

func (c *Cart) indexOf(productID string) int {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.items = append(c.items[:i], c.items[i+1:]...)
}

// checkLine fails when line, stored at index i (or appended when i < 0),
// would exceed the quantity cap or push the subtotal past money.MaxAmount.
func (c *Cart) checkLine(i int, line LineItem) error {
	total, err := line.UnitPrice.MulChecked(line.Quantity)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidLine, line.ProductID, err)
	}
	for j, l := range c.items {
		if j == i {
			continue
		}
		if total, err = total.AddChecked(l.Amount()); err != nil {
			return fmt.Errorf("%w: subtotal: %w", ErrInvalidLine, err)
		}
	}
	return nil
}

func sumLines(lines []LineItem) money.Money {
	var total money.Money
	for _, l := range lines {
		total = total.Add(l.Amount())
	}
	return total
}

func cloneLines(lines []LineItem) []LineItem {
	if len(lines) == 0 {
		return nil
	}
	out := make([]LineItem, len(lines))
	copy(out, lines)
	return out
}
