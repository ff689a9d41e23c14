// Package money provides exact currency and quantity arithmetic for the shop ledger.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrNegativeResult indicates an unsigned subtraction went below zero.
	ErrNegativeResult = errors.New("money: negative result")
	// ErrPrecision indicates an amount finer than one paisa.
	ErrPrecision = errors.New("money: more than two decimal places")
	// ErrInvalidAmount indicates an amount that could not be parsed.
	ErrInvalidAmount = errors.New("money: invalid amount")
	// ErrOutOfRange indicates an amount or quantity beyond MaxAmount or
	// MaxQuantity. It wraps ErrInvalidAmount.
	ErrOutOfRange = fmt.Errorf("%w: out of range", ErrInvalidAmount)
)

// Money is an amount in paise. Stored amounts are never negative; only deltas
// produced by Diff carry a sign.
type Money int64

// Quantity counts item units.
type Quantity int

// Zero is the empty amount.
const Zero Money = 0

const paisePerRupee = 100

// MaxAmount is the largest amount the ledger accepts: ₹1,00,00,00,00,000.00
// (one lakh crore). Sums of up to MaxQuantity such amounts stay well inside
// int64.
const MaxAmount Money = 1_000_000_000_000 * paisePerRupee

// MaxQuantity is the largest unit count a single line may carry.
const MaxQuantity Quantity = 100_000

// Rupees converts whole rupees into Money.
func Rupees(n int64) Money {
	return Money(n * paisePerRupee)
}

// Paise wraps a raw paise count.
func Paise(n int64) Money {
	return Money(n)
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return m + o
}

// Sub returns m - o, failing when the result would be negative.
func (m Money) Sub(o Money) (Money, error) {
	if o > m {
		return 0, fmt.Errorf("%w: %s - %s", ErrNegativeResult, m, o)
	}
	return m - o, nil
}

// Diff returns the signed difference m - o.
func (m Money) Diff(o Money) Money {
	return m - o
}

// Mul multiplies a unit price by a quantity. Callers holding unchecked input
// use MulChecked.
func (m Money) Mul(q Quantity) Money {
	return m * Money(q)
}

// MulChecked is Mul that fails with ErrOutOfRange when the quantity exceeds
// MaxQuantity or the product exceeds MaxAmount.
func (m Money) MulChecked(q Quantity) (Money, error) {
	if q < 0 || q > MaxQuantity {
		return 0, fmt.Errorf("%w: quantity %d", ErrOutOfRange, q)
	}
	if m.Abs() > MaxAmount {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, m)
	}
	p := m * Money(q)
	if p.Abs() > MaxAmount {
		return 0, fmt.Errorf("%w: %s × %d", ErrOutOfRange, m, q)
	}
	return p, nil
}

// AddChecked is Add that fails with ErrOutOfRange when either operand or the
// sum exceeds MaxAmount.
func (m Money) AddChecked(o Money) (Money, error) {
	if m.Abs() > MaxAmount || o.Abs() > MaxAmount {
		return 0, fmt.Errorf("%w: %s + %s", ErrOutOfRange, m, o)
	}
	s := m + o
	if s.Abs() > MaxAmount {
		return 0, fmt.Errorf("%w: %s + %s", ErrOutOfRange, m, o)
	}
	return s, nil
}

// Abs returns the magnitude of a signed amount.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m == 0 }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m < 0 }

// Paise returns the raw paise count.
func (m Money) Paise() int64 { return int64(m) }

// Decimal returns the amount in rupees.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String renders the amount as a plain rupee decimal, e.g. "7000.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

var maxAmountDecimal = decimal.NewFromInt(int64(MaxAmount))

// FromDecimal converts a rupee decimal into Money. Amounts whose magnitude
// exceeds MaxAmount fail with ErrOutOfRange.
func FromDecimal(d decimal.Decimal) (Money, error) {
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: %s", ErrPrecision, d.String())
	}
	if shifted.Abs().GreaterThan(maxAmountDecimal) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, d.String())
	}
	return Money(shifted.IntPart()), nil
}

// Parse reads a rupee amount such as "850" or "3000.50".
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromDecimal(d)
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MarshalJSON encodes the amount as a rupee string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a rupee string or a JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" {
		*m = 0
		return nil
	}
	v, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Sum adds a list of amounts.
func Sum(values ...Money) Money {
	var total Money
	for _, v := range values {
		total += v
	}
	return total
}
