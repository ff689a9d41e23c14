package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmetic(t *testing.T) {
	price := Rupees(850)
	assert.Equal(t, Rupees(1700), price.Mul(2))
	assert.Equal(t, Rupees(7200), Sum(Rupees(5500), price.Mul(2)))
	assert.Equal(t, Paise(85000), price)

	got, err := Rupees(7200).Sub(Rupees(200))
	require.NoError(t, err)
	assert.Equal(t, Rupees(7000), got)

	_, err = Rupees(100).Sub(Rupees(101))
	require.ErrorIs(t, err, ErrNegativeResult)

	delta := Rupees(850).Diff(Rupees(2200))
	assert.True(t, delta.IsNegative())
	assert.Equal(t, Rupees(1350), delta.Abs())
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Money
	}{
		{"850", Rupees(850)},
		{"3000.5", Paise(300050)},
		{" 0.01 ", Paise(1)},
		{"7000.00", Rupees(7000)},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := Parse("12.345")
	require.ErrorIs(t, err, ErrPrecision)
	_, err = Parse("abc")
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = Parse("")
	require.ErrorIs(t, err, ErrInvalidAmount)

	// 2^64 + 1 paise would wrap to 0.01 if truncated to int64.
	_, err = Parse("184467440737095516.17")
	require.ErrorIs(t, err, ErrOutOfRange)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = Parse("-184467440737095516.17")
	require.ErrorIs(t, err, ErrOutOfRange)

	got, err := Parse("1000000000000")
	require.NoError(t, err)
	assert.Equal(t, MaxAmount, got)
	_, err = Parse("1000000000000.01")
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestCheckedArithmetic(t *testing.T) {
	got, err := Rupees(850).MulChecked(3)
	require.NoError(t, err)
	assert.Equal(t, Rupees(2550), got)

	_, err = Rupees(850).MulChecked(MaxQuantity + 1)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = Rupees(850).MulChecked(-1)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = MaxAmount.MulChecked(2)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = Paise(1 << 62).MulChecked(4)
	require.ErrorIs(t, err, ErrOutOfRange)

	got, err = MaxAmount.MulChecked(1)
	require.NoError(t, err)
	assert.Equal(t, MaxAmount, got)

	got, err = Rupees(1).AddChecked(MaxAmount - Rupees(1))
	require.NoError(t, err)
	assert.Equal(t, MaxAmount, got)
	_, err = MaxAmount.AddChecked(Paise(1))
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = Paise(1 << 62).AddChecked(Paise(1 << 62))
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestFromDecimal(t *testing.T) {
	m, err := FromDecimal(decimal.RequireFromString("5500.25"))
	require.NoError(t, err)
	assert.Equal(t, Paise(550025), m)
	assert.True(t, m.Decimal().Equal(decimal.RequireFromString("5500.25")))
	assert.Equal(t, "5500.25", m.String())
}

func TestJSON(t *testing.T) {
	type payload struct {
		Amount Money `json:"amount"`
	}
	raw, err := json.Marshal(payload{Amount: Rupees(4000)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"4000.00"}`, string(raw))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"1350.50"}`), &p))
	assert.Equal(t, Paise(135050), p.Amount)
	require.NoError(t, json.Unmarshal([]byte(`{"amount":200}`), &p))
	assert.Equal(t, Rupees(200), p.Amount)
	require.ErrorIs(t, json.Unmarshal([]byte(`{"amount":1e300}`), &p), ErrOutOfRange)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "₹7,000", Format(Rupees(7000)))
	assert.Equal(t, "₹850", Format(Rupees(850)))
	assert.Equal(t, "₹0", Format(Zero))
	assert.Equal(t, "-₹1,350", Format(Rupees(-1350)))
	assert.Equal(t, "₹12.05", Format(Paise(1205)))
}
