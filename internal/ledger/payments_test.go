package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/sequence"
)

func creditBill(t *testing.T) *Record {
	t.Helper()
	l := New(KindBill, sequence.NewCounter(0), WithClock(clock))
	rec, err := l.Finalize(context.Background(), FinalizeRequest{
		Cart:         sampleCart(t),
		Discount:     money.Rupees(200),
		Mode:         ModePartial,
		Paid:         rupees(3000),
		Counterparty: customer(),
	})
	require.NoError(t, err)
	return rec
}

func TestApplyPaymentsPartialThenSettled(t *testing.T) {
	rec := creditBill(t)

	bal, err := ApplyPayments(rec, nil)
	require.NoError(t, err)
	assert.Equal(t, PaymentPartial, bal.Status)
	assert.NotNil(t, bal.DueDate)

	at := fixedNow.Add(48 * time.Hour)
	first := NewPaymentEvent(rec, money.Rupees(1500), at, "UPI")
	bal, err = ApplyPayments(rec, []PaymentEvent{first})
	require.NoError(t, err)
	assert.Equal(t, money.Rupees(4500), bal.Paid)
	assert.Equal(t, money.Rupees(2500), bal.Pending)
	assert.Equal(t, PaymentPartial, bal.Status)
	require.NotNil(t, bal.LastPaymentAt)
	assert.Equal(t, at, *bal.LastPaymentAt)

	second := NewPaymentEvent(rec, money.Rupees(2500), at.Add(time.Hour), "")
	bal, err = ApplyPayments(rec, []PaymentEvent{first, second})
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, bal.Status)
	assert.True(t, bal.Pending.IsZero())
	assert.Nil(t, bal.DueDate)

	// The record itself is a snapshot and keeps its checkout plan.
	assert.Equal(t, money.Rupees(4000), rec.Plan.Pending)
}

func TestApplyPaymentsRejections(t *testing.T) {
	rec := creditBill(t)

	_, err := ApplyPayments(rec, []PaymentEvent{NewPaymentEvent(rec, money.Rupees(4001), fixedNow, "")})
	require.ErrorIs(t, err, ErrPaidExceedsTotal)

	_, err = ApplyPayments(rec, []PaymentEvent{NewPaymentEvent(rec, money.Zero, fixedNow, "")})
	require.ErrorIs(t, err, ErrInvalidAmount)

	other := rec.Clone()
	other.Number = "9999"
	_, err = ApplyPayments(rec, []PaymentEvent{NewPaymentEvent(other, money.Rupees(10), fixedNow, "")})
	require.Error(t, err)
}

func TestApplyPaymentsCreditStartsPending(t *testing.T) {
	l := New(KindBill, sequence.NewCounter(0), WithClock(clock))
	rec, err := l.Finalize(context.Background(), FinalizeRequest{Cart: sampleCart(t), Mode: ModeCredit, Counterparty: customer()})
	require.NoError(t, err)

	bal, err := ApplyPayments(rec, nil)
	require.NoError(t, err)
	assert.Equal(t, PaymentPending, bal.Status)
	assert.Equal(t, money.Rupees(7200), bal.Pending)
}

func TestDaysPastDue(t *testing.T) {
	due := time.Date(2024, 1, 30, 10, 0, 0, 0, time.UTC)
	lateDue := time.Date(2024, 1, 30, 20, 0, 0, 0, time.UTC)
	ist := time.FixedZone("IST", 5*3600+1800)
	cases := []struct {
		name string
		due  time.Time
		asOf time.Time
		want int
	}{
		{"before due", due, due.Add(-24 * time.Hour), -1},
		{"later the same day", due, due.Add(13 * time.Hour), 0},
		{"next morning", due, due.Add(23 * time.Hour), 1},
		{"a month on", due, due.AddDate(0, 1, 0), 31},
		// 20:00 UTC on the 30th is already the 31st in IST.
		{"same day in the shop zone", lateDue, time.Date(2024, 1, 31, 23, 0, 0, 0, ist), 0},
		{"next day in the shop zone", lateDue, time.Date(2024, 2, 1, 0, 30, 0, 0, ist), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DaysPastDue(tc.due, tc.asOf))
		})
	}
}

func TestBalanceOverdue(t *testing.T) {
	rec := creditBill(t)
	bal, err := ApplyPayments(rec, nil)
	require.NoError(t, err)
	require.NotNil(t, bal.DueDate)
	due := *bal.DueDate

	assert.False(t, bal.Overdue(due))
	assert.False(t, bal.Overdue(due.Add(time.Hour)))
	nextDay := time.Date(due.Year(), due.Month(), due.Day()+1, 0, 0, 1, 0, due.Location())
	assert.True(t, bal.Overdue(nextDay))

	settled, err := ApplyPayments(rec, []PaymentEvent{NewPaymentEvent(rec, bal.Pending, due, "cash")})
	require.NoError(t, err)
	assert.False(t, settled.Overdue(due.AddDate(1, 0, 0)))
}
