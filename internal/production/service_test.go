package production

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/shopledger/internal/shared"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func newService(c *clock) *Service {
	return NewService(NewMemoryRepository(), c.Now, nil)
}

func TestEntriesAndDailySummary(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC)}
	svc := newService(c)

	for _, in := range []EntryInput{
		{Type: TypeSaree, DesignName: "Floral Block Print", Quantity: 12},
		{Type: TypeSaree, DesignName: "Paisley Design", Quantity: 8},
		{Type: TypeDress, DesignName: "Traditional Kurta", Quantity: 15},
		{Type: TypeSaree, DesignName: "Abstract Pattern", Quantity: 10, Date: "2024-01-14"},
	} {
		_, err := svc.AddEntry(ctx, in)
		require.NoError(t, err)
	}

	sum, err := svc.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, Summary{Day: "2024-01-15", Sarees: 20, Dresses: 15}, sum)

	sum, err = svc.Summary(ctx, "2024-01-14")
	require.NoError(t, err)
	assert.Equal(t, 10, sum.Sarees)

	all, err := svc.Entries(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "2024-01-15", all[0].Day)
	assert.Equal(t, "2024-01-14", all[3].Day)

	paisley, err := svc.Entries(ctx, "PAISLEY", "")
	require.NoError(t, err)
	require.Len(t, paisley, 1)
	assert.Equal(t, 8, paisley[0].Quantity)

	_, err = svc.Entries(ctx, "", "15/01/2024")
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestEntryValidation(t *testing.T) {
	svc := newService(&clock{now: time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC)})
	var verrs validator.ValidationErrors
	for _, in := range []EntryInput{
		{Type: "shawl", DesignName: "Ikat", Quantity: 1},
		{Type: TypeSaree, Quantity: 1},
		{Type: TypeSaree, DesignName: "Ikat", Quantity: 0},
		{Type: TypeSaree, DesignName: "Ikat", Quantity: 100001},
		{Type: TypeSaree, DesignName: "Ikat", Quantity: 1, Date: "yesterday"},
	} {
		_, err := svc.AddEntry(context.Background(), in)
		require.ErrorAs(t, err, &verrs, "%+v", in)
	}
}

func TestRollingSendAndReceive(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)}
	svc := newService(c)

	first, err := svc.Roll(ctx, RollingInput{Action: ActionSend, Quantity: 60})
	require.NoError(t, err)
	require.Len(t, first.Batches, 1)
	assert.Equal(t, 60, first.Batches[0].Pending)
	c.Set(time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC))
	_, err = svc.Roll(ctx, RollingInput{Action: ActionSend, Quantity: 40})
	require.NoError(t, err)
	c.Set(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	third, err := svc.Roll(ctx, RollingInput{Action: ActionSend, Quantity: 50})
	require.NoError(t, err)

	// 70 back: the oldest batch is cleared and 10 come off the next.
	rec, err := svc.Roll(ctx, RollingInput{Action: ActionReceive, Quantity: 70})
	require.NoError(t, err)
	require.Len(t, rec.Batches, 2)
	assert.Equal(t, 0, rec.Batches[0].Pending)
	assert.Equal(t, 30, rec.Batches[1].Pending)

	rec, err = svc.Roll(ctx, RollingInput{Action: ActionReceive, Quantity: 35, BatchID: third.Batches[0].ID.String()})
	require.NoError(t, err)
	require.Len(t, rec.Batches, 1)
	assert.Equal(t, 35, rec.Batches[0].Returned)
	assert.Equal(t, 15, rec.Batches[0].Pending)

	sum, err := svc.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 45, sum.AtRolling)
	assert.Equal(t, 2, sum.OpenBatches)

	batches, err := svc.Batches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, "2024-01-15", batches[0].Day)
	assert.Equal(t, 60, batches[2].Returned)
}

func TestRollingRejectsOverReceive(t *testing.T) {
	ctx := context.Background()
	svc := newService(&clock{now: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)})
	a, err := svc.Roll(ctx, RollingInput{Action: ActionSend, Quantity: 20})
	require.NoError(t, err)
	_, err = svc.Roll(ctx, RollingInput{Action: ActionSend, Quantity: 5})
	require.NoError(t, err)

	_, err = svc.Roll(ctx, RollingInput{Action: ActionReceive, Quantity: 26})
	require.ErrorIs(t, err, ErrOverReceive)
	_, err = svc.Roll(ctx, RollingInput{Action: ActionReceive, Quantity: 21, BatchID: a.Batches[0].ID.String()})
	require.ErrorIs(t, err, ErrOverReceive)
	_, err = svc.Roll(ctx, RollingInput{Action: ActionReceive, Quantity: 1, BatchID: "6f1c2a9e-4b7d-4c55-9a0e-1d2b3c4d5e6f"})
	require.ErrorIs(t, err, shared.ErrNotFound)

	sum, err := svc.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 25, sum.AtRolling, "rejected receives change nothing")
}

func TestHandler(t *testing.T) {
	r := chi.NewRouter()
	svc := newService(&clock{now: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)})
	NewHandler(nil, svc).MountRoutes(r)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		res := httptest.NewRecorder()
		r.ServeHTTP(res, httptest.NewRequest(method, path, strings.NewReader(body)))
		return res
	}

	res := do(http.MethodPost, "/entries", `{"type":"dress","design_name":"Indo-Western","quantity":6}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	res = do(http.MethodPost, "/entries", `{"type":"dress","design_name":"Indo-Western","quantity":-1}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = do(http.MethodPost, "/rolling", `{"action":"send","quantity":50}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	res = do(http.MethodPost, "/rolling", `{"action":"receive","quantity":51}`)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	res = do(http.MethodPost, "/rolling", `{"action":"receive","quantity":35}`)
	require.Equal(t, http.StatusOK, res.Code)

	res = do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, res.Code)
	var sum Summary
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &sum))
	assert.Equal(t, Summary{Day: "2024-01-15", Dresses: 6, AtRolling: 15, OpenBatches: 1}, sum)

	res = do(http.MethodGet, "/entries?q=indo", "")
	require.Equal(t, http.StatusOK, res.Code)
	var list struct {
		Entries []Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &list))
	assert.Len(t, list.Entries, 1)

	res = do(http.MethodGet, "/entries?date=soon", "")
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
}
