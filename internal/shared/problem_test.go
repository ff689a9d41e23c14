package shared

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/odyssey-erp/shopledger/internal/journal"
	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
)

func TestWriteErrorStatus(t *testing.T) {
	type dto struct {
		Name string `validate:"required"`
	}
	verr := validator.New().Struct(dto{})

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validator", verr, http.StatusBadRequest},
		{"not found", fmt.Errorf("get bill: %w", journal.ErrNotFound), http.StatusNotFound},
		{"catalog not found", ErrNotFound, http.StatusNotFound},
		{"idempotency", ErrIdempotencyConflict, http.StatusConflict},
		{"transition", ledger.ErrInvalidTransition, http.StatusConflict},
		{"closed", fmt.Errorf("pay: %w", journal.ErrClosed), http.StatusConflict},
		{"out of range", fmt.Errorf("line: %w", money.ErrOutOfRange), http.StatusUnprocessableEntity},
		{"ledger validation", fmt.Errorf("checkout: %w", ledger.ErrInvalidDiscount), http.StatusUnprocessableEntity},
		{"invalid input", fmt.Errorf("stock: %w", ErrInvalidInput), http.StatusUnprocessableEntity},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, nil, tc.err)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
