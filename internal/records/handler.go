package records

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/platform/httpx"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

// PaymentInput is the body of a payment request.
type PaymentInput struct {
	Amount money.Money `json:"amount" validate:"gt=0"`
	Note   string      `json:"note" validate:"max=200"`
}

// Payer applies a payment to a record. Modules that keep side balances wrap
// Desk.Pay with their own bookkeeping.
type Payer interface {
	Pay(ctx context.Context, number string, amount money.Money, note string) (Entry, ledger.PaymentEvent, error)
}

// Handler serves the settlement routes every record kind shares.
type Handler struct {
	logger   *slog.Logger
	desk     *Desk
	payer    Payer
	validate *validator.Validate
}

// NewHandler builds Handler instance. A nil payer pays through desk.
func NewHandler(logger *slog.Logger, desk *Desk, payer Payer) *Handler {
	if payer == nil {
		payer = desk
	}
	return &Handler{logger: logger, desk: desk, payer: payer, validate: validator.New()}
}

// MountRoutes registers payment and aging routes. Record lookups stay with
// the owning module since each kind adds its own details.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/aging", h.aging)
	r.Get("/{number}/payments", h.payments)
	r.Post("/{number}/payments", h.pay)
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	var in PaymentInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	entry, ev, err := h.payer.Pay(r.Context(), chi.URLParam(r, "number"), in.Amount, in.Note)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"payment": ev, "balance": entry.Balance})
}

func (h *Handler) payments(w http.ResponseWriter, r *http.Request) {
	entry, err := h.desk.Get(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": entry.Payments, "balance": entry.Balance})
}

func (h *Handler) aging(w http.ResponseWriter, r *http.Request) {
	var asOf time.Time
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}
	report, err := h.desk.Aging(r.Context(), asOf)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
