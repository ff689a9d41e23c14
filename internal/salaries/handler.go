package salaries

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/platform/httpx"
	"github.com/odyssey-erp/shopledger/internal/records"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

// Handler serves the payroll over JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
	ledger  *records.Handler
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		ledger:  records.NewHandler(logger, service.Desk(), recordPayer{service}),
	}
}

// recordPayer pays a salary by record number through the service so the
// payment date and notes follow.
type recordPayer struct{ s *Service }

func (p recordPayer) Pay(ctx context.Context, number string, amount money.Money, note string) (records.Entry, ledger.PaymentEvent, error) {
	v, ev, err := p.s.payRecord(ctx, number, amount, note)
	if err != nil {
		return records.Entry{}, ledger.PaymentEvent{}, err
	}
	return records.Entry{Record: v.Record, Balance: v.Balance, Payments: v.Payments}, ev, nil
}

type openInput struct {
	StaffID string `json:"staff_id"`
	Month   string `json:"month"`
	Year    int    `json:"year"`
}

// MountRoutes registers salary routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.sheet)
	r.Post("/", h.open)
	r.Post("/payments", h.pay)
	h.ledger.MountRoutes(r)
	r.Get("/{number}", h.get)
}

func (h *Handler) sheet(w http.ResponseWriter, r *http.Request) {
	now := h.service.Desk().Ledger().Now()
	month := r.URL.Query().Get("month")
	if month == "" {
		month = now.Month().String()
	}
	year := now.Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", "year must be a number")
			return
		}
		year = y
	}
	p, err := ParsePeriod(month, year)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	sheet, err := h.service.Sheet(r.Context(), p, r.URL.Query().Get("q"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sheet)
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	var in openInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := ParsePeriod(in.Month, in.Year)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	v, err := h.service.Open(r.Context(), in.StaffID, p)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	var in PayInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	v, ev, err := h.service.Pay(r.Context(), in)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"salary": v, "payment": ev})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

