package billing

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/shopledger/internal/journal"
	"github.com/odyssey-erp/shopledger/internal/platform/httpx"
	"github.com/odyssey-erp/shopledger/internal/records"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

// IdempotencyHeader carries the client's checkout key.
const IdempotencyHeader = "Idempotency-Key"

// Handler serves carts and bills over JSON.
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
		ledger:  records.NewHandler(logger, service.Desk(), service),
	}
}

// MountCartRoutes registers routes under /carts.
func (h *Handler) MountCartRoutes(r chi.Router) {
	r.Post("/", h.createCart)
	r.Get("/{cartID}", h.getCart)
	r.Delete("/{cartID}", h.discardCart)
	r.Post("/{cartID}/items", h.addItem)
	r.Patch("/{cartID}/items/{productID}", h.changeItem)
	r.Delete("/{cartID}/items/{productID}", h.removeItem)
}

// MountRoutes registers routes under /bills.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listBills)
	r.Post("/", h.checkout)
	h.ledger.MountRoutes(r)
	r.Get("/{number}", h.getBill)
	r.Get("/{number}/returns", h.listReturns)
	r.Post("/{number}/returns", h.createReturn)
}

func (h *Handler) createCart(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusCreated, h.service.CreateCart(r.Context()))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.Cart(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cart)
}

func (h *Handler) discardCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DiscardCart(r.Context(), chi.URLParam(r, "cartID")); err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var in ItemInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	cart, err := h.service.AddToCart(r.Context(), chi.URLParam(r, "cartID"), in)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cart)
}

func (h *Handler) changeItem(w http.ResponseWriter, r *http.Request) {
	var in ChangeInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	cart, err := h.service.ChangeQuantity(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"), in)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cart)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.RemoveFromCart(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cart)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var in CheckoutInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	entry, replayed, err := h.service.Checkout(r.Context(), key, in)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	status := http.StatusCreated
	if replayed {
		w.Header().Set("Idempotent-Replayed", "true")
		status = http.StatusOK
	}
	httpx.JSON(w, status, entry)
}

func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.Bill(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	f, err := FilterFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", err.Error())
		return
	}
	bills, err := h.service.Bills(r.Context(), f)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"bills": bills})
}

func (h *Handler) createReturn(w http.ResponseWriter, r *http.Request) {
	var in ReturnInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.Return(r.Context(), chi.URLParam(r, "number"), in)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

func (h *Handler) listReturns(w http.ResponseWriter, r *http.Request) {
	returns, err := h.service.Returns(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"returns": returns})
}

// FilterFromQuery reads customer, from, to, outstanding and limit.
func FilterFromQuery(r *http.Request) (journal.Filter, error) {
	q := r.URL.Query()
	f := journal.Filter{
		CounterpartyID: q.Get("customer"),
		Outstanding:    q.Get("outstanding") == "true",
		Limit:          shared.LimitFromQuery(r),
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return journal.Filter{}, err
		}
		f.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return journal.Filter{}, err
		}
		f.To = t.AddDate(0, 0, 1)
	}
	return f, nil
}
