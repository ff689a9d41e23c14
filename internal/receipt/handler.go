package receipt

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/shopledger/internal/platform/httpx"
	"github.com/odyssey-erp/shopledger/internal/records"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

// ErrPDFUnavailable is returned when no PDF service is configured.
var ErrPDFUnavailable = errors.New("receipt: pdf export not configured")

// Source looks records up by number.
type Source interface {
	Get(ctx context.Context, number string) (records.Entry, error)
}

// Handler serves GET /{number}/receipt for one record kind.
type Handler struct {
	logger   *slog.Logger
	shop     Shop
	source   Source
	renderer *Renderer
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, shop Shop, source Source, renderer *Renderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, shop: shop, source: source, renderer: renderer}
}

// MountRoutes registers the receipt route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{number}/receipt", h.receipt)
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	entry, err := h.source.Get(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	rec := Build(h.shop, entry.Record, entry.Balance)

	if wantsPDF(r) {
		pdf, err := h.renderer.PDF(r.Context(), rec)
		if err != nil {
			if errors.Is(err, ErrPDFUnavailable) {
				httpx.Problem(w, http.StatusNotImplemented, "PDF Unavailable", err.Error())
				return
			}
			h.logger.Error("receipt pdf failed", slog.String("number", rec.Number), slog.Any("error", err))
			httpx.Problem(w, http.StatusBadGateway, "PDF Export Failed", "could not render receipt pdf")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `inline; filename="receipt-`+rec.Number+`.pdf"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdf)
		return
	}

	html, err := h.renderer.HTML(rec)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(html)
}

func wantsPDF(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "pdf") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/pdf")
}
