package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/shopledger/internal/platform/httpx"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

// Handler serves the catalog over JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.upsert)
	r.Get("/inventory", h.inventory)
	r.Get("/low-stock", h.lowStock)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/stock", h.adjust)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	var in UpsertInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Upsert(r.Context(), in)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) inventory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	inv, err := h.service.Inventory(r.Context(), InventoryQuery{
		Query:    q.Get("q"),
		Category: Category(q.Get("category")),
		LowOnly:  q.Get("low") == "true",
	})
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.LowStock(r.Context())
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products, "threshold": LowStockThreshold})
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	var in AdjustInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.AdjustStock(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
