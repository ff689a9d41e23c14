package courier

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/platform/httpx"
	"github.com/odyssey-erp/shopledger/internal/records"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

// Handler serves courier bookings over JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
	ledger  *records.Handler
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, ledger: records.NewHandler(logger, service.Desk(), nil)}
}

// MountRoutes registers shipment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.book)
	r.Get("/track/{awb}", h.track)
	h.ledger.MountRoutes(r)
	r.Get("/{number}", h.get)
	r.Patch("/{number}/status", h.updateStatus)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var status ledger.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := ledger.ShipmentLifecycle.Parse(raw)
		if err != nil {
			shared.WriteError(w, h.logger, err)
			return
		}
		status = st
	}
	views, err := h.service.List(r.Context(), status, r.URL.Query().Get("q"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"shipments": views})
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request) {
	var in BookInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	v, err := h.service.Book(r.Context(), in)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, v)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) track(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Track(r.Context(), chi.URLParam(r, "awb"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var in StatusInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	v, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "number"), in)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}
