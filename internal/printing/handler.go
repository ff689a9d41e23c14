package printing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/platform/httpx"
	"github.com/odyssey-erp/shopledger/internal/records"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

// Handler serves printing jobs over JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
	ledger  *records.Handler
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, ledger: records.NewHandler(logger, service.Desk(), nil)}
}

// MountRoutes registers printing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.board)
	r.Post("/", h.create)
	h.ledger.MountRoutes(r)
	r.Get("/{number}", h.get)
	r.Patch("/{number}/status", h.updateStatus)
}

func (h *Handler) board(w http.ResponseWriter, r *http.Request) {
	var status ledger.Status
	if raw := r.URL.Query().Get("status"); raw != "" && raw != "all" {
		st, err := ledger.PrintJobLifecycle.Parse(raw)
		if err != nil {
			shared.WriteError(w, h.logger, err)
			return
		}
		status = st
	}
	board, err := h.service.Board(r.Context(), status)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, board)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	v, err := h.service.Create(r.Context(), in)
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
