package directory

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/shopledger/internal/platform/httpx"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

// Handler serves the directories over JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers directory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", listHandler(h, h.service.Customers))
		r.Post("/", createHandler(h, h.service.AddCustomer))
		r.Get("/{id}", getHandler(h, h.service.Customer))
	})
	r.Route("/vendors", func(r chi.Router) {
		r.Get("/", listHandler(h, h.service.Vendors))
		r.Post("/", createHandler(h, h.service.AddVendor))
		r.Get("/{id}", getHandler(h, h.service.Vendor))
	})
	r.Route("/staff", func(r chi.Router) {
		r.Get("/", listHandler(h, h.service.Staff))
		r.Post("/", createHandler(h, h.service.AddStaff))
		r.Get("/{id}", getHandler(h, h.service.StaffMember))
	})
}

func listHandler[T any](h *Handler, list func(context.Context, string) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			shared.WriteError(w, h.logger, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

func getHandler[T any](h *Handler, get func(context.Context, string) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			shared.WriteError(w, h.logger, err)
			return
		}
		httpx.JSON(w, http.StatusOK, item)
	}
}

func createHandler[In, Out any](h *Handler, create func(context.Context, In) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := httpx.DecodeJSON(r, &in); err != nil {
			httpx.RespondError(w, err)
			return
		}
		out, err := create(r.Context(), in)
		if err != nil {
			shared.WriteError(w, h.logger, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, out)
	}
}
