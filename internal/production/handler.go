package production

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/shopledger/internal/platform/httpx"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

// Handler serves production and rolling over JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers production routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.summary)
	r.Get("/entries", h.entries)
	r.Post("/entries", h.addEntry)
	r.Get("/rolling", h.batches)
	r.Post("/rolling", h.roll)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summary(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}

func (h *Handler) entries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.service.Entries(r.Context(), q.Get("q"), q.Get("date"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) addEntry(w http.ResponseWriter, r *http.Request) {
	var in EntryInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	e, err := h.service.AddEntry(r.Context(), in)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) batches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.service.Batches(r.Context())
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"batches": batches})
}

func (h *Handler) roll(w http.ResponseWriter, r *http.Request) {
	var in RollingInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.Roll(r.Context(), in)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	status := http.StatusOK
	if in.Action == ActionSend {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, rec)
}
