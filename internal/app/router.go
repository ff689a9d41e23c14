package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/shopledger/internal/billing"
	"github.com/odyssey-erp/shopledger/internal/catalog"
	"github.com/odyssey-erp/shopledger/internal/courier"
	"github.com/odyssey-erp/shopledger/internal/directory"
	"github.com/odyssey-erp/shopledger/internal/observability"
	"github.com/odyssey-erp/shopledger/internal/orders"
	"github.com/odyssey-erp/shopledger/internal/printing"
	"github.com/odyssey-erp/shopledger/internal/production"
	"github.com/odyssey-erp/shopledger/internal/receipt"
	"github.com/odyssey-erp/shopledger/internal/salaries"
	"github.com/odyssey-erp/shopledger/jobs"
)

// Receipts holds the receipt handler of each record kind that prints one.
type Receipts struct {
	Bills     *receipt.Handler
	Orders    *receipt.Handler
	Shipments *receipt.Handler
	PrintJobs *receipt.Handler
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	CatalogHandler    *catalog.Handler
	DirectoryHandler  *directory.Handler
	BillingHandler    *billing.Handler
	OrdersHandler     *orders.Handler
	CourierHandler    *courier.Handler
	PrintingHandler   *printing.Handler
	SalariesHandler   *salaries.Handler
	ProductionHandler *production.Handler
	Receipts          Receipts
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with shop defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.CatalogHandler != nil {
		r.Route("/products", params.CatalogHandler.MountRoutes)
	}
	if params.DirectoryHandler != nil {
		params.DirectoryHandler.MountRoutes(r)
	}
	if params.BillingHandler != nil {
		r.Route("/carts", params.BillingHandler.MountCartRoutes)
	}
	if params.BillingHandler != nil {
		r.Route("/bills", withReceipt(params.BillingHandler.MountRoutes, params.Receipts.Bills))
	}
	if params.OrdersHandler != nil {
		r.Route("/orders", withReceipt(params.OrdersHandler.MountRoutes, params.Receipts.Orders))
	}
	if params.CourierHandler != nil {
		r.Route("/courier", withReceipt(params.CourierHandler.MountRoutes, params.Receipts.Shipments))
	}
	if params.PrintingHandler != nil {
		r.Route("/printing", withReceipt(params.PrintingHandler.MountRoutes, params.Receipts.PrintJobs))
	}
	if params.SalariesHandler != nil {
		r.Route("/salaries", params.SalariesHandler.MountRoutes)
	}
	if params.ProductionHandler != nil {
		r.Route("/production", params.ProductionHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

// withReceipt mounts rc next to the module routes.
func withReceipt(mount func(chi.Router), rc *receipt.Handler) func(chi.Router) {
	return func(r chi.Router) {
		mount(r)
		if rc != nil {
			rc.MountRoutes(r)
		}
	}
}
