package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/shopledger/internal/billing"
	"github.com/odyssey-erp/shopledger/internal/catalog"
	"github.com/odyssey-erp/shopledger/internal/courier"
	"github.com/odyssey-erp/shopledger/internal/directory"
	"github.com/odyssey-erp/shopledger/internal/journal"
	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/observability"
	"github.com/odyssey-erp/shopledger/internal/orders"
	"github.com/odyssey-erp/shopledger/internal/printing"
	"github.com/odyssey-erp/shopledger/internal/production"
	"github.com/odyssey-erp/shopledger/internal/receipt"
	"github.com/odyssey-erp/shopledger/internal/records"
	"github.com/odyssey-erp/shopledger/internal/salaries"
	"github.com/odyssey-erp/shopledger/internal/sequence"
	"github.com/odyssey-erp/shopledger/internal/shared"
	"github.com/odyssey-erp/shopledger/jobs"
)

// Record number prefixes of the prefixed kinds.
const (
	ShipmentPrefix = "DT"
	PrintJobPrefix = "SP"
	SalaryPrefix   = "SL"
)

// Kinds lists every record kind the shop keeps.
var Kinds = []ledger.Kind{ledger.KindBill, ledger.KindOrder, ledger.KindShipment, ledger.KindPrintJob, ledger.KindSalary}

// SequencerFactory returns the sequencer of kind, continuing after highWater
// when the backend has no state yet.
type SequencerFactory func(ctx context.Context, kind ledger.Kind, highWater int64) (ledger.Sequencer, error)

// MemorySequencers keeps sequences in process.
func MemorySequencers() SequencerFactory {
	return func(_ context.Context, _ ledger.Kind, highWater int64) (ledger.Sequencer, error) {
		return sequence.NewCounter(highWater), nil
	}
}

// RedisSequencers keeps one INCR key per kind.
func RedisSequencers(client *redis.Client) SequencerFactory {
	return func(ctx context.Context, kind ledger.Kind, highWater int64) (ledger.Sequencer, error) {
		return sequence.NewRedisSequencer(ctx, client, sequence.KeyFor(string(kind)), highWater)
	}
}

// PostgresSequencers keeps one row per kind, creating the table on first use.
func PostgresSequencers(pool *pgxpool.Pool) SequencerFactory {
	return func(ctx context.Context, kind ledger.Kind, highWater int64) (ledger.Sequencer, error) {
		if err := sequence.EnsureSchema(ctx, pool); err != nil {
			return nil, err
		}
		return sequence.NewPostgresSequencer(pool, string(kind), highWater), nil
	}
}

// ShopDeps collects what NewShop needs beyond the configuration.
type ShopDeps struct {
	Logger      *slog.Logger
	Sequencers  SequencerFactory
	Idempotency shared.IdempotencyStore
	Notifier    records.Notifier
	Metrics     *observability.Metrics
	PDF         receipt.PDFConverter
	// Clock overrides the wall clock, mainly in tests.
	Clock func() time.Time
}

// Shop is the assembled application: one desk per record kind over a shared
// journal, plus the services and directories around them.
type Shop struct {
	Config     *Config
	Logger     *slog.Logger
	Metrics    *observability.Metrics
	Store      *journal.Store
	Desks      map[ledger.Kind]*records.Desk
	Catalog    *catalog.Service
	Directory  *directory.Service
	Billing    *billing.Service
	Orders     *orders.Service
	Courier    *courier.Service
	Printing   *printing.Service
	Salaries   *salaries.Service
	Production *production.Service
	Renderer   *receipt.Renderer
}

// NewShop wires every desk and service.
func NewShop(ctx context.Context, cfg *Config, deps ShopDeps) (*Shop, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Sequencers == nil {
		deps.Sequencers = MemorySequencers()
	}
	if deps.Idempotency == nil {
		deps.Idempotency = shared.NewMemoryIdempotencyStore()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	now := func() time.Time { return clock().In(loc) }

	store := journal.NewStore()
	numbers := map[ledger.Kind]ledger.NumberFunc{
		ledger.KindBill:     ledger.PlainNumber,
		ledger.KindOrder:    orders.NumberFunc(cfg.OrderPrefix, store),
		ledger.KindShipment: ledger.PrefixedNumber(ShipmentPrefix),
		ledger.KindPrintJob: ledger.PrefixedNumber(PrintJobPrefix),
		ledger.KindSalary:   ledger.PrefixedNumber(SalaryPrefix),
	}
	desks := make(map[ledger.Kind]*records.Desk, len(Kinds))
	for _, kind := range Kinds {
		var highWater int64
		if kind == ledger.KindBill {
			highWater = cfg.BillSequenceStart
		}
		seq, err := deps.Sequencers(ctx, kind, highWater)
		if err != nil {
			return nil, fmt.Errorf("sequencer %s: %w", kind, err)
		}
		l := ledger.New(kind, seq,
			ledger.WithNumberFunc(numbers[kind]),
			ledger.WithGracePeriod(cfg.PaymentGracePeriod),
			ledger.WithClock(now))
		desks[kind] = records.NewDesk(l, store, records.Config{
			Notifier: deps.Notifier,
			Metrics:  deps.Metrics.Ledger(),
			Logger:   deps.Logger,
		})
	}

	renderer, err := receipt.NewRenderer(deps.PDF)
	if err != nil {
		return nil, err
	}

	cat := catalog.NewService(catalog.NewMemoryRepository(catalog.Seed()...), deps.Logger)
	dir := directory.NewService(directory.NewMemoryRepository(directory.SeedCustomers(), directory.SeedVendors(), directory.SeedStaff()), deps.Logger)
	return &Shop{
		Config:    cfg,
		Logger:    deps.Logger,
		Metrics:   deps.Metrics,
		Store:     store,
		Desks:     desks,
		Catalog:   cat,
		Directory: dir,
		Billing:   billing.NewService(desks[ledger.KindBill], cat, dir, billing.NewCartStore(), deps.Idempotency, deps.Logger),
		Orders:    orders.NewService(desks[ledger.KindOrder], orders.NewMemoryRepository(), cat, dir, cfg.OrderEpoch, deps.Logger),
		Courier:   courier.NewService(desks[ledger.KindShipment], dir, deps.Logger),
		Printing:  printing.NewService(desks[ledger.KindPrintJob], dir, deps.Logger),
		Salaries:   salaries.NewService(desks[ledger.KindSalary], dir, deps.Logger),
		Production: production.NewService(production.NewMemoryRepository(), now, deps.Logger),
		Renderer:   renderer,
	}, nil
}

// Router builds the HTTP API over the shop. jobHandler may be nil.
func (s *Shop) Router(jobHandler *jobs.Handler) http.Handler {
	shop := receipt.Shop{Name: s.Config.ShopName, Address: s.Config.ShopAddress, Phone: s.Config.ShopPhone}
	receiptFor := func(kind ledger.Kind) *receipt.Handler {
		return receipt.NewHandler(s.Logger, shop, s.Desks[kind], s.Renderer)
	}
	return NewRouter(RouterParams{
		Logger:            s.Logger,
		Config:            s.Config,
		CatalogHandler:    catalog.NewHandler(s.Logger, s.Catalog),
		DirectoryHandler:  directory.NewHandler(s.Logger, s.Directory),
		BillingHandler:    billing.NewHandler(s.Logger, s.Billing),
		OrdersHandler:     orders.NewHandler(s.Logger, s.Orders),
		CourierHandler:    courier.NewHandler(s.Logger, s.Courier),
		PrintingHandler:   printing.NewHandler(s.Logger, s.Printing),
		SalariesHandler:   salaries.NewHandler(s.Logger, s.Salaries),
		ProductionHandler: production.NewHandler(s.Logger, s.Production),
		Receipts: Receipts{
			Bills:     receiptFor(ledger.KindBill),
			Orders:    receiptFor(ledger.KindOrder),
			Shipments: receiptFor(ledger.KindShipment),
			PrintJobs: receiptFor(ledger.KindPrintJob),
		},
		JobHandler: jobHandler,
		Metrics:    s.Metrics,
	})
}

// OverdueScan builds the reminder job over the shared journal.
func (s *Shop) OverdueScan(reminders jobs.Reminders) *jobs.OverdueScanJob {
	return jobs.NewOverdueScanJob(s.Store, reminders, s.Logger)
}
