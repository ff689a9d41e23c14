package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/shopledger/internal/app"
	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/observability"
	"github.com/odyssey-erp/shopledger/internal/platform/cache"
	"github.com/odyssey-erp/shopledger/internal/platform/db"
	"github.com/odyssey-erp/shopledger/internal/shared"
	"github.com/odyssey-erp/shopledger/jobs"
	"github.com/odyssey-erp/shopledger/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("shopledger stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()
	deps := app.ShopDeps{
		Logger:      logger,
		Sequencers:  app.MemorySequencers(),
		Idempotency: shared.NewMemoryIdempotencyStore(),
		Notifier:    jobs.NopNotifier{},
		Metrics:     metrics,
	}

	needRedis := cfg.SequenceBackend == app.SequenceRedis || cfg.NotifyEnabled
	if needRedis {
		redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr})
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		deps.Idempotency = shared.NewRedisIdempotencyStore(redisClient, 24*time.Hour)
		if cfg.SequenceBackend == app.SequenceRedis {
			deps.Sequencers = app.RedisSequencers(redisClient)
		}
	}
	if cfg.SequenceBackend == app.SequencePostgres {
		pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: 4, ConnectTimeout: 5 * time.Second})
		if err != nil {
			return err
		}
		defer pool.Close()
		deps.Sequencers = app.PostgresSequencers(pool)
	}

	var notifier *jobs.QueueNotifier
	if cfg.NotifyEnabled {
		queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() { _ = queue.Close() }()
		notifier = jobs.NewQueueNotifier(queue, logger)
		deps.Notifier = notifier
	}

	if cfg.GotenbergURL != "" {
		pdf := report.NewClient(cfg.GotenbergURL)
		if err := pdf.Ping(ctx); err != nil {
			logger.Warn("gotenberg unavailable, pdf receipts will fail", slog.Any("error", err))
		}
		deps.PDF = pdf
	}

	shop, err := app.NewShop(ctx, cfg, deps)
	if err != nil {
		return err
	}

	var jobHandler *jobs.Handler
	if cfg.NotifyEnabled {
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() { _ = inspector.Close() }()
		jobHandler = jobs.NewHandler(inspector, logger, jobs.QueueNotify, jobs.QueueLedger)
	}

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      shop.Router(jobHandler),
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("sequences", cfg.SequenceBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	// Records live in this process, so the overdue scan runs here rather
	// than in cmd/worker.
	if cfg.NotifyEnabled {
		worker, err := overdueWorker(cfg, logger, shop, notifier, metrics)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

func overdueWorker(cfg *app.Config, logger *slog.Logger, shop *app.Shop, reminders *jobs.QueueNotifier, metrics *observability.Metrics) (*jobs.Worker, error) {
	scan := shop.OverdueScan(reminders)
	task, err := jobs.NewOverdueScanTask(ledger.KindBill, ledger.KindOrder, ledger.KindShipment, ledger.KindPrintJob)
	if err != nil {
		return nil, err
	}
	return jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Queues:    map[string]int{jobs.QueueLedger: 1},
		Location:  cfg.Location,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskOverdueScan, Handler: func(ctx context.Context, t *asynq.Task) error {
				err := scan.Handle(ctx, t)
				metrics.JobProcessed(jobs.TaskOverdueScan, err)
				return err
			}},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.OverdueCron, Task: task},
		},
	})
}
