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

	"github.com/margindesk/margindesk/internal/app"
	"github.com/margindesk/margindesk/internal/formula"
	"github.com/margindesk/margindesk/internal/platform/cache"
	"github.com/margindesk/margindesk/internal/schema"
	"github.com/margindesk/margindesk/internal/snapshot"
	"github.com/margindesk/margindesk/internal/store"
	"github.com/margindesk/margindesk/internal/table"
	"github.com/margindesk/margindesk/internal/transfer"
	"github.com/margindesk/margindesk/jobs"
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	entityStore := store.New()
	registry := schema.NewRegistry()
	evaluator := formula.New(logger)
	materializer := table.NewMaterializer(entityStore, registry, evaluator, logger)
	transferService := transfer.NewService(entityStore, registry)
	snapshotStore := snapshot.NewStore(redisClient, cfg.SnapshotKey, cfg.SnapshotTTL)

	if doc, err := snapshotStore.Load(ctx); err != nil {
		logger.Warn("load snapshot", slog.Any("error", err))
		entityStore.LoadSampleData()
	} else if doc == nil {
		logger.Info("no snapshot found, loading sample data")
		entityStore.LoadSampleData()
	} else {
		entityStore.Restore(doc.Products, doc.Sales, doc.Settings)
		if doc.ColumnConfigs != nil {
			if err := registry.Replace(doc.ColumnConfigs); err != nil {
				logger.Warn("restore column configs", slog.Any("error", err))
			}
		}
		logger.Info("restored from snapshot", slog.String("export_date", doc.ExportDate))
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	processor := jobs.NewSnapshotProcessor(logger, transferService, snapshotStore, entityStore)
	interval := time.Duration(entityStore.Settings().AutoSaveInterval) * time.Second
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Processor: processor,
		Interval:  interval,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		TableHandler:    table.NewHandler(logger, materializer),
		StoreHandler:    store.NewHandler(logger, entityStore, worker),
		SchemaHandler:   schema.NewHandler(logger, registry),
		TransferHandler: transfer.NewHandler(logger, transferService, entityStore, materializer, jobClient),
		JobHandler:      jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("starting job worker", slog.Duration("autosave_interval", interval))
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
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

	if err := g.Wait(); err != nil {
		logger.Error("run", slog.Any("error", err))
		os.Exit(1)
	}
}
