package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"mockupgen/internal/adapter/repo"
	"mockupgen/internal/infra"
	"mockupgen/internal/infra/credentials"
	"mockupgen/internal/mockup"
	"mockupgen/internal/storage"
	"mockupgen/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, &logger)
	if err := infra.EnsureSchema(ctx, runner); err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to prepare schema")
	}

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	creds, err := credentials.NewStore(runner).ResolvePrintful(ctx, mockup.ConfigCredentials(cfg))
	if err != nil {
		logger.Warn().Err(err).Msg("worker: failed to load printful credentials from store")
	}
	client, err := mockup.NewPrintfulClient(cfg, creds, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure printful client")
	}
	if !client.HasCredentials() {
		logger.Fatal().Msg("worker: printful api key missing; set PRINTFUL_API_KEY or run printfulkey")
	}

	orchestrator, err := mockup.NewOrchestratorFromConfig(cfg, client, &logger, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: invalid render configuration")
	}
	partitioner, err := mockup.NewPartitionerFromConfig(cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: invalid template configuration")
	}
	generator, err := mockup.NewGenerator(mockup.Options{
		Partitioner: partitioner,
		Renderer:    orchestrator,
		Writer:      store,
		WriteBack:   cfg.WriteBack,
		Logger:      &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to build generator")
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.VendorRatePerMin > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.VendorRatePerMin)), 1)
	}
	processor, err := worker.NewProcessor(worker.Options{
		Jobs:        repo.NewMockupJobRepository(runner),
		Canvases:    store,
		Pipeline:    generator,
		Concurrency: cfg.WorkerConcurrency,
		IdleDelay:   cfg.WorkerIdleDelay,
		Limiter:     limiter,
		Logger:      &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to build processor")
	}

	if err := processor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
}
