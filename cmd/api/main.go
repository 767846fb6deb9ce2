package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"mockupgen/internal/adapter/repo"
	"mockupgen/internal/http/handlers"
	httpapi "mockupgen/internal/http/httpapi"
	"mockupgen/internal/infra"
	"mockupgen/internal/mockup"
	"mockupgen/internal/storage"
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
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, &logger)
	if err := infra.EnsureSchema(ctx, runner); err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare schema")
	}

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}
	partitioner, err := mockup.NewPartitionerFromConfig(cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid template configuration")
	}

	app := handlers.NewApp(cfg, &logger, repo.NewMockupJobRepository(runner), store, partitioner)
	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app))

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
