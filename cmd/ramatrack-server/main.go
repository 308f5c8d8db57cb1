// Package main provides the REST server for ramatrack.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dfrestrepo/ramatrack/internal/config"
	"github.com/dfrestrepo/ramatrack/internal/db"
	"github.com/dfrestrepo/ramatrack/internal/llm"
	"github.com/dfrestrepo/ramatrack/internal/metrics"
	"github.com/dfrestrepo/ramatrack/internal/rama"
	"github.com/dfrestrepo/ramatrack/internal/server"
	"github.com/dfrestrepo/ramatrack/internal/service"
)

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	flag.Parse()

	cfg := config.Load()
	logger, closeLogger := config.SetupLogger(cfg)
	defer func() { _ = closeLogger() }()
	slog.SetDefault(logger)

	logger.Info("starting ramatrack-server", "port", cfg.ServerPort)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		cancel()
		os.Exit(1)
	}
	if err := dbClient.InitSchema(ctx); err != nil {
		logger.Error("failed to initialize schema", "error", err)
		cancel()
		os.Exit(1)
	}
	if *wipeDB || os.Getenv("RAMATRACK_WIPE_DB") == "true" {
		if err := dbClient.WipeData(ctx); err != nil {
			logger.Error("failed to wipe database", "error", err)
			cancel()
			os.Exit(1)
		}
	}

	oracle, err := llm.NewOracle(ctx, cfg)
	cancel()
	if err != nil {
		logger.Error("failed to initialize enrichment backend", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(context.Background()); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	collector := metrics.NewCollector()
	source := rama.NewClient(cfg.RamaBaseURL, cfg.RamaTimeout, logger)
	reconciler := service.NewReconciler(dbClient, source, oracle, logger, collector, cfg.LLMTimeout)
	facade := service.NewFacade(dbClient)

	handler := server.NewHandler(reconciler, facade, source, collector, logger)
	srv := server.New(cfg.ServerPort, handler, logger)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(runCtx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
