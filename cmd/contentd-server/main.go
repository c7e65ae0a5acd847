// Package main provides the contentd API server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/contentd/internal/config"
	"github.com/raphaelgruber/contentd/internal/db"
	"github.com/raphaelgruber/contentd/internal/engine"
	"github.com/raphaelgruber/contentd/internal/llm"
	"github.com/raphaelgruber/contentd/internal/metrics"
	"github.com/raphaelgruber/contentd/internal/scrape"
	"github.com/raphaelgruber/contentd/internal/search"
	"github.com/raphaelgruber/contentd/internal/server"
	"github.com/raphaelgruber/contentd/internal/session"
)

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	noStore := flag.Bool("no-store", false, "run without database persistence")
	flag.Parse()

	cfg := config.Load()

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer func() {
		if err := cleanup(); err != nil {
			os.Exit(1)
		}
	}()
	slog.SetDefault(logger)

	logger.Info("starting contentd-server", "port", cfg.Port, "llm_provider", cfg.LLMProvider)

	collector := metrics.NewCollector()

	model, err := llm.NewModel(cfg)
	if err != nil {
		logger.Error("failed to create LLM model", "error", err)
		os.Exit(1)
	}

	scraper, err := scrape.NewScraper(cfg, logger)
	if err != nil {
		logger.Error("failed to create scraper", "error", err)
		os.Exit(1)
	}

	searcher := search.NewClient(cfg)

	resolver := engine.NewResolver(searcher, model, logger,
		engine.WithSearchTimeout(cfg.SearchTimeout),
		engine.WithGenerateTimeout(cfg.GenerateTimeout),
		engine.WithResolverMetrics(collector),
	)
	processor := engine.NewProcessor(resolver, logger)

	orchestratorOpts := []engine.OrchestratorOption{
		engine.WithMaxInFlight(cfg.MaxConcurrentItems),
		engine.WithMetrics(collector),
	}

	var dbClient *db.Client
	if !*noStore {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		dbClient, err = db.NewClient(ctx, db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger)
		if err != nil {
			cancel()
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		dbClient.SetCollector(collector)

		if err := dbClient.InitSchema(ctx); err != nil {
			cancel()
			logger.Error("failed to initialize schema", "error", err)
			os.Exit(1)
		}
		if *wipeDB || os.Getenv("CONTENTD_WIPE_DB") == "true" {
			if err := dbClient.WipeData(ctx); err != nil {
				cancel()
				logger.Error("failed to wipe database", "error", err)
				os.Exit(1)
			}
		}
		cancel()

		defer func() {
			if err := dbClient.Close(context.Background()); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}()

		orchestratorOpts = append(orchestratorOpts, engine.WithStore(dbClient))
	}

	orchestrator := engine.NewOrchestrator(model, scraper, processor, logger, orchestratorOpts...)
	tasks := engine.NewTaskManager(orchestrator, logger)
	sessions := session.NewManager(logger)

	srv := server.New(cfg.Port, tasks, sessions, collector, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
