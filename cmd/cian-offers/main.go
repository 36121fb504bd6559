package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"cian-offers-parser/internal/app"
	"cian-offers-parser/internal/config"
	"cian-offers-parser/internal/fetcher"
	"cian-offers-parser/internal/observability"
	"cian-offers-parser/internal/scraper"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to YAML config")
	selectorsPath := flag.String("selectors", "", "path to selectors JSON (overrides selectors_file)")
	outputDir := flag.String("output", "", "output directory (overrides output_dir)")
	envFile := flag.String("env", ".env", "optional .env file")
	resume := flag.Bool("resume", false, "continue from the checkpoint left by an interrupted run")
	flag.Parse()

	if err := config.LoadEnv(*envFile); err != nil {
		log.Fatalf("Failed to load env: %v", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *selectorsPath != "" {
		cfg.SelectorsFile = *selectorsPath
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *resume {
		cfg.Crawl.Resume = true
	}

	logger, err := observability.NewLogger(observability.Options{
		LogPath:    cfg.Observability.LogPath,
		LogLevel:   cfg.Observability.LogLevel,
		Format:     cfg.Observability.LogFormat,
		MaxSizeMB:  cfg.Observability.LogMaxSizeMB,
		MaxBackups: cfg.Observability.LogMaxBackups,
		MaxAgeDays: cfg.Observability.LogMaxAgeDays,
		Compress:   true,
	})
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	stats, err := run(cfg, logger)
	if closeErr := logger.Close(); closeErr != nil {
		log.Printf("Warning: failed to close logger: %v", closeErr)
	}
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			log.Fatalf("Configuration error: %v", err)
		}
		log.Fatalf("Crawl failed: %v", err)
	}

	fmt.Printf("%.2f\n", stats.Minutes())
}

func run(cfg *config.Config, logger *observability.Logger) (*app.Stats, error) {
	selectors, err := config.LoadSelectors(cfg.SelectorsFile)
	if err != nil {
		return nil, err
	}
	baseURL, err := cfg.ResolveBaseURL(selectors.BaseURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := app.GracefulShutdown(context.Background(), logger)
	defer cancel()

	startPage, resumed, err := app.PlanStart(cfg)
	if err != nil {
		return nil, err
	}
	if resumed {
		logger.Info("Resuming from checkpoint", "page", startPage, "checkpoint", cfg.CheckpointFile)
	}

	table, err := app.OpenOutput(cfg, resumed, time.Now())
	if err != nil {
		return nil, err
	}
	sink, err := app.OpenSinks(ctx, cfg, table, logger)
	if err != nil {
		_ = table.Close()
		return nil, err
	}

	f, err := fetcher.New(cfg, logger)
	if err != nil {
		_ = sink.Close()
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Failed to close fetcher", "error", err.Error())
		}
	}()

	logger.Info("Output table", "path", table.Path(), "append", resumed, "storage", cfg.Storage.Driver)

	session := app.NewSession(cfg, baseURL, startPage, logger, f, scraper.NewScraper(selectors), sink)
	stats, runErr := session.Run(ctx)
	if err := session.Close(); err != nil {
		logger.Error("Failed to close session", "error", err.Error())
		if runErr == nil {
			runErr = err
		}
	}
	return stats, runErr
}
