package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	corecfg "github.com/aevon-lab/salesdash/internal/core/config"
	"github.com/aevon-lab/salesdash/internal/core/region"
	"github.com/aevon-lab/salesdash/internal/dashboard"
	"github.com/aevon-lab/salesdash/internal/server"
)

const datasetLoadTimeout = 2 * time.Minute

func main() {
	configPath := flag.String("config", "salesdash.yaml", "Path to configuration file")
	importPath := flag.String("import", "", "Replace the postgres sales table with this JSON/CSV dataset and exit")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"dataset_source", cfg.Dataset.Source,
		"dataset_path", cfg.Dataset.Path,
		"regions_path", cfg.Regions.Path,
		"addr", cfg.Server.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *importPath != "" {
		if err := importDataset(ctx, cfg, *importPath); err != nil {
			slog.Error("Import failed", "path", *importPath, "error", err)
			os.Exit(1)
		}
		return
	}

	// 2. Region table
	regions, err := region.Load(cfg.Regions.Path)
	if err != nil {
		slog.Error("Failed to load region table", "error", err)
		os.Exit(1)
	}
	slog.Info("Region table ready",
		"regions", len(regions.Regions()),
		"fingerprint", regions.Fingerprint())

	// 3. Dataset, loaded once
	src, err := openSource(cfg)
	if err != nil {
		slog.Error("Failed to open dataset source", "error", err)
		os.Exit(1)
	}
	defer src.Close()

	dataset, err := loadDataset(ctx, src, datasetLoadTimeout)
	if err != nil {
		slog.Error("Failed to load dataset", "error", err)
		os.Exit(1)
	}

	// 4. Dashboard
	dashboardSvc := dashboard.NewService(dataset, regions, dashboardOptions(cfg.Dashboard))

	// 5. Server
	srv := server.New(cfg.Server.Addr(), cfg.Server.Mode)
	srv.AddHealthCheck("dataset", dashboardSvc)
	if src.db != nil {
		srv.AddHealthCheck("database", src.db)
	}
	dashboardSvc.RegisterRoutes(srv.Engine)

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func dashboardOptions(c corecfg.DashboardConfig) dashboard.Options {
	return dashboard.Options{
		YearMin:        c.YearMin,
		YearMax:        c.YearMax,
		TopMin:         c.TopMin,
		TopMax:         c.TopMax,
		TopDefault:     c.TopDefault,
		TopStates:      c.TopStates,
		CurrencyPrefix: c.CurrencyPrefix,
	}
}
