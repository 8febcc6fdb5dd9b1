package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	corecfg "github.com/aevon-lab/salesdash/internal/core/config"
	"github.com/aevon-lab/salesdash/internal/core/sales"
	"github.com/aevon-lab/salesdash/internal/core/storage"
	"github.com/aevon-lab/salesdash/internal/core/storage/file"
	"github.com/aevon-lab/salesdash/internal/core/storage/postgres"
	"github.com/aevon-lab/salesdash/internal/migrations"
)

// openedSource is the configured dataset source plus the postgres adapter
// when one backs it.
type openedSource struct {
	storage.Source
	db *postgres.Adapter
}

func (o openedSource) Close() {
	if o.db != nil {
		if err := o.db.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}
}

func openSource(cfg *corecfg.Config) (openedSource, error) {
	switch cfg.Dataset.Source {
	case corecfg.SourceFile:
		return openedSource{Source: file.New(cfg.Dataset.Path)}, nil
	case corecfg.SourcePostgres:
		adapter, err := openPostgres(cfg.Dataset)
		if err != nil {
			return openedSource{}, err
		}
		return openedSource{Source: adapter, db: adapter}, nil
	default:
		return openedSource{}, fmt.Errorf("unsupported dataset source %q", cfg.Dataset.Source)
	}
}

func openPostgres(c corecfg.DatasetConfig) (*postgres.Adapter, error) {
	db, err := postgres.Open(c.DSN, c.MaxOpenConns, c.MaxIdleConns)
	if err != nil {
		return nil, err
	}

	if err := migrations.RunMigrations(db, c.AutoMigrate); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	adapter, err := postgres.NewAdapter(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return adapter, nil
}

// loadDataset runs the one-time load with a deadline. Load errors are fatal
// to startup and are returned unchanged so callers can match DataFormatError.
func loadDataset(ctx context.Context, src storage.Source, timeout time.Duration) (*sales.Dataset, error) {
	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	dataset, err := src.Load(loadCtx)
	if err != nil {
		return nil, err
	}
	if dataset == nil {
		return nil, fmt.Errorf("dataset source returned no dataset")
	}

	slog.Info("Dataset ready",
		"source", dataset.Source,
		"records", dataset.Len(),
		"salespeople", len(dataset.Salespeople()),
		"duration", time.Since(start))

	if dataset.Len() == 0 {
		slog.Warn("Dataset is empty; every query will return the empty_result warning")
	}
	return dataset, nil
}

// importDataset seeds the postgres sales table from a JSON/CSV file.
func importDataset(ctx context.Context, cfg *corecfg.Config, path string) error {
	if cfg.Dataset.Source != corecfg.SourcePostgres {
		return fmt.Errorf("-import requires dataset.source=postgres, got %q", cfg.Dataset.Source)
	}

	dataset, err := loadDataset(ctx, file.New(path), datasetLoadTimeout)
	if err != nil {
		return err
	}

	adapter, err := openPostgres(cfg.Dataset)
	if err != nil {
		return err
	}
	defer adapter.Close()

	return adapter.Import(ctx, dataset.Records)
}
