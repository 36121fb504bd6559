package app

import (
	"context"
	"fmt"
	"time"

	"cian-offers-parser/internal/checkpoint"
	"cian-offers-parser/internal/config"
	"cian-offers-parser/internal/observability"
	"cian-offers-parser/internal/storage"
	"cian-offers-parser/internal/storage/csvtable"
	"cian-offers-parser/internal/storage/mssql"
	"cian-offers-parser/internal/storage/postgres"
)

// PlanStart выбирает стартовую страницу: из файла счётчика, если включён crawl.resume
func PlanStart(cfg *config.Config) (page int, resumed bool, err error) {
	page = cfg.Crawl.StartPage
	if !cfg.Crawl.Resume {
		return page, false, nil
	}

	last, ok, err := checkpoint.Load(cfg.CheckpointFile)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	if !ok {
		return page, false, nil
	}
	return last, true, nil
}

// OpenOutput открывает CSV за день запуска: дозапись при возобновлении, иначе с нуля
func OpenOutput(cfg *config.Config, resumed bool, day time.Time) (*csvtable.Table, error) {
	path := csvtable.FileName(cfg.OutputDir, day)
	if resumed {
		return csvtable.Open(path)
	}
	return csvtable.Create(path)
}

// OpenSinks добавляет к CSV зеркало в БД по storage.driver
func OpenSinks(ctx context.Context, cfg *config.Config, table *csvtable.Table, logger *observability.Logger) (storage.Sink, error) {
	sinks := []storage.Sink{table}

	switch cfg.Storage.Driver {
	case "mssql":
		repo, err := mssql.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, repo)
	case "postgres":
		repo, err := postgres.NewRepository(ctx, cfg.Storage.DSN, cfg.GetCommandTimeout(), logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, repo)
	}

	return storage.NewMultiSink(sinks...), nil
}
