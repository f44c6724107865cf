package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"airquality-dashboard/config"
	"airquality-dashboard/dashboard"
	"airquality-dashboard/models"
	"airquality-dashboard/services"
	"airquality-dashboard/storage"
	"airquality-dashboard/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogDebug)

	if err := run(cfg, logger); err != nil {
		logger.Error("%v", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(cfg *config.Config, logger *utils.Logger) error {
	logger.Info("=== Air Quality Dashboard starting ===")
	logger.Info("Config: dataset %s | histogram bins %d | listen %q",
		cfg.DatasetPath, cfg.HistogramBins, cfg.ListenAddr)

	loader := services.NewLoader(logger)
	cache := services.NewTableCache(loader.LoadDerived, logger)

	table, err := cache.Get(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	logger.Info("Session %s: %d records", table.SessionID, table.Len())

	opts := services.DefaultInsightOptions()
	opts.HistogramBins = cfg.HistogramBins
	insightSvc := services.NewInsightService(logger, opts)

	report, err := insightSvc.Generate(table)
	if err != nil {
		return fmt.Errorf("generate insights: %w", err)
	}
	insightSvc.Print(report)

	if cfg.CSVExportPath != "" {
		if err := exportCSV(cfg.CSVExportPath, table); err != nil {
			logger.Error("CSV export failed: %v", err)
		} else {
			logger.Info("Derived table exported to %s", cfg.CSVExportPath)
		}
	}

	if cfg.PostgresExport {
		if err := exportPostgres(cfg, logger, table); err != nil {
			logger.Error("PostgreSQL export failed: %v", err)
		}
	}

	if cfg.ListenAddr == "" {
		return nil
	}

	srv, err := dashboard.New(cfg.ListenAddr, cfg.DatasetPath, cache, insightSvc, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func exportCSV(path string, table *models.Table) error {
	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	return writeAndClose(w, table)
}

func writeAndClose(w storage.TableWriter, table *models.Table) error {
	if err := w.Write(table); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func exportPostgres(cfg *config.Config, logger *utils.Logger, table *models.Table) error {
	pgWriter, err := storage.NewPostgresWriter(cfg.DSN(), &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   time.Second,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("Make sure PostgreSQL is running: docker compose up -d")
		return err
	}
	defer pgWriter.Close()

	if err := pgWriter.Write(table); err != nil {
		return err
	}

	stored, err := pgWriter.FetchAll()
	if err != nil {
		return fmt.Errorf("verify export: %w", err)
	}
	logger.Info("Derived table stored in PostgreSQL (table: measurements, %d rows)", len(stored))
	return nil
}
