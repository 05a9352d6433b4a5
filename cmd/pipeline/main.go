package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"nmgcli/internal/config"
	"nmgcli/internal/dataprocessing"
	"nmgcli/internal/exporter"
	"nmgcli/internal/infrastructure"
)

func main() {
	inPath := flag.String("in", "", "input survey workbook (defaults to boe-nmg-household-survey-data.xlsx beside the executable)")
	outDir := flag.String("out", "", "output directory for the cleaned and aggregate tables (defaults to data/ beside the executable)")
	flag.Parse()

	// Initialize paths first to get default locations
	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	if *inPath == "" {
		*inPath = paths.InputWorkbook
	}
	if *outDir != "" {
		paths = paths.WithDataDir(*outDir)
	}

	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	if cfg.Logging.Output != "console" {
		cfg.Logging.FilePath = paths.GetLogPath("pipeline.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	runID := uuid.New().String()
	ctx := infrastructure.WithRunID(context.Background(), runID)

	logger.InfoContext(ctx, "starting NMG savings pipeline",
		slog.String("input", *inPath),
		slog.String("output_dir", paths.DataDir),
		slog.Int("min_year", cfg.Pipeline.MinYear),
		slog.Int("max_year", cfg.Pipeline.MaxYear))

	if err := run(ctx, logger, cfg, paths, *inPath, runID); err != nil {
		logger.ErrorContext(ctx, "pipeline failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "pipeline failed: %v\n", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "pipeline complete")
	fmt.Println("Pipeline complete")
}

// run executes the full pipeline: load, clean, aggregate, export.
// Warnings-only runs succeed; the warnings land in the log and the manifest.
func run(ctx context.Context, logger *slog.Logger, cfg *config.Config, paths *config.Paths, inPath, runID string) error {
	started := time.Now().UTC()

	rates := dataprocessing.DefaultRateTable()
	if err := rates.Covers(cfg.Pipeline.MinYear, cfg.Pipeline.MaxYear); err != nil {
		return err
	}

	loader := dataprocessing.NewLoader(logger)
	records, stats, err := loader.LoadWorkbook(ctx, inPath, cfg.Pipeline.MinYear, cfg.Pipeline.MaxYear)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "workbook loaded",
		slog.Int("sheets", stats.SheetsLoaded),
		slog.Int("rows", stats.RowsRead))

	cleaner := dataprocessing.NewCleaner(logger, rates, dataprocessing.CleanerConfig{
		MinYear:          cfg.Pipeline.MinYear,
		MaxYear:          cfg.Pipeline.MaxYear,
		MaxExclusionRate: cfg.Quality.MaxExclusionRate,
		MinCoverage:      cfg.Quality.MinCoverage,
	})
	cleaned, quality, err := cleaner.Clean(ctx, records)
	if err != nil {
		return err
	}

	aggregator := dataprocessing.NewAggregator(logger, dataprocessing.AggregatorConfig{
		BaselineStart:      cfg.Pipeline.BaselineStart,
		BaselineEnd:        cfg.Pipeline.BaselineEnd,
		LowConfidenceYears: cleaner.LowConfidenceYears(quality),
	})
	result, err := aggregator.Aggregate(ctx, cleaned)
	if err != nil {
		return err
	}

	writer := exporter.NewTableWriter(logger)

	headers, rows := exporter.HouseholdTable(cleaned)
	if err := writer.WriteTable(paths.HouseholdCSV, headers, rows); err != nil {
		return err
	}

	headers, rows = exporter.YearlyTable(result.YearlySummaries)
	if err := writer.WriteTable(paths.YearlyCSV, headers, rows); err != nil {
		return err
	}

	headers, rows = exporter.DecileTable(result.DecileSummaries)
	if err := writer.WriteTable(paths.DecileCSV, headers, rows); err != nil {
		return err
	}

	warnings := append(append([]string{}, quality.Warnings...), result.Warnings...)
	manifest := exporter.RunManifest{
		RunID:       runID,
		StartedAt:   started,
		CompletedAt: time.Now().UTC(),
		InputPath:   inPath,
		Baseline:    result.Baseline,
		Quality:     quality,
		Warnings:    warnings,
	}
	if err := writer.WriteManifest(paths.RunManifest, manifest); err != nil {
		return err
	}

	for _, warning := range warnings {
		logger.WarnContext(ctx, "data quality warning", slog.String("warning", warning))
	}

	logger.InfoContext(ctx, "tables written",
		slog.String("household_csv", paths.HouseholdCSV),
		slog.String("yearly_csv", paths.YearlyCSV),
		slog.String("decile_csv", paths.DecileCSV),
		slog.Float64("baseline", result.Baseline),
		slog.Int("households", len(cleaned)),
		slog.Int("years", len(result.YearlySummaries)),
		slog.Int("warnings", len(warnings)))

	return nil
}
