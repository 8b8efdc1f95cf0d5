package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"eventpulse/internal/cleaning"
	"eventpulse/internal/config"
	"eventpulse/internal/files"
	"eventpulse/internal/infrastructure"
)

func main() {
	workbook := flag.String("workbook", "", "workbook to clean, an absolute path or a file name under data/raw (defaults to the newest workbook there)")
	flag.Parse()

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create data directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("cleaner.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	requested := *workbook
	if requested == "" {
		requested = cfg.Pipeline.WorkbookFile
	}
	source, err := resolveWorkbook(paths, requested)
	if err != nil {
		logger.Error("No workbook to clean", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Starting cleaning run",
		slog.String("workbook", source),
		slog.String("cleaned_dir", paths.CleanedDir))

	ctx, cancel := context.WithTimeout(context.Background(), config.CleanTimeout)
	defer cancel()

	cleaner := cleaning.New(paths)
	cleaner.OnProgress(func(percent int, message string) {
		logger.Info("Cleaning progress",
			slog.Int("percent", percent),
			slog.String("message", message))
	})

	result, err := cleaner.Clean(ctx, source)
	if err != nil {
		logger.Error("Cleaning failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Cleaned %s\n", filepath.Base(source))
	for _, dataset := range result.Datasets {
		fmt.Printf("  %-16s %4d rows -> %s\n", dataset.Dataset, dataset.RowsOut, dataset.OutputFile)
	}
	fmt.Printf("KPI summary: %s\n", paths.KPISummaryJSON)
	fmt.Printf("Cleaning log: %s (%d actions)\n", paths.CleaningLog, result.Actions)
}

// resolveWorkbook picks the workbook to clean: the requested one when
// given, otherwise the newest .xlsx in the raw directory.
func resolveWorkbook(paths *config.Paths, requested string) (string, error) {
	if requested != "" {
		path := requested
		if !filepath.IsAbs(path) {
			path = filepath.Join(paths.RawDir, path)
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("workbook not found: %s", requested)
		}
		return path, nil
	}

	discovery := files.NewDiscovery(paths.DataDir)
	found, err := discovery.FindExcelFiles(paths.RawDir)
	if err != nil {
		return "", fmt.Errorf("cannot scan %s: %w", paths.RawDir, err)
	}
	latest, ok := files.GetLatestFile(found)
	if !ok {
		return "", fmt.Errorf("no workbooks in %s, drop a marketing export there first", paths.RawDir)
	}
	return latest.Path, nil
}
