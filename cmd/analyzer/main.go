package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"eventpulse/internal/analysis"
	"eventpulse/internal/config"
	"eventpulse/internal/infrastructure"
	"eventpulse/internal/rendering"
)

func main() {
	skipCharts := flag.Bool("skip-charts", false, "write chart HTML sources but skip headless Chrome PNG capture")
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
		cfg.Logging.FilePath = paths.GetLogPath("analyzer.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	logger.Info("Starting analysis run",
		slog.String("cleaned_dir", paths.CleanedDir),
		slog.String("reports_dir", paths.ReportsDir))

	analyzeCtx, cancelAnalyze := context.WithTimeout(context.Background(), config.AnalyzeTimeout)
	defer cancelAnalyze()

	analyzer := analysis.New(paths)
	analyzer.OnProgress(func(percent int, message string) {
		logger.Info("Analysis progress",
			slog.Int("percent", percent),
			slog.String("message", message))
	})

	bundle, err := analyzer.Analyze(analyzeCtx)
	if err != nil {
		logger.Error("Analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Insight bundle: %s\n", paths.InsightsJSON)
	if fallbacks := bundle.FallbackSections(); len(fallbacks) > 0 {
		fmt.Printf("Sections on fallback values: %s\n", strings.Join(fallbacks, ", "))
	}

	renderCtx, cancelRender := context.WithTimeout(context.Background(), config.RenderTimeout)
	defer cancelRender()

	renderer := rendering.New(paths)
	renderer.OnProgress(func(percent int, message string) {
		logger.Info("Render progress",
			slog.Int("percent", percent),
			slog.String("message", message))
	})
	if *skipCharts || cfg.Pipeline.ChartRenderDisabled {
		renderer.DisableImages()
	}

	result, err := renderer.Render(renderCtx)
	if err != nil {
		logger.Error("Chart rendering failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if result.ImagesSkipped {
		logger.Warn("Chart images skipped",
			slog.String("reason", result.SkipReason))
		fmt.Printf("Charts: HTML sources only in %s (%s)\n", paths.ChartsDir, result.SkipReason)
		return
	}
	fmt.Printf("Charts: %d of %d images in %s\n", result.RenderedCount(), len(result.Charts), paths.ChartsDir)
}
