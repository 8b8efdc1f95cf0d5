package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"eventpulse/internal/config"
	"eventpulse/internal/exporter"
	"eventpulse/internal/files"
	"eventpulse/internal/validation"
	"eventpulse/pkg/contracts/domain"
)

// ProgressFunc receives coarse progress while a cleaning run is in
// flight. percent runs 0-100 across the whole stage.
type ProgressFunc func(percent int, message string)

// Cleaner runs the cleaning stage end to end: it loads a monthly
// workbook, cleans the five datasets in order, computes the KPI summary,
// and writes every artifact under data/cleaned.
type Cleaner struct {
	paths      *config.Paths
	datasets   *exporter.DatasetExporter
	artifacts  *exporter.ArtifactWriter
	onProgress ProgressFunc
	now        func() time.Time
}

// New creates a Cleaner writing through the given path layout.
func New(paths *config.Paths) *Cleaner {
	return &Cleaner{
		paths:     paths,
		datasets:  exporter.NewDatasetExporter(exporter.NewCSVWriter(paths)),
		artifacts: exporter.NewArtifactWriter(paths),
		now:       time.Now,
	}
}

// OnProgress registers a callback invoked as the run advances.
func (c *Cleaner) OnProgress(fn ProgressFunc) {
	c.onProgress = fn
}

func (c *Cleaner) progress(percent int, message string) {
	if c.onProgress != nil {
		c.onProgress(percent, message)
	}
}

// Clean executes the cleaning pipeline against the workbook at
// workbookPath. A missing sheet or unreadable workbook fails the run;
// artifacts already written by a failed run are left in place for
// inspection.
func (c *Cleaner) Clean(ctx context.Context, workbookPath string) (*domain.CleaningResult, error) {
	started := c.now()

	if err := validation.ValidateWorkbook(workbookPath); err != nil {
		return nil, err
	}

	fingerprint, err := files.Fingerprint(workbookPath)
	if err != nil {
		return nil, err
	}

	wb, err := OpenWorkbook(workbookPath)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	workbookName := filepath.Base(workbookPath)
	slog.Info("Starting cleaning run",
		slog.String("workbook", workbookName),
		slog.String("fingerprint", fingerprint))

	log := NewLog()
	log.AddGlobal("loaded workbook %s (fingerprint %s)", workbookName, fingerprint)
	c.progress(5, "workbook loaded")

	var (
		salesRows []domain.SalesPipelineRow
		adRows    []domain.AdSpendRow
	)

	stages := []struct {
		percent int
		message string
		run     func() (domain.DatasetCleaningResult, error)
	}{
		{15, "cleaning website traffic", func() (domain.DatasetCleaningResult, error) {
			return c.cleanWebsite(wb, log)
		}},
		{30, "cleaning social media", func() (domain.DatasetCleaningResult, error) {
			return c.cleanSocial(wb, log)
		}},
		{45, "cleaning email campaigns", func() (domain.DatasetCleaningResult, error) {
			return c.cleanEmail(wb, log)
		}},
		{60, "cleaning sales pipeline", func() (domain.DatasetCleaningResult, error) {
			rows, result, err := c.cleanSales(wb, log)
			salesRows = rows
			return result, err
		}},
		{75, "cleaning ad spend", func() (domain.DatasetCleaningResult, error) {
			rows, result, err := c.cleanAds(wb, log)
			adRows = rows
			return result, err
		}},
	}

	results := make([]domain.DatasetCleaningResult, 0, len(stages))
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.progress(stage.percent, stage.message)

		result, err := stage.run()
		if err != nil {
			slog.Error("Dataset cleaning failed",
				slog.String("dataset", string(result.Dataset)),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to clean %s: %w", result.Dataset, err)
		}
		slog.Info("Dataset cleaned",
			slog.String("dataset", string(result.Dataset)),
			slog.String("sheet", result.SheetName),
			slog.Int("rows_in", result.RowsIn),
			slog.Int("rows_out", result.RowsOut))
		results = append(results, result)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.progress(85, "calculating kpi summary")

	kpis := ComputeKPISummary(salesRows, adRows, c.now())
	kpis.SourceWorkbook = workbookName
	kpis.WorkbookFingerprint = fingerprint
	log.AddGlobal("calculated kpi summary (%d leads, %.1f%% conversion rate)",
		kpis.TotalLeads, kpis.ConversionRate)

	if err := c.artifacts.WriteJSON(c.paths.KPISummaryJSON, kpis); err != nil {
		return nil, fmt.Errorf("failed to write kpi summary: %w", err)
	}

	c.progress(95, "writing cleaning log")
	log.AddGlobal("cleaning complete")
	if err := c.artifacts.WriteText(c.paths.CleaningLog, log.Render()); err != nil {
		return nil, fmt.Errorf("failed to write cleaning log: %w", err)
	}

	completed := c.now()
	result := &domain.CleaningResult{
		SourceWorkbook: workbookName,
		Fingerprint:    fingerprint,
		StartedAt:      started,
		CompletedAt:    completed,
		Datasets:       results,
		KPISummary:     kpis,
		LogFile:        config.CleaningLogFile,
		Actions:        len(log.Actions()),
	}

	slog.Info("Cleaning run complete",
		slog.String("workbook", workbookName),
		slog.Int("datasets", len(results)),
		slog.Int("rows", result.TotalRows()),
		slog.Duration("duration", completed.Sub(started)))
	c.progress(100, "cleaning complete")

	return result, nil
}

func (c *Cleaner) cleanWebsite(wb *Workbook, log *Log) (domain.DatasetCleaningResult, error) {
	dataset := domain.DatasetWebsiteTraffic
	sheetName, rows, err := wb.Rows(dataset)
	if err != nil {
		return domain.DatasetCleaningResult{Dataset: dataset}, err
	}
	log.Add(dataset, "loaded sheet %q (%d data rows)", sheetName, len(rows)-1)

	cleaned, result, err := cleanWebsiteTraffic(rows, log)
	if err != nil {
		return result, err
	}
	if err := c.datasets.ExportWebsiteTraffic(cleaned, c.paths.WebsiteTrafficCSV); err != nil {
		return result, err
	}
	return c.finish(result, sheetName, log), nil
}

func (c *Cleaner) cleanSocial(wb *Workbook, log *Log) (domain.DatasetCleaningResult, error) {
	dataset := domain.DatasetSocialMedia
	sheetName, rows, err := wb.Rows(dataset)
	if err != nil {
		return domain.DatasetCleaningResult{Dataset: dataset}, err
	}
	log.Add(dataset, "loaded sheet %q (%d data rows)", sheetName, len(rows)-1)

	cleaned, result, err := cleanSocialMedia(rows, log)
	if err != nil {
		return result, err
	}
	if err := c.datasets.ExportSocialMedia(cleaned, c.paths.SocialMediaCSV); err != nil {
		return result, err
	}
	return c.finish(result, sheetName, log), nil
}

func (c *Cleaner) cleanEmail(wb *Workbook, log *Log) (domain.DatasetCleaningResult, error) {
	dataset := domain.DatasetEmailCampaigns
	sheetName, rows, err := wb.Rows(dataset)
	if err != nil {
		return domain.DatasetCleaningResult{Dataset: dataset}, err
	}
	log.Add(dataset, "loaded sheet %q (%d data rows)", sheetName, len(rows)-1)

	cleaned, result, err := cleanEmailCampaigns(rows, log)
	if err != nil {
		return result, err
	}
	if err := c.datasets.ExportEmailCampaigns(cleaned, c.paths.EmailCampaignsCSV); err != nil {
		return result, err
	}
	return c.finish(result, sheetName, log), nil
}

func (c *Cleaner) cleanSales(wb *Workbook, log *Log) ([]domain.SalesPipelineRow, domain.DatasetCleaningResult, error) {
	dataset := domain.DatasetSalesPipeline
	sheetName, rows, err := wb.Rows(dataset)
	if err != nil {
		return nil, domain.DatasetCleaningResult{Dataset: dataset}, err
	}
	log.Add(dataset, "loaded sheet %q (%d data rows)", sheetName, len(rows)-1)

	cleaned, result, err := cleanSalesPipeline(rows, log)
	if err != nil {
		return nil, result, err
	}
	if err := c.datasets.ExportSalesPipeline(cleaned, c.paths.SalesPipelineCSV); err != nil {
		return nil, result, err
	}
	return cleaned, c.finish(result, sheetName, log), nil
}

func (c *Cleaner) cleanAds(wb *Workbook, log *Log) ([]domain.AdSpendRow, domain.DatasetCleaningResult, error) {
	dataset := domain.DatasetAdSpend
	sheetName, rows, err := wb.Rows(dataset)
	if err != nil {
		return nil, domain.DatasetCleaningResult{Dataset: dataset}, err
	}
	log.Add(dataset, "loaded sheet %q (%d data rows)", sheetName, len(rows)-1)

	cleaned, result, err := cleanAdSpend(rows, log)
	if err != nil {
		return nil, result, err
	}
	if err := c.datasets.ExportAdSpend(cleaned, c.paths.AdSpendCSV); err != nil {
		return nil, result, err
	}
	return cleaned, c.finish(result, sheetName, log), nil
}

// finish records the saved artifact in the log and fills the result
// fields only the orchestrator knows.
func (c *Cleaner) finish(result domain.DatasetCleaningResult, sheetName string, log *Log) domain.DatasetCleaningResult {
	log.Add(result.Dataset, "saved %s (%d rows)", result.Dataset.CleanedFileName(), result.RowsOut)
	result.SheetName = sheetName
	result.OutputFile = result.Dataset.CleanedFileName()
	result.ActionCount = log.CountFor(result.Dataset)
	return result
}
