// Package cleaning implements the first pipeline stage: turning a raw
// monthly marketing workbook into the five cleaned CSV datasets, the KPI
// summary, and the cleaning log.
//
// This package contains three main components:
//
// Workbook: Opens an Excel workbook and resolves each dataset to its
// sheet, tolerating renamed sheets via keyword matching.
//
// Cleaner: Orchestrates the full run. Datasets are cleaned in a fixed
// order (website traffic, social media, email campaigns, sales pipeline,
// ad spend), then the KPI summary is computed from the cleaned sales and
// ad data. Every transformation is recorded in a Log that becomes
// cleaning_log.txt.
//
// Normalization helpers: NormalizeRate, NormalizeCurrency, ParseDate and
// friends implement the shared cell-level rules. Rates above 1 are
// treated as percentages and divided by 100, so normalization is
// idempotent; currency cells lose their EUR symbols and thousands
// separators; dates accept the formats that appear in the source
// workbooks plus Excel serial numbers.
//
// Example usage:
//
//	cleaner := cleaning.New(paths)
//	cleaner.OnProgress(func(pct int, msg string) {
//		slog.Info("cleaning", slog.Int("pct", pct), slog.String("msg", msg))
//	})
//	result, err := cleaner.Clean(ctx, paths.GetRawPath("marketing_data_2026_01.xlsx"))
package cleaning
