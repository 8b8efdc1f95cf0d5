// Package analysis implements the second pipeline stage: reading the
// five cleaned CSV datasets and producing the insights bundle the
// dashboard and chart renderer consume.
//
// This package contains three main components:
//
// Table: A lightweight CSV view with keyword-based column resolution.
// Each section names the columns it needs by keyword (for example
// "spend", "cost") and resolution scans headers in order, so the
// analysis tolerates renamed columns the same way the cleaner tolerates
// renamed sheets.
//
// Analyzer: Orchestrates the full run. Sections are computed in a fixed
// order (the five dataset breakdowns, then ROI, conversion, forecast,
// hidden insights, KPIs, recommendations) and each one is recovered
// independently: a missing dataset, a computation error, or a panic
// replaces that section with its hardcoded fallback values and records
// the reason in its provenance. The bundle written to insights.json is
// therefore always structurally complete.
//
// Fallbacks: The fallback* constructors carry the reference figures from
// the January planning review, marked Source "fallback" so consumers can
// badge them instead of mistaking them for measured numbers.
//
// Example usage:
//
//	analyzer := analysis.New(paths)
//	analyzer.OnProgress(func(pct int, msg string) {
//		slog.Info("analysis", slog.Int("pct", pct), slog.String("msg", msg))
//	})
//	bundle, err := analyzer.Analyze(ctx)
package analysis
