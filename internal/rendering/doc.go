// Package rendering implements the third pipeline stage: turning the
// insights bundle into the five fixed-name chart images the report and
// the dashboard embed.
//
// This package contains two main components:
//
// Charts: BuildCharts derives one self-contained HTML page per figure
// (ROI by channel, conversion by source, target progress, stuck deal
// blockers, monthly forecast). Pages draw with inline canvas 2D and
// carry their data as an embedded JSON spec, so they open identically
// from file://, the charts directory, or the dashboard.
//
// Renderer: Orchestrates the run. It reads insights.json back from
// disk, writes every chart page into data/reports/charts/ and captures
// each page to PNG through headless Chrome (chromedp). Chrome is probed
// once per run; when the binary is missing the run downgrades to
// sources only, logs a warning, and still succeeds. Each capture gets
// its own timeout so one hung page cannot stall the stage.
//
// Example usage:
//
//	renderer := rendering.New(paths)
//	result, err := renderer.Render(ctx)
//	if err == nil && result.ImagesSkipped {
//		slog.Warn("charts written without images", slog.String("reason", result.SkipReason))
//	}
package rendering
