package rendering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"eventpulse/internal/config"
	apperrors "eventpulse/internal/errors"
	"eventpulse/pkg/contracts/domain"
)

// ProgressFunc receives coarse progress while a render run is in
// flight. percent runs 0-100 across the whole stage.
type ProgressFunc func(percent int, message string)

// Renderer runs the render stage end to end: it reads insights.json,
// writes the five chart pages into the charts directory and captures
// each page to PNG through headless Chrome. A machine without Chrome
// still gets the HTML sources, image capture is best effort.
type Renderer struct {
	paths      *config.Paths
	onProgress ProgressFunc
	now        func() time.Time

	session func(ctx context.Context) (context.Context, context.CancelFunc, error)
	capture func(ctx context.Context, htmlPath, pngPath string) error
}

// New creates a Renderer reading and writing through the given path
// layout.
func New(paths *config.Paths) *Renderer {
	return &Renderer{
		paths:   paths,
		now:     time.Now,
		session: newChromeSession,
		capture: screenshotChart,
	}
}

// OnProgress registers a callback invoked as the run advances.
func (r *Renderer) OnProgress(fn ProgressFunc) {
	r.onProgress = fn
}

// DisableImages turns off browser capture for this renderer. Chart pages
// are still written; the result reports the images as skipped.
func (r *Renderer) DisableImages() {
	r.session = func(ctx context.Context) (context.Context, context.CancelFunc, error) {
		return nil, nil, errors.New("image capture disabled by configuration")
	}
}

func (r *Renderer) progress(percent int, message string) {
	if r.onProgress != nil {
		r.onProgress(percent, message)
	}
}

// Render executes the render stage. The chart pages always land on disk;
// a missing or failing browser downgrades the run to sources only and is
// reported on the result, not as an error. The only fatal errors are a
// missing insight bundle, an unwritable charts directory, and context
// cancellation.
func (r *Renderer) Render(ctx context.Context) (*domain.RenderResult, error) {
	started := r.now()

	slog.Info("Starting render run",
		slog.String("bundle", r.paths.InsightsJSON),
		slog.String("charts_dir", r.paths.ChartsDir))
	r.progress(5, "loading insight bundle")

	bundle, err := r.loadBundle()
	if err != nil {
		return nil, err
	}

	r.progress(12, "building chart documents")
	charts, err := BuildCharts(bundle)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(r.paths.ChartsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create charts directory: %w", err)
	}

	result := &domain.RenderResult{StartedAt: started}
	for _, chart := range charts {
		htmlPath := filepath.Join(r.paths.ChartsDir, chart.HTML)
		if err := os.WriteFile(htmlPath, chart.Source, 0644); err != nil {
			return nil, fmt.Errorf("failed to write chart source %s: %w", chart.HTML, err)
		}
		result.Charts = append(result.Charts, domain.ChartRenderResult{
			Name:     chart.PNG,
			Title:    chart.Title,
			HTMLFile: chart.HTML,
		})
	}
	r.progress(20, "chart sources written")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session, cancel, err := r.session(ctx)
	if err != nil {
		slog.Warn("Headless Chrome unavailable, chart images skipped",
			slog.String("error", err.Error()),
			slog.Int("chart_count", len(charts)))
		result.ImagesSkipped = true
		result.SkipReason = err.Error()
		result.CompletedAt = r.now()
		r.progress(100, "chart sources written, images skipped")
		return result, nil
	}
	defer cancel()

	for i, chart := range charts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.progress(20+(75*(i+1))/len(charts), "rendering "+chart.PNG)

		htmlPath := filepath.Join(r.paths.ChartsDir, chart.HTML)
		pngPath := r.paths.GetChartPath(chart.PNG)
		if err := r.capture(session, htmlPath, pngPath); err != nil {
			slog.Warn("Chart capture failed",
				slog.String("chart", chart.PNG),
				slog.String("error", err.Error()))
			continue
		}
		result.Charts[i].ImageFile = chart.PNG
		result.Charts[i].Rendered = true
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.CompletedAt = r.now()
	slog.Info("Render run complete",
		slog.Int("charts", len(result.Charts)),
		slog.Int("images", result.RenderedCount()),
		slog.Duration("duration", result.CompletedAt.Sub(started)))
	r.progress(100, "charts rendered")
	return result, nil
}

// loadBundle reads the analyzer output back from disk. Rendering always
// works from the persisted bundle so the stage can run on its own.
func (r *Renderer) loadBundle() (*domain.Insights, error) {
	data, err := os.ReadFile(r.paths.InsightsJSON)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s (run the analyze stage first)",
			apperrors.ErrArtifactNotFound, filepath.Base(r.paths.InsightsJSON))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read insight bundle: %w", err)
	}

	var bundle domain.Insights
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to decode insight bundle: %w", err)
	}
	return &bundle, nil
}
