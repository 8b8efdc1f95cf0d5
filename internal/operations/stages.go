package operations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"eventpulse/internal/analysis"
	"eventpulse/internal/cleaning"
	"eventpulse/internal/config"
	apperrors "eventpulse/internal/errors"
	"eventpulse/internal/files"
	"eventpulse/internal/infrastructure"
	"eventpulse/internal/rendering"
	"eventpulse/pkg/contracts/domain"
)

// stageProgress bridges a pipeline component's progress callback to the
// operation state and the broadcaster.
func stageProgress(op *Operation, broadcaster *StatusBroadcaster, stageID string) func(percent int, message string) {
	return func(percent int, message string) {
		if state := op.StageState(stageID); state != nil {
			state.UpdateProgress(percent, message)
		}
		if broadcaster != nil {
			broadcaster.UpdateStageProgress(op.ID, stageID, percent, message)
		}
	}
}

// CleanStage runs the workbook cleaner.
type CleanStage struct {
	paths           *config.Paths
	broadcaster     *StatusBroadcaster
	defaultWorkbook string
}

// NewCleanStage creates the cleaning stage. defaultWorkbook is the
// configured workbook to fall back on when a request names none; empty
// means the newest file in the raw directory.
func NewCleanStage(paths *config.Paths, broadcaster *StatusBroadcaster, defaultWorkbook string) *CleanStage {
	return &CleanStage{paths: paths, broadcaster: broadcaster, defaultWorkbook: defaultWorkbook}
}

func (s *CleanStage) ID() string   { return domain.StepIDClean }
func (s *CleanStage) Name() string { return domain.StepNameClean }

// Run cleans the requested workbook, or the newest one in the raw data
// directory when the request named none.
func (s *CleanStage) Run(ctx context.Context, op *Operation) error {
	workbook, err := s.locateWorkbook(op.WorkbookPath)
	if err != nil {
		return err
	}

	cleaner := cleaning.New(s.paths)
	cleaner.OnProgress(stageProgress(op, s.broadcaster, s.ID()))

	result, err := cleaner.Clean(ctx, workbook)
	if err != nil {
		return err
	}

	if state := op.StageState(s.ID()); state != nil {
		state.SetMetadata("workbook", filepath.Base(workbook))
		state.SetMetadata("datasets", len(result.Datasets))
		state.SetMetadata("rows_cleaned", result.TotalRows())
		state.SetMetadata("actions", result.Actions)
	}
	return nil
}

func (s *CleanStage) locateWorkbook(requested string) (string, error) {
	if requested == "" {
		requested = s.defaultWorkbook
	}
	if requested != "" {
		path := requested
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.paths.RawDir, path)
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", apperrors.ErrWorkbookNotFound, requested)
		}
		return path, nil
	}

	discovery := files.NewDiscovery(s.paths.DataDir)
	found, err := discovery.FindExcelFiles(s.paths.RawDir)
	if err != nil {
		return "", fmt.Errorf("%w: cannot scan %s", apperrors.ErrWorkbookNotFound, s.paths.RawDir)
	}
	latest, ok := files.GetLatestFile(found)
	if !ok {
		return "", fmt.Errorf("%w: no workbooks in %s", apperrors.ErrWorkbookNotFound, s.paths.RawDir)
	}
	return latest.Path, nil
}

// AnalyzeStage runs the insight analyzer over the cleaned datasets.
type AnalyzeStage struct {
	paths       *config.Paths
	broadcaster *StatusBroadcaster
	metrics     *infrastructure.BusinessMetrics
}

// NewAnalyzeStage creates the analysis stage.
func NewAnalyzeStage(paths *config.Paths, broadcaster *StatusBroadcaster, metrics *infrastructure.BusinessMetrics) *AnalyzeStage {
	return &AnalyzeStage{paths: paths, broadcaster: broadcaster, metrics: metrics}
}

func (s *AnalyzeStage) ID() string   { return domain.StepIDAnalyze }
func (s *AnalyzeStage) Name() string { return domain.StepNameAnalyze }

func (s *AnalyzeStage) Run(ctx context.Context, op *Operation) error {
	analyzer := analysis.New(s.paths)
	analyzer.OnProgress(stageProgress(op, s.broadcaster, s.ID()))

	bundle, err := analyzer.Analyze(ctx)
	if err != nil {
		return err
	}

	provenance := bundle.ProvenanceBySection()
	for section, source := range provenance {
		infrastructure.RecordAnalysisSection(ctx, s.metrics, section, string(source))
	}

	if state := op.StageState(s.ID()); state != nil {
		state.SetMetadata("sections", len(provenance))
		if fallbacks := bundle.FallbackSections(); len(fallbacks) > 0 {
			state.SetMetadata("fallback_sections", fallbacks)
		}
	}
	return nil
}

// RenderStage turns the insight bundle into chart pages and images.
type RenderStage struct {
	paths         *config.Paths
	broadcaster   *StatusBroadcaster
	disableImages bool
}

// NewRenderStage creates the rendering stage. disableImages skips the
// headless browser and ships HTML chart sources only.
func NewRenderStage(paths *config.Paths, broadcaster *StatusBroadcaster, disableImages bool) *RenderStage {
	return &RenderStage{paths: paths, broadcaster: broadcaster, disableImages: disableImages}
}

func (s *RenderStage) ID() string   { return domain.StepIDRender }
func (s *RenderStage) Name() string { return domain.StepNameRender }

func (s *RenderStage) Run(ctx context.Context, op *Operation) error {
	renderer := rendering.New(s.paths)
	renderer.OnProgress(stageProgress(op, s.broadcaster, s.ID()))
	if s.disableImages {
		renderer.DisableImages()
	}

	result, err := renderer.Render(ctx)
	if err != nil {
		return err
	}

	if state := op.StageState(s.ID()); state != nil {
		state.SetMetadata("charts", len(result.Charts))
		state.SetMetadata("images_rendered", result.RenderedCount())
		if result.ImagesSkipped {
			state.SetMetadata("images_skipped", result.SkipReason)
		}
	}
	return nil
}

// RegisterPipeline registers the three pipeline stages, in execution
// order, on the manager's registry.
func RegisterPipeline(m *Manager, paths *config.Paths, metrics *infrastructure.BusinessMetrics, pipeline config.PipelineConfig) error {
	broadcaster := m.Broadcaster()
	stages := []Stage{
		NewCleanStage(paths, broadcaster, pipeline.WorkbookFile),
		NewAnalyzeStage(paths, broadcaster, metrics),
		NewRenderStage(paths, broadcaster, pipeline.ChartRenderDisabled),
	}
	for _, stage := range stages {
		if err := m.Registry().Register(stage); err != nil {
			return err
		}
	}
	return nil
}
