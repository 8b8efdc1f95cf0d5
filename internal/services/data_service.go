package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"eventpulse/internal/config"
	apperrors "eventpulse/internal/errors"
	"eventpulse/internal/files"
	"eventpulse/internal/infrastructure"
)

// Artifact describes one pipeline file under the data directory. Path is
// relative to the data directory, forward slashes, and doubles as the
// download identifier for GET /api/data/files/{path}.
type Artifact struct {
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	Modified  time.Time `json:"modified"`
}

// DataService lists and serves the artifacts the pipeline stages write
// under the data directory.
type DataService struct {
	paths     *config.Paths
	discovery *files.Discovery
	logger    *slog.Logger
}

// NewDataService creates a data service rooted at the configured paths.
func NewDataService(paths *config.Paths, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &DataService{
		paths:     paths,
		discovery: files.NewDiscovery(paths.DataDir),
		logger:    logger.With(slog.String("component", "data_service")),
	}
}

// artifactCategory pairs a listing category with its directory and the
// extensions the pipeline writes there.
type artifactCategory struct {
	name       string
	dir        string
	extensions []string
}

func (ds *DataService) categories() []artifactCategory {
	return []artifactCategory{
		{"raw", ds.paths.RawDir, []string{".xlsx", ".xls"}},
		{"cleaned", ds.paths.CleanedDir, []string{".csv", ".json", ".txt"}},
		{"reports", ds.paths.ReportsDir, []string{".json"}},
		{"charts", ds.paths.ChartsDir, []string{".png", ".html"}},
	}
}

// ListArtifacts scans the artifact directories concurrently and returns
// everything the pipeline has produced, ordered by category then name.
// Directories that do not exist yet list as empty rather than failing,
// so the endpoint works before the first run.
func (ds *DataService) ListArtifacts(ctx context.Context) ([]Artifact, error) {
	categories := ds.categories()
	results := make([][]Artifact, len(categories))

	g, _ := errgroup.WithContext(ctx)
	for i, category := range categories {
		g.Go(func() error {
			artifacts, err := ds.scanCategory(category)
			if err != nil {
				return err
			}
			results[i] = artifacts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	var all []Artifact
	for _, artifacts := range results {
		all = append(all, artifacts...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Category != all[j].Category {
			return all[i].Category < all[j].Category
		}
		return all[i].Name < all[j].Name
	})

	ds.logger.DebugContext(ctx, "Listed artifacts",
		slog.Int("count", len(all)))
	return all, nil
}

func (ds *DataService) scanCategory(category artifactCategory) ([]Artifact, error) {
	entries, err := os.ReadDir(category.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s directory: %w", category.name, err)
	}

	var artifacts []Artifact
	for _, entry := range entries {
		if entry.IsDir() || !hasExtension(entry.Name(), category.extensions) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		rel, err := filepath.Rel(ds.paths.DataDir, filepath.Join(category.dir, entry.Name()))
		if err != nil {
			continue
		}

		artifacts = append(artifacts, Artifact{
			Name:      entry.Name(),
			Category:  category.name,
			Path:      filepath.ToSlash(rel),
			SizeBytes: info.Size(),
			Modified:  info.ModTime(),
		})
	}
	return artifacts, nil
}

func hasExtension(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ServeArtifact streams one artifact as a download. The name is the
// listing's relative path; anything resolving outside the data directory
// is rejected.
func (ds *DataService) ServeArtifact(ctx context.Context, w http.ResponseWriter, r *http.Request, name string) error {
	if name == "" {
		return fmt.Errorf("empty artifact path: %w", apperrors.ErrInvalidRequest)
	}

	cleaned := filepath.FromSlash(filepath.Clean(name))
	fullPath := filepath.Join(ds.paths.DataDir, cleaned)

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("invalid artifact path %q: %w", name, apperrors.ErrInvalidRequest)
	}
	absData, err := filepath.Abs(ds.paths.DataDir)
	if err != nil {
		return fmt.Errorf("failed to resolve data directory: %w", err)
	}
	if absPath != absData && !strings.HasPrefix(absPath, absData+string(os.PathSeparator)) {
		ds.logger.WarnContext(ctx, "Rejected artifact path outside data directory",
			slog.String("requested", name),
			slog.String("resolved", absPath))
		return fmt.Errorf("invalid artifact path %q: %w", name, apperrors.ErrInvalidRequest)
	}

	info, err := os.Stat(absPath)
	if os.IsNotExist(err) || (err == nil && info.IsDir()) {
		return fmt.Errorf("%w: %s", apperrors.ErrArtifactNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("failed to stat artifact %s: %w", name, err)
	}

	ds.logger.DebugContext(ctx, "Serving artifact",
		slog.String("path", name),
		slog.Int64("size_bytes", info.Size()))

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(cleaned)))
	http.ServeFile(w, r, absPath)
	return nil
}

// LatestWorkbook returns the newest raw workbook, the one the cleaning
// stage would pick up.
func (ds *DataService) LatestWorkbook(ctx context.Context) (Artifact, error) {
	workbooks, err := ds.discovery.FindExcelFiles(ds.paths.RawDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Artifact{}, fmt.Errorf("%w: %s is empty", apperrors.ErrWorkbookNotFound, ds.paths.RawDir)
		}
		return Artifact{}, fmt.Errorf("failed to scan raw directory: %w", err)
	}

	latest, ok := files.GetLatestFile(workbooks)
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %s is empty", apperrors.ErrWorkbookNotFound, ds.paths.RawDir)
	}

	rel, err := filepath.Rel(ds.paths.DataDir, latest.Path)
	if err != nil {
		rel = latest.Name
	}
	return Artifact{
		Name:      latest.Name,
		Category:  "raw",
		Path:      filepath.ToSlash(rel),
		SizeBytes: latest.Size,
		Modified:  latest.ModTime,
	}, nil
}
