package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"eventpulse/internal/config"
)

// ArtifactWriter persists JSON artifacts such as the KPI summary and the
// insights report
type ArtifactWriter struct {
	paths *config.Paths
}

// NewArtifactWriter creates a new artifact writer
func NewArtifactWriter(paths *config.Paths) *ArtifactWriter {
	return &ArtifactWriter{paths: paths}
}

// WriteJSON marshals v with indentation and writes it to the given path.
// Relative paths resolve against the reports directory.
func (w *ArtifactWriter) WriteJSON(filePath string, v any) error {
	fullPath := filePath
	if !filepath.IsAbs(fullPath) {
		fullPath = w.paths.GetReportPath(fullPath)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	slog.Info("Writing JSON artifact",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("byte_count", len(data)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(fullPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// WriteText writes a plain-text artifact such as the cleaning log.
// Relative paths resolve against the reports directory.
func (w *ArtifactWriter) WriteText(filePath string, content string) error {
	fullPath := filePath
	if !filepath.IsAbs(fullPath) {
		fullPath = w.paths.GetReportPath(fullPath)
	}

	slog.Info("Writing text artifact",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("byte_count", len(content)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
