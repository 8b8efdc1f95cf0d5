package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"eventpulse/internal/config"
)

// utf8BOM is prepended so Excel opens the cleaned CSVs as UTF-8
// instead of guessing the locale codepage.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes CSV artifacts into the data tree. Relative paths are
// routed by prefix: cleaned/ and charts/ land in their directories,
// anything else lands under reports.
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a CSV writer rooted at the given paths.
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures a single CSV write.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool
}

// WriteCSV writes one CSV file, replacing any previous artifact at the
// same path and creating parent directories as needed.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Info("Writing CSV artifact",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// WriteSimpleCSV writes headers plus records with a BOM, the form every
// cleaned dataset uses.
func (w *CSVWriter) WriteSimpleCSV(filePath string, headers []string, records [][]string) error {
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

// resolvePath maps a relative artifact path to its directory.
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}

	switch {
	case strings.HasPrefix(filePath, "cleaned/"):
		return w.paths.GetCleanedPath(strings.TrimPrefix(filePath, "cleaned/"))
	case strings.HasPrefix(filePath, "charts/"):
		return w.paths.GetChartPath(strings.TrimPrefix(filePath, "charts/"))
	default:
		return w.paths.GetReportPath(filePath)
	}
}
