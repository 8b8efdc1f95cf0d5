package cleaning

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "eventpulse/internal/errors"
	"eventpulse/pkg/contracts/domain"
)

// sheetKeywords drive the fallback scan when a workbook does not carry
// the primary sheet name for a dataset.
var sheetKeywords = map[domain.Dataset][]string{
	domain.DatasetWebsiteTraffic: {"website", "traffic"},
	domain.DatasetSocialMedia:    {"social"},
	domain.DatasetEmailCampaigns: {"email", "campaign"},
	domain.DatasetSalesPipeline:  {"sales", "pipeline"},
	domain.DatasetAdSpend:        {"ad spend", "spend"},
}

// Workbook wraps an open raw marketing workbook.
type Workbook struct {
	file *excelize.File
	path string
}

// OpenWorkbook opens the raw xlsx workbook at path.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrWorkbookNotFound, path, err)
	}
	return &Workbook{file: f, path: path}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Path returns the workbook's file path.
func (w *Workbook) Path() string {
	return w.path
}

// SheetNames returns the workbook's sheet list in file order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// ResolveSheet finds the worksheet holding a dataset. The primary sheet
// name is tried first; when absent, the sheet list is scanned for a name
// containing any of the dataset's keywords, case-insensitive.
func (w *Workbook) ResolveSheet(dataset domain.Dataset) (string, error) {
	primary := dataset.SheetName()
	for _, name := range w.file.GetSheetList() {
		if name == primary {
			return name, nil
		}
	}

	for _, keyword := range sheetKeywords[dataset] {
		for _, name := range w.file.GetSheetList() {
			if strings.Contains(strings.ToLower(name), keyword) {
				slog.Info("Resolved dataset sheet by keyword",
					slog.String("dataset", string(dataset)),
					slog.String("keyword", keyword),
					slog.String("sheet_name", name))
				return name, nil
			}
		}
	}

	return "", fmt.Errorf("%w: no sheet for dataset %s (looked for %q)",
		apperrors.ErrSheetNotFound, dataset, primary)
}

// Rows returns a dataset's sheet contents, header row included.
func (w *Workbook) Rows(dataset domain.Dataset) (string, [][]string, error) {
	sheetName, err := w.ResolveSheet(dataset)
	if err != nil {
		return "", nil, err
	}

	rows, err := w.file.GetRows(sheetName)
	if err != nil {
		return sheetName, nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	if len(rows) < 2 {
		return sheetName, nil, fmt.Errorf("%w: sheet %s has no data rows",
			apperrors.ErrDatasetEmpty, sheetName)
	}
	return sheetName, rows, nil
}

// headerMap maps trimmed column headers to their positions. Lookup is
// exact first, then case-insensitive.
type headerMap struct {
	exact map[string]int
	lower map[string]int
}

func newHeaderMap(headers []string) *headerMap {
	m := &headerMap{
		exact: make(map[string]int, len(headers)),
		lower: make(map[string]int, len(headers)),
	}
	for i, header := range headers {
		trimmed := strings.TrimSpace(header)
		if trimmed == "" {
			continue
		}
		if _, seen := m.exact[trimmed]; !seen {
			m.exact[trimmed] = i
		}
		key := strings.ToLower(trimmed)
		if _, seen := m.lower[key]; !seen {
			m.lower[key] = i
		}
	}
	return m
}

func (m *headerMap) col(name string) (int, bool) {
	if idx, ok := m.exact[name]; ok {
		return idx, true
	}
	idx, ok := m.lower[strings.ToLower(name)]
	return idx, ok
}

// require returns the positions of the named columns, erroring with the
// full list of anything missing.
func (m *headerMap) require(names ...string) (map[string]int, error) {
	cols := make(map[string]int, len(names))
	var missing []string
	for _, name := range names {
		idx, ok := m.col(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[name] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// cell returns the trimmed value at idx, tolerating the short rows
// excelize produces when trailing cells are empty.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
