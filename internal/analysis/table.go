package analysis

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "eventpulse/internal/errors"
)

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// Table is one cleaned dataset loaded back from disk: the header row plus
// data rows, cells kept as written. Columns are located by keyword, not by
// position, so the analyzer survives renamed headers.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// LoadTable reads a cleaned CSV artifact. The UTF-8 BOM the exporter
// writes is stripped from the first header.
func LoadTable(path string) (*Table, error) {
	name := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrArtifactNotFound, name)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", apperrors.ErrDatasetEmpty, name)
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	return &Table{Name: name, Headers: headers, Rows: records[1:]}, nil
}

// Resolve returns the index of the first header containing any of the
// keywords, case-insensitively. Headers are scanned in sheet order and
// keywords in list order within each header; the first hit wins, so the
// same headers and keywords always resolve to the same column.
func Resolve(headers []string, keywords ...string) (int, bool) {
	for i, header := range headers {
		lower := strings.ToLower(header)
		for _, keyword := range keywords {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				return i, true
			}
		}
	}
	return -1, false
}

// Column resolves a column on this table's headers.
func (t *Table) Column(keywords ...string) (int, bool) {
	return Resolve(t.Headers, keywords...)
}

// Lookup resolves a column and logs a miss, so computations skipped for
// want of a column are visible in the run log.
func (t *Table) Lookup(field string, keywords ...string) (int, bool) {
	col, ok := t.Column(keywords...)
	if !ok {
		slog.Warn("Column not resolved",
			slog.String("table", t.Name),
			slog.String("field", field))
	}
	return col, ok
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Cell returns the trimmed cell at (row, col), or "" when the column was
// not resolved or the row is short.
func (t *Table) Cell(row, col int) string {
	if row < 0 || col < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

// Float parses the cell at (row, col) as a number. Blank and unparseable
// cells report ok == false and are skipped by the aggregations.
func (t *Table) Float(row, col int) (float64, bool) {
	cell := t.Cell(row, col)
	if cell == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Date parses the cell at (row, col) as a cleaned date (2006-01-02).
// Blank cells, zero dates, and unparseable cells report ok == false.
func (t *Table) Date(row, col int) (time.Time, bool) {
	cell := t.Cell(row, col)
	if cell == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse("2006-01-02", cell)
	if err != nil || parsed.IsZero() {
		return time.Time{}, false
	}
	return parsed, true
}

// Sum adds the parseable cells of a column.
func (t *Table) Sum(col int) float64 {
	total := 0.0
	for row := range t.Rows {
		if v, ok := t.Float(row, col); ok {
			total += v
		}
	}
	return total
}

// Mean averages the parseable cells of a column; 0 when none parse.
func (t *Table) Mean(col int) float64 {
	total, n := 0.0, 0
	for row := range t.Rows {
		if v, ok := t.Float(row, col); ok {
			total += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}
