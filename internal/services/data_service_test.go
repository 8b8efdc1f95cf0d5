package services

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventpulse/internal/config"
	apperrors "eventpulse/internal/errors"
)

func newTestDataService(t *testing.T) (*DataService, *config.Paths) {
	t.Helper()

	paths := config.PathsFor(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())
	return NewDataService(paths, discardLogger()), paths
}

func writeArtifact(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDataServiceListArtifacts(t *testing.T) {
	svc, paths := newTestDataService(t)

	writeArtifact(t, paths.GetRawPath("marketing_jan.xlsx"), "workbook")
	writeArtifact(t, paths.GetCleanedPath("website_traffic.csv"), "date,sessions\n")
	writeArtifact(t, paths.GetCleanedPath("kpi_summary.json"), "{}")
	writeArtifact(t, paths.GetReportPath("insights.json"), "{}")
	writeArtifact(t, paths.GetChartPath("roi_by_channel.png"), "png")

	// Neither unknown extensions nor directories should list.
	writeArtifact(t, paths.GetCleanedPath("notes.md"), "scratch")
	require.NoError(t, os.MkdirAll(filepath.Join(paths.CleanedDir, "archive"), 0755))

	artifacts, err := svc.ListArtifacts(context.Background())
	require.NoError(t, err)
	require.Len(t, artifacts, 5)

	categories := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		categories = append(categories, a.Category)
	}
	assert.Equal(t, []string{"charts", "cleaned", "cleaned", "raw", "reports"}, categories,
		"sorted by category then name")

	assert.Equal(t, "roi_by_channel.png", artifacts[0].Name)
	assert.Equal(t, "reports/charts/roi_by_channel.png", artifacts[0].Path)
	assert.Equal(t, "raw/marketing_jan.xlsx", artifacts[3].Path)
	assert.Equal(t, int64(len("workbook")), artifacts[3].SizeBytes)
}

func TestDataServiceListArtifactsEmptyTree(t *testing.T) {
	paths := config.PathsFor(t.TempDir())
	svc := NewDataService(paths, discardLogger())

	artifacts, err := svc.ListArtifacts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, artifacts, "missing directories list as empty")
}

func TestDataServiceServeArtifact(t *testing.T) {
	svc, paths := newTestDataService(t)
	writeArtifact(t, paths.GetCleanedPath("sales_pipeline.csv"), "deal,stage\nAcme,Lead\n")

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/data/files/cleaned/sales_pipeline.csv", nil)

	err := svc.ServeArtifact(context.Background(), w, r, "cleaned/sales_pipeline.csv")
	require.NoError(t, err)

	resp := w.Result()
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `attachment`)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "sales_pipeline.csv")
	assert.Equal(t, "deal,stage\nAcme,Lead\n", w.Body.String())
}

func TestDataServiceServeArtifactRejectsTraversal(t *testing.T) {
	svc, paths := newTestDataService(t)

	// A real file outside the data directory must stay unreachable.
	secret := filepath.Join(paths.ExecutableDir, "secret.txt")
	writeArtifact(t, secret, "credentials")

	for _, name := range []string{
		"../secret.txt",
		"cleaned/../../secret.txt",
		"..",
		"",
	} {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/data/files/x", nil)

		err := svc.ServeArtifact(context.Background(), w, r, name)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRequest, "name %q", name)
	}
}

func TestDataServiceServeArtifactNotFound(t *testing.T) {
	svc, _ := newTestDataService(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/data/files/x", nil)

	err := svc.ServeArtifact(context.Background(), w, r, "cleaned/missing.csv")
	assert.ErrorIs(t, err, apperrors.ErrArtifactNotFound)

	// Directories are not downloadable.
	err = svc.ServeArtifact(context.Background(), w, r, "cleaned")
	assert.ErrorIs(t, err, apperrors.ErrArtifactNotFound)
}

func TestDataServiceLatestWorkbook(t *testing.T) {
	svc, paths := newTestDataService(t)

	_, err := svc.LatestWorkbook(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrWorkbookNotFound)

	older := paths.GetRawPath("marketing_jan.xlsx")
	newer := paths.GetRawPath("marketing_feb.xlsx")
	writeArtifact(t, older, "jan")
	writeArtifact(t, newer, "feb")
	require.NoError(t, os.Chtimes(older, time.Now().Add(-48*time.Hour), time.Now().Add(-48*time.Hour)))

	latest, err := svc.LatestWorkbook(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "marketing_feb.xlsx", latest.Name)
	assert.Equal(t, "raw/marketing_feb.xlsx", latest.Path)
	assert.Equal(t, "raw", latest.Category)
}
