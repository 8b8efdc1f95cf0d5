package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventpulse/internal/config"
)

func writeWorkbookStub(t *testing.T, dir, name string, modified time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0644))
	require.NoError(t, os.Chtimes(path, modified, modified))
	return path
}

func TestResolveWorkbookByName(t *testing.T) {
	paths := config.PathsFor(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	want := writeWorkbookStub(t, paths.RawDir, "marketing_data_2026_05.xlsx", time.Now())

	got, err := resolveWorkbook(paths, "marketing_data_2026_05.xlsx")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveWorkbookAbsolutePath(t *testing.T) {
	paths := config.PathsFor(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	elsewhere := writeWorkbookStub(t, t.TempDir(), "export.xlsx", time.Now())

	got, err := resolveWorkbook(paths, elsewhere)
	require.NoError(t, err)
	assert.Equal(t, elsewhere, got)
}

func TestResolveWorkbookPicksNewest(t *testing.T) {
	paths := config.PathsFor(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	now := time.Now()
	writeWorkbookStub(t, paths.RawDir, "marketing_data_2026_04.xlsx", now.Add(-48*time.Hour))
	want := writeWorkbookStub(t, paths.RawDir, "marketing_data_2026_05.xlsx", now)

	got, err := resolveWorkbook(paths, "")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveWorkbookErrors(t *testing.T) {
	paths := config.PathsFor(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	_, err := resolveWorkbook(paths, "missing.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.xlsx")

	_, err = resolveWorkbook(paths, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no workbooks")
}
