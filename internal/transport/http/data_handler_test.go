package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventpulse/internal/config"
	"eventpulse/internal/services"
)

func newDataHandler(t *testing.T) (*DataHandler, *config.Paths) {
	t.Helper()

	paths := config.PathsFor(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	svc := services.NewDataService(paths, testLogger())
	return NewDataHandler(svc, testLogger(), testErrorHandler()), paths
}

func TestDataHandlerListFiles(t *testing.T) {
	handler, paths := newDataHandler(t)
	router := handler.Routes()

	require.NoError(t, os.WriteFile(paths.GetCleanedPath("email_campaigns.csv"), []byte("subject,opens\n"), 0644))
	require.NoError(t, os.WriteFile(paths.GetReportPath("insights.json"), []byte("{}"), 0644))

	req := httptest.NewRequest("GET", "/files", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int                 `json:"count"`
		Files []services.Artifact `json:"files"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Files, 2)
	assert.Equal(t, "cleaned", resp.Files[0].Category)
	assert.Equal(t, "cleaned/email_campaigns.csv", resp.Files[0].Path)
}

func TestDataHandlerDownload(t *testing.T) {
	handler, paths := newDataHandler(t)
	router := handler.Routes()

	require.NoError(t, os.WriteFile(paths.GetCleanedPath("ad_spend.csv"), []byte("platform,spend\n"), 0644))

	req := httptest.NewRequest("GET", "/files/cleaned/ad_spend.csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ad_spend.csv")
	assert.Equal(t, "platform,spend\n", w.Body.String())
}

func TestDataHandlerDownloadNotFound(t *testing.T) {
	handler, _ := newDataHandler(t)
	router := handler.Routes()

	req := httptest.NewRequest("GET", "/files/cleaned/missing.csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Resource Not Found")
}

func TestDataHandlerDownloadRejectsTraversal(t *testing.T) {
	handler, paths := newDataHandler(t)
	router := handler.Routes()

	secret := paths.ExecutableDir + string(os.PathSeparator) + "secret.txt"
	require.NoError(t, os.WriteFile(secret, []byte("credentials"), 0644))

	req := httptest.NewRequest("GET", "/files/cleaned/../../secret.txt", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), "credentials")
}

func TestDataHandlerLatestWorkbook(t *testing.T) {
	handler, paths := newDataHandler(t)
	router := handler.Routes()

	req := httptest.NewRequest("GET", "/workbook/latest", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code, "empty raw directory")

	require.NoError(t, os.WriteFile(paths.GetRawPath("marketing_aug.xlsx"), []byte("wb"), 0644))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/workbook/latest", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var artifact services.Artifact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &artifact))
	assert.Equal(t, "marketing_aug.xlsx", artifact.Name)
	assert.Equal(t, "raw", artifact.Category)
}
