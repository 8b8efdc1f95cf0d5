package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventpulse/internal/config"
	"eventpulse/internal/services"
)

func newDashboardHandler(t *testing.T) *DashboardHandler {
	t.Helper()

	paths := config.PathsFor(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	event := config.EventConfig{
		Name:           "Proof of Talk 2026",
		Date:           "2026-06-02",
		DelegateTarget: 300,
		SponsorTarget:  25,
	}
	svc := services.NewInsightService(paths, event, testLogger())
	return NewDashboardHandler(svc, testLogger(), testErrorHandler())
}

func TestDashboardHandlerOverviewBeforeFirstRun(t *testing.T) {
	router := newDashboardHandler(t).Routes()

	req := httptest.NewRequest("GET", "/overview", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "missing insights must not fail the view")

	var overview services.Overview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))
	assert.Equal(t, "Proof of Talk 2026", overview.Event.Name)
	assert.Len(t, overview.FallbackSections, 11)
	require.Len(t, overview.Targets, 2)
}

func TestDashboardHandlerViews(t *testing.T) {
	router := newDashboardHandler(t).Routes()

	for _, path := range []string{"/", "/channels", "/funnel", "/forecast", "/recommendations"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "GET %s", path)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json", "GET %s", path)
	}
}

func TestDashboardHandlerMemoJSON(t *testing.T) {
	router := newDashboardHandler(t).Routes()

	req := httptest.NewRequest("GET", "/memo", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var memo services.MemoView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &memo))
	assert.Equal(t, "Proof of Talk 2026: actions required to hit targets", memo.Subject)
	assert.NotEmpty(t, memo.Asks)
	assert.True(t, memo.IsFallback(), "no insights.json yet")
}

func TestDashboardHandlerMemoTextDownload(t *testing.T) {
	router := newDashboardHandler(t).Routes()

	req := httptest.NewRequest("GET", "/memo?format=text", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "To: Chief Executive")
	assert.Contains(t, w.Body.String(), "Asks for this week:")
}
