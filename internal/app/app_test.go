package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventpulse/internal/config"
	apperrors "eventpulse/internal/errors"
	"eventpulse/internal/operations"
	"eventpulse/internal/services"
	"eventpulse/internal/shared/testutil"
	ws "eventpulse/internal/websocket"
	"eventpulse/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFrontendFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":        &fstest.MapFile{Data: []byte("<!DOCTYPE html><html><body>EventPulse</body></html>")},
		"favicon.svg":       &fstest.MapFile{Data: []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)},
		"static/app.js":     &fstest.MapFile{Data: []byte("console.log('dashboard');")},
		"static/styles.css": &fstest.MapFile{Data: []byte("body{margin:0}")},
	}
}

// newTestApplication wires an Application by hand against a temp
// directory. Telemetry stays nil so the application can be built once
// per test instead of once per binary; setupRouter skips the nil
// middleware.
func newTestApplication(t *testing.T) *Application {
	t.Helper()

	logger := testLogger()
	cfg := config.Default()
	paths := config.PathsFor(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	hub := ws.NewHub(logger)
	hub.Start()
	t.Cleanup(hub.Stop)

	manager := operations.NewManager(hub, nil, operations.NewRegistry(), operations.NewConfig())
	require.NoError(t, operations.RegisterPipeline(manager, paths, nil, cfg.Pipeline))
	t.Cleanup(manager.Stop)

	app := &Application{
		Config:           cfg,
		Paths:            paths,
		Logger:           logger,
		WebSocketHub:     hub,
		Manager:          manager,
		OperationService: services.NewOperationService(manager, hub, logger),
		DataService:      services.NewDataService(paths, logger),
		InsightService:   services.NewInsightService(paths, cfg.Event, logger),
		HealthService:    services.NewHealthService("test", paths, manager, hub, logger),
		FrontendFS:       testFrontendFS(),
		errorHandler:     apperrors.NewErrorHandler(logger, false),
	}
	app.setupRouter()
	app.createServer()

	return app
}

func TestRouterEndpoints(t *testing.T) {
	app := newTestApplication(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantType   string
	}{
		{"health", "/api/health", http.StatusOK, "application/json"},
		{"liveness", "/api/health/live", http.StatusOK, "application/json"},
		{"version", "/api/version", http.StatusOK, "application/json"},
		{"dashboard bundle", "/api/dashboard", http.StatusOK, "application/json"},
		{"dashboard overview", "/api/dashboard/overview", http.StatusOK, "application/json"},
		{"operations list", "/api/operations", http.StatusOK, "application/json"},
		{"pipeline stages", "/api/operations/stages", http.StatusOK, "application/json"},
		{"artifact listing", "/api/data/files", http.StatusOK, "application/json"},
		{"no workbook yet", "/api/data/workbook/latest", http.StatusNotFound, "application/json"},
		{"dashboard shell", "/", http.StatusOK, "text/html"},
		{"client-side route", "/settings", http.StatusOK, "text/html"},
		{"static script", "/static/app.js", http.StatusOK, "application/javascript"},
		{"static stylesheet", "/static/styles.css", http.StatusOK, "text/css"},
		{"favicon", "/favicon.svg", http.StatusOK, "image/svg+xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			w := httptest.NewRecorder()
			app.Router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), tt.wantType)
		})
	}
}

func TestRouterSecurityHeadersOnAPI(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest("GET", "/api/health/live", nil)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestOperationRunThroughAPI(t *testing.T) {
	app := newTestApplication(t)

	workbook := filepath.Join(app.Paths.RawDir, "marketing_data_2026_05.xlsx")
	testutil.WriteWorkbook(t, workbook, testutil.SampleMarketingSheets())

	req := httptest.NewRequest("POST", "/api/operations", strings.NewReader(`{"stage":"clean"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var resp domain.OperationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.OperationID)

	status := func() *operations.OperationSnapshot {
		req := httptest.NewRequest("GET", "/api/operations/"+resp.OperationID, nil)
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			return nil
		}
		var snapshot operations.OperationSnapshot
		if err := json.Unmarshal(w.Body.Bytes(), &snapshot); err != nil {
			return nil
		}
		return &snapshot
	}

	require.Eventually(t, func() bool {
		snapshot := status()
		return snapshot != nil && snapshot.Status.IsTerminal()
	}, 30*time.Second, 100*time.Millisecond, "operation never reached a terminal status")

	snapshot := status()
	require.NotNil(t, snapshot)
	assert.Equal(t, domain.OperationStatusCompleted, snapshot.Status)
	assert.FileExists(t, app.Paths.WebsiteTrafficCSV)
	assert.FileExists(t, app.Paths.KPISummaryJSON)
}

func TestOperationRejectsUnknownStage(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest("POST", "/api/operations", strings.NewReader(`{"stage":"compile"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebSocketUpgrade(t *testing.T) {
	app := newTestApplication(t)

	server := httptest.NewServer(app.Router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return app.WebSocketHub.ClientCount() == 1
	}, 2*time.Second, 20*time.Millisecond, "hub never registered the client")

	// The hub greets new clients with a connection snapshot.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var welcome map[string]interface{}
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.NotEmpty(t, welcome["type"])
}

func TestWebSocketRejectsUnknownOrigin(t *testing.T) {
	app := newTestApplication(t)

	server := httptest.NewServer(app.Router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	header := http.Header{"Origin": []string{"http://evil.example.com"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)

	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGetCORSConfig(t *testing.T) {
	app := newTestApplication(t)

	corsCfg := app.getCORSConfig()

	assert.Contains(t, corsCfg.AllowedOrigins, "http://localhost:8080")
	assert.Contains(t, corsCfg.AllowedOrigins, "http://127.0.0.1:8080")
	assert.NotContains(t, corsCfg.AllowedOrigins, "http://localhost:3000")
	assert.Contains(t, corsCfg.AllowedMethods, "OPTIONS")
	assert.Contains(t, corsCfg.ExposedHeaders, "X-Request-ID")
	assert.True(t, corsCfg.AllowCredentials)
	assert.Equal(t, 300, corsCfg.MaxAge)
}

func TestGetCORSConfigDevelopment(t *testing.T) {
	t.Setenv("EP_ENV", "development")
	app := newTestApplication(t)

	corsCfg := app.getCORSConfig()

	assert.Contains(t, corsCfg.AllowedOrigins, "http://localhost:3000")
	assert.Contains(t, corsCfg.AllowedOrigins, "http://127.0.0.1:3000")
}

func TestIsDevelopmentMode(t *testing.T) {
	app := newTestApplication(t)

	t.Setenv("EP_ENV", "")
	t.Setenv("GO_ENV", "")
	assert.False(t, app.isDevelopmentMode())

	t.Setenv("EP_ENV", "development")
	assert.True(t, app.isDevelopmentMode())

	t.Setenv("EP_ENV", "")
	t.Setenv("GO_ENV", "development")
	assert.True(t, app.isDevelopmentMode())
}

func TestCreateServer(t *testing.T) {
	app := newTestApplication(t)

	require.NotNil(t, app.Server)
	assert.Equal(t, ":8080", app.Server.Addr)
	assert.Equal(t, app.Config.Server.ReadTimeout, app.Server.ReadTimeout)
	assert.Equal(t, app.Config.Server.WriteTimeout, app.Server.WriteTimeout)
	assert.Equal(t, app.Config.Server.IdleTimeout, app.Server.IdleTimeout)
	assert.Equal(t, app.Config.Server.MaxHeaderBytes, app.Server.MaxHeaderBytes)
}

func TestPerformStartupHealthCheck(t *testing.T) {
	app := newTestApplication(t)

	assert.NoError(t, app.performStartupHealthCheck(context.Background()))
}

func TestPerformStartupHealthCheckMissingDirectory(t *testing.T) {
	app := newTestApplication(t)
	require.NoError(t, os.RemoveAll(app.Paths.ChartsDir))

	err := app.performStartupHealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "charts directory not writable")
}

func TestSPAFallbackMissingIndex(t *testing.T) {
	app := newTestApplication(t)
	handler := app.serveSPAHandler(fstest.MapFS{})

	req := httptest.NewRequest("GET", "/anything", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Frontend not available")
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/javascript", contentTypeFor("static/app.js"))
	assert.Equal(t, "text/css", contentTypeFor("static/styles.css"))
	assert.Equal(t, "image/svg+xml", contentTypeFor("favicon.svg"))
	assert.Equal(t, "text/html; charset=utf-8", contentTypeFor("index.HTML"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("archive.bin"))
}

// TestNewApplication exercises the full constructor exactly once. The
// Prometheus exporter registers on the process-wide default registry,
// so a second live construction in the same binary would make the
// /metrics scrape report duplicate metric families.
func TestNewApplication(t *testing.T) {
	app, err := NewApplication(testFrontendFS())
	require.NoError(t, err)

	require.NotNil(t, app.Router)
	require.NotNil(t, app.Server)
	require.NotNil(t, app.Manager)
	require.NotNil(t, app.OperationService)
	require.NotNil(t, app.HealthService)
	require.NotNil(t, app.OTelProviders)

	req := httptest.NewRequest("GET", "/api/health/live", nil)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/metrics", nil)
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, app.Stop(context.Background()))
}
