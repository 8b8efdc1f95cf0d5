package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"eventpulse/internal/config"
	apperrors "eventpulse/internal/errors"
	"eventpulse/internal/infrastructure"
	customMiddleware "eventpulse/internal/middleware"
	"eventpulse/internal/operations"
	"eventpulse/internal/services"
	handlers "eventpulse/internal/transport/http"
	"eventpulse/internal/validation"
	ws "eventpulse/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
)

// Build metadata, injected at link time via -ldflags. Empty values mean
// a source build; the version endpoint omits them.
var (
	BuildTime = ""
	BuildID   = ""
)

// Application holds every long-lived component of the EventPulse server
// and wires them together at startup.
type Application struct {
	Config           *config.Config
	Paths            *config.Paths
	Router           *chi.Mux
	Server           *http.Server
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	WebSocketHub     *ws.Hub
	Manager          *operations.Manager
	OperationService *services.OperationService
	DataService      *services.DataService
	InsightService   *services.InsightService
	HealthService    *services.HealthService
	FrontendFS       fs.FS

	errorHandler  *apperrors.ErrorHandler
	otelHTTP      *customMiddleware.OTelMiddleware
	systemMetrics *infrastructure.SystemMetricsCollector
}

// NewApplication builds a ready-to-run application. frontendFS is the
// embedded dashboard frontend; nil disables the UI routes and leaves
// the JSON API and WebSocket endpoints up.
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		FrontendFS:    frontendFS,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires the hub, the pipeline manager and the
// request-facing services in dependency order.
func (a *Application) initializeServices() error {
	// The request middleware and the pipeline stages record onto the
	// same instruments, so the middleware is created first and shared.
	otelHTTP, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return fmt.Errorf("failed to initialize request instrumentation: %w", err)
	}
	a.otelHTTP = otelHTTP
	metrics := otelHTTP.BusinessMetrics()

	if a.OTelProviders != nil {
		collector, err := infrastructure.NewSystemMetricsCollector(a.OTelProviders.Meter, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to initialize system metrics: %w", err)
		}
		a.systemMetrics = collector
	}

	hub := ws.NewHub(a.Logger)
	hub.Start()
	a.WebSocketHub = hub

	manager := operations.NewManager(hub, metrics, operations.NewRegistry(), operations.NewConfig())
	if err := operations.RegisterPipeline(manager, a.Paths, metrics, a.Config.Pipeline); err != nil {
		return fmt.Errorf("failed to register pipeline stages: %w", err)
	}
	a.Manager = manager

	a.OperationService = services.NewOperationService(manager, hub, a.Logger)
	a.DataService = services.NewDataService(a.Paths, a.Logger)
	a.InsightService = services.NewInsightService(a.Paths, a.Config.Event, a.Logger)
	a.HealthService = services.NewHealthServiceWithBuildInfo(
		config.AppVersion,
		BuildTime,
		BuildID,
		a.Paths,
		manager,
		hub,
		a.Logger,
	)

	a.errorHandler = apperrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	return nil
}

// setupRouter configures the HTTP router. The WebSocket upgrade, the
// Prometheus scrape endpoint and static assets sit outside the API
// middleware group; everything else runs through it.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Request identity first so every later log line carries it.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// Timeouts and content negotiation must never touch the upgrade.
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).HandleFunc("/ws", a.handleWebSocket)

	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.setupStaticAssets(r)

	r.Group(func(r chi.Router) {
		if a.otelHTTP != nil {
			r.Use(a.otelHTTP.Handler)
		}
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(a.getCORSConfig()))

		if a.Config.Security.RateLimit.Enabled {
			limiter := customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			)
			r.Use(limiter.Handler)
		}

		a.setupAPIRoutes(r)
		a.setupFrontendRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes mounts the JSON API under /api.
func (a *Application) setupAPIRoutes(r chi.Router) {
	requestValidator := customMiddleware.NewValidationMiddleware(a.Logger, a.errorHandler)

	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	dashboardHandler := handlers.NewDashboardHandler(a.InsightService, a.Logger, a.errorHandler)
	dataHandler := handlers.NewDataHandler(a.DataService, a.Logger, a.errorHandler)
	operationsHandler := handlers.NewOperationsHandler(a.OperationService, a.Logger, a.errorHandler)
	clientLogHandler := handlers.NewClientLogHandler(a.Logger, a.errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(requestValidator.ValidateRequest)

		// Lightweight endpoints share the server read timeout.
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

			r.Mount("/health", healthHandler.Routes())
			r.Get("/version", healthHandler.Version)
			r.Mount("/dashboard", dashboardHandler.Routes())
			r.Mount("/data", dataHandler.Routes())
			r.Post("/logs", clientLogHandler.Handle)
		})

		// Runs execute asynchronously, but cancellation may wait on a
		// stage boundary, so operation endpoints get the longer budget.
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.OperationTimeout, a.Logger))
			r.Mount("/operations", operationsHandler.Routes())
		})
	})
}

// setupStaticAssets serves the embedded frontend's asset files. These
// bypass the API middleware chain; they carry no request state worth
// tracing and cache aggressively.
func (a *Application) setupStaticAssets(r chi.Router) {
	if a.FrontendFS == nil {
		return
	}

	r.Route("/static", func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Use(middleware.SetHeader("Cache-Control", "public, max-age=86400"))
		r.HandleFunc("/*", a.serveStaticWithMIME(a.FrontendFS))
	})

	r.Get("/favicon.svg", a.serveFrontendFile(a.FrontendFS, "favicon.svg"))
}

// setupFrontendRoutes serves the dashboard shell for every route the
// API and asset handlers did not claim.
func (a *Application) setupFrontendRoutes(r chi.Router) {
	if a.FrontendFS == nil {
		a.Logger.Warn("Frontend filesystem not available, dashboard UI disabled")
		return
	}

	r.Get("/*", a.serveSPAHandler(a.FrontendFS))
}

// serveStaticWithMIME serves files under the request path from the
// embedded filesystem with explicit content types. Embedded files
// bypass the OS, so sniffing is unreliable for CSS and JS.
func (a *Application) serveStaticWithMIME(frontendFS fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")

		file, err := frontendFS.Open(name)
		if err != nil {
			a.Logger.WarnContext(r.Context(), "Static file not found",
				slog.String("path", name))
			http.NotFound(w, r)
			return
		}
		defer file.Close()

		w.Header().Set("Content-Type", contentTypeFor(name))
		w.Header().Set("X-Content-Type-Options", "nosniff")
		io.Copy(w, file)
	}
}

// serveFrontendFile serves one fixed file from the embedded frontend.
func (a *Application) serveFrontendFile(frontendFS fs.FS, filename string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := frontendFS.Open(filename)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer file.Close()

		w.Header().Set("Content-Type", contentTypeFor(filename))
		w.Header().Set("Cache-Control", "public, max-age=86400")
		io.Copy(w, file)
	}
}

// serveSPAHandler serves exact frontend files when they exist and falls
// back to index.html so the dashboard owns its own routing.
func (a *Application) serveSPAHandler(frontendFS fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		urlPath := path.Clean(r.URL.Path)

		if urlPath != "/" {
			name := strings.TrimPrefix(urlPath, "/")
			if file, err := frontendFS.Open(name); err == nil {
				if stat, statErr := file.Stat(); statErr == nil && !stat.IsDir() {
					w.Header().Set("Content-Type", contentTypeFor(name))
					w.Header().Set("X-Content-Type-Options", "nosniff")
					io.Copy(w, file)
					file.Close()
					return
				}
				file.Close()
			}
		}

		index, err := frontendFS.Open("index.html")
		if err != nil {
			a.Logger.ErrorContext(r.Context(), "Failed to open index.html",
				slog.String("error", err.Error()),
				slog.String("path", urlPath))
			http.Error(w, "Frontend not available", http.StatusServiceUnavailable)
			return
		}
		defer index.Close()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		io.Copy(w, index)
	}
}

// contentTypeFor maps an embedded file name to its content type.
func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".js":
		return "application/javascript"
	case ".css":
		return "text/css"
	case ".json":
		return "application/json"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".ico":
		return "image/x-icon"
	case ".woff2":
		return "font/woff2"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// getCORSConfig builds the CORS policy: the server's own origin always,
// the frontend dev server in development, plus configured extras.
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	origins := []string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}
	if a.isDevelopmentMode() {
		origins = append(origins, "http://localhost:3000", "http://127.0.0.1:3000")
	}
	if a.Config.Security.EnableCORS {
		origins = append(origins, a.Config.Security.AllowedOrigins...)
	}

	return customMiddleware.CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// isDevelopmentMode reports whether the server runs against a
// separately served frontend.
func (a *Application) isDevelopmentMode() bool {
	if env := os.Getenv("EP_ENV"); env == "development" {
		return true
	}
	if env := os.Getenv("GO_ENV"); env == "development" {
		return true
	}
	return false
}

// createServer creates the HTTP server.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start brings the HTTP server up and opens the dashboard in the
// default browser once the health endpoint answers. cancel is invoked
// when the server fails, so the caller's wait loop unblocks.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("log_level", a.Config.Logging.Level))

	a.Logger.InfoContext(ctx, "Application paths",
		slog.String("executable_dir", a.Paths.ExecutableDir),
		slog.String("data_dir", a.Paths.DataDir),
		slog.String("raw_dir", a.Paths.RawDir),
		slog.String("reports_dir", a.Paths.ReportsDir),
		slog.String("logs_dir", a.Paths.LogsDir))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if a.systemMetrics != nil {
		go a.systemMetrics.Start(ctx)
	}

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings",
			slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	go a.openBrowserWhenReady(ctx)

	return nil
}

// Stop shuts the application down in dependency order: the server stops
// accepting requests, the manager cancels any in-flight run, the hub
// disconnects its clients, and telemetry flushes.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.Manager != nil {
		a.Manager.Stop()
	}
	if a.WebSocketHub != nil {
		a.WebSocketHub.Stop()
	}
	if a.systemMetrics != nil {
		a.systemMetrics.Stop()
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry",
				slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run starts the application and blocks until an interrupt, a
// termination signal, or a fatal server error.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Shutting down after server error")
	}

	return a.Stop(context.Background())
}

// handleWebSocket upgrades the connection and hands it to the hub,
// which owns the read and write pumps from here on.
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = fmt.Sprintf("ws-%d", time.Now().UnixNano())
	}

	ctx := infrastructure.WithTraceID(r.Context(), reqID)
	a.Logger.InfoContext(ctx, "WebSocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Same-origin requests and non-browser clients.
				return true
			}
			if a.isDevelopmentMode() {
				return true
			}
			for _, allowed := range a.getCORSConfig().AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			a.Logger.WarnContext(ctx, "WebSocket origin rejected",
				slog.String("origin", origin))
			return false
		},
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			a.Logger.ErrorContext(ctx, "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()))
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already wrote the error response.
		return
	}

	a.Logger.InfoContext(ctx, "WebSocket client connected",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("request_id", reqID))

	ws.ServeWSWithTrace(a.WebSocketHub, conn, reqID)
}

// performStartupHealthCheck verifies the pipeline directories are
// writable. Failures come back as warnings; the operator may still want
// the API up to diagnose.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	directories := map[string]string{
		"data":    a.Paths.DataDir,
		"raw":     a.Paths.RawDir,
		"cleaned": a.Paths.CleanedDir,
		"reports": a.Paths.ReportsDir,
		"charts":  a.Paths.ChartsDir,
		"logs":    a.Paths.LogsDir,
	}

	var warnings []string
	for name, dir := range directories {
		if err := validation.EnsureWritableDir(dir); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
		}
	}

	// No workbook yet is normal on first launch; the dashboard serves
	// reference values until the first run.
	if _, err := a.DataService.LatestWorkbook(ctx); err != nil {
		a.Logger.InfoContext(ctx, "No workbook in raw directory yet",
			slog.String("raw_dir", a.Paths.RawDir))
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}

// openBrowserWhenReady polls the health endpoint and opens the
// dashboard once the server answers.
func (a *Application) openBrowserWhenReady(ctx context.Context) {
	url := fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)
	healthURL := url + "/api/health"

	for attempt := 0; attempt < 10; attempt++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		resp, err := http.Get(healthURL)
		if err == nil {
			ready := resp.StatusCode == http.StatusOK
			resp.Body.Close()
			if ready {
				if err := openBrowser(url); err != nil {
					a.Logger.Warn("Failed to open browser",
						slog.String("error", err.Error()),
						slog.String("url", url))
					fmt.Printf("\n%s is running.\nOpen your browser at %s\n\n", config.AppName, url)
				}
				return
			}
		}

		time.Sleep(500 * time.Millisecond)
	}

	a.Logger.Warn("Server did not become ready, browser not opened",
		slog.String("url", url))
}

// openBrowser launches the default browser at the given URL.
func openBrowser(url string) error {
	var lastErr error
	for _, command := range browserCommands(url) {
		cmd := exec.Command(command[0], command[1:]...)
		if err := cmd.Start(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("no browser launcher available")
	}
	return fmt.Errorf("failed to open browser: %w", lastErr)
}

// browserCommands returns platform launcher commands in preference
// order.
func browserCommands(url string) [][]string {
	switch runtime.GOOS {
	case "windows":
		return [][]string{
			{"cmd", "/c", "start", "", url},
			{"rundll32", "url.dll,FileProtocolHandler", url},
		}
	case "darwin":
		return [][]string{{"open", url}}
	default:
		return [][]string{
			{"xdg-open", url},
			{"sensible-browser", url},
		}
	}
}
