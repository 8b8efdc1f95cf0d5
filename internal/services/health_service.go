package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"eventpulse/internal/config"
	"eventpulse/internal/infrastructure"
	"eventpulse/internal/operations"
)

// HubStatus is the slice of the WebSocket hub the health surface reads.
// Satisfied by websocket.Hub.
type HubStatus interface {
	ClientCount() int
	GetHubMetrics() map[string]interface{}
}

// HealthService answers the liveness, readiness and version probes.
type HealthService struct {
	version   string
	buildTime string
	buildID   string
	paths     *config.Paths
	manager   *operations.Manager
	hub       HubStatus
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the health probe response body.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth is one dependency's state inside a readiness response.
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SystemStats summarizes the process and its artifacts for the
// diagnostics endpoint.
type SystemStats struct {
	UptimeSeconds    float64 `json:"uptime_seconds"`
	ArtifactFiles    int     `json:"artifact_files"`
	ArtifactBytes    int64   `json:"artifact_bytes"`
	WebSocketClients int     `json:"websocket_clients"`
	ActiveOperations int     `json:"active_operations"`
	GoVersion        string  `json:"go_version"`
	OS               string  `json:"os"`
	Arch             string  `json:"arch"`
}

// NewHealthService creates a health service over the given dependencies.
func NewHealthService(version string, paths *config.Paths, manager *operations.Manager, hub HubStatus, logger *slog.Logger) *HealthService {
	return NewHealthServiceWithBuildInfo(version, "", "", paths, manager, hub, logger)
}

// NewHealthServiceWithBuildInfo additionally records linker-injected
// build metadata for the version endpoint.
func NewHealthServiceWithBuildInfo(version, buildTime, buildID string, paths *config.Paths, manager *operations.Manager, hub HubStatus, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		buildID:   buildID,
		paths:     paths,
		manager:   manager,
		hub:       hub,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck reports overall process health.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// LivenessCheck reports that the process is making progress.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
	}
}

// ReadinessCheck verifies the dependencies behind the API. Data, the
// operations manager and the hub are required; a missing Chrome only
// degrades readiness since charts fall back to HTML sources.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	checks := map[string]ServiceHealth{
		"data":       hs.checkDataDirectories(),
		"operations": hs.checkOperations(),
		"websocket":  hs.checkWebSocket(),
		"renderer":   hs.checkRenderer(),
	}
	for name, health := range checks {
		status.Services[name] = health
		if health.Status == "not_ready" {
			status.Status = "not_ready"
		}
	}

	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "Readiness check failed",
			slog.Any("services", checks))
	}
	return status
}

// Version reports version and build metadata.
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"app":            config.AppName,
		"version":        hs.version,
		"go_version":     runtime.Version(),
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
		"uptime_seconds": time.Since(hs.startTime).Seconds(),
		"start_time":     hs.startTime.Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}
	return result
}

// SystemStats walks the data directory and gathers process counters.
func (hs *HealthService) SystemStats(ctx context.Context) (SystemStats, error) {
	var totalFiles int
	var totalBytes int64
	filepath.Walk(hs.paths.DataDir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			totalFiles++
			totalBytes += info.Size()
		}
		return nil
	})

	stats := SystemStats{
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		ArtifactFiles: totalFiles,
		ArtifactBytes: totalBytes,
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
	}
	if hs.hub != nil {
		stats.WebSocketClients = hs.hub.ClientCount()
	}
	if hs.manager != nil {
		for _, op := range hs.manager.ListOperations() {
			if !op.Status.IsTerminal() {
				stats.ActiveOperations++
			}
		}
	}
	return stats, nil
}

func (hs *HealthService) checkDataDirectories() ServiceHealth {
	for _, dir := range []string{hs.paths.DataDir, hs.paths.RawDir, hs.paths.CleanedDir, hs.paths.ReportsDir} {
		if _, err := os.Stat(dir); err != nil {
			return ServiceHealth{
				Status:  "not_ready",
				Message: fmt.Sprintf("directory unavailable: %s", dir),
			}
		}
	}
	return ServiceHealth{Status: "ready"}
}

func (hs *HealthService) checkOperations() ServiceHealth {
	if hs.manager == nil {
		return ServiceHealth{Status: "not_ready", Message: "operation manager not initialized"}
	}
	if hs.manager.Busy() {
		return ServiceHealth{
			Status:  "ready",
			Message: fmt.Sprintf("operation %s in progress", hs.manager.ActiveOperationID()),
		}
	}
	return ServiceHealth{Status: "ready"}
}

func (hs *HealthService) checkWebSocket() ServiceHealth {
	if hs.hub == nil {
		return ServiceHealth{Status: "not_ready", Message: "websocket hub not initialized"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d clients connected", hs.hub.ClientCount()),
	}
}

// chromeCandidates are the executables chromedp's allocator can drive.
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

func (hs *HealthService) checkRenderer() ServiceHealth {
	for _, name := range chromeCandidates {
		if _, err := exec.LookPath(name); err == nil {
			return ServiceHealth{Status: "ready", Message: name}
		}
	}
	return ServiceHealth{
		Status:  "degraded",
		Message: "no Chrome executable found; chart images will be skipped",
	}
}
