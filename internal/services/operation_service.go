package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"eventpulse/internal/infrastructure"
	"eventpulse/internal/operations"
	"eventpulse/pkg/contracts/domain"
)

// RefreshHub pushes artifact refresh hints to connected dashboards.
// Satisfied by websocket.Hub.
type RefreshHub interface {
	BroadcastRefresh(source string, components []string)
}

// OperationService drives pipeline runs through the operations manager.
// It owns the translation between the HTTP surface (stage names, status
// snapshots) and the manager, and nudges dashboards to re-fetch
// artifacts when a run completes.
type OperationService struct {
	manager *operations.Manager
	logger  *slog.Logger
}

// StageInfo describes one startable pipeline stage for the frontend.
type StageInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// OperationMetrics aggregates run counts for the health and metrics
// surfaces.
type OperationMetrics struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// NewOperationService wires the manager to the hub. When the hub is
// non-nil, every completed run broadcasts a data refresh naming the
// artifact groups that run regenerated.
func NewOperationService(manager *operations.Manager, hub RefreshHub, logger *slog.Logger) *OperationService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	svc := &OperationService{
		manager: manager,
		logger:  logger.With(slog.String("component", "operation_service")),
	}

	if hub != nil {
		manager.OnFinish(func(op *operations.Operation) {
			if op.Status != domain.OperationStatusCompleted {
				return
			}
			components := refreshComponents(op.Stage)
			hub.BroadcastRefresh("operations", components)
			svc.logger.Debug("Broadcast artifact refresh",
				slog.String("operation_id", op.ID),
				slog.String("stage", op.Stage),
				slog.Any("components", components))
		})
	}
	return svc
}

// refreshComponents names the dashboard data groups a completed stage
// invalidates, so the frontend re-fetches only what changed.
func refreshComponents(stage string) []string {
	switch stage {
	case domain.StageClean:
		return []string{"files", "kpis"}
	case domain.StageAnalyze:
		return []string{"files", "dashboard"}
	case domain.StageRender:
		return []string{"files", "charts"}
	default:
		return []string{"files", "kpis", "dashboard", "charts"}
	}
}

// Start begins an operation asynchronously. Progress streams to the
// dashboard over the WebSocket hub; the returned response carries the
// operation ID for polling.
func (s *OperationService) Start(ctx context.Context, req *domain.OperationRequest) (*domain.OperationResponse, error) {
	resp, err := s.manager.Start(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to start operation: %w", err)
	}

	s.logger.InfoContext(ctx, "Operation accepted",
		slog.String("operation_id", resp.OperationID),
		slog.String("stage", requestedStage(req)))
	return resp, nil
}

// Execute runs an operation synchronously and returns its final state.
// The command-line entry points use this; the dashboard uses Start.
func (s *OperationService) Execute(ctx context.Context, req *domain.OperationRequest) (*operations.Operation, error) {
	op, err := s.manager.Execute(ctx, req)
	if err != nil {
		return op, fmt.Errorf("operation failed: %w", err)
	}

	s.logger.InfoContext(ctx, "Operation executed",
		slog.String("operation_id", op.ID),
		slog.String("status", string(op.Status)))
	return op, nil
}

// Status returns the live snapshot of one operation. Snapshots outlive
// the run itself, so finished operations still resolve here.
func (s *OperationService) Status(ctx context.Context, operationID string) (*operations.OperationSnapshot, error) {
	if operationID == "" {
		return nil, fmt.Errorf("%w: empty operation id", operations.ErrOperationNotFound)
	}

	snapshot, ok := s.manager.Broadcaster().GetSnapshot(operationID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", operations.ErrOperationNotFound, operationID)
	}
	return snapshot, nil
}

// List returns snapshots of all known operations, newest first.
func (s *OperationService) List(ctx context.Context) []*operations.OperationSnapshot {
	snapshots := s.manager.Broadcaster().GetAllSnapshots()
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].StartedAt.After(snapshots[j].StartedAt)
	})
	return snapshots
}

// Cancel stops a running operation.
func (s *OperationService) Cancel(ctx context.Context, operationID string) error {
	if err := s.manager.CancelOperation(operationID); err != nil {
		return fmt.Errorf("failed to cancel operation: %w", err)
	}

	s.logger.InfoContext(ctx, "Operation cancelled",
		slog.String("operation_id", operationID))
	return nil
}

// Stages lists the startable stages: each registered pipeline stage plus
// the full pipeline.
func (s *OperationService) Stages(ctx context.Context) []StageInfo {
	descriptions := map[string]string{
		domain.StepIDClean:   "Clean the raw marketing workbook into the five dataset CSVs and the KPI summary",
		domain.StepIDAnalyze: "Compute the insight bundle from the cleaned datasets",
		domain.StepIDRender:  "Render the dashboard chart images from the insight bundle",
	}

	stages := s.manager.Registry().List()
	infos := make([]StageInfo, 0, len(stages)+1)
	for _, stage := range stages {
		infos = append(infos, StageInfo{
			ID:          stage.ID(),
			Name:        stage.Name(),
			Description: descriptions[stage.ID()],
		})
	}

	infos = append(infos, StageInfo{
		ID:          domain.StageFull,
		Name:        "Full Pipeline",
		Description: "Run every stage in sequence: clean, analyze, render",
	})
	return infos
}

// Metrics counts known operations by outcome.
func (s *OperationService) Metrics(ctx context.Context) OperationMetrics {
	var m OperationMetrics
	for _, snapshot := range s.manager.Broadcaster().GetAllSnapshots() {
		m.Total++
		switch snapshot.Status {
		case domain.OperationStatusPending, domain.OperationStatusRunning:
			m.Active++
		case domain.OperationStatusCompleted:
			m.Completed++
		case domain.OperationStatusFailed:
			m.Failed++
		case domain.OperationStatusCancelled:
			m.Cancelled++
		}
	}
	return m
}

// Manager exposes the underlying manager for wiring and shutdown.
func (s *OperationService) Manager() *operations.Manager {
	return s.manager
}

func requestedStage(req *domain.OperationRequest) string {
	if req == nil || req.Stage == "" {
		return domain.StageFull
	}
	return req.Stage
}
