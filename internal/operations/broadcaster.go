package operations

import (
	"log/slog"
	"sync"
	"time"

	"eventpulse/pkg/contracts/domain"
)

// WebSocketHub pushes operation updates to connected dashboard clients.
type WebSocketHub interface {
	BroadcastUpdate(eventType string, operationID string, action string, payload interface{})
}

// StatusBroadcaster is the single authority for operation status updates.
// It maintains the complete state of every operation and broadcasts full
// snapshots, so clients never have to stitch partial events together.
type StatusBroadcaster struct {
	mu         sync.RWMutex
	operations map[string]*OperationSnapshot
	hub        WebSocketHub
	updates    chan updateRequest
	stop       chan struct{}
}

// OperationSnapshot is the complete state of an operation at a point in
// time. It is the only structure sent to the frontend.
type OperationSnapshot struct {
	OperationID  string                 `json:"operation_id"`
	Stage        string                 `json:"stage,omitempty"`
	Status       domain.OperationStatus `json:"status"`
	Progress     int                    `json:"progress"`
	CurrentStage string                 `json:"current_stage,omitempty"`
	Stages       []StageSnapshot        `json:"stages"`
	StartedAt    time.Time              `json:"started_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
	Error        string                 `json:"error,omitempty"`
	Message      string                 `json:"message,omitempty"`
}

// StageSnapshot is the state of a single pipeline stage within a snapshot.
type StageSnapshot struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Status   domain.StepStatus `json:"status"`
	Progress int               `json:"progress"`
	Message  string            `json:"message,omitempty"`
	Error    string            `json:"error,omitempty"`
	Metadata map[string]any    `json:"metadata,omitempty"`
}

type updateRequest struct {
	operationID string
	updateFunc  func(*OperationSnapshot)
	done        chan struct{}
}

// NewStatusBroadcaster creates a broadcaster and starts its update processor.
func NewStatusBroadcaster(hub WebSocketHub) *StatusBroadcaster {
	sb := &StatusBroadcaster{
		operations: make(map[string]*OperationSnapshot),
		hub:        hub,
		updates:    make(chan updateRequest, 100),
		stop:       make(chan struct{}),
	}

	go sb.processUpdates()

	return sb
}

// processUpdates applies all updates sequentially to avoid race conditions.
func (sb *StatusBroadcaster) processUpdates() {
	for {
		select {
		case <-sb.stop:
			return
		case req := <-sb.updates:
			sb.handleUpdate(req)
		}
	}
}

func (sb *StatusBroadcaster) handleUpdate(req updateRequest) {
	defer close(req.done)

	sb.mu.Lock()
	defer sb.mu.Unlock()

	snapshot, exists := sb.operations[req.operationID]
	if !exists {
		snapshot = &OperationSnapshot{
			OperationID: req.operationID,
			Status:      domain.OperationStatusPending,
			StartedAt:   time.Now(),
			Stages:      []StageSnapshot{},
		}
		sb.operations[req.operationID] = snapshot
	}

	req.updateFunc(snapshot)
	snapshot.UpdatedAt = time.Now()

	// Overall progress is the mean of the stage progress values.
	if len(snapshot.Stages) > 0 {
		total := 0
		for _, stage := range snapshot.Stages {
			total += stage.Progress
		}
		snapshot.Progress = total / len(snapshot.Stages)
	}

	if snapshot.Status.IsTerminal() && snapshot.CompletedAt == nil {
		now := time.Now()
		snapshot.CompletedAt = &now
	}

	sb.broadcast(snapshot)
}

func (sb *StatusBroadcaster) broadcast(snapshot *OperationSnapshot) {
	if sb.hub == nil {
		return
	}

	slog.Debug("broadcasting operation snapshot",
		slog.String("operation_id", snapshot.OperationID),
		slog.String("status", string(snapshot.Status)),
		slog.Int("progress", snapshot.Progress),
		slog.String("current_stage", snapshot.CurrentStage),
	)

	sb.hub.BroadcastUpdate(EventOperationSnapshot, snapshot.OperationID, "update", snapshot.clone())
}

// UpdateStatus applies an update to an operation's snapshot and broadcasts
// the result. It blocks until the update has been processed. Updates
// arriving after Stop are dropped.
func (sb *StatusBroadcaster) UpdateStatus(operationID string, updateFunc func(*OperationSnapshot)) {
	select {
	case <-sb.stop:
		return
	default:
	}

	req := updateRequest{
		operationID: operationID,
		updateFunc:  updateFunc,
		done:        make(chan struct{}),
	}

	select {
	case sb.updates <- req:
	case <-sb.stop:
		return
	}
	select {
	case <-req.done:
	case <-sb.stop:
	}
}

// CreateOperation initializes a snapshot with one entry per pipeline stage,
// carrying both the stable stage ID and the human-readable name.
func (sb *StatusBroadcaster) CreateOperation(operationID, requestedStage string, stages []Stage) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		snapshot.Stage = requestedStage
		snapshot.Status = domain.OperationStatusPending
		snapshot.Progress = 0
		snapshot.Stages = make([]StageSnapshot, len(stages))
		for i, stage := range stages {
			snapshot.Stages[i] = StageSnapshot{
				ID:     stage.ID(),
				Name:   stage.Name(),
				Status: domain.StepStatusPending,
			}
		}
		snapshot.Message = "Operation created"
	})
}

// StartOperation marks an operation as running.
func (sb *StatusBroadcaster) StartOperation(operationID string) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		snapshot.Status = domain.OperationStatusRunning
		snapshot.Message = "Operation started"
	})
}

// StartStage marks a stage as running before its first progress event.
func (sb *StatusBroadcaster) StartStage(operationID, stageID string) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		for i := range snapshot.Stages {
			if snapshot.Stages[i].ID == stageID {
				snapshot.Stages[i].Status = domain.StepStatusRunning
				snapshot.CurrentStage = snapshot.Stages[i].Name
				break
			}
		}
	})
}

// UpdateStageProgress updates a single stage's progress.
func (sb *StatusBroadcaster) UpdateStageProgress(operationID, stageID string, progress int, message string) {
	sb.UpdateStageWithMetadata(operationID, stageID, progress, message, nil)
}

// UpdateStageWithMetadata updates a single stage's progress and attaches
// metadata to it.
func (sb *StatusBroadcaster) UpdateStageWithMetadata(operationID, stageID string, progress int, message string, metadata map[string]any) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		for i := range snapshot.Stages {
			if snapshot.Stages[i].ID != stageID {
				continue
			}
			// Keep stage progress monotonic while running so a late
			// event cannot walk the bar backwards.
			if progress >= snapshot.Stages[i].Progress || snapshot.Stages[i].Status != domain.StepStatusRunning {
				snapshot.Stages[i].Progress = min(max(progress, 0), 100)
			}
			snapshot.Stages[i].Message = message
			if metadata != nil {
				snapshot.Stages[i].Metadata = metadata
			}
			if progress >= 100 {
				snapshot.Stages[i].Status = domain.StepStatusCompleted
			} else if progress > 0 {
				snapshot.Stages[i].Status = domain.StepStatusRunning
				snapshot.CurrentStage = snapshot.Stages[i].Name
			}
			return
		}
	})
}

// RetryStage marks a stage as retrying after a transient failure.
func (sb *StatusBroadcaster) RetryStage(operationID, stageID string, attempt int, message string) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		for i := range snapshot.Stages {
			if snapshot.Stages[i].ID == stageID {
				snapshot.Stages[i].Status = domain.StepStatusRetrying
				snapshot.Stages[i].Message = message
				snapshot.Stages[i].Metadata = map[string]any{"attempt": attempt}
				snapshot.CurrentStage = snapshot.Stages[i].Name
				break
			}
		}
	})
}

// CompleteStage marks a stage as completed.
func (sb *StatusBroadcaster) CompleteStage(operationID, stageID string, message string) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		for i := range snapshot.Stages {
			if snapshot.Stages[i].ID == stageID {
				snapshot.Stages[i].Status = domain.StepStatusCompleted
				snapshot.Stages[i].Progress = 100
				snapshot.Stages[i].Message = message
				break
			}
		}
	})
}

// FailStage marks a stage as failed.
func (sb *StatusBroadcaster) FailStage(operationID, stageID string, err error) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		for i := range snapshot.Stages {
			if snapshot.Stages[i].ID == stageID {
				snapshot.Stages[i].Status = domain.StepStatusFailed
				snapshot.Stages[i].Error = err.Error()
				break
			}
		}
	})
}

// SkipStage marks a stage as skipped, typically because an earlier stage
// failed.
func (sb *StatusBroadcaster) SkipStage(operationID, stageID string, reason string) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		for i := range snapshot.Stages {
			if snapshot.Stages[i].ID == stageID {
				snapshot.Stages[i].Status = domain.StepStatusSkipped
				snapshot.Stages[i].Message = reason
				break
			}
		}
	})
}

// CompleteOperation marks an operation as completed.
func (sb *StatusBroadcaster) CompleteOperation(operationID string, message string) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		snapshot.Status = domain.OperationStatusCompleted
		snapshot.Progress = 100
		snapshot.CurrentStage = ""
		snapshot.Message = message
		for i := range snapshot.Stages {
			switch snapshot.Stages[i].Status {
			case domain.StepStatusPending, domain.StepStatusRunning, domain.StepStatusRetrying:
				snapshot.Stages[i].Status = domain.StepStatusCompleted
				snapshot.Stages[i].Progress = 100
			}
		}
	})
}

// FailOperation marks an operation as failed.
func (sb *StatusBroadcaster) FailOperation(operationID string, err error) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		snapshot.Status = domain.OperationStatusFailed
		snapshot.Error = err.Error()
		snapshot.CurrentStage = ""
	})
}

// CancelOperation marks an operation as cancelled.
func (sb *StatusBroadcaster) CancelOperation(operationID string) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		snapshot.Status = domain.OperationStatusCancelled
		snapshot.CurrentStage = ""
		snapshot.Message = "Operation cancelled by user"
	})
}

// GetSnapshot returns a copy of the current snapshot for an operation.
func (sb *StatusBroadcaster) GetSnapshot(operationID string) (*OperationSnapshot, bool) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	snapshot, exists := sb.operations[operationID]
	if !exists {
		return nil, false
	}
	return snapshot.clone(), true
}

// GetAllSnapshots returns copies of every tracked operation snapshot.
func (sb *StatusBroadcaster) GetAllSnapshots() []*OperationSnapshot {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	snapshots := make([]*OperationSnapshot, 0, len(sb.operations))
	for _, snapshot := range sb.operations {
		snapshots = append(snapshots, snapshot.clone())
	}
	return snapshots
}

// CleanupOldOperations drops terminal operations older than maxAge and
// returns how many were removed.
func (sb *StatusBroadcaster) CleanupOldOperations(maxAge time.Duration) int {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, snapshot := range sb.operations {
		if !snapshot.Status.IsTerminal() || snapshot.CompletedAt == nil {
			continue
		}
		if now.Sub(*snapshot.CompletedAt) > maxAge {
			delete(sb.operations, id)
			removed++
			slog.Info("cleaned up old operation",
				slog.String("operation_id", id),
				slog.String("status", string(snapshot.Status)),
			)
		}
	}
	return removed
}

// Stop shuts down the broadcaster's update processor.
func (sb *StatusBroadcaster) Stop() {
	close(sb.stop)
}

func (s *OperationSnapshot) clone() *OperationSnapshot {
	out := *s
	out.Stages = make([]StageSnapshot, len(s.Stages))
	copy(out.Stages, s.Stages)
	if s.CompletedAt != nil {
		completed := *s.CompletedAt
		out.CompletedAt = &completed
	}
	return &out
}
