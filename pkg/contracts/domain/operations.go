package domain

import (
	"time"
)

// OperationType defines the kind of pipeline run.
type OperationType string

const (
	OperationTypeCleaning  OperationType = "cleaning"
	OperationTypeAnalysis  OperationType = "analysis"
	OperationTypeRendering OperationType = "rendering"
	OperationTypeFull      OperationType = "full"
)

// OperationStatus represents the status of an operation
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
	OperationStatusCancelled OperationStatus = "cancelled"
)

// IsTerminal reports whether the operation has finished, in any outcome.
func (s OperationStatus) IsTerminal() bool {
	return s == OperationStatusCompleted || s == OperationStatusFailed || s == OperationStatusCancelled
}

// StepStatus represents the status of a step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
	StepStatusRetrying  StepStatus = "retrying"
)

// RetryConfig represents retry configuration for steps
type RetryConfig struct {
	MaxAttempts   int           `json:"max_attempts" validate:"min=1,max=10"`
	InitialDelay  time.Duration `json:"initial_delay" validate:"min=1s"`
	MaxDelay      time.Duration `json:"max_delay" validate:"min=1s"`
	BackoffFactor float64       `json:"backoff_factor" validate:"min=1.0,max=10.0"`
}

// ProgressUpdate represents a progress update for an operation or step
type ProgressUpdate struct {
	OperationID string                 `json:"operation_id"`
	StepID      string                 `json:"step_id,omitempty"`
	Progress    float64                `json:"progress"` // 0-100
	Message     string                 `json:"message,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// OperationRequest represents a request to start a pipeline run
type OperationRequest struct {
	Stage        string                 `json:"stage" validate:"required,oneof=clean analyze render full"`
	WorkbookPath string                 `json:"workbook_path,omitempty"`
	Config       map[string]interface{} `json:"config,omitempty"`
}

// OperationResponse represents an operation execution response
type OperationResponse struct {
	OperationID  string          `json:"operation_id"`
	Status       OperationStatus `json:"status"`
	Message      string          `json:"message"`
	StartedAt    time.Time       `json:"started_at"`
	WebSocketURL string          `json:"websocket_url,omitempty"`
}

// Requestable stages
const (
	StageClean   = "clean"
	StageAnalyze = "analyze"
	StageRender  = "render"
	StageFull    = "full"
)

// Step identifiers
const (
	StepIDClean   = "clean"
	StepIDAnalyze = "analyze"
	StepIDRender  = "render"
)

// Step names
const (
	StepNameClean   = "Data Cleaning"
	StepNameAnalyze = "Insight Analysis"
	StepNameRender  = "Chart Rendering"
)
