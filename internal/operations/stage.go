package operations

import (
	"context"
	"sync"
	"time"

	"eventpulse/pkg/contracts/domain"
)

// Stage is one unit of pipeline work. Stages run strictly sequentially
// and hand data to each other through the artifacts on disk, never
// through memory, so any stage can also run on its own.
type Stage interface {
	// ID returns the stable stage identifier used in requests and
	// snapshots.
	ID() string

	// Name returns the human-readable stage name.
	Name() string

	// Run executes the stage. Progress is reported through the
	// operation's broadcaster; the returned error fails the stage.
	Run(ctx context.Context, op *Operation) error
}

// StageState is the runtime state of one stage within an operation.
type StageState struct {
	mu          sync.RWMutex
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Status      domain.StepStatus `json:"status"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Progress    int               `json:"progress"`
	Message     string            `json:"message,omitempty"`
	Error       string            `json:"error,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`

	err error
}

// NewStageState creates a pending state for the given stage.
func NewStageState(id, name string) *StageState {
	return &StageState{
		ID:       id,
		Name:     name,
		Status:   domain.StepStatusPending,
		Metadata: make(map[string]any),
	}
}

// Start marks the stage as running and stamps the start time. A retry
// calls Start again; the first start time is kept.
func (s *StageState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.StartedAt == nil {
		now := time.Now()
		s.StartedAt = &now
	}
	s.Status = domain.StepStatusRunning
	s.Progress = 0
}

// Retrying marks the stage as waiting for its next attempt.
func (s *StageState) Retrying(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Status = domain.StepStatusRetrying
	s.Message = message
}

// Complete marks the stage as completed.
func (s *StageState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.CompletedAt = &now
	s.Status = domain.StepStatusCompleted
	s.Progress = 100
}

// Fail marks the stage as failed with the given error.
func (s *StageState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.CompletedAt = &now
	s.Status = domain.StepStatusFailed
	s.err = err
	if err != nil {
		s.Error = err.Error()
	}
}

// Skip marks the stage as skipped with the given reason.
func (s *StageState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.CompletedAt = &now
	s.Status = domain.StepStatusSkipped
	s.Message = reason
}

// UpdateProgress records stage progress and the current message.
func (s *StageState) UpdateProgress(progress int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Progress = progress
	s.Message = message
}

// SetMetadata attaches a summary value to the stage state.
func (s *StageState) SetMetadata(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Metadata == nil {
		s.Metadata = make(map[string]any)
	}
	s.Metadata[key] = value
}

// Err returns the failure error, if any.
func (s *StageState) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// CurrentStatus returns the stage status under the state lock.
func (s *StageState) CurrentStatus() domain.StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration returns how long the stage has run, or took to run.
func (s *StageState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartedAt == nil {
		return 0
	}
	if s.CompletedAt != nil {
		return s.CompletedAt.Sub(*s.StartedAt)
	}
	return time.Since(*s.StartedAt)
}

func (s *StageState) clone() *StageState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone := &StageState{
		ID:       s.ID,
		Name:     s.Name,
		Status:   s.Status,
		Progress: s.Progress,
		Message:  s.Message,
		Error:    s.Error,
		Metadata: make(map[string]any, len(s.Metadata)),
		err:      s.err,
	}
	if s.StartedAt != nil {
		started := *s.StartedAt
		clone.StartedAt = &started
	}
	if s.CompletedAt != nil {
		completed := *s.CompletedAt
		clone.CompletedAt = &completed
	}
	for k, v := range s.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}
