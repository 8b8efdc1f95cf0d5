package operations

import (
	"sync"
	"time"

	"eventpulse/pkg/contracts/domain"
)

// Operation is the runtime state of one pipeline run: the requested
// stage (or "full"), the per-stage states in execution order, and the
// overall status.
type Operation struct {
	mu sync.RWMutex

	ID           string                 `json:"id"`
	Stage        string                 `json:"stage"`
	WorkbookPath string                 `json:"workbook_path,omitempty"`
	Status       domain.OperationStatus `json:"status"`
	StartedAt    time.Time              `json:"started_at"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
	Error        string                 `json:"error,omitempty"`

	order  []string
	stages map[string]*StageState
	err    error
}

// NewOperation creates a pending operation for the requested stage.
func NewOperation(id, stage string) *Operation {
	return &Operation{
		ID:        id,
		Stage:     stage,
		Status:    domain.OperationStatusPending,
		StartedAt: time.Now(),
		stages:    make(map[string]*StageState),
	}
}

// AddStage registers a stage state in execution order.
func (o *Operation) AddStage(state *StageState) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.stages[state.ID]; !exists {
		o.order = append(o.order, state.ID)
	}
	o.stages[state.ID] = state
}

// StageState returns the state of one stage, or nil.
func (o *Operation) StageState(stageID string) *StageState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.stages[stageID]
}

// StageStates returns the stage states in execution order.
func (o *Operation) StageStates() []*StageState {
	o.mu.RLock()
	defer o.mu.RUnlock()

	states := make([]*StageState, 0, len(o.order))
	for _, id := range o.order {
		states = append(states, o.stages[id])
	}
	return states
}

// StageIDs returns the stage identifiers in execution order.
func (o *Operation) StageIDs() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	ids := make([]string, len(o.order))
	copy(ids, o.order)
	return ids
}

// Start marks the operation as running.
func (o *Operation) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Status = domain.OperationStatusRunning
	o.StartedAt = time.Now()
}

// Complete marks the operation as completed.
func (o *Operation) Complete() {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	o.CompletedAt = &now
	o.Status = domain.OperationStatusCompleted
}

// Fail marks the operation as failed.
func (o *Operation) Fail(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	o.CompletedAt = &now
	o.Status = domain.OperationStatusFailed
	o.err = err
	if err != nil {
		o.Error = err.Error()
	}
}

// Cancel marks the operation as cancelled.
func (o *Operation) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	o.CompletedAt = &now
	o.Status = domain.OperationStatusCancelled
}

// CurrentStatus returns the operation status under the state lock.
func (o *Operation) CurrentStatus() domain.OperationStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.Status
}

// Err returns the failure error, if any.
func (o *Operation) Err() error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.err
}

// Duration returns how long the operation has run, or took to run.
func (o *Operation) Duration() time.Duration {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.CompletedAt != nil {
		return o.CompletedAt.Sub(o.StartedAt)
	}
	return time.Since(o.StartedAt)
}

// HasFailures reports whether any stage failed.
func (o *Operation) HasFailures() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	for _, state := range o.stages {
		if state.CurrentStatus() == domain.StepStatusFailed {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand outside the manager.
func (o *Operation) Clone() *Operation {
	o.mu.RLock()
	defer o.mu.RUnlock()

	clone := &Operation{
		ID:           o.ID,
		Stage:        o.Stage,
		WorkbookPath: o.WorkbookPath,
		Status:       o.Status,
		StartedAt:    o.StartedAt,
		Error:        o.Error,
		err:          o.err,
		order:        make([]string, len(o.order)),
		stages:       make(map[string]*StageState, len(o.stages)),
	}
	if o.CompletedAt != nil {
		completed := *o.CompletedAt
		clone.CompletedAt = &completed
	}
	copy(clone.order, o.order)
	for id, state := range o.stages {
		clone.stages[id] = state.clone()
	}
	return clone
}
