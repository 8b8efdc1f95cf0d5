package operations

import (
	"fmt"
	"sync"

	apperrors "eventpulse/internal/errors"
	"eventpulse/pkg/contracts/domain"
)

// Registry holds the registered stages in pipeline order. The pipeline
// is linear (clean, analyze, render), so registration order IS the
// execution order and a "full" run simply executes the whole list.
type Registry struct {
	mu     sync.RWMutex
	stages map[string]Stage
	order  []string
}

// NewRegistry creates an empty stage registry.
func NewRegistry() *Registry {
	return &Registry{
		stages: make(map[string]Stage),
	}
}

// Register appends a stage to the pipeline.
func (r *Registry) Register(stage Stage) error {
	if stage == nil {
		return fmt.Errorf("cannot register nil stage")
	}
	id := stage.ID()
	if id == "" {
		return fmt.Errorf("stage ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stages[id]; exists {
		return fmt.Errorf("stage %s already registered", id)
	}
	r.stages[id] = stage
	r.order = append(r.order, id)
	return nil
}

// Get retrieves a stage by ID.
func (r *Registry) Get(id string) (Stage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stage, exists := r.stages[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownStage, id)
	}
	return stage, nil
}

// Has reports whether a stage is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.stages[id]
	return exists
}

// List returns the stages in pipeline order.
func (r *Registry) List() []Stage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stages := make([]Stage, 0, len(r.order))
	for _, id := range r.order {
		stages = append(stages, r.stages[id])
	}
	return stages
}

// ListIDs returns the stage identifiers in pipeline order.
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Count returns the number of registered stages.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stages)
}

// Pipeline resolves a requested stage to the list of stages to execute:
// the full pipeline in order, or a single stage by ID.
func (r *Registry) Pipeline(requested string) ([]Stage, error) {
	if requested == "" || requested == domain.StageFull {
		stages := r.List()
		if len(stages) == 0 {
			return nil, fmt.Errorf("no stages registered")
		}
		return stages, nil
	}

	stage, err := r.Get(requested)
	if err != nil {
		return nil, err
	}
	return []Stage{stage}, nil
}
