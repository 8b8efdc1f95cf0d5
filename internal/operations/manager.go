package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventpulse/internal/config"
	apperrors "eventpulse/internal/errors"
	"eventpulse/internal/infrastructure"
	"eventpulse/pkg/contracts/domain"
)

// Manager runs pipeline operations. The pipeline stages share state
// through the data directories, so the manager allows exactly one
// operation in flight at a time; a second request is rejected with
// ErrOperationRunning instead of queueing behind an unknown wait.
type Manager struct {
	registry    *Registry
	cfg         *Config
	broadcaster *StatusBroadcaster
	metrics     *infrastructure.BusinessMetrics

	mu         sync.RWMutex
	operations map[string]*Operation
	cancels    map[string]context.CancelFunc
	active     string
	onFinish   []func(*Operation)
}

// NewManager creates an operation manager. The hub may be nil (updates
// are then tracked but not broadcast), as may metrics and cfg.
func NewManager(hub WebSocketHub, metrics *infrastructure.BusinessMetrics, registry *Registry, cfg *Config) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Manager{
		registry:    registry,
		cfg:         cfg,
		broadcaster: NewStatusBroadcaster(hub),
		metrics:     metrics,
		operations:  make(map[string]*Operation),
		cancels:     make(map[string]context.CancelFunc),
	}
}

// OnFinish registers a callback invoked with a copy of every operation
// that reaches a terminal state, whatever the outcome. The service layer
// uses it to nudge dashboards into re-fetching artifacts. Register
// before the first Start or Execute; callbacks run on the operation
// goroutine, so they must not block.
func (m *Manager) OnFinish(fn func(*Operation)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.onFinish = append(m.onFinish, fn)
	m.mu.Unlock()
}

// Start begins an operation asynchronously and returns immediately.
// Progress flows to clients through the broadcaster; the operation runs
// under its own context so it survives the originating HTTP request.
func (m *Manager) Start(ctx context.Context, req *domain.OperationRequest) (*domain.OperationResponse, error) {
	op, stages, err := m.prepare(req)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(context.Background(), config.DefaultOperationTimeout)
	m.mu.Lock()
	m.cancels[op.ID] = cancel
	m.mu.Unlock()

	go func() {
		defer cancel()
		if err := m.run(runCtx, op, stages); err != nil {
			slog.Error("operation finished with error",
				slog.String("operation_id", op.ID),
				slog.String("error", err.Error()),
			)
		}
	}()

	return &domain.OperationResponse{
		OperationID:  op.ID,
		Status:       domain.OperationStatusPending,
		Message:      "Operation accepted",
		StartedAt:    op.StartedAt,
		WebSocketURL: "/ws",
	}, nil
}

// Execute runs an operation synchronously and returns its final state.
// Used by the command-line entry points; the dashboard uses Start.
func (m *Manager) Execute(ctx context.Context, req *domain.OperationRequest) (*Operation, error) {
	op, stages, err := m.prepare(req)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, config.DefaultOperationTimeout)
	defer cancel()
	m.mu.Lock()
	m.cancels[op.ID] = cancel
	m.mu.Unlock()

	runErr := m.run(runCtx, op, stages)
	return op.Clone(), runErr
}

// prepare validates the request, reserves the single in-flight slot and
// creates the operation with one stage state per pipeline stage.
func (m *Manager) prepare(req *domain.OperationRequest) (*Operation, []Stage, error) {
	if req == nil {
		req = &domain.OperationRequest{}
	}
	requested := req.Stage
	if requested == "" {
		requested = domain.StageFull
	}

	stages, err := m.registry.Pipeline(requested)
	if err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != "" {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrOperationRunning, m.active)
	}

	op := NewOperation(uuid.NewString(), requested)
	op.WorkbookPath = req.WorkbookPath
	for _, stage := range stages {
		op.AddStage(NewStageState(stage.ID(), stage.Name()))
	}
	m.operations[op.ID] = op
	m.active = op.ID

	m.broadcaster.CreateOperation(op.ID, requested, stages)
	return op, stages, nil
}

func (m *Manager) run(ctx context.Context, op *Operation, stages []Stage) error {
	opType := string(operationTypeFor(op.Stage))
	defer m.finish(op.ID)

	op.Start()
	m.broadcaster.StartOperation(op.ID)
	infrastructure.RecordActiveOperationChange(ctx, m.metrics, 1, opType)
	defer infrastructure.RecordActiveOperationChange(ctx, m.metrics, -1, opType)

	slog.Info("operation started",
		slog.String("operation_id", op.ID),
		slog.String("stage", op.Stage),
		slog.Int("stages", len(stages)),
	)

	err := m.executeSequential(ctx, op, stages)

	switch {
	case err == nil:
		op.Complete()
		m.broadcaster.CompleteOperation(op.ID, "Pipeline completed")
	case IsCancellation(err):
		op.Cancel()
		m.broadcaster.CancelOperation(op.ID)
		infrastructure.RecordOperationCancellation(ctx, m.metrics, op.ID, opType, "user request")
	default:
		op.Fail(err)
		m.broadcaster.FailOperation(op.ID, err)
	}
	infrastructure.RecordOperationMetrics(ctx, m.metrics, op.ID, opType, op.Duration(), err == nil, err)

	slog.Info("operation finished",
		slog.String("operation_id", op.ID),
		slog.String("status", string(op.CurrentStatus())),
		slog.Duration("duration", op.Duration()),
	)

	m.mu.RLock()
	hooks := m.onFinish
	m.mu.RUnlock()
	for _, fn := range hooks {
		fn(op.Clone())
	}
	return err
}

func (m *Manager) executeSequential(ctx context.Context, op *Operation, stages []Stage) error {
	var firstErr error
	for i, stage := range stages {
		if ctx.Err() != nil {
			m.skipRemaining(op, stages[i:], "operation cancelled")
			return stageContextError(ctx, stage.ID(), m.cfg.StageTimeout(stage.ID()))
		}

		err := m.executeStage(ctx, op, stage)
		if err == nil {
			continue
		}
		if IsCancellation(err) {
			m.skipRemaining(op, stages[i+1:], "operation cancelled")
			return err
		}
		if m.cfg.ContinueOnError {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		m.skipRemaining(op, stages[i+1:], fmt.Sprintf("skipped after %s failed", stage.Name()))
		return err
	}
	return firstErr
}

func (m *Manager) skipRemaining(op *Operation, stages []Stage, reason string) {
	for _, stage := range stages {
		state := op.StageState(stage.ID())
		if state == nil || state.CurrentStatus() != domain.StepStatusPending {
			continue
		}
		state.Skip(reason)
		m.broadcaster.SkipStage(op.ID, stage.ID(), reason)
	}
}

// executeStage runs one stage with the configured retry policy. Only
// errors marked retryable re-run; cancellation always stops the loop.
func (m *Manager) executeStage(ctx context.Context, op *Operation, stage Stage) error {
	state := op.StageState(stage.ID())
	timeout := m.cfg.StageTimeout(stage.ID())
	retry := m.cfg.Retry

	var lastErr error
	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := retryDelay(retry, attempt)
			message := fmt.Sprintf("attempt %d of %d in %s", attempt, retry.MaxAttempts, delay)
			state.Retrying(message)
			m.broadcaster.RetryStage(op.ID, stage.ID(), attempt, message)
			slog.Warn("stage retrying",
				slog.String("operation_id", op.ID),
				slog.String("stage", stage.ID()),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return stageContextError(ctx, stage.ID(), timeout)
			}
		}

		state.Start()
		m.broadcaster.StartStage(op.ID, stage.ID())

		started := time.Now()
		err := m.runStage(ctx, op, stage, timeout)
		infrastructure.RecordOperationStepMetrics(ctx, m.metrics, op.ID, stage.ID(), time.Since(started), err == nil)

		if err == nil {
			state.Complete()
			m.broadcaster.CompleteStage(op.ID, stage.ID(), stage.Name()+" completed")
			slog.Info("stage completed",
				slog.String("operation_id", op.ID),
				slog.String("stage", stage.ID()),
				slog.Duration("duration", time.Since(started)),
			)
			return nil
		}

		lastErr = err
		if IsCancellation(err) || !IsRetryable(err) {
			break
		}
	}

	state.Fail(lastErr)
	m.broadcaster.FailStage(op.ID, stage.ID(), lastErr)
	slog.Error("stage failed",
		slog.String("operation_id", op.ID),
		slog.String("stage", stage.ID()),
		slog.String("error", lastErr.Error()),
	)
	return lastErr
}

// runStage gives the stage its own timeout and classifies the failure.
func (m *Manager) runStage(ctx context.Context, op *Operation, stage Stage, timeout time.Duration) error {
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := stage.Run(stageCtx, op)
	if err == nil {
		return nil
	}

	switch {
	case ctx.Err() != nil:
		return stageContextError(ctx, stage.ID(), timeout)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(stageCtx.Err(), context.DeadlineExceeded):
		return NewTimeoutError(stage.ID(), timeout.String())
	default:
		var opErr *OperationError
		if errors.As(err, &opErr) {
			if opErr.Stage == "" {
				opErr.Stage = stage.ID()
			}
			return opErr
		}
		return NewExecutionError(stage.ID(), err, false)
	}
}

// CancelOperation cancels a running operation.
func (m *Manager) CancelOperation(operationID string) error {
	m.mu.Lock()
	cancel, ok := m.cancels[operationID]
	m.mu.Unlock()

	if !ok {
		return ErrOperationNotFound
	}
	slog.Info("cancelling operation", slog.String("operation_id", operationID))
	cancel()
	return nil
}

// GetOperation returns a copy of a running operation's state. Finished
// operations are served from the broadcaster's snapshot history.
func (m *Manager) GetOperation(operationID string) (*Operation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	op, ok := m.operations[operationID]
	if !ok {
		return nil, ErrOperationNotFound
	}
	return op.Clone(), nil
}

// ListOperations returns copies of all running operations.
func (m *Manager) ListOperations() []*Operation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ops := make([]*Operation, 0, len(m.operations))
	for _, op := range m.operations {
		ops = append(ops, op.Clone())
	}
	return ops
}

// Busy reports whether an operation is currently in flight.
func (m *Manager) Busy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active != ""
}

// ActiveOperationID returns the in-flight operation's ID, or "".
func (m *Manager) ActiveOperationID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Registry returns the stage registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Broadcaster returns the status broadcaster.
func (m *Manager) Broadcaster() *StatusBroadcaster {
	return m.broadcaster
}

// Config returns the execution configuration.
func (m *Manager) Config() *Config {
	return m.cfg
}

// Stop cancels any in-flight operation and shuts down the broadcaster.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(m.cancels))
	for _, cancel := range m.cancels {
		cancels = append(cancels, cancel)
	}
	m.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	m.broadcaster.Stop()
}

func (m *Manager) finish(operationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.cancels, operationID)
	delete(m.operations, operationID)
	if m.active == operationID {
		m.active = ""
	}
}

// retryDelay returns the backoff before the given attempt: the initial
// delay grown geometrically, capped at the configured maximum.
func retryDelay(cfg domain.RetryConfig, attempt int) time.Duration {
	delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt-2)))
	if delay > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	if delay < cfg.InitialDelay {
		return cfg.InitialDelay
	}
	return delay
}

// stageContextError maps a dead context to the matching operation error.
func stageContextError(ctx context.Context, stageID string, timeout time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err := NewTimeoutError(stageID, timeout.String())
		err.Cause = apperrors.ErrOperationTimeout
		err.Retryable = false
		return err
	}
	return NewCancellationError(stageID)
}

func operationTypeFor(stage string) domain.OperationType {
	switch stage {
	case domain.StageClean:
		return domain.OperationTypeCleaning
	case domain.StageAnalyze:
		return domain.OperationTypeAnalysis
	case domain.StageRender:
		return domain.OperationTypeRendering
	default:
		return domain.OperationTypeFull
	}
}
