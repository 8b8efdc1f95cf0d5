package operations

import (
	"time"

	"eventpulse/internal/config"
	"eventpulse/pkg/contracts/domain"
)

// Config controls how the manager executes a pipeline run.
type Config struct {
	// Per-stage execution timeouts.
	StageTimeouts map[string]time.Duration `json:"stage_timeouts"`

	// Retry behavior for retryable stage failures.
	Retry domain.RetryConfig `json:"retry"`

	// ContinueOnError keeps executing later stages after a failure.
	// The pipeline hands data through disk artifacts, so a later stage
	// can still do useful work against the previous run's output.
	ContinueOnError bool `json:"continue_on_error"`
}

// NewConfig returns the default execution configuration.
func NewConfig() *Config {
	return &Config{
		StageTimeouts: map[string]time.Duration{
			domain.StepIDClean:   config.CleanTimeout,
			domain.StepIDAnalyze: config.AnalyzeTimeout,
			domain.StepIDRender:  config.RenderTimeout,
		},
		Retry: NewRetryConfig(),
	}
}

// StageTimeout returns the timeout for one stage.
func (c *Config) StageTimeout(stageID string) time.Duration {
	if timeout, ok := c.StageTimeouts[stageID]; ok {
		return timeout
	}
	return config.DefaultOperationTimeout
}

// SetStageTimeout overrides the timeout for one stage.
func (c *Config) SetStageTimeout(stageID string, timeout time.Duration) {
	if c.StageTimeouts == nil {
		c.StageTimeouts = make(map[string]time.Duration)
	}
	c.StageTimeouts[stageID] = timeout
}
