package operations

import (
	"errors"
	"fmt"
)

// ErrorType classifies an operation error.
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeConflict     ErrorType = "conflict"
)

// OperationError carries the failing stage and whether the failure is
// worth retrying. The manager's retry loop only re-runs a stage when
// Retryable is set; pipeline stages are deterministic, so most are not.
type OperationError struct {
	Type      ErrorType `json:"type"`
	Stage     string    `json:"stage,omitempty"`
	Message   string    `json:"message"`
	Cause     error     `json:"-"`
	Retryable bool      `json:"retryable"`
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	if e.Stage != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause.
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewValidationError reports a stage that cannot run as requested.
func NewValidationError(stage, message string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeValidation,
		Stage:   stage,
		Message: message,
	}
}

// NewExecutionError wraps a stage failure. The cause's text becomes the
// message so snapshots show the real failure, not a generic label.
func NewExecutionError(stage string, cause error, retryable bool) *OperationError {
	message := "stage execution failed"
	if cause != nil {
		message = cause.Error()
	}
	return &OperationError{
		Type:      ErrorTypeExecution,
		Stage:     stage,
		Message:   message,
		Cause:     cause,
		Retryable: retryable,
	}
}

// NewTimeoutError reports a stage that exceeded its timeout. Timeouts
// are retryable: the next attempt gets a fresh deadline.
func NewTimeoutError(stage string, timeout string) *OperationError {
	return &OperationError{
		Type:      ErrorTypeTimeout,
		Stage:     stage,
		Message:   fmt.Sprintf("stage exceeded timeout of %s", timeout),
		Retryable: true,
	}
}

// NewCancellationError reports an operation cancelled mid-run.
func NewCancellationError(stage string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeCancellation,
		Stage:   stage,
		Message: "operation was cancelled",
	}
}

// IsRetryable reports whether the error is marked retryable.
func IsRetryable(err error) bool {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Retryable
	}
	return false
}

// IsCancellation reports whether the error is a cancellation.
func IsCancellation(err error) bool {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type == ErrorTypeCancellation
	}
	return false
}

// WrapError attaches stage context to an error, preserving an existing
// OperationError's classification.
func WrapError(err error, stage, message string) *OperationError {
	if err == nil {
		return nil
	}

	var opErr *OperationError
	if errors.As(err, &opErr) {
		if opErr.Stage == "" {
			opErr.Stage = stage
		}
		if message != "" {
			opErr.Message = fmt.Sprintf("%s: %s", message, opErr.Message)
		}
		return opErr
	}

	return &OperationError{
		Type:    ErrorTypeExecution,
		Stage:   stage,
		Message: message,
		Cause:   err,
	}
}

// ErrOperationNotFound is returned when an operation ID is unknown.
var ErrOperationNotFound = &OperationError{
	Type:    ErrorTypeNotFound,
	Message: "operation not found",
}
