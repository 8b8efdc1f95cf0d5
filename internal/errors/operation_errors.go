package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// Pipeline-specific errors (using errors package for sentinel errors)
var (
	ErrWorkbookNotFound  = errors.New("workbook not found")
	ErrWorkbookInvalid   = errors.New("workbook invalid")
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrDatasetEmpty      = errors.New("dataset empty")
	ErrOperationRunning  = errors.New("operation already running")
	ErrUnknownStage      = errors.New("unknown stage")
	ErrArtifactNotFound  = errors.New("artifact not found")
	ErrChromeUnavailable = errors.New("chrome executable not found")
	ErrOperationTimeout  = errors.New("operation timed out")
)

// OperationConflictDetails provides additional context when an operation
// request is rejected because another operation holds the pipeline.
type OperationConflictDetails struct {
	RunningOperationID string     `json:"running_operation_id,omitempty"`
	OperationType      string     `json:"operation_type,omitempty"`
	CurrentStep        string     `json:"current_step,omitempty"`
	Progress           int        `json:"progress,omitempty"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
}

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Additional fields for extensibility
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON custom marshaler to include extensions
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})

	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status

	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}

	for k, v := range pd.Extensions {
		data[k] = v
	}

	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// NewOperationRunningError creates an error for a rejected concurrent operation
func NewOperationRunningError(details *OperationConflictDetails, traceID string) *ProblemDetails {
	problem := NewProblemDetails(
		http.StatusConflict,
		TypeOperationRunning,
		"Operation Already Running",
		"An operation is already in progress. The pipeline runs one operation at a time; wait for the current one to finish or cancel it.",
		fmt.Sprintf("/api/operations#%s", traceID),
	)

	problem.WithExtension("error_type", "operation_in_progress").
		WithExtension("trace_id", traceID)

	if details != nil {
		if details.RunningOperationID != "" {
			problem.WithExtension("running_operation_id", details.RunningOperationID)
		}
		if details.OperationType != "" {
			problem.WithExtension("operation_type", details.OperationType)
		}
		if details.CurrentStep != "" {
			problem.WithExtension("current_step", details.CurrentStep)
		}
		if details.Progress > 0 {
			problem.WithExtension("progress", details.Progress)
		}
		if details.StartedAt != nil {
			problem.WithExtension("started_at", details.StartedAt.Format(time.RFC3339))
		}
	}

	return problem
}

// MapOperationError maps pipeline domain errors to HTTP problem details
func MapOperationError(err error, traceID string) render.Renderer {
	instance := fmt.Sprintf("/api/operations#trace-%s", traceID)

	// Check if it's an APIError from errors.go
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode == "WORKBOOK_NOT_FOUND" {
			return NewProblemDetails(
				http.StatusNotFound,
				TypeWorkbookNotFound,
				"Workbook Not Found",
				"No raw marketing workbook found. Place the monthly xlsx export under data/raw and retry.",
				instance,
			).WithExtension("trace_id", traceID).
				WithExtension("error_code", "WORKBOOK_NOT_FOUND")
		}
	}

	switch {
	case errors.Is(err, ErrOperationRunning):
		return NewOperationRunningError(nil, traceID)

	case errors.Is(err, ErrWorkbookNotFound):
		return NewProblemDetails(
			http.StatusNotFound,
			TypeWorkbookNotFound,
			"Workbook Not Found",
			"No raw marketing workbook found. Place the monthly xlsx export under data/raw and retry.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "WORKBOOK_NOT_FOUND")

	case errors.Is(err, ErrWorkbookInvalid):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeDataCorrupted,
			"Workbook Invalid",
			"The requested file is not a cleanable Excel workbook.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "WORKBOOK_INVALID")

	case errors.Is(err, ErrSheetNotFound):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeDataCorrupted,
			"Worksheet Missing",
			"The workbook is missing an expected worksheet and cannot be cleaned.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "SHEET_NOT_FOUND")

	case errors.Is(err, ErrDatasetEmpty):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeDataCorrupted,
			"Dataset Empty",
			"A cleaned dataset contains no rows. Run the cleaning stage before analysis.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "DATASET_EMPTY")

	case errors.Is(err, ErrUnknownStage):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Unknown Stage",
			"The requested stage is not one of: clean, analyze, render, full.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "UNKNOWN_STAGE")

	case errors.Is(err, ErrArtifactNotFound):
		return NewProblemDetails(
			http.StatusNotFound,
			TypeDataNotFound,
			"Artifact Not Found",
			"The requested pipeline artifact does not exist yet. Run the pipeline to generate it.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "ARTIFACT_NOT_FOUND")

	case errors.Is(err, ErrChromeUnavailable):
		return NewProblemDetails(
			http.StatusServiceUnavailable,
			TypeRendererDown,
			"Chart Renderer Unavailable",
			"No Chrome or Chromium executable was found. Chart HTML documents are still written; PNG rendering was skipped.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "CHROME_UNAVAILABLE")

	case errors.Is(err, ErrOperationTimeout):
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Operation Timed Out",
			"The operation exceeded its configured timeout and was cancelled.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "OPERATION_TIMEOUT")

	default:
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			"An unexpected error occurred while processing your request.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "INTERNAL_ERROR")
	}
}
