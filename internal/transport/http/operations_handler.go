package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "eventpulse/internal/errors"
	"eventpulse/internal/infrastructure"
	"eventpulse/internal/middleware"
	"eventpulse/internal/services"
	"eventpulse/pkg/contracts/domain"
)

// OperationsHandler handles pipeline run requests.
type OperationsHandler struct {
	service *services.OperationService
	logger  *slog.Logger
	errors  *apperrors.ErrorHandler
	query   *middleware.QueryParamValidator
}

// NewOperationsHandler creates the operations handler.
func NewOperationsHandler(service *services.OperationService, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *OperationsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OperationsHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "operations")),
		errors:  errorHandler,
		query:   middleware.NewQueryParamValidator(logger, errorHandler),
	}
}

// StartOperationRequest is the POST /api/operations body.
type StartOperationRequest struct {
	Stage        string `json:"stage"`
	WorkbookPath string `json:"workbook_path,omitempty"`
}

// Bind implements render.Binder. An empty stage means the full pipeline.
func (req *StartOperationRequest) Bind(r *http.Request) error {
	if req.Stage == "" {
		req.Stage = domain.StageFull
	}
	switch req.Stage {
	case domain.StageClean, domain.StageAnalyze, domain.StageRender, domain.StageFull:
		return nil
	}
	return fmt.Errorf("unknown stage %q, expected one of clean, analyze, render, full", req.Stage)
}

// Routes returns the /api/operations router. Request timeouts are the
// caller's concern; runs execute asynchronously so every endpoint here
// answers fast.
func (h *OperationsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Start)
	r.Get("/", h.List)
	r.Get("/stages", h.Stages)
	r.Get("/metrics", h.Metrics)
	r.Get("/{operationID}", h.Status)
	r.Delete("/{operationID}", h.Cancel)

	return r
}

// Start handles POST /api/operations. The run executes asynchronously;
// the 202 response carries the operation ID and the WebSocket URL where
// progress streams.
func (h *OperationsHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("operations-handler")
	ctx, span := tracer.Start(ctx, "operations_handler.start",
		trace.WithAttributes(
			attribute.String("http.route", "/api/operations"),
			attribute.String("request_id", middleware.GetReqID(ctx)),
		),
	)
	defer span.End()

	data := &StartOperationRequest{}
	if err := render.Bind(r, data); err != nil {
		span.RecordError(err)
		h.errors.HandleError(w, r.WithContext(ctx), apperrors.InvalidRequestWithError(err))
		return
	}

	span.SetAttributes(attribute.String("operation.stage", data.Stage))

	resp, err := h.service.Start(ctx, &domain.OperationRequest{
		Stage:        data.Stage,
		WorkbookPath: data.WorkbookPath,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation start failed")
		h.errors.HandleError(w, r.WithContext(ctx), err)
		return
	}

	span.SetAttributes(attribute.String("operation.id", resp.OperationID))
	h.logger.InfoContext(ctx, "operation started",
		slog.String("operation_id", resp.OperationID),
		slog.String("stage", data.Stage),
		slog.String("trace_id", infrastructure.TraceIDFromContext(ctx)))

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, resp)
}

// Status handles GET /api/operations/{operationID}.
func (h *OperationsHandler) Status(w http.ResponseWriter, r *http.Request) {
	operationID := chi.URLParam(r, "operationID")

	snapshot, err := h.service.Status(r.Context(), operationID)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, snapshot)
}

// List handles GET /api/operations. An optional limit query parameter
// caps the response to the most recent runs.
func (h *OperationsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.query.ValidateInt(w, r, "limit", 1, 100, 0)
	if !ok {
		return
	}

	snapshots := h.service.List(r.Context())
	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}

	render.JSON(w, r, map[string]interface{}{
		"operations": snapshots,
		"count":      len(snapshots),
	})
}

// Cancel handles DELETE /api/operations/{operationID}.
func (h *OperationsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	operationID := chi.URLParam(r, "operationID")

	if err := h.service.Cancel(r.Context(), operationID); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "operation cancel requested",
		slog.String("operation_id", operationID))

	render.JSON(w, r, map[string]interface{}{
		"operation_id": operationID,
		"status":       "cancelling",
	})
}

// Stages handles GET /api/operations/stages.
func (h *OperationsHandler) Stages(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"stages": h.service.Stages(r.Context()),
	})
}

// Metrics handles GET /api/operations/metrics.
func (h *OperationsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Metrics(r.Context()))
}
