package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apperrors "eventpulse/internal/errors"
	"eventpulse/internal/middleware"
)

// ClientLogHandler forwards browser-side log entries into the server
// log, so frontend failures show up next to the pipeline's own logs.
type ClientLogHandler struct {
	logger   *slog.Logger
	errors   *apperrors.ErrorHandler
	validate *middleware.ValidationMiddleware
}

// NewClientLogHandler creates the client log handler.
func NewClientLogHandler(logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *ClientLogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientLogHandler{
		logger:   logger.With(slog.String("handler", "client_log")),
		errors:   errorHandler,
		validate: middleware.NewValidationMiddleware(logger, errorHandler),
	}
}

// ClientLogRequest is one browser log entry.
type ClientLogRequest struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message" validate:"required"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Source  string                 `json:"source,omitempty" validate:"omitempty,max=128"`
}

// Handle processes POST /api/logs.
func (h *ClientLogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	var req ClientLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.HandleError(w, r, apperrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.ValidateStruct(&req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	level := slog.LevelInfo
	switch req.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	attrs := []slog.Attr{slog.String("client_source", req.Source)}
	if req.Data != nil {
		attrs = append(attrs, slog.Any("data", req.Data))
	}
	h.logger.LogAttrs(r.Context(), level, req.Message, attrs...)

	render.JSON(w, r, map[string]interface{}{"success": true})
}
