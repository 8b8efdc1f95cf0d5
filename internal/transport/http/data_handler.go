package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "eventpulse/internal/errors"
	"eventpulse/internal/middleware"
	"eventpulse/internal/services"
)

// DataHandler serves the artifact listing and downloads.
type DataHandler struct {
	service *services.DataService
	logger  *slog.Logger
	errors  *apperrors.ErrorHandler
}

// NewDataHandler creates the data handler.
func NewDataHandler(service *services.DataService, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "data")),
		errors:  errorHandler,
	}
}

// Routes returns the /api/data router.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON)).
		Get("/files", h.ListFiles)
	r.With(render.SetContentType(render.ContentTypeJSON)).
		Get("/workbook/latest", h.LatestWorkbook)

	// Artifact paths nest (cleaned/website_traffic.csv), so the
	// download route takes the rest of the path.
	r.Get("/files/*", h.DownloadFile)

	return r
}

// ListFiles handles GET /api/data/files.
func (h *DataHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	artifacts, err := h.service.ListArtifacts(r.Context())
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"files": artifacts,
		"count": len(artifacts),
	})
}

// DownloadFile handles GET /api/data/files/{path...}.
func (h *DataHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")

	h.logger.InfoContext(r.Context(), "artifact download",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", name))

	if err := h.service.ServeArtifact(r.Context(), w, r, name); err != nil {
		if !responseWritten(w) {
			h.errors.HandleError(w, r, err)
		}
	}
}

// LatestWorkbook handles GET /api/data/workbook/latest.
func (h *DataHandler) LatestWorkbook(w http.ResponseWriter, r *http.Request) {
	workbook, err := h.service.LatestWorkbook(r.Context())
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, workbook)
}

// responseWritten reports whether the handler already started writing,
// in which case an error body would corrupt the response.
func responseWritten(w http.ResponseWriter) bool {
	if ww, ok := w.(interface{ Status() int }); ok {
		return ww.Status() != 0
	}
	return false
}
