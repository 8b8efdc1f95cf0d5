package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "eventpulse/internal/errors"
	"eventpulse/internal/middleware"
	"eventpulse/internal/services"
)

// DashboardHandler serves the insight views the dashboard renders.
// Every endpoint answers 200: when the analyzer has not run yet the
// views arrive built from reference values, badged by their provenance.
type DashboardHandler struct {
	insights *services.InsightService
	logger   *slog.Logger
	query    *middleware.QueryParamValidator
}

// NewDashboardHandler creates the dashboard handler.
func NewDashboardHandler(insights *services.InsightService, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		insights: insights,
		logger:   logger.With(slog.String("handler", "dashboard")),
		query:    middleware.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the /api/dashboard router.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.Bundle)
	r.Get("/overview", h.Overview)
	r.Get("/channels", h.Channels)
	r.Get("/funnel", h.Funnel)
	r.Get("/forecast", h.Forecast)
	r.Get("/recommendations", h.Recommendations)
	r.Get("/memo", h.Memo)

	return r
}

// Bundle handles GET /api/dashboard, the raw insight bundle.
func (h *DashboardHandler) Bundle(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.insights.Bundle(r.Context()))
}

// Overview handles GET /api/dashboard/overview.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.insights.Overview(r.Context()))
}

// Channels handles GET /api/dashboard/channels.
func (h *DashboardHandler) Channels(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.insights.Channels(r.Context()))
}

// Funnel handles GET /api/dashboard/funnel.
func (h *DashboardHandler) Funnel(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.insights.Funnel(r.Context()))
}

// Forecast handles GET /api/dashboard/forecast.
func (h *DashboardHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.insights.Forecast(r.Context()))
}

// Recommendations handles GET /api/dashboard/recommendations.
func (h *DashboardHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.insights.Recommendations(r.Context()))
}

// Memo handles GET /api/dashboard/memo. The default response is JSON;
// ?format=text downloads the assembled memo as plain text.
func (h *DashboardHandler) Memo(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format", []string{"json", "text"}, "json")
	if !ok {
		return
	}

	memo := h.insights.Memo(r.Context())

	if format == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "ceo_memo_"+memo.Date+".txt"))
		if _, err := w.Write([]byte(memo.Body)); err != nil {
			h.logger.WarnContext(r.Context(), "memo download interrupted",
				slog.String("error", err.Error()))
		}
		return
	}

	render.JSON(w, r, memo)
}
