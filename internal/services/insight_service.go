package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"time"

	"eventpulse/internal/analysis"
	"eventpulse/internal/config"
	"eventpulse/internal/infrastructure"
	"eventpulse/pkg/contracts/domain"
)

// InsightService shapes the analyzer's bundle into the dashboard views.
// It never fails for want of data: when insights.json is missing or
// unreadable the reference bundle stands in, badged as fallback, so the
// dashboard renders on a fresh install exactly as it does after a run.
type InsightService struct {
	paths  *config.Paths
	event  config.EventConfig
	logger *slog.Logger
}

// NewInsightService creates the dashboard read side.
func NewInsightService(paths *config.Paths, event config.EventConfig, logger *slog.Logger) *InsightService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &InsightService{
		paths:  paths,
		event:  event,
		logger: logger.With(slog.String("component", "insight_service")),
	}
}

// EventInfo is the countdown card on the overview page.
type EventInfo struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	DaysUntil int    `json:"days_until"`
}

// TargetProgress grades one recruitment target by its forecast.
type TargetProgress struct {
	Metric   string              `json:"metric"`
	Current  int                 `json:"current"`
	Target   int                 `json:"target"`
	Forecast float64             `json:"forecast"`
	Ratio    float64             `json:"ratio"`
	Status   domain.TargetStatus `json:"status"`
}

// Overview is the landing view: KPI cards, target progress and the event
// countdown.
type Overview struct {
	Event            EventInfo             `json:"event"`
	KPIs             *domain.KPIHighlights `json:"kpis"`
	Summary          *domain.KPISummary    `json:"kpi_summary,omitempty"`
	Targets          []TargetProgress      `json:"targets"`
	FallbackSections []string              `json:"fallback_sections,omitempty"`
	GeneratedAt      time.Time             `json:"generated_at"`
}

// ChannelRow is one marketing channel in the ROI table, graded by its
// ROI multiple.
type ChannelRow struct {
	Channel          string               `json:"channel"`
	Spend            float64              `json:"spend"`
	Conversions      float64              `json:"conversions"`
	EstimatedRevenue float64              `json:"estimated_revenue"`
	ROI              float64              `json:"roi"`
	CPA              float64              `json:"cpa"`
	Status           domain.ChannelStatus `json:"status"`
}

// ChannelView is the ROI table, best channel first.
type ChannelView struct {
	domain.Provenance
	Rows         []ChannelRow `json:"rows"`
	BestChannel  string       `json:"best_channel"`
	WorstChannel string       `json:"worst_channel"`
	AverageROI   float64      `json:"average_roi"`
}

// FunnelStageCount is one pipeline stage in canonical funnel order.
type FunnelStageCount struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// FunnelView is the sales funnel: stage counts in canonical order plus
// the per-source conversion table, which carries its own provenance.
type FunnelView struct {
	domain.Provenance
	Stages     []FunnelStageCount         `json:"stages"`
	TotalDeals int                        `json:"total_deals"`
	Conversion *domain.ConversionAnalysis `json:"conversion"`
}

// RecommendationsView pairs the action items with the hidden insights
// they were derived from.
type RecommendationsView struct {
	Recommendations *domain.Recommendations `json:"recommendations"`
	Hidden          *domain.HiddenInsights  `json:"hidden_insights"`
}

// Bundle returns the complete insight bundle, computed or fallback.
func (s *InsightService) Bundle(ctx context.Context) *domain.Insights {
	return s.loadBundle(ctx)
}

// Overview builds the landing view.
func (s *InsightService) Overview(ctx context.Context) *Overview {
	bundle := s.loadBundle(ctx)
	summary := s.loadSummary(ctx)

	forecast := bundle.Forecast
	targets := []TargetProgress{
		targetProgress("delegates", forecast.CurrentDelegates, forecast.DelegateTarget, forecast.DelegateForecast),
		targetProgress("sponsors", forecast.CurrentSponsors, forecast.SponsorTarget, forecast.SponsorForecast),
	}

	return &Overview{
		Event: EventInfo{
			Name:      s.event.Name,
			Date:      s.event.Date,
			DaysUntil: s.daysUntilEvent(),
		},
		KPIs:             bundle.KPIs,
		Summary:          summary,
		Targets:          targets,
		FallbackSections: bundle.FallbackSections(),
		GeneratedAt:      time.Now(),
	}
}

func targetProgress(metric string, current, target int, forecast float64) TargetProgress {
	ratio := 0.0
	if target > 0 {
		ratio = forecast / float64(target)
	}
	return TargetProgress{
		Metric:   metric,
		Current:  current,
		Target:   target,
		Forecast: forecast,
		Ratio:    math.Round(ratio*100) / 100,
		Status:   domain.TargetStatusFor(ratio),
	}
}

func (s *InsightService) daysUntilEvent() int {
	date, err := time.Parse("2006-01-02", s.event.Date)
	if err != nil {
		return 0
	}
	return int(math.Ceil(time.Until(date).Hours() / 24))
}

// Channels builds the ROI table view, best channel first.
func (s *InsightService) Channels(ctx context.Context) *ChannelView {
	roi := s.loadBundle(ctx).ROI

	rows := make([]ChannelRow, 0, len(roi.Channels))
	for name, channel := range roi.Channels {
		rows = append(rows, ChannelRow{
			Channel:          name,
			Spend:            channel.Spend,
			Conversions:      channel.Conversions,
			EstimatedRevenue: channel.EstimatedRevenue,
			ROI:              channel.ROI,
			CPA:              channel.CPA,
			Status:           domain.ChannelStatusFor(channel.ROI),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ROI != rows[j].ROI {
			return rows[i].ROI > rows[j].ROI
		}
		return rows[i].Channel < rows[j].Channel
	})

	return &ChannelView{
		Provenance:   roi.Provenance,
		Rows:         rows,
		BestChannel:  roi.BestChannel,
		WorstChannel: roi.WorstChannel,
		AverageROI:   roi.AverageROI,
	}
}

// Funnel builds the funnel view. Canonical stages always appear, zero
// counts included; stages outside the canonical ladder follow in name
// order so unexpected pipeline data still shows up.
func (s *InsightService) Funnel(ctx context.Context) *FunnelView {
	bundle := s.loadBundle(ctx)
	sales := bundle.Sales

	canonical := domain.FunnelStages()
	seen := make(map[string]bool, len(canonical))
	stages := make([]FunnelStageCount, 0, len(canonical))
	for _, stage := range canonical {
		seen[stage] = true
		stages = append(stages, FunnelStageCount{Stage: stage, Count: sales.StageDistribution[stage]})
	}

	var extras []string
	for stage := range sales.StageDistribution {
		if !seen[stage] {
			extras = append(extras, stage)
		}
	}
	sort.Strings(extras)
	for _, stage := range extras {
		stages = append(stages, FunnelStageCount{Stage: stage, Count: sales.StageDistribution[stage]})
	}

	return &FunnelView{
		Provenance: sales.Provenance,
		Stages:     stages,
		TotalDeals: sales.TotalDeals,
		Conversion: bundle.Conversion,
	}
}

// Forecast returns the projection section as the analyzer produced it.
func (s *InsightService) Forecast(ctx context.Context) *domain.Forecast {
	return s.loadBundle(ctx).Forecast
}

// Recommendations returns the action items and the hidden insights
// behind them.
func (s *InsightService) Recommendations(ctx context.Context) *RecommendationsView {
	bundle := s.loadBundle(ctx)
	return &RecommendationsView{
		Recommendations: bundle.Recommendations,
		Hidden:          bundle.Hidden,
	}
}

// loadBundle reads insights.json, substituting the reference bundle when
// the file is missing or unreadable and patching any absent section so
// callers never nil-check.
func (s *InsightService) loadBundle(ctx context.Context) *domain.Insights {
	data, err := os.ReadFile(s.paths.InsightsJSON)
	if os.IsNotExist(err) {
		s.logger.DebugContext(ctx, "Insights bundle not found, serving reference values",
			slog.String("path", s.paths.InsightsJSON))
		return analysis.FallbackBundle("insights.json not found; run the analyze stage")
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Insights bundle unreadable, serving reference values",
			slog.String("path", s.paths.InsightsJSON),
			slog.String("error", err.Error()))
		return analysis.FallbackBundle(fmt.Sprintf("insights.json unreadable: %v", err))
	}

	var bundle domain.Insights
	if err := json.Unmarshal(data, &bundle); err != nil {
		s.logger.WarnContext(ctx, "Insights bundle corrupt, serving reference values",
			slog.String("path", s.paths.InsightsJSON),
			slog.String("error", err.Error()))
		return analysis.FallbackBundle(fmt.Sprintf("insights.json corrupt: %v", err))
	}

	patchMissingSections(&bundle)
	return &bundle
}

// patchMissingSections fills sections absent from a stored bundle with
// their fallbacks. The analyzer always writes all sections, so this only
// fires on hand-edited or truncated files.
func patchMissingSections(bundle *domain.Insights) {
	fallback := analysis.FallbackBundle("section missing from insights.json")
	if bundle.Website == nil {
		bundle.Website = fallback.Website
	}
	if bundle.Social == nil {
		bundle.Social = fallback.Social
	}
	if bundle.Email == nil {
		bundle.Email = fallback.Email
	}
	if bundle.Sales == nil {
		bundle.Sales = fallback.Sales
	}
	if bundle.Ads == nil {
		bundle.Ads = fallback.Ads
	}
	if bundle.ROI == nil {
		bundle.ROI = fallback.ROI
	}
	if bundle.Conversion == nil {
		bundle.Conversion = fallback.Conversion
	}
	if bundle.Forecast == nil {
		bundle.Forecast = fallback.Forecast
	}
	if bundle.Hidden == nil {
		bundle.Hidden = fallback.Hidden
	}
	if bundle.Recommendations == nil {
		bundle.Recommendations = fallback.Recommendations
	}
	if bundle.KPIs == nil {
		bundle.KPIs = fallback.KPIs
	}
	if bundle.Metadata == nil {
		bundle.Metadata = fallback.Metadata
	}
}

// loadSummary reads the cleaner's KPI summary. The summary enriches the
// overview but is optional; nil means the cleaning stage has not run.
func (s *InsightService) loadSummary(ctx context.Context) *domain.KPISummary {
	data, err := os.ReadFile(s.paths.KPISummaryJSON)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WarnContext(ctx, "KPI summary unreadable",
				slog.String("path", s.paths.KPISummaryJSON),
				slog.String("error", err.Error()))
		}
		return nil
	}

	var summary domain.KPISummary
	if err := json.Unmarshal(data, &summary); err != nil {
		s.logger.WarnContext(ctx, "KPI summary corrupt",
			slog.String("path", s.paths.KPISummaryJSON),
			slog.String("error", err.Error()))
		return nil
	}
	return &summary
}
