package domain

import (
	"time"
)

// Source marks how a section's numbers were produced. Sections are
// individually recovered: when computation fails the section is replaced
// by its hardcoded fallback set, and the marker makes that substitution
// visible instead of silent. The dashboard badges fallback sections.
type Source string

const (
	SourceComputed Source = "computed"
	SourceFallback Source = "fallback"
)

// Provenance is embedded in every insight section. Reason is set only
// when Source is fallback and records what failed.
type Provenance struct {
	Source Source `json:"source" validate:"required,oneof=computed fallback"`
	Reason string `json:"reason,omitempty"`
}

// Computed returns a provenance marker for a successfully computed section.
func Computed() Provenance {
	return Provenance{Source: SourceComputed}
}

// Fallback returns a provenance marker recording why the section fell
// back to its hardcoded values.
func Fallback(reason string) Provenance {
	return Provenance{Source: SourceFallback, Reason: reason}
}

// IsFallback reports whether the section carries fabricated numbers.
func (p Provenance) IsFallback() bool {
	return p.Source == SourceFallback
}

// TargetStatus grades progress toward the delegate and sponsor targets.
type TargetStatus string

const (
	TargetOnTrack        TargetStatus = "on_track"
	TargetNeedsAttention TargetStatus = "needs_attention"
	TargetAtRisk         TargetStatus = "at_risk"
)

// TargetStatusFor grades a forecast-to-target ratio. At or above 0.9 the
// target is on track, at or above 0.7 it needs attention, below that it
// is at risk.
func TargetStatusFor(ratio float64) TargetStatus {
	switch {
	case ratio >= 0.9:
		return TargetOnTrack
	case ratio >= 0.7:
		return TargetNeedsAttention
	default:
		return TargetAtRisk
	}
}

// ChannelStatus grades a marketing channel by its ROI multiple.
type ChannelStatus string

const (
	ChannelHighPerformer  ChannelStatus = "high_performer"
	ChannelNeedsReview    ChannelStatus = "needs_review"
	ChannelUnderperformer ChannelStatus = "underperforming"
)

// ChannelStatusFor grades an ROI multiple. Above 2x the channel is a high
// performer, above break-even it needs review, otherwise it is
// underperforming.
func ChannelStatusFor(roi float64) ChannelStatus {
	switch {
	case roi > 2:
		return ChannelHighPerformer
	case roi > 0:
		return ChannelNeedsReview
	default:
		return ChannelUnderperformer
	}
}

// SourceTraffic aggregates website sessions and conversions for one
// traffic source. ConversionRate is a percentage rounded to two decimals.
type SourceTraffic struct {
	Sessions       float64 `json:"sessions"`
	Conversions    float64 `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
}

// WebsiteAnalysis summarizes cleaned website traffic.
type WebsiteAnalysis struct {
	Provenance
	TotalSessions    int                      `json:"total_sessions"`
	TotalConversions int                      `json:"total_conversions"`
	ConversionRate   float64                  `json:"conversion_rate"`
	BySource         map[string]SourceTraffic `json:"source_analysis,omitempty"`
}

// PlatformEngagement aggregates social activity for one platform.
// EngagementRate is a percentage rounded to three decimals.
type PlatformEngagement struct {
	Impressions    float64 `json:"impressions"`
	Engagements    float64 `json:"engagements"`
	Clicks         float64 `json:"clicks"`
	EngagementRate float64 `json:"engagement_rate"`
}

// SocialAnalysis summarizes cleaned social media activity.
type SocialAnalysis struct {
	Provenance
	TotalImpressions int                           `json:"total_impressions"`
	TotalClicks      int                           `json:"total_clicks"`
	BestPlatform     string                        `json:"best_platform,omitempty"`
	ByPlatform       map[string]PlatformEngagement `json:"platform_stats,omitempty"`
}

// EmailAnalysis summarizes cleaned email campaigns. Average rates are
// percentages rounded to one decimal.
type EmailAnalysis struct {
	Provenance
	TotalConversions int     `json:"total_conversions"`
	TotalRevenue     float64 `json:"total_revenue"`
	AvgOpenRate      float64 `json:"avg_open_rate"`
	AvgCTR           float64 `json:"avg_ctr"`
}

// SalesAnalysis summarizes the cleaned sales pipeline.
type SalesAnalysis struct {
	Provenance
	TotalPipelineValue float64        `json:"total_pipeline_value"`
	TotalDeals         int            `json:"total_deals"`
	StageDistribution  map[string]int `json:"stage_distribution,omitempty"`
	ConversionRate     float64        `json:"conversion_rate"`
	TopSources         map[string]int `json:"top_sources,omitempty"`
}

// PlatformSpend aggregates paid media for one ad platform.
type PlatformSpend struct {
	Spend       float64 `json:"spend"`
	Conversions float64 `json:"conversions"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	CPA         float64 `json:"cpa"`
	CPC         float64 `json:"cpc"`
}

// AdPerformance summarizes cleaned ad spend. BestPlatform is the platform
// with the lowest cost per acquisition.
type AdPerformance struct {
	Provenance
	TotalSpend       float64                  `json:"total_spend"`
	TotalConversions int                      `json:"total_ad_conversions"`
	BestPlatform     string                   `json:"best_platform,omitempty"`
	ByPlatform       map[string]PlatformSpend `json:"platform_stats,omitempty"`
}

// ChannelROI is the estimated return profile of one marketing channel.
// Revenue is estimated from conversion counts and assumed deal values, so
// ROI figures are directional rather than accounting-grade.
type ChannelROI struct {
	Spend            float64 `json:"spend"`
	Conversions      float64 `json:"conversions"`
	EstimatedRevenue float64 `json:"estimated_revenue"`
	ROI              float64 `json:"roi"`
	CPA              float64 `json:"cpa"`
}

// ROIAnalysis ranks marketing channels by estimated ROI.
type ROIAnalysis struct {
	Provenance
	Channels     map[string]ChannelROI `json:"channel_data"`
	BestChannel  string                `json:"best_channel"`
	BestROI      float64               `json:"best_roi"`
	WorstChannel string                `json:"worst_channel"`
	WorstROI     float64               `json:"worst_roi"`
	AverageROI   float64               `json:"average_roi"`
}

// SourceConversion is the funnel performance of one lead source.
// ConversionRate is won over closed as a percentage, one decimal.
type SourceConversion struct {
	TotalDeals     int     `json:"total_deals"`
	ClosedDeals    int     `json:"closed_deals"`
	WonDeals       int     `json:"won_deals"`
	ConversionRate float64 `json:"conversion_rate"`
	AvgDealValue   float64 `json:"avg_deal_value"`
}

// ConversionAnalysis breaks conversion down by lead source.
type ConversionAnalysis struct {
	Provenance
	BySource    map[string]SourceConversion `json:"by_source"`
	OverallRate float64                     `json:"overall_rate"`
	TotalClosed int                         `json:"total_closed"`
	TotalWon    int                         `json:"total_won"`
}

// MonthlyPrediction is one projected month of delegate and sponsor counts.
type MonthlyPrediction struct {
	Month     int `json:"month"`
	Delegates int `json:"delegates"`
	Sponsors  int `json:"sponsors"`
}

// Forecast projects delegate and sponsor counts toward the event targets
// by compounding the mean month-over-month growth rate over four periods.
// MonthlyGrowthRate is a percentage (15.0 means 15% per month).
type Forecast struct {
	Provenance
	CurrentDelegates   int                 `json:"current_delegates"`
	CurrentSponsors    int                 `json:"current_sponsors"`
	DelegateTarget     int                 `json:"delegate_target"`
	SponsorTarget      int                 `json:"sponsor_target"`
	DelegateForecast   float64             `json:"delegate_forecast"`
	SponsorForecast    float64             `json:"sponsor_forecast"`
	DelegateGap        float64             `json:"delegate_gap"`
	SponsorGap         float64             `json:"sponsor_gap"`
	MonthlyGrowthRate  float64             `json:"monthly_growth_rate"`
	MonthlyPredictions []MonthlyPrediction `json:"monthly_predictions,omitempty"`
	OnTrackDelegates   bool                `json:"on_track_delegates"`
	OnTrackSponsors    bool                `json:"on_track_sponsors"`
}

// HighValueSource is a lead source whose deals are large but rarely close.
type HighValueSource struct {
	Source         string  `json:"source"`
	AvgValue       float64 `json:"avg_value"`
	ConversionRate float64 `json:"conversion_rate"`
}

// HiddenInsights surfaces patterns that do not show up on the headline
// dashboards: deals stuck late in the funnel, recurring blocker phrases
// in deal notes, and sources with high deal values but poor close rates.
type HiddenInsights struct {
	Provenance
	StuckDealsCount         int               `json:"stuck_deals_count"`
	StuckDealsValue         float64           `json:"stuck_deals_value"`
	CommonBlockers          map[string]int    `json:"common_blockers,omitempty"`
	HighValueLowConvSources []HighValueSource `json:"high_value_low_conv_sources,omitempty"`
	MonthlyTrend            map[string]int    `json:"monthly_trend,omitempty"`
}

// Recommendation is one parameterized narrative action item.
type Recommendation struct {
	Title    string `json:"title"`
	Details  string `json:"details"`
	Priority string `json:"priority"`
	Impact   string `json:"impact"`
	Timeline string `json:"timeline"`
	Owner    string `json:"owner"`
}

// Recommendations carries the action items derived from the other
// sections, most urgent first.
type Recommendations struct {
	Provenance
	Items []Recommendation `json:"items"`
}

// KPIHighlights collects the headline figures the dashboard cards show.
// Values are copied from the other sections so the dashboard can render
// from one place.
type KPIHighlights struct {
	Provenance
	TotalMarketingSpend   float64 `json:"total_marketing_spend"`
	TotalConversions      float64 `json:"total_conversions"`
	OverallCPA            float64 `json:"overall_cpa"`
	OverallConversionRate float64 `json:"overall_conversion_rate"`
	CurrentDelegates      int     `json:"current_delegates"`
	CurrentSponsors       int     `json:"current_sponsors"`
	DelegateTarget        int     `json:"delegate_target"`
	SponsorTarget         int     `json:"sponsor_target"`
	DelegateForecast      float64 `json:"delegate_forecast"`
	SponsorForecast       float64 `json:"sponsor_forecast"`
	DelegateProgress      float64 `json:"delegate_progress"`
	SponsorProgress       float64 `json:"sponsor_progress"`
	TotalClosedDeals      int     `json:"total_closed_deals"`
	TotalWonDeals         int     `json:"total_won_deals"`
	AverageROI            float64 `json:"average_roi"`
	BestChannelROI        float64 `json:"best_channel_roi"`
	WorstChannelROI       float64 `json:"worst_channel_roi"`
	StuckDealsCount       int     `json:"stuck_deals_count"`
	StuckDealsValue       float64 `json:"stuck_deals_value"`
}

// SourceFile records one analyzed artifact and its content fingerprint.
type SourceFile struct {
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// InsightsMetadata records when the bundle was produced and from what.
type InsightsMetadata struct {
	AnalysisDate time.Time         `json:"analysis_date"`
	DataSources  []SourceFile      `json:"data_sources_analyzed"`
	ChartFiles   []string          `json:"chart_files_generated,omitempty"`
	Sections     map[string]Source `json:"sections,omitempty"`
}

// Insights is the Single Source of Truth for analyzer output. The
// analyzer writes it to insights.json, the dashboard API reads it back,
// and the chart renderer draws from it. Sections are computed
// independently; a section that fails computation is replaced by its
// hardcoded fallback set with Source marked fallback, so the bundle is
// always structurally complete.
//
// Usage:
//
//	bundle := &domain.Insights{
//	    Forecast: &domain.Forecast{
//	        Provenance:       domain.Computed(),
//	        CurrentDelegates: 14,
//	        DelegateTarget:   300,
//	    },
//	}
type Insights struct {
	Website         *WebsiteAnalysis    `json:"website_analysis,omitempty"`
	Social          *SocialAnalysis     `json:"social_analysis,omitempty"`
	Email           *EmailAnalysis      `json:"email_analysis,omitempty"`
	Sales           *SalesAnalysis      `json:"sales_analysis,omitempty"`
	Ads             *AdPerformance      `json:"ad_performance,omitempty"`
	ROI             *ROIAnalysis        `json:"roi_analysis,omitempty"`
	Conversion      *ConversionAnalysis `json:"conversion_analysis,omitempty"`
	Forecast        *Forecast           `json:"forecast,omitempty"`
	Hidden          *HiddenInsights     `json:"hidden_insights,omitempty"`
	Recommendations *Recommendations    `json:"recommendations,omitempty"`
	KPIs            *KPIHighlights      `json:"kpis,omitempty"`
	Metadata        *InsightsMetadata   `json:"metadata,omitempty"`
}

// Insight section names as they appear in insights.json.
const (
	SectionWebsite         = "website_analysis"
	SectionSocial          = "social_analysis"
	SectionEmail           = "email_analysis"
	SectionSales           = "sales_analysis"
	SectionAds             = "ad_performance"
	SectionROI             = "roi_analysis"
	SectionConversion      = "conversion_analysis"
	SectionForecast        = "forecast"
	SectionHidden          = "hidden_insights"
	SectionRecommendations = "recommendations"
	SectionKPIs            = "kpis"
)

// ProvenanceBySection maps each present section to its source marker.
// The analyzer stores the result in Metadata.Sections so consumers can
// check provenance without walking the bundle.
func (i *Insights) ProvenanceBySection() map[string]Source {
	sections := make(map[string]Source)
	if i.Website != nil {
		sections[SectionWebsite] = i.Website.Source
	}
	if i.Social != nil {
		sections[SectionSocial] = i.Social.Source
	}
	if i.Email != nil {
		sections[SectionEmail] = i.Email.Source
	}
	if i.Sales != nil {
		sections[SectionSales] = i.Sales.Source
	}
	if i.Ads != nil {
		sections[SectionAds] = i.Ads.Source
	}
	if i.ROI != nil {
		sections[SectionROI] = i.ROI.Source
	}
	if i.Conversion != nil {
		sections[SectionConversion] = i.Conversion.Source
	}
	if i.Forecast != nil {
		sections[SectionForecast] = i.Forecast.Source
	}
	if i.Hidden != nil {
		sections[SectionHidden] = i.Hidden.Source
	}
	if i.Recommendations != nil {
		sections[SectionRecommendations] = i.Recommendations.Source
	}
	if i.KPIs != nil {
		sections[SectionKPIs] = i.KPIs.Source
	}
	return sections
}

// FallbackSections returns the names of sections carrying fabricated
// numbers, in no particular order.
func (i *Insights) FallbackSections() []string {
	var names []string
	for name, src := range i.ProvenanceBySection() {
		if src == SourceFallback {
			names = append(names, name)
		}
	}
	return names
}
