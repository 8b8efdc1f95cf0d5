package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eventpulse/pkg/contracts/domain"
)

func TestBuildKPIs(t *testing.T) {
	conversion := &domain.ConversionAnalysis{OverallRate: 17.8, TotalClosed: 107, TotalWon: 19}
	forecast := &domain.Forecast{
		CurrentDelegates: 14,
		CurrentSponsors:  3,
		DelegateTarget:   300,
		SponsorTarget:    25,
		DelegateForecast: 24,
		SponsorForecast:  5,
	}
	roi := &domain.ROIAnalysis{AverageROI: 4.22, BestROI: 8.2, WorstROI: 0.4}
	hidden := &domain.HiddenInsights{StuckDealsCount: 14, StuckDealsValue: 480000}

	section := buildKPIs(conversion, forecast, roi, hidden)

	assert.False(t, section.IsFallback())
	assert.InDelta(t, 15000, section.TotalMarketingSpend, 1e-9)
	assert.InDelta(t, 200, section.TotalConversions, 1e-9)
	assert.InDelta(t, 75.0, section.OverallCPA, 1e-9)

	assert.InDelta(t, 17.8, section.OverallConversionRate, 1e-9)
	assert.Equal(t, 107, section.TotalClosedDeals)
	assert.Equal(t, 19, section.TotalWonDeals)

	assert.Equal(t, 14, section.CurrentDelegates)
	assert.Equal(t, 3, section.CurrentSponsors)
	assert.InDelta(t, 24, section.DelegateForecast, 1e-9)
	assert.InDelta(t, 4.7, section.DelegateProgress, 1e-9,
		"14 of 300 delegates")
	assert.InDelta(t, 12.0, section.SponsorProgress, 1e-9)

	assert.InDelta(t, 4.22, section.AverageROI, 1e-9)
	assert.InDelta(t, 8.2, section.BestChannelROI, 1e-9)
	assert.InDelta(t, 0.4, section.WorstChannelROI, 1e-9)

	assert.Equal(t, 14, section.StuckDealsCount)
	assert.InDelta(t, 480000, section.StuckDealsValue, 1e-9)
}
