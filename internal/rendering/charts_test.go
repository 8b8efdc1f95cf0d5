package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventpulse/internal/config"
	"eventpulse/pkg/contracts/domain"
)

func TestBuildCharts_NamesAndOrder(t *testing.T) {
	charts, err := BuildCharts(&domain.Insights{})
	require.NoError(t, err)
	require.Len(t, charts, 5)

	var pngs []string
	for _, chart := range charts {
		pngs = append(pngs, chart.PNG)
	}
	assert.Equal(t, config.ChartNames(), pngs)

	assert.Equal(t, "roi_by_channel.html", charts[0].HTML)
	assert.Equal(t, "monthly_forecast.html", charts[4].HTML)

	for _, chart := range charts {
		body := string(chart.Source)
		assert.Contains(t, body, `<canvas id="chart" width="960" height="540">`, chart.PNG)
		assert.Contains(t, body, "const spec = {", chart.PNG)
	}
}

func TestROIPayload(t *testing.T) {
	roi := &domain.ROIAnalysis{
		Provenance: domain.Computed(),
		Channels: map[string]domain.ChannelROI{
			"Email Campaigns":            {ROI: 1.5},
			"Google Display Retargeting": {ROI: 8.2},
			"LinkedIn C-Suite Targeting": {ROI: 0.0},
		},
		BestChannel: "Google Display Retargeting",
		AverageROI:  3.2,
	}

	payload := roiPayload(roi)

	assert.Equal(t, "hbars", payload.Kind)
	assert.Equal(t, "x", payload.Unit)
	assert.Equal(t, []string{
		"Google Display Retargeting",
		"Email Campaigns",
		"LinkedIn C-Suite Targeting",
	}, payload.Labels)
	require.Len(t, payload.Series, 1)
	assert.Equal(t, []float64{8.2, 1.5, 0.0}, payload.Series[0].Values)
	assert.Equal(t, []string{colorGood, colorWarn, colorBad}, payload.Series[0].Colors)
	assert.Equal(t, "Average 3.2x across 3 channels, best Google Display Retargeting", payload.Subtitle)
}

func TestROIPayload_TieSortsByName(t *testing.T) {
	roi := &domain.ROIAnalysis{
		Channels: map[string]domain.ChannelROI{
			"Zeta":  {ROI: 2.0},
			"Alpha": {ROI: 2.0},
		},
	}

	payload := roiPayload(roi)
	assert.Equal(t, []string{"Alpha", "Zeta"}, payload.Labels)
}

func TestROIPayload_Empty(t *testing.T) {
	assert.Empty(t, roiPayload(nil).Labels)
	assert.Empty(t, roiPayload(&domain.ROIAnalysis{}).Labels)
}

func TestConversionPayload(t *testing.T) {
	conversion := &domain.ConversionAnalysis{
		Provenance: domain.Computed(),
		BySource: map[string]domain.SourceConversion{
			"Referral":      {ConversionRate: 32.4},
			"Cold Outreach": {ConversionRate: 0.0},
			"Email":         {ConversionRate: 21.6},
		},
		OverallRate: 17.8,
		TotalClosed: 107,
		TotalWon:    19,
	}

	payload := conversionPayload(conversion)

	assert.Equal(t, "hbars", payload.Kind)
	assert.Equal(t, "%", payload.Unit)
	assert.Equal(t, []string{"Referral", "Email", "Cold Outreach"}, payload.Labels)
	require.Len(t, payload.Series, 1)
	assert.Equal(t, []float64{32.4, 21.6, 0.0}, payload.Series[0].Values)
	assert.Equal(t, "Overall 17.8%, 19 won of 107 closed", payload.Subtitle)
}

func TestTargetsPayload(t *testing.T) {
	forecast := &domain.Forecast{
		CurrentDelegates:  14,
		CurrentSponsors:   3,
		DelegateTarget:    300,
		SponsorTarget:     25,
		DelegateForecast:  24,
		SponsorForecast:   5,
		MonthlyGrowthRate: 15.0,
	}

	payload := targetsPayload(forecast)

	assert.Equal(t, "bars", payload.Kind)
	assert.Equal(t, []string{"Delegates", "Sponsors"}, payload.Labels)
	require.Len(t, payload.Series, 3)
	assert.Equal(t, "Current", payload.Series[0].Name)
	assert.Equal(t, []float64{14, 3}, payload.Series[0].Values)
	assert.Equal(t, "Forecast", payload.Series[1].Name)
	assert.Equal(t, []float64{24, 5}, payload.Series[1].Values)
	assert.Equal(t, "Target", payload.Series[2].Name)
	assert.Equal(t, []float64{300, 25}, payload.Series[2].Values)
	assert.Equal(t, "Forecast compounds 15.0% monthly growth over four months", payload.Subtitle)
}

func TestStuckDealsPayload(t *testing.T) {
	hidden := &domain.HiddenInsights{
		StuckDealsCount: 14,
		StuckDealsValue: 480000,
		CommonBlockers: map[string]int{
			"budget":         3,
			"board approval": 5,
			"respond":        2,
		},
	}

	payload := stuckDealsPayload(hidden)

	assert.Equal(t, "hbars", payload.Kind)
	assert.Equal(t, []string{"board approval", "budget", "respond"}, payload.Labels)
	require.Len(t, payload.Series, 1)
	assert.Equal(t, []float64{5, 3, 2}, payload.Series[0].Values)
	assert.Equal(t, "14 deals worth €480000 stuck more than 30 days", payload.Subtitle)
}

func TestStuckDealsPayload_CountTieSortsByName(t *testing.T) {
	hidden := &domain.HiddenInsights{
		CommonBlockers: map[string]int{"respond": 2, "budget": 2},
	}

	payload := stuckDealsPayload(hidden)
	assert.Equal(t, []string{"budget", "respond"}, payload.Labels)
}

func TestForecastPayload(t *testing.T) {
	forecast := &domain.Forecast{
		MonthlyGrowthRate: 15.0,
		MonthlyPredictions: []domain.MonthlyPrediction{
			{Month: 1, Delegates: 16, Sponsors: 3},
			{Month: 2, Delegates: 18, Sponsors: 4},
			{Month: 3, Delegates: 21, Sponsors: 4},
			{Month: 4, Delegates: 24, Sponsors: 5},
		},
	}

	payload := forecastPayload(forecast)

	assert.Equal(t, "lines", payload.Kind)
	assert.Equal(t, []string{"Month 1", "Month 2", "Month 3", "Month 4"}, payload.Labels)
	require.Len(t, payload.Series, 2)
	assert.Equal(t, "Delegates", payload.Series[0].Name)
	assert.Equal(t, []float64{16, 18, 21, 24}, payload.Series[0].Values)
	assert.Equal(t, "Sponsors", payload.Series[1].Name)
	assert.Equal(t, []float64{3, 4, 4, 5}, payload.Series[1].Values)
	assert.Equal(t, "Compounding 15.0% monthly growth toward the June event", payload.Subtitle)
}

func TestForecastPayload_NoPredictions(t *testing.T) {
	assert.Empty(t, forecastPayload(nil).Labels)
	assert.Empty(t, forecastPayload(&domain.Forecast{}).Labels)
}

func TestRenderPage_EscapesTitle(t *testing.T) {
	source, err := renderPage(chartPayload{
		Kind:   "hbars",
		Title:  "Spend <Q1 & Q2>",
		Labels: []string{"a"},
		Series: []chartSeries{{Values: []float64{1}}},
	})
	require.NoError(t, err)

	body := string(source)
	assert.Contains(t, body, "<title>Spend &lt;Q1 &amp; Q2&gt;</title>")
	assert.NotContains(t, body, "<Q1")
	assert.Contains(t, body, `"kind":"hbars"`)
}
