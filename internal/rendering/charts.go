package rendering

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"eventpulse/internal/config"
	"eventpulse/pkg/contracts/domain"
)

// Canvas dimensions shared by the page template and the Chrome viewport.
const (
	chartWidth  = 960
	chartHeight = 540
)

// Bar and line colors. Channel bars pick theirs from the ROI grade.
const (
	colorPrimary = "#3b82c4"
	colorGood    = "#2f9e62"
	colorWarn    = "#e3a93c"
	colorBad     = "#cc4b3d"
	colorMuted   = "#8a93a6"
)

// Chart is one dashboard figure: the fixed PNG artifact name, the name of
// the HTML page that draws it, and the page source itself. The page is
// self contained, everything it needs is inline.
type Chart struct {
	PNG    string
	HTML   string
	Title  string
	Source []byte
}

// chartPayload feeds the drawing script. Kind selects the renderer:
// "hbars" for horizontal bars, "bars" for grouped vertical bars, "lines"
// for line series over the same labels.
type chartPayload struct {
	Kind     string        `json:"kind"`
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle,omitempty"`
	Unit     string        `json:"unit,omitempty"`
	Labels   []string      `json:"labels"`
	Series   []chartSeries `json:"series"`
}

type chartSeries struct {
	Name   string    `json:"name,omitempty"`
	Color  string    `json:"color,omitempty"`
	Colors []string  `json:"colors,omitempty"`
	Values []float64 `json:"values"`
}

// BuildCharts derives the five report figures from an insight bundle.
// Charts come back in the fixed artifact order. A nil or empty section
// still yields its chart, the page just paints a "no data" placeholder.
func BuildCharts(bundle *domain.Insights) ([]Chart, error) {
	payloads := []struct {
		png     string
		payload chartPayload
	}{
		{config.ChartROIByChannel, roiPayload(bundle.ROI)},
		{config.ChartConversion, conversionPayload(bundle.Conversion)},
		{config.ChartTargetProgress, targetsPayload(bundle.Forecast)},
		{config.ChartStuckDeals, stuckDealsPayload(bundle.Hidden)},
		{config.ChartMonthlyForecast, forecastPayload(bundle.Forecast)},
	}

	charts := make([]Chart, 0, len(payloads))
	for _, p := range payloads {
		source, err := renderPage(p.payload)
		if err != nil {
			return nil, fmt.Errorf("failed to build chart %s: %w", p.png, err)
		}
		charts = append(charts, Chart{
			PNG:    p.png,
			HTML:   strings.TrimSuffix(p.png, ".png") + ".html",
			Title:  p.payload.Title,
			Source: source,
		})
	}
	return charts, nil
}

// roiPayload ranks channels by ROI, best first. Bars are colored by the
// same grade the dashboard badges use.
func roiPayload(roi *domain.ROIAnalysis) chartPayload {
	payload := chartPayload{
		Kind:  "hbars",
		Title: "Marketing ROI by Channel",
		Unit:  "x",
	}
	if roi == nil || len(roi.Channels) == 0 {
		return payload
	}

	names := make([]string, 0, len(roi.Channels))
	for name := range roi.Channels {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := roi.Channels[names[i]].ROI, roi.Channels[names[j]].ROI
		if ri != rj {
			return ri > rj
		}
		return names[i] < names[j]
	})

	series := chartSeries{Name: "ROI"}
	for _, name := range names {
		channel := roi.Channels[name]
		series.Values = append(series.Values, channel.ROI)
		series.Colors = append(series.Colors, statusColor(domain.ChannelStatusFor(channel.ROI)))
	}

	payload.Subtitle = fmt.Sprintf("Average %.1fx across %d channels, best %s", roi.AverageROI, len(names), roi.BestChannel)
	payload.Labels = names
	payload.Series = []chartSeries{series}
	return payload
}

func statusColor(status domain.ChannelStatus) string {
	switch status {
	case domain.ChannelHighPerformer:
		return colorGood
	case domain.ChannelNeedsReview:
		return colorWarn
	default:
		return colorBad
	}
}

// conversionPayload plots won-over-closed percentage per lead source,
// strongest source first.
func conversionPayload(conversion *domain.ConversionAnalysis) chartPayload {
	payload := chartPayload{
		Kind:  "hbars",
		Title: "Conversion Rate by Lead Source",
		Unit:  "%",
	}
	if conversion == nil || len(conversion.BySource) == 0 {
		return payload
	}

	names := make([]string, 0, len(conversion.BySource))
	for name := range conversion.BySource {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := conversion.BySource[names[i]].ConversionRate, conversion.BySource[names[j]].ConversionRate
		if ri != rj {
			return ri > rj
		}
		return names[i] < names[j]
	})

	series := chartSeries{Name: "Conversion rate", Color: colorPrimary}
	for _, name := range names {
		series.Values = append(series.Values, conversion.BySource[name].ConversionRate)
	}

	payload.Subtitle = fmt.Sprintf("Overall %.1f%%, %d won of %d closed", conversion.OverallRate, conversion.TotalWon, conversion.TotalClosed)
	payload.Labels = names
	payload.Series = []chartSeries{series}
	return payload
}

// targetsPayload shows current, forecast and target counts side by side
// for delegates and sponsors.
func targetsPayload(forecast *domain.Forecast) chartPayload {
	payload := chartPayload{
		Kind:  "bars",
		Title: "Progress Toward Event Targets",
	}
	if forecast == nil {
		return payload
	}

	payload.Subtitle = fmt.Sprintf("Forecast compounds %.1f%% monthly growth over four months", forecast.MonthlyGrowthRate)
	payload.Labels = []string{"Delegates", "Sponsors"}
	payload.Series = []chartSeries{
		{Name: "Current", Color: colorPrimary, Values: []float64{
			float64(forecast.CurrentDelegates), float64(forecast.CurrentSponsors)}},
		{Name: "Forecast", Color: colorWarn, Values: []float64{
			forecast.DelegateForecast, forecast.SponsorForecast}},
		{Name: "Target", Color: colorMuted, Values: []float64{
			float64(forecast.DelegateTarget), float64(forecast.SponsorTarget)}},
	}
	return payload
}

// stuckDealsPayload plots how often each blocker phrase shows up in the
// notes of deals stuck past thirty days.
func stuckDealsPayload(hidden *domain.HiddenInsights) chartPayload {
	payload := chartPayload{
		Kind:  "hbars",
		Title: "Stuck Deal Blockers",
	}
	if hidden == nil || len(hidden.CommonBlockers) == 0 {
		return payload
	}

	names := make([]string, 0, len(hidden.CommonBlockers))
	for name := range hidden.CommonBlockers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := hidden.CommonBlockers[names[i]], hidden.CommonBlockers[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})

	series := chartSeries{Name: "Mentions", Color: colorBad}
	for _, name := range names {
		series.Values = append(series.Values, float64(hidden.CommonBlockers[name]))
	}

	payload.Subtitle = fmt.Sprintf("%d deals worth €%.0f stuck more than 30 days", hidden.StuckDealsCount, hidden.StuckDealsValue)
	payload.Labels = names
	payload.Series = []chartSeries{series}
	return payload
}

// forecastPayload plots the projected delegate and sponsor counts month
// by month.
func forecastPayload(forecast *domain.Forecast) chartPayload {
	payload := chartPayload{
		Kind:  "lines",
		Title: "Monthly Registration Forecast",
	}
	if forecast == nil || len(forecast.MonthlyPredictions) == 0 {
		return payload
	}

	delegates := chartSeries{Name: "Delegates", Color: colorPrimary}
	sponsors := chartSeries{Name: "Sponsors", Color: colorGood}
	for _, prediction := range forecast.MonthlyPredictions {
		payload.Labels = append(payload.Labels, fmt.Sprintf("Month %d", prediction.Month))
		delegates.Values = append(delegates.Values, float64(prediction.Delegates))
		sponsors.Values = append(sponsors.Values, float64(prediction.Sponsors))
	}

	payload.Subtitle = fmt.Sprintf("Compounding %.1f%% monthly growth toward the June event", forecast.MonthlyGrowthRate)
	payload.Series = []chartSeries{delegates, sponsors}
	return payload
}

func renderPage(payload chartPayload) ([]byte, error) {
	spec, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chart payload: %w", err)
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, struct {
		Title  string
		Width  int
		Height int
		Spec   template.JS
	}{
		Title:  payload.Title,
		Width:  chartWidth,
		Height: chartHeight,
		Spec:   template.JS(spec),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute chart template: %w", err)
	}
	return buf.Bytes(), nil
}
