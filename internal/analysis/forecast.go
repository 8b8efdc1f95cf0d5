package analysis

import (
	"errors"
	"math"
	"sort"
	"strings"

	"eventpulse/pkg/contracts/domain"
)

// Registration targets for the June 2026 event.
const (
	delegateTarget = 300
	sponsorTarget  = 25
)

// monthsRemaining is the projection horizon from the analysis window to
// the event date.
const monthsRemaining = 4

const (
	defaultGrowthFactor = 1.15
	maxMonthlyGrowth    = 0.3
)

// analyzeForecast projects delegate and sponsor counts at the event date
// by compounding the observed month-over-month growth in new pipeline
// contacts. Growth is clamped to 30% per month, and falls back to 15%
// when history is flat, shrinking, or too short to trend.
func analyzeForecast(t *Table) (*domain.Forecast, error) {
	if t == nil {
		return nil, errors.New("sales pipeline dataset unavailable")
	}

	typeCol, hasType := t.Lookup("ticket type", salesTicketTypeKeys...)
	stageCol, hasStage := t.Lookup("stage", salesStageKeys...)
	dateCol, hasDate := t.Lookup("contact date", salesContactDateKeys...)
	if !hasType || !hasStage || !hasDate {
		return nil, errors.New("ticket type, stage, or contact date column not found in sales pipeline")
	}

	currentDelegates, currentSponsors := 0, 0
	monthlyCounts := make(map[string]int)
	for row := range t.Rows {
		if date, ok := t.Date(row, dateCol); ok {
			monthlyCounts[date.Format("2006-01")]++
		}
		if t.Cell(row, stageCol) != domain.StageClosedWon {
			continue
		}
		ticketType := strings.ToLower(t.Cell(row, typeCol))
		if strings.Contains(ticketType, "delegate") {
			currentDelegates++
		}
		if strings.Contains(ticketType, "sponsor") {
			currentSponsors++
		}
	}

	growthFactor := growthFactorFromHistory(monthlyCounts)

	delegateForecast := float64(currentDelegates) * math.Pow(growthFactor, monthsRemaining)
	sponsorForecast := float64(currentSponsors) * math.Pow(growthFactor, monthsRemaining)

	predictions := make([]domain.MonthlyPrediction, 0, monthsRemaining)
	for month := 1; month <= monthsRemaining; month++ {
		compounded := math.Pow(growthFactor, float64(month))
		predictions = append(predictions, domain.MonthlyPrediction{
			Month:     month,
			Delegates: int(float64(currentDelegates) * compounded),
			Sponsors:  int(float64(currentSponsors) * compounded),
		})
	}

	return &domain.Forecast{
		Provenance:         domain.Computed(),
		CurrentDelegates:   currentDelegates,
		CurrentSponsors:    currentSponsors,
		DelegateTarget:     delegateTarget,
		SponsorTarget:      sponsorTarget,
		DelegateForecast:   math.Round(delegateForecast),
		SponsorForecast:    math.Round(sponsorForecast),
		DelegateGap:        math.Max(0, delegateTarget-delegateForecast),
		SponsorGap:         math.Max(0, sponsorTarget-sponsorForecast),
		MonthlyGrowthRate:  round1((growthFactor - 1) * 100),
		MonthlyPredictions: predictions,
		OnTrackDelegates:   delegateForecast >= delegateTarget*0.9,
		OnTrackSponsors:    sponsorForecast >= sponsorTarget*0.9,
	}, nil
}

// growthFactorFromHistory averages the month-over-month change in
// contact volume across the months present in the data. Fewer than two
// months, or a non-positive average, yields the default factor.
func growthFactorFromHistory(monthlyCounts map[string]int) float64 {
	if len(monthlyCounts) < 2 {
		return defaultGrowthFactor
	}
	months := make([]string, 0, len(monthlyCounts))
	for month := range monthlyCounts {
		months = append(months, month)
	}
	sort.Strings(months)

	total := 0.0
	for i := 1; i < len(months); i++ {
		previous := float64(monthlyCounts[months[i-1]])
		current := float64(monthlyCounts[months[i]])
		total += (current - previous) / previous
	}
	growthRate := total / float64(len(months)-1)
	if growthRate <= 0 {
		return defaultGrowthFactor
	}
	return 1 + math.Min(growthRate, maxMonthlyGrowth)
}
