package cleaning

import (
	"math"
	"sort"
	"strings"
	"time"

	"eventpulse/pkg/contracts/domain"
)

// Recruitment targets for the June 2026 summit.
const (
	DelegateTarget = 300
	SponsorTarget  = 25
)

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// ComputeKPISummary derives the kpi_summary.json figures from the
// cleaned sales pipeline and ad spend datasets.
func ComputeKPISummary(sales []domain.SalesPipelineRow, ads []domain.AdSpendRow, now time.Time) *domain.KPISummary {
	closedWon, closedLost := 0, 0
	totalRevenue, totalPipeline := 0.0, 0.0
	currentDelegates, currentSponsors := 0, 0

	for _, deal := range sales {
		totalPipeline += deal.DealValue
		switch deal.DealStage {
		case domain.StageClosedWon:
			closedWon++
			totalRevenue += deal.DealValue
			if strings.Contains(deal.TicketType, "Delegate") {
				currentDelegates++
			}
			if strings.Contains(deal.TicketType, "Sponsor") {
				currentSponsors++
			}
		case domain.StageClosedLost:
			closedLost++
		}
	}

	conversionRate := 0.0
	if closed := closedWon + closedLost; closed > 0 {
		conversionRate = float64(closedWon) / float64(closed) * 100
	}

	totalAdSpend, totalAdConversions := 0.0, 0.0
	for _, row := range ads {
		totalAdSpend += row.Spend
		totalAdConversions += row.Conversions
	}
	overallCPA := 0.0
	if totalAdConversions > 0 {
		overallCPA = totalAdSpend / totalAdConversions
	}

	return &domain.KPISummary{
		TotalLeads:       len(sales),
		ConversionRate:   round1(conversionRate),
		TotalRevenue:     round2(totalRevenue),
		TotalPipeline:    round2(totalPipeline),
		TotalAdSpend:     round2(totalAdSpend),
		OverallCPA:       round2(overallCPA),
		CurrentDelegates: currentDelegates,
		CurrentSponsors:  currentSponsors,
		DelegateTarget:   DelegateTarget,
		SponsorTarget:    SponsorTarget,
		DelegateProgress: round1(float64(currentDelegates) / DelegateTarget * 100),
		SponsorProgress:  round1(float64(currentSponsors) / SponsorTarget * 100),
		MonthlyGrowth:    round1(monthlyLeadGrowth(sales)),
		DataCleanedOn:    now.Format("2006-01-02 15:04:05"),
	}
}

// monthlyLeadGrowth returns the mean month-over-month percentage change
// in new-lead counts, grouped by first contact month. Months without
// leads do not appear in the series; fewer than two observed months mean
// no growth signal.
func monthlyLeadGrowth(sales []domain.SalesPipelineRow) float64 {
	counts := make(map[string]int)
	for _, deal := range sales {
		if deal.FirstContactDate.IsZero() {
			continue
		}
		counts[deal.FirstContactDate.Format("2006-01")]++
	}
	if len(counts) < 2 {
		return 0
	}

	months := make([]string, 0, len(counts))
	for month := range counts {
		months = append(months, month)
	}
	sort.Strings(months)

	sum, n := 0.0, 0
	for i := 1; i < len(months); i++ {
		prev := counts[months[i-1]]
		if prev == 0 {
			continue
		}
		sum += float64(counts[months[i]]-prev) / float64(prev)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) * 100
}
