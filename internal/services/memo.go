package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"eventpulse/internal/config"
	"eventpulse/pkg/contracts/domain"
)

// MemoView is the executive memo the dashboard offers as a download. It
// is assembled from the insight bundle on every request, so it always
// reflects the latest run. Provenance is fallback when any contributing
// section carries reference values.
type MemoView struct {
	domain.Provenance
	Subject     string   `json:"subject"`
	Date        string   `json:"date"`
	Headline    []string `json:"headline"`
	BiggestWin  string   `json:"biggest_win"`
	BiggestRisk string   `json:"biggest_risk"`
	Asks        []string `json:"asks"`
	Body        string   `json:"body"`
}

// Memo builds the executive memo from the current bundle.
func (s *InsightService) Memo(ctx context.Context) *MemoView {
	return buildMemo(s.loadBundle(ctx), s.event, time.Now())
}

func buildMemo(bundle *domain.Insights, event config.EventConfig, now time.Time) *MemoView {
	memo := &MemoView{
		Provenance:  memoProvenance(bundle),
		Subject:     fmt.Sprintf("%s: actions required to hit targets", event.Name),
		Date:        now.Format("2006-01-02"),
		Headline:    memoHeadline(bundle),
		BiggestWin:  memoBiggestWin(bundle.ROI),
		BiggestRisk: memoBiggestRisk(bundle.Hidden, bundle.ROI),
		Asks:        memoAsks(bundle.Recommendations),
	}
	memo.Body = memoBody(memo)
	return memo
}

// memoProvenance marks the memo fallback when any section it draws on
// is fallback, naming them so the reader knows which numbers are
// reference values.
func memoProvenance(bundle *domain.Insights) domain.Provenance {
	contributors := map[string]domain.Provenance{
		domain.SectionKPIs:            bundle.KPIs.Provenance,
		domain.SectionROI:             bundle.ROI.Provenance,
		domain.SectionForecast:        bundle.Forecast.Provenance,
		domain.SectionHidden:          bundle.Hidden.Provenance,
		domain.SectionRecommendations: bundle.Recommendations.Provenance,
	}

	var fallbacks []string
	for name, p := range contributors {
		if p.IsFallback() {
			fallbacks = append(fallbacks, name)
		}
	}
	if len(fallbacks) == 0 {
		return domain.Computed()
	}
	return domain.Fallback(fmt.Sprintf("%d of %d contributing sections carry reference values", len(fallbacks), len(contributors)))
}

func memoHeadline(bundle *domain.Insights) []string {
	kpis := bundle.KPIs
	forecast := bundle.Forecast

	lines := []string{
		fmt.Sprintf("Delegates: %d of %d (%.1f%% of target)",
			kpis.CurrentDelegates, kpis.DelegateTarget, kpis.DelegateProgress),
		fmt.Sprintf("Sponsors: %d of %d (%.1f%% of target)",
			kpis.CurrentSponsors, kpis.SponsorTarget, kpis.SponsorProgress),
		fmt.Sprintf("Forecast at current growth: %.0f delegates, %.0f sponsors",
			forecast.DelegateForecast, forecast.SponsorForecast),
		fmt.Sprintf("Overall conversion rate: %.1f%%", kpis.OverallConversionRate),
	}
	if kpis.TotalMarketingSpend > 0 {
		lines = append(lines, fmt.Sprintf("Marketing spend to date: €%s at €%.2f overall CPA",
			euroAmount(kpis.TotalMarketingSpend), kpis.OverallCPA))
	}
	return lines
}

func memoBiggestWin(roi *domain.ROIAnalysis) string {
	if roi.BestChannel == "" {
		return "No channel has produced measurable returns yet."
	}
	cpa := roi.Channels[roi.BestChannel].CPA
	return fmt.Sprintf("%s is the strongest channel at %.1fx ROI with a €%.2f CPA.",
		roi.BestChannel, roi.BestROI, cpa)
}

func memoBiggestRisk(hidden *domain.HiddenInsights, roi *domain.ROIAnalysis) string {
	if hidden.StuckDealsCount > 0 {
		return fmt.Sprintf("%d deals worth €%s have sat in late stages for more than 30 days.",
			hidden.StuckDealsCount, euroAmount(hidden.StuckDealsValue))
	}
	if roi.WorstChannel != "" {
		return fmt.Sprintf("%s is returning %.1fx ROI and is dragging the blended CPA up.",
			roi.WorstChannel, roi.WorstROI)
	}
	return "No risk signals in the current data."
}

// memoAsks takes the three most urgent recommendation titles. The
// recommendation list arrives most urgent first.
func memoAsks(recommendations *domain.Recommendations) []string {
	asks := make([]string, 0, 3)
	for _, item := range recommendations.Items {
		asks = append(asks, item.Title)
		if len(asks) == 3 {
			break
		}
	}
	return asks
}

func memoBody(memo *MemoView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "To: Chief Executive\n")
	fmt.Fprintf(&b, "From: EventPulse Marketing Analytics\n")
	fmt.Fprintf(&b, "Subject: %s\n", memo.Subject)
	fmt.Fprintf(&b, "Date: %s\n\n", memo.Date)

	b.WriteString("Where we stand:\n")
	for _, line := range memo.Headline {
		fmt.Fprintf(&b, "  - %s\n", line)
	}

	fmt.Fprintf(&b, "\nBiggest win:\n  %s\n", memo.BiggestWin)
	fmt.Fprintf(&b, "\nBiggest risk:\n  %s\n", memo.BiggestRisk)

	b.WriteString("\nAsks for this week:\n")
	for i, ask := range memo.Asks {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, ask)
	}

	if memo.IsFallback() {
		fmt.Fprintf(&b, "\nNote: %s. Run the pipeline against the latest workbook before circulating.\n", memo.Reason)
	}
	return b.String()
}

// euroAmount renders a money figure with no decimals and thousands
// separators (480000 -> "480,000").
func euroAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if negative {
		s = "-" + s
	}
	return s
}
