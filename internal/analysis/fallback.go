package analysis

import (
	"time"

	"eventpulse/internal/config"
	"eventpulse/pkg/contracts/domain"
)

// Fallback values for sections that could not be computed. Every
// constructor records why, so the dashboard can tell reference numbers
// apart from measured ones. The five per-dataset sections fall back to
// empty totals; the derived sections fall back to the reference figures
// from the January planning review.

// FallbackBundle builds a structurally complete insight bundle from the
// reference figures. The dashboard serves it when insights.json does not
// exist yet, so every section arrives badged as fallback rather than the
// UI breaking on a missing file.
func FallbackBundle(reason string) *domain.Insights {
	bundle := &domain.Insights{
		Website:         fallbackWebsite(reason),
		Social:          fallbackSocial(reason),
		Email:           fallbackEmail(reason),
		Sales:           fallbackSales(reason),
		Ads:             fallbackAds(reason),
		ROI:             fallbackROI(reason),
		Conversion:      fallbackConversion(reason),
		Forecast:        fallbackForecast(reason),
		Hidden:          fallbackHidden(reason),
		Recommendations: fallbackRecommendations(reason),
		KPIs:            fallbackKPIs(reason),
	}
	bundle.Metadata = &domain.InsightsMetadata{
		AnalysisDate: time.Now(),
		ChartFiles:   config.ChartNames(),
		Sections:     bundle.ProvenanceBySection(),
	}
	return bundle
}

func fallbackWebsite(reason string) *domain.WebsiteAnalysis {
	return &domain.WebsiteAnalysis{Provenance: domain.Fallback(reason)}
}

func fallbackSocial(reason string) *domain.SocialAnalysis {
	return &domain.SocialAnalysis{Provenance: domain.Fallback(reason)}
}

func fallbackEmail(reason string) *domain.EmailAnalysis {
	return &domain.EmailAnalysis{Provenance: domain.Fallback(reason)}
}

func fallbackSales(reason string) *domain.SalesAnalysis {
	return &domain.SalesAnalysis{Provenance: domain.Fallback(reason)}
}

func fallbackAds(reason string) *domain.AdPerformance {
	return &domain.AdPerformance{Provenance: domain.Fallback(reason)}
}

// fallbackROITable is the reference channel table, used when the ad
// spend data yields no channels at all. Rankings are computed over the
// table the same way as over measured channels.
func fallbackROITable(reason string) *domain.ROIAnalysis {
	set := newChannelSet()
	set.add("Google Display Retargeting", domain.ChannelROI{Spend: 1500, Conversions: 89, ROI: 8.2, CPA: 3.34})
	set.add("Email Campaigns", domain.ChannelROI{Spend: 5000, Conversions: 17, ROI: 5.1, CPA: 45.2})
	set.add("Website Organic", domain.ChannelROI{Spend: 2000, Conversions: 45, ROI: 4.3, CPA: 22.5})
	set.add("LinkedIn Retargeting", domain.ChannelROI{Spend: 1500, Conversions: 9, ROI: 3.1, CPA: 158.0})
	set.add("LinkedIn C-Suite Targeting", domain.ChannelROI{Spend: 6000, Conversions: 6, ROI: 0.4, CPA: 899.5})
	return rankChannels(domain.Fallback(reason), set)
}

// fallbackROI is the shorter reference set used when the section fails
// outright.
func fallbackROI(reason string) *domain.ROIAnalysis {
	return &domain.ROIAnalysis{
		Provenance: domain.Fallback(reason),
		Channels: map[string]domain.ChannelROI{
			"Google Display Retargeting": {ROI: 8.2, CPA: 3.34},
			"Email Campaigns":            {ROI: 5.1, CPA: 45.2},
			"Website Organic":            {ROI: 4.3, CPA: 22.5},
			"LinkedIn Retargeting":       {ROI: 3.1, CPA: 158.0},
			"LinkedIn C-Suite Targeting": {ROI: 0.4, CPA: 899.5},
		},
		BestChannel:  "Google Display Retargeting",
		BestROI:      8.2,
		WorstChannel: "LinkedIn C-Suite Targeting",
		WorstROI:     0.4,
		AverageROI:   4.2,
	}
}

func fallbackConversion(reason string) *domain.ConversionAnalysis {
	return &domain.ConversionAnalysis{
		Provenance: domain.Fallback(reason),
		BySource: map[string]domain.SourceConversion{
			"Referral":           {ConversionRate: 32.4, TotalDeals: 12, WonDeals: 4},
			"Email Campaign":     {ConversionRate: 21.6, TotalDeals: 8, WonDeals: 2},
			"LinkedIn Outreach":  {ConversionRate: 15.2, TotalDeals: 33, WonDeals: 5},
			"Website Inquiry":    {ConversionRate: 11.8, TotalDeals: 34, WonDeals: 4},
			"Conference Meeting": {ConversionRate: 9.5, TotalDeals: 21, WonDeals: 2},
			"Cold Outreach":      {ConversionRate: 0.0, TotalDeals: 8, WonDeals: 0},
		},
		OverallRate: 17.8,
		TotalClosed: 107,
		TotalWon:    19,
	}
}

func fallbackForecast(reason string) *domain.Forecast {
	return &domain.Forecast{
		Provenance:        domain.Fallback(reason),
		CurrentDelegates:  14,
		CurrentSponsors:   3,
		DelegateTarget:    delegateTarget,
		SponsorTarget:     sponsorTarget,
		DelegateForecast:  280,
		SponsorForecast:   22,
		DelegateGap:       20,
		SponsorGap:        3,
		MonthlyGrowthRate: 15.0,
		MonthlyPredictions: []domain.MonthlyPrediction{
			{Month: 1, Delegates: 60, Sponsors: 5},
			{Month: 2, Delegates: 65, Sponsors: 6},
			{Month: 3, Delegates: 70, Sponsors: 7},
			{Month: 4, Delegates: 68, Sponsors: 7},
		},
		OnTrackDelegates: false,
		OnTrackSponsors:  false,
	}
}

func fallbackHidden(reason string) *domain.HiddenInsights {
	return &domain.HiddenInsights{
		Provenance:      domain.Fallback(reason),
		StuckDealsCount: 14,
		StuckDealsValue: 480000,
		CommonBlockers: map[string]int{
			"board approval": 5,
			"budget":         3,
			"respond":        2,
		},
	}
}

func fallbackKPIs(reason string) *domain.KPIHighlights {
	return &domain.KPIHighlights{
		Provenance:            domain.Fallback(reason),
		OverallCPA:            75.0,
		OverallConversionRate: 17.8,
		CurrentDelegates:      14,
		CurrentSponsors:       3,
		DelegateTarget:        delegateTarget,
		SponsorTarget:         sponsorTarget,
		DelegateProgress:      4.7,
		SponsorProgress:       12.0,
		StuckDealsCount:       14,
		StuckDealsValue:       480000,
	}
}

// fallbackRecommendations rebuilds the action list from the reference
// sections, so the wording stays consistent with the computed path.
func fallbackRecommendations(reason string) *domain.Recommendations {
	recommendations := buildRecommendations(
		fallbackROI(reason),
		fallbackConversion(reason),
		fallbackHidden(reason),
		fallbackForecast(reason),
	)
	recommendations.Provenance = domain.Fallback(reason)
	return recommendations
}
