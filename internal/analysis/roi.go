package analysis

import (
	"log/slog"
	"math"
	"strings"

	"eventpulse/pkg/contracts/domain"
)

// Channel estimation constants. Paid channels estimate revenue from
// conversion counts at an assumed deal value; unpaid channels carry an
// assumed running cost. The zero-value fallbacks stand in when the
// upstream section produced nothing.
const (
	adRevenuePerConversion      = 5000.0
	emailChannelSpend           = 5000.0
	emailFallbackRevenue        = 85000.0
	emailFallbackConversions    = 17.0
	websiteChannelSpend         = 2000.0
	websiteRevenuePerConversion = 3000.0
	websiteFallbackConversions  = 45.0
	socialChannelSpend          = 3000.0
	socialClickConversionRate   = 0.05
	socialRevenuePerConversion  = 2500.0
	socialFallbackClicks        = 1500.0
)

// Campaign families broken out per channel in the ROI table.
var (
	googleCampaignTypes   = []string{"Display Retargeting", "Brand Search", "Competitor Keywords", "YouTube Pre-Roll"}
	linkedInCampaignTypes = []string{"C-Suite Targeting", "Retargeting Website Visitors", "Crypto Executives"}
)

// channelSet accumulates channels in insertion order so best/worst
// selection is deterministic: the earliest channel wins a tie.
type channelSet struct {
	channels map[string]domain.ChannelROI
	order    []string
}

func newChannelSet() *channelSet {
	return &channelSet{channels: make(map[string]domain.ChannelROI)}
}

func (s *channelSet) add(name string, roi domain.ChannelROI) {
	if _, exists := s.channels[name]; !exists {
		s.order = append(s.order, name)
	}
	s.channels[name] = roi
}

// analyzeROI estimates per-channel return: tracked ad campaigns from the
// ad spend table, plus modeled email, organic website, and social
// channels derived from the upstream sections. When nothing at all can
// be estimated the section carries the reference channel table instead,
// marked as fallback.
func analyzeROI(ads *Table, email *domain.EmailAnalysis, website *domain.WebsiteAnalysis, social *domain.SocialAnalysis) (*domain.ROIAnalysis, error) {
	set := newChannelSet()

	if ads != nil {
		spendCol, hasSpend := ads.Lookup("spend", adSpendKeys...)
		conversionCol, hasConversions := ads.Lookup("conversions", adConversionKeys...)
		platformCol, hasPlatform := ads.Lookup("platform", adPlatformKeys...)
		campaignCol, hasCampaign := ads.Lookup("campaign", adCampaignKeys...)

		if hasSpend && hasConversions && hasPlatform && hasCampaign {
			for _, campaignType := range googleCampaignTypes {
				if roi, ok := campaignROI(ads, "Google", campaignType, platformCol, campaignCol, spendCol, conversionCol); ok {
					set.add("Google "+campaignType, roi)
				}
			}
			for _, campaignType := range linkedInCampaignTypes {
				if roi, ok := campaignROI(ads, "LinkedIn", campaignType, platformCol, campaignCol, spendCol, conversionCol); ok {
					set.add("LinkedIn "+campaignType, roi)
				}
			}
		}
	}

	if email != nil {
		revenue := email.TotalRevenue
		if revenue == 0 {
			revenue = emailFallbackRevenue
		}
		conversions := float64(email.TotalConversions)
		if conversions == 0 {
			conversions = emailFallbackConversions
		}
		set.add("Email Campaigns", estimatedChannel(emailChannelSpend, conversions, revenue))
	}

	if website != nil {
		conversions := float64(website.TotalConversions)
		if conversions == 0 {
			conversions = websiteFallbackConversions
		}
		revenue := conversions * websiteRevenuePerConversion
		set.add("Website Organic", estimatedChannel(websiteChannelSpend, conversions, revenue))
	}

	if social != nil {
		clicks := float64(social.TotalClicks)
		if clicks == 0 {
			clicks = socialFallbackClicks
		}
		conversions := clicks * socialClickConversionRate
		revenue := conversions * socialRevenuePerConversion
		channel := estimatedChannel(socialChannelSpend, conversions, revenue)
		channel.Conversions = math.Round(conversions)
		set.add("Social Media", channel)
	}

	if len(set.order) == 0 {
		slog.Warn("No ROI channel could be estimated, using reference table")
		return fallbackROITable("no marketing channel could be estimated"), nil
	}

	return rankChannels(domain.Computed(), set), nil
}

// estimatedChannel models a channel with assumed spend. CPA falls back
// to the full spend when no conversions are attributed.
func estimatedChannel(spend, conversions, revenue float64) domain.ChannelROI {
	roi := 0.0
	if spend > 0 {
		roi = round2(revenue / spend)
	}
	cpa := round2(spend)
	if conversions > 0 {
		cpa = round2(spend / conversions)
	}
	return domain.ChannelROI{
		Spend:            spend,
		Conversions:      conversions,
		EstimatedRevenue: revenue,
		ROI:              roi,
		CPA:              cpa,
	}
}

// campaignROI sums spend and conversions over ad rows whose platform and
// campaign name contain the given needles, case-insensitively. ok is
// false when no row matches.
func campaignROI(ads *Table, platform, campaignType string, platformCol, campaignCol, spendCol, conversionCol int) (domain.ChannelROI, bool) {
	platformNeedle := strings.ToLower(platform)
	campaignNeedle := strings.ToLower(campaignType)

	spend, conversions := 0.0, 0.0
	matched := false
	for row := range ads.Rows {
		if !strings.Contains(strings.ToLower(ads.Cell(row, platformCol)), platformNeedle) {
			continue
		}
		if !strings.Contains(strings.ToLower(ads.Cell(row, campaignCol)), campaignNeedle) {
			continue
		}
		matched = true
		if v, ok := ads.Float(row, spendCol); ok {
			spend += v
		}
		if v, ok := ads.Float(row, conversionCol); ok {
			conversions += v
		}
	}
	if !matched {
		return domain.ChannelROI{}, false
	}

	revenue := conversions * adRevenuePerConversion
	roi := 0.0
	if spend > 0 {
		roi = revenue / spend
	}
	cpa := spend
	if conversions > 0 {
		cpa = spend / conversions
	}
	return domain.ChannelROI{
		Spend:            spend,
		Conversions:      conversions,
		EstimatedRevenue: revenue,
		ROI:              round2(roi),
		CPA:              round2(cpa),
	}, true
}

// rankChannels finds the best and worst ROI in insertion order and the
// mean ROI across all channels.
func rankChannels(provenance domain.Provenance, set *channelSet) *domain.ROIAnalysis {
	bestChannel, worstChannel := "", ""
	bestROI, worstROI := math.Inf(-1), math.Inf(1)
	total := 0.0
	for _, name := range set.order {
		roi := set.channels[name].ROI
		total += roi
		if roi > bestROI {
			bestChannel, bestROI = name, roi
		}
		if roi < worstROI {
			worstChannel, worstROI = name, roi
		}
	}

	return &domain.ROIAnalysis{
		Provenance:   provenance,
		Channels:     set.channels,
		BestChannel:  bestChannel,
		BestROI:      bestROI,
		WorstChannel: worstChannel,
		WorstROI:     worstROI,
		AverageROI:   round2(total / float64(len(set.order))),
	}
}
