package analysis

import (
	"errors"
	"sort"

	"eventpulse/pkg/contracts/domain"
)

// Column aliases for the ad spend dataset.
var (
	adSpendKeys      = []string{"spend", "cost"}
	adConversionKeys = []string{"conversion", "conv"}
	adImpressionKeys = []string{"impression", "imp"}
	adClickKeys      = []string{"click", "ctr"}
	adPlatformKeys   = []string{"platform", "network"}
	adCampaignKeys   = []string{"campaign", "name"}
)

// analyzeAds totals paid media per platform with cost per acquisition and
// cost per click, and names the platform with the lowest CPA. Platforms
// whose CPA cannot be computed (no conversions) are not eligible for
// best-platform; CPA ties break toward the alphabetically first platform.
func analyzeAds(t *Table) (*domain.AdPerformance, error) {
	if t == nil {
		return nil, errors.New("ad spend dataset unavailable")
	}

	section := &domain.AdPerformance{Provenance: domain.Computed()}

	spendCol, hasSpend := t.Lookup("spend", adSpendKeys...)
	conversionCol, hasConversions := t.Lookup("conversions", adConversionKeys...)
	impressionCol, hasImpressions := t.Lookup("impressions", adImpressionKeys...)
	clickCol, hasClicks := t.Lookup("clicks", adClickKeys...)
	platformCol, hasPlatform := t.Lookup("platform", adPlatformKeys...)

	if hasSpend {
		section.TotalSpend = t.Sum(spendCol)
	}
	if hasConversions {
		section.TotalConversions = int(t.Sum(conversionCol))
	}

	if hasPlatform && hasSpend && hasConversions {
		byPlatform := make(map[string]domain.PlatformSpend)
		for row := range t.Rows {
			platform := t.Cell(row, platformCol)
			if platform == "" {
				continue
			}
			entry := byPlatform[platform]
			if v, ok := t.Float(row, spendCol); ok {
				entry.Spend += v
			}
			if v, ok := t.Float(row, conversionCol); ok {
				entry.Conversions += v
			}
			if hasImpressions {
				if v, ok := t.Float(row, impressionCol); ok {
					entry.Impressions += v
				}
			}
			if hasClicks {
				if v, ok := t.Float(row, clickCol); ok {
					entry.Clicks += v
				}
			}
			byPlatform[platform] = entry
		}

		platforms := make([]string, 0, len(byPlatform))
		for platform := range byPlatform {
			platforms = append(platforms, platform)
		}
		sort.Strings(platforms)

		best, bestCPA := "", 0.0
		for _, platform := range platforms {
			entry := byPlatform[platform]
			if entry.Conversions > 0 {
				entry.CPA = round2(entry.Spend / entry.Conversions)
			}
			if entry.Clicks > 0 {
				entry.CPC = round2(entry.Spend / entry.Clicks)
			}
			byPlatform[platform] = entry

			if entry.Conversions > 0 && (best == "" || entry.CPA < bestCPA) {
				best, bestCPA = platform, entry.CPA
			}
		}
		section.ByPlatform = byPlatform
		section.BestPlatform = best
	}

	return section, nil
}
