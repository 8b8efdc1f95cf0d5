package analysis

import (
	"errors"
	"sort"

	"eventpulse/pkg/contracts/domain"
)

// Column aliases for the social media dataset.
var (
	socialImpressionKeys = []string{"impression", "reach"}
	socialEngagementKeys = []string{"engagement", "interaction"}
	socialClickKeys      = []string{"click", "link"}
	socialPlatformKeys   = []string{"platform", "network"}
)

// analyzeSocial totals impressions, engagements, and link clicks per
// platform and names the platform with the best engagement rate. Rate
// ties break toward the alphabetically first platform.
func analyzeSocial(t *Table) (*domain.SocialAnalysis, error) {
	if t == nil {
		return nil, errors.New("social media dataset unavailable")
	}

	section := &domain.SocialAnalysis{Provenance: domain.Computed()}

	impressionCol, hasImpressions := t.Lookup("impressions", socialImpressionKeys...)
	engagementCol, hasEngagements := t.Lookup("engagements", socialEngagementKeys...)
	clickCol, hasClicks := t.Lookup("clicks", socialClickKeys...)
	platformCol, hasPlatform := t.Lookup("platform", socialPlatformKeys...)

	if hasPlatform && hasImpressions && hasEngagements {
		byPlatform := make(map[string]domain.PlatformEngagement)
		for row := range t.Rows {
			platform := t.Cell(row, platformCol)
			if platform == "" {
				continue
			}
			entry := byPlatform[platform]
			if v, ok := t.Float(row, impressionCol); ok {
				entry.Impressions += v
			}
			if v, ok := t.Float(row, engagementCol); ok {
				entry.Engagements += v
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

		best, bestRate := "", -1.0
		for _, platform := range platforms {
			entry := byPlatform[platform]
			if entry.Impressions > 0 {
				entry.EngagementRate = round3(entry.Engagements / entry.Impressions * 100)
				byPlatform[platform] = entry
			}
			if entry.EngagementRate > bestRate {
				best, bestRate = platform, entry.EngagementRate
			}
		}
		section.ByPlatform = byPlatform
		section.BestPlatform = best
	}

	if hasImpressions {
		section.TotalImpressions = int(t.Sum(impressionCol))
	}
	if hasClicks {
		section.TotalClicks = int(t.Sum(clickCol))
	}

	return section, nil
}
