package cleaning

import (
	"eventpulse/pkg/contracts/domain"
)

// platformAliases collapse the rebranding-era platform labels to one
// canonical name.
var platformAliases = map[string]string{
	"X/Twitter": "Twitter",
	"X":         "Twitter",
	"Twitter":   "Twitter",
}

// cleanSocialMedia applies the social media rules: platform
// canonicalization, engagement rate normalization, top-post sentinel
// handling, post type slugs, and numeric coercion.
func cleanSocialMedia(rows [][]string, log *Log) ([]domain.SocialMediaRow, domain.DatasetCleaningResult, error) {
	dataset := domain.DatasetSocialMedia
	result := domain.DatasetCleaningResult{Dataset: dataset}

	headers := newHeaderMap(rows[0])
	cols, err := headers.require(
		"Week Starting", "Platform", "Followers (Total)", "New Followers",
		"Impressions", "Engagements", "Engagement Rate", "Link Clicks",
		"Top Post Impressions", "Top Post Type",
	)
	if err != nil {
		return nil, result, err
	}

	data := rows[1:]
	result.RowsIn = len(data)

	engagementFixes := 0
	platformRenames := 0
	out := make([]domain.SocialMediaRow, 0, len(data))
	for _, row := range data {
		platform := cell(row, cols["Platform"])
		if canonical, ok := platformAliases[platform]; ok {
			if canonical != platform {
				platformRenames++
			}
			platform = canonical
		}

		week, _ := ParseDate(cell(row, cols["Week Starting"]))
		followers, _ := ParseNumber(cell(row, cols["Followers (Total)"]))
		newFollowers, _ := ParseNumber(cell(row, cols["New Followers"]))
		impressions, _ := ParseNumber(cell(row, cols["Impressions"]))
		engagements, _ := ParseNumber(cell(row, cols["Engagements"]))
		linkClicks, _ := ParseNumber(cell(row, cols["Link Clicks"]))
		engagementRate, _ := normalizeRateScaled(cell(row, cols["Engagement Rate"]), &engagementFixes)

		var topPost *float64
		if value, ok := ParseNumber(cell(row, cols["Top Post Impressions"])); ok {
			topPost = &value
		}

		out = append(out, domain.SocialMediaRow{
			WeekStarting:       week,
			Platform:           platform,
			Followers:          followers,
			NewFollowers:       newFollowers,
			Impressions:        impressions,
			Engagements:        engagements,
			EngagementRate:     engagementRate,
			LinkClicks:         linkClicks,
			TopPostImpressions: topPost,
			TopPostType:        Slugify(cell(row, cols["Top Post Type"])),
		})
	}

	if platformRenames > 0 {
		log.Add(dataset, "standardized %d platform names", platformRenames)
	}
	if engagementFixes > 0 {
		log.Add(dataset, "fixed %d engagement rate values (>1)", engagementFixes)
	}

	result.RowsOut = len(out)
	result.ValuesNormalized = engagementFixes + platformRenames
	return out, result, nil
}
