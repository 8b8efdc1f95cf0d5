package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeSocial(t *testing.T) {
	table := &Table{
		Name:    "social_media_clean.csv",
		Headers: socialHeaders(),
		Rows: [][]string{
			{"2026-01-05", "LinkedIn", "12000", "150", "45000", "2100", "0.047", "380", "8200", "video"},
			{"2026-01-05", "Twitter", "8000", "90", "30000", "900", "0.03", "210", "5100", "text"},
			{"2026-01-12", "LinkedIn", "12150", "160", "47000", "2300", "0.049", "400", "8600", "carousel"},
		},
	}

	section, err := analyzeSocial(table)
	require.NoError(t, err)

	assert.False(t, section.IsFallback())
	assert.Equal(t, 122000, section.TotalImpressions)
	assert.Equal(t, 990, section.TotalClicks)
	assert.Equal(t, "LinkedIn", section.BestPlatform)

	linkedIn := section.ByPlatform["LinkedIn"]
	assert.InDelta(t, 92000, linkedIn.Impressions, 1e-9)
	assert.InDelta(t, 4400, linkedIn.Engagements, 1e-9)
	assert.InDelta(t, 780, linkedIn.Clicks, 1e-9)
	assert.InDelta(t, 4.783, linkedIn.EngagementRate, 1e-9)

	twitter := section.ByPlatform["Twitter"]
	assert.InDelta(t, 3.0, twitter.EngagementRate, 1e-9)
}

func TestAnalyzeSocial_RateTieBreaksAlphabetically(t *testing.T) {
	table := &Table{
		Name:    "social_media_clean.csv",
		Headers: socialHeaders(),
		Rows: [][]string{
			{"2026-01-05", "LinkedIn", "", "", "2000", "200", "", "10", "", ""},
			{"2026-01-05", "Facebook", "", "", "1000", "100", "", "5", "", ""},
		},
	}

	section, err := analyzeSocial(table)
	require.NoError(t, err)
	assert.Equal(t, "Facebook", section.BestPlatform,
		"equal engagement rates resolve to the alphabetically first platform")
}

func TestAnalyzeSocial_NoTable(t *testing.T) {
	_, err := analyzeSocial(nil)
	assert.Error(t, err)
}
