package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeWebsite(t *testing.T) {
	table := &Table{
		Name:    "website_traffic_clean.csv",
		Headers: websiteHeaders(),
		Rows: [][]string{
			{"2026-01-05", "organic_search", "4200", "3800", "2100", "0.42", "38", "0.9"},
			{"2026-01-05", "paid_social", "2800", "2500", "1900", "0.38", "25", "0.89"},
			{"2026-01-12", "organic_search", "4400", "3900", "2000", "0.41", "42", "0.95"},
		},
	}

	section, err := analyzeWebsite(table)
	require.NoError(t, err)

	assert.False(t, section.IsFallback())
	assert.Equal(t, 11400, section.TotalSessions)
	assert.Equal(t, 105, section.TotalConversions)
	assert.InDelta(t, 0.92, section.ConversionRate, 1e-9)

	require.Contains(t, section.BySource, "organic_search")
	organic := section.BySource["organic_search"]
	assert.InDelta(t, 8600, organic.Sessions, 1e-9)
	assert.InDelta(t, 80, organic.Conversions, 1e-9)
	assert.InDelta(t, 0.93, organic.ConversionRate, 1e-9)

	paid := section.BySource["paid_social"]
	assert.InDelta(t, 2800, paid.Sessions, 1e-9)
	assert.InDelta(t, 0.89, paid.ConversionRate, 1e-9)
}

func TestAnalyzeWebsite_SkipsBlankSources(t *testing.T) {
	table := &Table{
		Name:    "website_traffic_clean.csv",
		Headers: websiteHeaders(),
		Rows: [][]string{
			{"2026-01-05", "organic_search", "1000", "", "", "", "10", ""},
			{"2026-01-05", "", "500", "", "", "", "5", ""},
		},
	}

	section, err := analyzeWebsite(table)
	require.NoError(t, err)

	assert.Equal(t, 1500, section.TotalSessions,
		"totals cover every row, sourced or not")
	assert.Len(t, section.BySource, 1)
}

func TestAnalyzeWebsite_UnknownHeaders(t *testing.T) {
	table := &Table{
		Name:    "website_traffic_clean.csv",
		Headers: []string{"Col A", "Col B"},
		Rows:    [][]string{{"1", "2"}},
	}

	section, err := analyzeWebsite(table)
	require.NoError(t, err, "unresolvable columns degrade the section, they do not fail it")
	assert.Equal(t, 0, section.TotalSessions)
	assert.Nil(t, section.BySource)
}

func TestAnalyzeWebsite_NoTable(t *testing.T) {
	_, err := analyzeWebsite(nil)
	assert.Error(t, err)
}
