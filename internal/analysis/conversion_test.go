package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeConversion(t *testing.T) {
	table := &Table{
		Name:    "sales_pipeline_clean.csv",
		Headers: salesHeaders(),
		Rows: [][]string{
			salesRow("Closed Won", "15000", "Referral", "Vip Delegate", "2026-01-06", ""),
			salesRow("Closed Lost", "", "Referral", "Standard Delegate", "2026-01-08", ""),
			salesRow("Closed Won", "9000", "", "Standard Delegate", "2026-01-10", ""),
			salesRow("Negotiation", "30000", "Referral", "Sponsor - Gold", "2026-01-12", ""),
		},
	}

	section, err := analyzeConversion(table)
	require.NoError(t, err)

	assert.False(t, section.IsFallback())
	assert.Equal(t, 3, section.TotalClosed, "unsourced deals still count overall")
	assert.Equal(t, 2, section.TotalWon)
	assert.InDelta(t, 66.7, section.OverallRate, 1e-9)

	require.Contains(t, section.BySource, "Referral")
	referral := section.BySource["Referral"]
	assert.Equal(t, 3, referral.TotalDeals)
	assert.Equal(t, 2, referral.ClosedDeals)
	assert.Equal(t, 1, referral.WonDeals)
	assert.InDelta(t, 50.0, referral.ConversionRate, 1e-9)
	assert.InDelta(t, 22500, referral.AvgDealValue, 1e-9,
		"average covers deals with a value")

	assert.NotContains(t, section.BySource, "")
}

func TestAnalyzeConversion_ComputedOverallRate(t *testing.T) {
	var rows [][]string
	for i := 0; i < 19; i++ {
		rows = append(rows, salesRow("Closed Won", "12000", "Referral", "Standard Delegate", "2026-01-05", ""))
	}
	for i := 0; i < 88; i++ {
		rows = append(rows, salesRow("Closed Lost", "8000", "LinkedIn Outreach", "Standard Delegate", "2026-01-06", ""))
	}
	for i := 0; i < 13; i++ {
		rows = append(rows, salesRow("Negotiation", "20000", "Referral", "Sponsor - Gold", "2026-01-07", ""))
	}

	table := &Table{Name: "sales_pipeline_clean.csv", Headers: salesHeaders(), Rows: rows}

	section, err := analyzeConversion(table)
	require.NoError(t, err)

	assert.Equal(t, 107, section.TotalClosed)
	assert.Equal(t, 19, section.TotalWon)
	assert.InDelta(t, 17.8, section.OverallRate, 1e-9,
		"19 won of 107 closed reads 17.8, computed not assumed")

	referral := section.BySource["Referral"]
	assert.Equal(t, 32, referral.TotalDeals)
	assert.Equal(t, 19, referral.ClosedDeals)
	assert.InDelta(t, 100.0, referral.ConversionRate, 1e-9)
	assert.InDelta(t, 15250, referral.AvgDealValue, 1e-9)
}

func TestAnalyzeConversion_MissingColumns(t *testing.T) {
	table := &Table{
		Name:    "sales_pipeline_clean.csv",
		Headers: []string{"Contact Name", "Company Name"},
		Rows:    [][]string{{"a", "b"}},
	}

	_, err := analyzeConversion(table)
	assert.Error(t, err)
}

func TestBestConvertingSource(t *testing.T) {
	section, err := analyzeConversion(&Table{
		Name:    "sales_pipeline_clean.csv",
		Headers: salesHeaders(),
		Rows: [][]string{
			salesRow("Closed Won", "10000", "Referral", "Standard Delegate", "2026-01-05", ""),
			salesRow("Closed Lost", "8000", "Website Inquiry", "Standard Delegate", "2026-01-06", ""),
			salesRow("Closed Won", "9000", "Website Inquiry", "Standard Delegate", "2026-01-07", ""),
		},
	})
	require.NoError(t, err)

	source, rate, ok := bestConvertingSource(section)
	require.True(t, ok)
	assert.Equal(t, "Referral", source)
	assert.InDelta(t, 100.0, rate, 1e-9)

	_, _, ok = bestConvertingSource(nil)
	assert.False(t, ok)
}
