package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a generated test workbook. The first row is
// the header row.
type Sheet struct {
	Name string
	Rows [][]string
}

// WriteWorkbook writes an xlsx workbook containing the given sheets.
// Cells are written as strings so assertions do not depend on Excel
// number formatting.
func WriteWorkbook(t *testing.T, path string, sheets []Sheet) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet.Name))
		} else {
			_, err := f.NewSheet(sheet.Name)
			require.NoError(t, err)
		}
		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = v
			}
			require.NoError(t, f.SetSheetRow(sheet.Name, cell, &values))
		}
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, f.SaveAs(path))
}

// SampleMarketingSheets returns a small but deliberately dirty monthly
// workbook: a duplicated traffic row, percent-scale rates, an X/Twitter
// platform variant, N/A sentinels, missing contact emails, and a missing
// cost per conversion. Cleaning it exercises every normalization rule.
func SampleMarketingSheets() []Sheet {
	return []Sheet{
		{
			Name: "Website Traffic",
			Rows: [][]string{
				{"Week Starting", "Traffic Source", "Sessions", "Users", "New Users", "Bounce Rate", "Ticket Inquiry Conversions", "Conversion Rate"},
				{"2026-01-05", "Organic Search", "4200", "3800", "2100", "0.42", "38", "0.9"},
				{"2026-01-05", "Organic Search", "4200", "3800", "2100", "0.42", "38", "0.9"},
				{"2026-01-12", "Paid Social", "2800", "2500", "1900", "38", "25", ""},
				{"2026-01-19", "Referral", "1500", "1400", "800", "0.35", "22", "1.47"},
			},
		},
		{
			Name: "Social Media",
			Rows: [][]string{
				{"Week Starting", "Platform", "Followers (Total)", "New Followers", "Impressions", "Engagements", "Engagement Rate", "Link Clicks", "Top Post Impressions", "Top Post Type"},
				{"2026-01-05", "LinkedIn", "12500", "340", "85000", "4100", "4.8", "620", "18500", "Video"},
				{"2026-01-05", "X/Twitter", "8200", "120", "42000", "1500", "0.036", "310", "N/A", "Thread"},
				{"2026-01-12", "Instagram", "5600", "95", "28000", "900", "3.2", "150", "9200", "Carousel Post"},
			},
		},
		{
			Name: "Email Campaigns",
			Rows: [][]string{
				{"Campaign Name", "Send Date", "List Size", "Emails Delivered", "Opens", "Open Rate", "Clicks", "CTR", "Unsubscribes", "Conversions (Ticket Inquiries)", "Revenue Attributed"},
				{"early bird announcement", "2026-01-08", "5200", "5100", "1890", "37", "142", "2.8", "12", "9", "€24,000"},
				{"speaker lineup reveal", "2026-01-15", "5400", "5300", "1750", "0.33", "128", "0.024", "8", "6", "N/A"},
			},
		},
		{
			Name: "Sales Pipeline",
			Rows: [][]string{
				{"Contact Name", "Company Name", "Contact Email", "Deal Stage", "Deal Value (EUR)", "Lead Source", "Ticket Type", "First Contact Date", "Last Activity Date", "Expected Close Date", "Notes"},
				{"Sarah Chen", "Meridian Capital", "", "Closed Won", "€4,500", "referral", "vip delegate", "2025-11-12", "2026-01-10", "2026-01-15", "Signed after CFO approval"},
				{"Tomas Lindqvist", "Nordic Ventures", "tomas@nordicventures.se", "Negotiation", "12000", "conference meeting", "Sponsor - Gold", "2025-12-03", "2026-01-18", "2026-02-28", "Waiting on board approval"},
				{"Amira Haddad", "Gulf Exchange", "amira@gulfexchange.ae", "Closed Won", "€9,800", "email campaign", "Platinum Sponsor", "2025-12-15", "2026-01-20", "2026-01-22", "Booth plus two delegate passes"},
				{"Derek Vaughn", "Vaughn Trading", "", "Closed Lost", "3000", "cold outreach", "Delegate Pass", "2026-01-04", "2026-01-25", "", "Went with competitor event"},
			},
		},
		{
			Name: "Ad Spend",
			Rows: [][]string{
				{"Month", "Campaign Name", "Platform", "Budget (EUR)", "Spend (EUR)", "Impressions", "Clicks", "CPM (EUR)", "CPC (EUR)", "Conversions", "Cost per Conversion (EUR)"},
				{"January 2026", "Brand Search", "Google Ads", "3000", "2850.50", "120000", "3400", "23.75", "0.84", "52", ""},
				{"January 2026", "C-Suite Targeting", "LinkedIn Ads", "5000", "4700", "95000", "1200", "49.47", "3.92", "18", "261.11"},
			},
		},
	}
}
