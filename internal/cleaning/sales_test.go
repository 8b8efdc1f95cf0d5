package cleaning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventpulse/pkg/contracts/domain"
)

func salesHeaderRow() []string {
	return []string{
		"Contact Name", "Company Name", "Contact Email", "Deal Stage",
		"Deal Value (EUR)", "Lead Source", "Ticket Type",
		"First Contact Date", "Last Activity Date", "Expected Close Date",
		"Notes",
	}
}

func TestCleanSalesPipeline(t *testing.T) {
	rows := [][]string{
		salesHeaderRow(),
		{"Sarah Chen", "Meridian Capital", "", "Closed Won", "€4,500", "referral", "vip delegate", "2025-11-12", "2026-01-10", "2026-01-15", "Signed after CFO approval"},
		{"Tomas Lindqvist", "Nordic Ventures", "tomas@nordicventures.se", "Negotiation", "12000", "conference meeting", "Sponsor - Gold", "2025-12-03", "2026-01-18", "2026-02-28", "Waiting on board approval"},
		{"Derek Vaughn", "Vaughn Trading", "N/A", "Closed Lost", "not disclosed", "cold outreach", "Delegate Pass", "2026-01-04", "2026-01-25", "", "Went with competitor event"},
	}

	log := NewLog()
	cleaned, result, err := cleanSalesPipeline(rows, log)
	require.NoError(t, err)
	require.Len(t, cleaned, 3)

	assert.Equal(t, "sarah@meridian.com", cleaned[0].ContactEmail,
		"missing email is inferred from contact and company names")
	assert.Equal(t, "tomas@nordicventures.se", cleaned[1].ContactEmail,
		"present emails are kept")
	assert.Equal(t, "derek@vaughn.com", cleaned[2].ContactEmail,
		"N/A sentinel counts as missing")

	assert.InDelta(t, 4500.0, cleaned[0].DealValue, 1e-9)
	assert.InDelta(t, 12000.0, cleaned[1].DealValue, 1e-9)
	assert.InDelta(t, 0.0, cleaned[2].DealValue, 1e-9, "unparseable deal value coerces to 0")

	assert.Equal(t, domain.StageClosedWon, cleaned[0].DealStage)
	assert.Equal(t, "Referral", cleaned[0].LeadSource)
	assert.Equal(t, "Vip Delegate", cleaned[0].TicketType)
	assert.Equal(t, "Conference Meeting", cleaned[1].LeadSource)
	assert.Equal(t, "Sponsor - Gold", cleaned[1].TicketType)

	assert.True(t, time.Date(2025, 11, 12, 0, 0, 0, 0, time.UTC).Equal(cleaned[0].FirstContactDate))
	assert.True(t, cleaned[2].ExpectedCloseDate.IsZero(), "empty close date stays zero")

	assert.Equal(t, 3, result.RowsIn)
	assert.Equal(t, 3, result.RowsOut)
	assert.Equal(t, 2, result.ValuesImputed)

	assert.Contains(t, log.Render(), "sales_pipeline: inferred 2 missing contact emails")
}

func TestCleanSalesPipeline_MissingColumns(t *testing.T) {
	rows := [][]string{
		{"Contact Name", "Deal Stage"},
		{"Sarah Chen", "Closed Won"},
	}

	_, _, err := cleanSalesPipeline(rows, NewLog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestInferEmail(t *testing.T) {
	tests := []struct {
		name    string
		contact string
		company string
		want    string
	}{
		{
			name:    "first tokens lowered",
			contact: "Sarah Chen",
			company: "Meridian Capital",
			want:    "sarah@meridian.com",
		},
		{
			name:    "single word names",
			contact: "Amira",
			company: "Gulf",
			want:    "amira@gulf.com",
		},
		{
			name:    "missing contact",
			contact: "",
			company: "Meridian Capital",
			want:    "",
		},
		{
			name:    "missing company",
			contact: "Sarah Chen",
			company: "  ",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferEmail(tt.contact, tt.company))
		})
	}
}
