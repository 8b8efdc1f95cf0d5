package cleaning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventpulse/pkg/contracts/domain"
)

func fixedClockLog(t *testing.T) *Log {
	t.Helper()
	log := NewLog()
	log.now = func() time.Time {
		return time.Date(2026, 2, 10, 14, 30, 5, 0, time.UTC)
	}
	return log
}

func TestLog_Render(t *testing.T) {
	log := fixedClockLog(t)
	log.AddGlobal("loaded workbook marketing_data_2026_01.xlsx")
	log.Add(domain.DatasetWebsiteTraffic, "removed %d duplicate rows", 3)
	log.Add(domain.DatasetSocialMedia, "standardized %d platform names", 2)

	rendered := log.Render()
	assert.Equal(t,
		"[2026-02-10 14:30:05] loaded workbook marketing_data_2026_01.xlsx\n"+
			"[2026-02-10 14:30:05] website_traffic: removed 3 duplicate rows\n"+
			"[2026-02-10 14:30:05] social_media: standardized 2 platform names\n",
		rendered)
}

func TestLog_SanitizesMessages(t *testing.T) {
	log := fixedClockLog(t)
	log.Add(domain.DatasetSalesPipeline, "inferred email for %s", "Côte d'Azur Ventures")

	actions := log.Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, "inferred email for Cte d'Azur Ventures", actions[0].Message)
}

func TestLog_CountFor(t *testing.T) {
	log := fixedClockLog(t)
	log.AddGlobal("loaded workbook")
	log.Add(domain.DatasetWebsiteTraffic, "removed 2 duplicate rows")
	log.Add(domain.DatasetWebsiteTraffic, "fixed 1 bounce rate values (>1)")
	log.Add(domain.DatasetAdSpend, "calculated 1 missing cost per conversion values")

	assert.Equal(t, 2, log.CountFor(domain.DatasetWebsiteTraffic))
	assert.Equal(t, 1, log.CountFor(domain.DatasetAdSpend))
	assert.Equal(t, 0, log.CountFor(domain.DatasetEmailCampaigns))
	assert.Equal(t, 4, len(log.Actions()))
}
