package analysis

import (
	"errors"

	"eventpulse/pkg/contracts/domain"
)

// Column aliases for the email campaigns dataset.
var (
	emailConversionKeys = []string{"conversion", "ticket", "inquiry"}
	emailRevenueKeys    = []string{"revenue", "attributed", "value"}
	emailOpenRateKeys   = []string{"open rate", "rate"}
	emailCTRKeys        = []string{"ctr", "click rate"}
)

// analyzeEmail totals conversions and attributed revenue and averages the
// open and click-through rates. The cleaned rates are fractions, so the
// averages are scaled to percentages.
func analyzeEmail(t *Table) (*domain.EmailAnalysis, error) {
	if t == nil {
		return nil, errors.New("email campaigns dataset unavailable")
	}

	section := &domain.EmailAnalysis{Provenance: domain.Computed()}

	if col, ok := t.Lookup("conversions", emailConversionKeys...); ok {
		section.TotalConversions = int(t.Sum(col))
	}
	if col, ok := t.Lookup("revenue", emailRevenueKeys...); ok {
		section.TotalRevenue = t.Sum(col)
	}
	if col, ok := t.Lookup("open rate", emailOpenRateKeys...); ok {
		section.AvgOpenRate = round1(t.Mean(col) * 100)
	}
	if col, ok := t.Lookup("ctr", emailCTRKeys...); ok {
		section.AvgCTR = round1(t.Mean(col) * 100)
	}

	return section, nil
}
