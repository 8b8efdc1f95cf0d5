package analysis

import (
	"errors"

	"eventpulse/pkg/contracts/domain"
)

// Column aliases for the website traffic dataset.
var (
	websiteSessionKeys    = []string{"session", "visits"}
	websiteConversionKeys = []string{"conversion", "ticket", "inquiry"}
	websiteSourceKeys     = []string{"source", "traffic", "channel"}
)

// analyzeWebsite totals sessions and ticket-inquiry conversions, overall
// and per traffic source. Metrics whose column does not resolve are
// skipped, not failed.
func analyzeWebsite(t *Table) (*domain.WebsiteAnalysis, error) {
	if t == nil {
		return nil, errors.New("website traffic dataset unavailable")
	}

	section := &domain.WebsiteAnalysis{Provenance: domain.Computed()}

	sessionCol, hasSessions := t.Lookup("sessions", websiteSessionKeys...)
	conversionCol, hasConversions := t.Lookup("conversions", websiteConversionKeys...)
	sourceCol, hasSource := t.Lookup("traffic source", websiteSourceKeys...)

	if hasSessions {
		section.TotalSessions = int(t.Sum(sessionCol))
	}
	if hasConversions {
		section.TotalConversions = int(t.Sum(conversionCol))
	}
	if section.TotalSessions > 0 {
		section.ConversionRate = round2(float64(section.TotalConversions) / float64(section.TotalSessions) * 100)
	}

	if hasSource && hasSessions && hasConversions {
		bySource := make(map[string]domain.SourceTraffic)
		for row := range t.Rows {
			source := t.Cell(row, sourceCol)
			if source == "" {
				continue
			}
			entry := bySource[source]
			if v, ok := t.Float(row, sessionCol); ok {
				entry.Sessions += v
			}
			if v, ok := t.Float(row, conversionCol); ok {
				entry.Conversions += v
			}
			bySource[source] = entry
		}
		for source, entry := range bySource {
			if entry.Sessions > 0 {
				entry.ConversionRate = round2(entry.Conversions / entry.Sessions * 100)
				bySource[source] = entry
			}
		}
		section.BySource = bySource
	}

	return section, nil
}
