package analysis

import (
	"errors"
	"sort"

	"eventpulse/pkg/contracts/domain"
)

// analyzeConversion breaks the pipeline down by lead source: how many
// deals each source produced, how many reached a terminal stage, and
// what share of the closed deals were won. The overall rate spans every
// deal regardless of source.
func analyzeConversion(t *Table) (*domain.ConversionAnalysis, error) {
	if t == nil {
		return nil, errors.New("sales pipeline dataset unavailable")
	}

	sourceCol, hasSource := t.Lookup("source", salesSourceKeys...)
	stageCol, hasStage := t.Lookup("stage", salesStageKeys...)
	if !hasSource || !hasStage {
		return nil, errors.New("source or stage column not found in sales pipeline")
	}
	valueCol, hasValue := t.Lookup("value", salesValueKeys...)

	type sourceTally struct {
		deals  int
		closed int
		won    int
		value  float64
		priced int
	}
	tallies := make(map[string]*sourceTally)
	totalClosed, totalWon := 0, 0

	for row := range t.Rows {
		stage := t.Cell(row, stageCol)
		closed := stage == domain.StageClosedWon || stage == domain.StageClosedLost
		won := stage == domain.StageClosedWon
		if closed {
			totalClosed++
		}
		if won {
			totalWon++
		}

		source := t.Cell(row, sourceCol)
		if source == "" {
			continue
		}
		tally := tallies[source]
		if tally == nil {
			tally = &sourceTally{}
			tallies[source] = tally
		}
		tally.deals++
		if closed {
			tally.closed++
		}
		if won {
			tally.won++
		}
		if hasValue {
			if v, ok := t.Float(row, valueCol); ok {
				tally.value += v
				tally.priced++
			}
		}
	}

	bySource := make(map[string]domain.SourceConversion, len(tallies))
	for source, tally := range tallies {
		entry := domain.SourceConversion{
			TotalDeals:  tally.deals,
			ClosedDeals: tally.closed,
			WonDeals:    tally.won,
		}
		if tally.closed > 0 {
			entry.ConversionRate = round1(float64(tally.won) / float64(tally.closed) * 100)
		}
		if tally.priced > 0 {
			entry.AvgDealValue = round2(tally.value / float64(tally.priced))
		}
		bySource[source] = entry
	}

	overall := 0.0
	if totalClosed > 0 {
		overall = round1(float64(totalWon) / float64(totalClosed) * 100)
	}

	return &domain.ConversionAnalysis{
		Provenance:  domain.Computed(),
		BySource:    bySource,
		OverallRate: overall,
		TotalClosed: totalClosed,
		TotalWon:    totalWon,
	}, nil
}

// bestConvertingSource returns the source with the highest conversion
// rate, scanning sources alphabetically so ties are deterministic.
func bestConvertingSource(c *domain.ConversionAnalysis) (string, float64, bool) {
	if c == nil || len(c.BySource) == 0 {
		return "", 0, false
	}
	sources := make([]string, 0, len(c.BySource))
	for source := range c.BySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	best, bestRate := "", -1.0
	for _, source := range sources {
		if rate := c.BySource[source].ConversionRate; rate > bestRate {
			best, bestRate = source, rate
		}
	}
	return best, bestRate, true
}
