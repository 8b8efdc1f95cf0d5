package analysis

import (
	"errors"
	"sort"
	"strings"

	"eventpulse/pkg/contracts/domain"
)

// Column aliases for the sales pipeline dataset. Conversion, forecast,
// and hidden-insight analyses resolve against the same lists.
var (
	salesValueKeys       = []string{"value", "amount", "eur"}
	salesStageKeys       = []string{"stage", "status"}
	salesSourceKeys      = []string{"source", "lead", "origin"}
	salesTicketTypeKeys  = []string{"type", "ticket"}
	salesContactDateKeys = []string{"contact date", "first contact", "date"}
	salesNotesKeys       = []string{"note", "comment"}
)

// Stages that count as closed for the pipeline-level conversion rate.
// The looser "Won"/"Lost" variants tolerate un-canonicalized inputs.
var closedStageSet = map[string]bool{
	domain.StageClosedWon:  true,
	domain.StageClosedLost: true,
	"Won":                  true,
	"Lost":                 true,
}

// analyzeSales summarizes the pipeline: total value, deal counts by
// stage, won-over-closed conversion rate, and the five most common lead
// sources.
func analyzeSales(t *Table) (*domain.SalesAnalysis, error) {
	if t == nil {
		return nil, errors.New("sales pipeline dataset unavailable")
	}

	section := &domain.SalesAnalysis{
		Provenance: domain.Computed(),
		TotalDeals: t.Len(),
	}

	if col, ok := t.Lookup("deal value", salesValueKeys...); ok {
		section.TotalPipelineValue = t.Sum(col)
	}

	if stageCol, ok := t.Lookup("deal stage", salesStageKeys...); ok {
		distribution := make(map[string]int)
		closed, won := 0, 0
		for row := range t.Rows {
			stage := t.Cell(row, stageCol)
			if stage == "" {
				continue
			}
			distribution[stage]++
			if closedStageSet[stage] {
				closed++
				if strings.Contains(strings.ToLower(stage), "won") {
					won++
				}
			}
		}
		section.StageDistribution = distribution
		if closed > 0 {
			section.ConversionRate = round1(float64(won) / float64(closed) * 100)
		}
	}

	if col, ok := t.Lookup("lead source", salesSourceKeys...); ok {
		section.TopSources = topSources(t, col, 5)
	}

	return section, nil
}

// topSources counts deals per lead source and keeps the n most common.
// Count ties break toward the alphabetically first source.
func topSources(t *Table, col, n int) map[string]int {
	counts := make(map[string]int)
	for row := range t.Rows {
		if source := t.Cell(row, col); source != "" {
			counts[source]++
		}
	}

	type sourceCount struct {
		name  string
		count int
	}
	ranked := make([]sourceCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, sourceCount{name, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].name < ranked[j].name
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	top := make(map[string]int, len(ranked))
	for _, sc := range ranked {
		top[sc.name] = sc.count
	}
	return top
}
