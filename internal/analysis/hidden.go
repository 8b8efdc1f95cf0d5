package analysis

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"time"

	"eventpulse/pkg/contracts/domain"
)

// stuckDealAgeDays is how long a deal may sit in a mid-funnel stage
// before it counts as stuck.
const stuckDealAgeDays = 30

// blockerPattern matches the objection phrases sales reps record in
// deal notes.
var blockerPattern = regexp.MustCompile(`(?i)board approval|budget|respond|compar`)

// highValueThreshold and lowConversionThreshold bound the "high value
// but low conversion" source screen.
const (
	highValueThreshold     = 10000.0
	lowConversionThreshold = 10.0
	topBlockerCount        = 3
)

// analyzeHidden surfaces patterns the headline sections gloss over:
// deals stalled in mid-funnel stages, the objections blocking them, and
// lead sources whose deal size outruns their close rate.
func analyzeHidden(t *Table, conversion *domain.ConversionAnalysis, now time.Time) (*domain.HiddenInsights, error) {
	if t == nil {
		return nil, errors.New("sales pipeline dataset unavailable")
	}

	stageCol, hasStage := t.Lookup("stage", salesStageKeys...)
	dateCol, hasDate := t.Lookup("contact date", salesContactDateKeys...)
	if !hasStage || !hasDate {
		return nil, errors.New("stage or contact date column not found in sales pipeline")
	}
	valueCol, hasValue := t.Lookup("value", salesValueKeys...)
	notesCol, hasNotes := t.Lookup("notes", salesNotesKeys...)

	hidden := &domain.HiddenInsights{Provenance: domain.Computed()}
	blockerCounts := make(map[string]int)
	monthlyTrend := make(map[string]int)

	for row := range t.Rows {
		date, dated := t.Date(row, dateCol)
		if dated {
			monthlyTrend[strconv.Itoa(int(date.Month()))]++
		}

		stage := t.Cell(row, stageCol)
		if stage != domain.StageNegotiation && stage != domain.StageProposalSent {
			continue
		}
		if !dated || int(now.Sub(date).Hours()/24) <= stuckDealAgeDays {
			continue
		}

		hidden.StuckDealsCount++
		if hasValue {
			if v, ok := t.Float(row, valueCol); ok {
				hidden.StuckDealsValue += v
			}
		}
		if hasNotes {
			if blocker := blockerPattern.FindString(t.Cell(row, notesCol)); blocker != "" {
				blockerCounts[blocker]++
			}
		}
	}
	hidden.StuckDealsValue = round2(hidden.StuckDealsValue)
	hidden.CommonBlockers = topBlockers(blockerCounts, topBlockerCount)
	if len(monthlyTrend) > 0 {
		hidden.MonthlyTrend = monthlyTrend
	}

	if conversion != nil {
		hidden.HighValueLowConvSources = highValueLowConversion(conversion)
	}

	return hidden, nil
}

// topBlockers keeps the n most frequent blocker phrases, breaking count
// ties alphabetically.
func topBlockers(counts map[string]int, n int) map[string]int {
	if len(counts) == 0 {
		return nil
	}
	phrases := make([]string, 0, len(counts))
	for phrase := range counts {
		phrases = append(phrases, phrase)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if counts[phrases[i]] != counts[phrases[j]] {
			return counts[phrases[i]] > counts[phrases[j]]
		}
		return phrases[i] < phrases[j]
	})
	if len(phrases) > n {
		phrases = phrases[:n]
	}
	top := make(map[string]int, len(phrases))
	for _, phrase := range phrases {
		top[phrase] = counts[phrase]
	}
	return top
}

// highValueLowConversion screens sources whose average deal exceeds the
// value threshold but whose conversion rate sits under the low bar.
func highValueLowConversion(c *domain.ConversionAnalysis) []domain.HighValueSource {
	sources := make([]string, 0, len(c.BySource))
	for source := range c.BySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	var flagged []domain.HighValueSource
	for _, source := range sources {
		entry := c.BySource[source]
		if entry.AvgDealValue > highValueThreshold && entry.ConversionRate < lowConversionThreshold {
			flagged = append(flagged, domain.HighValueSource{
				Source:         source,
				AvgValue:       entry.AvgDealValue,
				ConversionRate: entry.ConversionRate,
			})
		}
	}
	return flagged
}
