package cleaning

import (
	"strconv"
	"strings"

	"eventpulse/pkg/contracts/domain"
)

// dropDuplicates removes exact-duplicate rows, preserving first
// occurrences in sheet order.
func dropDuplicates(rows [][]string) ([][]string, int) {
	seen := make(map[string]bool, len(rows))
	var kept [][]string
	dropped := 0
	for _, row := range rows {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true
		kept = append(kept, row)
	}
	return kept, dropped
}

// normalizeRateScaled applies NormalizeRate and bumps scaled when the raw
// value was a whole percentage that got divided down.
func normalizeRateScaled(cellValue string, scaled *int) (float64, bool) {
	value, ok := NormalizeRate(cellValue)
	if !ok {
		return 0, false
	}
	raw := strings.TrimSpace(strings.ReplaceAll(cellValue, "%", ""))
	if rawValue, err := strconv.ParseFloat(raw, 64); err == nil && rawValue > 1 {
		*scaled++
	}
	return value, true
}

// cleanWebsiteTraffic applies the website traffic rules: exact-duplicate
// removal, bounce rate normalization, conversion rate imputation from
// conversions/sessions, traffic source slugs, and numeric coercion.
func cleanWebsiteTraffic(rows [][]string, log *Log) ([]domain.WebsiteTrafficRow, domain.DatasetCleaningResult, error) {
	dataset := domain.DatasetWebsiteTraffic
	result := domain.DatasetCleaningResult{Dataset: dataset}

	headers := newHeaderMap(rows[0])
	cols, err := headers.require(
		"Week Starting", "Traffic Source", "Sessions", "Users", "New Users",
		"Bounce Rate", "Ticket Inquiry Conversions", "Conversion Rate",
	)
	if err != nil {
		return nil, result, err
	}

	data := rows[1:]
	result.RowsIn = len(data)

	data, dropped := dropDuplicates(data)
	result.DuplicatesDropped = dropped
	if dropped > 0 {
		log.Add(dataset, "removed %d duplicate rows", dropped)
	}

	bounceFixes := 0
	imputedRates := 0
	out := make([]domain.WebsiteTrafficRow, 0, len(data))
	for _, row := range data {
		week, _ := ParseDate(cell(row, cols["Week Starting"]))
		sessions, _ := ParseNumber(cell(row, cols["Sessions"]))
		users, _ := ParseNumber(cell(row, cols["Users"]))
		newUsers, _ := ParseNumber(cell(row, cols["New Users"]))
		conversions, _ := ParseNumber(cell(row, cols["Ticket Inquiry Conversions"]))
		bounce, _ := normalizeRateScaled(cell(row, cols["Bounce Rate"]), &bounceFixes)

		rate, ok := ParseNumber(cell(row, cols["Conversion Rate"]))
		if !ok && sessions > 0 {
			rate = conversions / sessions * 100
			imputedRates++
		}

		out = append(out, domain.WebsiteTrafficRow{
			WeekStarting:   week,
			TrafficSource:  Slugify(cell(row, cols["Traffic Source"])),
			Sessions:       sessions,
			Users:          users,
			NewUsers:       newUsers,
			BounceRate:     bounce,
			Conversions:    conversions,
			ConversionRate: rate,
		})
	}

	if bounceFixes > 0 {
		log.Add(dataset, "fixed %d bounce rate values (>1)", bounceFixes)
	}
	if imputedRates > 0 {
		log.Add(dataset, "calculated %d missing conversion rates", imputedRates)
	}

	result.RowsOut = len(out)
	result.ValuesNormalized = bounceFixes
	result.ValuesImputed = imputedRates
	return out, result, nil
}
