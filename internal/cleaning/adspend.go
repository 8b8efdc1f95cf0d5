package cleaning

import (
	"eventpulse/pkg/contracts/domain"
)

// cleanAdSpend applies the ad spend rules: month parsing from the
// "January 2026" format, currency cleanup across the five money columns,
// and cost-per-conversion imputation from spend over conversions.
func cleanAdSpend(rows [][]string, log *Log) ([]domain.AdSpendRow, domain.DatasetCleaningResult, error) {
	dataset := domain.DatasetAdSpend
	result := domain.DatasetCleaningResult{Dataset: dataset}

	headers := newHeaderMap(rows[0])
	cols, err := headers.require(
		"Month", "Campaign Name", "Platform", "Budget (EUR)", "Spend (EUR)",
		"Impressions", "Clicks", "CPM (EUR)", "CPC (EUR)", "Conversions",
		"Cost per Conversion (EUR)",
	)
	if err != nil {
		return nil, result, err
	}

	data := rows[1:]
	result.RowsIn = len(data)

	imputedCPC := 0
	out := make([]domain.AdSpendRow, 0, len(data))
	for _, row := range data {
		month, _ := ParseMonth(cell(row, cols["Month"]))
		budget, _ := NormalizeCurrency(cell(row, cols["Budget (EUR)"]))
		spend, _ := NormalizeCurrency(cell(row, cols["Spend (EUR)"]))
		impressions, _ := ParseNumber(cell(row, cols["Impressions"]))
		clicks, _ := ParseNumber(cell(row, cols["Clicks"]))
		cpm, _ := NormalizeCurrency(cell(row, cols["CPM (EUR)"]))
		cpc, _ := NormalizeCurrency(cell(row, cols["CPC (EUR)"]))
		conversions, _ := ParseNumber(cell(row, cols["Conversions"]))

		costPerConversion, ok := NormalizeCurrency(cell(row, cols["Cost per Conversion (EUR)"]))
		if !ok && conversions > 0 {
			costPerConversion = spend / conversions
			imputedCPC++
		}

		out = append(out, domain.AdSpendRow{
			Month:             month,
			CampaignName:      cell(row, cols["Campaign Name"]),
			Platform:          cell(row, cols["Platform"]),
			Budget:            budget,
			Spend:             spend,
			Impressions:       impressions,
			Clicks:            clicks,
			CPM:               cpm,
			CPC:               cpc,
			Conversions:       conversions,
			CostPerConversion: costPerConversion,
		})
	}

	if imputedCPC > 0 {
		log.Add(dataset, "calculated %d missing cost per conversion values", imputedCPC)
	}

	result.RowsOut = len(out)
	result.ValuesImputed = imputedCPC
	return out, result, nil
}
