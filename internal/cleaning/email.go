package cleaning

import (
	"eventpulse/pkg/contracts/domain"
)

// cleanEmailCampaigns applies the email campaign rules: title-cased
// campaign names, open rate and CTR normalization, zero-fill for missing
// attributed revenue, and date/numeric coercion.
func cleanEmailCampaigns(rows [][]string, log *Log) ([]domain.EmailCampaignRow, domain.DatasetCleaningResult, error) {
	dataset := domain.DatasetEmailCampaigns
	result := domain.DatasetCleaningResult{Dataset: dataset}

	headers := newHeaderMap(rows[0])
	cols, err := headers.require(
		"Campaign Name", "Send Date", "List Size", "Emails Delivered", "Opens",
		"Open Rate", "Clicks", "CTR", "Unsubscribes",
		"Conversions (Ticket Inquiries)", "Revenue Attributed",
	)
	if err != nil {
		return nil, result, err
	}

	data := rows[1:]
	result.RowsIn = len(data)

	rateFixes := 0
	revenueFills := 0
	out := make([]domain.EmailCampaignRow, 0, len(data))
	for _, row := range data {
		sendDate, _ := ParseDate(cell(row, cols["Send Date"]))
		listSize, _ := ParseNumber(cell(row, cols["List Size"]))
		delivered, _ := ParseNumber(cell(row, cols["Emails Delivered"]))
		opens, _ := ParseNumber(cell(row, cols["Opens"]))
		clicks, _ := ParseNumber(cell(row, cols["Clicks"]))
		unsubscribes, _ := ParseNumber(cell(row, cols["Unsubscribes"]))
		conversions, _ := ParseNumber(cell(row, cols["Conversions (Ticket Inquiries)"]))
		openRate, _ := normalizeRateScaled(cell(row, cols["Open Rate"]), &rateFixes)
		ctr, _ := normalizeRateScaled(cell(row, cols["CTR"]), &rateFixes)

		revenue, ok := NormalizeCurrency(cell(row, cols["Revenue Attributed"]))
		if !ok {
			revenue = 0
			revenueFills++
		}

		out = append(out, domain.EmailCampaignRow{
			CampaignName:    TitleCase(cell(row, cols["Campaign Name"])),
			SendDate:        sendDate,
			ListSize:        listSize,
			EmailsDelivered: delivered,
			Opens:           opens,
			OpenRate:        openRate,
			Clicks:          clicks,
			CTR:             ctr,
			Unsubscribes:    unsubscribes,
			Conversions:     conversions,
			RevenueAttrib:   revenue,
		})
	}

	if rateFixes > 0 {
		log.Add(dataset, "fixed %d rate values (>1)", rateFixes)
	}
	if revenueFills > 0 {
		log.Add(dataset, "filled %d missing revenue values with 0", revenueFills)
	}

	result.RowsOut = len(out)
	result.ValuesNormalized = rateFixes
	result.ValuesImputed = revenueFills
	return out, result, nil
}
