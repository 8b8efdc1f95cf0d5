package cleaning

import (
	"fmt"
	"strings"

	"eventpulse/pkg/contracts/domain"
)

// inferEmail synthesizes a contact email from the first token of the
// contact and company names. Returns "" when either name is missing.
func inferEmail(contactName, companyName string) string {
	nameWords := strings.Fields(contactName)
	companyWords := strings.Fields(companyName)
	if len(nameWords) == 0 || len(companyWords) == 0 {
		return ""
	}
	return fmt.Sprintf("%s@%s.com",
		strings.ToLower(nameWords[0]),
		strings.ToLower(companyWords[0]))
}

// cleanSalesPipeline applies the sales pipeline rules: trimmed canonical
// stages, currency cleanup with unparseable deal values coerced to 0,
// title-cased source and ticket type, date coercion, and contact email
// inference.
func cleanSalesPipeline(rows [][]string, log *Log) ([]domain.SalesPipelineRow, domain.DatasetCleaningResult, error) {
	dataset := domain.DatasetSalesPipeline
	result := domain.DatasetCleaningResult{Dataset: dataset}

	headers := newHeaderMap(rows[0])
	cols, err := headers.require(
		"Contact Name", "Company Name", "Contact Email", "Deal Stage",
		"Deal Value (EUR)", "Lead Source", "Ticket Type",
		"First Contact Date", "Last Activity Date", "Expected Close Date",
		"Notes",
	)
	if err != nil {
		return nil, result, err
	}

	data := rows[1:]
	result.RowsIn = len(data)

	inferredEmails := 0
	out := make([]domain.SalesPipelineRow, 0, len(data))
	for _, row := range data {
		contactName := cell(row, cols["Contact Name"])
		companyName := cell(row, cols["Company Name"])

		email := cell(row, cols["Contact Email"])
		if IsMissing(email) {
			if inferred := inferEmail(contactName, companyName); inferred != "" {
				email = inferred
				inferredEmails++
			}
		}

		// Unparseable and missing deal values both coerce to 0
		dealValue, _ := NormalizeCurrency(cell(row, cols["Deal Value (EUR)"]))

		firstContact, _ := ParseDate(cell(row, cols["First Contact Date"]))
		lastActivity, _ := ParseDate(cell(row, cols["Last Activity Date"]))
		expectedClose, _ := ParseDate(cell(row, cols["Expected Close Date"]))

		out = append(out, domain.SalesPipelineRow{
			ContactName:       contactName,
			CompanyName:       companyName,
			ContactEmail:      email,
			DealStage:         cell(row, cols["Deal Stage"]),
			DealValue:         dealValue,
			LeadSource:        TitleCase(cell(row, cols["Lead Source"])),
			TicketType:        TitleCase(cell(row, cols["Ticket Type"])),
			FirstContactDate:  firstContact,
			LastActivityDate:  lastActivity,
			ExpectedCloseDate: expectedClose,
			Notes:             cell(row, cols["Notes"]),
		})
	}

	if inferredEmails > 0 {
		log.Add(dataset, "inferred %d missing contact emails", inferredEmails)
	}

	result.RowsOut = len(out)
	result.ValuesImputed = inferredEmails
	return out, result, nil
}
