package exporter

import (
	"eventpulse/pkg/contracts/domain"
)

// DatasetExporter writes cleaned marketing datasets to CSV artifacts.
// One exported file per dataset, headers matching the raw workbook
// column names so the cleaned files diff naturally against the source.
type DatasetExporter struct {
	csvWriter *CSVWriter
}

// NewDatasetExporter creates a new dataset exporter
func NewDatasetExporter(csvWriter *CSVWriter) *DatasetExporter {
	return &DatasetExporter{csvWriter: csvWriter}
}

// ExportWebsiteTraffic writes cleaned website traffic rows to filePath
func (e *DatasetExporter) ExportWebsiteTraffic(rows []domain.WebsiteTrafficRow, filePath string) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, e.websiteTrafficRow(row))
	}
	return e.csvWriter.WriteSimpleCSV(filePath, e.websiteTrafficHeaders(), records)
}

func (e *DatasetExporter) websiteTrafficHeaders() []string {
	return []string{
		"Week Starting",
		"Traffic Source",
		"Sessions",
		"Users",
		"New Users",
		"Bounce Rate",
		"Ticket Inquiry Conversions",
		"Conversion Rate",
	}
}

func (e *DatasetExporter) websiteTrafficRow(row domain.WebsiteTrafficRow) []string {
	return []string{
		formatDate(row.WeekStarting),
		row.TrafficSource,
		formatCount(row.Sessions),
		formatCount(row.Users),
		formatCount(row.NewUsers),
		formatRate(row.BounceRate),
		formatCount(row.Conversions),
		formatRate(row.ConversionRate),
	}
}

// ExportSocialMedia writes cleaned social media rows to filePath
func (e *DatasetExporter) ExportSocialMedia(rows []domain.SocialMediaRow, filePath string) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, e.socialMediaRow(row))
	}
	return e.csvWriter.WriteSimpleCSV(filePath, e.socialMediaHeaders(), records)
}

func (e *DatasetExporter) socialMediaHeaders() []string {
	return []string{
		"Week Starting",
		"Platform",
		"Followers (Total)",
		"New Followers",
		"Impressions",
		"Engagements",
		"Engagement Rate",
		"Link Clicks",
		"Top Post Impressions",
		"Top Post Type",
	}
}

func (e *DatasetExporter) socialMediaRow(row domain.SocialMediaRow) []string {
	return []string{
		formatDate(row.WeekStarting),
		row.Platform,
		formatCount(row.Followers),
		formatCount(row.NewFollowers),
		formatCount(row.Impressions),
		formatCount(row.Engagements),
		formatRate(row.EngagementRate),
		formatCount(row.LinkClicks),
		formatOptional(row.TopPostImpressions),
		row.TopPostType,
	}
}

// ExportEmailCampaigns writes cleaned email campaign rows to filePath
func (e *DatasetExporter) ExportEmailCampaigns(rows []domain.EmailCampaignRow, filePath string) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, e.emailCampaignRow(row))
	}
	return e.csvWriter.WriteSimpleCSV(filePath, e.emailCampaignHeaders(), records)
}

func (e *DatasetExporter) emailCampaignHeaders() []string {
	return []string{
		"Campaign Name",
		"Send Date",
		"List Size",
		"Emails Delivered",
		"Opens",
		"Open Rate",
		"Clicks",
		"CTR",
		"Unsubscribes",
		"Conversions (Ticket Inquiries)",
		"Revenue Attributed",
	}
}

func (e *DatasetExporter) emailCampaignRow(row domain.EmailCampaignRow) []string {
	return []string{
		row.CampaignName,
		formatDate(row.SendDate),
		formatCount(row.ListSize),
		formatCount(row.EmailsDelivered),
		formatCount(row.Opens),
		formatRate(row.OpenRate),
		formatCount(row.Clicks),
		formatRate(row.CTR),
		formatCount(row.Unsubscribes),
		formatCount(row.Conversions),
		formatMoney(row.RevenueAttrib),
	}
}

// ExportSalesPipeline writes cleaned sales pipeline rows to filePath
func (e *DatasetExporter) ExportSalesPipeline(rows []domain.SalesPipelineRow, filePath string) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, e.salesPipelineRow(row))
	}
	return e.csvWriter.WriteSimpleCSV(filePath, e.salesPipelineHeaders(), records)
}

func (e *DatasetExporter) salesPipelineHeaders() []string {
	return []string{
		"Contact Name",
		"Company Name",
		"Contact Email",
		"Deal Stage",
		"Deal Value (EUR)",
		"Lead Source",
		"Ticket Type",
		"First Contact Date",
		"Last Activity Date",
		"Expected Close Date",
		"Notes",
	}
}

func (e *DatasetExporter) salesPipelineRow(row domain.SalesPipelineRow) []string {
	return []string{
		row.ContactName,
		row.CompanyName,
		row.ContactEmail,
		row.DealStage,
		formatMoney(row.DealValue),
		row.LeadSource,
		row.TicketType,
		formatDate(row.FirstContactDate),
		formatDate(row.LastActivityDate),
		formatDate(row.ExpectedCloseDate),
		row.Notes,
	}
}

// ExportAdSpend writes cleaned ad spend rows to filePath
func (e *DatasetExporter) ExportAdSpend(rows []domain.AdSpendRow, filePath string) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, e.adSpendRow(row))
	}
	return e.csvWriter.WriteSimpleCSV(filePath, e.adSpendHeaders(), records)
}

func (e *DatasetExporter) adSpendHeaders() []string {
	return []string{
		"Month",
		"Campaign Name",
		"Platform",
		"Budget (EUR)",
		"Spend (EUR)",
		"Impressions",
		"Clicks",
		"CPM (EUR)",
		"CPC (EUR)",
		"Conversions",
		"Cost per Conversion (EUR)",
	}
}

func (e *DatasetExporter) adSpendRow(row domain.AdSpendRow) []string {
	return []string{
		formatMonth(row.Month),
		row.CampaignName,
		row.Platform,
		formatMoney(row.Budget),
		formatMoney(row.Spend),
		formatCount(row.Impressions),
		formatCount(row.Clicks),
		formatMoney(row.CPM),
		formatMoney(row.CPC),
		formatCount(row.Conversions),
		formatMoney(row.CostPerConversion),
	}
}

// Headers exposes the CSV header row for a dataset. The analysis stage
// uses this to validate cleaned files before loading them.
func (e *DatasetExporter) Headers(dataset domain.Dataset) []string {
	switch dataset {
	case domain.DatasetWebsiteTraffic:
		return e.websiteTrafficHeaders()
	case domain.DatasetSocialMedia:
		return e.socialMediaHeaders()
	case domain.DatasetEmailCampaigns:
		return e.emailCampaignHeaders()
	case domain.DatasetSalesPipeline:
		return e.salesPipelineHeaders()
	case domain.DatasetAdSpend:
		return e.adSpendHeaders()
	default:
		return nil
	}
}
