package domain

import (
	"time"
)

// Dataset identifies one of the five marketing datasets that flow through
// the pipeline. The identifier doubles as the artifact base name.
type Dataset string

const (
	DatasetWebsiteTraffic Dataset = "website_traffic"
	DatasetSocialMedia    Dataset = "social_media"
	DatasetEmailCampaigns Dataset = "email_campaigns"
	DatasetSalesPipeline  Dataset = "sales_pipeline"
	DatasetAdSpend        Dataset = "ad_spend"
)

// AllDatasets returns the five datasets in cleaning order.
func AllDatasets() []Dataset {
	return []Dataset{
		DatasetWebsiteTraffic,
		DatasetSocialMedia,
		DatasetEmailCampaigns,
		DatasetSalesPipeline,
		DatasetAdSpend,
	}
}

// SheetName returns the primary worksheet name in the raw workbook.
// Sheet resolution falls back to a keyword scan when the primary name
// is absent.
func (d Dataset) SheetName() string {
	switch d {
	case DatasetWebsiteTraffic:
		return "Website Traffic"
	case DatasetSocialMedia:
		return "Social Media"
	case DatasetEmailCampaigns:
		return "Email Campaigns"
	case DatasetSalesPipeline:
		return "Sales Pipeline"
	case DatasetAdSpend:
		return "Ad Spend"
	default:
		return string(d)
	}
}

// CleanedFileName returns the cleaned CSV artifact name for the dataset.
func (d Dataset) CleanedFileName() string {
	return string(d) + "_clean.csv"
}

// WebsiteTrafficRow represents one cleaned week-by-source row of website
// traffic. Conversion rate is a percentage (0-100); bounce rate is a
// fraction (0-1) after normalization.
type WebsiteTrafficRow struct {
	WeekStarting   time.Time `json:"week_starting" csv:"Week Starting"`
	TrafficSource  string    `json:"traffic_source" csv:"Traffic Source" validate:"required"`
	Sessions       float64   `json:"sessions" csv:"Sessions" validate:"min=0"`
	Users          float64   `json:"users" csv:"Users" validate:"min=0"`
	NewUsers       float64   `json:"new_users" csv:"New Users" validate:"min=0"`
	BounceRate     float64   `json:"bounce_rate" csv:"Bounce Rate" validate:"min=0,max=1"`
	Conversions    float64   `json:"conversions" csv:"Ticket Inquiry Conversions" validate:"min=0"`
	ConversionRate float64   `json:"conversion_rate" csv:"Conversion Rate" validate:"min=0"`
}

// SocialMediaRow represents one cleaned week-by-platform row of social
// activity. Platform names are canonicalized (X/Twitter variants collapse
// to Twitter). TopPostImpressions is nil when the source cell was a
// sentinel like N/A.
type SocialMediaRow struct {
	WeekStarting       time.Time `json:"week_starting" csv:"Week Starting"`
	Platform           string    `json:"platform" csv:"Platform" validate:"required"`
	Followers          float64   `json:"followers" csv:"Followers (Total)" validate:"min=0"`
	NewFollowers       float64   `json:"new_followers" csv:"New Followers"`
	Impressions        float64   `json:"impressions" csv:"Impressions" validate:"min=0"`
	Engagements        float64   `json:"engagements" csv:"Engagements" validate:"min=0"`
	EngagementRate     float64   `json:"engagement_rate" csv:"Engagement Rate" validate:"min=0,max=1"`
	LinkClicks         float64   `json:"link_clicks" csv:"Link Clicks" validate:"min=0"`
	TopPostImpressions *float64  `json:"top_post_impressions,omitempty" csv:"Top Post Impressions"`
	TopPostType        string    `json:"top_post_type" csv:"Top Post Type"`
}

// EmailCampaignRow represents one cleaned email campaign send. Open rate
// and CTR are fractions (0-1) after normalization; missing attributed
// revenue is 0.
type EmailCampaignRow struct {
	CampaignName    string    `json:"campaign_name" csv:"Campaign Name" validate:"required"`
	SendDate        time.Time `json:"send_date" csv:"Send Date"`
	ListSize        float64   `json:"list_size" csv:"List Size" validate:"min=0"`
	EmailsDelivered float64   `json:"emails_delivered" csv:"Emails Delivered" validate:"min=0"`
	Opens           float64   `json:"opens" csv:"Opens" validate:"min=0"`
	OpenRate        float64   `json:"open_rate" csv:"Open Rate" validate:"min=0,max=1"`
	Clicks          float64   `json:"clicks" csv:"Clicks" validate:"min=0"`
	CTR             float64   `json:"ctr" csv:"CTR" validate:"min=0,max=1"`
	Unsubscribes    float64   `json:"unsubscribes" csv:"Unsubscribes" validate:"min=0"`
	Conversions     float64   `json:"conversions" csv:"Conversions (Ticket Inquiries)" validate:"min=0"`
	RevenueAttrib   float64   `json:"revenue_attributed" csv:"Revenue Attributed" validate:"min=0"`
}

// SalesPipelineRow represents one cleaned deal. Deal values are EUR with
// currency symbols and separators stripped; unparseable values are 0.
// Missing contact emails are synthesized from the contact and company
// names. Zero-value dates mean the source cell did not parse.
type SalesPipelineRow struct {
	ContactName       string    `json:"contact_name" csv:"Contact Name"`
	CompanyName       string    `json:"company_name" csv:"Company Name"`
	ContactEmail      string    `json:"contact_email" csv:"Contact Email"`
	DealStage         string    `json:"deal_stage" csv:"Deal Stage" validate:"required"`
	DealValue         float64   `json:"deal_value" csv:"Deal Value (EUR)" validate:"min=0"`
	LeadSource        string    `json:"lead_source" csv:"Lead Source"`
	TicketType        string    `json:"ticket_type" csv:"Ticket Type"`
	FirstContactDate  time.Time `json:"first_contact_date" csv:"First Contact Date"`
	LastActivityDate  time.Time `json:"last_activity_date" csv:"Last Activity Date"`
	ExpectedCloseDate time.Time `json:"expected_close_date" csv:"Expected Close Date"`
	Notes             string    `json:"notes,omitempty" csv:"Notes"`
}

// AdSpendRow represents one cleaned month-by-campaign row of paid media.
// All money columns are EUR. Missing cost per conversion is imputed as
// spend over conversions when conversions are positive.
type AdSpendRow struct {
	Month             time.Time `json:"month" csv:"Month"`
	CampaignName      string    `json:"campaign_name" csv:"Campaign Name" validate:"required"`
	Platform          string    `json:"platform" csv:"Platform"`
	Budget            float64   `json:"budget" csv:"Budget (EUR)" validate:"min=0"`
	Spend             float64   `json:"spend" csv:"Spend (EUR)" validate:"min=0"`
	Impressions       float64   `json:"impressions" csv:"Impressions" validate:"min=0"`
	Clicks            float64   `json:"clicks" csv:"Clicks" validate:"min=0"`
	CPM               float64   `json:"cpm" csv:"CPM (EUR)" validate:"min=0"`
	CPC               float64   `json:"cpc" csv:"CPC (EUR)" validate:"min=0"`
	Conversions       float64   `json:"conversions" csv:"Conversions" validate:"min=0"`
	CostPerConversion float64   `json:"cost_per_conversion" csv:"Cost per Conversion (EUR)" validate:"min=0"`
}

// Canonical deal stages, in funnel order. Stage strings outside this set
// pass through cleaning unchanged but are excluded from funnel ordering.
const (
	StageContacted    = "Contacted"
	StageLead         = "Lead"
	StageQualified    = "Qualified"
	StageNegotiation  = "Negotiation"
	StageProposalSent = "Proposal Sent"
	StageClosedWon    = "Closed Won"
	StageClosedLost   = "Closed Lost"
)

// FunnelStages returns the canonical deal stages in funnel order.
func FunnelStages() []string {
	return []string{
		StageContacted,
		StageLead,
		StageQualified,
		StageNegotiation,
		StageProposalSent,
		StageClosedWon,
		StageClosedLost,
	}
}
