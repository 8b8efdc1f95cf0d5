package config

import "time"

// Application constants for the EventPulse system
const (
	// Application Info
	AppName    = "EventPulse"
	AppVersion = "1.0.0"

	// Event defaults. The campaign drives registrations for a two-day
	// event; targets are what the marketing plan committed to.
	DefaultEventName      = "Proof of Talk 2026"
	DefaultEventDate      = "2026-06-02"
	DefaultDelegateTarget = 300
	DefaultSponsorTarget  = 25

	// Network Timeouts
	DefaultHTTPTimeout  = 30 * time.Second
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	// Directory names (relative to executable)
	DefaultDataDir    = "data"
	DefaultRawDir     = "data/raw"
	DefaultCleanedDir = "data/cleaned"
	DefaultReportsDir = "data/reports"
	DefaultChartsDir  = "data/reports/charts"
	DefaultLogsDir    = "logs"

	// Cleaned dataset artifacts
	WebsiteTrafficCleanCSV = "website_traffic_clean.csv"
	SocialMediaCleanCSV    = "social_media_clean.csv"
	EmailCampaignsCleanCSV = "email_campaigns_clean.csv"
	SalesPipelineCleanCSV  = "sales_pipeline_clean.csv"
	AdSpendCleanCSV        = "ad_spend_clean.csv"
	KPISummaryFile         = "kpi_summary.json"
	CleaningLogFile        = "cleaning_log.txt"

	// Analysis artifacts
	InsightsFile = "insights.json"

	// Chart artifacts. Names are fixed; the dashboard and the memo
	// reference them directly.
	ChartROIByChannel    = "roi_by_channel.png"
	ChartConversion      = "conversion_by_source.png"
	ChartTargetProgress  = "progress_toward_targets.png"
	ChartStuckDeals      = "stuck_deals_analysis.png"
	ChartMonthlyForecast = "monthly_forecast.png"

	// Operation Timeouts
	DefaultOperationTimeout = 30 * time.Minute
	CleanTimeout            = 10 * time.Minute
	AnalyzeTimeout          = 10 * time.Minute
	RenderTimeout           = 5 * time.Minute
	ChartRenderTimeout      = 45 * time.Second

	// WebSocket Buffer Sizes
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// API Endpoints (internal)
	APIBasePath        = "/api"
	DashboardEndpoint  = "/api/dashboard"
	OperationsEndpoint = "/api/operations"
	DataEndpoint       = "/api/data"
	HealthEndpoint     = "/api/health"
	MetricsEndpoint    = "/metrics"

	// WebSocket Endpoints
	WebSocketEndpoint = "/ws"
)

// ChartNames returns the fixed chart artifact names in report order.
func ChartNames() []string {
	return []string{
		ChartROIByChannel,
		ChartConversion,
		ChartTargetProgress,
		ChartStuckDeals,
		ChartMonthlyForecast,
	}
}
