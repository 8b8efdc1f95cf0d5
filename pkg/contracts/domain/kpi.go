package domain

// KPISummary is the key-metric artifact the cleaner writes to
// kpi_summary.json. Field names match the artifact contract; rates and
// progress figures are percentages rounded to one decimal place, money
// figures are EUR rounded to two.
type KPISummary struct {
	TotalLeads       int     `json:"total_leads" validate:"min=0"`
	ConversionRate   float64 `json:"conversion_rate" validate:"min=0,max=100"`
	TotalRevenue     float64 `json:"total_revenue" validate:"min=0"`
	TotalPipeline    float64 `json:"total_pipeline" validate:"min=0"`
	TotalAdSpend     float64 `json:"total_ad_spend" validate:"min=0"`
	OverallCPA       float64 `json:"overall_cpa" validate:"min=0"`
	CurrentDelegates int     `json:"current_delegates" validate:"min=0"`
	CurrentSponsors  int     `json:"current_sponsors" validate:"min=0"`
	DelegateTarget   int     `json:"delegate_target" validate:"min=0"`
	SponsorTarget    int     `json:"sponsor_target" validate:"min=0"`
	DelegateProgress float64 `json:"delegate_progress" validate:"min=0"`
	SponsorProgress  float64 `json:"sponsor_progress" validate:"min=0"`
	MonthlyGrowth    float64 `json:"monthly_growth"`
	DataCleanedOn    string  `json:"data_cleaned_on"`

	// Provenance of the run that produced the summary.
	SourceWorkbook      string `json:"source_workbook,omitempty"`
	WorkbookFingerprint string `json:"workbook_fingerprint,omitempty"`
}
