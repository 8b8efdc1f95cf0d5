package domain

import (
	"time"
)

// CleaningAction is one logged transformation applied during cleaning.
// Actions are appended to cleaning_log.txt with their timestamp; messages
// are sanitized to printable ASCII before writing.
type CleaningAction struct {
	Timestamp time.Time `json:"timestamp"`
	Dataset   Dataset   `json:"dataset,omitempty"`
	Message   string    `json:"message"`
}

// DatasetCleaningResult summarizes the cleaning of one dataset.
type DatasetCleaningResult struct {
	Dataset           Dataset `json:"dataset"`
	SheetName         string  `json:"sheet_name"`
	RowsIn            int     `json:"rows_in"`
	RowsOut           int     `json:"rows_out"`
	DuplicatesDropped int     `json:"duplicates_dropped,omitempty"`
	ValuesImputed     int     `json:"values_imputed,omitempty"`
	ValuesNormalized  int     `json:"values_normalized,omitempty"`
	ActionCount       int     `json:"action_count"`
	OutputFile        string  `json:"output_file"`
}

// CleaningResult is the complete outcome of a cleaner run. It feeds the
// operation snapshot, the KPI summary provenance, and the console summary.
type CleaningResult struct {
	SourceWorkbook string                  `json:"source_workbook"`
	Fingerprint    string                  `json:"fingerprint"`
	StartedAt      time.Time               `json:"started_at"`
	CompletedAt    time.Time               `json:"completed_at"`
	Datasets       []DatasetCleaningResult `json:"datasets"`
	KPISummary     *KPISummary             `json:"kpi_summary,omitempty"`
	LogFile        string                  `json:"log_file"`
	Actions        int                     `json:"actions"`
}

// TotalRows returns the cleaned row count across all datasets.
func (r *CleaningResult) TotalRows() int {
	total := 0
	for _, d := range r.Datasets {
		total += d.RowsOut
	}
	return total
}
