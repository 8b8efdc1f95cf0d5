package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	DataDir       string
	RawDir        string
	CleanedDir    string
	ReportsDir    string
	ChartsDir     string
	LogsDir       string

	// Well-known cleaned artifacts
	WebsiteTrafficCSV string
	SocialMediaCSV    string
	EmailCampaignsCSV string
	SalesPipelineCSV  string
	AdSpendCSV        string
	KPISummaryJSON    string
	CleaningLog       string

	// Well-known report artifacts
	InsightsJSON string
}

// GetPaths returns the application paths relative to the executable location
// All paths are ALWAYS relative to the executable directory, never the current working directory
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	exeDir := filepath.Dir(exe)

	return PathsFor(exeDir), nil
}

// PathsFor builds the path set rooted at the given base directory.
// Production code roots at the executable directory; tests root at a temp dir.
//
// Directory structure:
//
//	base/
//	  ├── data/
//	  │   ├── raw/       (input workbooks)
//	  │   ├── cleaned/   (cleaned CSVs, KPI summary, cleaning log)
//	  │   └── reports/   (insight bundle)
//	  │       └── charts/
//	  └── logs/
func PathsFor(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, "data")
	cleanedDir := filepath.Join(dataDir, "cleaned")
	reportsDir := filepath.Join(dataDir, "reports")

	return &Paths{
		ExecutableDir: baseDir,
		DataDir:       dataDir,
		RawDir:        filepath.Join(dataDir, "raw"),
		CleanedDir:    cleanedDir,
		ReportsDir:    reportsDir,
		ChartsDir:     filepath.Join(reportsDir, "charts"),
		LogsDir:       filepath.Join(baseDir, "logs"),

		WebsiteTrafficCSV: filepath.Join(cleanedDir, WebsiteTrafficCleanCSV),
		SocialMediaCSV:    filepath.Join(cleanedDir, SocialMediaCleanCSV),
		EmailCampaignsCSV: filepath.Join(cleanedDir, EmailCampaignsCleanCSV),
		SalesPipelineCSV:  filepath.Join(cleanedDir, SalesPipelineCleanCSV),
		AdSpendCSV:        filepath.Join(cleanedDir, AdSpendCleanCSV),
		KPISummaryJSON:    filepath.Join(cleanedDir, KPISummaryFile),
		CleaningLog:       filepath.Join(cleanedDir, CleaningLogFile),

		InsightsJSON: filepath.Join(reportsDir, InsightsFile),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.RawDir,
		p.CleanedDir,
		p.ReportsDir,
		p.ChartsDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// FileExists checks whether a path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// GetRelativePath returns path relative to the executable directory,
// falling back to the input when it cannot be made relative
func (p *Paths) GetRelativePath(path string) string {
	rel, err := filepath.Rel(p.ExecutableDir, path)
	if err != nil {
		return path
	}
	return rel
}

// GetRawPath returns the path for an input workbook file
func (p *Paths) GetRawPath(filename string) string {
	return filepath.Join(p.RawDir, filename)
}

// GetCleanedPath returns the path for a cleaned artifact
func (p *Paths) GetCleanedPath(filename string) string {
	return filepath.Join(p.CleanedDir, filename)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetChartPath returns the path for a chart artifact
func (p *Paths) GetChartPath(filename string) string {
	return filepath.Join(p.ChartsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// CleanedCSVPaths returns the five cleaned dataset paths keyed by dataset name.
func (p *Paths) CleanedCSVPaths() map[string]string {
	return map[string]string{
		"website_traffic": p.WebsiteTrafficCSV,
		"social_media":    p.SocialMediaCSV,
		"email_campaigns": p.EmailCampaignsCSV,
		"sales_pipeline":  p.SalesPipelineCSV,
		"ad_spend":        p.AdSpendCSV,
	}
}

// GetExcelPathForMonth returns the expected workbook path for a campaign month
func (p *Paths) GetExcelPathForMonth(month time.Time) string {
	// Expected format: "marketing_data_2026_01.xlsx"
	filename := fmt.Sprintf("marketing_data_%s.xlsx", month.Format("2006_01"))
	return filepath.Join(p.RawDir, filename)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("raw", p.RawDir),
			slog.String("cleaned", p.CleanedDir),
			slog.String("reports", p.ReportsDir),
			slog.String("charts", p.ChartsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("artifacts",
			slog.String("kpi_summary", p.KPISummaryJSON),
			slog.String("cleaning_log", p.CleaningLog),
			slog.String("insights", p.InsightsJSON),
		))
}
