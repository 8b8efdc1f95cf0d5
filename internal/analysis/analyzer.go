package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"time"

	"eventpulse/internal/config"
	"eventpulse/internal/exporter"
	"eventpulse/internal/files"
	"eventpulse/pkg/contracts/domain"
)

// ProgressFunc receives coarse progress while an analysis run is in
// flight. percent runs 0-100 across the whole stage.
type ProgressFunc func(percent int, message string)

// Analyzer runs the analysis stage end to end: it loads the cleaned
// CSVs, computes every insight section, and writes the bundle to
// data/reports/insights.json.
type Analyzer struct {
	paths      *config.Paths
	artifacts  *exporter.ArtifactWriter
	onProgress ProgressFunc
	now        func() time.Time
}

// New creates an Analyzer reading and writing through the given path
// layout.
func New(paths *config.Paths) *Analyzer {
	return &Analyzer{
		paths:     paths,
		artifacts: exporter.NewArtifactWriter(paths),
		now:       time.Now,
	}
}

// OnProgress registers a callback invoked as the run advances.
func (a *Analyzer) OnProgress(fn ProgressFunc) {
	a.onProgress = fn
}

func (a *Analyzer) progress(percent int, message string) {
	if a.onProgress != nil {
		a.onProgress(percent, message)
	}
}

// sectionRun binds one insight section to its computation and its
// fallback. The fallback runs when compute errors or panics, so the
// bundle always carries every section.
type sectionRun struct {
	name     string
	percent  int
	message  string
	compute  func() error
	fallback func(reason string)
}

// Analyze executes the analysis pipeline over the cleaned artifacts.
// Sections are computed independently: a missing dataset or a failed
// computation replaces that section with its fallback values and marks
// the provenance, it never aborts the run. The only fatal errors are
// context cancellation and failure to write the bundle.
func (a *Analyzer) Analyze(ctx context.Context) (*domain.Insights, error) {
	started := a.now()

	slog.Info("Starting analysis run",
		slog.String("cleaned_dir", a.paths.CleanedDir))
	a.progress(5, "loading cleaned datasets")

	website := loadTable(a.paths.WebsiteTrafficCSV)
	social := loadTable(a.paths.SocialMediaCSV)
	email := loadTable(a.paths.EmailCampaignsCSV)
	sales := loadTable(a.paths.SalesPipelineCSV)
	ads := loadTable(a.paths.AdSpendCSV)

	bundle := &domain.Insights{}

	sections := []sectionRun{
		{domain.SectionWebsite, 12, "analyzing website traffic",
			func() error {
				section, err := analyzeWebsite(website)
				if err != nil {
					return err
				}
				bundle.Website = section
				return nil
			},
			func(reason string) { bundle.Website = fallbackWebsite(reason) },
		},
		{domain.SectionSocial, 20, "analyzing social media",
			func() error {
				section, err := analyzeSocial(social)
				if err != nil {
					return err
				}
				bundle.Social = section
				return nil
			},
			func(reason string) { bundle.Social = fallbackSocial(reason) },
		},
		{domain.SectionEmail, 28, "analyzing email campaigns",
			func() error {
				section, err := analyzeEmail(email)
				if err != nil {
					return err
				}
				bundle.Email = section
				return nil
			},
			func(reason string) { bundle.Email = fallbackEmail(reason) },
		},
		{domain.SectionSales, 36, "analyzing sales pipeline",
			func() error {
				section, err := analyzeSales(sales)
				if err != nil {
					return err
				}
				bundle.Sales = section
				return nil
			},
			func(reason string) { bundle.Sales = fallbackSales(reason) },
		},
		{domain.SectionAds, 44, "analyzing ad spend",
			func() error {
				section, err := analyzeAds(ads)
				if err != nil {
					return err
				}
				bundle.Ads = section
				return nil
			},
			func(reason string) { bundle.Ads = fallbackAds(reason) },
		},
		{domain.SectionROI, 54, "estimating channel roi",
			func() error {
				section, err := analyzeROI(ads, bundle.Email, bundle.Website, bundle.Social)
				if err != nil {
					return err
				}
				bundle.ROI = section
				return nil
			},
			func(reason string) { bundle.ROI = fallbackROI(reason) },
		},
		{domain.SectionConversion, 62, "breaking down conversion by source",
			func() error {
				section, err := analyzeConversion(sales)
				if err != nil {
					return err
				}
				bundle.Conversion = section
				return nil
			},
			func(reason string) { bundle.Conversion = fallbackConversion(reason) },
		},
		{domain.SectionForecast, 70, "forecasting registrations",
			func() error {
				section, err := analyzeForecast(sales)
				if err != nil {
					return err
				}
				bundle.Forecast = section
				return nil
			},
			func(reason string) { bundle.Forecast = fallbackForecast(reason) },
		},
		{domain.SectionHidden, 78, "scanning for hidden insights",
			func() error {
				section, err := analyzeHidden(sales, bundle.Conversion, a.now())
				if err != nil {
					return err
				}
				bundle.Hidden = section
				return nil
			},
			func(reason string) { bundle.Hidden = fallbackHidden(reason) },
		},
		{domain.SectionKPIs, 84, "collecting kpi highlights",
			func() error {
				bundle.KPIs = buildKPIs(bundle.Conversion, bundle.Forecast, bundle.ROI, bundle.Hidden)
				return nil
			},
			func(reason string) { bundle.KPIs = fallbackKPIs(reason) },
		},
		{domain.SectionRecommendations, 90, "building recommendations",
			func() error {
				bundle.Recommendations = buildRecommendations(bundle.ROI, bundle.Conversion, bundle.Hidden, bundle.Forecast)
				return nil
			},
			func(reason string) { bundle.Recommendations = fallbackRecommendations(reason) },
		},
	}

	for _, section := range sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a.progress(section.percent, section.message)

		if err := runSection(section); err != nil {
			slog.Warn("Section fell back",
				slog.String("section", section.name),
				slog.String("reason", err.Error()))
			section.fallback(err.Error())
			continue
		}
		slog.Debug("Section computed", slog.String("section", section.name))
	}

	bundle.Metadata = &domain.InsightsMetadata{
		AnalysisDate: a.now(),
		DataSources:  a.dataSources(website, social, email, sales, ads),
		ChartFiles:   config.ChartNames(),
		Sections:     bundle.ProvenanceBySection(),
	}

	a.progress(95, "writing insights bundle")
	if err := a.artifacts.WriteJSON(a.paths.InsightsJSON, bundle); err != nil {
		return nil, fmt.Errorf("failed to write insights bundle: %w", err)
	}

	completed := a.now()
	slog.Info("Analysis run complete",
		slog.Int("sections", len(sections)),
		slog.Int("fallback_sections", len(bundle.FallbackSections())),
		slog.Duration("duration", completed.Sub(started)))
	a.progress(100, "analysis complete")

	return bundle, nil
}

// runSection executes one section's computation, converting a panic
// into an error so a bad row can never take down the run.
func runSection(section sectionRun) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.Error("Section computation panicked",
				slog.String("section", section.name),
				slog.Any("panic", rvr),
				slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("panic: %v", rvr)
		}
	}()
	return section.compute()
}

// loadTable reads one cleaned CSV, returning nil when the artifact is
// missing or unreadable so dependent sections fall back individually.
func loadTable(path string) *Table {
	t, err := LoadTable(path)
	if err != nil {
		slog.Warn("Cleaned dataset unavailable",
			slog.String("artifact", filepath.Base(path)),
			slog.String("error", err.Error()))
		return nil
	}
	return t
}

// dataSources records the artifacts that actually loaded, with content
// fingerprints so a bundle can be traced back to its inputs.
func (a *Analyzer) dataSources(tables ...*Table) []domain.SourceFile {
	paths := []string{
		a.paths.WebsiteTrafficCSV,
		a.paths.SocialMediaCSV,
		a.paths.EmailCampaignsCSV,
		a.paths.SalesPipelineCSV,
		a.paths.AdSpendCSV,
	}

	var sources []domain.SourceFile
	for i, table := range tables {
		if table == nil {
			continue
		}
		source := domain.SourceFile{Name: filepath.Base(paths[i])}
		if fingerprint, err := files.Fingerprint(paths[i]); err == nil {
			source.Fingerprint = fingerprint
		}
		sources = append(sources, source)
	}
	return sources
}
