// Package exporter provides artifact writing for the EventPulse pipeline.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers
// and UTF-8 BOM for Excel compatibility.
//
// DatasetExporter: Writes the five cleaned marketing datasets to CSV files
// with headers matching the raw workbook column names.
//
// ArtifactWriter: Persists JSON artifacts (KPI summary, insights report) and
// plain-text artifacts (cleaning log).
//
// Example usage:
//
//	csvWriter := exporter.NewCSVWriter(paths)
//	datasets := exporter.NewDatasetExporter(csvWriter)
//
//	// Export a cleaned dataset
//	err := datasets.ExportWebsiteTraffic(rows, paths.WebsiteTrafficCSV)
//
//	// Persist the KPI summary
//	artifacts := exporter.NewArtifactWriter(paths)
//	err = artifacts.WriteJSON("kpi_summary.json", summary)
package exporter
