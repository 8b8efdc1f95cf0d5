// Package files provides file system operations and discovery utilities
// for the EventPulse pipeline.
//
// This package contains two main components:
//
// Discovery: Provides file discovery operations such as finding raw Excel
// workbooks, cleaned CSV files, and files matching specific patterns. It
// also maps monthly marketing workbooks by their month tag and picks the
// most recent file from a set.
//
// Manager: Provides basic file management operations such as copying and
// deleting files, and ensuring directories exist. Relative paths resolve
// against the well-known data directories.
//
// Example usage:
//
//	// Find the newest raw workbook
//	discovery := files.NewDiscovery(paths.DataDir)
//	workbooks, err := discovery.FindExcelFiles(paths.RawDir)
//	latest, ok := files.GetLatestFile(workbooks)
//
//	// Fingerprint it for artifact provenance
//	fingerprint, err := files.Fingerprint(latest.Path)
package files
