// Package config provides centralized configuration management for the
// EventPulse system. It handles loading configuration from multiple sources,
// validation, and provides a type-safe API for accessing configuration values
// throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern EP_* for namespacing:
//
//	EP_SERVER_PORT=8080
//	EP_LOGGING_LEVEL=info
//	EP_EVENT_DELEGATE_TARGET=300
//	EP_PIPELINE_STUCK_DEAL_DAYS=30
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, err := config.GetPaths()
//	workbook := paths.GetRawPath("marketing_data.xlsx")
//	insights := paths.InsightsJSON
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
