// Package services implements the business logic layer between the HTTP
// handlers and the pipeline artifacts. Handlers stay thin: they decode
// and validate requests, call a service, and render the result.
//
// # Services
//
//   - OperationService drives pipeline runs through the operations
//     manager and exposes their live status.
//   - InsightService reads the insight bundle and KPI summary and shapes
//     them into the dashboard views, falling back to the reference bundle
//     when no analysis has run yet.
//   - DataService lists and serves the artifacts under the data
//     directory.
//   - HealthService answers liveness, readiness and version probes.
//
// Services receive their dependencies (paths, manager, hub, logger) at
// construction and take a context.Context on every call. Failures that
// handlers must translate into specific HTTP statuses wrap the sentinel
// errors from internal/errors, which the error handler already maps to
// problem documents; everything else is wrapped with
// fmt.Errorf("...: %w", err).
package services
