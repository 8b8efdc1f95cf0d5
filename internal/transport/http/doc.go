// Package http contains the chi HTTP handlers behind the dashboard API.
//
// Each handler owns one resource and exposes a Routes() chi.Router the
// application mounts under /api:
//
//	OperationsHandler  /api/operations  start, inspect and cancel runs
//	DashboardHandler   /api/dashboard   insight views and the memo
//	DataHandler        /api/data        artifact listing and downloads
//	HealthHandler      /api/health      probes, version, system stats
//	ClientLogHandler   /api/logs        browser log forwarding
//
// Handlers translate between HTTP and the service layer and nothing
// else: request decoding through render.Bind, responses through
// go-chi/render, and every error through the shared
// errors.ErrorHandler, which maps service sentinels to RFC 7807
// problem documents.
package http
