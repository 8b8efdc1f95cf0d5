// Package app assembles the EventPulse server: configuration, logging,
// OpenTelemetry, the WebSocket hub, the pipeline manager, the HTTP API
// and the embedded dashboard frontend.
//
// The wiring order matters. Configuration and logging come first so
// every later component logs structurally; telemetry providers follow
// because the request middleware and the pipeline metrics share their
// instruments; services come last and receive everything they need as
// constructor arguments.
//
// A typical main is:
//
//	application, err := app.NewApplication(frontendFS)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//		log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM and then shuts down in dependency
// order: the HTTP server stops accepting work, the pipeline manager
// cancels any in-flight run, the hub disconnects its clients, and the
// telemetry providers flush.
package app
