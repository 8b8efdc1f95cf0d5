// Package operations runs the marketing data pipeline as managed
// operations: cleaning, analysis, and rendering executed sequentially
// with retry, timeouts, and live status broadcasting.
//
// This package contains four main components:
//
// Stage: The unit of pipeline work. The three concrete stages wrap the
// cleaning, analysis, and rendering packages. Stages hand data to each
// other only through the artifacts on disk, so any stage can also run
// alone against whatever the previous run left behind.
//
// Registry: Holds the stages in pipeline order. A request for "full"
// resolves to the whole list; a request for a single stage resolves to
// just that stage.
//
// Manager: Creates and executes operations. The stages share the data
// directories, so the manager allows one operation in flight at a time
// and rejects concurrent requests. Start runs asynchronously for the
// dashboard; Execute runs synchronously for the command-line tools.
// Each stage gets its own timeout and a retry policy that only re-runs
// failures marked retryable.
//
// StatusBroadcaster: The single authority for operation status. Every
// change produces a complete snapshot pushed over the WebSocket hub, so
// clients re-render from whole snapshots and never reconstruct state
// from partial events.
//
// Example usage:
//
//	manager := operations.NewManager(hub, metrics, nil, nil)
//	if err := operations.RegisterPipeline(manager, paths, metrics, cfg.Pipeline); err != nil {
//		return err
//	}
//	resp, err := manager.Start(ctx, &domain.OperationRequest{Stage: domain.StageFull})
package operations
