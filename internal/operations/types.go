package operations

import (
	"time"

	"eventpulse/pkg/contracts/domain"
)

// WebSocket event type carrying operation snapshots. The frontend
// subscribes to this single event and re-renders from the full snapshot,
// so updates can never arrive out of order from its point of view.
const EventOperationSnapshot = "operation:snapshot"

// NewRetryConfig returns the default stage retry configuration:
// three attempts with exponential backoff from one second.
func NewRetryConfig() domain.RetryConfig {
	return domain.RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  1 * time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}
