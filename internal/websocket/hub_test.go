package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()

	hub := NewHub(testLogger())
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

// registerClient registers a mock-backed client and drains its welcome
// frame so tests see only the messages they produce.
func registerClient(t *testing.T, hub *Hub) *Client {
	t.Helper()

	client := NewClientWithConnection(hub, newMockConn(), testLogger())
	hub.Register(client)

	welcome := receiveFrame(t, client)
	require.Equal(t, TypeConnection, welcome["type"])
	return client
}

func receiveFrame(t *testing.T, client *Client) map[string]interface{} {
	t.Helper()

	select {
	case frame, ok := <-client.send:
		require.True(t, ok, "send channel closed")
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(frame, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func requireChannelClosed(t *testing.T, client *Client) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-client.send:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("send channel was not closed")
		}
	}
}

func TestHubRegisterSendsWelcome(t *testing.T) {
	hub := newTestHub(t)

	client := NewClientWithConnection(hub, newMockConn(), testLogger())
	hub.Register(client)

	msg := receiveFrame(t, client)
	assert.Equal(t, TypeConnection, msg["type"])

	data, ok := msg["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "connected", data["status"])
	assert.Equal(t, "Connected to EventPulse", data["message"])
	assert.Equal(t, client.id, data["client_id"])

	_, err := time.Parse(time.RFC3339, msg["timestamp"].(string))
	assert.NoError(t, err)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHubBroadcastSnapshotEnvelope(t *testing.T) {
	hub := newTestHub(t)
	client := registerClient(t, hub)

	hub.BroadcastUpdate(TypeOperationSnapshot, "op-1", "update", map[string]interface{}{
		"operation_id": "op-1",
		"status":       "running",
		"progress":     40,
	})

	msg := receiveFrame(t, client)
	assert.Equal(t, TypeOperationSnapshot, msg["type"])

	// Snapshot frames carry everything inside data.
	assert.NotContains(t, msg, "subtype")
	assert.NotContains(t, msg, "action")

	data, ok := msg["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "op-1", data["operation_id"])
	assert.EqualValues(t, 40, data["progress"])
}

func TestHubBroadcastDataUpdateEnvelope(t *testing.T) {
	hub := newTestHub(t)
	client := registerClient(t, hub)

	hub.BroadcastUpdate(TypeDataUpdate, SubtypeAll, ActionRefresh, map[string]interface{}{
		"source": "test",
	})

	msg := receiveFrame(t, client)
	assert.Equal(t, TypeDataUpdate, msg["type"])
	assert.Equal(t, SubtypeAll, msg["subtype"])
	assert.Equal(t, ActionRefresh, msg["action"])
}

func TestHubBroadcastRefresh(t *testing.T) {
	hub := newTestHub(t)
	client := registerClient(t, hub)

	hub.BroadcastRefresh("operations", []string{"dashboard", "files"})

	msg := receiveFrame(t, client)
	assert.Equal(t, TypeDataUpdate, msg["type"])

	data, ok := msg["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "operations", data["source"])
	assert.Equal(t, []interface{}{"dashboard", "files"}, data["components"])
}

func TestHubBroadcastUpdateWithTrace(t *testing.T) {
	hub := newTestHub(t)
	client := registerClient(t, hub)

	hub.BroadcastUpdateWithTrace(TypeDataUpdate, SubtypeAll, ActionRefresh, nil, "trace-123")

	msg := receiveFrame(t, client)
	assert.Equal(t, "trace-123", msg["trace_id"])
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := newTestHub(t)
	first := registerClient(t, hub)
	second := registerClient(t, hub)

	hub.BroadcastUpdate(TypeOperationSnapshot, "op-2", "update", map[string]interface{}{
		"operation_id": "op-2",
	})

	for _, client := range []*Client{first, second} {
		msg := receiveFrame(t, client)
		assert.Equal(t, TypeOperationSnapshot, msg["type"])
	}
}

func TestHubDisconnectsSlowClient(t *testing.T) {
	hub := newTestHub(t)
	healthy := registerClient(t, hub)
	slow := registerClient(t, hub)

	// Fill the slow client's buffer so the next broadcast cannot be
	// delivered to it.
	for i := 0; i < cap(slow.send); i++ {
		slow.send <- []byte("backlog")
	}

	hub.BroadcastUpdate(TypeOperationSnapshot, "op-3", "update", map[string]interface{}{
		"operation_id": "op-3",
	})

	msg := receiveFrame(t, healthy)
	assert.Equal(t, TypeOperationSnapshot, msg["type"])

	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)
	requireChannelClosed(t, slow)
}

func TestHubUnregisterRemovesClient(t *testing.T) {
	hub := newTestHub(t)
	client := registerClient(t, hub)

	hub.unregister <- client

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		2*time.Second, 10*time.Millisecond)
	requireChannelClosed(t, client)

	// A second unregister for the same client must be a no-op.
	hub.unregister <- client
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	client := registerClient(t, hub)

	hub.Stop()
	hub.Stop()

	requireChannelClosed(t, client)
	assert.Equal(t, 0, hub.ClientCount())

	// Broadcasting after Stop must not block.
	done := make(chan struct{})
	go func() {
		hub.BroadcastUpdate(TypeDataUpdate, SubtypeAll, ActionRefresh, nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked after Stop")
	}
}

func TestHubStartIsIdempotent(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	hub.Start()
	t.Cleanup(hub.Stop)

	client := registerClient(t, hub)

	hub.BroadcastUpdate(TypeOperationSnapshot, "op-4", "update", map[string]interface{}{
		"operation_id": "op-4",
	})

	msg := receiveFrame(t, client)
	assert.Equal(t, TypeOperationSnapshot, msg["type"])
}

func TestHubMetricsSnapshot(t *testing.T) {
	hub := newTestHub(t)
	client := registerClient(t, hub)

	hub.BroadcastUpdate(TypeOperationSnapshot, "op-5", "update", map[string]interface{}{
		"operation_id": "op-5",
	})
	receiveFrame(t, client)

	stats := hub.GetHubMetrics()
	assert.Equal(t, 1, stats["active_clients"])
	assert.EqualValues(t, 1, stats["total_connections"])
	assert.EqualValues(t, 1, stats["messages_sent"])
	assert.EqualValues(t, 0, stats["messages_dropped"])
}
