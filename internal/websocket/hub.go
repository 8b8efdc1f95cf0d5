package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"eventpulse/internal/infrastructure"
)

// Message types shared with the frontend.
const (
	TypeConnection        = "connection"
	TypeOperationSnapshot = "operation:snapshot"
	TypeDataUpdate        = "data_update"

	SubtypeAll    = "all"
	ActionRefresh = "refresh"
)

// Hub maintains the set of active clients and fans broadcast messages out
// to them. Every broadcast is a complete JSON frame, so the frontend never
// has to reassemble partial state from multiple messages.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	logger *slog.Logger

	totalConnections int64
	messagesSent     int64
	messagesDropped  int64

	quit        chan struct{}
	metricsQuit chan struct{}
	running     bool
}

// NewHub creates a hub. A nil logger falls back to the global one.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		clients:     make(map[*Client]bool),
		broadcast:   make(chan []byte),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		logger:      logger.With(slog.String("component", "websocket.hub")),
		quit:        make(chan struct{}),
		metricsQuit: make(chan struct{}),
	}
}

// Start launches the hub loop and the periodic metrics reporter.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
	go h.reportMetrics()
}

// Run processes register, unregister and broadcast requests until Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	welcome := map[string]interface{}{
		"type": TypeConnection,
		"data": map[string]interface{}{
			"status":    "connected",
			"message":   "Connected to EventPulse",
			"client_id": client.id,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if client.traceID != "" {
		welcome["trace_id"] = client.traceID
	}
	frame, err := json.Marshal(welcome)

	h.mu.Lock()
	h.clients[client] = true
	h.totalConnections++
	count := len(h.clients)
	if err == nil {
		select {
		case client.send <- frame:
		default:
		}
	}
	h.mu.Unlock()

	h.logger.InfoContext(client.logContext(), "Client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.InfoContext(client.logContext(), "Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

// fanOut delivers one frame to every client. Sends are non-blocking while
// the lock is held, so a client whose buffer is full gets dropped instead
// of stalling every other subscriber.
func (h *Hub) fanOut(message []byte) {
	var slow []*Client

	h.mu.Lock()
	for client := range h.clients {
		select {
		case client.send <- message:
			h.messagesSent++
		default:
			delete(h.clients, client)
			close(client.send)
			h.messagesDropped++
			slow = append(slow, client)
		}
	}
	delivered := len(h.clients)
	h.mu.Unlock()

	for _, client := range slow {
		h.logger.WarnContext(client.logContext(), "Client send buffer full, disconnecting",
			slog.String("client_id", client.id))
	}
	if len(slow) > 0 {
		h.logger.Warn("Some clients missed a broadcast",
			slog.Int("delivered", delivered),
			slog.Int("dropped", len(slow)))
	}
}

// BroadcastUpdate sends an event to every connected client. Snapshot
// events carry their whole payload in data; other events keep the
// subtype and action fields so the frontend can route them.
func (h *Hub) BroadcastUpdate(eventType, subtype, action string, data interface{}) {
	h.BroadcastUpdateWithTrace(eventType, subtype, action, data, "")
}

// BroadcastUpdateWithTrace is BroadcastUpdate with a trace ID stamped on
// the outgoing frame.
func (h *Hub) BroadcastUpdateWithTrace(eventType, subtype, action string, data interface{}, traceID string) {
	message := map[string]interface{}{
		"type":      eventType,
		"data":      data,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if traceID != "" {
		message["trace_id"] = traceID
	}
	if eventType != TypeOperationSnapshot {
		message["subtype"] = subtype
		message["action"] = action
	}

	h.broadcastJSON(message)
}

// BroadcastRefresh tells connected dashboards to re-fetch the named
// components, for example after an operation writes new artifacts.
func (h *Hub) BroadcastRefresh(source string, components []string) {
	h.BroadcastUpdate(TypeDataUpdate, SubtypeAll, ActionRefresh, map[string]interface{}{
		"source":     source,
		"components": components,
	})
}

func (h *Hub) broadcastJSON(message map[string]interface{}) {
	frame, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Error marshaling broadcast message",
			slog.String("error", err.Error()),
			slog.Any("message_type", message["type"]))
		return
	}

	select {
	case h.broadcast <- frame:
	case <-h.quit:
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop shuts the hub down and closes all client channels. Safe to call
// more than once.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	close(h.metricsQuit)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) reportMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.metricsQuit:
			return

		case <-ticker.C:
			h.mu.RLock()
			active := len(h.clients)
			total := h.totalConnections
			sent := h.messagesSent
			dropped := h.messagesDropped
			h.mu.RUnlock()

			h.logger.Info("WebSocket hub metrics",
				slog.Int("active_clients", active),
				slog.Int64("total_connections", total),
				slog.Int64("messages_sent", sent),
				slog.Int64("messages_dropped", dropped))
		}
	}
}

// GetHubMetrics returns a snapshot of the hub counters for diagnostics.
func (h *Hub) GetHubMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
		"messages_dropped":  h.messagesDropped,
	}
}
