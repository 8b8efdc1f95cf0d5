package websocket

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockFrame struct {
	messageType int
	data        []byte
	err         error
}

// mockConn is an in-memory Connection for exercising the pumps without a
// live socket. ReadMessage blocks until a frame is queued or the
// connection is closed.
type mockConn struct {
	mu      sync.Mutex
	written []mockFrame
	reads   chan mockFrame

	closed    bool
	closedCh  chan struct{}
	writeErr  error
	readLimit int64
}

func newMockConn() *mockConn {
	return &mockConn{
		reads:    make(chan mockFrame, 16),
		closedCh: make(chan struct{}),
	}
}

func (m *mockConn) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}
	if m.closed {
		return errors.New("connection closed")
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	m.written = append(m.written, mockFrame{messageType: messageType, data: buf})
	return nil
}

func (m *mockConn) ReadMessage() (int, []byte, error) {
	select {
	case frame := <-m.reads:
		return frame.messageType, frame.data, frame.err
	case <-m.closedCh:
		return 0, nil, errors.New("connection closed")
	}
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.closedCh)
	}
	return nil
}

func (m *mockConn) SetReadDeadline(time.Time) error  { return nil }
func (m *mockConn) SetWriteDeadline(time.Time) error { return nil }

func (m *mockConn) SetReadLimit(limit int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readLimit = limit
}

func (m *mockConn) SetPongHandler(func(string) error)                 {}
func (m *mockConn) SetPingHandler(func(string) error)                 {}
func (m *mockConn) SetCloseHandler(func(code int, text string) error) {}

func (m *mockConn) RemoteAddr() string { return "127.0.0.1:52100" }

func (m *mockConn) queueRead(data []byte) {
	m.reads <- mockFrame{messageType: websocket.TextMessage, data: data}
}

func (m *mockConn) setWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

func (m *mockConn) writtenFrames() []mockFrame {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]mockFrame, len(m.written))
	copy(out, m.written)
	return out
}

func (m *mockConn) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
