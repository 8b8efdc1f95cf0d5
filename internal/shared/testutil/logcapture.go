package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogRecord is one captured log entry.
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogCapture is a slog.Handler that buffers records so tests can assert
// on what a component logged. Records are also echoed through t.Logf.
type LogCapture struct {
	mu      sync.Mutex
	records []LogRecord
	t       *testing.T
}

// NewTestLogger returns a logger wired to a fresh LogCapture.
func NewTestLogger(t *testing.T) (*slog.Logger, *LogCapture) {
	capture := &LogCapture{t: t}
	return slog.New(capture), capture
}

func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	c.mu.Lock()
	c.records = append(c.records, LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	c.mu.Unlock()

	if c.t != nil {
		c.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

func (c *LogCapture) WithAttrs([]slog.Attr) slog.Handler { return c }

func (c *LogCapture) WithGroup(string) slog.Handler { return c }

// Records returns a copy of everything captured so far.
func (c *LogCapture) Records() []LogRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LogRecord, len(c.records))
	copy(out, c.records)
	return out
}

// ContainsMessage reports whether any captured record's message
// contains the given substring.
func (c *LogCapture) ContainsMessage(message string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.records {
		if strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any captured record carries the
// attribute key with exactly the given value.
func (c *LogCapture) ContainsAttr(key string, value any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.records {
		if v, ok := r.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}
