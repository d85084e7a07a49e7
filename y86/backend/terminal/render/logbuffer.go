package render

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LogEntry is a single captured log record
type LogEntry struct {
	Time    time.Time
	Level   slog.Level
	Message string
}

// LogBuffer is a fixed size ring of log entries, safe for concurrent use
type LogBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	next    int
	count   int
}

func NewLogBuffer(size int) *LogBuffer {
	if size < 1 {
		size = 1
	}
	return &LogBuffer{entries: make([]LogEntry, size)}
}

// Add stores entry, dropping the oldest one when the buffer is full
func (lb *LogBuffer) Add(entry LogEntry) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.entries[lb.next] = entry
	lb.next = (lb.next + 1) % len(lb.entries)
	if lb.count < len(lb.entries) {
		lb.count++
	}
}

// GetRecent returns up to maxCount entries at or above minLevel, newest
// first. maxCount <= 0 returns all of them.
func (lb *LogBuffer) GetRecent(maxCount int, minLevel slog.Level) []LogEntry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	var result []LogEntry
	for i := 0; i < lb.count; i++ {
		if maxCount > 0 && len(result) == maxCount {
			break
		}
		entry := lb.entries[(lb.next-1-i+len(lb.entries))%len(lb.entries)]
		if entry.Level >= minLevel {
			result = append(result, entry)
		}
	}
	return result
}

func (lb *LogBuffer) Len() int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return lb.count
}

func (lb *LogBuffer) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.count = 0
	lb.next = 0
}

// LogBufferHandler is a slog.Handler feeding a LogBuffer
type LogBufferHandler struct {
	buffer *LogBuffer
	level  slog.Leveler
	attrs  string
	group  string
}

func NewLogBufferHandler(buffer *LogBuffer, level slog.Leveler) *LogBufferHandler {
	return &LogBufferHandler{buffer: buffer, level: level}
}

func (h *LogBufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LogBufferHandler) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(record.Message)
	sb.WriteString(h.attrs)
	record.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&sb, a)
		return true
	})

	h.buffer.Add(LogEntry{
		Time:    record.Time,
		Level:   record.Level,
		Message: sb.String(),
	})
	return nil
}

func (h *LogBufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var sb strings.Builder
	sb.WriteString(h.attrs)
	for _, a := range attrs {
		h.appendAttr(&sb, a)
	}

	clone := *h
	clone.attrs = sb.String()
	return &clone
}

func (h *LogBufferHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = h.group + name + "."
	return &clone
}

func (h *LogBufferHandler) appendAttr(sb *strings.Builder, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	fmt.Fprintf(sb, " %s%s=%v", h.group, a.Key, a.Value.Resolve())
}

// FormatLogEntry renders an entry for the log panel
func FormatLogEntry(entry LogEntry) string {
	var level string
	switch {
	case entry.Level >= slog.LevelError:
		level = "ERR"
	case entry.Level >= slog.LevelWarn:
		level = "WRN"
	case entry.Level >= slog.LevelInfo:
		level = "INF"
	default:
		level = "DBG"
	}

	return fmt.Sprintf("%s [%s] %s", entry.Time.Format("15:04:05"), level, entry.Message)
}
