package service

import (
	"sync"

	"rover_control/internal/models"
)

// LogBuffer is an append-only log with an optional retention cap.
// Every appended entry gets the next sequence number; once the cap is
// reached the oldest entries are evicted. capacity <= 0 keeps everything.
type LogBuffer struct {
	mu       sync.RWMutex
	entries  []models.LogEntry
	capacity int
	lastSeq  uint64
}

// NewLogBuffer creates a buffer retaining at most capacity entries.
func NewLogBuffer(capacity int) *LogBuffer {
	initial := capacity
	if initial <= 0 || initial > 256 {
		initial = 256
	}
	return &LogBuffer{
		entries:  make([]models.LogEntry, 0, initial),
		capacity: capacity,
	}
}

// Append stores e with the next sequence number and returns the stored entry.
func (b *LogBuffer) Append(e models.LogEntry) models.LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastSeq++
	e.Seq = b.lastSeq
	b.entries = append(b.entries, e)

	if b.capacity > 0 && len(b.entries) > b.capacity {
		n := copy(b.entries, b.entries[len(b.entries)-b.capacity:])
		b.entries = b.entries[:n]
	}
	return e
}

// After returns entries with Seq > seq in append order. When limit > 0 only
// the newest limit entries are returned.
func (b *LogBuffer) After(seq uint64, limit int) []models.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := len(b.entries)
	for i, e := range b.entries {
		if e.Seq > seq {
			start = i
			break
		}
	}
	matched := b.entries[start:]
	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	out := make([]models.LogEntry, len(matched))
	copy(out, matched)
	return out
}

// Len returns the number of retained entries.
func (b *LogBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// LastSeq returns the sequence number of the newest entry (0 when empty).
func (b *LogBuffer) LastSeq() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastSeq
}

// Capacity returns the retention cap; 0 means unbounded.
func (b *LogBuffer) Capacity() int {
	if b.capacity < 0 {
		return 0
	}
	return b.capacity
}
