// Package toolstream maintains a bounded rolling history of tool
// invocations, pairing start and end events.
package toolstream

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Dicklesworthstone/ccdash/internal/hookevent"
)

// DefaultCapacity bounds the rolling history. Inserting beyond it evicts
// the oldest entry regardless of resolution status.
const DefaultCapacity = 30

// Status is the lifecycle state of a tool entry.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Entry is one tool invocation in the history.
type Entry struct {
	ID        string
	Name      string
	Status    Status
	StartedAt time.Time
	Duration  time.Duration // zero until resolved
}

// Tracker owns the rolling history. Mutation happens only on the event
// consumption path; Snapshot returns copies safe to read at any time.
type Tracker struct {
	mu       sync.Mutex
	entries  []Entry // oldest first
	byUseID  map[string]int
	capacity int
	log      *slog.Logger
}

// New creates a tracker with the given capacity (DefaultCapacity when <= 0).
func New(capacity int, log *slog.Logger) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		byUseID:  make(map[string]int),
		capacity: capacity,
		log:      log,
	}
}

// OnPreToolUse records the start of a tool invocation and returns the
// entry id. When the host supplies a stable tool_use_id it becomes the
// entry id and is used for end pairing; otherwise a generated id is used
// and ends pair by name in FIFO order.
func (t *Tracker) OnPreToolUse(name, toolUseID string, startedAt time.Time) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := toolUseID
	if id == "" {
		id = uuid.NewString()
	}

	t.entries = append(t.entries, Entry{
		ID:        id,
		Name:      name,
		Status:    StatusPending,
		StartedAt: startedAt,
	})
	if toolUseID != "" {
		t.byUseID[toolUseID] = len(t.entries) - 1
	}

	// Evict oldest beyond capacity. An unresolved eviction is not an
	// error; tools that never report an end simply age out of view.
	if len(t.entries) > t.capacity {
		drop := len(t.entries) - t.capacity
		t.entries = t.entries[drop:]
		t.reindex()
	}
	return id
}

// OnPostToolUse resolves a pending entry. Pairing prefers the explicit
// tool_use_id; without one it resolves the oldest pending entry with a
// matching name. An unmatched end is a logged no-op.
func (t *Tracker) OnPostToolUse(name, toolUseID string, finishedAt time.Time, isError bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := -1
	if toolUseID != "" {
		if i, ok := t.byUseID[toolUseID]; ok && t.entries[i].Status == StatusPending {
			idx = i
		}
	}
	if idx < 0 {
		for i := range t.entries {
			if t.entries[i].Name == name && t.entries[i].Status == StatusPending {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		t.log.Debug("unmatched tool end", "tool", name, "tool_use_id", toolUseID)
		return
	}

	e := &t.entries[idx]
	e.Status = StatusDone
	if isError {
		e.Status = StatusError
	}
	if d := finishedAt.Sub(e.StartedAt); d > 0 {
		e.Duration = d
	}
	delete(t.byUseID, toolUseID)
}

// HandleEvent routes a normalized event to the tracker. Events other than
// PreToolUse/PostToolUse are ignored.
func (t *Tracker) HandleEvent(ev hookevent.Event) {
	switch ev.Kind {
	case hookevent.KindPreToolUse:
		t.OnPreToolUse(ev.Tool, ev.ToolUseID, ev.Timestamp)
	case hookevent.KindPostToolUse:
		t.OnPostToolUse(ev.Tool, ev.ToolUseID, ev.Timestamp, ev.ResponseError)
	}
}

// Reset clears the history.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
	t.byUseID = make(map[string]int)
}

// Snapshot returns up to capacity entries, most recent first.
func (t *Tracker) Snapshot() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[len(t.entries)-1-i] = e
	}
	return out
}

// Pending reports how many entries are still awaiting an end event.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, e := range t.entries {
		if e.Status == StatusPending {
			n++
		}
	}
	return n
}

// reindex rebuilds the tool_use_id index after eviction. Must be called
// with the lock held.
func (t *Tracker) reindex() {
	for id := range t.byUseID {
		delete(t.byUseID, id)
	}
	for i, e := range t.entries {
		if e.Status == StatusPending {
			t.byUseID[e.ID] = i
		}
	}
}
