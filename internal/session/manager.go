// Package session owns the lifecycle of the tracked agent session: which
// session id is current, what state the session is in, and when the domain
// aggregators must be reset because the identity changed.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Dicklesworthstone/ccdash/internal/hookevent"
)

// State is the lifecycle state of the tracked session.
type State string

const (
	StateInit         State = "init"
	StateActive       State = "active"
	StateIdle         State = "idle"
	StateResetting    State = "resetting"
	StateDisconnected State = "disconnected"
)

// Sink is an aggregator fed from the lifecycle manager. Handle delivery is
// synchronous and single-threaded; Reset is invoked before the first event
// of a new session reaches the sink.
type Sink interface {
	HandleEvent(ev hookevent.Event)
	Reset()
}

// NoticeKind classifies lifecycle notifications to observers.
type NoticeKind string

const (
	NoticeSessionChanged NoticeKind = "session_changed"
	NoticeSessionEnded   NoticeKind = "session_ended"
	NoticeReconnected    NoticeKind = "reconnected"
)

// Notice is a lifecycle notification delivered to the observer callback.
type Notice struct {
	Kind      NoticeKind
	SessionID string
	At        time.Time
}

// Info is an immutable snapshot of the manager's state for the rendering
// layer.
type Info struct {
	State        State
	SessionID    string
	SubagentRuns int
	LastEvent    time.Time
}

// Manager is the session lifecycle state machine. Events arrive through
// Handle on the single consumer goroutine; Snapshot may be read at any time.
type Manager struct {
	mu        sync.Mutex
	state     State
	sessionID string
	subagents int
	lastEvent time.Time

	sinks  []Sink
	notify func(Notice)
	log    *slog.Logger
}

// NewManager creates a manager fanning events out to the given sinks in
// order. A nil logger uses slog.Default.
func NewManager(log *slog.Logger, sinks ...Sink) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		state: StateInit,
		sinks: sinks,
		log:   log,
	}
}

// SetNotify registers an observer for lifecycle notices. The callback runs
// on the consumer goroutine and must not block.
func (m *Manager) SetNotify(fn func(Notice)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notify = fn
}

// Handle consumes one normalized event: applies any identity change,
// advances the state machine, and delivers the event to every sink.
func (m *Manager) Handle(ev hookevent.Event) {
	m.mu.Lock()

	if ev.SessionID != m.sessionID {
		m.resetLocked(ev)
	}

	m.lastEvent = ev.Timestamp
	m.transitionLocked(ev)
	m.mu.Unlock()

	for _, s := range m.sinks {
		s.HandleEvent(ev)
	}
}

// resetLocked performs the hard reset for a session-identity change: every
// sink is reset and the current id updated before the new session's event
// is delivered, so no sink observes a stale id. The very first identity
// adoption does not reset; the sinks are still in their initial state.
func (m *Manager) resetLocked(ev hookevent.Event) {
	old := m.sessionID
	if old != "" {
		m.state = StateResetting
		for _, s := range m.sinks {
			s.Reset()
		}
	}
	m.sessionID = ev.SessionID
	m.subagents = 0
	m.state = StateActive

	if old != "" {
		m.log.Info("session changed", "from", old, "to", ev.SessionID)
	} else {
		m.log.Info("session started", "session", ev.SessionID)
	}
	m.notifyLocked(Notice{Kind: NoticeSessionChanged, SessionID: ev.SessionID, At: ev.Timestamp})
}

func (m *Manager) transitionLocked(ev hookevent.Event) {
	switch ev.Kind {
	case hookevent.KindSessionStart:
		m.state = StateActive
	case hookevent.KindStop:
		m.state = StateIdle
	case hookevent.KindSubagentStop:
		m.subagents++
	case hookevent.KindPreToolUse, hookevent.KindPostToolUse, hookevent.KindUserPromptSubmit:
		m.state = StateActive
	}
}

// OnTransportLost moves the manager to Disconnected when the transport
// reader reports the session ended.
func (m *Manager) OnTransportLost() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateDisconnected {
		return
	}
	m.state = StateDisconnected
	m.log.Warn("transport lost", "session", m.sessionID)
	m.notifyLocked(Notice{Kind: NoticeSessionEnded, SessionID: m.sessionID, At: time.Now()})
}

// OnTransportAvailable moves the manager back to Init once a transport
// exists again. The next event establishes the (possibly new) session id.
func (m *Manager) OnTransportAvailable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateDisconnected {
		return
	}
	m.state = StateInit
	m.log.Info("transport available")
	m.notifyLocked(Notice{Kind: NoticeReconnected, SessionID: m.sessionID, At: time.Now()})
}

func (m *Manager) notifyLocked(n Notice) {
	if m.notify != nil {
		m.notify(n)
	}
}

// Snapshot returns the current lifecycle state for the rendering layer.
func (m *Manager) Snapshot() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Info{
		State:        m.state,
		SessionID:    m.sessionID,
		SubagentRuns: m.subagents,
		LastEvent:    m.lastEvent,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SessionID returns the current session id, empty before the first event.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}
