// Package contexttrack maintains a running estimate of context window
// usage for the active session: total tokens, breakdown by source, burn
// rate, and the advisory compaction signal.
package contexttrack

import (
	"math"
	"sync"
	"time"

	"github.com/Dicklesworthstone/ccdash/internal/hookevent"
	"github.com/Dicklesworthstone/ccdash/internal/tokens"
)

// Policy constants. These are fixed, not user-tunable.
const (
	// WarningPercent and CriticalPercent split usage into
	// healthy / warning / critical bands.
	WarningPercent  = 70
	CriticalPercent = 90

	// CompactPercent is the high-water mark for the advisory
	// shouldCompact signal.
	CompactPercent = 90

	// BurnWindow is the trailing wall-time window used for the burn
	// rate, so one large event does not dominate the figure.
	BurnWindow = 60 * time.Second

	// HistorySize bounds the token history kept for sparkline consumers.
	HistorySize = 50
)

// HealthStatus classifies context usage.
type HealthStatus string

const (
	StatusHealthy  HealthStatus = "healthy"
	StatusWarning  HealthStatus = "warning"
	StatusCritical HealthStatus = "critical"
)

// Breakdown splits the token estimate by source.
type Breakdown struct {
	ToolOutputs int
	ToolInputs  int
	Messages    int
	Other       int
}

// Health is an immutable snapshot of context usage.
// Invariant: Tokens + Remaining == MaxTokens, with Remaining floored at 0.
type Health struct {
	Tokens    int
	Percent   int
	Remaining int
	MaxTokens int

	// BurnRate is estimated tokens consumed per minute over the
	// trailing window.
	BurnRate float64

	Status        HealthStatus
	ShouldCompact bool
	Breakdown     Breakdown

	SessionStart time.Time
	LastUpdate   time.Time

	// TokenHistory holds recent total-token samples, oldest first.
	TokenHistory []int

	// LastCompaction is the time of the most recent PreCompact marker,
	// zero if none was seen.
	LastCompaction time.Time
}

type burnSample struct {
	at    time.Time
	delta int
}

// Tracker accumulates context usage. Mutation happens only on the event
// consumption path; Snapshot may be called at any time.
type Tracker struct {
	mu        sync.Mutex
	breakdown Breakdown
	tokens    int
	maxTokens int

	sessionStart   time.Time
	lastUpdate     time.Time
	lastCompaction time.Time

	history []int
	burn    []burnSample

	now func() time.Time
}

// New creates a tracker sized for the default model context window.
func New() *Tracker {
	return &Tracker{
		maxTokens: tokens.DefaultContextLimit,
		now:       time.Now,
	}
}

// NewWithClock creates a tracker with an injected clock for tests.
func NewWithClock(now func() time.Time) *Tracker {
	t := New()
	t.now = now
	return t
}

// SetModel resizes the context window for the given model id.
func (t *Tracker) SetModel(model string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maxTokens = tokens.ContextLimit(model)
}

// OnToolOutput records estimated tokens from a tool response.
func (t *Tracker) OnToolOutput(estimated int) {
	t.add(estimated, func(b *Breakdown) { b.ToolOutputs += estimated })
}

// OnToolInput records estimated tokens from a tool's input echo.
func (t *Tracker) OnToolInput(estimated int) {
	t.add(estimated, func(b *Breakdown) { b.ToolInputs += estimated })
}

// OnMessage records estimated tokens from user/assistant message text.
func (t *Tracker) OnMessage(estimated int) {
	t.add(estimated, func(b *Breakdown) { b.Messages += estimated })
}

// OnOther records estimated tokens that fit no specific category.
func (t *Tracker) OnOther(estimated int) {
	t.add(estimated, func(b *Breakdown) { b.Other += estimated })
}

// MarkCompaction records an advisory PreCompact marker. The host performs
// the compaction; the tracker only remembers when it was signalled.
func (t *Tracker) MarkCompaction(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastCompaction = at
}

// HandleEvent routes a normalized event to the tracker.
func (t *Tracker) HandleEvent(ev hookevent.Event) {
	switch ev.Kind {
	case hookevent.KindSessionStart:
		if ev.Model != "" {
			t.SetModel(ev.Model)
		}
	case hookevent.KindUserPromptSubmit:
		t.OnMessage(tokens.Estimate(ev.PromptChars))
	case hookevent.KindPostToolUse:
		t.OnToolInput(tokens.Estimate(ev.InputChars))
		t.OnToolOutput(tokens.Estimate(ev.ResponseChars))
	case hookevent.KindPreCompact:
		t.MarkCompaction(ev.Timestamp)
	}
}

// Reset returns the tracker to its initial empty state. The configured
// context window size is retained; it is a property of the model, not of
// the session.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.breakdown = Breakdown{}
	t.tokens = 0
	t.sessionStart = time.Time{}
	t.lastUpdate = time.Time{}
	t.lastCompaction = time.Time{}
	t.history = nil
	t.burn = nil
}

// Snapshot returns the current context health.
func (t *Tracker) Snapshot() Health {
	t.mu.Lock()
	defer t.mu.Unlock()

	remaining := t.maxTokens - t.tokens
	if remaining < 0 {
		remaining = 0
	}
	// Keep the invariant tokens + remaining == maxTokens even when the
	// estimate overshoots the window.
	reported := t.maxTokens - remaining

	percent := 0
	if t.maxTokens > 0 {
		percent = int(math.Round(100 * float64(t.tokens) / float64(t.maxTokens)))
	}

	status := StatusHealthy
	switch {
	case percent >= CriticalPercent:
		status = StatusCritical
	case percent >= WarningPercent:
		status = StatusWarning
	}

	history := make([]int, len(t.history))
	copy(history, t.history)

	return Health{
		Tokens:         reported,
		Percent:        percent,
		Remaining:      remaining,
		MaxTokens:      t.maxTokens,
		BurnRate:       t.burnRateLocked(),
		Status:         status,
		ShouldCompact:  percent >= CompactPercent,
		Breakdown:      t.breakdown,
		SessionStart:   t.sessionStart,
		LastUpdate:     t.lastUpdate,
		TokenHistory:   history,
		LastCompaction: t.lastCompaction,
	}
}

func (t *Tracker) add(estimated int, apply func(*Breakdown)) {
	if estimated < 0 {
		estimated = 0
	}
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sessionStart.IsZero() {
		t.sessionStart = now
	}
	t.lastUpdate = now

	apply(&t.breakdown)
	t.tokens += estimated

	t.history = append(t.history, t.tokens)
	if len(t.history) > HistorySize {
		t.history = t.history[len(t.history)-HistorySize:]
	}

	t.burn = append(t.burn, burnSample{at: now, delta: estimated})
	t.pruneBurnLocked(now)
}

// burnRateLocked computes tokens per minute over the trailing window, or
// since session start when the session is younger than the window.
func (t *Tracker) burnRateLocked() float64 {
	if t.sessionStart.IsZero() || len(t.burn) == 0 {
		return 0
	}
	now := t.now()

	window := BurnWindow
	if alive := now.Sub(t.sessionStart); alive < window {
		window = alive
	}
	if window <= 0 {
		return 0
	}

	cutoff := now.Add(-window)
	total := 0
	for _, s := range t.burn {
		if !s.at.Before(cutoff) {
			total += s.delta
		}
	}
	return float64(total) / window.Minutes()
}

// pruneBurnLocked drops samples older than the burn window.
func (t *Tracker) pruneBurnLocked(now time.Time) {
	cutoff := now.Add(-BurnWindow)
	i := 0
	for i < len(t.burn) && t.burn[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		t.burn = t.burn[i:]
	}
}
