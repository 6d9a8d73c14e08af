package contexttrack

import (
	"testing"
	"time"

	"github.com/Dicklesworthstone/ccdash/internal/hookevent"
)

// fixedClock returns a controllable now() func.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time          { return c.t }
func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }
func newClock() *fixedClock                   { return &fixedClock{t: time.Unix(1700000000, 0)} }

func TestInvariantTokensPlusRemaining(t *testing.T) {
	clock := newClock()
	tr := NewWithClock(clock.now)
	tr.SetModel("gpt-4") // 128000

	adds := []int{100, 5000, 120000, 50000}
	for _, n := range adds {
		tr.OnToolOutput(n)
		h := tr.Snapshot()
		if h.Tokens+h.Remaining != h.MaxTokens {
			t.Errorf("after +%d: tokens(%d) + remaining(%d) != max(%d)",
				n, h.Tokens, h.Remaining, h.MaxTokens)
		}
	}

	// Overshoot: remaining floors at 0.
	h := tr.Snapshot()
	if h.Remaining != 0 {
		t.Errorf("remaining = %d, want 0 after overshoot", h.Remaining)
	}
}

func TestPercentMonotonic(t *testing.T) {
	clock := newClock()
	tr := NewWithClock(clock.now)
	tr.SetModel("claude-sonnet-4")

	prev := -1
	for i := 0; i < 40; i++ {
		tr.OnMessage(7000)
		h := tr.Snapshot()
		if h.Percent < prev {
			t.Fatalf("percent decreased: %d -> %d", prev, h.Percent)
		}
		prev = h.Percent
	}
}

func TestStatusThresholds(t *testing.T) {
	tests := []struct {
		tokens int
		status HealthStatus
	}{
		{0, StatusHealthy},
		{69000, StatusHealthy},
		{70000, StatusWarning},
		{89000, StatusWarning},
		{90000, StatusCritical},
		{150000, StatusCritical},
	}

	for _, tt := range tests {
		clock := newClock()
		tr := NewWithClock(clock.now)
		// Unknown model: 200k default window. Token counts in the table
		// are stated against 100k, so double them.
		tr.SetModel("unknown")
		tr.OnToolOutput(tt.tokens * 2)
		h := tr.Snapshot()
		if h.Status != tt.status {
			t.Errorf("tokens %d (of 200k): status = %q, want %q", tt.tokens*2, h.Status, tt.status)
		}
	}
}

func TestShouldCompactAtThreshold(t *testing.T) {
	clock := newClock()
	tr := NewWithClock(clock.now)
	tr.SetModel("gpt-4") // 128000

	// 89% -> no compact.
	tr.OnToolOutput(113920) // 89%
	if h := tr.Snapshot(); h.ShouldCompact {
		t.Errorf("shouldCompact at %d%%, want false", h.Percent)
	}

	// Cross 90%.
	tr.OnToolOutput(1280) // +1% -> 90%
	h := tr.Snapshot()
	if !h.ShouldCompact {
		t.Errorf("shouldCompact false at %d%%, want true", h.Percent)
	}
	if h.Status != StatusCritical {
		t.Errorf("status = %q, want critical", h.Status)
	}
}

func TestBurnRateTrailingWindow(t *testing.T) {
	clock := newClock()
	tr := NewWithClock(clock.now)

	// 600 tokens spread over 30s of a young session.
	tr.OnMessage(200)
	clock.advance(10 * time.Second)
	tr.OnMessage(200)
	clock.advance(10 * time.Second)
	tr.OnMessage(200)
	clock.advance(10 * time.Second)

	h := tr.Snapshot()
	// 600 tokens in 30s = 1200 tokens/min.
	if h.BurnRate < 1100 || h.BurnRate > 1300 {
		t.Errorf("burn rate = %f, want ~1200", h.BurnRate)
	}

	// After the window passes with no activity, old samples drop out.
	clock.advance(2 * time.Minute)
	tr.OnMessage(60)
	h = tr.Snapshot()
	// Only the fresh 60 tokens are inside the 60s window.
	if h.BurnRate < 50 || h.BurnRate > 70 {
		t.Errorf("burn rate after idle = %f, want ~60", h.BurnRate)
	}
}

func TestTokenHistoryBounded(t *testing.T) {
	clock := newClock()
	tr := NewWithClock(clock.now)

	for i := 0; i < HistorySize+20; i++ {
		tr.OnMessage(10)
	}

	h := tr.Snapshot()
	if len(h.TokenHistory) != HistorySize {
		t.Fatalf("history len = %d, want %d", len(h.TokenHistory), HistorySize)
	}
	// Samples are running totals, oldest first.
	for i := 1; i < len(h.TokenHistory); i++ {
		if h.TokenHistory[i] <= h.TokenHistory[i-1] {
			t.Fatalf("history not increasing at %d: %v", i, h.TokenHistory[i-1:i+1])
		}
	}
	if last := h.TokenHistory[len(h.TokenHistory)-1]; last != (HistorySize+20)*10 {
		t.Errorf("last sample = %d, want %d", last, (HistorySize+20)*10)
	}
}

func TestHandleEventBreakdown(t *testing.T) {
	clock := newClock()
	tr := NewWithClock(clock.now)

	tr.HandleEvent(hookevent.Event{
		Kind:        hookevent.KindUserPromptSubmit,
		SessionID:   "s1",
		Timestamp:   clock.now(),
		PromptChars: 400,
	})
	tr.HandleEvent(hookevent.Event{
		Kind:          hookevent.KindPostToolUse,
		SessionID:     "s1",
		Timestamp:     clock.now(),
		Tool:          "Read",
		InputChars:    40,
		ResponseChars: 800,
	})

	h := tr.Snapshot()
	if h.Breakdown.Messages != 100 {
		t.Errorf("messages = %d, want 100", h.Breakdown.Messages)
	}
	if h.Breakdown.ToolInputs != 10 {
		t.Errorf("tool inputs = %d, want 10", h.Breakdown.ToolInputs)
	}
	if h.Breakdown.ToolOutputs != 200 {
		t.Errorf("tool outputs = %d, want 200", h.Breakdown.ToolOutputs)
	}
	if h.Tokens != 310 {
		t.Errorf("tokens = %d, want 310", h.Tokens)
	}
}

func TestResetClearsEverything(t *testing.T) {
	clock := newClock()
	tr := NewWithClock(clock.now)
	tr.SetModel("gpt-4")
	tr.OnToolOutput(5000)
	tr.MarkCompaction(clock.now())

	tr.Reset()

	h := tr.Snapshot()
	if h.Tokens != 0 || h.Percent != 0 || len(h.TokenHistory) != 0 {
		t.Errorf("snapshot after reset = %+v", h)
	}
	if h.BurnRate != 0 {
		t.Errorf("burn rate after reset = %f", h.BurnRate)
	}
	if !h.LastCompaction.IsZero() {
		t.Errorf("lastCompaction survived reset")
	}
	// Model window is a property of the model, not of the session.
	if h.MaxTokens != 128000 {
		t.Errorf("maxTokens = %d, want 128000 retained", h.MaxTokens)
	}
}

func TestSessionStartEventSetsModel(t *testing.T) {
	clock := newClock()
	tr := NewWithClock(clock.now)

	tr.HandleEvent(hookevent.Event{
		Kind:      hookevent.KindSessionStart,
		SessionID: "s1",
		Timestamp: clock.now(),
		Model:     "gpt-4o",
	})

	if h := tr.Snapshot(); h.MaxTokens != 128000 {
		t.Errorf("maxTokens = %d, want 128000", h.MaxTokens)
	}
}
