// Package cost accumulates an estimated monetary cost for the active
// session from hook event payload sizes and a per-model pricing table.
package cost

import (
	"sync"

	"github.com/Dicklesworthstone/ccdash/internal/hookevent"
	"github.com/Dicklesworthstone/ccdash/internal/tokens"
)

// Estimate is an immutable snapshot of accumulated cost. All figures are
// heuristic: token counts come from character lengths, not a tokenizer.
type Estimate struct {
	InputTokens  int
	OutputTokens int
	InputCost    float64
	OutputCost   float64
	TotalCost    float64
}

// Tracker accumulates token and cost estimates monotonically until Reset.
// Costs are priced at accumulation time, so a later SetModel never
// re-prices what was already counted.
type Tracker struct {
	mu      sync.Mutex
	model   string
	pricing ModelPricing

	inputTokens  int
	outputTokens int
	inputCost    float64
	outputCost   float64
}

// New creates a tracker priced at the default tier.
func New() *Tracker {
	return &Tracker{pricing: DefaultPricing}
}

// SetModel switches the pricing tier for future accumulation. Unknown
// model ids fall back to the default tier.
func (t *Tracker) SetModel(model string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.model = model
	t.pricing = PricingFor(model)
}

// Model returns the active model id.
func (t *Tracker) Model() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.model
}

// ProcessEvent classifies an event's textual payload as input-bound or
// output-bound and accumulates the estimated tokens and their cost.
func (t *Tracker) ProcessEvent(ev hookevent.Event) {
	switch ev.Kind {
	case hookevent.KindSessionStart:
		if ev.Model != "" {
			t.SetModel(ev.Model)
		}
	case hookevent.KindUserPromptSubmit:
		t.addInput(tokens.Estimate(ev.PromptChars))
	case hookevent.KindPostToolUse:
		// The input echo travels back up to the model on the next turn;
		// the response content is model output territory.
		t.addInput(tokens.Estimate(ev.InputChars))
		t.addOutput(tokens.Estimate(ev.ResponseChars))
	}
}

// HandleEvent makes the tracker usable as a lifecycle fan-out sink.
func (t *Tracker) HandleEvent(ev hookevent.Event) { t.ProcessEvent(ev) }

// GetCost returns the accumulated estimate.
func (t *Tracker) GetCost() Estimate {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Estimate{
		InputTokens:  t.inputTokens,
		OutputTokens: t.outputTokens,
		InputCost:    t.inputCost,
		OutputCost:   t.outputCost,
		TotalCost:    t.inputCost + t.outputCost,
	}
}

// Reset zeroes the accumulated tokens and costs. The active model and its
// pricing tier are retained.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputTokens = 0
	t.outputTokens = 0
	t.inputCost = 0
	t.outputCost = 0
}

func (t *Tracker) addInput(n int) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputTokens += n
	t.inputCost += t.pricing.inputCost(n)
}

func (t *Tracker) addOutput(n int) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outputTokens += n
	t.outputCost += t.pricing.outputCost(n)
}
