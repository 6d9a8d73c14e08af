package cost

import (
	"github.com/Dicklesworthstone/ccdash/internal/tokens"
)

// ModelPricing holds per-model prices in USD per million tokens.
// These are published list prices and will drift; the figures they produce
// are estimates on top of estimated token counts, never a bill.
type ModelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// Pricing maps canonical model families to their prices.
var Pricing = map[string]ModelPricing{
	// Anthropic
	"claude-opus":   {InputPerMillion: 15.00, OutputPerMillion: 75.00},
	"claude-sonnet": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"claude-haiku":  {InputPerMillion: 0.80, OutputPerMillion: 4.00},

	// OpenAI
	"gpt-4":   {InputPerMillion: 30.00, OutputPerMillion: 60.00},
	"gpt-4o":  {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-5":   {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"o1":      {InputPerMillion: 15.00, OutputPerMillion: 60.00},
	"o3-mini": {InputPerMillion: 1.10, OutputPerMillion: 4.40},

	// Google
	"gemini-pro":   {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"gemini-flash": {InputPerMillion: 0.30, OutputPerMillion: 2.50},
}

// DefaultPricing is the fallback tier for unknown model ids.
var DefaultPricing = ModelPricing{InputPerMillion: 3.00, OutputPerMillion: 15.00}

// PricingFor returns the pricing for a model id, falling back to
// DefaultPricing for unknown models.
func PricingFor(model string) ModelPricing {
	if p, ok := Pricing[model]; ok {
		return p
	}
	if p, ok := Pricing[tokens.NormalizeModel(model)]; ok {
		return p
	}
	return DefaultPricing
}

// inputCost returns the price of n input tokens.
func (p ModelPricing) inputCost(n int) float64 {
	return float64(n) * p.InputPerMillion / 1e6
}

// outputCost returns the price of n output tokens.
func (p ModelPricing) outputCost(n int) float64 {
	return float64(n) * p.OutputPerMillion / 1e6
}
