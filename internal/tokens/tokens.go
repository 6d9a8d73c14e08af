// Package tokens provides rough token estimation for context and cost tracking.
//
// IMPORTANT: These are ESTIMATES, not exact measurements. No tokenizer is
// invoked; counts are derived from character lengths and should never be
// presented as exact anywhere in the UI.
package tokens

import (
	"regexp"
	"strings"
)

// CharsPerToken is the heuristic divisor applied to serialized payload text.
// ~4 characters per token is a reasonable average for English prose and code
// across common tokenizers.
const CharsPerToken = 4

// Estimate returns the estimated token count for a payload of the given
// character length, rounding up so short payloads never count as zero.
func Estimate(chars int) int {
	if chars <= 0 {
		return 0
	}
	return (chars + CharsPerToken - 1) / CharsPerToken
}

// EstimateText estimates tokens for a text payload.
func EstimateText(text string) int {
	return Estimate(len(text))
}

// ContextLimits maps model identifiers to their approximate context window
// sizes in tokens. Values are conservative and may lag behind model updates.
var ContextLimits = map[string]int{
	// Anthropic Claude models
	"claude-opus":   200000,
	"claude-sonnet": 200000,
	"claude-haiku":  200000,

	// OpenAI models
	"gpt-4":   128000,
	"gpt-4o":  128000,
	"gpt-5":   256000,
	"o1":      128000,
	"o3-mini": 200000,
	"codex":   128000,

	// Google models
	"gemini-pro":   1000000,
	"gemini-flash": 1000000,
}

// DefaultContextLimit is used when a model is not recognized.
const DefaultContextLimit = 200000

var dateSuffix = regexp.MustCompile(`-\d{8}$`)

// ContextLimit returns the context window size for a model identifier.
// Unrecognized models fall back to DefaultContextLimit.
func ContextLimit(model string) int {
	if limit, ok := ContextLimits[model]; ok {
		return limit
	}
	normalized := NormalizeModel(model)
	if limit, ok := ContextLimits[normalized]; ok {
		return limit
	}
	return DefaultContextLimit
}

// NormalizeModel reduces a model identifier to a canonical family name for
// table lookups. Handles variants like "claude-sonnet-4-5-20250929".
func NormalizeModel(model string) string {
	model = strings.ToLower(strings.TrimSpace(model))
	model = dateSuffix.ReplaceAllString(model, "")

	if strings.Contains(model, "claude") || strings.HasPrefix(model, "opus") ||
		strings.HasPrefix(model, "sonnet") || strings.HasPrefix(model, "haiku") {
		switch {
		case strings.Contains(model, "opus"):
			return "claude-opus"
		case strings.Contains(model, "haiku"):
			return "claude-haiku"
		default:
			return "claude-sonnet"
		}
	}

	if strings.Contains(model, "gemini") {
		if strings.Contains(model, "flash") {
			return "gemini-flash"
		}
		return "gemini-pro"
	}

	if strings.Contains(model, "gpt-5") {
		return "gpt-5"
	}
	if strings.Contains(model, "gpt-4o") {
		return "gpt-4o"
	}
	if strings.Contains(model, "gpt-4") {
		return "gpt-4"
	}

	return model
}
