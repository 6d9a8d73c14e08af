// Package hookevent defines the event records emitted by the host agent's
// hook callbacks and the normalization of raw transport records into typed
// events. Malformed records are reported as ParseError values, never panics:
// the dashboard degrades gracefully when the producer misbehaves.
package hookevent

import (
	"fmt"
	"time"
)

// Kind identifies a normalized event variant.
type Kind string

const (
	KindSessionStart     Kind = "SessionStart"
	KindPreToolUse       Kind = "PreToolUse"
	KindPostToolUse      Kind = "PostToolUse"
	KindUserPromptSubmit Kind = "UserPromptSubmit"
	KindStop             Kind = "Stop"
	KindSubagentStop     Kind = "SubagentStop"
	KindPreCompact       Kind = "PreCompact"

	// KindUnknown marks event names this version does not recognize.
	// Unknown events are forwarded through the pipeline and ignored by
	// the aggregators.
	KindUnknown Kind = "Unknown"
)

// Event is a normalized hook event. Every Event carries a non-empty
// SessionID and a parsed Timestamp; all payload fields are optional and
// default to their zero values.
type Event struct {
	Kind      Kind
	SessionID string
	Timestamp time.Time

	// Tool fields (PreToolUse / PostToolUse).
	Tool      string
	ToolUseID string

	// Payload sizes in characters of the serialized payload text.
	// Token counts are derived from these by the aggregators.
	InputChars    int
	ResponseChars int
	PromptChars   int

	// ResponseError is set when a PostToolUse response flags is_error.
	ResponseError bool

	// Model is reported on SessionStart when the producer knows it.
	Model string

	// Trigger is set on PreCompact ("manual" or "auto").
	Trigger string
}

// ParseError describes a transport record that could not be normalized.
// It is a diagnostic value for the logging sink, never a fatal condition.
type ParseError struct {
	Reason string
	Line   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing hook event: %s", e.Reason)
}

// IsParseError reports whether err is a ParseError.
func IsParseError(err error) bool {
	_, ok := err.(*ParseError)
	return ok
}
