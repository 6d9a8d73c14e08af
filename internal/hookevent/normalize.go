package hookevent

import (
	"encoding/json"
	"time"
)

// Raw is one undecoded record from the transport. Any field may be absent;
// no schema is enforced at this layer. Unknown fields are tolerated and
// dropped.
type Raw struct {
	Event   string   `json:"event"`
	Session string   `json:"session"`
	TS      *float64 `json:"ts"`

	Tool      string          `json:"tool"`
	ToolUseID string          `json:"tool_use_id"`
	Input     json.RawMessage `json:"input"`
	Response  json.RawMessage `json:"response"`
	Prompt    string          `json:"prompt"`
	Model     string          `json:"model"`
	Trigger   string          `json:"trigger"`
}

// msThreshold separates epoch seconds from epoch milliseconds. Second
// timestamps are ~1.7e9; millisecond timestamps are ~1.7e12.
const msThreshold = 1e12

// maxDiagnosticLine bounds how much of a bad record is echoed into
// ParseError for the diagnostic sink.
const maxDiagnosticLine = 200

// Decode parses a raw transport line into a Raw record.
// A line that is not a JSON object (or whose ts is non-numeric) yields a
// ParseError.
func Decode(line []byte) (Raw, error) {
	var raw Raw
	if err := json.Unmarshal(line, &raw); err != nil {
		return Raw{}, &ParseError{
			Reason: "invalid JSON: " + err.Error(),
			Line:   truncateLine(line),
		}
	}
	return raw, nil
}

// Normalize converts a Raw record into a typed Event.
// A record missing event, session, or ts is a ParseError. Unknown event
// names normalize to KindUnknown; payload fields default rather than fail.
func Normalize(raw Raw) (Event, error) {
	if raw.Event == "" {
		return Event{}, &ParseError{Reason: "missing event name"}
	}
	if raw.Session == "" {
		return Event{}, &ParseError{Reason: "missing session id"}
	}
	if raw.TS == nil {
		return Event{}, &ParseError{Reason: "missing or non-numeric ts"}
	}

	ev := Event{
		Kind:      kindOf(raw.Event),
		SessionID: raw.Session,
		Timestamp: parseTimestamp(*raw.TS),
		Tool:      raw.Tool,
		ToolUseID: raw.ToolUseID,
		Model:     raw.Model,
		Trigger:   raw.Trigger,
	}

	ev.InputChars = len(raw.Input)
	ev.ResponseChars = len(raw.Response)
	ev.PromptChars = len(raw.Prompt)
	ev.ResponseError = responseFlagsError(raw.Response)

	return ev, nil
}

// NormalizeLine decodes and normalizes a transport line in one step.
func NormalizeLine(line []byte) (Event, error) {
	raw, err := Decode(line)
	if err != nil {
		return Event{}, err
	}
	ev, err := Normalize(raw)
	if err != nil {
		if pe, ok := err.(*ParseError); ok && pe.Line == "" {
			pe.Line = truncateLine(line)
		}
		return Event{}, err
	}
	return ev, nil
}

func kindOf(name string) Kind {
	switch Kind(name) {
	case KindSessionStart, KindPreToolUse, KindPostToolUse,
		KindUserPromptSubmit, KindStop, KindSubagentStop, KindPreCompact:
		return Kind(name)
	}
	return KindUnknown
}

// parseTimestamp accepts epoch seconds or milliseconds.
func parseTimestamp(ts float64) time.Time {
	if ts >= msThreshold {
		return time.UnixMilli(int64(ts)).UTC()
	}
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}

// responseFlagsError checks a tool response payload for an is_error flag.
// Responses that are not JSON objects simply report no error.
func responseFlagsError(response json.RawMessage) bool {
	if len(response) == 0 {
		return false
	}
	var probe struct {
		IsError bool `json:"is_error"`
	}
	if err := json.Unmarshal(response, &probe); err != nil {
		return false
	}
	return probe.IsError
}

func truncateLine(line []byte) string {
	if len(line) > maxDiagnosticLine {
		return string(line[:maxDiagnosticLine]) + "..."
	}
	return string(line)
}
