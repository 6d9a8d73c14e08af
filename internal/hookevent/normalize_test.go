package hookevent

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeLineKnownEvents(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Kind
	}{
		{"session start", `{"event":"SessionStart","session":"s1","ts":1700000000}`, KindSessionStart},
		{"pre tool", `{"event":"PreToolUse","session":"s1","ts":1700000000,"tool":"Read"}`, KindPreToolUse},
		{"post tool", `{"event":"PostToolUse","session":"s1","ts":1700000001,"tool":"Read","response":"ok"}`, KindPostToolUse},
		{"prompt", `{"event":"UserPromptSubmit","session":"s1","ts":1700000002,"prompt":"hi"}`, KindUserPromptSubmit},
		{"stop", `{"event":"Stop","session":"s1","ts":1700000003}`, KindStop},
		{"subagent stop", `{"event":"SubagentStop","session":"s1","ts":1700000004}`, KindSubagentStop},
		{"pre compact", `{"event":"PreCompact","session":"s1","ts":1700000005,"trigger":"auto"}`, KindPreCompact},
		{"unknown forwarded", `{"event":"Notification","session":"s1","ts":1700000006}`, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := NormalizeLine([]byte(tt.line))
			if err != nil {
				t.Fatalf("NormalizeLine: %v", err)
			}
			if ev.Kind != tt.want {
				t.Errorf("Kind = %q, want %q", ev.Kind, tt.want)
			}
			if ev.SessionID != "s1" {
				t.Errorf("SessionID = %q, want s1", ev.SessionID)
			}
		})
	}
}

func TestNormalizeLineMalformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"not json", `this is not json`},
		{"missing event", `{"session":"s1","ts":1700000000}`},
		{"missing session", `{"event":"Stop","ts":1700000000}`},
		{"missing ts", `{"event":"Stop","session":"s1"}`},
		{"non-numeric ts", `{"event":"Stop","session":"s1","ts":"soon"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeLine([]byte(tt.line))
			if err == nil {
				t.Fatal("expected ParseError, got nil")
			}
			if !IsParseError(err) {
				t.Errorf("error is %T, want *ParseError", err)
			}
		})
	}
}

func TestTimestampSecondsAndMillis(t *testing.T) {
	sec, err := NormalizeLine([]byte(`{"event":"Stop","session":"s1","ts":1700000000}`))
	if err != nil {
		t.Fatalf("seconds: %v", err)
	}
	ms, err := NormalizeLine([]byte(`{"event":"Stop","session":"s1","ts":1700000000000}`))
	if err != nil {
		t.Fatalf("millis: %v", err)
	}

	want := time.Unix(1700000000, 0).UTC()
	if !sec.Timestamp.Equal(want) {
		t.Errorf("seconds timestamp = %v, want %v", sec.Timestamp, want)
	}
	if !ms.Timestamp.Equal(want) {
		t.Errorf("millis timestamp = %v, want %v", ms.Timestamp, want)
	}
}

func TestNormalizePayloadDefaults(t *testing.T) {
	// Absent response yields a zero-length content estimate, not an error.
	ev, err := NormalizeLine([]byte(`{"event":"PostToolUse","session":"s1","ts":1700000000,"tool":"Bash"}`))
	if err != nil {
		t.Fatalf("NormalizeLine: %v", err)
	}
	if ev.ResponseChars != 0 || ev.InputChars != 0 {
		t.Errorf("chars = (%d,%d), want (0,0)", ev.InputChars, ev.ResponseChars)
	}
	if ev.ResponseError {
		t.Error("ResponseError should default to false")
	}
}

func TestNormalizeResponseSizes(t *testing.T) {
	body := strings.Repeat("x", 400)
	ev, err := NormalizeLine([]byte(`{"event":"PostToolUse","session":"s1","ts":1700000000,"tool":"Read","response":"` + body + `"}`))
	if err != nil {
		t.Fatalf("NormalizeLine: %v", err)
	}
	// Serialized payload length includes the surrounding quotes.
	if ev.ResponseChars != 402 {
		t.Errorf("ResponseChars = %d, want 402", ev.ResponseChars)
	}
}

func TestNormalizeResponseIsError(t *testing.T) {
	ev, err := NormalizeLine([]byte(`{"event":"PostToolUse","session":"s1","ts":1700000000,"tool":"Bash","response":{"is_error":true,"content":"boom"}}`))
	if err != nil {
		t.Fatalf("NormalizeLine: %v", err)
	}
	if !ev.ResponseError {
		t.Error("ResponseError = false, want true")
	}
}

func TestUnknownFieldsTolerated(t *testing.T) {
	ev, err := NormalizeLine([]byte(`{"event":"Stop","session":"s1","ts":1700000000,"cwd":"/tmp","extra":{"a":1}}`))
	if err != nil {
		t.Fatalf("NormalizeLine: %v", err)
	}
	if ev.Kind != KindStop {
		t.Errorf("Kind = %q, want Stop", ev.Kind)
	}
}
