// Package emit implements the producer side of the event transport: it is
// invoked by the host agent's hook callbacks, converts the hook payload on
// stdin into one transport record, and appends it to the FIFO.
//
// Hooks run inside the agent's critical path, so emit must never block or
// fail loudly: with no dashboard reading the pipe, records are silently
// dropped.
package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// payload is the subset of the host hook input we forward. Unknown fields
// are ignored.
type payload struct {
	SessionID    string          `json:"session_id"`
	ToolName     string          `json:"tool_name"`
	ToolUseID    string          `json:"tool_use_id"`
	ToolInput    json.RawMessage `json:"tool_input"`
	ToolResponse json.RawMessage `json:"tool_response"`
	Prompt       string          `json:"prompt"`
	Model        string          `json:"model"`
	Trigger      string          `json:"trigger"`
}

// record is the transport wire format consumed by the reader.
type record struct {
	Event   string  `json:"event"`
	Session string  `json:"session"`
	TS      float64 `json:"ts"`

	Tool      string          `json:"tool,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	Response  json.RawMessage `json:"response,omitempty"`
	Prompt    string          `json:"prompt,omitempty"`
	Model     string          `json:"model,omitempty"`
	Trigger   string          `json:"trigger,omitempty"`
}

// Emit reads a hook payload from in and appends one record for event to
// the FIFO at pipePath. A pipe with no reader drops the record silently.
func Emit(event, pipePath string, in io.Reader) error {
	var p payload
	if data, err := io.ReadAll(in); err == nil && len(data) > 0 {
		// A hook payload we cannot parse still yields an event; the
		// dashboard can count a tool call without its sizes.
		json.Unmarshal(data, &p)
	}

	if p.SessionID == "" {
		// Without a session id the record would be quarantined downstream
		// anyway.
		return fmt.Errorf("hook payload has no session_id")
	}

	rec := record{
		Event:     event,
		Session:   p.SessionID,
		TS:        float64(time.Now().UnixMilli()),
		Tool:      p.ToolName,
		ToolUseID: p.ToolUseID,
		Input:     p.ToolInput,
		Response:  p.ToolResponse,
		Prompt:    p.Prompt,
		Model:     p.Model,
		Trigger:   p.Trigger,
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	return writePipe(pipePath, line)
}

// writePipe appends one record without blocking the hook. Opening a FIFO
// write-only and non-blocking fails with ENXIO when no reader is attached;
// that is the silent-drop case, not an error.
func writePipe(path string, line []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|nonblock, 0)
	if err != nil {
		if isNoReader(err) || os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening transport: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		if isNoReader(err) {
			return nil
		}
		return fmt.Errorf("writing transport: %w", err)
	}
	return nil
}
