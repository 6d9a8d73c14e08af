//go:build unix

package emit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/Dicklesworthstone/ccdash/internal/hookevent"
)

func makeFIFO(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.pipe")
	if err := syscall.Mkfifo(path, 0o644); err != nil {
		t.Fatalf("mkfifo: %v", err)
	}
	return path
}

func TestEmitWritesNormalizableRecord(t *testing.T) {
	path := makeFIFO(t)

	// Hold a read end open so the non-blocking write-side open succeeds.
	rd, err := os.OpenFile(path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("opening read end: %v", err)
	}
	defer rd.Close()

	stdin := strings.NewReader(`{
		"session_id": "s1",
		"tool_name": "Read",
		"tool_use_id": "use-7",
		"tool_response": {"content": "file text", "is_error": false}
	}`)
	if err := Emit("PostToolUse", path, stdin); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	buf := make([]byte, 4096)
	n, err := rd.Read(buf)
	if err != nil {
		t.Fatalf("reading pipe: %v", err)
	}
	line := buf[:n]

	if !json.Valid([]byte(strings.TrimSpace(string(line)))) {
		t.Fatalf("record is not JSON: %q", line)
	}

	ev, err := hookevent.NormalizeLine([]byte(strings.TrimSpace(string(line))))
	if err != nil {
		t.Fatalf("emitted record failed normalization: %v", err)
	}
	if ev.Kind != hookevent.KindPostToolUse || ev.SessionID != "s1" {
		t.Errorf("event = %+v", ev)
	}
	if ev.Tool != "Read" || ev.ToolUseID != "use-7" {
		t.Errorf("tool fields = %q/%q", ev.Tool, ev.ToolUseID)
	}
	if ev.ResponseChars == 0 {
		t.Errorf("response chars = 0, want payload length")
	}
}

func TestEmitNoReaderDropsSilently(t *testing.T) {
	path := makeFIFO(t)

	stdin := strings.NewReader(`{"session_id": "s1"}`)
	if err := Emit("Stop", path, stdin); err != nil {
		t.Errorf("Emit with no reader = %v, want nil", err)
	}
}

func TestEmitMissingPipeDropsSilently(t *testing.T) {
	stdin := strings.NewReader(`{"session_id": "s1"}`)
	if err := Emit("Stop", filepath.Join(t.TempDir(), "nope.pipe"), stdin); err != nil {
		t.Errorf("Emit with missing pipe = %v, want nil", err)
	}
}

func TestEmitRejectsPayloadWithoutSession(t *testing.T) {
	path := makeFIFO(t)
	if err := Emit("Stop", path, strings.NewReader(`{}`)); err == nil {
		t.Fatal("Emit accepted payload without session_id")
	}
}
