// Package hooks installs the ccdash event hooks into the host agent's
// settings file. Each hook pipes its payload through `ccdash emit`, which
// appends one JSON record to the event transport.
package hooks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotInstalled is returned by Uninstall when no ccdash hooks exist.
var ErrNotInstalled = errors.New("ccdash hooks not installed")

// marker identifies hook commands managed by ccdash.
const marker = "ccdash emit"

// HookEvents are the lifecycle points ccdash subscribes to.
var HookEvents = []string{
	"SessionStart",
	"PreToolUse",
	"PostToolUse",
	"UserPromptSubmit",
	"Stop",
	"SubagentStop",
	"PreCompact",
}

// hookCommand is one command entry in the host settings.
type hookCommand struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

// hookMatcher groups commands under an optional tool matcher.
type hookMatcher struct {
	Matcher string        `json:"matcher,omitempty"`
	Hooks   []hookCommand `json:"hooks"`
}

// EventStatus reports hook installation state for one event.
type EventStatus struct {
	Event     string `json:"event"`
	Installed bool   `json:"installed"`
	Foreign   int    `json:"foreign"`
}

// Manager reads and rewrites the hooks section of the host settings file,
// preserving every unrelated setting byte for byte.
type Manager struct {
	settingsPath string
	pipePath     string
	binPath      string
}

// NewManager creates a manager for the settings file at settingsPath.
// binPath is the ccdash binary the hook commands will invoke.
func NewManager(settingsPath, pipePath, binPath string) *Manager {
	return &Manager{
		settingsPath: settingsPath,
		pipePath:     pipePath,
		binPath:      binPath,
	}
}

// Command returns the hook command line for one event.
func (m *Manager) Command(event string) string {
	return fmt.Sprintf("%s emit %s --pipe %s", quoteShell(m.binPath), event, quoteShell(m.pipePath))
}

// Install writes a ccdash hook for every subscribed event. Existing ccdash
// hooks are replaced; foreign hooks on the same events are left in place.
// The previous settings file is kept as a .backup alongside.
func (m *Manager) Install() error {
	settings, hooks, err := m.load()
	if err != nil {
		return err
	}

	for _, event := range HookEvents {
		entries := removeManaged(hooks[event])
		entries = append(entries, hookMatcher{
			Hooks: []hookCommand{{Type: "command", Command: m.Command(event)}},
		})
		hooks[event] = entries
	}

	return m.save(settings, hooks, true)
}

// Uninstall removes every ccdash hook, leaving foreign hooks untouched.
func (m *Manager) Uninstall() error {
	settings, hooks, err := m.load()
	if err != nil {
		return err
	}

	found := false
	for event, entries := range hooks {
		kept := removeManaged(entries)
		if len(kept) != len(entries) {
			found = true
		}
		if len(kept) == 0 {
			delete(hooks, event)
		} else {
			hooks[event] = kept
		}
	}
	if !found {
		return ErrNotInstalled
	}

	return m.save(settings, hooks, false)
}

// Status reports installation state per event.
func (m *Manager) Status() ([]EventStatus, error) {
	_, hooks, err := m.load()
	if err != nil {
		return nil, err
	}

	out := make([]EventStatus, 0, len(HookEvents))
	for _, event := range HookEvents {
		st := EventStatus{Event: event}
		for _, entry := range hooks[event] {
			for _, h := range entry.Hooks {
				if isManaged(h.Command) {
					st.Installed = true
				} else {
					st.Foreign++
				}
			}
		}
		out = append(out, st)
	}
	return out, nil
}

// load reads the settings file into a raw top-level map plus the decoded
// hooks section. A missing file yields empty settings.
func (m *Manager) load() (map[string]json.RawMessage, map[string][]hookMatcher, error) {
	settings := map[string]json.RawMessage{}
	hooks := map[string][]hookMatcher{}

	data, err := os.ReadFile(m.settingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, hooks, nil
		}
		return nil, nil, fmt.Errorf("reading settings: %w", err)
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, nil, fmt.Errorf("parsing settings: %w", err)
	}
	if raw, ok := settings["hooks"]; ok {
		if err := json.Unmarshal(raw, &hooks); err != nil {
			return nil, nil, fmt.Errorf("parsing hooks section: %w", err)
		}
	}
	return settings, hooks, nil
}

// save writes the settings back, optionally keeping a backup of the
// previous file.
func (m *Manager) save(settings map[string]json.RawMessage, hooks map[string][]hookMatcher, backup bool) error {
	if len(hooks) == 0 {
		delete(settings, "hooks")
	} else {
		raw, err := json.Marshal(hooks)
		if err != nil {
			return err
		}
		settings["hooks"] = raw
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if backup {
		if prev, err := os.ReadFile(m.settingsPath); err == nil {
			if err := os.WriteFile(m.settingsPath+".backup", prev, 0o644); err != nil {
				return fmt.Errorf("backing up settings: %w", err)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(m.settingsPath), 0o755); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}
	if err := os.WriteFile(m.settingsPath, data, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

func removeManaged(entries []hookMatcher) []hookMatcher {
	kept := entries[:0:0]
	for _, entry := range entries {
		commands := entry.Hooks[:0:0]
		for _, h := range entry.Hooks {
			if !isManaged(h.Command) {
				commands = append(commands, h)
			}
		}
		if len(commands) > 0 {
			entry.Hooks = commands
			kept = append(kept, entry)
		}
	}
	return kept
}

func isManaged(command string) bool {
	return strings.Contains(command, marker)
}

// quoteShell quotes a string for safe use in a shell command.
func quoteShell(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}
