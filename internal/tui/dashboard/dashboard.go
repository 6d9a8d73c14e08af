// Package dashboard renders the live session dashboard: tool activity,
// context usage, estimated cost, session state, and git/MCP facts. It only
// ever reads immutable snapshots from the trackers; all mutation stays on
// the event consume loop.
package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/ccdash/internal/contexttrack"
	"github.com/Dicklesworthstone/ccdash/internal/cost"
	"github.com/Dicklesworthstone/ccdash/internal/poll"
	"github.com/Dicklesworthstone/ccdash/internal/session"
	"github.com/Dicklesworthstone/ccdash/internal/toolstream"
)

// DefaultRefreshInterval is used when the config does not set one.
const DefaultRefreshInterval = 250 * time.Millisecond

// tickMsg drives the snapshot refresh.
type tickMsg time.Time

// Sources are the snapshot providers the dashboard polls on each tick.
type Sources struct {
	Session *session.Manager
	Tools   *toolstream.Tracker
	Context *contexttrack.Tracker
	Cost    *cost.Tracker
	Poll    *poll.Poller
}

// KeyMap defines the dashboard keybindings.
type KeyMap struct {
	Pause key.Binding
	Quit  key.Binding
}

var keys = KeyMap{
	Pause: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
	Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the dashboard bubbletea model.
type Model struct {
	sources  Sources
	interval time.Duration

	width  int
	height int
	paused bool

	spin spinner.Model

	// Snapshots taken on the last tick.
	sess     session.Info
	tools    []toolstream.Entry
	health   contexttrack.Health
	estimate cost.Estimate
	polled   poll.Snapshot
	now      time.Time
}

// New creates a dashboard over the given snapshot sources.
func New(sources Sources, interval time.Duration) Model {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = warnStyle

	return Model{
		sources:  sources,
		interval: interval,
		width:    80,
		height:   24,
		spin:     sp,
		now:      time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.spin.Tick)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Pause):
			m.paused = !m.paused
			return m, nil
		}
		return m, nil

	case tickMsg:
		if !m.paused {
			m.refresh(time.Time(msg))
		}
		return m, m.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

// refresh pulls fresh snapshots from every source.
func (m *Model) refresh(now time.Time) {
	m.now = now
	if m.sources.Session != nil {
		m.sess = m.sources.Session.Snapshot()
	}
	if m.sources.Tools != nil {
		m.tools = m.sources.Tools.Snapshot()
	}
	if m.sources.Context != nil {
		m.health = m.sources.Context.Snapshot()
	}
	if m.sources.Cost != nil {
		m.estimate = m.sources.Cost.GetCost()
	}
	if m.sources.Poll != nil {
		m.polled = m.sources.Poll.Snapshot()
	}
}
