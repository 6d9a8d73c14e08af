package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/Dicklesworthstone/ccdash/internal/contexttrack"
	"github.com/Dicklesworthstone/ccdash/internal/session"
	"github.com/Dicklesworthstone/ccdash/internal/toolstream"
	"github.com/Dicklesworthstone/ccdash/internal/util"
)

const (
	maxToolRows = 10
	gaugeWidth  = 24
	sparkWidth  = 24
)

// View implements tea.Model.
func (m Model) View() string {
	panelWidth := m.width/2 - 3
	if panelWidth < 30 {
		panelWidth = 30
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Width(panelWidth).Render(m.toolsPanel(panelWidth)),
		panelStyle.Width(panelWidth).Render(m.contextPanel(panelWidth)),
	)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Width(panelWidth).Render(m.costPanel()),
		panelStyle.Width(panelWidth).Render(m.repoPanel(panelWidth)),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		top,
		bottom,
		helpStyle.Render("p pause · q quit"),
	)
}

func (m Model) header() string {
	title := titleStyle.Render("ccdash")

	sessID := m.sess.SessionID
	if sessID == "" {
		sessID = "waiting for events"
	}

	parts := []string{
		title,
		dimStyle.Render("session"), valueStyle.Render(util.Truncate(sessID, 20)),
		m.stateBadge(),
	}
	if m.sess.SubagentRuns > 0 {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("subagents %d", m.sess.SubagentRuns)))
	}
	if !m.sess.LastEvent.IsZero() {
		parts = append(parts, dimStyle.Render("last event "+util.FormatAgo(m.sess.LastEvent, m.now)))
	}
	return strings.Join(parts, "  ")
}

func (m Model) stateBadge() string {
	switch m.sess.State {
	case session.StateActive:
		return okStyle.Render("● active")
	case session.StateIdle:
		return dimStyle.Render("◌ idle")
	case session.StateDisconnected:
		return warnStyle.Render(m.spin.View() + "reconnecting")
	case session.StateResetting:
		return tealStyle.Render("↺ resetting")
	default:
		return dimStyle.Render("○ init")
	}
}

func (m Model) toolsPanel(width int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Tools"))
	b.WriteString("\n")

	if len(m.tools) == 0 {
		b.WriteString(dimStyle.Render("no tool activity yet"))
		return b.String()
	}

	rows := m.tools
	if len(rows) > maxToolRows {
		rows = rows[:maxToolRows]
	}
	nameWidth := width - 16
	if nameWidth < 8 {
		nameWidth = 8
	}

	for _, e := range rows {
		b.WriteString(toolRow(e, nameWidth))
		b.WriteString("\n")
	}
	pending := 0
	for _, e := range m.tools {
		if e.Status == toolstream.StatusPending {
			pending++
		}
	}
	if pending > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d running", pending)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func toolRow(e toolstream.Entry, nameWidth int) string {
	var icon, tail string
	switch e.Status {
	case toolstream.StatusPending:
		icon = warnStyle.Render("…")
		tail = dimStyle.Render("running")
	case toolstream.StatusError:
		icon = critStyle.Render("✗")
		tail = critStyle.Render(util.FormatDuration(e.Duration))
	default:
		icon = okStyle.Render("✓")
		tail = dimStyle.Render(util.FormatDuration(e.Duration))
	}

	name := truncate.StringWithTail(e.Name, uint(nameWidth), "…")
	pad := nameWidth - runewidth.StringWidth(name)
	if pad < 0 {
		pad = 0
	}
	return fmt.Sprintf("%s %s%s %s", icon, valueStyle.Render(name), strings.Repeat(" ", pad), tail)
}

func (m Model) contextPanel(width int) string {
	h := m.health

	gw := gaugeWidth
	if gw > width-8 {
		gw = width - 8
	}

	gauge := bar(h.Percent, gw)
	var gaugeStyled string
	switch h.Status {
	case contexttrack.StatusCritical:
		gaugeStyled = critStyle.Render(gauge)
	case contexttrack.StatusWarning:
		gaugeStyled = warnStyle.Render(gauge)
	default:
		gaugeStyled = okStyle.Render(gauge)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Context"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", gaugeStyled, valueStyle.Render(fmt.Sprintf("%d%%", h.Percent)))
	fmt.Fprintf(&b, "%s %s / %s",
		dimStyle.Render("~tokens"),
		valueStyle.Render(util.FormatTokens(h.Tokens)),
		valueStyle.Render(util.FormatTokens(h.MaxTokens)))
	if h.BurnRate > 0 {
		fmt.Fprintf(&b, "  %s %s/min",
			dimStyle.Render("burn"),
			valueStyle.Render(util.FormatTokens(int(h.BurnRate))))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s out %s · in %s · msg %s\n",
		dimStyle.Render("split"),
		util.FormatTokens(h.Breakdown.ToolOutputs),
		util.FormatTokens(h.Breakdown.ToolInputs),
		util.FormatTokens(h.Breakdown.Messages))
	b.WriteString(tealStyle.Render(sparkline(h.TokenHistory, sparkWidth)))
	if h.ShouldCompact {
		b.WriteString("\n")
		b.WriteString(critStyle.Render("⚠ compaction recommended"))
	}
	if !h.LastCompaction.IsZero() {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("compacted " + util.FormatAgo(h.LastCompaction, m.now)))
	}
	return b.String()
}

func (m Model) costPanel() string {
	e := m.estimate

	var b strings.Builder
	b.WriteString(headerStyle.Render("Cost (estimated)"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("total"), valueStyle.Render(util.FormatCost(e.TotalCost)))
	fmt.Fprintf(&b, "%s %s (%s tok)\n",
		dimStyle.Render("input"),
		util.FormatCost(e.InputCost),
		util.FormatTokens(e.InputTokens))
	fmt.Fprintf(&b, "%s %s (%s tok)",
		dimStyle.Render("output"),
		util.FormatCost(e.OutputCost),
		util.FormatTokens(e.OutputTokens))
	return b.String()
}

func (m Model) repoPanel(width int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Repo"))
	b.WriteString("\n")

	if !m.polled.GitOK {
		b.WriteString(dimStyle.Render("not a git repository"))
	} else {
		g := m.polled.Git
		branch := valueStyle.Render(util.Truncate(g.Branch, width-20))
		state := okStyle.Render("clean")
		if g.Dirty {
			state = warnStyle.Render(fmt.Sprintf("+%d ~%d ?%d", g.Staged, g.Modified, g.Untracked))
		}
		fmt.Fprintf(&b, "%s %s %s %s", branch, dimStyle.Render(g.CommitShort), state, aheadBehind(g.Ahead, g.Behind))
	}

	if len(m.polled.MCP) > 0 {
		names := make([]string, 0, len(m.polled.MCP))
		for _, s := range m.polled.MCP {
			names = append(names, s.Name)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s %s",
			dimStyle.Render(fmt.Sprintf("mcp (%d)", len(names))),
			valueStyle.Render(util.Truncate(strings.Join(names, ", "), width-12)))
	}
	return b.String()
}

func aheadBehind(ahead, behind int) string {
	if ahead == 0 && behind == 0 {
		return ""
	}
	return dimStyle.Render(fmt.Sprintf("↑%d ↓%d", ahead, behind))
}
