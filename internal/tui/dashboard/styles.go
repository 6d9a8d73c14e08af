package dashboard

import "github.com/charmbracelet/lipgloss"

// Catppuccin-ish palette. The dashboard runs in long-lived terminals, so
// colors stay muted.
var (
	colGreen  = lipgloss.Color("#a6e3a1")
	colYellow = lipgloss.Color("#f9e2af")
	colRed    = lipgloss.Color("#f38ba8")
	colBlue   = lipgloss.Color("#89b4fa")
	colTeal   = lipgloss.Color("#94e2d5")
	colText   = lipgloss.Color("#cdd6f4")
	colDim    = lipgloss.Color("#6c7086")
	colSurf   = lipgloss.Color("#313244")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colBlue)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colSurf).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colText)
	dimStyle    = lipgloss.NewStyle().Foreground(colDim)
	valueStyle  = lipgloss.NewStyle().Foreground(colText)

	okStyle   = lipgloss.NewStyle().Foreground(colGreen)
	warnStyle = lipgloss.NewStyle().Foreground(colYellow)
	critStyle = lipgloss.NewStyle().Foreground(colRed)
	tealStyle = lipgloss.NewStyle().Foreground(colTeal)

	helpStyle = lipgloss.NewStyle().Foreground(colDim).MarginTop(1)
)
