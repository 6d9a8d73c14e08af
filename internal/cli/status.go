package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	isatty "github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/ccdash/internal/hooks"
	"github.com/Dicklesworthstone/ccdash/internal/poll"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "One-shot environment summary without the TUI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printStatus(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// statusPrinter adapts output to the terminal: colors only on a TTY,
// separator sized to the terminal width.
type statusPrinter struct {
	out   *termenv.Output
	color bool
	width int
}

func newStatusPrinter() *statusPrinter {
	p := &statusPrinter{
		out:   termenv.NewOutput(os.Stdout),
		color: isatty.IsTerminal(os.Stdout.Fd()),
		width: 60,
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && w < 120 {
		p.width = w
	}
	return p
}

func (p *statusPrinter) header(s string) {
	if p.color {
		s = p.out.String(s).Bold().String()
	}
	fmt.Println(s)
	fmt.Println(strings.Repeat("─", p.width))
}

func (p *statusPrinter) line(label, value string, ok bool) {
	mark := "✓"
	if !ok {
		mark = "✗"
	}
	if p.color {
		style := p.out.String(mark).Foreground(p.out.Color("1"))
		if ok {
			style = p.out.String(mark).Foreground(p.out.Color("2"))
		}
		mark = style.String()
	}
	fmt.Printf("%s %-14s %s\n", mark, label, value)
}

func printStatus(ctx context.Context) error {
	p := newStatusPrinter()
	p.header("ccdash status")

	// Transport.
	info, err := os.Stat(cfg.PipePath)
	pipeOK := err == nil && info.Mode()&os.ModeNamedPipe != 0
	detail := cfg.PipePath
	if err != nil {
		detail += " (missing, run `ccdash install`)"
	} else if !pipeOK {
		detail += " (exists but is not a FIFO)"
	}
	p.line("transport", detail, pipeOK)

	// Hooks.
	m := hooks.NewManager(settingsPath(), cfg.PipePath, "ccdash")
	if status, err := m.Status(); err == nil {
		installed := 0
		for _, st := range status {
			if st.Installed {
				installed++
			}
		}
		p.line("hooks",
			fmt.Sprintf("%d/%d events wired in %s", installed, len(status), settingsPath()),
			installed == len(status))
	} else {
		p.line("hooks", err.Error(), false)
	}

	// Git.
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	wd, _ := os.Getwd()
	if git, err := poll.FetchGit(ctx, wd); err == nil {
		state := "clean"
		if git.Dirty {
			state = fmt.Sprintf("+%d ~%d ?%d", git.Staged, git.Modified, git.Untracked)
		}
		p.line("git", fmt.Sprintf("%s @ %s (%s)", git.Branch, git.CommitShort, state), !git.Dirty)
	} else {
		p.line("git", "not a git repository", false)
	}

	// MCP servers.
	servers, err := poll.FetchMCP(cfg.MCP.SettingsPath)
	if err != nil {
		p.line("mcp", err.Error(), false)
	} else if len(servers) == 0 {
		p.line("mcp", "no servers configured", true)
	} else {
		names := make([]string, 0, len(servers))
		for _, s := range servers {
			names = append(names, s.Name)
		}
		p.line("mcp", strings.Join(names, ", "), true)
	}

	return nil
}
