package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ccdash/internal/config"
	"github.com/Dicklesworthstone/ccdash/internal/contexttrack"
	"github.com/Dicklesworthstone/ccdash/internal/cost"
	"github.com/Dicklesworthstone/ccdash/internal/hooks"
	"github.com/Dicklesworthstone/ccdash/internal/logging"
	"github.com/Dicklesworthstone/ccdash/internal/pipe"
	"github.com/Dicklesworthstone/ccdash/internal/poll"
	"github.com/Dicklesworthstone/ccdash/internal/session"
	"github.com/Dicklesworthstone/ccdash/internal/toolstream"
	"github.com/Dicklesworthstone/ccdash/internal/tui/dashboard"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the live dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// runDashboard wires the full pipeline and blocks until the TUI exits.
func runDashboard(ctx context.Context) error {
	level := new(slog.LevelVar)
	level.Set(logging.ParseLevel(cfg.Log.Level))
	log, closeLog, err := logging.Open(cfg.Log.Path, level)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := hooks.EnsureFIFO(cfg.PipePath); err != nil {
		return fmt.Errorf("preparing transport: %w", err)
	}

	tools := toolstream.New(toolstream.DefaultCapacity, log)
	ctxTrack := contexttrack.New()
	costs := cost.New()
	if cfg.Model != "" {
		ctxTrack.SetModel(cfg.Model)
		costs.SetModel(cfg.Model)
	}

	manager := session.NewManager(log, tools, ctxTrack, costs)
	reader := pipe.Open(cfg.PipePath, pipe.WithLogger(log))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runner := session.NewRunner(reader, manager, log, 0)
	go func() {
		if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("consume loop stopped", "err", err)
		}
	}()

	var poller *poll.Poller
	if cfg.Git.Enabled || cfg.MCP.Enabled {
		wd, _ := os.Getwd()
		gitInterval := cfg.GitInterval()
		if !cfg.Git.Enabled {
			gitInterval = 0
		}
		mcpInterval := cfg.MCPInterval()
		if !cfg.MCP.Enabled {
			mcpInterval = 0
		}
		poller = poll.New(wd, cfg.MCP.SettingsPath, gitInterval, mcpInterval, log)
		go poller.Run(ctx)
	}

	// Live config reload only adjusts what is safe to change mid-run.
	stopWatch, err := config.Watch(cfgFile, log, func(next *config.Config) {
		level.Set(logging.ParseLevel(next.Log.Level))
		log.Info("config reloaded", "log_level", next.Log.Level)
	})
	if err != nil {
		log.Warn("config watch unavailable", "err", err)
	} else {
		defer stopWatch()
	}

	model := dashboard.New(dashboard.Sources{
		Session: manager,
		Tools:   tools,
		Context: ctxTrack,
		Cost:    costs,
		Poll:    poller,
	}, cfg.RefreshInterval())

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}

	cancel()
	reader.Close()
	return nil
}
