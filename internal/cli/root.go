// Package cli implements the ccdash command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ccdash/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config

	// Build information - set by goreleaser via ldflags.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "ccdash",
	Short: "Live terminal dashboard for a coding-agent session",
	Long: `ccdash tails the hook event stream of a coding-agent session and renders
a live dashboard: tool activity, context usage, estimated cost, session
state, and git status.

Quick Start:
  ccdash install     # Wire the agent's hooks into the event pipe
  ccdash run         # Start the dashboard
  ccdash status      # One-shot session summary without the TUI`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bare ccdash starts the dashboard.
		return runDashboard(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default "+config.DefaultPath()+")")
}
