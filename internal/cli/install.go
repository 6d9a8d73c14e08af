package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ccdash/internal/hooks"
)

var installSettings string

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the event hooks into the agent's settings file",
	Long: `install creates the event pipe and registers a ccdash hook for every
subscribed lifecycle event in the agent's settings file. Existing foreign
hooks are preserved; the previous settings file is kept as a .backup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newHookManager()
		if err != nil {
			return err
		}

		if err := hooks.EnsureFIFO(cfg.PipePath); err != nil {
			return err
		}
		if err := m.Install(); err != nil {
			return err
		}

		fmt.Printf("Installed hooks for %d events into %s\n", len(hooks.HookEvents), settingsPath())
		fmt.Printf("Event pipe: %s\n", cfg.PipePath)
		return nil
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the ccdash hooks and the event pipe",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newHookManager()
		if err != nil {
			return err
		}

		if err := m.Uninstall(); err != nil {
			return err
		}
		if err := hooks.RemoveFIFO(cfg.PipePath); err != nil {
			return err
		}

		fmt.Printf("Removed ccdash hooks from %s\n", settingsPath())
		return nil
	},
}

var hooksStatusCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Show hook installation status",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newHookManager()
		if err != nil {
			return err
		}

		status, err := m.Status()
		if err != nil {
			return err
		}

		for _, st := range status {
			mark := "✗"
			if st.Installed {
				mark = "✓"
			}
			line := fmt.Sprintf("%s %s", mark, st.Event)
			if st.Foreign > 0 {
				line += fmt.Sprintf(" (+%d foreign)", st.Foreign)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func newHookManager() (*hooks.Manager, error) {
	bin, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating ccdash binary: %w", err)
	}
	bin, err = filepath.EvalSymlinks(bin)
	if err != nil {
		return nil, err
	}
	return hooks.NewManager(settingsPath(), cfg.PipePath, bin), nil
}

func settingsPath() string {
	if installSettings != "" {
		return installSettings
	}
	return cfg.MCP.SettingsPath
}

func init() {
	installCmd.Flags().StringVar(&installSettings, "settings", "", "agent settings file (default from config)")
	uninstallCmd.Flags().StringVar(&installSettings, "settings", "", "agent settings file (default from config)")
	hooksStatusCmd.Flags().StringVar(&installSettings, "settings", "", "agent settings file (default from config)")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(hooksStatusCmd)
}
