package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ccdash/internal/emit"
)

var emitPipe string

var emitCmd = &cobra.Command{
	Use:   "emit <event>",
	Short: "Forward a hook payload from stdin to the event pipe",
	Long: `emit is the producer side of the dashboard: the host agent's hook
callbacks invoke it with the hook payload on stdin, and it appends one
JSON record to the event pipe. With no dashboard reading the pipe the
record is dropped silently, so hooks never block the agent.`,
	Args:   cobra.ExactArgs(1),
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		pipePath := emitPipe
		if pipePath == "" {
			pipePath = cfg.PipePath
		}
		return emit.Emit(args[0], pipePath, os.Stdin)
	},
}

func init() {
	emitCmd.Flags().StringVar(&emitPipe, "pipe", "", "event pipe path (default from config)")
	rootCmd.AddCommand(emitCmd)
}
