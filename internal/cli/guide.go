package cli

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	isatty "github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

//go:embed guide.md
var guideMD string

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show the setup and usage guide",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Plain markdown when piped.
		if !isatty.IsTerminal(os.Stdout.Fd()) {
			fmt.Print(guideMD)
			return nil
		}

		width := 80
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && w < 100 {
			width = w
		}

		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			fmt.Print(guideMD)
			return nil
		}

		out, err := r.Render(guideMD)
		if err != nil {
			fmt.Print(guideMD)
			return nil
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(guideCmd)
}
