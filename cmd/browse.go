package cmd

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/idcable/internal/app"
	"github.com/Taichi-iskw/idcable/internal/tui"
)

// browseCmd starts the interactive directory
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse channels interactively",
	Long: `Open the interactive channel grid. Search, filter by region and category,
mark favorites and play a channel in the configured media player.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		bridge := tui.NewBridge()
		a, cleanup, err := app.Build(ctx, app.Options{
			OnChange: bridge.PlayerChanged,
			Notifier: bridge,
			// The terminal belongs to the grid
			LogOutput:  io.Discard,
			PlayerArgs: []string{"--no-terminal"},
		})
		if err != nil {
			return err
		}
		defer cleanup()

		program := tea.NewProgram(tui.NewApp(ctx, a.Guide, a.Controller))
		bridge.Attach(program)

		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run interface: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
