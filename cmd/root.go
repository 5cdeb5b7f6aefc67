package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/idcable/cmd/channel"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "idcable",
	Short: "Browse and play free IPTV channels from the terminal",
	Long: `idcable browses the iptv-org channel directory, keeps a list of favorite
channels and plays HLS streams through an external media player.

Run "idcable browse" for the interactive grid.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(channel.NewChannelCommand(nil))
	rootCmd.AddCommand(channel.NewFavoriteCommand(nil))
}
