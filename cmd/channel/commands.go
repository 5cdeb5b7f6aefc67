package channel

import (
	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/idcable/internal/service/guide"
)

// NewChannelCommand creates the main channel command
func NewChannelCommand(service guide.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Browse playable channels",
		Long:  `List, filter and inspect the channels that have a playable HTTPS stream.`,
	}

	cmd.AddCommand(NewListCommand(service))
	cmd.AddCommand(NewShowCommand(service))

	return cmd
}
