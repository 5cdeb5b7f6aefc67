package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/idcable/internal/service/guide"
)

// NewShowCommand creates the show channel command
func NewShowCommand(service guide.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [CHANNEL_ID]",
		Short: "Show a channel and its stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			channelID := args[0]
			format, _ := cmd.Flags().GetString("format")

			formatter, err := NewFormatter(format)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			guideService, cleanup, err := resolveService(ctx, service)
			if err != nil {
				return fmt.Errorf("failed to create guide service: %w", err)
			}
			defer cleanup()

			if err := guideService.Load(ctx); err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}

			channel, err := guideService.Channel(channelID)
			if err != nil {
				return fmt.Errorf("failed to get channel: %w", err)
			}

			favorites, _, err := guideService.Favorites()
			if err != nil {
				return fmt.Errorf("failed to read favorites: %w", err)
			}
			favorite := false
			for _, fav := range favorites {
				if fav.ID == channel.ID {
					favorite = true
					break
				}
			}

			output, err := formatter.FormatChannel(channel, favorite)
			if err != nil {
				return err
			}
			cmd.Print(output)
			return nil
		},
	}

	cmd.Flags().String("format", "text", "Output format (text, json)")

	return cmd
}
