package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/idcable/internal/directory"
	"github.com/Taichi-iskw/idcable/internal/service/guide"
)

// NewFavoriteCommand creates the favorite command
func NewFavoriteCommand(service guide.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorite",
		Short: "Manage favorite channels",
	}

	cmd.AddCommand(newFavoriteToggleCommand(service))
	cmd.AddCommand(newFavoriteListCommand(service))

	return cmd
}

func newFavoriteToggleCommand(service guide.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [CHANNEL_ID]",
		Short: "Add or remove a channel from the favorites",
		Long:  `Toggle a channel id in the favorites. The id is stored as given and is not checked against the catalog.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			channelID := args[0]
			if channelID == "" {
				return fmt.Errorf("channel ID is required")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			guideService, cleanup, err := resolveService(ctx, service)
			if err != nil {
				return fmt.Errorf("failed to create guide service: %w", err)
			}
			defer cleanup()

			if err := guideService.LoadFavorites(ctx); err != nil {
				return err
			}

			favorite, err := guideService.ToggleFavorite(ctx, channelID)
			if err != nil {
				return err
			}

			if favorite {
				cmd.Printf("%s Added %s to favorites\n", directory.FavoriteGlyph, channelID)
			} else {
				cmd.Printf("%s Removed %s from favorites\n", directory.NotFavoriteGlyph, channelID)
			}
			cmd.Println(guideService.FavoritesCountText())
			return nil
		},
	}
}

func newFavoriteListCommand(service guide.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List favorite channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			channels, stale, err := guideService.Favorites()
			if err != nil {
				return fmt.Errorf("failed to list favorites: %w", err)
			}

			output, err := formatter.FormatListing(&guide.Listing{
				Channels: channels,
				Page:     directory.Paginate(len(channels), len(channels), 1),
				Total:    len(channels),
			})
			if err != nil {
				return err
			}
			cmd.Print(output)

			// Stale ids stay stored; they no longer match a playable channel
			for _, id := range stale {
				cmd.PrintErrf("stale favorite: %s\n", id)
			}
			return nil
		},
	}

	cmd.Flags().String("format", "text", "Output format (text, json)")

	return cmd
}
