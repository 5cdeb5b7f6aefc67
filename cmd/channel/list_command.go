package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/idcable/internal/directory"
	"github.com/Taichi-iskw/idcable/internal/service/guide"
)

// NewListCommand creates the list channels command
func NewListCommand(service guide.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List channels matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			region, _ := cmd.Flags().GetString("region")
			category, _ := cmd.Flags().GetString("category")
			favoritesOnly, _ := cmd.Flags().GetBool("favorites")
			page, _ := cmd.Flags().GetInt("page")
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

			listing, err := guideService.List(directory.Filter{
				Search:        search,
				Region:        region,
				Category:      category,
				FavoritesOnly: favoritesOnly,
			}, page)
			if err != nil {
				return fmt.Errorf("failed to list channels: %w", err)
			}

			output, err := formatter.FormatListing(listing)
			if err != nil {
				return err
			}
			cmd.Print(output)
			return nil
		},
	}

	cmd.Flags().String("search", "", "Case-insensitive substring of the channel name")
	cmd.Flags().String("region", directory.All, "Region code, or \"all\"")
	cmd.Flags().String("category", directory.All, "Category id, or \"all\"")
	cmd.Flags().Bool("favorites", false, "Only list favorite channels")
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().String("format", "text", "Output format (text, json)")

	return cmd
}
