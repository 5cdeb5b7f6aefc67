package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/idcable/internal/app"
)

// regionCmd represents the region command
var regionCmd = &cobra.Command{
	Use:   "region",
	Short: "Region operations",
}

// regionListCmd lists the regions usable with --region
var regionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List regions",
	Long:  `List region codes and the countries each one covers.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		a, cleanup, err := app.Build(ctx, app.Options{})
		if err != nil {
			return err
		}
		defer cleanup()

		if err := a.Guide.Load(ctx); err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}

		regions, err := a.Guide.Regions()
		if err != nil {
			return err
		}

		for _, r := range regions {
			cmd.Printf("%-8s %-32s %s\n", r.Code, r.Name, strings.Join(r.Countries, ","))
		}
		return nil
	},
}

// categoryCmd represents the category command
var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Category operations",
}

// categoryListCmd lists the categories usable with --category
var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Long:  `List category ids sorted by display name.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		a, cleanup, err := app.Build(ctx, app.Options{})
		if err != nil {
			return err
		}
		defer cleanup()

		if err := a.Guide.Load(ctx); err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}

		categories, err := a.Guide.Categories()
		if err != nil {
			return err
		}

		for _, c := range categories {
			cmd.Printf("%-16s %s\n", c.ID, c.Name)
		}
		return nil
	},
}

func init() {
	regionCmd.AddCommand(regionListCmd)
	categoryCmd.AddCommand(categoryListCmd)
	rootCmd.AddCommand(regionCmd)
	rootCmd.AddCommand(categoryCmd)
}
