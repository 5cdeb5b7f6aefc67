package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/idcable/internal/config"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database operations for the postgres storage backend",
}

// dbMigrateCmd applies the embedded migrations
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("database_url is not configured")
		}

		applied, err := config.RunMigrations(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		if applied {
			cmd.Println("Migrations applied.")
		} else {
			cmd.Println("Database is up to date.")
		}
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	rootCmd.AddCommand(dbCmd)
}
