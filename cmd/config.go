package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/idcable/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
	Long:  `Manage configuration settings for idcable.`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init [DATABASE_URL]",
	Short: "Initialize configuration file",
	Long: `Create a new configuration file with default settings.
Passing a DATABASE_URL selects the postgres favorites storage.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var databaseURL string
		if len(args) > 0 {
			databaseURL = args[0]
		}

		if err := config.InitConfig(databaseURL); err != nil {
			return err
		}

		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		cmd.Printf("Created configuration file: %s\n", configPath)
		if databaseURL != "" {
			cmd.Println("Run \"idcable db migrate\" to create the favorites table.")
		}

		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration file path and the effective settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		cmd.Printf("Configuration file: %s\n\n", configPath)

		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		storagePath, err := cfg.StoragePath()
		if err != nil {
			return err
		}

		cmd.Printf("API_BASE: %s\n", cfg.APIBase)
		cmd.Printf("PROXY_URL: %s\n", cfg.ProxyURL)
		cmd.Printf("PAGE_SIZE: %d\n", cfg.PageSize)
		cmd.Printf("LOCALE: %s\n", cfg.Locale)
		cmd.Printf("STORAGE: %s\n", cfg.Storage.Backend)
		if cfg.Storage.Backend == config.StoragePostgres {
			cmd.Printf("DATABASE_URL: %s\n", cfg.DatabaseURL)
		} else {
			cmd.Printf("STORAGE_PATH: %s\n", storagePath)
		}
		cmd.Printf("PLAYER: %s (%s)\n", cfg.Player.Command, cfg.Player.Engine)
		cmd.Printf("LOG: %s %s\n", cfg.Log.Level, cfg.Log.File)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
