package cmd

import (
	"academy/config"
	"academy/database"
	"academy/logger"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "academy",
	Short: "Course enrollment and certificate server",
	Long:  "academy serves the enrollment, exam, membership and certificate API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		if p, _ := cmd.Flags().GetString("db"); p != "" {
			cfg.DBName = p
		}
		return logger.Init(cfg.LogLevel, cfg.LogFormat)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database name or sqlite file (overrides DB_NAME)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(setAdminCmd)
}

// connect opens and migrates the configured database.
func connect() (*gorm.DB, error) {
	if err := database.ConnectDb(config.AppConfig, logger.Log); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return database.Database.Db, nil
}

func syncLogger() {
	_ = logger.Log.Sync()
}
