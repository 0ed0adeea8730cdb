package main

import (
	"fmt"
	"os"

	"supplier-portal/pkg/config"
	"supplier-portal/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "supplier-portal",
	Short: "Supplier evaluation portal",
	Long:  `Rates suppliers by purchase order, ranks them, runs reputation lookups and tracks penalties for managers.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		if err := logger.InitLogger(cfg); err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		logger.GetLogger().Info("Configuration loaded", cfg.LogConfig()...)
		return nil
	},
	// Running without a subcommand starts the server
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	_ = zap.L().Sync()
}
