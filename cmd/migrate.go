package main

import (
	"fmt"

	"supplier-portal/internal/store"
	"supplier-portal/pkg/database"
	"supplier-portal/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateSeed bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the PostgreSQL schema",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateSeed, "seed", false, "load the demo registry into an empty database")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := logger.GetLogger()

	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	if err := database.MigrateModels(store.Models()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("Database migrations completed", zap.String("db_name", cfg.DB.DBName))

	if migrateSeed {
		seeded, err := store.NewGormStore(db).Seed(cmd.Context(), store.DemoData())
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info("Seed finished", zap.Bool("seeded", seeded))
	}
	return nil
}
