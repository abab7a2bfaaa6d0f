package main

import (
	"github.com/diewo77/go-billing/internal/db"
	"github.com/diewo77/go-billing/internal/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the database schema",
	Example: `  # Auto-migrate from the models
  billing migrate

  # Apply the versioned SQL migrations (PostgreSQL)
  billing migrate --sql migrations`,
	RunE: runMigrate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert a demo recipient with pending positions",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := db.Open(cfg.Database)
		if err != nil {
			return err
		}
		if err := db.Seed(gdb); err != nil {
			return err
		}
		l := logger.WithComponent("seed")
		l.Info().Msg("seeding completed successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd)
	migrateCmd.Flags().String("sql", "", "Directory of SQL migrations to apply instead of auto-migrating")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("migrate")
	dir, _ := cmd.Flags().GetString("sql")

	if dir != "" {
		if err := db.RunSQLMigrations(dir, cfg.Database.URL()); err != nil {
			return err
		}
		log.Info().Str("dir", dir).Msg("SQL migrations applied")
		return nil
	}

	gdb, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}
	log.Info().Msg("migrations completed successfully")
	return nil
}
