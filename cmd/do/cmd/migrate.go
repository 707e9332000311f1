package cmd

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/apiplate/internal/config"
	"github.com/templui/apiplate/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.AddCommand(
		migrateAction("up", "Apply all pending migrations", db.RunMigrations),
		migrateAction("down", "Roll back the latest migration", db.MigrateDown),
		migrateAction("status", "Print the status of every migration", db.MigrationStatus),
	)
	return cmd
}

func migrateAction(use, short string, action func(*sql.DB, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer database.Close()

			err = action(database.DB, cfg.DBDriver)
			if err != nil {
				return err
			}

			version, err := db.MigrationVersion(database.DB, cfg.DBDriver)
			if err != nil {
				return err
			}
			fmt.Printf("database version: %d\n", version)
			return nil
		},
	}
}
