package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtroode/bookworm-server/database"
	"github.com/dtroode/bookworm-server/internal/config"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			if db.Driver != config.DriverPostgres {
				return fmt.Errorf("migrations apply to the %q driver only, got %q", config.DriverPostgres, db.Driver)
			}

			if err := database.Migrate(cmd.Context(), db.DSN); err != nil {
				return err
			}
			version, err := database.Version(cmd.Context(), db.DSN)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}
